package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rs/xid"
	"github.com/san-kum/cbdfmu/internal/codec"
	"github.com/san-kum/cbdfmu/internal/config"
	"github.com/san-kum/cbdfmu/internal/master"
)

const (
	metadataFile = "metadata.json"
	outputsFile  = "outputs.csv"
	stateFile    = "state.bin"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	FMIVersion string             `json:"fmi_version"`
	Timestamp  time.Time          `json:"timestamp"`
	StartTime  float64            `json:"start_time"`
	StopTime   float64            `json:"stop_time"`
	StepSize   float64            `json:"step_size"`
	Steps      int                `json:"steps"`
	Terminated bool               `json:"terminated"`
	Outputs    []string           `json:"outputs"`
	Inputs     map[string]float64 `json:"inputs,omitempty"`
	Params     map[string]float64 `json:"model_params,omitempty"`
	HasState   bool               `json:"has_state"`
}

// Save writes a run directory and returns its id.
func (s *Store) Save(cfg *config.Config, result *master.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", cfg.Model, xid.New().String())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      cfg.Model,
		FMIVersion: cfg.FMIVersion,
		Timestamp:  time.Now(),
		StartTime:  cfg.StartTime,
		StopTime:   cfg.StopTime,
		StepSize:   cfg.StepSize,
		Steps:      result.StepsTaken,
		Terminated: result.Terminated,
		Outputs:    result.Outputs,
		Inputs:     cfg.Inputs,
		Params:     cfg.ModelParams,
	}
	if err := s.writeMetadata(runDir, &meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, outputsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) writeMetadata(runDir string, meta *RunMetadata) error {
	f, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// SaveState stores a serialized snapshot next to a run.
func (s *Store) SaveState(runID string, state []byte) error {
	if _, err := codec.Count(state); err != nil {
		return err
	}
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.WriteFile(filepath.Join(runDir, stateFile), state, 0644); err != nil {
		return err
	}
	meta.HasState = true
	return s.writeMetadata(runDir, meta)
}

func (s *Store) LoadState(runID string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.baseDir, runID, stateFile))
}

// List returns runs oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadOutputs reads back the recorded trajectory of a run.
func (s *Store) LoadOutputs(runID string) (*master.Result, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, outputsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	res := &master.Result{}
	if len(records) == 0 {
		return res, nil
	}
	res.Outputs = records[0][1:]

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", outputsFile, i+1, err)
		}

		row := make([]float64, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", outputsFile, i+1, err)
			}
			row = append(row, val)
		}
		res.Times = append(res.Times, t)
		res.Values = append(res.Values, row)
	}
	res.StepsTaken = max(len(res.Times)-1, 0)
	return res, nil
}
