package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/cbdfmu/internal/master"
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes a time column followed by one column per output.
func WriteCSV(w io.Writer, result *master.Result) error {
	cw := csv.NewWriter(w)

	header := append([]string{"time"}, result.Outputs...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, row := range result.Values {
		rec := make([]string, 0, len(row)+1)
		rec = append(rec, formatFloat(result.Times[i]))
		for _, v := range row {
			rec = append(rec, formatFloat(v))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

type ExportData struct {
	Model      string      `json:"model"`
	FMIVersion string      `json:"fmi_version"`
	Steps      int         `json:"steps"`
	Terminated bool        `json:"terminated"`
	Outputs    []string    `json:"outputs"`
	Times      []float64   `json:"times"`
	Values     [][]float64 `json:"values"`
}

func ExportJSON(w io.Writer, model, fmiVersion string, result *master.Result) error {
	data := ExportData{
		Model:      model,
		FMIVersion: fmiVersion,
		Steps:      result.StepsTaken,
		Terminated: result.Terminated,
		Outputs:    result.Outputs,
		Times:      result.Times,
		Values:     result.Values,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
