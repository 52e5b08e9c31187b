// Package master drives co-simulation slaves from start to stop time.
package master

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/cbdfmu/internal/fmu"
	"github.com/san-kum/cbdfmu/internal/protocol"
	"github.com/san-kum/cbdfmu/internal/signal"
)

type Config struct {
	StartTime float64
	StopTime  float64
	StepSize  float64
	Tolerance float64
	// Params are written before initialization, Inputs during it.
	Params map[string]float64
	Inputs map[string]float64
	// Outputs names the signals to record. Empty means every output.
	Outputs []string
}

type Result struct {
	Outputs    []string
	Times      []float64
	Values     [][]float64
	StepsTaken int
	// Terminated is set when the model asked to stop before StopTime.
	Terminated bool
}

// Last returns the most recent recorded values.
func (r *Result) Last() []float64 {
	if len(r.Values) == 0 {
		return nil
	}
	return r.Values[len(r.Values)-1]
}

// Column returns the trajectory of one recorded output.
func (r *Result) Column(name string) ([]float64, bool) {
	for j, o := range r.Outputs {
		if o == name {
			col := make([]float64, len(r.Values))
			for i, row := range r.Values {
				col[i] = row[j]
			}
			return col, true
		}
	}
	return nil, false
}

// Observer sees every recorded communication point.
type Observer interface {
	OnStep(t float64, values []float64)
}

type ObserverFunc func(t float64, values []float64)

func (f ObserverFunc) OnStep(t float64, values []float64) { f(t, values) }

type Master struct {
	observers []Observer
	log       *slog.Logger
}

func New(log *slog.Logger) *Master {
	if log == nil {
		log = slog.Default()
	}
	return &Master{log: log}
}

func (m *Master) AddObserver(o Observer) { m.observers = append(m.observers, o) }

func (m *Master) validateConfig(cfg Config) error {
	if !(cfg.StepSize > 0) {
		return fmt.Errorf("step size must be positive, got %f", cfg.StepSize)
	}
	if cfg.StopTime <= cfg.StartTime {
		return fmt.Errorf("stop time %f must be after start time %f", cfg.StopTime, cfg.StartTime)
	}
	return nil
}

func resolve(t *signal.Table, names []string) ([]signal.ValueReference, error) {
	vrs := make([]signal.ValueReference, len(names))
	for i, n := range names {
		vr, err := t.Lookup(n)
		if err != nil {
			return nil, err
		}
		vrs[i] = vr
	}
	return vrs, nil
}

func (m *Master) apply(s protocol.Slave, values map[string]float64) error {
	if len(values) == 0 {
		return nil
	}
	names := make([]string, 0, len(values))
	vals := make([]float64, 0, len(values))
	for n, v := range values {
		names = append(names, n)
		vals = append(vals, v)
	}
	vrs, err := resolve(s.Variables(), names)
	if err != nil {
		return err
	}
	return s.SetReals(vrs, vals)
}

func outputNames(t *signal.Table, want []string) []string {
	if len(want) > 0 {
		return want
	}
	var names []string
	for _, v := range t.ByCausality(signal.Output) {
		names = append(names, v.Name)
	}
	return names
}

// Run takes ownership of s: it is terminated and freed before Run returns,
// whatever the outcome.
func (m *Master) Run(ctx context.Context, s protocol.Slave, cfg Config) (res *Result, err error) {
	defer func() {
		if ferr := m.shutdown(s); ferr != nil && err == nil {
			err = ferr
		}
	}()

	if err := m.validateConfig(cfg); err != nil {
		return nil, err
	}

	names := outputNames(s.Variables(), cfg.Outputs)
	vrs, err := resolve(s.Variables(), names)
	if err != nil {
		return nil, fmt.Errorf("outputs: %w", err)
	}

	exp := fmu.Experiment{
		ToleranceDefined: cfg.Tolerance > 0,
		Tolerance:        cfg.Tolerance,
		StartTime:        cfg.StartTime,
		StopTimeDefined:  true,
		StopTime:         cfg.StopTime,
	}
	if err := s.Setup(exp); err != nil {
		return nil, fmt.Errorf("setup: %w", err)
	}
	if err := m.apply(s, cfg.Params); err != nil {
		return nil, fmt.Errorf("params: %w", err)
	}
	if err := s.EnterInitialization(); err != nil {
		return nil, fmt.Errorf("initialization: %w", err)
	}
	if err := m.apply(s, cfg.Inputs); err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	if err := s.ExitInitialization(); err != nil {
		return nil, fmt.Errorf("initialization: %w", err)
	}

	h := cfg.StepSize
	steps := int(math.Floor((cfg.StopTime-cfg.StartTime)/h + 1e-9))
	res = &Result{
		Outputs: names,
		Times:   make([]float64, 0, steps+1),
		Values:  make([][]float64, 0, steps+1),
	}
	if err := m.record(s, res, vrs, cfg.StartTime); err != nil {
		return res, err
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		t := cfg.StartTime + float64(i)*h
		if err := s.DoStep(t, h); err != nil {
			if errors.Is(err, fmu.ErrSimulationTerminated) {
				res.Terminated = true
				m.log.Info("model requested termination", "time", t, "steps", res.StepsTaken)
				break
			}
			return res, fmt.Errorf("step at t=%.4f: %w", t, err)
		}
		res.StepsTaken++

		if err := m.record(s, res, vrs, t+h); err != nil {
			return res, err
		}
	}

	m.log.Debug("run finished", "steps", res.StepsTaken, "terminated", res.Terminated)
	return res, nil
}

func (m *Master) record(s protocol.Slave, res *Result, vrs []signal.ValueReference, t float64) error {
	row := make([]float64, len(vrs))
	if err := s.GetReals(vrs, row); err != nil {
		return fmt.Errorf("read outputs at t=%.4f: %w", t, err)
	}
	res.Times = append(res.Times, t)
	res.Values = append(res.Values, row)
	for _, o := range m.observers {
		o.OnStep(t, row)
	}
	return nil
}

// shutdown terminates s if it is running and frees it.
func (m *Master) shutdown(s protocol.Slave) error {
	if err := s.Terminate(); err != nil && !errors.Is(err, fmu.ErrInvalidCallSequence) {
		m.log.Warn("terminate failed", "err", err)
	}
	return s.Free()
}
