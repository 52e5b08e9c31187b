package fmi2

import (
	"github.com/san-kum/cbdfmu/internal/fmu"
	"github.com/san-kum/cbdfmu/internal/protocol"
	"github.com/san-kum/cbdfmu/internal/signal"
)

func init() {
	protocol.Register(Version, Open)
}

type slave struct {
	c *Component
}

// Open instantiates a co-simulation component and returns it as a
// protocol.Slave.
func Open(p protocol.Params) (protocol.Slave, error) {
	if p.Model == nil {
		return nil, fmu.ErrInvalidArgument
	}
	opts := p.Options
	opts.Kind = fmu.CoSimulation
	c, err := instantiate(p.Model,
		fmu.Identity{Name: p.InstanceName, GUID: p.Model.GUID()},
		CallbackFunctions{Allocator: p.Allocator, Logger: p.Options.Logger},
		opts)
	if err != nil {
		return nil, err
	}
	return &slave{c: c}, nil
}

func (s *slave) err(op string, st Status) error {
	return protocol.StatusError(op, st, s.c.LastError())
}

func (s *slave) Version() string          { return Version }
func (s *slave) Variables() *signal.Table { return s.c.inst.Variables() }

func (s *slave) Setup(exp fmu.Experiment) error {
	return s.err("SetupExperiment", s.c.SetupExperiment(exp.ToleranceDefined, exp.Tolerance,
		exp.StartTime, exp.StopTimeDefined, exp.StopTime))
}

func (s *slave) EnterInitialization() error {
	return s.err("EnterInitializationMode", s.c.EnterInitializationMode())
}

func (s *slave) ExitInitialization() error {
	return s.err("ExitInitializationMode", s.c.ExitInitializationMode())
}

func (s *slave) SetReals(vrs []signal.ValueReference, values []float64) error {
	return s.err("SetReal", s.c.SetReal(vrs, values))
}

func (s *slave) GetReals(vrs []signal.ValueReference, values []float64) error {
	return s.err("GetReal", s.c.GetReal(vrs, values))
}

func (s *slave) DoStep(currentTime, stepSize float64) error {
	return s.err("DoStep", s.c.DoStep(currentTime, stepSize, true))
}

func (s *slave) SaveState() ([]byte, error) {
	var state FMUstate
	if st := s.c.GetFMUstate(&state); st != OK {
		return nil, s.err("GetFMUstate", st)
	}
	defer s.c.FreeFMUstate(&state)

	var size int
	if st := s.c.SerializedFMUstateSize(state, &size); st != OK {
		return nil, s.err("SerializedFMUstateSize", st)
	}
	buf := make([]byte, size)
	if st := s.c.SerializeFMUstate(state, buf); st != OK {
		return nil, s.err("SerializeFMUstate", st)
	}
	return buf, nil
}

func (s *slave) LoadState(b []byte) error {
	var state FMUstate
	if st := s.c.DeSerializeFMUstate(b, &state); st != OK {
		return s.err("DeSerializeFMUstate", st)
	}
	defer s.c.FreeFMUstate(&state)
	return s.err("SetFMUstate", s.c.SetFMUstate(state))
}

func (s *slave) Terminate() error {
	return s.err("Terminate", s.c.Terminate())
}

func (s *slave) Free() error {
	return fmu.Destroy(s.c.inst)
}
