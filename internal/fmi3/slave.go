package fmi3

import (
	"github.com/san-kum/cbdfmu/internal/fmu"
	"github.com/san-kum/cbdfmu/internal/protocol"
	"github.com/san-kum/cbdfmu/internal/signal"
)

func init() {
	protocol.Register(Version, Open)
}

type slave struct {
	c   *Instance
	exp fmu.Experiment
}

// Open instantiates a co-simulation instance and returns it as a
// protocol.Slave.
func Open(p protocol.Params) (protocol.Slave, error) {
	if p.Model == nil {
		return nil, fmu.ErrInvalidArgument
	}
	opts := p.Options
	opts.Kind = fmu.CoSimulation
	c, err := instantiate(p.Model,
		fmu.Identity{Name: p.InstanceName, GUID: p.Model.GUID()},
		Environment{Allocator: p.Allocator, Logger: p.Options.Logger},
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

// Setup only records the experiment; 3.0 passes it on entering
// initialization mode.
func (s *slave) Setup(exp fmu.Experiment) error {
	s.exp = exp
	return nil
}

func (s *slave) EnterInitialization() error {
	e := s.exp
	return s.err("EnterInitializationMode",
		s.c.EnterInitializationMode(e.ToleranceDefined, e.Tolerance, e.StartTime, e.StopTimeDefined, e.StopTime))
}

func (s *slave) ExitInitialization() error {
	return s.err("ExitInitializationMode", s.c.ExitInitializationMode())
}

func (s *slave) SetReals(vrs []signal.ValueReference, values []float64) error {
	return s.err("SetFloat64", s.c.SetFloat64(vrs, values))
}

func (s *slave) GetReals(vrs []signal.ValueReference, values []float64) error {
	return s.err("GetFloat64", s.c.GetFloat64(vrs, values))
}

func (s *slave) DoStep(currentTime, stepSize float64) error {
	var terminate bool
	st := s.c.DoStep(currentTime, stepSize, true, nil, &terminate, nil, nil)
	return s.err("DoStep", st)
}

func (s *slave) SaveState() ([]byte, error) {
	var state FMUState
	if st := s.c.GetFMUState(&state); st != OK {
		return nil, s.err("GetFMUState", st)
	}
	defer s.c.FreeFMUState(&state)

	var size int
	if st := s.c.SerializedFMUStateSize(state, &size); st != OK {
		return nil, s.err("SerializedFMUStateSize", st)
	}
	buf := make([]byte, size)
	if st := s.c.SerializeFMUState(state, buf); st != OK {
		return nil, s.err("SerializeFMUState", st)
	}
	return buf, nil
}

func (s *slave) LoadState(b []byte) error {
	var state FMUState
	if st := s.c.DeserializeFMUState(b, &state); st != OK {
		return s.err("DeserializeFMUState", st)
	}
	defer s.c.FreeFMUState(&state)
	return s.err("SetFMUState", s.c.SetFMUState(state))
}

func (s *slave) Terminate() error {
	return s.err("Terminate", s.c.Terminate())
}

func (s *slave) Free() error {
	return fmu.Destroy(s.c.inst)
}
