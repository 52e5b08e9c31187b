package fmu

import "slices"

// State is a lifecycle phase of an Instance.
type State int

const (
	Instantiated State = iota
	InitializationMode
	EventMode
	ContinuousTimeMode
	Terminated
	Destroyed
)

func (s State) String() string {
	switch s {
	case Instantiated:
		return "instantiated"
	case InitializationMode:
		return "initialization mode"
	case EventMode:
		return "event mode"
	case ContinuousTimeMode:
		return "continuous-time mode"
	case Terminated:
		return "terminated"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Kind selects which mode-specific operations an Instance offers.
type Kind int

const (
	CoSimulation Kind = iota
	ModelExchange
)

func (k Kind) String() string {
	if k == ModelExchange {
		return "model-exchange"
	}
	return "co-simulation"
}

// live lists every state an instance can be in before Destroy.
var live = []State{Instantiated, InitializationMode, EventMode, ContinuousTimeMode, Terminated}

// writable lists the states in which inputs may still change.
var writable = []State{Instantiated, InitializationMode, EventMode, ContinuousTimeMode}

var running = []State{EventMode, ContinuousTimeMode}

func (c *Instance) require(op string, allowed ...State) error {
	if slices.Contains(allowed, c.state) {
		return nil
	}
	return c.fail(op, ErrInvalidCallSequence)
}

func (c *Instance) requireKind(op string, kind Kind) error {
	if c.kind == kind {
		return nil
	}
	return c.fail(op, ErrUnsupported)
}

func (c *Instance) transition(op string, to State) {
	c.debug(CategoryAll, "transition", "op", op, "from", c.state.String(), "to", to.String())
	c.state = to
}
