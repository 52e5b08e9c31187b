// Package fmi2 exposes the component core under the 2.0 entry points.
//
// Every entry point returns a Status rather than an error. The error behind
// a non-OK status is kept on the component and can be read with LastError.
// A component whose Instantiate call fails is nil, and every method on a
// nil component reports Error.
package fmi2

import (
	"errors"
	"log/slog"

	"github.com/san-kum/cbdfmu/internal/arena"
	"github.com/san-kum/cbdfmu/internal/fmu"
	"github.com/san-kum/cbdfmu/internal/signal"
)

const (
	Version       = "2.0"
	TypesPlatform = "default"
)

type (
	Status         = fmu.Status
	ValueReference = signal.ValueReference
	EventInfo      = fmu.EventInfo
	StatusKind     = fmu.StatusKind
)

const (
	OK      = fmu.OK
	Warning = fmu.Warning
	Discard = fmu.Discard
	Error   = fmu.Error
	Fatal   = fmu.Fatal
)

// Type is the interface type requested at instantiation.
type Type int

const (
	ModelExchange Type = iota
	CoSimulation
)

func (t Type) kind() fmu.Kind {
	if t == ModelExchange {
		return fmu.ModelExchange
	}
	return fmu.CoSimulation
}

// CallbackFunctions carries what the environment hands to Instantiate.
// A nil Allocator falls back to the heap; a nil Logger to slog.Default.
type CallbackFunctions struct {
	Allocator            arena.Allocator
	Logger               *slog.Logger
	ComponentEnvironment any
}

var errNilComponent = errors.New("fmi2: nil component")

// Component is an instantiated slave.
type Component struct {
	inst    *fmu.Instance
	env     any
	lastErr error
}

// FMUstate is an opaque captured state.
type FMUstate = *fmu.Snapshot

func GetVersion() string       { return Version }
func GetTypesPlatform() string { return TypesPlatform }

// Instantiate creates a component, or returns nil when the core refuses.
func Instantiate(model fmu.Model, instanceName string, fmuType Type, guid, resourceLocation string,
	functions CallbackFunctions, visible, loggingOn bool) *Component {
	c, _ := instantiate(model,
		fmu.Identity{Name: instanceName, GUID: guid, ResourceLocation: resourceLocation},
		functions,
		fmu.Options{Kind: fmuType.kind(), Visible: visible, LoggingOn: loggingOn})
	return c
}

func instantiate(model fmu.Model, id fmu.Identity, functions CallbackFunctions, opts fmu.Options) (*Component, error) {
	alloc := functions.Allocator
	if alloc == nil {
		alloc = arena.Heap{}
	}
	logger := functions.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts.Logger = logger.With(slog.String("fmi", Version))
	inst, err := fmu.Create(model, id, alloc, opts)
	if err != nil {
		logger.Error("instantiate failed", "instance", id.Name, "err", err)
		return nil, err
	}
	return &Component{inst: inst, env: functions.ComponentEnvironment}, nil
}

// FreeInstance destroys c. A component that is still running is left
// alive and the refusal is logged.
func FreeInstance(c *Component) {
	if c == nil {
		return
	}
	c.status(fmu.Destroy(c.inst))
}

// Instance exposes the wrapped core instance.
func (c *Component) Instance() *fmu.Instance { return c.inst }

func (c *Component) ComponentEnvironment() any { return c.env }

// LastError is the error behind the most recent non-OK status.
func (c *Component) LastError() error {
	if c == nil {
		return errNilComponent
	}
	return c.lastErr
}

func (c *Component) status(err error) Status {
	if err == nil {
		return OK
	}
	c.lastErr = err
	return fmu.StatusOf(err)
}

func (c *Component) SetDebugLogging(loggingOn bool, categories []string) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.SetDebugLogging(loggingOn, categories...))
}

func (c *Component) SetupExperiment(toleranceDefined bool, tolerance, startTime float64, stopTimeDefined bool, stopTime float64) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.ConfigureExperiment(toleranceDefined, tolerance, startTime, stopTimeDefined, stopTime))
}

func (c *Component) EnterInitializationMode() Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.EnterInitializationMode())
}

func (c *Component) ExitInitializationMode() Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.ExitInitializationMode())
}

func (c *Component) Terminate() Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.Terminate())
}

func (c *Component) Reset() Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.Reset())
}
