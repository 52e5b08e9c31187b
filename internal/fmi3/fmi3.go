// Package fmi3 exposes the component core under the 3.0 entry points.
//
// The 3.0 interface has separate instantiation functions per interface
// type, folds the experiment setup into EnterInitializationMode, and
// reports step outcomes through out-parameters of DoStep.
package fmi3

import (
	"errors"
	"log/slog"

	"github.com/san-kum/cbdfmu/internal/arena"
	"github.com/san-kum/cbdfmu/internal/fmu"
	"github.com/san-kum/cbdfmu/internal/signal"
)

const Version = "3.0"

type (
	Status         = fmu.Status
	ValueReference = signal.ValueReference
)

const (
	OK      = fmu.OK
	Warning = fmu.Warning
	Discard = fmu.Discard
	Error   = fmu.Error
	Fatal   = fmu.Fatal
)

var errNilInstance = errors.New("fmi3: nil instance")

// Instance is an instantiated component.
type Instance struct {
	inst        *fmu.Instance
	env         any
	lastErr     error
	earlyReturn bool
}

// FMUState is an opaque captured state.
type FMUState = *fmu.Snapshot

// Environment is what the importer supplies besides the identity strings.
type Environment struct {
	Allocator           arena.Allocator
	Logger              *slog.Logger
	InstanceEnvironment any
}

func GetVersion() string { return Version }

func instantiate(model fmu.Model, id fmu.Identity, env Environment, opts fmu.Options) (*Instance, error) {
	alloc := env.Allocator
	if alloc == nil {
		alloc = arena.Heap{}
	}
	logger := env.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts.Logger = logger.With(slog.String("fmi", Version))
	inst, err := fmu.Create(model, id, alloc, opts)
	if err != nil {
		logger.Error("instantiate failed", "instance", id.Name, "err", err)
		return nil, err
	}
	return &Instance{inst: inst, env: env.InstanceEnvironment}, nil
}

// InstantiateModelExchange returns nil when the core refuses.
func InstantiateModelExchange(model fmu.Model, instanceName, instantiationToken, resourcePath string,
	visible, loggingOn bool, env Environment) *Instance {
	c, _ := instantiate(model,
		fmu.Identity{Name: instanceName, GUID: instantiationToken, ResourceLocation: resourcePath},
		env,
		fmu.Options{Kind: fmu.ModelExchange, Visible: visible, LoggingOn: loggingOn})
	return c
}

// InstantiateCoSimulation returns nil when the core refuses. Event mode
// is never used by this implementation, so eventModeUsed is ignored.
func InstantiateCoSimulation(model fmu.Model, instanceName, instantiationToken, resourcePath string,
	visible, loggingOn, eventModeUsed, earlyReturnAllowed bool, env Environment) *Instance {
	c, _ := instantiate(model,
		fmu.Identity{Name: instanceName, GUID: instantiationToken, ResourceLocation: resourcePath},
		env,
		fmu.Options{Kind: fmu.CoSimulation, Visible: visible, LoggingOn: loggingOn})
	if c != nil {
		c.earlyReturn = earlyReturnAllowed
	}
	return c
}

func FreeInstance(c *Instance) {
	if c == nil {
		return
	}
	c.status(fmu.Destroy(c.inst))
}

func (c *Instance) Core() *fmu.Instance { return c.inst }

func (c *Instance) InstanceEnvironment() any { return c.env }

func (c *Instance) LastError() error {
	if c == nil {
		return errNilInstance
	}
	return c.lastErr
}

func (c *Instance) status(err error) Status {
	if err == nil {
		return OK
	}
	c.lastErr = err
	return fmu.StatusOf(err)
}

func (c *Instance) SetDebugLogging(loggingOn bool, categories []string) Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.SetDebugLogging(loggingOn, categories...))
}

// EnterInitializationMode records the experiment and enters
// initialization mode in one call.
func (c *Instance) EnterInitializationMode(toleranceDefined bool, tolerance, startTime float64, stopTimeDefined bool, stopTime float64) Status {
	if c == nil {
		return Error
	}
	if err := c.inst.ConfigureExperiment(toleranceDefined, tolerance, startTime, stopTimeDefined, stopTime); err != nil {
		return c.status(err)
	}
	return c.status(c.inst.EnterInitializationMode())
}

func (c *Instance) ExitInitializationMode() Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.ExitInitializationMode())
}

func (c *Instance) EnterEventMode() Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.EnterEventMode())
}

func (c *Instance) Terminate() Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.Terminate())
}

func (c *Instance) Reset() Status {
	if c == nil {
		return Error
	}
	return c.status(c.inst.Reset())
}
