// Package protocol is the version-neutral face of the versioned bindings.
//
// Each interface version (package fmi2, fmi3) exposes the core under its
// own entry-point names and registers a Factory here from its init
// function, the way database/sql drivers do. Hosts that do not care which
// version they speak select one by name and drive the returned Slave.
package protocol

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/san-kum/cbdfmu/internal/arena"
	"github.com/san-kum/cbdfmu/internal/fmu"
	"github.com/san-kum/cbdfmu/internal/signal"
)

var ErrUnknownVersion = errors.New("protocol: unknown interface version")

// Slave is a co-simulation instance as seen by a master.
type Slave interface {
	Version() string
	Variables() *signal.Table
	Setup(exp fmu.Experiment) error
	EnterInitialization() error
	ExitInitialization() error
	SetReals(vrs []signal.ValueReference, values []float64) error
	GetReals(vrs []signal.ValueReference, values []float64) error
	DoStep(currentTime, stepSize float64) error
	// SaveState returns the serialized signals; LoadState restores them.
	SaveState() ([]byte, error)
	LoadState(b []byte) error
	Terminate() error
	Free() error
}

// Params is what a Factory needs to create a Slave.
type Params struct {
	Model        fmu.Model
	InstanceName string
	Allocator    arena.Allocator
	Options      fmu.Options
}

type Factory func(p Params) (Slave, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a binding available under version. Registering the same
// version twice panics.
func Register(version string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if f == nil {
		panic("protocol: Register factory is nil")
	}
	if _, dup := factories[version]; dup {
		panic("protocol: Register called twice for version " + version)
	}
	factories[version] = f
}

func Lookup(version string) (Factory, error) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[version]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVersion, version)
	}
	return f, nil
}

// Open looks up version and instantiates a slave with it.
func Open(version string, p Params) (Slave, error) {
	f, err := Lookup(version)
	if err != nil {
		return nil, err
	}
	return f(p)
}

func Versions() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for v := range factories {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// StatusError turns a binding status back into an error for a Slave
// caller, preferring the binding's own last error when it has one.
func StatusError(op string, status fmu.Status, last error) error {
	if status == fmu.OK || status == fmu.Warning {
		return nil
	}
	if last != nil {
		return last
	}
	return fmt.Errorf("%s: status %s", op, status)
}
