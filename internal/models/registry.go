// Package models registers the models this component can be instantiated
// with.
package models

import (
	"fmt"
	"sort"

	"github.com/san-kum/cbdfmu/internal/fmu"
	"github.com/san-kum/cbdfmu/internal/models/ball"
	"github.com/san-kum/cbdfmu/internal/models/pid"
)

type Registry struct {
	models map[string]func() fmu.Model
}

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]func() fmu.Model),
	}

	r.models[pid.Name] = func() fmu.Model { return pid.New() }
	r.models[ball.Name] = func() fmu.Model { return ball.New() }

	return r
}

// Register adds or replaces a model factory.
func (r *Registry) Register(name string, fn func() fmu.Model) {
	r.models[name] = fn
}

// Get returns a fresh model. Models keep scratch state, so every instance
// needs its own.
func (r *Registry) Get(name string) (fmu.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
