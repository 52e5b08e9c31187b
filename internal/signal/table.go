// Package signal holds the real-valued signal store of an FMU instance and
// the symbol table that names its value references.
package signal

import (
	"errors"
	"fmt"
)

// ValueReference is a stable index into a model's signal store.
type ValueReference uint32

// Causality describes how a signal relates to the outside of the model.
type Causality int

const (
	Local Causality = iota
	Parameter
	Input
	Output
)

func (c Causality) String() string {
	switch c {
	case Parameter:
		return "parameter"
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return "local"
	}
}

// Variable is one entry of a symbol table.
type Variable struct {
	VR          ValueReference
	Name        string
	Causality   Causality
	Description string
}

var (
	ErrDuplicateName = errors.New("signal: duplicate variable name")
	ErrUnknownName   = errors.New("signal: unknown variable name")
)

// Table maps value references to semantic names. Value references are
// assigned densely in declaration order, so the table length is also the
// store size M.
type Table struct {
	vars   []Variable
	byName map[string]ValueReference
}

func NewTable() *Table {
	return &Table{byName: make(map[string]ValueReference)}
}

// Add appends a variable and returns its value reference.
func (t *Table) Add(name string, causality Causality, description string) (ValueReference, error) {
	if _, ok := t.byName[name]; ok {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	vr := ValueReference(len(t.vars))
	t.vars = append(t.vars, Variable{VR: vr, Name: name, Causality: causality, Description: description})
	t.byName[name] = vr
	return vr, nil
}

// MustAdd is Add for generated tables, where a duplicate is a programming
// error.
func (t *Table) MustAdd(name string, causality Causality, description string) ValueReference {
	vr, err := t.Add(name, causality, description)
	if err != nil {
		panic(err)
	}
	return vr
}

func (t *Table) Len() int { return len(t.vars) }

func (t *Table) Lookup(name string) (ValueReference, error) {
	vr, ok := t.byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownName, name)
	}
	return vr, nil
}

func (t *Table) Variable(vr ValueReference) (Variable, bool) {
	if int(vr) >= len(t.vars) {
		return Variable{}, false
	}
	return t.vars[vr], true
}

func (t *Table) Name(vr ValueReference) string {
	if v, ok := t.Variable(vr); ok {
		return v.Name
	}
	return fmt.Sprintf("vr%d", vr)
}

// Variables returns the table in value reference order.
func (t *Table) Variables() []Variable {
	out := make([]Variable, len(t.vars))
	copy(out, t.vars)
	return out
}

// ByCausality returns the variables with the given causality.
func (t *Table) ByCausality(c Causality) []Variable {
	var out []Variable
	for _, v := range t.vars {
		if v.Causality == c {
			out = append(out, v)
		}
	}
	return out
}
