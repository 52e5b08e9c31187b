package fmu

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/rs/xid"
	"github.com/san-kum/cbdfmu/internal/arena"
	"github.com/san-kum/cbdfmu/internal/signal"
)

// Log categories accepted by SetDebugLogging.
const (
	CategoryEvents        = "logEvents"
	CategoryStatusError   = "logStatusError"
	CategoryStatusDiscard = "logStatusDiscard"
	CategoryAll           = "logAll"
)

// Identity is carried by an instance but never interpreted by the core.
type Identity struct {
	Name             string
	GUID             string
	ResourceLocation string
}

type Options struct {
	Kind      Kind
	Visible   bool
	LoggingOn bool
	// InternalSteps splits every communication step into that many
	// equation evaluations unless the model is a Subdivider. Zero means 1.
	InternalSteps int
	Logger        *slog.Logger
}

// Experiment holds the values passed to ConfigureExperiment.
type Experiment struct {
	ToleranceDefined bool
	Tolerance        float64
	StartTime        float64
	StopTimeDefined  bool
	StopTime         float64
}

// Instance is one live component.
type Instance struct {
	id       string
	identity Identity
	model    Model
	table    *signal.Table
	alloc    arena.Allocator
	kind     Kind
	visible  bool

	env                 Env
	state               State
	isNewEventIteration bool
	experiment          Experiment
	internalSteps       int

	log        *slog.Logger
	loggingOn  bool
	categories []string
}

// Create allocates the signal store through alloc and runs the model's
// initial equations. It fails only when the arguments are unusable or the
// allocation fails.
func Create(model Model, identity Identity, alloc arena.Allocator, opts Options) (*Instance, error) {
	if model == nil || alloc == nil {
		return nil, &CallError{Op: "Create", State: Instantiated, Err: ErrInvalidArgument}
	}
	table := model.Variables()
	if table == nil {
		return nil, &CallError{Op: "Create", State: Instantiated, Err: ErrInvalidArgument}
	}

	buf, err := alloc.Allocate(table.Len())
	if err != nil || len(buf) != table.Len() {
		if err == nil {
			err = arena.ErrExhausted
		}
		return nil, &CallError{Op: "Create", State: Instantiated, Err: errors.Join(ErrAllocation, err)}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := xid.New().String()

	c := &Instance{
		id:            id,
		identity:      identity,
		model:         model,
		table:         table,
		alloc:         alloc,
		kind:          opts.Kind,
		visible:       opts.Visible,
		env:           Env{Signals: signal.NewStore(buf)},
		state:         Instantiated,
		internalSteps: max(opts.InternalSteps, 1),
		loggingOn:     opts.LoggingOn,
		log: logger.With(
			slog.String("instance", identity.Name),
			slog.String("id", id),
			slog.String("model", model.Name()),
		),
	}

	model.InitialEquations(&c.env)
	c.debug(CategoryAll, "instantiated", "kind", c.kind.String(), "signals", table.Len())
	return c, nil
}

// Destroy releases the instance's memory through the allocator it was
// created with. A nil instance is a no-op.
func Destroy(c *Instance) error {
	if c == nil {
		return nil
	}
	if err := c.require("Destroy", Instantiated, Terminated); err != nil {
		return err
	}
	c.alloc.Free(c.env.Signals.Values())
	c.env.Signals = signal.Store{}
	c.transition("Destroy", Destroyed)
	return nil
}

func (c *Instance) ID() string                 { return c.id }
func (c *Instance) Identity() Identity         { return c.identity }
func (c *Instance) Model() Model               { return c.model }
func (c *Instance) Kind() Kind                 { return c.kind }
func (c *Instance) State() State               { return c.state }
func (c *Instance) Visible() bool              { return c.visible }
func (c *Instance) LoggingOn() bool            { return c.loggingOn }
func (c *Instance) Time() float64              { return c.env.Time }
func (c *Instance) TimeLast() float64          { return c.env.TimeLast }
func (c *Instance) EventInfo() EventInfo       { return c.env.Events }
func (c *Instance) NewEventIteration() bool    { return c.isNewEventIteration }
func (c *Instance) Experiment() Experiment     { return c.experiment }
func (c *Instance) Variables() *signal.Table   { return c.table }
func (c *Instance) NumSignals() int            { return c.table.Len() }
func (c *Instance) Allocator() arena.Allocator { return c.alloc }

// Lookup resolves a signal name to its value reference.
func (c *Instance) Lookup(name string) (signal.ValueReference, error) {
	vr, err := c.table.Lookup(name)
	if err != nil {
		return 0, c.fail("Lookup", errors.Join(ErrInvalidValueReference, err))
	}
	return vr, nil
}

// SetDebugLogging switches debug output on or off. With no categories every
// category is enabled.
func (c *Instance) SetDebugLogging(loggingOn bool, categories ...string) error {
	if err := c.require("SetDebugLogging", live...); err != nil {
		return err
	}
	c.loggingOn = loggingOn
	c.categories = slices.Clone(categories)
	return nil
}

func (c *Instance) categoryEnabled(category string) bool {
	if len(c.categories) == 0 || slices.Contains(c.categories, CategoryAll) {
		return true
	}
	return slices.Contains(c.categories, category)
}

func (c *Instance) debug(category, msg string, args ...any) {
	if !c.loggingOn || !c.categoryEnabled(category) {
		return
	}
	c.log.Debug(msg, args...)
}

// fail wraps err with the failing operation and logs it.
func (c *Instance) fail(op string, err error) error {
	ce := &CallError{Op: op, State: c.state, Err: err}
	switch StatusOf(ce) {
	case Discard:
		if c.loggingOn && c.categoryEnabled(CategoryStatusDiscard) {
			c.log.Info("call discarded", "op", op, "err", err)
		}
	default:
		if c.categoryEnabled(CategoryStatusError) {
			c.log.LogAttrs(context.Background(), slog.LevelWarn, "call failed",
				slog.String("op", op), slog.String("state", c.state.String()), slog.Any("err", err))
		}
	}
	return ce
}
