package master

import (
	"context"

	"github.com/san-kum/cbdfmu/internal/protocol"
	"golang.org/x/sync/errgroup"
)

// Opener creates the slave for one ensemble member. Each member must get
// its own instance.
type Opener func(run int) (protocol.Slave, error)

// Ensemble runs several configurations concurrently. Members share the
// master's logger but not its observers.
type Ensemble struct {
	base  *Master
	open  Opener
	limit int
}

func NewEnsemble(m *Master, open Opener, limit int) *Ensemble {
	return &Ensemble{base: m, open: open, limit: limit}
}

// Run returns results in the order of cfgs. The first failure cancels the
// remaining members.
func (e *Ensemble) Run(ctx context.Context, cfgs []Config) ([]*Result, error) {
	results := make([]*Result, len(cfgs))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			s, err := e.open(i)
			if err != nil {
				return err
			}
			m := New(e.base.log.With("run", i))
			res, err := m.Run(ctx, s, cfg)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
