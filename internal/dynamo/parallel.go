package dynamo

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Factory builds a fresh simulator for one ensemble member. The seed is
// meant for the member's noise source.
type Factory func(seed uint64) (*Simulator, error)

type Ensemble struct {
	factory   Factory
	numRuns   int
	seedStart uint64
	limit     int
}

func NewEnsemble(factory Factory, numRuns int, seedStart uint64) *Ensemble {
	return &Ensemble{factory: factory, numRuns: numRuns, seedStart: seedStart, limit: runtime.GOMAXPROCS(0)}
}

// SetLimit bounds the number of concurrently running members.
func (e *Ensemble) SetLimit(n int) {
	if n > 0 {
		e.limit = n
	}
}

// Run integrates every member over the same grid. Results are ordered by
// seed; the first failure cancels the remaining members.
func (e *Ensemble) Run(ctx context.Context, x0 State, grid TimeGrid) ([]*Trajectory, error) {
	results := make([]*Trajectory, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for i := 0; i < e.numRuns; i++ {
		seed := e.seedStart + uint64(i)
		g.Go(func() error {
			s, err := e.factory(seed)
			if err != nil {
				return fmt.Errorf("ensemble member %d: %w", i, err)
			}
			traj, err := s.Integrate(ctx, x0, grid)
			if err != nil {
				return fmt.Errorf("ensemble member %d: %w", i, err)
			}
			results[i] = traj
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
