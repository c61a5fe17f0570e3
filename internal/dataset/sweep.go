package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/resilience/internal/ews"
)

// SweepResult is the EWS of one longitude column.
type SweepResult struct {
	Column int
	Lon    float64
	// Points is the number of non-missing observations analysed.
	Points int
	EWS    *ews.Result
}

// Sweep computes the EWS of every listed column, limit at a time. Missing
// observations are dropped before analysis. A nil cols means every column.
// Results follow the order of cols.
func Sweep(ctx context.Context, d *Dataset, cols []int, opts ews.Options, limit int, logger *slog.Logger) ([]SweepResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cols == nil {
		cols = make([]int, d.Cols())
		for j := range cols {
			cols[j] = j
		}
	}
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]SweepResult, len(cols))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, j := range cols {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := d.Column(j)
			if err != nil {
				return err
			}
			s = s.DropNaN()
			res, err := ews.Compute(s, opts)
			if err != nil {
				return fmt.Errorf("column %d: %w", j, err)
			}
			results[i] = SweepResult{Column: j, Lon: d.Lon(j), Points: s.Len(), EWS: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("sweep finished", "columns", len(cols), "window", opts.Window)
	return results, nil
}
