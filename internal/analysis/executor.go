package analysis

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"abkpi/internal"

	"golang.org/x/sync/errgroup"
)

// Executor computes independent partitions concurrently and merges them.
type Executor struct {
	engine  *Engine
	workers int
	diag    internal.Diagnostics
}

// NewExecutor returns an Executor bounded to workers goroutines (<= 0 uses GOMAXPROCS).
func NewExecutor(engine *Engine, workers int, diag internal.Diagnostics) *Executor {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Executor{engine: engine, workers: workers, diag: internal.OrNop(diag)}
}

// Run computes every input and returns the aggregated report. The first
// structural error cancels the remaining partitions.
func (x *Executor) Run(ctx context.Context, inputs []Input) (*Report, error) {
	start := time.Now()
	outputs := make([]*Output, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(x.workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := x.engine.Compute(in)
			if err != nil {
				return fmt.Errorf("partition %s/%s: %w", in.Partition.ReportOrder, in.Partition.Country, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	x.diag.Debug("[Executor] %d partition(s) computed in %s with %d worker(s)", len(inputs), time.Since(start), x.workers)
	return Aggregate(outputs), nil
}
