package dispatch

import (
	"context"

	"github.com/cerodriguez46/devbyte/internal/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const DefaultIOParallelism = 64

// IO is the shared dispatcher for blocking network and storage work.
var IO = NewDispatcher("io", DefaultIOParallelism)

// Dispatcher runs blocking work on background goroutines, at most
// parallelism of them at a time.
type Dispatcher struct {
	name        string
	parallelism int64
	sem         *semaphore.Weighted
}

// NewDispatcher creates a dispatcher. A non-positive parallelism falls back to DefaultIOParallelism.
func NewDispatcher(name string, parallelism int64) *Dispatcher {
	if parallelism <= 0 {
		parallelism = DefaultIOParallelism
	}
	return &Dispatcher{
		name:        name,
		parallelism: parallelism,
		sem:         semaphore.NewWeighted(parallelism),
	}
}

// Name returns the dispatcher name used in logs.
func (d *Dispatcher) Name() string {
	return d.name
}

// Parallelism returns the maximum number of concurrently running tasks.
func (d *Dispatcher) Parallelism() int64 {
	return d.parallelism
}

// Run executes fn on a dispatcher goroutine and blocks until it returns.
// fn's error is returned as is. If ctx is done before a slot frees up, fn
// never runs and ctx.Err() is returned.
func (d *Dispatcher) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		logger.WithComponent("dispatch").Debugf("%s: no slot acquired: %v", d.name, err)
		return err
	}
	defer d.sem.Release(1)

	var g errgroup.Group
	g.Go(func() error {
		return fn(ctx)
	})
	return g.Wait()
}
