// Package async runs per-document work on bounded worker pools.
package async

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Outcome is one finished task tagged with its input position.
type Outcome[T any] struct {
	Seq   int
	Value T
}

// Pool bounds how many tasks run at once.
type Pool struct {
	logger    *slog.Logger
	workers   int
	queueSize int
}

type Option func(*Pool)

func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

func NewPool(logger *slog.Logger, opts ...Option) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{logger: logger, workers: 4, queueSize: 64}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pool) Workers() int { return p.workers }

// Map runs fn for seq 0..n-1 and returns the finished outcomes ordered by Seq.
// Once ctx is done no further task is dispatched; tasks already running finish and are kept,
// and the context error is returned alongside them.
func Map[T any](ctx context.Context, p *Pool, n int, fn func(ctx context.Context, seq int) T) ([]Outcome[T], error) {
	if n <= 0 {
		return nil, ctx.Err()
	}
	workers := min(p.workers, n)
	tasks := make(chan int, min(p.queueSize, n))
	results := make(chan Outcome[T], min(p.queueSize, n))

	var g errgroup.Group
	g.Go(func() error {
		defer close(tasks)
		for seq := 0; seq < n; seq++ {
			if err := ctx.Err(); err != nil {
				p.logger.Warn("pool.dispatch.stopped", "dispatched", seq, "total", n, "err", err)
				return err
			}
			select {
			case tasks <- seq:
			case <-ctx.Done():
				p.logger.Warn("pool.dispatch.stopped", "dispatched", seq, "total", n, "err", ctx.Err())
				return ctx.Err()
			}
		}
		return nil
	})

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for seq := range tasks {
				if ctx.Err() != nil {
					continue
				}
				results <- Outcome[T]{Seq: seq, Value: fn(ctx, seq)}
			}
			return nil
		})
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Single owner of the output slice.
	out := make([]Outcome[T], 0, n)
	for r := range results {
		out = append(out, r)
	}
	err := g.Wait()
	slices.SortFunc(out, func(a, b Outcome[T]) int { return a.Seq - b.Seq })
	return out, err
}
