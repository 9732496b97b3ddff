// Package transfer implements the Streaming Data Transfer Engine (C8,
// spec.md §4.8): a bounded producer/consumer pair moving rows from
// Oracle to PostgreSQL through a single shared worker pool.
package transfer

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool is the single shared worker pool every transfer (and every other
// concurrent step) acquires from, instead of building its own (spec.md
// §5, §9's explicit anti-pattern: per-table/per-step pools). There is
// deliberately no exported constructor reachable from internal/migstep
// or internal/extract — only NewPool, called once from
// cmd/orapgsyncd's composition root, builds one.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool builds a Pool sized at 2*NumCPU weight units by default. Call
// this exactly once, in cmd/orapgsyncd, and pass the result by reference
// into every migstep.Deps.
func NewPool(weight int64) *Pool {
	if weight <= 0 {
		weight = int64(2 * runtime.NumCPU())
	}
	return &Pool{sem: semaphore.NewWeighted(weight)}
}

func (p *Pool) Acquire(ctx context.Context, n int64) error {
	return p.sem.Acquire(ctx, n)
}

func (p *Pool) Release(n int64) {
	p.sem.Release(n)
}
