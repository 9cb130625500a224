// Package taskgroup runs a fixed set of independent units of work
// concurrently and blocks until every one of them has finished.
//
// A unit's failure never cancels its siblings: each unit gets its own
// context, derived from the group's parent with the per-unit timeout, and
// its result or error is collected separately. Cancelling the parent
// context reaches every unit still running.
package taskgroup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Group spawns units and waits for all of them.
type Group struct {
	parent  context.Context
	timeout time.Duration
	eg      errgroup.Group

	mu   sync.Mutex
	errs []error
}

// New creates a group. A timeout of zero or less means units are bounded
// only by the parent context.
func New(parent context.Context, timeout time.Duration) *Group {
	return &Group{parent: parent, timeout: timeout}
}

// Task is the handle of one spawned unit. Its fields are valid after the
// group's Wait returns.
type Task[T any] struct {
	Name    string
	value   T
	err     error
	elapsed time.Duration
}

// Result returns the unit's value and error.
func (t *Task[T]) Result() (T, error) {
	return t.value, t.err
}

// Elapsed is the unit's wall-clock duration.
func (t *Task[T]) Elapsed() time.Duration {
	return t.elapsed
}

// Go starts fn as a unit of g. A panic inside fn is recovered and reported
// as the unit's error.
func Go[T any](g *Group, name string, fn func(ctx context.Context) (T, error)) *Task[T] {
	task := &Task[T]{Name: name}

	g.eg.Go(func() error {
		ctx := g.parent
		if g.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}

		start := time.Now()
		defer func() {
			task.elapsed = time.Since(start)
			if r := recover(); r != nil {
				task.err = fmt.Errorf("unit %s panicked: %v", name, r)
			}
			if task.err != nil {
				g.mu.Lock()
				g.errs = append(g.errs, fmt.Errorf("%s: %w", name, task.err))
				g.mu.Unlock()
			}
		}()

		task.value, task.err = fn(ctx)
		return nil // unit errors stay with the unit
	})
	return task
}

// Wait blocks until every unit has returned and joins their errors.
func (g *Group) Wait() error {
	_ = g.eg.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
