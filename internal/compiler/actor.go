// Package compiler implements the Compiler Actor Pool (spec.md §4.8):
// goroutines that each own an exclusive, mutable World, reachable only
// through the "steal" protocol — a caller either blocks for a
// latency-sensitive result (Steal) or hands a closure off and is
// notified later via a callback (StealAsync), never touching the
// World's fields from its own goroutine.
package compiler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// task is one unit of work an Actor's loop runs against its World.
type task struct {
	run  func(*World) (any, error)
	done chan taskResult
}

type taskResult struct {
	value any
	err   error
}

// Actor owns one World and runs every closure submitted to it on a
// single goroutine, so World mutation is always sequential.
type Actor struct {
	ID    uuid.UUID
	Label string

	world *World
	log   *logrus.Entry

	tasks   chan task
	closeCh chan struct{}
	doneCh  chan struct{}
}

// NewActor starts an Actor's goroutine over world. label identifies
// the actor in logs ("primary" or a dedicated document path).
func NewActor(world *World, label string, log *logrus.Entry) *Actor {
	a := &Actor{
		ID:      uuid.New(),
		Label:   label,
		world:   world,
		log:     log.WithField("actor", label),
		tasks:   make(chan task, 16),
		closeCh: make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go a.loop()
	return a
}

func (a *Actor) loop() {
	defer close(a.doneCh)
	for {
		select {
		case t := <-a.tasks:
			value, err := t.run(a.world)
			t.done <- taskResult{value: value, err: err}
		case <-a.closeCh:
			return
		}
	}
}

// Steal runs fn against the Actor's World and blocks until it
// completes, for latency-sensitive callers such as hover/completion.
func (a *Actor) Steal(ctx context.Context, fn func(*World) (any, error)) (any, error) {
	t := task{run: fn, done: make(chan taskResult, 1)}
	select {
	case a.tasks <- t:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-a.closeCh:
		return nil, fmt.Errorf("actor %s is closed", a.Label)
	}
	select {
	case r := <-t.done:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// StealAsync hands fn off to the Actor's goroutine and returns
// immediately; cb runs (on the actor's goroutine) once fn completes.
// Used for slow operations (export, trace) whose caller has already
// captured a RequestId and will reply via the Host when cb fires.
func (a *Actor) StealAsync(fn func(*World) (any, error), cb func(any, error)) error {
	t := task{
		run: func(w *World) (any, error) {
			v, err := fn(w)
			cb(v, err)
			return v, err
		},
		done: make(chan taskResult, 1),
	}
	select {
	case a.tasks <- t:
		return nil
	case <-a.closeCh:
		return fmt.Errorf("actor %s is closed", a.Label)
	}
}

// Close stops the Actor's goroutine and waits for it to exit.
func (a *Actor) Close() {
	select {
	case <-a.closeCh:
		return
	default:
		close(a.closeCh)
	}
	<-a.doneCh
}

// World exposes the Actor's underlying World for use by callers that
// already hold proof of exclusive access (e.g. tests); production code
// should only reach the World through Steal/StealAsync.
func (a *Actor) World() *World { return a.world }
