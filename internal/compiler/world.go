package compiler

import (
	"sync/atomic"

	"github.com/sjfhsjfh/tinymist/internal/docstore"
)

// World is the exclusive mutable compiler state owned by exactly one
// CompileActor goroutine (spec.md §4.8's "steal" protocol): the set of
// documents it knows about, its root directory, font search paths, and
// a per-World memoization generation.
//
// Nothing outside the owning actor's goroutine may touch a World's
// fields directly — all access goes through Steal/StealAsync closures
// run on the actor goroutine itself.
type World struct {
	Root      string
	FontPaths []string
	Store     *docstore.Store

	// Main is the path the Focus/Pin State Machine last resolved as the
	// effective entry (spec.md §4.7): the primary actor's notion of
	// "which document to compile" when a command needs one and no path
	// was given explicitly. Only ever touched from the owning actor's
	// goroutine via Steal.
	Main string

	// generation increments on every ClearCache, invalidating any
	// memoized query keyed by it — the Go analogue of the original
	// implementation's comemo::evict(0) (SPEC_FULL.md's supplemented
	// clear_cache fan-out semantics).
	generation uint64
}

// NewWorld constructs a World rooted at root, sharing store (the
// session-wide Document Store every World reads documents from).
func NewWorld(root string, fontPaths []string, store *docstore.Store) *World {
	return &World{Root: root, FontPaths: fontPaths, Store: store}
}

// Generation returns the World's current memoization generation.
func (w *World) Generation() uint64 {
	return atomic.LoadUint64(&w.generation)
}

// ClearCache bumps the generation counter, invalidating memoized query
// results keyed on it.
func (w *World) ClearCache() {
	atomic.AddUint64(&w.generation, 1)
}
