// Package focus implements the Focus/Pin State Machine (spec.md §4.7):
// which open document a no-path query (e.g. one triggered from a
// command palette action with no active editor context) should target,
// under the precedence lattice pinned > manual-focus > implicit-focus.
package focus

import (
	"sync"
	"time"
)

// Source ranks how a path came to be the focus target. Higher values
// win ties when more than one source is set.
type Source int

const (
	// SourceImplicit is set whenever the client reports cursor/focus
	// activity in any open document (e.g. didChangeTextDocument,
	// a cursor-position notification) — the lowest-precedence signal.
	SourceImplicit Source = iota
	// SourceManual is set by an explicit focusMain command.
	SourceManual
	// SourcePinned is set by pinMain and overrides everything
	// else until unpinned.
	SourcePinned
)

// State tracks, per session, the currently focused path at each
// precedence level and resolves which one is "the" focus.
type State struct {
	mu sync.Mutex

	pinned   string
	manual   string
	implicit string

	// everManual is the ever_manual_focusing permanence flag: once the
	// user has issued one explicit focusMain call, implicit
	// cursor/activity tracking can never again move the effective
	// entry, even across a later focusMain("") clearing manual
	// back to empty. Set once, never cleared.
	everManual bool
	// lastManual is the last non-empty path SetManual was given. Once
	// everManual is set, this is what Resolve falls back to instead of
	// implicit — the effective entry stays put rather than reverting
	// to whatever the cursor last touched.
	lastManual string

	// debounce coalesces rapid implicit-focus updates (e.g. many
	// didChange notifications while typing) into one state change per
	// window, mirroring the compiler pool's clear-cache coalescing
	// (SPEC_FULL.md §4.8).
	debounce     time.Duration
	lastImplicit time.Time
}

// NewState constructs a State with the given implicit-focus debounce
// window. A zero debounce disables coalescing.
func NewState(debounce time.Duration) *State {
	return &State{debounce: debounce}
}

// SetPinned pins path, giving it top precedence. Passing "" unpins.
func (s *State) SetPinned(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pinned = path
}

// SetManual sets the manually focused path (e.g. focusMain).
// Passing "" clears manual focus, but the effective entry does not
// revert to implicit focus once SetManual has been called at all,
// with any path — see everManual.
func (s *State) SetManual(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.everManual = true
	s.manual = path
	if path != "" {
		s.lastManual = path
	}
}

// SetImplicit records activity in path as the lowest-precedence
// signal, subject to the debounce window. A no-op once the user has
// ever manually focused (everManual): the original implementation's
// ever_manual_focusing invariant forbids implicit activity from ever
// moving the effective entry again after one explicit focus.
func (s *State) SetImplicit(path string, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.everManual {
		return
	}
	if s.debounce > 0 && !s.lastImplicit.IsZero() && now.Sub(s.lastImplicit) < s.debounce {
		return
	}
	s.implicit = path
	s.lastImplicit = now
}

// Resolve returns the path that should serve as the focus target,
// applying the pinned > manual > implicit precedence lattice, or ""
// if no source has ever been set. Once everManual is set, the
// implicit fallback is replaced by lastManual: the effective entry
// sticks at the last manually focused path instead of reverting to
// implicit activity.
func (s *State) Resolve() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pinned != "" {
		return s.pinned
	}
	if s.manual != "" {
		return s.manual
	}
	if s.everManual {
		return s.lastManual
	}
	return s.implicit
}

// ResolveSource reports which Source the current Resolve() result came
// from, for diagnostics/logging.
func (s *State) ResolveSource() Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.pinned != "":
		return SourcePinned
	case s.manual != "" || s.everManual:
		return SourceManual
	default:
		return SourceImplicit
	}
}
