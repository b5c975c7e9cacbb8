package focus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestResolveEmptyState(t *testing.T) {
	s := NewState(0)
	require.Equal(t, "", s.Resolve())
}

func TestPrecedenceLattice(t *testing.T) {
	s := NewState(0)
	s.SetImplicit("/a.typ", time.Now())
	require.Equal(t, "/a.typ", s.Resolve())
	require.Equal(t, SourceImplicit, s.ResolveSource())

	s.SetManual("/b.typ")
	require.Equal(t, "/b.typ", s.Resolve())
	require.Equal(t, SourceManual, s.ResolveSource())

	s.SetPinned("/c.typ")
	require.Equal(t, "/c.typ", s.Resolve())
	require.Equal(t, SourcePinned, s.ResolveSource())

	// Pin wins even if manual/implicit keep changing underneath it.
	s.SetManual("/d.typ")
	s.SetImplicit("/e.typ", time.Now())
	require.Equal(t, "/c.typ", s.Resolve())

	s.SetPinned("")
	require.Equal(t, "/d.typ", s.Resolve())

	// Once manual focus has ever been set, clearing it does not revert
	// to implicit focus — the effective entry sticks at the last
	// manually focused path (the ever_manual_focusing invariant).
	s.SetManual("")
	require.Equal(t, "/d.typ", s.Resolve())
}

func TestEverManualFocusingIsPermanent(t *testing.T) {
	s := NewState(0)
	s.SetImplicit("/a.typ", time.Now())
	require.Equal(t, "/a.typ", s.Resolve())

	s.SetManual("/b.typ")
	require.Equal(t, "/b.typ", s.Resolve())

	// Implicit activity can no longer move the effective entry, even
	// while manual focus is currently set...
	s.SetImplicit("/c.typ", time.Now())
	require.Equal(t, "/b.typ", s.Resolve())

	// ...nor after manual focus is cleared back to empty.
	s.SetManual("")
	require.Equal(t, "/b.typ", s.Resolve())
	s.SetImplicit("/d.typ", time.Now())
	require.Equal(t, "/b.typ", s.Resolve())

	// A fresh manual focus still takes precedence.
	s.SetManual("/e.typ")
	require.Equal(t, "/e.typ", s.Resolve())
}

func TestImplicitFocusDebounced(t *testing.T) {
	s := NewState(50 * time.Millisecond)
	base := time.Now()
	s.SetImplicit("/a.typ", base)
	require.Equal(t, "/a.typ", s.Resolve())

	// Within the debounce window: ignored.
	s.SetImplicit("/b.typ", base.Add(10*time.Millisecond))
	require.Equal(t, "/a.typ", s.Resolve())

	// Past the debounce window: accepted.
	s.SetImplicit("/b.typ", base.Add(60*time.Millisecond))
	require.Equal(t, "/b.typ", s.Resolve())
}
