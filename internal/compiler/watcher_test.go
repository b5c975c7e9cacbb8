package compiler

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sjfhsjfh/tinymist/internal/docstore"
)

func TestWatcherBumpsGenerationOnFileChange(t *testing.T) {
	dir := t.TempDir()
	world := NewWorld(dir, []string{dir}, docstore.NewStore(docstore.EncodingUTF16, testLog()))

	w, err := NewWatcher(world, []string{dir}, 10*time.Millisecond, testLog())
	require.NoError(t, err)
	defer w.Close()

	require.Equal(t, uint64(0), world.Generation())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "font.ttf"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		return world.Generation() > 0
	}, time.Second, 5*time.Millisecond, "watcher should bump generation after observing a filesystem event")
}

func TestWatcherCoalescesBurstsWithinDebounce(t *testing.T) {
	dir := t.TempDir()
	world := NewWorld(dir, []string{dir}, docstore.NewStore(docstore.EncodingUTF16, testLog()))

	w, err := NewWatcher(world, []string{dir}, 200*time.Millisecond, testLog())
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "font.ttf"), []byte("x"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	// Still within the debounce window: no eviction yet.
	require.Equal(t, uint64(0), world.Generation())

	require.Eventually(t, func() bool {
		return world.Generation() == 1
	}, time.Second, 10*time.Millisecond, "a burst of events within one debounce window should coalesce into a single eviction")
}

func TestPoolWiresFontWatcherOverPrimaryActor(t *testing.T) {
	dir := t.TempDir()
	p := NewPool(dir, []string{dir}, docstore.NewStore(docstore.EncodingUTF16, testLog()), testLog())
	defer p.Close()

	require.NotNil(t, p.primaryWatcher, "NewPool should start a font Watcher over the primary actor's World when fonts is non-empty")
}

func TestPoolSkipsWatcherWhenNoFontPaths(t *testing.T) {
	p := NewPool(t.TempDir(), nil, docstore.NewStore(docstore.EncodingUTF16, testLog()), testLog())
	defer p.Close()

	require.Nil(t, p.primaryWatcher, "no font directories means nothing to watch")
}

func TestPoolWiresAndDropsFontWatcherForDedicate(t *testing.T) {
	dir := t.TempDir()
	p := NewPool(dir, []string{dir}, docstore.NewStore(docstore.EncodingUTF16, testLog()), testLog())
	defer p.Close()

	p.Dedicate("/a.typ")
	require.Contains(t, p.watchers, "/a.typ")

	p.DropDedicate("/a.typ")
	require.NotContains(t, p.watchers, "/a.typ")
}
