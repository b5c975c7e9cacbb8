package compiler

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sjfhsjfh/tinymist/internal/docstore"
)

// watchDebounce is the coalescing window applied to every per-World
// Watcher: one evict per window, matching the debounce idiom used for
// focus activity (internal/focus.State).
const watchDebounce = 250 * time.Millisecond

// Pool owns the session's primary compiler actor plus any number of
// dedicated actors created for focused documents, and fans
// ClearCache/Close out across all of them (spec.md §4.8).
type Pool struct {
	log   *logrus.Entry
	store *docstore.Store
	root  string
	fonts []string

	mu             sync.Mutex
	primary        *Actor
	primaryWatcher *Watcher
	dedicate       map[string]*Actor   // keyed by normalized document path
	watchers       map[string]*Watcher // keyed the same as dedicate
}

// NewPool constructs a Pool with one primary actor rooted at root. If
// fonts is non-empty, the primary actor's World is watched for
// external changes (SPEC_FULL.md §4.8's expansion) so a font installed
// while the editor is open gets picked up without an explicit
// doClearCache.
func NewPool(root string, fonts []string, store *docstore.Store, log *logrus.Entry) *Pool {
	p := &Pool{
		log:      log,
		store:    store,
		root:     root,
		fonts:    fonts,
		dedicate: make(map[string]*Actor),
		watchers: make(map[string]*Watcher),
	}
	p.primary = NewActor(NewWorld(root, fonts, store), "primary", log)
	p.primaryWatcher = p.watchFonts(p.primary)
	return p
}

// watchFonts starts a Watcher over actor's World's font directories,
// logging and returning nil if fonts is empty or the watcher can't be
// constructed (a missing/unreadable directory shouldn't prevent the
// actor itself from working).
func (p *Pool) watchFonts(a *Actor) *Watcher {
	if len(p.fonts) == 0 {
		return nil
	}
	w, err := NewWatcher(a.World(), p.fonts, watchDebounce, p.log.WithField("watching", a.Label))
	if err != nil {
		p.log.WithError(err).WithField("actor", a.Label).Warn("failed to start font watcher")
		return nil
	}
	return w
}

// Primary returns the session's primary actor, used for workspace-wide
// queries (workspace/symbol, clearCache, export with no focus).
func (p *Pool) Primary() *Actor {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.primary
}

// Dedicate returns (creating if necessary) the dedicated actor for
// path — a document that has its own World so queries against it never
// contend with the primary actor's workspace-wide work.
func (p *Pool) Dedicate(path string) *Actor {
	p.mu.Lock()
	defer p.mu.Unlock()
	if a, ok := p.dedicate[path]; ok {
		return a
	}
	a := NewActor(NewWorld(p.root, p.fonts, p.store), path, p.log)
	p.dedicate[path] = a
	if w := p.watchFonts(a); w != nil {
		p.watchers[path] = w
	}
	return a
}

// DropDedicate closes and removes the dedicated actor for path, if one
// exists (e.g. on textDocument/didClose).
func (p *Pool) DropDedicate(path string) {
	p.mu.Lock()
	a, ok := p.dedicate[path]
	if ok {
		delete(p.dedicate, path)
	}
	w, watched := p.watchers[path]
	if watched {
		delete(p.watchers, path)
	}
	p.mu.Unlock()
	if watched {
		_ = w.Close()
	}
	if ok {
		a.Close()
	}
}

// ClearAll bumps the generation counter on every actor's World — the
// primary and every dedicate — implementing the original server's
// clear_cache fan-out (SPEC_FULL.md's supplemented features section).
func (p *Pool) ClearAll() {
	p.mu.Lock()
	actors := make([]*Actor, 0, len(p.dedicate)+1)
	actors = append(actors, p.primary)
	for _, a := range p.dedicate {
		actors = append(actors, a)
	}
	p.mu.Unlock()

	for _, a := range actors {
		a.world.ClearCache()
	}
}

// Close stops every actor in the pool and any Watchers over them.
func (p *Pool) Close() {
	p.mu.Lock()
	actors := make([]*Actor, 0, len(p.dedicate)+1)
	actors = append(actors, p.primary)
	for _, a := range p.dedicate {
		actors = append(actors, a)
	}
	watchers := make([]*Watcher, 0, len(p.watchers)+1)
	if p.primaryWatcher != nil {
		watchers = append(watchers, p.primaryWatcher)
	}
	for _, w := range p.watchers {
		watchers = append(watchers, w)
	}
	p.dedicate = make(map[string]*Actor)
	p.watchers = make(map[string]*Watcher)
	p.mu.Unlock()

	for _, w := range watchers {
		_ = w.Close()
	}
	for _, a := range actors {
		a.Close()
	}
}
