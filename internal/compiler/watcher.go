package compiler

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Watcher watches a World's font directories for
// external changes (e.g. a font installed while the editor is open)
// and evicts the World's cache, debounced to one eviction per window
// (SPEC_FULL.md §4.8's expansion), mirroring the debounce idiom used
// for implicit focus activity (internal/focus).
type Watcher struct {
	fsw   *fsnotify.Watcher
	world *World
	log   *logrus.Entry

	debounce time.Duration
	closeCh  chan struct{}
}

// NewWatcher creates a Watcher over the given directories, invalidating
// world on any event after coalescing within debounce.
func NewWatcher(world *World, dirs []string, debounce time.Duration, log *logrus.Entry) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, d := range dirs {
		if err := fsw.Add(d); err != nil {
			log.WithError(err).WithField("dir", d).Warn("failed to watch directory; skipping")
		}
	}

	w := &Watcher{
		fsw:      fsw,
		world:    world,
		log:      log,
		debounce: debounce,
		closeCh:  make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	var timer *time.Timer
	var fireCh <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.log.WithField("path", ev.Name).WithField("op", ev.Op.String()).Debug("fs event observed")
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fireCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-fireCh:
			w.world.ClearCache()
			timer = nil
			fireCh = nil
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("fsnotify error")
		case <-w.closeCh:
			return
		}
	}
}

// Close stops the Watcher and releases its fsnotify handle.
func (w *Watcher) Close() error {
	close(w.closeCh)
	return w.fsw.Close()
}
