// Package logging configures the session's structured logger and
// implements per-site deduplicated warning logging: a stable string
// key identifies a log *site* (not a single message), and the site
// emits at most once regardless of how many times it's hit — used for
// conditions that are expected to repeat rapidly (dynamic registration
// rejects, package scan failures) and would otherwise flood stderr.
package logging

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// New constructs the session's root logger, writing structured
// (text, human-oriented) logs to stderr — stdout is reserved for the
// JSON-RPC wire.
func New(level logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return log
}

// Deduper emits a Warn-level log line for a given key at most once for
// its lifetime. Safe for concurrent use across the compiler pool and
// session reactor.
type Deduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDeduper constructs an empty Deduper.
func NewDeduper() *Deduper {
	return &Deduper{seen: make(map[string]struct{})}
}

// WarnOnce logs entry.Warn(message) the first time key is seen, and is
// a no-op on every subsequent call with the same key.
func (d *Deduper) WarnOnce(entry *logrus.Entry, key, message string) {
	d.mu.Lock()
	_, already := d.seen[key]
	if !already {
		d.seen[key] = struct{}{}
	}
	d.mu.Unlock()

	if !already {
		entry.Warn(message)
	}
}
