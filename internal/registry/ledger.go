// Package registry implements the Capability Negotiator / Registration
// Ledger (spec.md §4.6): a per-capability two-state idempotent toggle
// that only flips to "registered" once the client has acknowledged the
// client/registerCapability request — mirroring the original server's
// enable_sema_token_caps / enable_formatter_caps inspect-on-success
// pattern, generalized to any capability id.
package registry

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sjfhsjfh/tinymist/internal/jsonrpc2"
	"github.com/sjfhsjfh/tinymist/internal/logging"
	"github.com/sjfhsjfh/tinymist/internal/protocol"
)

// Registerer is the subset of *lsphost.Host the ledger needs; kept as
// an interface so tests can fake the client side.
type Registerer interface {
	RegisterCapability(ctx context.Context, reg protocol.Registration, cb func(err *jsonrpc2.ErrorObject)) error
	UnregisterCapability(ctx context.Context, id, method string, cb func(err *jsonrpc2.ErrorObject)) error
}

// capState is one capability's current toggle position.
type capState struct {
	registered bool
	method     string
}

// Ledger tracks the registered/unregistered state of every dynamically
// registerable capability in one session.
type Ledger struct {
	log   *logrus.Entry
	host  Registerer
	dedup *logging.Deduper

	mu   sync.Mutex
	caps map[string]*capState
}

// NewLedger constructs an empty Ledger.
func NewLedger(host Registerer, log *logrus.Entry) *Ledger {
	return &Ledger{
		host:  host,
		log:   log,
		dedup: logging.NewDeduper(),
		caps:  make(map[string]*capState),
	}
}

// IsRegistered reports whether id is currently registered with the
// client. Safe for concurrent use.
func (l *Ledger) IsRegistered(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	st, ok := l.caps[id]
	return ok && st.registered
}

// Enable registers id (for method, with the given registerOptions) if
// it is not already registered. The toggle flips to registered only
// after the client acknowledges the request without error — a failed
// or pending registration leaves IsRegistered false, so a concurrent
// Enable call is safe to retry.
//
// wantClient reports whether the client's declared capabilities even
// support dynamic registration for this feature; when false, Enable is
// a no-op (some clients only support the capability statically via
// ServerCapabilities at initialize time).
func (l *Ledger) Enable(ctx context.Context, id, method string, wantClient bool, registerOptions any) {
	if !wantClient {
		return
	}

	l.mu.Lock()
	st, ok := l.caps[id]
	if !ok {
		st = &capState{method: method}
		l.caps[id] = st
	}
	if st.registered {
		l.mu.Unlock()
		return
	}
	l.mu.Unlock()

	err := l.host.RegisterCapability(ctx, protocol.Registration{
		ID:              id,
		Method:          method,
		RegisterOptions: registerOptions,
	}, func(rpcErr *jsonrpc2.ErrorObject) {
		if rpcErr != nil {
			l.log.WithField("capability", id).Warnf("client rejected dynamic registration: %s", rpcErr.Message)
			return
		}
		l.mu.Lock()
		st.registered = true
		l.mu.Unlock()
	})
	if err != nil {
		l.dedup.WarnOnce(l.log.WithError(err).WithField("capability", id), "register:"+id,
			"failed to send registerCapability")
	}
}

// Disable unregisters id if it is currently registered. Like Enable,
// the toggle only flips to unregistered after the client acknowledges.
func (l *Ledger) Disable(ctx context.Context, id string) {
	l.mu.Lock()
	st, ok := l.caps[id]
	if !ok || !st.registered {
		l.mu.Unlock()
		return
	}
	method := st.method
	l.mu.Unlock()

	err := l.host.UnregisterCapability(ctx, id, method, func(rpcErr *jsonrpc2.ErrorObject) {
		if rpcErr != nil {
			l.log.WithField("capability", id).Warnf("client rejected unregistration: %s", rpcErr.Message)
			return
		}
		l.mu.Lock()
		st.registered = false
		l.mu.Unlock()
	})
	if err != nil {
		l.dedup.WarnOnce(l.log.WithError(err).WithField("capability", id), "unregister:"+id,
			"failed to send unregisterCapability")
	}
}
