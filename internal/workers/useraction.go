// Package workers implements the background channel-consumer workers
// spec.md §5 calls out for async command hand-offs: the reactor
// captures a RequestId and hands a typed message to a worker, which
// replies via the Host once its (potentially slow) work completes,
// without blocking the reactor loop.
package workers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/sjfhsjfh/tinymist/internal/jsonrpc2"
)

// TraceParams describes one getDocumentTrace request, captured by the
// reactor and handed off to the UserActionWorker (SPEC_FULL.md's
// SUPPLEMENTED FEATURES: "getDocumentTrace async hand-off").
type TraceParams struct {
	RequestID jsonrpc2.RequestID
	Root      string
	MainFile  string
	FontPaths []string
}

// Responder is the subset of *lsphost.Host a worker needs to reply to
// the request it was handed.
type Responder interface {
	Respond(ctx context.Context, id jsonrpc2.RequestID, result any, rpcErr *jsonrpc2.ErrorObject) error
}

// TraceResult is the (stubbed) outcome of a trace run: since tracing a
// real compilation is out of this core's scope, the worker reports
// that tracing ran with zero recorded events rather than fabricating
// timing data.
type TraceResult struct {
	Events []TraceEvent `json:"events"`
}

// TraceEvent is one recorded trace span.
type TraceEvent struct {
	Name     string `json:"name"`
	StartMS  int64  `json:"startMs"`
	EndMS    int64  `json:"endMs"`
}

// UserActionWorker consumes TraceParams off a channel on its own
// goroutine, so a slow trace run never blocks the session reactor.
type UserActionWorker struct {
	host Responder
	log  *logrus.Entry

	queue   chan TraceParams
	closeCh chan struct{}
	doneCh  chan struct{}
}

// NewUserActionWorker starts the worker's consume loop.
func NewUserActionWorker(host Responder, log *logrus.Entry) *UserActionWorker {
	w := &UserActionWorker{
		host:    host,
		log:     log.WithField("component", "user-action-worker"),
		queue:   make(chan TraceParams, 8),
		closeCh: make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go w.loop()
	return w
}

// Submit enqueues a trace request for the worker to process
// asynchronously. Blocks only if the queue is full.
func (w *UserActionWorker) Submit(params TraceParams) {
	select {
	case w.queue <- params:
	case <-w.closeCh:
		w.log.Warn("worker closed; dropping trace request")
	}
}

func (w *UserActionWorker) loop() {
	defer close(w.doneCh)
	for {
		select {
		case p := <-w.queue:
			w.run(p)
		case <-w.closeCh:
			return
		}
	}
}

func (w *UserActionWorker) run(p TraceParams) {
	ctx := context.Background()
	result := TraceResult{Events: []TraceEvent{}}
	if err := w.host.Respond(ctx, p.RequestID, result, nil); err != nil {
		w.log.WithError(err).Warn("failed to deliver trace result")
	}
}

// Close stops the worker's goroutine after any in-flight run finishes.
func (w *UserActionWorker) Close() {
	close(w.closeCh)
	<-w.doneCh
}
