package jsonrpc2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Conn pairs a Stream with the bookkeeping the session reactor needs
// around it: a single mutex serializing writes (the reactor itself is
// single-threaded, but callback-driven replies from compiler actor
// goroutines write concurrently) and a closed latch so a write after a
// fatal read error fails fast instead of racing the stream's own
// teardown.
type Conn struct {
	stream *Stream
	mu     sync.Mutex
	closed bool
}

// NewConn wraps stream in a Conn.
func NewConn(stream *Stream) *Conn {
	return &Conn{stream: stream}
}

// inboundHeader is the subset of fields every message shape shares,
// decoded first to classify the message before committing to a type.
type inboundHeader struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
}

func (h inboundHeader) hasID() bool {
	return len(h.ID) > 0 && string(h.ID) != "null"
}

// Read blocks for the next inbound message and classifies it into a
// *RequestMessage, *NotificationMessage, or *ResponseMessage (the
// reactor only ever expects the first two on this side of the wire,
// but a response can arrive for an outgoing request the Host sent —
// e.g. a workspace/configuration pull). ctx is checked once, before
// the read starts; a cancellation after that does not unblock the
// caller, which waits until the underlying stream read returns.
func (c *Conn) Read(ctx context.Context) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	raw, err := c.stream.ReadMessage()
	if err != nil {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		return nil, err
	}

	return decodeMessage(raw)
}

// decodeMessage classifies raw by the presence of "method" and "id"
// per the JSON-RPC 2.0 grammar, then fully decodes into the matching
// concrete type.
func decodeMessage(raw json.RawMessage) (any, error) {
	var hdr inboundHeader
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return nil, NewError(ParseError, fmt.Sprintf("failed to parse message envelope: %v", err))
	}

	switch {
	case hdr.Method != "" && hdr.hasID():
		var req RequestMessage
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, NewError(ParseError, fmt.Sprintf("failed to parse request: %v", err))
		}
		return &req, nil
	case hdr.Method != "":
		var ntf NotificationMessage
		if err := json.Unmarshal(raw, &ntf); err != nil {
			return nil, NewError(ParseError, fmt.Sprintf("failed to parse notification: %v", err))
		}
		return &ntf, nil
	case hdr.hasID():
		var resp ResponseMessage
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, NewError(ParseError, fmt.Sprintf("failed to parse response: %v", err))
		}
		return &resp, nil
	default:
		return nil, NewError(InvalidRequest, "message has neither method nor id; not a request, notification, or response")
	}
}

// Write serializes and sends msg, serialized against concurrent
// writers (the reactor's own replies and a compiler actor's
// StealAsync callback can both write at once).
func (c *Conn) Write(ctx context.Context, msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return io.ErrClosedPipe
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	return c.stream.WriteMessage(msg)
}

// Close marks the Conn closed and releases the underlying Stream.
// Idempotent.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.stream.Close()
}
