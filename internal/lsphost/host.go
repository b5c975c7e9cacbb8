// Package lsphost implements the Message Codec & Host: the boundary
// between the raw JSON-RPC connection and the session reactor. It owns
// outgoing-request bookkeeping (PendingOutgoing) so that responses to
// server-initiated requests (workspace/configuration,
// client/registerCapability, workspace/applyEdit, ...) can be routed
// back to the closure that issued them, and exposes the small set of
// notification/request helpers every other package uses to talk to the
// client.
package lsphost

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/sjfhsjfh/tinymist/internal/jsonrpc2"
	"github.com/sjfhsjfh/tinymist/internal/protocol"
)

// ResponseCallback is invoked once with the raw result bytes of a
// server-initiated request, or with a non-nil err if the client replied
// with an error. It is not invoked if no reply ever arrives.
type ResponseCallback func(result json.RawMessage, err *jsonrpc2.ErrorObject)

// Host wraps a Conn and tracks requests the server itself issued to the
// client, matching spec.md's Message Codec & Host component.
type Host struct {
	conn *jsonrpc2.Conn
	log  *logrus.Entry

	nextID int64

	mu      sync.Mutex
	pending map[string]ResponseCallback
}

// NewHost constructs a Host around an already-open connection.
func NewHost(conn *jsonrpc2.Conn, log *logrus.Entry) *Host {
	return &Host{
		conn:    conn,
		log:     log,
		pending: make(map[string]ResponseCallback),
	}
}

// SendNotification marshals params and writes a notification. Marshal
// failures are logged and swallowed — a notification has no reply path
// to report the failure on.
func (h *Host) SendNotification(ctx context.Context, method string, params any) {
	raw, err := json.Marshal(params)
	if err != nil {
		h.log.WithError(err).WithField("method", method).Error("failed to marshal notification params")
		return
	}
	msg := &jsonrpc2.NotificationMessage{
		JSONRPC: jsonrpc2.Version,
		Method:  method,
		Params:  raw,
	}
	if err := h.conn.Write(ctx, msg); err != nil {
		h.log.WithError(err).WithField("method", method).Error("failed to write notification")
	}
}

// SendRequest issues a server-to-client request and registers cb to be
// invoked when the matching response arrives via RegisterResponse. The
// request id is a small sequential integer, matching what editors
// expect on this wire (see SPEC_FULL.md's AMBIENT STACK note on ids).
func (h *Host) SendRequest(ctx context.Context, method string, params any, cb ResponseCallback) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal request params: %w", err)
	}
	id := atomic.AddInt64(&h.nextID, 1)
	idRaw, _ := json.Marshal(id)

	h.mu.Lock()
	h.pending[string(idRaw)] = cb
	h.mu.Unlock()

	msg := &jsonrpc2.RequestMessage{
		JSONRPC: jsonrpc2.Version,
		ID:      idRaw,
		Method:  method,
		Params:  raw,
	}
	if err := h.conn.Write(ctx, msg); err != nil {
		h.mu.Lock()
		delete(h.pending, string(idRaw))
		h.mu.Unlock()
		return err
	}
	return nil
}

// RegisterResponse dispatches an incoming ResponseMessage to the
// callback registered by the matching SendRequest call, if any. Returns
// false when the id is unknown (already handled, or a response to a
// request this process never issued).
func (h *Host) RegisterResponse(resp *jsonrpc2.ResponseMessage) bool {
	key := string(resp.ID)
	h.mu.Lock()
	cb, ok := h.pending[key]
	if ok {
		delete(h.pending, key)
	}
	h.mu.Unlock()
	if !ok {
		return false
	}
	cb(resp.Result, resp.Error)
	return true
}

// Respond writes a response to a client-initiated request.
func (h *Host) Respond(ctx context.Context, id jsonrpc2.RequestID, result any, rpcErr *jsonrpc2.ErrorObject) error {
	var msg *jsonrpc2.ResponseMessage
	if rpcErr != nil {
		msg = jsonrpc2.NewErrorResponse(id, rpcErr)
	} else {
		msg = jsonrpc2.NewResponse(id, result)
	}
	return h.conn.Write(ctx, msg)
}

// ShowMessage sends window/showMessage.
func (h *Host) ShowMessage(ctx context.Context, kind protocol.MessageType, message string) {
	h.SendNotification(ctx, protocol.MethodWindowShowMessage, protocol.ShowMessageParams{
		Type:    kind,
		Message: message,
	})
}

// LogMessage sends window/logMessage.
func (h *Host) LogMessage(ctx context.Context, kind protocol.MessageType, message string) {
	h.SendNotification(ctx, protocol.MethodWindowLogMessage, protocol.LogMessageParams{
		Type:    kind,
		Message: message,
	})
}

// PublishDiagnostics sends textDocument/publishDiagnostics for uri. The
// server always sends the full current diagnostic set, per the LSP
// spec's replace-not-merge semantics.
func (h *Host) PublishDiagnostics(ctx context.Context, uri protocol.DocumentURI, version *int, diags []protocol.Diagnostic) {
	if diags == nil {
		diags = []protocol.Diagnostic{}
	}
	h.SendNotification(ctx, protocol.MethodTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     version,
		Diagnostics: diags,
	})
}

// RequestConfiguration asks the client for configuration sections via
// workspace/configuration, matching tinymist's did_change_configuration
// fallback when the notification form is absent.
func (h *Host) RequestConfiguration(ctx context.Context, items []protocol.ConfigurationItem, cb func([]json.RawMessage, *jsonrpc2.ErrorObject)) error {
	return h.SendRequest(ctx, protocol.MethodWorkspaceConfiguration, protocol.ConfigurationParams{Items: items}, func(result json.RawMessage, rpcErr *jsonrpc2.ErrorObject) {
		if rpcErr != nil {
			cb(nil, rpcErr)
			return
		}
		var sections []json.RawMessage
		if err := json.Unmarshal(result, &sections); err != nil {
			cb(nil, jsonrpc2.NewError(jsonrpc2.InternalError, fmt.Sprintf("malformed workspace/configuration result: %v", err)))
			return
		}
		cb(sections, nil)
	})
}

// RegisterCapability sends client/registerCapability for a single
// registration and routes the (empty) acknowledgement to cb. Used by
// the Registration Ledger to implement its inspect-on-success toggle.
func (h *Host) RegisterCapability(ctx context.Context, reg protocol.Registration, cb func(err *jsonrpc2.ErrorObject)) error {
	return h.SendRequest(ctx, protocol.MethodRegisterCapability, protocol.RegistrationParams{
		Registrations: []protocol.Registration{reg},
	}, func(_ json.RawMessage, rpcErr *jsonrpc2.ErrorObject) {
		cb(rpcErr)
	})
}

// UnregisterCapability sends client/unregisterCapability for a single id.
func (h *Host) UnregisterCapability(ctx context.Context, id, method string, cb func(err *jsonrpc2.ErrorObject)) error {
	return h.SendRequest(ctx, protocol.MethodUnregisterCapability, protocol.UnregistrationParams{
		Unregisterations: []protocol.Unregistration{{ID: id, Method: method}},
	}, func(_ json.RawMessage, rpcErr *jsonrpc2.ErrorObject) {
		cb(rpcErr)
	})
}

// ApplyWorkspaceEdit sends workspace/applyEdit and reports whether the
// client applied it.
func (h *Host) ApplyWorkspaceEdit(ctx context.Context, edit protocol.WorkspaceEdit, cb func(applied bool, err *jsonrpc2.ErrorObject)) error {
	return h.SendRequest(ctx, protocol.MethodWorkspaceApplyEdit, protocol.ApplyWorkspaceEditParams{Edit: edit}, func(result json.RawMessage, rpcErr *jsonrpc2.ErrorObject) {
		if rpcErr != nil {
			cb(false, rpcErr)
			return
		}
		var res protocol.ApplyWorkspaceEditResult
		if err := json.Unmarshal(result, &res); err != nil {
			cb(false, jsonrpc2.NewError(jsonrpc2.InternalError, fmt.Sprintf("malformed workspace/applyEdit result: %v", err)))
			return
		}
		cb(res.Applied, nil)
	})
}
