package lsphost

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sjfhsjfh/tinymist/internal/jsonrpc2"
	"github.com/sjfhsjfh/tinymist/internal/protocol"
)

// loopback pairs a Conn's writer with a buffer we can inspect, and never
// produces read data of its own (tests drive RegisterResponse directly).
type loopback struct {
	io.Reader
	out *bytes.Buffer
}

func (l *loopback) Write(p []byte) (int, error) { return l.out.Write(p) }

func newTestHost(t *testing.T) (*Host, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	rw := &loopback{Reader: bytes.NewReader(nil), out: out}
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(rw))
	log := logrus.New().WithField("test", true)
	return NewHost(conn, log), out
}

func TestHostSendNotification(t *testing.T) {
	h, out := newTestHost(t)
	h.SendNotification(context.Background(), protocol.MethodWindowLogMessage, protocol.LogMessageParams{
		Type:    protocol.Info,
		Message: "hello",
	})
	require.Contains(t, out.String(), "window/logMessage")
	require.Contains(t, out.String(), "hello")
}

func TestHostSendRequestRoutesResponse(t *testing.T) {
	h, out := newTestHost(t)

	var gotResult string
	var gotErr *jsonrpc2.ErrorObject
	err := h.SendRequest(context.Background(), protocol.MethodWorkspaceConfiguration, protocol.ConfigurationParams{}, func(result json.RawMessage, rpcErr *jsonrpc2.ErrorObject) {
		_ = json.Unmarshal(result, &gotResult)
		gotErr = rpcErr
	})
	require.NoError(t, err)
	require.Contains(t, out.String(), "workspace/configuration")

	// Pull the id the Host actually wrote so the test doesn't hardcode it.
	headerEnd := bytes.Index(out.Bytes(), []byte("\r\n\r\n"))
	require.GreaterOrEqual(t, headerEnd, 0)
	var sent jsonrpc2.RequestMessage
	require.NoError(t, json.Unmarshal(out.Bytes()[headerEnd+4:], &sent))

	resultRaw, _ := json.Marshal("ok")
	handled := h.RegisterResponse(&jsonrpc2.ResponseMessage{
		JSONRPC: jsonrpc2.Version,
		ID:      sent.ID,
		Result:  resultRaw,
	})
	require.True(t, handled)
	require.Equal(t, "ok", gotResult)
	require.Nil(t, gotErr)

	// A second response with the same id is no longer pending.
	handled = h.RegisterResponse(&jsonrpc2.ResponseMessage{JSONRPC: jsonrpc2.Version, ID: sent.ID, Result: resultRaw})
	require.False(t, handled)
}

func TestHostRespond(t *testing.T) {
	h, out := newTestHost(t)
	id := json.RawMessage("1")
	err := h.Respond(context.Background(), id, map[string]string{"ok": "true"}, nil)
	require.NoError(t, err)
	require.Contains(t, out.String(), `"ok":"true"`)
}

func TestHostPublishDiagnosticsDefaultsToEmptySlice(t *testing.T) {
	h, out := newTestHost(t)
	h.PublishDiagnostics(context.Background(), "file:///a.typ", nil, nil)
	require.Contains(t, out.String(), `"diagnostics":[]`)
}
