package session

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sjfhsjfh/tinymist/internal/jsonrpc2"
	"github.com/sjfhsjfh/tinymist/internal/protocol"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l.WithField("test", true)
}

// harness wires a Session to one end of an in-memory pipe and drives
// Run in the background, leaving the other end for the test to act as
// the client: write requests/notifications, read responses.
type harness struct {
	t      *testing.T
	s      *Session
	client *jsonrpc2.Stream
	cancel context.CancelFunc
	runErr chan error
	nextID int64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	serverConn, clientConn := net.Pipe()

	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(serverConn))
	s := New(conn, testLogger(), Options{CommandPrefix: "tinymist", PackageRoot: t.TempDir()})

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{
		t:      t,
		s:      s,
		client: jsonrpc2.NewStream(clientConn),
		cancel: cancel,
		runErr: make(chan error, 1),
	}
	go func() { h.runErr <- s.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		_ = serverConn.Close()
		_ = clientConn.Close()
	})
	return h
}

func (h *harness) send(method string, params any) {
	h.t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(h.t, err)
	require.NoError(h.t, h.client.WriteMessage(&jsonrpc2.NotificationMessage{
		JSONRPC: jsonrpc2.Version,
		Method:  method,
		Params:  raw,
	}))
}

func (h *harness) request(method string, params any) jsonrpc2.RequestID {
	h.t.Helper()
	h.nextID++
	id, err := json.Marshal(h.nextID)
	require.NoError(h.t, err)
	raw, err := json.Marshal(params)
	require.NoError(h.t, err)
	require.NoError(h.t, h.client.WriteMessage(&jsonrpc2.RequestMessage{
		JSONRPC: jsonrpc2.Version,
		ID:      id,
		Method:  method,
		Params:  raw,
	}))
	return id
}

func (h *harness) readResponse() *jsonrpc2.ResponseMessage {
	h.t.Helper()
	raw, err := h.client.ReadMessage()
	require.NoError(h.t, err)
	var resp jsonrpc2.ResponseMessage
	require.NoError(h.t, json.Unmarshal(raw, &resp))
	return &resp
}

func (h *harness) initialize(caps protocol.ClientCapabilities) *protocol.InitializeResult {
	h.t.Helper()
	h.request(protocol.MethodInitialize, protocol.InitializeParams{Capabilities: caps})
	resp := h.readResponse()
	require.Nil(h.t, resp.Error)
	var result protocol.InitializeResult
	require.NoError(h.t, json.Unmarshal(resp.Result, &result))
	h.send(protocol.MethodInitialized, protocol.InitializedParams{})
	return &result
}

func TestReactor_InitializeNegotiatesStaticCapabilitiesWithoutDynamicReg(t *testing.T) {
	h := newHarness(t)
	result := h.initialize(protocol.ClientCapabilities{})

	assert.Equal(t, "tinymist-lsp", result.ServerInfo.Name)
	assert.True(t, result.Capabilities.DocumentFormattingProvider, "static formatting capability expected when client lacks dynamic registration")
	require.NotNil(t, result.Capabilities.SemanticTokensProvider)
	assert.True(t, result.Capabilities.SemanticTokensProvider.Full)
}

func TestReactor_RequestBeforeInitializeIsRejected(t *testing.T) {
	h := newHarness(t)
	h.request(protocol.MethodTextDocumentHover, protocol.HoverParams{})
	resp := h.readResponse()
	require.NotNil(t, resp.Error)
	assert.Equal(t, jsonrpc2.ServerNotInitialized, resp.Error.Code)
}

func TestReactor_UnknownMethodAfterInitializeIsMethodNotFound(t *testing.T) {
	h := newHarness(t)
	h.initialize(protocol.ClientCapabilities{})

	h.request("textDocument/madeUpMethod", struct{}{})
	resp := h.readResponse()
	require.NotNil(t, resp.Error)
	assert.Equal(t, jsonrpc2.MethodNotFound, resp.Error.Code)
}

func TestReactor_ShutdownGatesFurtherRequests(t *testing.T) {
	h := newHarness(t)
	h.initialize(protocol.ClientCapabilities{})

	h.request(protocol.MethodShutdown, struct{}{})
	resp := h.readResponse()
	require.Nil(t, resp.Error)

	h.request(protocol.MethodTextDocumentHover, protocol.HoverParams{})
	resp = h.readResponse()
	require.NotNil(t, resp.Error)
	assert.Equal(t, jsonrpc2.InvalidRequest, resp.Error.Code)
	assert.Equal(t, "Shutdown already requested.", resp.Error.Message)
}

func TestReactor_ExitTerminatesRunLoop(t *testing.T) {
	h := newHarness(t)
	h.initialize(protocol.ClientCapabilities{})
	h.send(protocol.MethodExit, protocol.ExitParams{})

	select {
	case err := <-h.runErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after exit notification")
	}
}

func TestDocSync_OpenThenHoverRoundTrips(t *testing.T) {
	h := newHarness(t)
	h.initialize(protocol.ClientCapabilities{})

	h.send(protocol.MethodTextDocumentDidOpen, protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        "file:///doc.typ",
			LanguageID: "typst",
			Version:    1,
			Text:       "= hi",
		},
	})

	h.request(protocol.MethodTextDocumentHover, protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///doc.typ"},
			Position:     protocol.Position{Line: 0, Character: 0},
		},
	})
	resp := h.readResponse()
	require.Nil(t, resp.Error)
	assert.Equal(t, "null", string(resp.Result))
}

func TestFocusPrecedence_PinnedBeatsManualBeatsImplicit(t *testing.T) {
	s := New(jsonrpc2.NewConn(jsonrpc2.NewStream(new(loopbackConn))), testLogger(), Options{PackageRoot: t.TempDir()})

	s.focus.SetImplicit("/a.typ", time.Now())
	assert.Equal(t, "/a.typ", s.focus.Resolve())

	s.focus.SetManual("/b.typ")
	assert.Equal(t, "/b.typ", s.focus.Resolve())

	s.focus.SetImplicit("/c.typ", time.Now().Add(time.Second))
	assert.Equal(t, "/b.typ", s.focus.Resolve(), "manual focus must not be overridden by implicit activity")

	s.focus.SetPinned("/d.typ")
	assert.Equal(t, "/d.typ", s.focus.Resolve(), "pinned must win over manual")
}

func TestCommandRouter_UnknownCommandIsMethodNotFound(t *testing.T) {
	h := newHarness(t)
	h.initialize(protocol.ClientCapabilities{})

	h.request(protocol.MethodWorkspaceExecuteCommand, protocol.ExecuteCommandParams{Command: "tinymist.doesNotExist"})
	resp := h.readResponse()
	require.NotNil(t, resp.Error)
	assert.Equal(t, jsonrpc2.MethodNotFound, resp.Error.Code)
}

func TestCommandRouter_DoClearCacheSucceeds(t *testing.T) {
	h := newHarness(t)
	h.initialize(protocol.ClientCapabilities{})

	h.request(protocol.MethodWorkspaceExecuteCommand, protocol.ExecuteCommandParams{Command: "tinymist.doClearCache"})
	resp := h.readResponse()
	assert.Nil(t, resp.Error)
}

func TestParsePackageSpec(t *testing.T) {
	spec, err := parsePackageSpec("@preview/example:0.1.0")
	require.NoError(t, err)
	assert.Equal(t, "preview", spec.Namespace)
	assert.Equal(t, "example", spec.Name)
	require.NotNil(t, spec.Version)
	assert.Equal(t, "0.1.0", spec.Version.String())

	unversioned, err := parsePackageSpec("@preview/example")
	require.NoError(t, err)
	assert.Nil(t, unversioned.Version)

	_, err = parsePackageSpec("not-a-spec")
	assert.Error(t, err)
}

// loopbackConn is a minimal io.ReadWriteCloser that never yields data,
// sufficient for constructing a Session in tests that never Run it.
type loopbackConn struct{}

func (loopbackConn) Read(p []byte) (int, error)  { select {} }
func (loopbackConn) Write(p []byte) (int, error) { return len(p), nil }
func (loopbackConn) Close() error                { return nil }
