package registry

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sjfhsjfh/tinymist/internal/jsonrpc2"
	"github.com/sjfhsjfh/tinymist/internal/protocol"
)

type fakeHost struct {
	registerErr     *jsonrpc2.ErrorObject
	unregisterErr   *jsonrpc2.ErrorObject
	registerCalls   int
	unregisterCalls int
}

func (f *fakeHost) RegisterCapability(ctx context.Context, reg protocol.Registration, cb func(err *jsonrpc2.ErrorObject)) error {
	f.registerCalls++
	cb(f.registerErr)
	return nil
}

func (f *fakeHost) UnregisterCapability(ctx context.Context, id, method string, cb func(err *jsonrpc2.ErrorObject)) error {
	f.unregisterCalls++
	cb(f.unregisterErr)
	return nil
}

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l.WithField("test", true)
}

func TestEnableFlipsOnlyAfterAck(t *testing.T) {
	h := &fakeHost{}
	l := NewLedger(h, testLog())

	require.False(t, l.IsRegistered("semanticTokens"))
	l.Enable(context.Background(), "semanticTokens", "textDocument/semanticTokens", true, nil)
	require.True(t, l.IsRegistered("semanticTokens"))
	require.Equal(t, 1, h.registerCalls)
}

func TestEnableIsIdempotent(t *testing.T) {
	h := &fakeHost{}
	l := NewLedger(h, testLog())
	l.Enable(context.Background(), "formatting", "textDocument/formatting", true, nil)
	l.Enable(context.Background(), "formatting", "textDocument/formatting", true, nil)
	require.Equal(t, 1, h.registerCalls)
}

func TestEnableSkippedWhenClientDoesNotWantIt(t *testing.T) {
	h := &fakeHost{}
	l := NewLedger(h, testLog())
	l.Enable(context.Background(), "formatting", "textDocument/formatting", false, nil)
	require.False(t, l.IsRegistered("formatting"))
	require.Equal(t, 0, h.registerCalls)
}

func TestEnableRejectedStaysUnregistered(t *testing.T) {
	h := &fakeHost{registerErr: jsonrpc2.NewError(jsonrpc2.InternalError, "nope")}
	l := NewLedger(h, testLog())
	l.Enable(context.Background(), "formatting", "textDocument/formatting", true, nil)
	require.False(t, l.IsRegistered("formatting"))
}

func TestDisableFlipsOnlyAfterAck(t *testing.T) {
	h := &fakeHost{}
	l := NewLedger(h, testLog())
	l.Enable(context.Background(), "formatting", "textDocument/formatting", true, nil)
	require.True(t, l.IsRegistered("formatting"))

	l.Disable(context.Background(), "formatting")
	require.False(t, l.IsRegistered("formatting"))
}

func TestDisableOnUnregisteredIsNoop(t *testing.T) {
	h := &fakeHost{}
	l := NewLedger(h, testLog())
	l.Disable(context.Background(), "formatting")
	require.Equal(t, 0, h.unregisterCalls)
}
