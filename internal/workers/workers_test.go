package workers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sjfhsjfh/tinymist/internal/jsonrpc2"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l.WithField("test", true)
}

type fakeResponder struct {
	respond chan struct {
		id     jsonrpc2.RequestID
		result any
		err    *jsonrpc2.ErrorObject
	}
}

func newFakeResponder() *fakeResponder {
	return &fakeResponder{respond: make(chan struct {
		id     jsonrpc2.RequestID
		result any
		err    *jsonrpc2.ErrorObject
	}, 1)}
}

func (f *fakeResponder) Respond(ctx context.Context, id jsonrpc2.RequestID, result any, rpcErr *jsonrpc2.ErrorObject) error {
	f.respond <- struct {
		id     jsonrpc2.RequestID
		result any
		err    *jsonrpc2.ErrorObject
	}{id, result, rpcErr}
	return nil
}

func TestUserActionWorkerRespondsAsynchronously(t *testing.T) {
	host := newFakeResponder()
	w := NewUserActionWorker(host, testLog())
	defer w.Close()

	id := json.RawMessage("7")
	w.Submit(TraceParams{RequestID: id, Root: "/root", MainFile: "/root/main.typ"})

	select {
	case got := <-host.respond:
		require.Equal(t, id, got.id)
		require.Nil(t, got.err)
		result, ok := got.result.(TraceResult)
		require.True(t, ok)
		require.Empty(t, result.Events)
	case <-time.After(time.Second):
		t.Fatal("worker never responded")
	}
}

func TestExportWorkerSynthesizesPath(t *testing.T) {
	w := NewExportWorker(testLog())
	defer w.Close()

	done := make(chan ExportResult, 1)
	w.Export(context.Background(), "/doc.typ", ExportPDF, DefaultExportOpts(), func(r ExportResult, err error) {
		require.NoError(t, err)
		done <- r
	})

	select {
	case r := <-done:
		require.Equal(t, "/doc.typ.pdf", r.Path)
	case <-time.After(time.Second):
		t.Fatal("export worker never replied")
	}
}

func TestExportWorkerAllPagesSuffix(t *testing.T) {
	w := NewExportWorker(testLog())
	defer w.Close()

	done := make(chan ExportResult, 1)
	w.Export(context.Background(), "/doc.typ", ExportSVG, ExportOpts{Page: PageSelectionAll}, func(r ExportResult, err error) {
		done <- r
	})
	r := <-done
	require.Equal(t, "/doc.typ.svg-all", r.Path)
}
