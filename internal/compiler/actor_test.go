package compiler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sjfhsjfh/tinymist/internal/docstore"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l.WithField("test", true)
}

func TestActorStealReturnsClosureResult(t *testing.T) {
	world := NewWorld("/root", nil, docstore.NewStore(docstore.EncodingUTF16, testLog()))
	a := NewActor(world, "t", testLog())
	defer a.Close()

	v, err := a.Steal(context.Background(), func(w *World) (any, error) {
		w.ClearCache()
		return w.Generation(), nil
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), v)
}

func TestActorStealPropagatesError(t *testing.T) {
	world := NewWorld("/root", nil, docstore.NewStore(docstore.EncodingUTF16, testLog()))
	a := NewActor(world, "t", testLog())
	defer a.Close()

	boom := errors.New("boom")
	_, err := a.Steal(context.Background(), func(w *World) (any, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestActorStealAsyncCallsBackOnActorGoroutine(t *testing.T) {
	world := NewWorld("/root", nil, docstore.NewStore(docstore.EncodingUTF16, testLog()))
	a := NewActor(world, "t", testLog())
	defer a.Close()

	done := make(chan any, 1)
	err := a.StealAsync(func(w *World) (any, error) {
		return "ok", nil
	}, func(v any, err error) {
		done <- v
	})
	require.NoError(t, err)

	select {
	case v := <-done:
		require.Equal(t, "ok", v)
	case <-time.After(time.Second):
		t.Fatal("callback never fired")
	}
}

func TestActorStealAfterCloseErrors(t *testing.T) {
	world := NewWorld("/root", nil, docstore.NewStore(docstore.EncodingUTF16, testLog()))
	a := NewActor(world, "t", testLog())
	a.Close()

	_, err := a.Steal(context.Background(), func(w *World) (any, error) { return nil, nil })
	require.Error(t, err)
}

func TestPoolDedicateIsLazyAndStable(t *testing.T) {
	p := NewPool("/root", nil, docstore.NewStore(docstore.EncodingUTF16, testLog()), testLog())
	defer p.Close()

	a1 := p.Dedicate("/a.typ")
	a2 := p.Dedicate("/a.typ")
	require.Same(t, a1, a2)

	b := p.Dedicate("/b.typ")
	require.NotSame(t, a1, b)
}

func TestPoolClearAllBumpsEveryActor(t *testing.T) {
	p := NewPool("/root", nil, docstore.NewStore(docstore.EncodingUTF16, testLog()), testLog())
	defer p.Close()

	dedicate := p.Dedicate("/a.typ")
	p.ClearAll()

	require.Equal(t, uint64(1), p.Primary().World().Generation())
	require.Equal(t, uint64(1), dedicate.World().Generation())
}

func TestPoolDropDedicateRemoves(t *testing.T) {
	p := NewPool("/root", nil, docstore.NewStore(docstore.EncodingUTF16, testLog()), testLog())
	defer p.Close()

	first := p.Dedicate("/a.typ")
	p.DropDedicate("/a.typ")
	second := p.Dedicate("/a.typ")
	require.NotSame(t, first, second)
}
