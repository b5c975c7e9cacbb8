package query

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sjfhsjfh/tinymist/internal/compiler"
	"github.com/sjfhsjfh/tinymist/internal/docstore"
	"github.com/sjfhsjfh/tinymist/internal/protocol"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l.WithField("test", true)
}

// TestQueriesRunThroughSteal proves the honest-empty query functions
// are ordinary World closures runnable through the steal protocol, not
// just standalone functions.
func TestQueriesRunThroughSteal(t *testing.T) {
	store := docstore.NewStore(docstore.EncodingUTF16, testLog())
	world := compiler.NewWorld("/root", nil, store)
	actor := compiler.NewActor(world, "t", testLog())
	defer actor.Close()

	result, err := actor.Steal(context.Background(), func(w *compiler.World) (any, error) {
		return Hover(w, protocol.HoverParams{})
	})
	require.NoError(t, err)
	require.Nil(t, result)
}

func TestCompletionReturnsEmptyNotNilList(t *testing.T) {
	world := compiler.NewWorld("/root", nil, docstore.NewStore(docstore.EncodingUTF16, testLog()))
	list, err := Completion(world, protocol.CompletionParams{})
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Empty(t, list.Items)
}

func TestSelectionRangesEchoesOnePerPosition(t *testing.T) {
	world := compiler.NewWorld("/root", nil, docstore.NewStore(docstore.EncodingUTF16, testLog()))
	positions := []protocol.Position{{Line: 1, Character: 2}, {Line: 3, Character: 4}}
	ranges, err := SelectionRanges(world, protocol.SelectionRangeParams{Positions: positions})
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	require.Equal(t, positions[0], ranges[0].Range.Start)
}

func TestInteractCodeContextOnlyAnswersRequestedSlots(t *testing.T) {
	world := compiler.NewWorld("/root", nil, docstore.NewStore(docstore.EncodingUTF16, testLog()))
	q := ContextQuery{Encloser: &ContextQueryParams{}}
	result, err := InteractCodeContext(world, q)
	require.NoError(t, err)
	require.Nil(t, result.BeforeCursor)
	require.Nil(t, result.AfterCursor)
}
