package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestManagerUpdateAppliesPartialMap(t *testing.T) {
	m := NewManager()
	cfg, err := m.Update(map[string]any{
		"rootPath":       "/workspace",
		"semanticTokens": false,
	})
	require.NoError(t, err)
	require.Equal(t, "/workspace", cfg.RootPath)
	require.False(t, cfg.SemanticTokens)
	// Untouched keys keep their default.
	require.Equal(t, 80, cfg.FormatterPrintWidth)
}

func TestManagerUpdateRejectsInvalidAndKeepsPrevious(t *testing.T) {
	m := NewManager()
	_, err := m.Update(map[string]any{"rootPath": "/first"})
	require.NoError(t, err)
	before := m.Current()

	_, err = m.Update(map[string]any{"formatterPrintWidth": -1})
	require.Error(t, err)

	after := m.Current()
	require.Equal(t, before, after, "rejected update must not mutate the snapshot")
}

func TestManagerUpdateRejectsUnknownFormatter(t *testing.T) {
	m := NewManager()
	_, err := m.Update(map[string]any{"formatterMode": "prettier"})
	require.Error(t, err)
}
