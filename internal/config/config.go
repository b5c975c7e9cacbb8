// Package config implements the Config Manager (spec.md §4.5): a typed
// Config validated out of the untyped map[string]any the client sends
// via didChangeConfiguration / the initialize request's
// initializationOptions, with snapshot-and-restore semantics so a
// rejected update never leaves the session half-configured.
package config

import (
	"fmt"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// FormatterMode selects which formatter backend, if any, runs on
// textDocument/formatting.
type FormatterMode string

const (
	FormatterNone   FormatterMode = "disable"
	FormatterTypstfmt FormatterMode = "typstfmt"
)

// Config is the closed, typed record every other component reads
// settings from. Unknown keys in an incoming map are ignored; missing
// keys keep their current (or default) value.
type Config struct {
	// RootPath is the workspace root used to resolve relative imports
	// and package lookups. Empty means "use the first workspace folder".
	RootPath string `koanf:"rootPath"`

	// FontPaths are additional directories to scan for fonts, beyond
	// the embedded/system default set.
	FontPaths []string `koanf:"fontPaths"`

	// Formatter selects the formatter backend for textDocument/formatting.
	Formatter FormatterMode `koanf:"formatterMode"`

	// FormatterPrintWidth is the target line width the formatter wraps to.
	FormatterPrintWidth int `koanf:"formatterPrintWidth"`

	// SemanticTokens enables/disables advertising and serving semantic
	// tokens, independent of whether the client declared support for
	// them — both must hold for the Registration Ledger to register.
	SemanticTokens bool `koanf:"semanticTokens"`

	// ExportPDFOnSave and friends control implicit export-on-save
	// behavior; empty string disables.
	ExportPDFOnSave string `koanf:"exportPdfOnSave"`

	// TypstExtraArgs are opaque extra arguments forwarded to compiler
	// actor construction (e.g. --input flags in the original CLI).
	TypstExtraArgs []string `koanf:"typstExtraArgs"`
}

// Default returns the zero-config starting point every session begins
// with before any didChangeConfiguration notification arrives.
func Default() Config {
	return Config{
		Formatter:           FormatterNone,
		FormatterPrintWidth: 80,
		SemanticTokens:      true,
	}
}

// Validate reports whether cfg is internally consistent. It never
// mutates cfg; callers apply it only after Validate succeeds.
func Validate(cfg Config) error {
	switch cfg.Formatter {
	case FormatterNone, FormatterTypstfmt:
	default:
		return fmt.Errorf("unknown formatterMode %q", cfg.Formatter)
	}
	if cfg.FormatterPrintWidth <= 0 {
		return fmt.Errorf("formatterPrintWidth must be positive, got %d", cfg.FormatterPrintWidth)
	}
	return nil
}

// Manager holds the session's current Config and applies updates
// atomically: a bad update never partially overwrites the previous,
// validated Config (snapshot-and-restore).
type Manager struct {
	current Config
}

// NewManager constructs a Manager seeded with Default().
func NewManager() *Manager {
	return &Manager{current: Default()}
}

// Current returns the presently active, validated Config.
func (m *Manager) Current() Config {
	return m.current
}

// Update merges raw (as decoded from JSON settings) on top of the
// current Config and validates the result. On success the merged
// Config becomes current and is returned. On failure the previous
// Config is left untouched and the error is returned — the snapshot
// is simply m.current, never written to until validation passes.
func (m *Manager) Update(raw map[string]any) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(m.current, "koanf"), nil); err != nil {
		return m.current, fmt.Errorf("snapshot current config: %w", err)
	}
	if err := k.Load(confmap.Provider(raw, "."), nil); err != nil {
		return m.current, fmt.Errorf("load incoming settings: %w", err)
	}

	var candidate Config
	if err := k.Unmarshal("", &candidate); err != nil {
		return m.current, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(candidate); err != nil {
		return m.current, fmt.Errorf("invalid configuration, keeping previous: %w", err)
	}

	m.current = candidate
	return m.current, nil
}
