// Package docstore implements the Document Store (spec.md §4.4 /
// §3): a path-normalized in-memory map of open documents, applying
// incremental edits at whatever position encoding the client
// negotiated during initialize.
package docstore

import (
	"fmt"

	"github.com/sjfhsjfh/tinymist/internal/protocol"
)

// Encoding identifies the unit Position.Character is counted in for a
// given session; negotiated once at initialize time and shared by
// every Source in the Store.
type Encoding int

const (
	// EncodingUTF16 is the LSP spec default when the client's general
	// capabilities omit positionEncodings.
	EncodingUTF16 Encoding = iota
	EncodingUTF8
	EncodingUTF32
)

// EncodingFromKind maps a negotiated protocol.PositionEncodingKind to
// an Encoding, defaulting to UTF-16 for anything unrecognized.
func EncodingFromKind(kind protocol.PositionEncodingKind) Encoding {
	switch kind {
	case protocol.PositionEncodingUTF8:
		return EncodingUTF8
	case protocol.PositionEncodingUTF32:
		return EncodingUTF32
	default:
		return EncodingUTF16
	}
}

// Kind returns the protocol.PositionEncodingKind a session should
// advertise back to the client for this Encoding.
func (e Encoding) Kind() protocol.PositionEncodingKind {
	switch e {
	case EncodingUTF8:
		return protocol.PositionEncodingUTF8
	case EncodingUTF32:
		return protocol.PositionEncodingUTF32
	default:
		return protocol.PositionEncodingUTF16
	}
}

// EditRecord is one applied change, kept for diagnostics and for the
// "source became invalid" error message (spec.md §3's edit log).
type EditRecord struct {
	Version int
	Range   *protocol.Range // nil means full-text replacement
	Text    string
}

// Source is one open document, keyed in the Store by its normalized
// path (see protocol.AsPath / protocol.NormalizePath).
type Source struct {
	Path       string
	URI        protocol.DocumentURI
	LanguageID string
	Version    int
	Text       string

	// Valid is false once an edit has failed to apply (e.g. an
	// out-of-range offset derived from a stale client view). Further
	// ApplyChanges calls on an invalid Source fail with an error
	// directing the client to re-open the document; query handlers do
	// not check this flag.
	Valid bool

	edits []EditRecord
}

// Edits returns the edit log applied to this Source since it was
// opened, oldest first.
func (s *Source) Edits() []EditRecord {
	return append([]EditRecord(nil), s.edits...)
}

// invalidate marks the Source invalid by clearing Valid. It records
// nothing in the edit log.
func (s *Source) invalidate() {
	s.Valid = false
}

// requireValid returns an error when s is nil (not open) or has failed
// a prior edit, and nil otherwise.
func requireValid(s *Source) error {
	if s == nil {
		return fmt.Errorf("document not open")
	}
	if !s.Valid {
		return fmt.Errorf("document %s is in an invalid state after a failed edit; re-open it", s.Path)
	}
	return nil
}
