package docstore

import (
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/sjfhsjfh/tinymist/internal/protocol"
)

// byteOffset converts a protocol.Position into a byte offset into text,
// interpreting Position.Character according to enc. Returns an error if
// the line or character is out of range — callers use this to decide
// whether to invalidate the Source.
func byteOffset(text string, pos protocol.Position, enc Encoding) (int, error) {
	lines := splitLinesKeepEnds(text)
	if int(pos.Line) >= len(lines) {
		return 0, fmt.Errorf("line %d out of range (document has %d lines)", pos.Line, len(lines))
	}

	offset := 0
	for i := 0; i < int(pos.Line); i++ {
		offset += len(lines[i])
	}
	line := strings.TrimRight(lines[pos.Line], "\r\n")

	switch enc {
	case EncodingUTF8:
		if int(pos.Character) > len(line) {
			return 0, fmt.Errorf("character %d out of range on line %d", pos.Character, pos.Line)
		}
		offset += int(pos.Character)
	case EncodingUTF32:
		runes := []rune(line)
		if int(pos.Character) > len(runes) {
			return 0, fmt.Errorf("character %d out of range on line %d", pos.Character, pos.Line)
		}
		offset += len(string(runes[:pos.Character]))
	default: // EncodingUTF16
		units := utf16.Encode([]rune(line))
		if int(pos.Character) > len(units) {
			return 0, fmt.Errorf("character %d out of range on line %d", pos.Character, pos.Line)
		}
		offset += len(string(utf16.Decode(units[:pos.Character])))
	}
	return offset, nil
}

// splitLinesKeepEnds splits text into lines, each retaining its
// trailing newline (if any), so offsets computed from concatenating a
// prefix of them line up with byte offsets into the original text.
func splitLinesKeepEnds(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	lines = append(lines, text[start:])
	return lines
}

// applyChange applies a single TextDocumentContentChangeEvent to text,
// returning the new text. A nil Range means full-document replacement.
func applyChange(text string, change protocol.TextDocumentContentChangeEvent, enc Encoding) (string, error) {
	if change.Range == nil {
		return change.Text, nil
	}
	startOff, err := byteOffset(text, change.Range.Start, enc)
	if err != nil {
		return "", fmt.Errorf("range start: %w", err)
	}
	endOff, err := byteOffset(text, change.Range.End, enc)
	if err != nil {
		return "", fmt.Errorf("range end: %w", err)
	}
	if endOff < startOff {
		return "", fmt.Errorf("range end %d precedes start %d", endOff, startOff)
	}
	var b strings.Builder
	b.Grow(len(text) - (endOff - startOff) + len(change.Text))
	b.WriteString(text[:startOff])
	b.WriteString(change.Text)
	b.WriteString(text[endOff:])
	return b.String(), nil
}
