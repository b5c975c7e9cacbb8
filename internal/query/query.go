// Package query implements the Language Query Handlers registry
// (spec.md §4.11). Since concrete document-language semantics are out
// of scope for this core (spec.md §1's Non-goals), every query here is
// an honestly-empty computation: it still runs on a compiler.World
// through the steal protocol, and returns a real, correctly-shaped
// result — just one with no findings — so the reactor, dispatch
// tables, and steal protocol are fully exercised without inventing
// Typst semantics (SPEC_FULL.md §4.11).
package query

import (
	"github.com/sjfhsjfh/tinymist/internal/compiler"
	"github.com/sjfhsjfh/tinymist/internal/protocol"
)

// Hover computes the hover result for a position. Honest-empty: no
// World yet carries enough semantic information to produce real
// hover text, so this returns nil (LSP's "no hover available").
func Hover(w *compiler.World, params protocol.HoverParams) (*protocol.Hover, error) {
	return nil, nil
}

// Completion computes completion candidates at a position.
func Completion(w *compiler.World, params protocol.CompletionParams) (*protocol.CompletionList, error) {
	return &protocol.CompletionList{IsIncomplete: false, Items: []protocol.CompletionItem{}}, nil
}

// GotoDefinition resolves the definition location(s) of the symbol
// under the cursor.
func GotoDefinition(w *compiler.World, params protocol.DefinitionParams) ([]protocol.Location, error) {
	return []protocol.Location{}, nil
}

// GotoDeclaration resolves the declaration location(s) of the symbol
// under the cursor.
func GotoDeclaration(w *compiler.World, params protocol.DeclarationParams) ([]protocol.Location, error) {
	return []protocol.Location{}, nil
}

// References finds every reference to the symbol under the cursor.
func References(w *compiler.World, params protocol.ReferenceParams) ([]protocol.Location, error) {
	return []protocol.Location{}, nil
}

// DocumentSymbols computes the hierarchical outline of a document.
func DocumentSymbols(w *compiler.World, params protocol.DocumentSymbolParams) ([]protocol.DocumentSymbol, error) {
	return []protocol.DocumentSymbol{}, nil
}

// WorkspaceSymbols searches every open document for symbols matching
// a query string.
func WorkspaceSymbols(w *compiler.World, params protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	return []protocol.SymbolInformation{}, nil
}

// CodeActions computes the code actions available at a range.
func CodeActions(w *compiler.World, params protocol.CodeActionParams) ([]protocol.CodeAction, error) {
	return []protocol.CodeAction{}, nil
}

// CodeLenses computes the code lenses for a document.
func CodeLenses(w *compiler.World, params protocol.CodeLensParams) ([]protocol.CodeLens, error) {
	return []protocol.CodeLens{}, nil
}

// FoldingRanges computes the collapsible ranges in a document.
func FoldingRanges(w *compiler.World, params protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	return []protocol.FoldingRange{}, nil
}

// SelectionRanges computes the nested selection ranges at each
// requested position.
func SelectionRanges(w *compiler.World, params protocol.SelectionRangeParams) ([]protocol.SelectionRange, error) {
	out := make([]protocol.SelectionRange, len(params.Positions))
	for i, pos := range params.Positions {
		out[i] = protocol.SelectionRange{Range: protocol.Range{Start: pos, End: pos}}
	}
	return out, nil
}

// DocumentHighlights finds every occurrence of the symbol under the
// cursor within the same document.
func DocumentHighlights(w *compiler.World, params protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	return []protocol.DocumentHighlight{}, nil
}

// SignatureHelp computes call signature help at a position.
func SignatureHelp(w *compiler.World, params protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	return nil, nil
}

// InlayHints computes inlay hints over a range.
func InlayHints(w *compiler.World, params protocol.InlayHintParams) ([]protocol.InlayHint, error) {
	return []protocol.InlayHint{}, nil
}

// DocumentColors finds color literals in a document.
func DocumentColors(w *compiler.World, params protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	return []protocol.ColorInformation{}, nil
}

// ColorPresentations computes alternate spellings for a color literal.
func ColorPresentations(w *compiler.World, params protocol.ColorPresentationParams) ([]protocol.ColorPresentation, error) {
	return []protocol.ColorPresentation{}, nil
}

// PrepareRename reports whether the symbol at a position can be
// renamed, returning nil when it cannot.
func PrepareRename(w *compiler.World, params protocol.PrepareRenameParams) (*protocol.PrepareRenameResult, error) {
	return nil, nil
}

// Rename computes the workspace edit that performs a rename.
func Rename(w *compiler.World, params protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	return &protocol.WorkspaceEdit{Changes: map[protocol.DocumentURI][]protocol.TextEdit{}}, nil
}

// Format computes the text edits that reformat a document. This is the
// one query family SPEC_FULL.md's domain stack wires to a real
// dependency's concern (the formatter toggle in internal/config); the
// actual reformatting algorithm remains out of scope, so it returns no
// edits (a no-op format) rather than inventing one.
func Format(w *compiler.World, params protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	return []protocol.TextEdit{}, nil
}

// SemanticTokensLegend is the fixed token type/modifier legend this
// server advertises at registration time (internal/registry).
var SemanticTokensLegend = protocol.SemanticTokensLegend{
	TokenTypes:     []string{"namespace", "type", "function", "variable", "string", "comment", "keyword", "number", "operator"},
	TokenModifiers: []string{"declaration", "readonly"},
}

// SemanticTokensFull computes the full semantic token stream for a
// document.
func SemanticTokensFull(w *compiler.World, params protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	return &protocol.SemanticTokens{Data: []uint{}}, nil
}

// SemanticTokensFullDelta computes a delta relative to a previous
// result; an empty edit list means "the previous result is still
// current".
func SemanticTokensFullDelta(w *compiler.World, params protocol.SemanticTokensDeltaParams) (*protocol.SemanticTokensDelta, error) {
	return &protocol.SemanticTokensDelta{Edits: []protocol.SemanticTokensEdit{}}, nil
}

// ContextQuery is the closed set of interactCodeContext sub-queries
// carried from the original implementation's InteractCodeContextQuery
// (SPEC_FULL.md's SUPPLEMENTED FEATURES).
type ContextQuery struct {
	Encloser     *ContextQueryParams `json:"encloser,omitempty"`
	BeforeCursor *ContextQueryParams `json:"beforeCursor,omitempty"`
	AfterCursor  *ContextQueryParams `json:"afterCursor,omitempty"`
}

// ContextQueryParams locates one sub-query's target position.
type ContextQueryParams struct {
	TextDocument protocol.TextDocumentIdentifier `json:"textDocument"`
	Position     protocol.Position               `json:"position"`
}

// ContextQueryResult holds one slot per sub-query. InteractCodeContext
// leaves every slot nil, whether or not that sub-query was requested.
type ContextQueryResult struct {
	Encloser     *string `json:"encloser,omitempty"`
	BeforeCursor *string `json:"beforeCursor,omitempty"`
	AfterCursor  *string `json:"afterCursor,omitempty"`
}

// InteractCodeContext answers a batched ContextQuery. Like the other
// queries, it is honest-empty: each requested slot resolves to nil
// ("no context available") rather than approximating Typst's AST.
func InteractCodeContext(w *compiler.World, q ContextQuery) (*ContextQueryResult, error) {
	result := &ContextQueryResult{}
	if q.Encloser != nil {
		result.Encloser = nil
	}
	if q.BeforeCursor != nil {
		result.BeforeCursor = nil
	}
	if q.AfterCursor != nil {
		result.AfterCursor = nil
	}
	return result, nil
}
