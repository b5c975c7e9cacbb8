package protocol

// InlayHintParams parameters for textDocument/inlayHint.
type InlayHintParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Range        Range                  `json:"range"`
}

// InlayHintKind the kind of an inlay hint.
type InlayHintKind int

const (
	InlayHintKindType      InlayHintKind = 1
	InlayHintKindParameter InlayHintKind = 2
)

// InlayHint a hint rendered inline in the editor at a given position.
type InlayHint struct {
	Position     Position      `json:"position"`
	Label        string        `json:"label"`
	Kind         InlayHintKind `json:"kind,omitempty"`
	PaddingLeft  bool          `json:"paddingLeft,omitempty"`
	PaddingRight bool          `json:"paddingRight,omitempty"`
}

// SignatureHelpParams parameters for textDocument/signatureHelp.
type SignatureHelpParams struct {
	TextDocumentPositionParams
}

// SignatureHelp the result of a signature help request.
type SignatureHelp struct {
	Signatures      []SignatureInformation `json:"signatures"`
	ActiveSignature *uint                  `json:"activeSignature,omitempty"`
	ActiveParameter *uint                  `json:"activeParameter,omitempty"`
}

// SignatureInformation describes a single call signature.
type SignatureInformation struct {
	Label         string                 `json:"label"`
	Documentation string                 `json:"documentation,omitempty"`
	Parameters    []ParameterInformation `json:"parameters,omitempty"`
}

// ParameterInformation describes a single parameter of a callable.
type ParameterInformation struct {
	Label         string `json:"label"`
	Documentation string `json:"documentation,omitempty"`
}

// DocumentHighlightParams parameters for textDocument/documentHighlight.
type DocumentHighlightParams struct {
	TextDocumentPositionParams
}

// DocumentHighlightKind classifies the nature of a highlight.
type DocumentHighlightKind int

const (
	DocumentHighlightText  DocumentHighlightKind = 1
	DocumentHighlightRead  DocumentHighlightKind = 2
	DocumentHighlightWrite DocumentHighlightKind = 3
)

// DocumentHighlight a range in a document that should be highlighted
// alongside the symbol under the cursor.
type DocumentHighlight struct {
	Range Range                 `json:"range"`
	Kind  DocumentHighlightKind `json:"kind,omitempty"`
}
