package protocol

// SemanticTokensLegend maps the integers in a token data array back to
// human-readable token types/modifiers; sent once at registration time.
type SemanticTokensLegend struct {
	TokenTypes     []string `json:"tokenTypes"`
	TokenModifiers []string `json:"tokenModifiers"`
}

// SemanticTokensParams parameters for textDocument/semanticTokens/full.
type SemanticTokensParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// SemanticTokensDeltaParams parameters for
// textDocument/semanticTokens/full/delta.
type SemanticTokensDeltaParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	PreviousResultID string             `json:"previousResultId"`
}

// SemanticTokens the result of a full semantic tokens request: a
// flattened, delta-encoded [line, char, length, tokenType, tokenModifiers]
// quintuple stream.
type SemanticTokens struct {
	ResultID string `json:"resultId,omitempty"`
	Data     []uint `json:"data"`
}

// SemanticTokensEdit one edit within a semantic tokens delta.
type SemanticTokensEdit struct {
	Start       uint   `json:"start"`
	DeleteCount uint   `json:"deleteCount"`
	Data        []uint `json:"data,omitempty"`
}

// SemanticTokensDelta the result of a delta request relative to a
// previously issued full result.
type SemanticTokensDelta struct {
	ResultID string               `json:"resultId,omitempty"`
	Edits    []SemanticTokensEdit `json:"edits"`
}
