package protocol

// DefinitionParams parameters for textDocument/definition.
type DefinitionParams struct {
	TextDocumentPositionParams
}

// DeclarationParams parameters for textDocument/declaration.
type DeclarationParams struct {
	TextDocumentPositionParams
}

// ReferenceParams parameters for textDocument/references.
type ReferenceParams struct {
	TextDocumentPositionParams
	Context ReferenceContext `json:"context"`
}

// ReferenceContext controls whether the declaration itself is included
// in the results.
type ReferenceContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

// CodeLensParams parameters for textDocument/codeLens.
type CodeLensParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

// CodeLens a command rendered inline above a range of source, computed
// lazily: Command may be nil until codeLens/resolve is called.
type CodeLens struct {
	Range   Range    `json:"range"`
	Command *Command `json:"command,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}
