package protocol

// PrepareRenameParams parameters for textDocument/prepareRename.
type PrepareRenameParams struct {
	TextDocumentPositionParams
}

// PrepareRenameResult the range of the symbol being renamed and the
// placeholder text to show the user, or nil when the position cannot
// be renamed.
type PrepareRenameResult struct {
	Range       Range  `json:"range"`
	Placeholder string `json:"placeholder"`
}

// RenameParams parameters for textDocument/rename.
type RenameParams struct {
	TextDocumentPositionParams
	NewName string `json:"newName"`
}

// WorkspaceEdit a set of changes to apply across one or more documents.
type WorkspaceEdit struct {
	Changes map[DocumentURI][]TextEdit `json:"changes,omitempty"`
}
