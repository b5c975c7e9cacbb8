package protocol

// Defines constants for the LSP method names this server dispatches on.

const (
	// General Lifecycle
	MethodInitialize             = "initialize"
	MethodInitialized            = "initialized"
	MethodShutdown               = "shutdown"
	MethodExit                   = "exit"
	MethodCancelRequest          = "$/cancelRequest"
	MethodProgress               = "$/progress"
	MethodRegisterCapability     = "client/registerCapability"
	MethodUnregisterCapability   = "client/unregisterCapability"
	MethodWorkspaceConfiguration = "workspace/configuration"

	// Text Document Synchronization
	MethodTextDocumentDidOpen   = "textDocument/didOpen"
	MethodTextDocumentDidChange = "textDocument/didChange"
	MethodTextDocumentDidSave   = "textDocument/didSave"
	MethodTextDocumentDidClose  = "textDocument/didClose"

	// Language Features
	MethodTextDocumentHover             = "textDocument/hover"
	MethodTextDocumentCompletion        = "textDocument/completion"
	MethodCompletionItemResolve         = "completionItem/resolve"
	MethodTextDocumentDefinition        = "textDocument/definition"
	MethodTextDocumentDeclaration       = "textDocument/declaration"
	MethodTextDocumentReferences        = "textDocument/references"
	MethodTextDocumentDocumentSymbol    = "textDocument/documentSymbol"
	MethodWorkspaceSymbol               = "workspace/symbol"
	MethodTextDocumentCodeAction        = "textDocument/codeAction"
	MethodCodeActionResolve             = "codeAction/resolve"
	MethodTextDocumentCodeLens          = "textDocument/codeLens"
	MethodTextDocumentFoldingRange      = "textDocument/foldingRange"
	MethodTextDocumentSelectionRange    = "textDocument/selectionRange"
	MethodTextDocumentDocumentHighlight = "textDocument/documentHighlight"
	MethodTextDocumentSignatureHelp     = "textDocument/signatureHelp"
	MethodTextDocumentInlayHint         = "textDocument/inlayHint"
	MethodTextDocumentDocumentColor     = "textDocument/documentColor"
	MethodTextDocumentColorPresentation = "textDocument/colorPresentation"
	MethodTextDocumentPrepareRename     = "textDocument/prepareRename"
	MethodTextDocumentRename            = "textDocument/rename"
	MethodTextDocumentFormatting        = "textDocument/formatting"
	MethodSemanticTokensFull            = "textDocument/semanticTokens/full"
	MethodSemanticTokensFullDelta       = "textDocument/semanticTokens/full/delta"

	// Workspace Features
	MethodWorkspaceExecuteCommand         = "workspace/executeCommand"
	MethodWorkspaceApplyEdit              = "workspace/applyEdit"
	MethodWorkspaceDidChangeConfiguration = "workspace/didChangeConfiguration"

	// Window Features
	MethodWindowShowMessage        = "window/showMessage"
	MethodWindowShowMessageRequest = "window/showMessageRequest"
	MethodWindowLogMessage         = "window/logMessage"

	// Diagnostics
	MethodTextDocumentPublishDiagnostics = "textDocument/publishDiagnostics"
)

// Fixed dynamic-registration ids used by the Capability Negotiator
// (spec.md §4.6); kept stable so later unregistration can target them.
const (
	SemanticTokensRegistrationID = "semanticTokens"
	FormattingRegistrationID     = "formatting"
	ConfigRegistrationID         = "config"
)
