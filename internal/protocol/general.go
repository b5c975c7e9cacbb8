package protocol

import "encoding/json"

// ClientInfo information about the client.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// InitializeParams parameters for the initialize request.
type InitializeParams struct {
	ProcessID             *int               `json:"processId,omitempty"` // Pointer to allow null
	ClientInfo            *ClientInfo        `json:"clientInfo,omitempty"`
	RootURI               *DocumentURI       `json:"rootUri,omitempty"` // Can be null
	InitializationOptions json.RawMessage    `json:"initializationOptions,omitempty"`
	Capabilities          ClientCapabilities `json:"capabilities"`
	Trace                 string             `json:"trace,omitempty"` // off, messages, verbose
	WorkspaceFolders      []WorkspaceFolder  `json:"workspaceFolders,omitempty"`
}

// WorkspaceFolder information.
type WorkspaceFolder struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

// ClientCapabilities defines the capabilities provided by the client.
// NOTE: This is heavily truncated for brevity. A real implementation needs
// many more fields based on the LSP spec.
type ClientCapabilities struct {
	Workspace    *WorkspaceClientCapabilities    `json:"workspace,omitempty"`
	TextDocument *TextDocumentClientCapabilities `json:"textDocument,omitempty"`
	General      *GeneralClientCapabilities      `json:"general,omitempty"`
	// Experimental features can be added here using json.RawMessage or specific structs
}

// GeneralClientCapabilities capabilities that don't belong to a single
// feature, such as negotiated position encoding.
type GeneralClientCapabilities struct {
	PositionEncodings []PositionEncodingKind `json:"positionEncodings,omitempty"`
}

// PositionEncodingKind identifies the unit a Position's character offset
// is counted in.
type PositionEncodingKind string

const (
	PositionEncodingUTF8  PositionEncodingKind = "utf-8"
	PositionEncodingUTF16 PositionEncodingKind = "utf-16"
	PositionEncodingUTF32 PositionEncodingKind = "utf-32"
)

// WorkspaceClientCapabilities workspace specific client capabilities.
type WorkspaceClientCapabilities struct {
	ApplyEdit               bool                                       `json:"applyEdit,omitempty"`
	DidChangeConfiguration  *DidChangeConfigurationClientCapabilities `json:"didChangeConfiguration,omitempty"`
	// ... many more fields (workspaceFolders, etc.)
}

// DidChangeConfigurationClientCapabilities reports whether the client
// supports dynamic registration of workspace/didChangeConfiguration.
type DidChangeConfigurationClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration,omitempty"`
}

// TextDocumentClientCapabilities text document specific client capabilities.
// NOTE: Truncated. Add capabilities like completion, hover, definition etc. as needed.
type TextDocumentClientCapabilities struct {
	Synchronization *TextDocumentSyncClientCapabilities  `json:"synchronization,omitempty"`
	Completion      *CompletionClientCapabilities        `json:"completion,omitempty"`
	Hover           *HoverClientCapabilities             `json:"hover,omitempty"`
	SemanticTokens  *SemanticTokensClientCapabilities    `json:"semanticTokens,omitempty"`
	Formatting      *DocumentFormattingClientCapabilities `json:"formatting,omitempty"`
	// ... many more fields (definition, references, etc.)
}

// SemanticTokensClientCapabilities reports whether the client supports
// dynamic registration of textDocument/semanticTokens.
type SemanticTokensClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration,omitempty"`
}

// DocumentFormattingClientCapabilities reports whether the client
// supports dynamic registration of textDocument/formatting.
type DocumentFormattingClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration,omitempty"`
}

// TextDocumentSyncClientCapabilities capabilities for text document synchronization.
type TextDocumentSyncClientCapabilities struct {
	DidSave bool `json:"didSave,omitempty"` // Notify on save
}

// CompletionClientCapabilities capabilities specific to completion requests.
type CompletionClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration,omitempty"`
	CompletionItem      *struct {
		SnippetSupport bool `json:"snippetSupport,omitempty"`
	} `json:"completionItem,omitempty"`
	// ... many more fields
}

// HoverClientCapabilities capabilities specific to hover requests.
type HoverClientCapabilities struct {
	DynamicRegistration bool         `json:"dynamicRegistration,omitempty"`
	ContentFormat       []MarkupKind `json:"contentFormat,omitempty"`
}

// MarkupKind describes the content type that a client supports in various
// result literals like `Hover`, `ParameterInformation` or `CompletionItem`.
type MarkupKind string

const (
	PlainText MarkupKind = "plaintext"
	Markdown  MarkupKind = "markdown"
)

// InitializeResult result of the initialize request.
type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
	ServerInfo   *ServerInfo        `json:"serverInfo,omitempty"`
}

// ServerInfo information about the server.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// ServerCapabilities defines the capabilities provided by the server.
type ServerCapabilities struct {
	PositionEncoding             PositionEncodingKind                `json:"positionEncoding,omitempty"`
	TextDocumentSync             *TextDocumentSyncOptions            `json:"textDocumentSync,omitempty"`
	CompletionProvider           *CompletionOptions                  `json:"completionProvider,omitempty"`
	HoverProvider                *HoverOptions                       `json:"hoverProvider,omitempty"`
	DefinitionProvider           *DefinitionOptions                  `json:"definitionProvider,omitempty"`
	DeclarationProvider          bool                                `json:"declarationProvider,omitempty"`
	ReferencesProvider           bool                                `json:"referencesProvider,omitempty"`
	DocumentSymbolProvider       bool                                `json:"documentSymbolProvider,omitempty"`
	WorkspaceSymbolProvider      bool                                `json:"workspaceSymbolProvider,omitempty"`
	CodeActionProvider           bool                                `json:"codeActionProvider,omitempty"`
	CodeLensProvider             *CodeLensOptions                    `json:"codeLensProvider,omitempty"`
	DocumentFormattingProvider   bool                                `json:"documentFormattingProvider,omitempty"`
	FoldingRangeProvider         bool                                `json:"foldingRangeProvider,omitempty"`
	SelectionRangeProvider       bool                                `json:"selectionRangeProvider,omitempty"`
	DocumentHighlightProvider    bool                                `json:"documentHighlightProvider,omitempty"`
	SignatureHelpProvider        *SignatureHelpOptions               `json:"signatureHelpProvider,omitempty"`
	InlayHintProvider            bool                                `json:"inlayHintProvider,omitempty"`
	DocumentColorProvider        bool                                `json:"colorProvider,omitempty"`
	RenameProvider               *RenameOptions                      `json:"renameProvider,omitempty"`
	SemanticTokensProvider       *SemanticTokensRegistrationOptions  `json:"semanticTokensProvider,omitempty"`
	ExecuteCommandProvider       *ExecuteCommandOptions              `json:"executeCommandProvider,omitempty"`
}

// CodeLensOptions server capability for textDocument/codeLens.
type CodeLensOptions struct {
	ResolveProvider bool `json:"resolveProvider,omitempty"`
}

// SignatureHelpOptions server capability for textDocument/signatureHelp.
type SignatureHelpOptions struct {
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

// RenameOptions server capability for textDocument/rename.
type RenameOptions struct {
	PrepareProvider bool `json:"prepareProvider,omitempty"`
}

// TextDocumentSyncOptions defines how text documents are synced.
type TextDocumentSyncOptions struct {
	OpenClose bool                 `json:"openClose,omitempty"` // DidOpen/DidClose notifications
	Change    TextDocumentSyncKind `json:"change,omitempty"`    // Kind of change notifications
	// WillSave, WillSaveWaitUntil, Save options...
}

// TextDocumentSyncKind defines the type of sync notifications.
type TextDocumentSyncKind int // Use int; LSP spec uses numbers 0, 1, 2

const (
	// None documents should not be synced at all.
	SyncNone TextDocumentSyncKind = 0
	// Full documents are synced by sending the full content on change.
	SyncFull TextDocumentSyncKind = 1
	// Incremental documents are synced by sending incremental changes.
	SyncIncremental TextDocumentSyncKind = 2
)

// CompletionOptions server options for completion requests.
type CompletionOptions struct {
	ResolveProvider   bool     `json:"resolveProvider,omitempty"` // Server resolves additional info on demand
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

// WorkDoneProgressOptions options for work done progress reporting.
type WorkDoneProgressOptions struct {
	WorkDoneProgress bool `json:"workDoneProgress,omitempty"`
}

// DefinitionOptions server options for definition requests.
type DefinitionOptions struct {
	WorkDoneProgressOptions
}

// InitializedParams parameters for the initialized notification. Empty struct.
type InitializedParams struct{}

// LogMessageParams parameters for window/logMessage notification.
type LogMessageParams struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// MessageType for log messages (error, warning, info, log).
type MessageType int

const (
	Error   MessageType = 1
	Warning MessageType = 2
	Info    MessageType = 3
	Log     MessageType = 4
)

// ShowMessageParams parameters for window/showMessage notification.
type ShowMessageParams struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

// ShowMessageRequestParams parameters for window/showMessageRequest request.
type ShowMessageRequestParams struct {
	Type    MessageType         `json:"type"`
	Message string              `json:"message"`
	Actions []MessageActionItem `json:"actions,omitempty"`
}

// MessageActionItem used in ShowMessageRequestParams.
type MessageActionItem struct {
	Title string `json:"title"`
}

// ShutdownParams parameters for the shutdown request. Empty struct.
type ShutdownParams struct{}

// ExitParams parameters for the exit notification. Empty struct.
type ExitParams struct{}
