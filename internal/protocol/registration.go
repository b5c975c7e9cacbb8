package protocol

// Registration describes one dynamic capability registration sent via
// client/registerCapability.
type Registration struct {
	ID              string      `json:"id"`
	Method          string      `json:"method"`
	RegisterOptions interface{} `json:"registerOptions,omitempty"`
}

// RegistrationParams parameters for client/registerCapability.
type RegistrationParams struct {
	Registrations []Registration `json:"registrations"`
}

// Unregistration describes one dynamic capability unregistration.
type Unregistration struct {
	ID     string `json:"id"`
	Method string `json:"method"`
}

// UnregistrationParams parameters for client/unregisterCapability.
type UnregistrationParams struct {
	Unregisterations []Unregistration `json:"unregisterations"`
}

// SemanticTokensRegistrationOptions register options for
// textDocument/semanticTokens, sent the first time a session observes
// semantic token capability in the client.
type SemanticTokensRegistrationOptions struct {
	DocumentSelector []DocumentFilter   `json:"documentSelector"`
	Legend           SemanticTokensLegend `json:"legend"`
	Full             bool               `json:"full,omitempty"`
	Range            bool               `json:"range,omitempty"`
}

// DocumentFilter selects documents by language/scheme/pattern.
type DocumentFilter struct {
	Language string `json:"language,omitempty"`
	Scheme   string `json:"scheme,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
}

// DocumentFormattingRegistrationOptions register options for
// textDocument/formatting.
type DocumentFormattingRegistrationOptions struct {
	DocumentSelector []DocumentFilter `json:"documentSelector"`
}

// DidChangeConfigurationRegistrationOptions register options for
// workspace/didChangeConfiguration.
type DidChangeConfigurationRegistrationOptions struct {
	Section []string `json:"section,omitempty"`
}

// ConfigurationParams parameters for workspace/configuration requests
// the server sends to ask the client for settings.
type ConfigurationParams struct {
	Items []ConfigurationItem `json:"items"`
}

// ConfigurationItem one requested configuration section.
type ConfigurationItem struct {
	ScopeURI string `json:"scopeUri,omitempty"`
	Section  string `json:"section,omitempty"`
}

// DidChangeConfigurationParams parameters for the
// workspace/didChangeConfiguration notification.
type DidChangeConfigurationParams struct {
	Settings interface{} `json:"settings"`
}
