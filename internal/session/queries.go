package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sjfhsjfh/tinymist/internal/compiler"
	"github.com/sjfhsjfh/tinymist/internal/config"
	"github.com/sjfhsjfh/tinymist/internal/jsonrpc2"
	"github.com/sjfhsjfh/tinymist/internal/protocol"
	"github.com/sjfhsjfh/tinymist/internal/query"
)

// steal runs fn against actor's World and blocks for the result,
// unwrapping the any-typed Steal return into R. Used by every
// latency-sensitive language query handler (spec.md §4.11/§5).
func steal[R any](ctx context.Context, a *compiler.Actor, fn func(*compiler.World) (R, error)) (R, error) {
	var zero R
	v, err := a.Steal(ctx, func(w *compiler.World) (any, error) {
		r, e := fn(w)
		return r, e
	})
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	return v.(R), nil
}

// touchImplicitFocus records activity in path as the lowest-precedence
// focus signal (spec.md §4.7), called from the didOpen, didChange,
// hover, documentSymbol, foldingRange and semanticTokens/full handlers.
func (s *Session) touchImplicitFocus(path string) {
	s.focus.SetImplicit(path, time.Now())
}

func handleHover(ctx context.Context, s *Session, params protocol.HoverParams) (*protocol.Hover, error) {
	s.touchImplicitFocus(protocol.AsPath(params.TextDocument.URI))
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) (*protocol.Hover, error) {
		return query.Hover(w, params)
	})
}

func handleCompletion(ctx context.Context, s *Session, params protocol.CompletionParams) (*protocol.CompletionList, error) {
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) (*protocol.CompletionList, error) {
		return query.Completion(w, params)
	})
}

func handleDefinition(ctx context.Context, s *Session, params protocol.DefinitionParams) ([]protocol.Location, error) {
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) ([]protocol.Location, error) {
		return query.GotoDefinition(w, params)
	})
}

func handleDeclaration(ctx context.Context, s *Session, params protocol.DeclarationParams) ([]protocol.Location, error) {
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) ([]protocol.Location, error) {
		return query.GotoDeclaration(w, params)
	})
}

func handleReferences(ctx context.Context, s *Session, params protocol.ReferenceParams) ([]protocol.Location, error) {
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) ([]protocol.Location, error) {
		return query.References(w, params)
	})
}

func handleDocumentSymbol(ctx context.Context, s *Session, params protocol.DocumentSymbolParams) ([]protocol.DocumentSymbol, error) {
	s.touchImplicitFocus(protocol.AsPath(params.TextDocument.URI))
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) ([]protocol.DocumentSymbol, error) {
		return query.DocumentSymbols(w, params)
	})
}

func handleWorkspaceSymbol(ctx context.Context, s *Session, params protocol.WorkspaceSymbolParams) ([]protocol.SymbolInformation, error) {
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) ([]protocol.SymbolInformation, error) {
		return query.WorkspaceSymbols(w, params)
	})
}

func handleCodeAction(ctx context.Context, s *Session, params protocol.CodeActionParams) ([]protocol.CodeAction, error) {
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) ([]protocol.CodeAction, error) {
		return query.CodeActions(w, params)
	})
}

func handleCodeLens(ctx context.Context, s *Session, params protocol.CodeLensParams) ([]protocol.CodeLens, error) {
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) ([]protocol.CodeLens, error) {
		return query.CodeLenses(w, params)
	})
}

func handleFoldingRange(ctx context.Context, s *Session, params protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	s.touchImplicitFocus(protocol.AsPath(params.TextDocument.URI))
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) ([]protocol.FoldingRange, error) {
		return query.FoldingRanges(w, params)
	})
}

func handleSelectionRange(ctx context.Context, s *Session, params protocol.SelectionRangeParams) ([]protocol.SelectionRange, error) {
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) ([]protocol.SelectionRange, error) {
		return query.SelectionRanges(w, params)
	})
}

func handleDocumentHighlight(ctx context.Context, s *Session, params protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) ([]protocol.DocumentHighlight, error) {
		return query.DocumentHighlights(w, params)
	})
}

func handleSignatureHelp(ctx context.Context, s *Session, params protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) (*protocol.SignatureHelp, error) {
		return query.SignatureHelp(w, params)
	})
}

func handleInlayHint(ctx context.Context, s *Session, params protocol.InlayHintParams) ([]protocol.InlayHint, error) {
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) ([]protocol.InlayHint, error) {
		return query.InlayHints(w, params)
	})
}

func handleDocumentColor(ctx context.Context, s *Session, params protocol.DocumentColorParams) ([]protocol.ColorInformation, error) {
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) ([]protocol.ColorInformation, error) {
		return query.DocumentColors(w, params)
	})
}

func handleColorPresentation(ctx context.Context, s *Session, params protocol.ColorPresentationParams) ([]protocol.ColorPresentation, error) {
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) ([]protocol.ColorPresentation, error) {
		return query.ColorPresentations(w, params)
	})
}

func handlePrepareRename(ctx context.Context, s *Session, params protocol.PrepareRenameParams) (*protocol.PrepareRenameResult, error) {
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) (*protocol.PrepareRenameResult, error) {
		return query.PrepareRename(w, params)
	})
}

func handleRename(ctx context.Context, s *Session, params protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) (*protocol.WorkspaceEdit, error) {
		return query.Rename(w, params)
	})
}

func handleSemanticTokensFull(ctx context.Context, s *Session, params protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	s.touchImplicitFocus(protocol.AsPath(params.TextDocument.URI))
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) (*protocol.SemanticTokens, error) {
		return query.SemanticTokensFull(w, params)
	})
}

func handleSemanticTokensFullDelta(ctx context.Context, s *Session, params protocol.SemanticTokensDeltaParams) (*protocol.SemanticTokensDelta, error) {
	return steal(ctx, s.pool.Primary(), func(w *compiler.World) (*protocol.SemanticTokensDelta, error) {
		return query.SemanticTokensFullDelta(w, params)
	})
}

// handleFormatting is the one query family spec.md §5 requires to be
// an asynchronous hand-off rather than a blocking steal: the compiler
// actor's goroutine plays the role of the "format worker" here,
// running query.Format and replying through the Host once it's done,
// without the reactor waiting on it synchronously.
func handleFormatting(ctx context.Context, s *Session, id jsonrpc2.RequestID, params protocol.DocumentFormattingParams) {
	err := s.pool.Primary().StealAsync(
		func(w *compiler.World) (any, error) {
			return query.Format(w, params)
		},
		func(v any, err error) {
			if err != nil {
				if werr := s.host.Respond(context.Background(), id, nil, toRPCError(err)); werr != nil {
					s.log.WithError(werr).Warn("failed to write formatting error response")
				}
				return
			}
			if werr := s.host.Respond(context.Background(), id, v, nil); werr != nil {
				s.log.WithError(werr).Warn("failed to write formatting response")
			}
		},
	)
	if err != nil {
		s.respondError(ctx, id, jsonrpc2.InternalError, err.Error())
	}
}

// handleDidChangeConfiguration implements spec.md §4.5: either the
// settings arrive inline, or (when settings is the LSP's "pull"
// sentinel, represented here as an empty/null payload) the server
// issues a workspace/configuration request and applies the reply in
// the callback.
func handleDidChangeConfiguration(ctx context.Context, s *Session, params protocol.DidChangeConfigurationParams) {
	if raw, ok := params.Settings.(map[string]any); ok && len(raw) > 0 {
		s.applyConfigUpdate(ctx, raw)
		return
	}

	err := s.host.RequestConfiguration(ctx, []protocol.ConfigurationItem{{Section: "tinymist"}}, func(sections []json.RawMessage, rpcErr *jsonrpc2.ErrorObject) {
		if rpcErr != nil {
			s.log.WithField("code", rpcErr.Code).Warn("client rejected workspace/configuration pull")
			return
		}
		if len(sections) == 0 {
			return
		}
		var raw map[string]any
		if err := json.Unmarshal(sections[0], &raw); err != nil {
			s.log.WithError(err).Warn("malformed workspace/configuration reply; ignoring")
			return
		}
		s.applyConfigUpdate(context.Background(), raw)
	})
	if err != nil {
		s.log.WithError(err).Warn("failed to send workspace/configuration request")
	}
}

// applyConfigUpdate is the Config Manager's on_changed_configuration
// (spec.md §4.5): snapshot-and-restore update, then diff-driven
// capability reconciliation.
func (s *Session) applyConfigUpdate(ctx context.Context, raw map[string]any) {
	before := s.configMgr.Current()
	after, err := s.configMgr.Update(raw)
	if err != nil {
		s.log.WithError(err).Warn("configuration update rejected; keeping previous configuration")
		return
	}
	reconcileCapabilities(ctx, s, before, after)
}

// reconcileCapabilities implements the Capability Negotiator's diff
// step (spec.md §4.5/§4.6): only a change in the relevant option
// drives a registration RPC, and the ledger's own idempotent toggle
// protects against redundant registrations even if called twice with
// the same diff.
func reconcileCapabilities(ctx context.Context, s *Session, before, after config.Config) {
	if after.SemanticTokens != before.SemanticTokens {
		if after.SemanticTokens {
			s.ledg.Enable(ctx, protocol.SemanticTokensRegistrationID, protocol.MethodSemanticTokensFull, s.constConfig.WantSemanticTokensDynamicReg, semanticTokensRegistrationOptions())
		} else {
			s.ledg.Disable(ctx, protocol.SemanticTokensRegistrationID)
		}
	}
	if (after.Formatter != config.FormatterNone) != (before.Formatter != config.FormatterNone) {
		if after.Formatter != config.FormatterNone {
			s.ledg.Enable(ctx, protocol.FormattingRegistrationID, protocol.MethodTextDocumentFormatting, s.constConfig.WantFormattingDynamicReg, protocol.DocumentFormattingRegistrationOptions{})
		} else {
			s.ledg.Disable(ctx, protocol.FormattingRegistrationID)
		}
	}
}

func semanticTokensRegistrationOptions() *protocol.SemanticTokensRegistrationOptions {
	return &protocol.SemanticTokensRegistrationOptions{
		DocumentSelector: []protocol.DocumentFilter{{}},
		Legend:           query.SemanticTokensLegend,
		Full:             true,
	}
}
