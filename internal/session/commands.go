package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/sjfhsjfh/tinymist/internal/compiler"
	"github.com/sjfhsjfh/tinymist/internal/jsonrpc2"
	"github.com/sjfhsjfh/tinymist/internal/pkgregistry"
	"github.com/sjfhsjfh/tinymist/internal/protocol"
	"github.com/sjfhsjfh/tinymist/internal/query"
	"github.com/sjfhsjfh/tinymist/internal/workers"
)

// handleExecuteCommand routes workspace/executeCommand to the
// ExecuteCmdMap by the command's full (prefixed) name (spec.md §4.9).
// Every entry owns its own single reply, since a few (getDocumentTrace)
// hand off asynchronously instead of replying immediately.
func handleExecuteCommand(ctx context.Context, s *Session, id jsonrpc2.RequestID, params protocol.ExecuteCommandParams) {
	handler, ok := s.executeCmds[params.Command]
	if !ok {
		s.respondError(ctx, id, jsonrpc2.MethodNotFound, fmt.Sprintf("unknown command: %s", params.Command))
		return
	}
	handler(ctx, s, id, params.Arguments)
}

// arg decodes the idx'th positional argument into T; a missing or
// JSON-null entry decodes to T's zero value rather than erroring,
// matching the optional trailing arguments most commands accept.
func arg[T any](args []json.RawMessage, idx int) (T, error) {
	var v T
	if idx >= len(args) || len(args[idx]) == 0 || string(args[idx]) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(args[idx], &v); err != nil {
		return v, err
	}
	return v, nil
}

// reply writes exactly one response for a command invocation: result
// on success, or err translated to a wire error (preserving an
// already-typed *jsonrpc2.ErrorObject, e.g. /tutorial's MethodNotFound).
func reply(ctx context.Context, s *Session, id jsonrpc2.RequestID, result any, err error) {
	if err != nil {
		if werr := s.host.Respond(ctx, id, nil, toRPCError(err)); werr != nil {
			s.log.WithError(werr).Warn("failed to write command error response")
		}
		return
	}
	if werr := s.host.Respond(ctx, id, result, nil); werr != nil {
		s.log.WithError(werr).Warn("failed to write command response")
	}
}

func invalidParams(ctx context.Context, s *Session, id jsonrpc2.RequestID, err error) {
	s.respondError(ctx, id, jsonrpc2.InvalidParams, fmt.Sprintf("malformed command arguments: %v", err))
}

// setPrimaryMain forwards the Focus/Pin State Machine's resolved
// effective entry to the primary compiler actor's World (spec.md
// §4.7's pin_entry/focus_entry "forwards the effective entry").
func setPrimaryMain(ctx context.Context, s *Session, path string) {
	_, err := steal(ctx, s.pool.Primary(), func(w *compiler.World) (any, error) {
		w.Main = path
		return nil, nil
	})
	if err != nil {
		s.log.WithError(err).Warn("failed to forward effective entry to primary actor")
	}
}

// parsePackageSpec parses "@namespace/name" or "@namespace/name:version"
// into a pkgregistry.PackageSpec, leaving Version nil (auto-resolve to
// latest) when no version is present (spec.md §4.9's doInitTemplate).
func parsePackageSpec(source string) (pkgregistry.PackageSpec, error) {
	trimmed := strings.TrimPrefix(source, "@")
	namePart := trimmed
	var verStr string
	if idx := strings.Index(trimmed, ":"); idx >= 0 {
		namePart = trimmed[:idx]
		verStr = trimmed[idx+1:]
	}

	parts := strings.SplitN(namePart, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return pkgregistry.PackageSpec{}, fmt.Errorf("malformed package spec %q, expected @namespace/name[:version]", source)
	}

	spec := pkgregistry.PackageSpec{Namespace: parts[0], Name: parts[1]}
	if verStr != "" {
		v, err := semver.NewVersion(verStr)
		if err != nil {
			return pkgregistry.PackageSpec{}, fmt.Errorf("invalid version in package spec %q: %w", source, err)
		}
		spec.Version = v
	}
	return spec, nil
}

type exportOptsArg struct {
	Page string `json:"page"`
}

// exportCommand builds the CommandHandler shared by exportPdf/Svg/Png:
// decode [path, opts?], hand off to the ExportWorker, and reply with
// the resulting path once the worker calls back (spec.md §4.9/§5).
func exportCommand(format workers.ExportFormat) CommandHandler {
	return func(ctx context.Context, s *Session, id jsonrpc2.RequestID, args []json.RawMessage) {
		path, err := arg[string](args, 0)
		if err != nil {
			invalidParams(ctx, s, id, err)
			return
		}
		opts, err := arg[*exportOptsArg](args, 1)
		if err != nil {
			invalidParams(ctx, s, id, err)
			return
		}

		exportOpts := workers.DefaultExportOpts()
		if opts != nil && opts.Page != "" {
			exportOpts.Page = workers.PageSelection(opts.Page)
		}

		s.exporter.Export(ctx, path, format, exportOpts, func(result workers.ExportResult, err error) {
			reply(context.Background(), s, id, result.Path, err)
		})
	}
}

// buildExecuteCmdMap constructs the ExecuteCmdMap (spec.md §4.9),
// keying every entry under its prefixed command string exactly as
// advertised by ExecuteCommandOptions.
func buildExecuteCmdMap(prefix string) map[string]CommandHandler {
	name := func(cmd string) string { return prefix + "." + cmd }

	return map[string]CommandHandler{
		name("exportPdf"): exportCommand(workers.ExportPDF),
		name("exportSvg"): exportCommand(workers.ExportSVG),
		name("exportPng"): exportCommand(workers.ExportPNG),

		name("doClearCache"): func(ctx context.Context, s *Session, id jsonrpc2.RequestID, args []json.RawMessage) {
			s.pool.ClearAll()
			reply(ctx, s, id, nil, nil)
		},

		name("pinMain"): func(ctx context.Context, s *Session, id jsonrpc2.RequestID, args []json.RawMessage) {
			path, err := arg[*string](args, 0)
			if err != nil {
				invalidParams(ctx, s, id, err)
				return
			}
			effective := ""
			if path != nil {
				effective = *path
			}
			s.focus.SetPinned(effective)
			setPrimaryMain(ctx, s, s.focus.Resolve())
			reply(ctx, s, id, nil, nil)
		},

		name("focusMain"): func(ctx context.Context, s *Session, id jsonrpc2.RequestID, args []json.RawMessage) {
			path, err := arg[*string](args, 0)
			if err != nil {
				invalidParams(ctx, s, id, err)
				return
			}
			effective := ""
			if path != nil {
				effective = *path
			}
			s.focus.SetManual(effective)
			setPrimaryMain(ctx, s, s.focus.Resolve())
			reply(ctx, s, id, nil, nil)
		},

		name("doInitTemplate"): func(ctx context.Context, s *Session, id jsonrpc2.RequestID, args []json.RawMessage) {
			source, err := arg[string](args, 0)
			if err != nil {
				invalidParams(ctx, s, id, err)
				return
			}
			dir, err := arg[*string](args, 1)
			if err != nil {
				invalidParams(ctx, s, id, err)
				return
			}
			spec, err := parsePackageSpec(source)
			if err != nil {
				invalidParams(ctx, s, id, err)
				return
			}
			dirStr := ""
			if dir != nil {
				dirStr = *dir
			}
			entryPath, err := s.pkgReg.InitTemplate(ctx, spec, dirStr)
			reply(ctx, s, id, map[string]string{"entryPath": entryPath}, err)
		},

		name("doGetTemplateEntry"): func(ctx context.Context, s *Session, id jsonrpc2.RequestID, args []json.RawMessage) {
			source, err := arg[string](args, 0)
			if err != nil {
				invalidParams(ctx, s, id, err)
				return
			}
			spec, err := parsePackageSpec(source)
			if err != nil {
				invalidParams(ctx, s, id, err)
				return
			}
			text, err := s.pkgReg.GetTemplateEntry(ctx, spec)
			reply(ctx, s, id, text, err)
		},

		name("interactCodeContext"): func(ctx context.Context, s *Session, id jsonrpc2.RequestID, args []json.RawMessage) {
			q, err := arg[query.ContextQuery](args, 0)
			if err != nil {
				invalidParams(ctx, s, id, err)
				return
			}
			result, err := steal(ctx, s.pool.Primary(), func(w *compiler.World) (*query.ContextQueryResult, error) {
				return query.InteractCodeContext(w, q)
			})
			reply(ctx, s, id, result, err)
		},

		name("getDocumentTrace"): func(ctx context.Context, s *Session, id jsonrpc2.RequestID, args []json.RawMessage) {
			path, err := arg[string](args, 0)
			if err != nil {
				invalidParams(ctx, s, id, err)
				return
			}
			cfg := s.configMgr.Current()
			s.userActions.Submit(workers.TraceParams{
				RequestID: id,
				Root:      s.root,
				MainFile:  path,
				FontPaths: cfg.FontPaths,
			})
		},

		name("getDocumentMetrics"): func(ctx context.Context, s *Session, id jsonrpc2.RequestID, args []json.RawMessage) {
			reply(ctx, s, id, map[string]any{"openDocuments": len(s.store.Paths())}, nil)
		},

		name("getServerInfo"): func(ctx context.Context, s *Session, id jsonrpc2.RequestID, args []json.RawMessage) {
			reply(ctx, s, id, map[string]string{"name": "tinymist-lsp", "version": "0.1.0"}, nil)
		},

		name("getResources"): func(ctx context.Context, s *Session, id jsonrpc2.RequestID, args []json.RawMessage) {
			virtualPath, err := arg[string](args, 0)
			if err != nil {
				invalidParams(ctx, s, id, err)
				return
			}
			handler, ok := s.resources[virtualPath]
			if !ok {
				s.respondError(ctx, id, jsonrpc2.MethodNotFound, fmt.Sprintf("unknown resource: %s", virtualPath))
				return
			}
			rest := args
			if len(rest) > 0 {
				rest = rest[1:]
			}
			result, err := handler(ctx, s, rest)
			reply(ctx, s, id, result, err)
		},
	}
}

// executeCommandNames lists every full command string buildExecuteCmdMap
// registers, for ExecuteCommandOptions.Commands at initialize time.
func executeCommandNames(prefix string) []string {
	cmds := buildExecuteCmdMap(prefix)
	names := make([]string, 0, len(cmds))
	for cmdName := range cmds {
		names = append(names, cmdName)
	}
	return names
}

// symbolCatalogue is the static catalogue the /symbols resource serves
// (spec.md §6): the LSP's own SymbolKind vocabulary, not a
// document-language-specific symbol set (spec.md §1's Non-goals).
var symbolCatalogue = []string{
	"File", "Module", "Namespace", "Package", "Class", "Method", "Property",
	"Field", "Constructor", "Enum", "Interface", "Function", "Variable",
	"Constant", "String", "Number", "Boolean", "Array", "Object", "Key",
	"Null", "EnumMember", "Struct", "Event", "Operator", "TypeParameter",
}

// buildResourceMap constructs the ResourceMap (spec.md §4.2/§6).
func buildResourceMap() map[string]ResourceHandler {
	return map[string]ResourceHandler{
		"/symbols": func(ctx context.Context, s *Session, rest []json.RawMessage) (any, error) {
			return symbolCatalogue, nil
		},
		"/tutorial": func(ctx context.Context, s *Session, rest []json.RawMessage) (any, error) {
			return nil, jsonrpc2.NewError(jsonrpc2.MethodNotFound, "tutorial resource not implemented")
		},
		"/package-index": func(ctx context.Context, s *Session, rest []json.RawMessage) (any, error) {
			namespace, err := arg[string](rest, 0)
			if err != nil {
				return nil, err
			}
			return s.pkgReg.ListNamespace(ctx, namespace)
		},
	}
}
