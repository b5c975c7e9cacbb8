// Package session implements the session kernel (spec.md §4.3/§4.4):
// the single-threaded cooperative reactor that owns dispatch tables,
// document store, compiler actor pool, focus state, the registration
// ledger and config manager, and ties them together behind the
// Message Codec & Host.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sjfhsjfh/tinymist/internal/compiler"
	"github.com/sjfhsjfh/tinymist/internal/config"
	"github.com/sjfhsjfh/tinymist/internal/docstore"
	"github.com/sjfhsjfh/tinymist/internal/focus"
	"github.com/sjfhsjfh/tinymist/internal/jsonrpc2"
	"github.com/sjfhsjfh/tinymist/internal/lsphost"
	"github.com/sjfhsjfh/tinymist/internal/pkgregistry"
	"github.com/sjfhsjfh/tinymist/internal/protocol"
	"github.com/sjfhsjfh/tinymist/internal/registry"
	"github.com/sjfhsjfh/tinymist/internal/workers"
)

// state is the session's lifecycle state, mirroring the teacher's
// uninitialized/initializing/running/shutdown progression.
type state int

const (
	stateUninitialized state = iota
	stateInitializing
	stateRunning
	stateShutdown
)

// ConstConfig is negotiated once at initialize time and never changes
// for the life of the session (spec.md §3's ConstConfig).
type ConstConfig struct {
	PositionEncoding            docstore.Encoding
	WantSemanticTokensDynamicReg bool
	WantFormattingDynamicReg     bool
	WantConfigDynamicReg         bool
}

// Session is the reactor: it owns every collaborator spec.md names and
// drives the main loop in Run.
type Session struct {
	id  uuid.UUID
	log *logrus.Entry

	host *lsphost.Host
	conn *jsonrpc2.Conn

	commandPrefix string

	st           atomic.Value // state
	shutdownOnce sync.Once

	constConfig ConstConfig
	configMgr   *config.Manager

	root  string
	store *docstore.Store
	pool  *compiler.Pool
	focus *focus.State
	ledg  *registry.Ledger

	pkgReg      *pkgregistry.Registry
	userActions *workers.UserActionWorker
	exporter    *workers.ExportWorker

	regularCmds map[string]RequestHandler
	notifyCmds  map[string]NotifyHandler
	executeCmds map[string]CommandHandler
	resources   map[string]ResourceHandler
}

// Options configures a Session at construction.
type Options struct {
	CommandPrefix string
	PackageRoot   string // directory LocalSource resolves packages under
}

// New constructs a Session around conn. The document store, compiler
// pool and root path are created later, inside handleInitialize, once
// the client's initialize params are known.
func New(conn *jsonrpc2.Conn, log *logrus.Entry, opts Options) *Session {
	if opts.CommandPrefix == "" {
		opts.CommandPrefix = "tinymist"
	}
	id := uuid.New()
	sessionLog := log.WithField("session", id.String())

	s := &Session{
		id:            id,
		log:           sessionLog,
		conn:          conn,
		host:          lsphost.NewHost(conn, sessionLog),
		commandPrefix: opts.CommandPrefix,
		configMgr:     config.NewManager(),
		focus:         focus.NewState(150 * time.Millisecond),
	}
	s.st.Store(stateUninitialized)

	s.pkgReg = pkgregistry.NewRegistry(pkgregistry.NewLocalSource(opts.PackageRoot), sessionLog)
	s.userActions = workers.NewUserActionWorker(s.host, sessionLog)
	s.exporter = workers.NewExportWorker(sessionLog)
	s.ledg = registry.NewLedger(s.host, sessionLog)

	s.regularCmds = buildRegularCmdMap()
	s.notifyCmds = buildNotifyCmdMap()
	s.executeCmds = buildExecuteCmdMap(opts.CommandPrefix)
	s.resources = buildResourceMap()

	return s
}

func (s *Session) currentState() state {
	st, _ := s.st.Load().(state)
	return st
}

// Run drives the reactor loop until the client sends exit, the
// connection closes, or ctx is cancelled.
func (s *Session) Run(ctx context.Context) error {
	s.log.Info("session reactor starting")
	defer s.log.Info("session reactor stopped")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := s.conn.Read(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				if s.currentState() == stateShutdown {
					return nil
				}
				s.log.Warn("inbound stream closed without a prior exit notification")
				return nil
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			s.log.WithError(err).Error("fatal error reading message; terminating session")
			return err
		}

		t0 := time.Now()
		switch m := msg.(type) {
		case *jsonrpc2.RequestMessage:
			s.handleRequest(ctx, m)
		case *jsonrpc2.NotificationMessage:
			if m.Method == protocol.MethodExit {
				s.log.Info("exit notification received; terminating reactor")
				return nil
			}
			s.handleNotification(ctx, m)
		case *jsonrpc2.ResponseMessage:
			if !s.host.RegisterResponse(m) {
				s.log.WithField("id", string(m.ID)).Warn("response with no matching outgoing request; dropping")
			}
		default:
			s.log.Warnf("unknown inbound message type %T", msg)
		}
		s.log.WithField("elapsed", time.Since(t0)).Debug("handled one message")
	}
}

func (s *Session) handleRequest(ctx context.Context, req *jsonrpc2.RequestMessage) {
	if s.currentState() == stateShutdown {
		s.respondError(ctx, req.ID, jsonrpc2.InvalidRequest, "Shutdown already requested.")
		return
	}
	if s.currentState() == stateUninitialized && req.Method != protocol.MethodInitialize {
		s.respondError(ctx, req.ID, jsonrpc2.ServerNotInitialized, "server not initialized")
		return
	}

	handler, ok := s.regularCmds[req.Method]
	if !ok {
		// spec.md §9's Open Question decision: reply MethodNotFound
		// rather than silently dropping unknown requests.
		s.respondError(ctx, req.ID, jsonrpc2.MethodNotFound, fmt.Sprintf("method not found: %s", req.Method))
		return
	}
	handler(ctx, s, req.ID, req.Params)
}

func (s *Session) handleNotification(ctx context.Context, n *jsonrpc2.NotificationMessage) {
	if s.currentState() == stateShutdown {
		s.log.WithField("method", n.Method).Debug("ignoring notification during shutdown")
		return
	}
	handler, ok := s.notifyCmds[n.Method]
	if !ok {
		s.log.WithField("method", n.Method).Debug("no handler for notification; ignoring")
		return
	}
	handler(ctx, s, n.Params)
}

func (s *Session) respondError(ctx context.Context, id jsonrpc2.RequestID, code int, message string) {
	if err := s.host.Respond(ctx, id, nil, jsonrpc2.NewError(code, message)); err != nil {
		s.log.WithError(err).Warn("failed to write error response")
	}
}

// toRPCError normalizes a handler error into a wire error object,
// preserving an already-typed *jsonrpc2.ErrorObject verbatim.
func toRPCError(err error) *jsonrpc2.ErrorObject {
	if rpcErr, ok := err.(*jsonrpc2.ErrorObject); ok {
		return rpcErr
	}
	return jsonrpc2.NewError(jsonrpc2.InternalError, err.Error())
}

// handleInitialize constructs every collaborator that depends on the
// client's initialize params (root, position encoding, font paths)
// and replies with the negotiated server capabilities.
func handleInitialize(ctx context.Context, s *Session, params protocol.InitializeParams) (*protocol.InitializeResult, error) {
	if !s.st.CompareAndSwap(stateUninitialized, stateInitializing) {
		return nil, jsonrpc2.NewError(jsonrpc2.InvalidRequest, "server already initialized")
	}

	root := ""
	if params.RootURI != nil {
		root = protocol.AsPath(*params.RootURI)
	} else if len(params.WorkspaceFolders) > 0 {
		root = protocol.AsPath(protocol.DocumentURI(params.WorkspaceFolders[0].URI))
	}
	s.root = root

	enc := docstore.EncodingUTF16
	if params.Capabilities.General != nil && len(params.Capabilities.General.PositionEncodings) > 0 {
		enc = docstore.EncodingFromKind(params.Capabilities.General.PositionEncodings[0])
	}

	s.constConfig = ConstConfig{
		PositionEncoding:             enc,
		WantSemanticTokensDynamicReg: wantsDynamicReg(params.Capabilities.TextDocument != nil && params.Capabilities.TextDocument.SemanticTokens != nil && params.Capabilities.TextDocument.SemanticTokens.DynamicRegistration),
		WantFormattingDynamicReg:     wantsDynamicReg(params.Capabilities.TextDocument != nil && params.Capabilities.TextDocument.Formatting != nil && params.Capabilities.TextDocument.Formatting.DynamicRegistration),
		WantConfigDynamicReg:         wantsDynamicReg(params.Capabilities.Workspace != nil && params.Capabilities.Workspace.DidChangeConfiguration != nil && params.Capabilities.Workspace.DidChangeConfiguration.DynamicRegistration),
	}

	s.store = docstore.NewStore(enc, s.log)
	cfg := s.configMgr.Current()
	s.pool = compiler.NewPool(s.root, cfg.FontPaths, s.store, s.log)

	caps := protocol.ServerCapabilities{
		PositionEncoding: enc.Kind(),
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: true,
			Change:    protocol.SyncIncremental,
		},
		HoverProvider:              &protocol.HoverOptions{},
		CompletionProvider:         &protocol.CompletionOptions{},
		DefinitionProvider:         &protocol.DefinitionOptions{},
		DeclarationProvider:        true,
		ReferencesProvider:         true,
		DocumentSymbolProvider:     true,
		WorkspaceSymbolProvider:    true,
		CodeActionProvider:         true,
		CodeLensProvider:           &protocol.CodeLensOptions{},
		FoldingRangeProvider:       true,
		SelectionRangeProvider:     true,
		DocumentHighlightProvider:  true,
		SignatureHelpProvider:      &protocol.SignatureHelpOptions{},
		InlayHintProvider:          true,
		DocumentColorProvider:      true,
		RenameProvider:             &protocol.RenameOptions{PrepareProvider: true},
		ExecuteCommandProvider:     &protocol.ExecuteCommandOptions{Commands: executeCommandNames(s.commandPrefix)},
	}
	if !s.constConfig.WantFormattingDynamicReg {
		caps.DocumentFormattingProvider = true
	}
	if !s.constConfig.WantSemanticTokensDynamicReg {
		caps.SemanticTokensProvider = semanticTokensRegistrationOptions()
	}

	return &protocol.InitializeResult{
		Capabilities: caps,
		ServerInfo:   &protocol.ServerInfo{Name: "tinymist-lsp", Version: "0.1.0"},
	}, nil
}

func wantsDynamicReg(v bool) bool { return v }

// handleInitialized reconciles dynamic registrations against the
// current config, per spec.md §4.4.
func handleInitialized(ctx context.Context, s *Session, _ protocol.InitializedParams) {
	if !s.st.CompareAndSwap(stateInitializing, stateRunning) {
		s.log.Warnf("initialized notification received in unexpected state %d", s.currentState())
		return
	}
	cfg := s.configMgr.Current()
	reconcileCapabilities(ctx, s, config.Config{Formatter: config.FormatterNone}, cfg)

	if s.constConfig.WantConfigDynamicReg {
		s.ledg.Enable(ctx, "config", protocol.MethodWorkspaceDidChangeConfiguration, true,
			protocol.DidChangeConfigurationRegistrationOptions{})
	}
	s.log.Info("session running")
}

func handleShutdown(ctx context.Context, s *Session, _ struct{}) (*struct{}, error) {
	s.shutdownOnce.Do(func() {
		if s.st.CompareAndSwap(stateRunning, stateShutdown) ||
			s.st.CompareAndSwap(stateInitializing, stateShutdown) ||
			s.st.CompareAndSwap(stateUninitialized, stateShutdown) {
			s.log.Info("shutdown requested")
		}
	})
	return nil, nil
}

// Close tears down every worker and compiler actor, matching exit's
// "drop channel senders" step in spec.md §4.4. Called by the driver
// after Run returns.
func (s *Session) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
	s.userActions.Close()
	s.exporter.Close()
}
