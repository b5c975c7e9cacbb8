package session

import (
	"context"

	"github.com/sjfhsjfh/tinymist/internal/protocol"
	"github.com/sjfhsjfh/tinymist/internal/workers"
)

// handleDidOpen opens the document in the store and records an
// implicit-focus 'o' signal per spec.md §4.10.
func handleDidOpen(ctx context.Context, s *Session, params protocol.DidOpenTextDocumentParams) {
	src := s.store.Open(params.TextDocument.URI, params.TextDocument.LanguageID, params.TextDocument.Version, params.TextDocument.Text)
	s.touchImplicitFocus(src.Path)
}

// handleDidChange applies the reported content changes in order. A
// failed apply invalidates the Source; the document stays open so a
// later didChange (or didClose) can still reach it.
func handleDidChange(ctx context.Context, s *Session, params protocol.DidChangeTextDocumentParams) {
	if err := s.store.ApplyChanges(params.TextDocument.URI, params.TextDocument.Version, params.ContentChanges); err != nil {
		s.log.WithError(err).WithField("uri", params.TextDocument.URI).Warn("failed to apply document changes")
		return
	}
	s.touchImplicitFocus(protocol.AsPath(params.TextDocument.URI))
}

// handleDidSave runs the configured export-on-save behavior, if any
// (spec.md §4.5's ExportPDFOnSave, SPEC_FULL.md's domain stack wiring
// of the ExportWorker).
func handleDidSave(ctx context.Context, s *Session, params protocol.DidSaveTextDocumentParams) {
	path := protocol.AsPath(params.TextDocument.URI)

	cfg := s.configMgr.Current()
	if cfg.ExportPDFOnSave == "" {
		return
	}
	format := workers.ExportFormat(cfg.ExportPDFOnSave)

	s.exporter.Export(ctx, path, format, workers.DefaultExportOpts(), func(result workers.ExportResult, err error) {
		if err != nil {
			s.log.WithError(err).WithField("path", path).Warn("export-on-save failed")
			return
		}
		s.log.WithField("path", result.Path).Debug("export-on-save completed")
	})
}

// handleDidClose removes the document from the store and drops any
// dedicated compiler actor for it. Focus state is left unchanged.
func handleDidClose(ctx context.Context, s *Session, params protocol.DidCloseTextDocumentParams) {
	path := protocol.AsPath(params.TextDocument.URI)
	s.store.Close(params.TextDocument.URI)
	s.pool.DropDedicate(path)
}
