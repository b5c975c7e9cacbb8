package workers

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// PageSelection controls which pages an export command renders.
type PageSelection string

const (
	PageSelectionFirst PageSelection = "first"
	PageSelectionAll   PageSelection = "all"
)

// ExportFormat is the target format for an export command
// (workspace/executeCommand's export_pdf/export_svg/export_png).
type ExportFormat string

const (
	ExportPDF ExportFormat = "pdf"
	ExportSVG ExportFormat = "svg"
	ExportPNG ExportFormat = "png"
)

// ExportOpts mirrors parse_opts from the original implementation:
// Page defaults to PageSelectionFirst when the command's second
// argument is absent (SPEC_FULL.md's "Export opts defaulting").
type ExportOpts struct {
	Page PageSelection
}

// DefaultExportOpts returns the opts used when a command omits the
// optional second argument.
func DefaultExportOpts() ExportOpts {
	return ExportOpts{Page: PageSelectionFirst}
}

// ExportResult is the path to the exported artifact. Since rendering
// is out of this core's scope (spec.md §1 Non-goals), the worker
// reports where the artifact *would* be written rather than producing
// real document output.
type ExportResult struct {
	Path string `json:"path"`
}

// ExportWorker runs export commands off the reactor's goroutine; real
// rendering is out of scope, so it synthesizes the destination path
// deterministically from the source path and format, exercising the
// same async hand-off path a real renderer would use.
type ExportWorker struct {
	log *logrus.Entry

	queue   chan func()
	closeCh chan struct{}
	doneCh  chan struct{}
}

// NewExportWorker starts the worker's consume loop.
func NewExportWorker(log *logrus.Entry) *ExportWorker {
	w := &ExportWorker{
		log:     log.WithField("component", "export-worker"),
		queue:   make(chan func(), 8),
		closeCh: make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *ExportWorker) loop() {
	defer close(w.doneCh)
	for {
		select {
		case job := <-w.queue:
			job()
		case <-w.closeCh:
			return
		}
	}
}

// Export synthesizes an export result for sourcePath in format and
// opts, delivering it via reply on the worker goroutine.
func (w *ExportWorker) Export(ctx context.Context, sourcePath string, format ExportFormat, opts ExportOpts, reply func(ExportResult, error)) {
	job := func() {
		path := fmt.Sprintf("%s.%s", sourcePath, format)
		if opts.Page == PageSelectionAll {
			path = fmt.Sprintf("%s.%s-all", sourcePath, format)
		}
		reply(ExportResult{Path: path}, nil)
	}
	select {
	case w.queue <- job:
	case <-w.closeCh:
		reply(ExportResult{}, fmt.Errorf("export worker closed"))
	}
}

// Close stops the worker's goroutine after any in-flight job finishes.
func (w *ExportWorker) Close() {
	close(w.closeCh)
	<-w.doneCh
}
