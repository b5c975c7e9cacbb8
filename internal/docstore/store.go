package docstore

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sjfhsjfh/tinymist/internal/protocol"
)

// Store is the single owner of every open Source. Its source map and
// Encoding are guarded by mu, since compiler actors read them
// concurrently with the reactor goroutine.
type Store struct {
	log *logrus.Entry

	mu  sync.RWMutex
	enc Encoding

	sources map[string]*Source
}

// NewStore constructs an empty Store with the given negotiated
// position encoding.
func NewStore(enc Encoding, log *logrus.Entry) *Store {
	return &Store{
		log:     log,
		enc:     enc,
		sources: make(map[string]*Source),
	}
}

// Encoding returns the store's negotiated position encoding.
func (s *Store) Encoding() Encoding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enc
}

// Open inserts a new Source for uri, or — matching spec.md §9's
// decided behavior for duplicate didOpen — logs a warning and leaves
// the existing Source untouched if the path is already open.
func (s *Store) Open(uri protocol.DocumentURI, languageID string, version int, text string) *Source {
	path := protocol.AsPath(uri)

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sources[path]; ok {
		s.log.WithField("path", path).Warn("didOpen for an already-open document; ignoring")
		return existing
	}

	src := &Source{
		Path:       path,
		URI:        uri,
		LanguageID: languageID,
		Version:    version,
		Text:       text,
		Valid:      true,
	}
	s.sources[path] = src
	return src
}

// Get returns the Source for uri, or nil if it is not open.
func (s *Store) Get(uri protocol.DocumentURI) *Source {
	path := protocol.AsPath(uri)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sources[path]
}

// GetByPath is the same as Get but keyed directly by a normalized path
// (used by compiler actors resolving import graphs).
func (s *Store) GetByPath(path string) *Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sources[path]
}

// Close removes uri from the store. Closing a document that isn't
// open is a no-op.
func (s *Store) Close(uri protocol.DocumentURI) {
	path := protocol.AsPath(uri)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sources, path)
}

// ApplyChanges applies a sequence of content changes to the document
// at uri in order, bumping its version. If any change fails to apply,
// the Source is marked invalid and the error is returned; its Text
// keeps the content it had before the batch.
func (s *Store) ApplyChanges(uri protocol.DocumentURI, version int, changes []protocol.TextDocumentContentChangeEvent) error {
	path := protocol.AsPath(uri)

	s.mu.Lock()
	enc := s.enc
	src, ok := s.sources[path]
	s.mu.Unlock()
	if !ok {
		return requireValid(nil)
	}
	if !src.Valid {
		return requireValid(src)
	}

	text := src.Text
	for _, change := range changes {
		next, err := applyChange(text, change, enc)
		if err != nil {
			src.invalidate()
			s.log.WithError(err).WithField("path", path).Error("failed to apply content change; document invalidated")
			return err
		}
		text = next
		src.edits = append(src.edits, EditRecord{Version: version, Range: change.Range, Text: change.Text})
	}

	src.Text = text
	src.Version = version
	return nil
}

// Paths returns the normalized paths of every currently open document.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.sources))
	for p := range s.sources {
		out = append(out, p)
	}
	return out
}
