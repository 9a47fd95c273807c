package session

import (
	"context"

	"github.com/nodemap/nodemap/pkg/errors"
	"github.com/nodemap/nodemap/pkg/graph"
	"github.com/nodemap/nodemap/pkg/store"
)

// Open loads the document at ref, replacing the session state. A parse or
// I/O failure surfaces as a status message and leaves the current state
// untouched. Opening does not cancel an in-flight save of the previous
// document; that save completes against its own snapshot.
func (s *Session) Open(ctx context.Context, ref string) error {
	b, data, err := s.gateway.Open(ctx, ref)
	if err != nil {
		if errors.Is(err, errors.ErrCodeCanceled) {
			return err
		}
		s.mu.Lock()
		s.setStatusLocked("could not open: " + errors.UserMessage(err))
		s.mu.Unlock()
		return err
	}

	doc, err := graph.Unmarshal(data)
	if err != nil {
		s.mu.Lock()
		s.setStatusLocked("could not open: " + errors.UserMessage(err))
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.tags = graph.RebuildTags(doc)
	s.notes = make(map[string]string)
	s.pending = make(map[string]bool)
	s.selection = Selection{}
	s.binding = b
	// Persisted positions are never trusted; recompute from topology.
	s.relayoutLocked()
	s.setStatusLocked("opened " + b.Name)
	return nil
}

// NewDocument resets the session to an empty, unbound document. Autosave
// stays disarmed until SaveAs binds a location.
func (s *Session) NewDocument() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = graph.Document{}
	s.tags = &graph.Tags{}
	s.notes = make(map[string]string)
	s.pending = make(map[string]bool)
	s.selection = Selection{}
	s.binding = store.Binding{}
	s.setStatusLocked("new document")
}

// Save serializes the full current state and writes the topology plus every
// node's note. Notes never loaded into memory are written as empty content,
// overwriting whatever the file held — this mirrors the original editor's
// autosave and is pinned by tests; do not "fix" silently.
//
// Failures surface as a status message; in-memory state is left unchanged so
// the next attempt can succeed. There is no retry.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	if !s.binding.Bound() {
		s.mu.Unlock()
		return errors.New(errors.ErrCodeNoFile, "no document bound")
	}
	b := s.binding
	data := graph.Marshal(s.doc)
	nodeIDs := make([]string, len(s.doc.Nodes))
	noteByID := make(map[string]string, len(s.doc.Nodes))
	for i, n := range s.doc.Nodes {
		nodeIDs[i] = n.ID
		noteByID[n.ID] = s.notes[n.ID] // absent entry defaults to ""
	}
	s.mu.Unlock()

	if err := s.gateway.Save(ctx, b, data); err != nil {
		s.failStatus("save failed", err)
		return err
	}
	for _, id := range nodeIDs {
		if err := s.gateway.WriteNote(ctx, b, id, noteByID[id]); err != nil {
			s.failStatus("save failed", err)
			return err
		}
	}

	s.mu.Lock()
	s.setStatusLocked("saved " + b.Name)
	s.mu.Unlock()
	return nil
}

// SaveAs binds the session to a new location (creating its data directory)
// and saves immediately. A canceled picker returns a CANCELED error without
// touching the current binding.
func (s *Session) SaveAs(ctx context.Context, ref string) error {
	b, err := s.gateway.Create(ctx, ref)
	if err != nil {
		if !errors.Is(err, errors.ErrCodeCanceled) {
			s.failStatus("save failed", err)
		}
		return err
	}

	s.mu.Lock()
	s.binding = b
	s.mu.Unlock()
	return s.Save(ctx)
}

// Close flushes a final save when a document is bound.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	bound := s.binding.Bound()
	s.mu.Unlock()
	if !bound {
		return nil
	}
	return s.Save(ctx)
}

func (s *Session) failStatus(prefix string, err error) {
	s.mu.Lock()
	s.setStatusLocked(prefix + ": " + errors.UserMessage(err))
	s.mu.Unlock()
}
