package session

import (
	"context"

	"github.com/nodemap/nodemap/pkg/errors"
)

// loadNoteLocked issues one asynchronous read for a node's note unless an
// entry already exists or a read is in flight. Key presence in the notes map
// is the guard: a loaded empty note ("" under a present key) is distinct
// from "never loaded" (absent key), so re-selecting a node with an empty
// note does not re-read it.
//
// The completion stores the content keyed by the node id it was requested
// for. The selection may have moved on by then; applying the stale read is
// harmless and intentional.
//
// Lock must be held by the caller.
func (s *Session) loadNoteLocked(id string) {
	if _, ok := s.notes[id]; ok {
		return
	}
	if s.pending[id] {
		return
	}
	if !s.binding.Bound() {
		// Nothing persisted yet: the note starts out empty and loaded.
		s.notes[id] = ""
		return
	}

	s.pending[id] = true
	b := s.binding
	s.dispatch(func() {
		content, err := s.gateway.ReadNote(context.Background(), b, id)

		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.pending, id)
		if err != nil {
			s.setStatusLocked("could not read note: " + errors.UserMessage(err))
			return
		}
		s.notes[id] = content
	})
}

// Note returns the in-memory note for a node. The boolean reports whether
// the note has been loaded (or edited) yet.
func (s *Session) Note(id string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.notes[id]
	return content, ok
}

// SetNote replaces the in-memory note for a node. The content is flushed to
// storage on the next save cycle; editing a note does not itself re-arm the
// autosave timer — only node and edge mutations do.
func (s *Session) SetNote(id, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.doc.HasNode(id) {
		return errors.New(errors.ErrCodeNodeNotFound, "node %q", id)
	}
	s.notes[id] = content
	return nil
}
