package session

import (
	"context"
	"testing"
	"time"

	"github.com/nodemap/nodemap/pkg/errors"
)

func TestNoteLazyLoadOnSelect(t *testing.T) {
	gw := newFakeGateway()
	s := newQuietSession(gw)
	if err := s.SaveAs(context.Background(), "doc"); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	n := s.AddNode("n")
	gw.notes[n.ID] = "persisted content"

	if _, ok := s.Note(n.ID); ok {
		t.Fatal("note should not be loaded before first selection")
	}
	if err := s.SelectNode(n.ID); err != nil {
		t.Fatalf("SelectNode: %v", err)
	}
	got, ok := s.Note(n.ID)
	if !ok || got != "persisted content" {
		t.Errorf("Note = %q, %v, want %q, true", got, ok, "persisted content")
	}
}

func TestNoteLoadedOnceEvenWhenEmpty(t *testing.T) {
	gw := newFakeGateway()
	s := newQuietSession(gw)
	if err := s.SaveAs(context.Background(), "doc"); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	n := s.AddNode("n")

	// No note file exists: the read yields "". The empty result must still
	// count as loaded, so re-selecting does not read again.
	s.SelectNode(n.ID)
	s.ClearSelection()
	s.SelectNode(n.ID)
	s.SelectNode(n.ID)

	gw.mu.Lock()
	reads := gw.noteReads[n.ID]
	gw.mu.Unlock()
	if reads != 1 {
		t.Errorf("gateway read %d times, want 1", reads)
	}
	if _, ok := s.Note(n.ID); !ok {
		t.Error("empty note should be marked loaded")
	}
}

func TestNoteUnboundSessionLoadsEmpty(t *testing.T) {
	gw := newFakeGateway()
	s := newQuietSession(gw)
	n := s.AddNode("n")

	s.SelectNode(n.ID)

	got, ok := s.Note(n.ID)
	if !ok || got != "" {
		t.Errorf("Note = %q, %v, want empty and loaded", got, ok)
	}
	gw.mu.Lock()
	reads := gw.noteReads[n.ID]
	gw.mu.Unlock()
	if reads != 0 {
		t.Errorf("unbound session hit the gateway %d times, want 0", reads)
	}
}

func TestNoteStaleReadAppliedByRequestedID(t *testing.T) {
	gw := newFakeGateway()
	s := newQuietSession(gw)
	if err := s.SaveAs(context.Background(), "doc"); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	a := s.AddNode("a")
	b := s.AddNode("b")
	gw.notes[a.ID] = "alpha"
	gw.notes[b.ID] = "beta"

	// Queue dispatched reads instead of running them, so the selection can
	// move on before the first read completes.
	var queued []func()
	s.dispatch = func(f func()) { queued = append(queued, f) }

	s.SelectNode(a.ID)
	s.SelectNode(b.ID)
	for _, f := range queued {
		f()
	}

	// The read for a landed under a's key even though b is selected now.
	if got, ok := s.Note(a.ID); !ok || got != "alpha" {
		t.Errorf("Note(a) = %q, %v, want %q, true", got, ok, "alpha")
	}
	if got, ok := s.Note(b.ID); !ok || got != "beta" {
		t.Errorf("Note(b) = %q, %v, want %q, true", got, ok, "beta")
	}
	if sel := s.Selected(); sel.Kind != SelectionNode || sel.ID != b.ID {
		t.Errorf("selection = %+v, want node %s", sel, b.ID)
	}
}

func TestSetNoteRequiresExistingNode(t *testing.T) {
	s := newTestSession(newFakeGateway())
	if err := s.SetNote("ghost", "x"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("SetNote(ghost) = %v, want NODE_NOT_FOUND", err)
	}
}

func TestSetNoteDoesNotArmAutosave(t *testing.T) {
	gw := newFakeGateway()
	s := newTestSession(gw)
	if err := s.SaveAs(context.Background(), "doc"); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	n := s.AddNode("n")
	time.Sleep(80 * time.Millisecond) // drain the AddNode autosave
	base := gw.saveCount()

	if err := s.SetNote(n.ID, "draft"); err != nil {
		t.Fatalf("SetNote: %v", err)
	}
	time.Sleep(80 * time.Millisecond)

	if got := gw.saveCount() - base; got != 0 {
		t.Errorf("note edit triggered %d autosaves, want 0", got)
	}

	// The edit is still flushed by the next save cycle.
	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, _ := gw.note(n.ID); got != "draft" {
		t.Errorf("persisted note = %q, want %q", got, "draft")
	}
}

func TestSaveOverwritesUnloadedNotesWithEmpty(t *testing.T) {
	gw := newFakeGateway()
	gw.data = []byte(`{"nodes":[{"id":"a","label":"A","tagColor":"#fff"}],"edges":[]}`)
	gw.notes["a"] = "important prose"

	s := newQuietSession(gw)
	if err := s.Open(context.Background(), "doc"); err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Save without ever selecting the node: its note was never loaded, and
	// the full-state save writes it back as empty. Longstanding behavior of
	// the save cycle; this test pins it.
	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok := gw.note("a")
	if !ok || got != "" {
		t.Errorf("note after save = %q, %v, want overwritten with empty", got, ok)
	}
}

func TestSavePreservesLoadedNotes(t *testing.T) {
	gw := newFakeGateway()
	gw.data = []byte(`{"nodes":[{"id":"a","label":"A","tagColor":"#fff"}],"edges":[]}`)
	gw.notes["a"] = "important prose"

	s := newQuietSession(gw)
	if err := s.Open(context.Background(), "doc"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SelectNode("a"); err != nil {
		t.Fatalf("SelectNode: %v", err)
	}
	if err := s.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if got, _ := gw.note("a"); got != "important prose" {
		t.Errorf("note after save = %q, want preserved content", got)
	}
}
