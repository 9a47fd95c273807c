package session

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var fired int32
	var last int32
	for i := 1; i <= 5; i++ {
		i := int32(i)
		d.Schedule("k", func() {
			atomic.AddInt32(&fired, 1)
			atomic.StoreInt32(&last, i)
		})
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&fired); got != 1 {
		t.Errorf("fired %d times, want 1", got)
	}
	if got := atomic.LoadInt32(&last); got != 5 {
		t.Errorf("last action fired was #%d, want #5", got)
	}
}

func TestDebouncerIndependentKeys(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var a, b int32
	d.Schedule("a", func() { atomic.AddInt32(&a, 1) })
	d.Schedule("b", func() { atomic.AddInt32(&b, 1) })

	time.Sleep(60 * time.Millisecond)
	if atomic.LoadInt32(&a) != 1 || atomic.LoadInt32(&b) != 1 {
		t.Errorf("a=%d b=%d, want 1 and 1", a, b)
	}
}

func TestAutosaveCoalescesMutations(t *testing.T) {
	gw := newFakeGateway()
	s := newTestSession(gw)
	if err := s.SaveAs(context.Background(), "doc"); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	base := gw.saveCount() // the explicit SaveAs write

	// A burst of mutations inside one quiet window.
	a := s.AddNode("a")
	b := s.AddNode("b")
	s.Connect(a.ID, b.ID)
	s.AddNode("c")

	time.Sleep(150 * time.Millisecond)

	if got := gw.saveCount() - base; got != 1 {
		t.Fatalf("autosave wrote %d times, want exactly 1", got)
	}

	// The single write reflects the state after the last mutation.
	var wire struct {
		Nodes []json.RawMessage `json:"nodes"`
		Edges []json.RawMessage `json:"edges"`
	}
	if err := json.Unmarshal(gw.savedData(), &wire); err != nil {
		t.Fatalf("unmarshal saved data: %v", err)
	}
	if len(wire.Nodes) != 3 || len(wire.Edges) != 1 {
		t.Errorf("saved %d nodes, %d edges, want 3, 1", len(wire.Nodes), len(wire.Edges))
	}
}

func TestAutosaveDisarmedWhenUnbound(t *testing.T) {
	gw := newFakeGateway()
	s := newTestSession(gw)

	s.AddNode("never saved")
	time.Sleep(80 * time.Millisecond)

	if gw.saveCount() != 0 {
		t.Errorf("unbound session autosaved %d times, want 0", gw.saveCount())
	}
}

func TestAutosaveRearmsAfterFiring(t *testing.T) {
	gw := newFakeGateway()
	s := newTestSession(gw)
	if err := s.SaveAs(context.Background(), "doc"); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	base := gw.saveCount()

	s.AddNode("first burst")
	time.Sleep(80 * time.Millisecond)
	s.AddNode("second burst")
	time.Sleep(80 * time.Millisecond)

	if got := gw.saveCount() - base; got != 2 {
		t.Errorf("got %d autosaves across two quiet windows, want 2", got)
	}
}
