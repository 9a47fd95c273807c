package graph

import "testing"

func TestRemoveNodeCascades(t *testing.T) {
	doc := Document{}
	doc.AddNode(Node{ID: "a"})
	doc.AddNode(Node{ID: "b"})
	doc.AddNode(Node{ID: "c"})
	doc.AddEdge(Edge{ID: "e1", Source: "a", Target: "b"})
	doc.AddEdge(Edge{ID: "e2", Source: "b", Target: "c"})
	doc.AddEdge(Edge{ID: "e3", Source: "c", Target: "a"})

	removed, ok := doc.RemoveNode("b")
	if !ok {
		t.Fatal("RemoveNode returned false")
	}
	if len(removed) != 2 {
		t.Fatalf("removed %d edges, want 2", len(removed))
	}
	if len(doc.Edges) != 1 || doc.Edges[0].ID != "e3" {
		t.Errorf("remaining edges = %+v, want only e3", doc.Edges)
	}
	if !doc.Validate() {
		t.Error("document invalid after cascade: edge references missing node")
	}
}

func TestRemoveNodeMissing(t *testing.T) {
	doc := Document{}
	if _, ok := doc.RemoveNode("nope"); ok {
		t.Error("RemoveNode on missing id should return false")
	}
}

func TestAddEdgeValidatesEndpoints(t *testing.T) {
	doc := Document{}
	doc.AddNode(Node{ID: "a"})

	if doc.AddEdge(Edge{Source: "a", Target: "ghost"}) {
		t.Error("AddEdge should reject missing target")
	}
	if doc.AddEdge(Edge{Source: "ghost", Target: "a"}) {
		t.Error("AddEdge should reject missing source")
	}
	// Self-loops are not independently rejected here.
	if !doc.AddEdge(Edge{Source: "a", Target: "a"}) {
		t.Error("AddEdge should accept a self-loop")
	}
}

func TestTagsColorUniqueness(t *testing.T) {
	tags := &Tags{}

	if _, ok := tags.Add("core", "#f00"); !ok {
		t.Fatal("first Add should succeed")
	}
	if _, ok := tags.Add("other", "#f00"); ok {
		t.Error("Add with duplicate color should fail")
	}
	if _, ok := tags.Add("other", "#0f0"); !ok {
		t.Error("Add with fresh color should succeed")
	}
}

func TestNewNodeDefaults(t *testing.T) {
	n := NewNode("hello")
	if n.ID == "" {
		t.Error("NewNode must assign an id")
	}
	if n.TagColor != DefaultTagColor {
		t.Errorf("TagColor = %q, want %q", n.TagColor, DefaultTagColor)
	}

	m := NewNode("world")
	if m.ID == n.ID {
		t.Error("ids must be unique")
	}
}
