// Package graph defines the in-memory graph model and its canonical JSON
// serialization for nodemap documents.
//
// A document is a set of labeled, color-tagged nodes connected by directed or
// undirected edges. Node positions are derived by pkg/layout and are never
// part of the persisted form: topology is the single source of truth and
// layout is recomputed on every load.
package graph

import (
	"slices"

	"github.com/google/uuid"
)

// DefaultTagColor is the color assigned to freshly created nodes and to
// nodes loaded without a tagColor field.
const DefaultTagColor = "#9aa5b1"

// Point is a 2D canvas position. Derived, never persisted.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a graph vertex. Identity is the ID, generated at creation time
// and immutable thereafter. The json tags serve the presentation API; the
// persisted form is produced by the codec, which never includes Pos.
type Node struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	TagName  string `json:"tagName,omitempty"`
	TagColor string `json:"tagColor"`
	Pos      Point  `json:"pos"` // derived by layout, not persisted
}

// Edge is a connection between two nodes. Source and Target must reference
// existing node IDs for the document to be valid.
type Edge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Directed bool   `json:"directed"`
}

// Tag is a named color used to group nodes visually. Tags are a derived
// convenience index over node colors: a tag whose color matches no node is
// still retained.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// Document is the full mutable graph state: nodes and edges in insertion
// order. The zero value is a usable empty document.
type Document struct {
	Nodes []Node
	Edges []Edge
}

// NewNode creates a node with a fresh ID and the default tag color.
func NewNode(label string) Node {
	return Node{
		ID:       NewID(),
		Label:    label,
		TagColor: DefaultTagColor,
	}
}

// NewEdge creates a directed edge between two node IDs with a fresh ID.
// Endpoint existence is the caller's concern; Document.AddEdge validates it.
func NewEdge(source, target string) Edge {
	return Edge{
		ID:       NewID(),
		Source:   source,
		Target:   target,
		Directed: true,
	}
}

// Node returns a pointer to the node with the given ID, or nil.
func (d *Document) Node(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

// Edge returns a pointer to the edge with the given ID, or nil.
func (d *Document) Edge(id string) *Edge {
	for i := range d.Edges {
		if d.Edges[i].ID == id {
			return &d.Edges[i]
		}
	}
	return nil
}

// HasNode reports whether a node with the given ID exists.
func (d *Document) HasNode(id string) bool {
	return d.Node(id) != nil
}

// AddNode appends a node to the document.
func (d *Document) AddNode(n Node) {
	d.Nodes = append(d.Nodes, n)
}

// AddEdge appends an edge. Both endpoints must exist in the node set;
// the boolean result reports whether the edge was added.
func (d *Document) AddEdge(e Edge) bool {
	if !d.HasNode(e.Source) || !d.HasNode(e.Target) {
		return false
	}
	d.Edges = append(d.Edges, e)
	return true
}

// RemoveNode deletes the node with the given ID and cascades to every edge
// referencing it. It returns the IDs of the removed edges, or false if the
// node does not exist.
func (d *Document) RemoveNode(id string) (removedEdges []string, ok bool) {
	idx := slices.IndexFunc(d.Nodes, func(n Node) bool { return n.ID == id })
	if idx < 0 {
		return nil, false
	}
	d.Nodes = slices.Delete(d.Nodes, idx, idx+1)

	kept := d.Edges[:0]
	for _, e := range d.Edges {
		if e.Source == id || e.Target == id {
			removedEdges = append(removedEdges, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	d.Edges = kept
	return removedEdges, true
}

// RemoveEdge deletes the edge with the given ID. Returns false if absent.
func (d *Document) RemoveEdge(id string) bool {
	idx := slices.IndexFunc(d.Edges, func(e Edge) bool { return e.ID == id })
	if idx < 0 {
		return false
	}
	d.Edges = slices.Delete(d.Edges, idx, idx+1)
	return true
}

// Validate reports whether every edge references two existing nodes.
func (d *Document) Validate() bool {
	for _, e := range d.Edges {
		if !d.HasNode(e.Source) || !d.HasNode(e.Target) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() Document {
	return Document{
		Nodes: slices.Clone(d.Nodes),
		Edges: slices.Clone(d.Edges),
	}
}

// =============================================================================
// Tags - Derived Color Index
// =============================================================================

// Tags is the per-session tag registry. Color uniqueness is enforced only on
// explicit Add, not when a node's color is edited directly, so the registry
// can drift out of sync with node colors.
type Tags struct {
	list []Tag
}

// Add registers a new tag. Returns false if the color is already taken.
func (t *Tags) Add(name, color string) (Tag, bool) {
	if t.ByColor(color) != nil {
		return Tag{}, false
	}
	tag := Tag{ID: NewID(), Name: name, Color: color}
	t.list = append(t.list, tag)
	return tag, true
}

// ByColor returns the first tag with the given color, or nil.
func (t *Tags) ByColor(color string) *Tag {
	for i := range t.list {
		if t.list[i].Color == color {
			return &t.list[i]
		}
	}
	return nil
}

// All returns the registered tags in registration order.
func (t *Tags) All() []Tag {
	return slices.Clone(t.list)
}

// Len returns the number of registered tags.
func (t *Tags) Len() int { return len(t.list) }
