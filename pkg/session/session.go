// Package session holds the mutable editing state for one open graph
// document: nodes, edges, tags, selection, loaded notes, and the binding to
// the persisted document.
//
// The original editor ran single-threaded and event-driven; the Go rendition
// serializes all operations through one mutex. The only temporal coordination
// is the autosave debouncer: any node or edge mutation while a document is
// bound re-arms a fixed delay, and on expiry the full state is serialized and
// written together with every node's in-memory note.
//
// Note reads are asynchronous: selecting a node whose note has never been
// loaded issues one background read, and the result is applied to the notes
// map keyed by the node id it was requested for, even if the selection has
// moved on by then.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nodemap/nodemap/pkg/errors"
	"github.com/nodemap/nodemap/pkg/graph"
	"github.com/nodemap/nodemap/pkg/layout"
	"github.com/nodemap/nodemap/pkg/store"
)

// DefaultAutosaveDelay is the debounce window between the last mutation and
// the automatic save.
const DefaultAutosaveDelay = 800 * time.Millisecond

// autosaveKey identifies the single pending autosave task in the debouncer.
const autosaveKey = "autosave"

// SelectionKind says what, if anything, is selected.
type SelectionKind int

const (
	SelectionNone SelectionKind = iota
	SelectionNode
	SelectionEdge
)

// Selection is the current selection: at most one node or one edge.
type Selection struct {
	Kind SelectionKind `json:"kind"`
	ID   string        `json:"id,omitempty"`
}

// Options configures a session.
type Options struct {
	// Logger receives structured session events. Defaults to log.Default().
	Logger *log.Logger

	// Layout is the geometry used by Relayout.
	Layout layout.Options

	// AutosaveDelay overrides DefaultAutosaveDelay. Zero keeps the default.
	AutosaveDelay time.Duration
}

// Session is the in-memory editing state. All methods are safe for
// concurrent use; operations are serialized by an internal mutex.
type Session struct {
	mu sync.Mutex

	doc       graph.Document
	tags      *graph.Tags
	selection Selection

	// notes maps node id → loaded note content. Key presence is the "loaded"
	// marker: a key holding "" is a loaded empty note, a missing key means
	// the note was never read.
	notes   map[string]string
	pending map[string]bool // note reads in flight

	binding store.Binding
	gateway store.Gateway
	engine  *layout.Engine
	saver   *Debouncer
	logger  *log.Logger
	status  string

	// dispatch runs asynchronous work; tests replace it with a synchronous
	// runner to make note loads deterministic.
	dispatch func(func())
}

// New creates an empty, unbound session.
func New(gw store.Gateway, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	delay := opts.AutosaveDelay
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Session{
		tags:     &graph.Tags{},
		notes:    make(map[string]string),
		pending:  make(map[string]bool),
		gateway:  gw,
		engine:   layout.New(opts.Layout),
		saver:    NewDebouncer(delay),
		logger:   logger,
		dispatch: func(f func()) { go f() },
	}
}

// =============================================================================
// Mutating Operations
// =============================================================================

// AddNode creates a node with a fresh id, the default tag color, and the
// given label, and schedules an autosave.
func (s *Session) AddNode(label string) graph.Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := graph.NewNode(label)
	s.doc.AddNode(n)
	s.markDirty()
	return n
}

// DeleteNode removes a node, cascading to its incident edges and its note
// entry. Selection pointing at the node or a cascaded edge is cleared.
func (s *Session) DeleteNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removedEdges, ok := s.doc.RemoveNode(id)
	if !ok {
		return errors.New(errors.ErrCodeNodeNotFound, "node %q", id)
	}
	delete(s.notes, id)
	if s.selection.Kind == SelectionNode && s.selection.ID == id {
		s.selection = Selection{}
	}
	for _, eid := range removedEdges {
		if s.selection.Kind == SelectionEdge && s.selection.ID == eid {
			s.selection = Selection{}
		}
	}
	s.markDirty()
	return nil
}

// Connect creates an edge between two existing nodes, directed by default.
// Self-loops are not independently rejected here.
func (s *Session) Connect(source, target string) (graph.Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.doc.HasNode(source) {
		return graph.Edge{}, errors.New(errors.ErrCodeNodeNotFound, "node %q", source)
	}
	if !s.doc.HasNode(target) {
		return graph.Edge{}, errors.New(errors.ErrCodeNodeNotFound, "node %q", target)
	}
	e := graph.NewEdge(source, target)
	s.doc.AddEdge(e)
	s.markDirty()
	return e, nil
}

// DeleteEdge removes an edge by id.
func (s *Session) DeleteEdge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.doc.RemoveEdge(id) {
		return errors.New(errors.ErrCodeEdgeNotFound, "edge %q", id)
	}
	if s.selection.Kind == SelectionEdge && s.selection.ID == id {
		s.selection = Selection{}
	}
	s.markDirty()
	return nil
}

// ToggleEdgeDirection flips an edge between directed and undirected.
func (s *Session) ToggleEdgeDirection(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.doc.Edge(id)
	if e == nil {
		return errors.New(errors.ErrCodeEdgeNotFound, "edge %q", id)
	}
	e.Directed = !e.Directed
	s.markDirty()
	return nil
}

// Retag updates a node's color and label name. If the color is novel it is
// registered as a tag; colliding with an existing tag color is not an error
// here — uniqueness is only enforced by CreateTag.
func (s *Session) Retag(nodeID, name, color string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.doc.Node(nodeID)
	if n == nil {
		return errors.New(errors.ErrCodeNodeNotFound, "node %q", nodeID)
	}
	n.TagColor = color
	n.TagName = name
	if name != "" {
		s.tags.Add(name, color) // no-op when the color is already registered
	}
	s.markDirty()
	return nil
}

// CreateTag registers a tag explicitly, enforcing color uniqueness.
func (s *Session) CreateTag(name, color string) (graph.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tag, ok := s.tags.Add(name, color)
	if !ok {
		return graph.Tag{}, errors.New(errors.ErrCodeDuplicate, "a tag with color %s already exists", color)
	}
	return tag, nil
}

// Relayout recomputes every node position from the current topology.
func (s *Session) Relayout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.relayoutLocked()
}

func (s *Session) relayoutLocked() {
	positions := s.engine.Compute(s.doc)
	for i := range s.doc.Nodes {
		s.doc.Nodes[i].Pos = positions[s.doc.Nodes[i].ID]
	}
}

// markDirty schedules an autosave if a document is bound. Re-arming replaces
// any previously pending save. Must be called with the lock held.
func (s *Session) markDirty() {
	if !s.binding.Bound() {
		return
	}
	s.saver.Schedule(autosaveKey, func() {
		if err := s.Save(context.Background()); err != nil {
			// Status was already set by Save; nothing more to do, the next
			// mutation or manual save will retry.
			s.logger.Debug("autosave failed", "err", err)
		}
	})
}

// =============================================================================
// Selection
// =============================================================================

// SelectNode marks a node as the sole selection and lazily loads its note.
func (s *Session) SelectNode(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.doc.HasNode(id) {
		return errors.New(errors.ErrCodeNodeNotFound, "node %q", id)
	}
	s.selection = Selection{Kind: SelectionNode, ID: id}
	s.loadNoteLocked(id)
	return nil
}

// SelectEdge marks an edge as the sole selection.
func (s *Session) SelectEdge(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc.Edge(id) == nil {
		return errors.New(errors.ErrCodeEdgeNotFound, "edge %q", id)
	}
	s.selection = Selection{Kind: SelectionEdge, ID: id}
	return nil
}

// ClearSelection deselects everything.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = Selection{}
}

// Selected returns the current selection.
func (s *Session) Selected() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// =============================================================================
// Accessors
// =============================================================================

// Document returns a deep copy of the current graph with positions applied.
func (s *Session) Document() graph.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Tags returns the registered tags.
func (s *Session) Tags() []graph.Tag {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags.All()
}

// Binding returns the current document binding (zero when unsaved).
func (s *Session) Binding() store.Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.binding
}

// Status returns the last status-line message.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// setStatusLocked records and logs a status message. Lock must be held.
func (s *Session) setStatusLocked(msg string) {
	s.status = msg
	s.logger.Info(msg)
}
