// Package layout computes deterministic left-to-right layered positions for
// graph documents.
//
// The engine is the layout counterpart of the original editor's external
// layered-layout routine: given the same node/edge set in the same order it
// always produces identical positions. Persisted positions are never trusted;
// callers recompute layout from topology on every load.
//
// # Algorithm
//
// Layout runs in four stages per connected component:
//
//  1. Cycle breaking: back edges found by depth-first search are ignored for
//     ranking purposes (the edges themselves are untouched).
//  2. Layer assignment: longest-path layering via Kahn's algorithm; the layer
//     becomes the x rank.
//  3. Ordering: barycenter sweeps reduce edge crossings inside each layer,
//     with node order as the deterministic tie-break.
//  4. Coordinates: fixed node boxes and fixed gaps; disconnected components
//     are laid out independently and stacked vertically without overlap.
//
// Every edge participates in ranking regardless of its Directed flag, and
// self-loops are skipped, matching the behavior of the layered engine the
// original editor delegated to.
package layout

import "github.com/nodemap/nodemap/pkg/graph"

// Default geometry constants. Node boxes are fixed-size; spacing is constant.
const (
	DefaultNodeWidth  = 160.0
	DefaultNodeHeight = 48.0
	DefaultHGap       = 80.0
	DefaultVGap       = 24.0
)

// Options controls the layout geometry.
type Options struct {
	NodeWidth  float64 `toml:"node_width"`
	NodeHeight float64 `toml:"node_height"`
	HGap       float64 `toml:"h_gap"`
	VGap       float64 `toml:"v_gap"`
}

// DefaultOptions returns the standard geometry.
func DefaultOptions() Options {
	return Options{
		NodeWidth:  DefaultNodeWidth,
		NodeHeight: DefaultNodeHeight,
		HGap:       DefaultHGap,
		VGap:       DefaultVGap,
	}
}

// Engine computes positions. It holds no state between calls.
type Engine struct {
	opts Options
}

// New creates an engine. Zero-valued option fields fall back to defaults.
func New(opts Options) *Engine {
	def := DefaultOptions()
	if opts.NodeWidth <= 0 {
		opts.NodeWidth = def.NodeWidth
	}
	if opts.NodeHeight <= 0 {
		opts.NodeHeight = def.NodeHeight
	}
	if opts.HGap <= 0 {
		opts.HGap = def.HGap
	}
	if opts.VGap <= 0 {
		opts.VGap = def.VGap
	}
	return &Engine{opts: opts}
}

// Compute returns positions keyed by node ID. A document with zero nodes
// yields an empty map. There are no error conditions.
func (e *Engine) Compute(d graph.Document) map[string]graph.Point {
	positions := make(map[string]graph.Point, len(d.Nodes))
	if len(d.Nodes) == 0 {
		return positions
	}

	g := buildAdjacency(d)
	yOffset := 0.0

	for _, comp := range g.components() {
		sub := g.subgraph(comp)
		sub.breakCycles()
		layers := sub.assignLayers()
		ordered := orderLayers(sub, layers)

		compHeight := 0.0
		for layer, ids := range ordered {
			for idx, id := range ids {
				positions[id] = graph.Point{
					X: float64(layer) * (e.opts.NodeWidth + e.opts.HGap),
					Y: yOffset + float64(idx)*(e.opts.NodeHeight+e.opts.VGap),
				}
			}
			h := float64(len(ids)) * (e.opts.NodeHeight + e.opts.VGap)
			if h > compHeight {
				compHeight = h
			}
		}
		yOffset += compHeight
	}

	return positions
}

// adjacency is the mutable working graph for one layout pass. Node and edge
// order follow document order so every stage is deterministic.
type adjacency struct {
	ids      []string
	out      map[string][]string
	in       map[string][]string
	neighbor map[string][]string // undirected view, for component discovery
}

func buildAdjacency(d graph.Document) *adjacency {
	a := &adjacency{
		out:      make(map[string][]string, len(d.Nodes)),
		in:       make(map[string][]string, len(d.Nodes)),
		neighbor: make(map[string][]string, len(d.Nodes)),
	}
	for _, n := range d.Nodes {
		a.ids = append(a.ids, n.ID)
	}
	for _, e := range d.Edges {
		if e.Source == e.Target {
			continue // self-loops carry no ranking information
		}
		a.out[e.Source] = append(a.out[e.Source], e.Target)
		a.in[e.Target] = append(a.in[e.Target], e.Source)
		a.neighbor[e.Source] = append(a.neighbor[e.Source], e.Target)
		a.neighbor[e.Target] = append(a.neighbor[e.Target], e.Source)
	}
	return a
}

// components returns connected components in order of first appearance.
func (a *adjacency) components() [][]string {
	seen := make(map[string]bool, len(a.ids))
	var comps [][]string

	for _, start := range a.ids {
		if seen[start] {
			continue
		}
		var comp []string
		queue := []string{start}
		seen[start] = true
		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			comp = append(comp, id)
			for _, next := range a.neighbor[id] {
				if !seen[next] {
					seen[next] = true
					queue = append(queue, next)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// subgraph restricts the adjacency to the given node set, preserving order.
func (a *adjacency) subgraph(ids []string) *adjacency {
	member := make(map[string]bool, len(ids))
	for _, id := range ids {
		member[id] = true
	}
	// Keep original document ordering inside the component.
	sub := &adjacency{
		out: make(map[string][]string),
		in:  make(map[string][]string),
	}
	for _, id := range a.ids {
		if !member[id] {
			continue
		}
		sub.ids = append(sub.ids, id)
		for _, to := range a.out[id] {
			if member[to] {
				sub.out[id] = append(sub.out[id], to)
				sub.in[to] = append(sub.in[to], id)
			}
		}
	}
	return sub
}
