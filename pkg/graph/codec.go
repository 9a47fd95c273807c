package graph

import (
	"bytes"
	"encoding/json"

	"github.com/nodemap/nodemap/pkg/errors"
)

// =============================================================================
// Wire Format
//
// {"nodes":[{"id","label","tag?","tagColor"}],
//  "edges":[{"source","target","directed"}]}
//
// Fields beyond these are ignored on read. Absent optional fields default:
// directed → true, tagColor → DefaultTagColor. Positions are never written.
// The bson tags mirror the json shape so the mongo gateway stores documents
// in the same form.
// =============================================================================

type nodeJSON struct {
	ID       string `json:"id" bson:"id"`
	Label    string `json:"label" bson:"label"`
	Tag      string `json:"tag,omitempty" bson:"tag,omitempty"`
	TagColor string `json:"tagColor" bson:"tagColor"`
}

type edgeJSON struct {
	Source   string `json:"source" bson:"source"`
	Target   string `json:"target" bson:"target"`
	Directed *bool  `json:"directed" bson:"directed"`
}

type documentJSON struct {
	Nodes []nodeJSON `json:"nodes" bson:"nodes"`
	Edges []edgeJSON `json:"edges" bson:"edges"`
}

// Marshal serializes a document to indented JSON. It is pure and total:
// the wire types contain nothing the encoder can reject, and document order
// is preserved so output is deterministic for a given document.
func Marshal(d Document) []byte {
	out := documentJSON{
		Nodes: make([]nodeJSON, len(d.Nodes)),
		Edges: make([]edgeJSON, len(d.Edges)),
	}
	for i, n := range d.Nodes {
		out.Nodes[i] = nodeJSON{ID: n.ID, Label: n.Label, Tag: n.TagName, TagColor: n.TagColor}
	}
	for i, e := range d.Edges {
		directed := e.Directed
		out.Edges[i] = edgeJSON{Source: e.Source, Target: e.Target, Directed: &directed}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	// Encoding plain structs with no custom marshalers cannot fail.
	_ = enc.Encode(out)
	return buf.Bytes()
}

// Unmarshal parses a raw JSON document. Missing "nodes"/"edges" keys default
// to empty lists. Edges referencing node IDs that do not exist are dropped
// silently. Edge IDs are not persisted and are regenerated on every load.
//
// Returns a PARSE_ERROR if the input is not valid JSON; callers surface it
// as a status message and leave their current state untouched.
func Unmarshal(data []byte) (Document, error) {
	var raw documentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeParse, err, "invalid graph document")
	}

	doc := Document{}
	for _, n := range raw.Nodes {
		color := n.TagColor
		if color == "" {
			color = DefaultTagColor
		}
		doc.Nodes = append(doc.Nodes, Node{
			ID:       n.ID,
			Label:    n.Label,
			TagName:  n.Tag,
			TagColor: color,
		})
	}
	for _, e := range raw.Edges {
		if !doc.HasNode(e.Source) || !doc.HasNode(e.Target) {
			continue // dangling endpoint, dropped silently
		}
		directed := true
		if e.Directed != nil {
			directed = *e.Directed
		}
		doc.Edges = append(doc.Edges, Edge{
			ID:       NewID(),
			Source:   e.Source,
			Target:   e.Target,
			Directed: directed,
		})
	}
	return doc, nil
}

// RebuildTags derives a tag registry from the loaded nodes: each distinct
// named color becomes a tag, first occurrence wins. Unnamed colors do not
// register a tag.
func RebuildTags(d Document) *Tags {
	tags := &Tags{}
	for _, n := range d.Nodes {
		if n.TagName == "" {
			continue
		}
		tags.Add(n.TagName, n.TagColor)
	}
	return tags
}
