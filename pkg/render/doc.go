// Package render turns graph documents into Graphviz DOT source and renders
// that to SVG in-process via github.com/goccy/go-graphviz. DOT output is
// deterministic for equal documents, which makes it a usable cache key.
package render
