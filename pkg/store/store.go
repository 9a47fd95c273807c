// Package store implements the storage gateway for graph documents and their
// per-node markdown notes.
//
// A document named <name> chosen at <dir>/<name> lives on disk as
//
//	<dir>/<name>_data/<name>.json     topology
//	<dir>/<name>_data/nodes/<id>.md   one note file per node
//
// The gateway owns the decision of where the data directory lives relative to
// the chosen location. Two backends implement the same contract: FileGateway
// (the primary) and MongoGateway (collections keyed by document name).
//
// There is no retry policy. All failures surface as IO_ERROR-coded errors
// and callers degrade to a status message; in-memory state is left unchanged
// so the next save attempt can succeed.
package store

import "context"

// Binding identifies the persisted document a session is associated with.
// The zero value means "not yet saved".
type Binding struct {
	Name    string // document name, e.g. "ideas"
	Path    string // reference to the topology document (file path or name)
	BaseDir string // data directory holding topology and notes (file backend)
}

// Bound reports whether the binding points at a persisted document.
func (b Binding) Bound() bool { return b.Name != "" }

// Gateway is the storage contract the session core depends on.
//
// An empty ref on Open or Create means the user dismissed the location
// picker; both return a CANCELED-coded error for it.
type Gateway interface {
	// Open resolves ref to a document, reads its topology, and returns the
	// binding plus the raw JSON bytes. The caller parses.
	Open(ctx context.Context, ref string) (Binding, []byte, error)

	// Create resolves ref to a fresh document location and materializes its
	// data directory. No topology is written until the first Save.
	Create(ctx context.Context, ref string) (Binding, error)

	// Save writes the serialized topology for an existing binding.
	Save(ctx context.Context, b Binding, data []byte) error

	// ReadNote returns the note content for a node. A missing note is empty
	// content, not an error.
	ReadNote(ctx context.Context, b Binding, nodeID string) (string, error)

	// WriteNote persists the note content for a node.
	WriteNote(ctx context.Context, b Binding, nodeID string, content string) error
}
