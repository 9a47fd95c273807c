package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/nodemap/nodemap/pkg/errors"
)

// dataDirSuffix is appended to the document name to form the data directory.
const dataDirSuffix = "_data"

// notesDirName is the subdirectory of the data directory holding note files.
const notesDirName = "nodes"

// FileGateway stores documents on the local file system.
type FileGateway struct{}

// NewFileGateway creates a file-system gateway.
func NewFileGateway() *FileGateway {
	return &FileGateway{}
}

var _ Gateway = (*FileGateway)(nil)

// resolve maps a user-chosen ref to a binding. Accepted forms:
//
//	<dir>/<name>              location stem (save-as suggestion)
//	<dir>/<name>.json         same, with extension
//	<dir>/<name>_data/<name>.json   the topology file itself
func (g *FileGateway) resolve(ref string) (Binding, error) {
	if ref == "" {
		return Binding{}, errors.New(errors.ErrCodeCanceled, "no location chosen")
	}

	name := strings.TrimSuffix(filepath.Base(ref), ".json")
	dir := filepath.Dir(ref)

	// Already inside a data directory: keep it as the base.
	if filepath.Base(dir) == name+dataDirSuffix {
		return Binding{
			Name:    name,
			BaseDir: dir,
			Path:    filepath.Join(dir, name+".json"),
		}, nil
	}

	baseDir := filepath.Join(dir, name+dataDirSuffix)
	return Binding{
		Name:    name,
		BaseDir: baseDir,
		Path:    filepath.Join(baseDir, name+".json"),
	}, nil
}

// Open reads the topology document for ref.
func (g *FileGateway) Open(ctx context.Context, ref string) (Binding, []byte, error) {
	b, err := g.resolve(ref)
	if err != nil {
		return Binding{}, nil, err
	}
	data, err := os.ReadFile(b.Path)
	if err != nil {
		return Binding{}, nil, errors.Wrap(errors.ErrCodeIO, err, "open %s", b.Path)
	}
	return b, data, nil
}

// Create derives the sibling data directory from the chosen name and creates
// it, along with the notes subdirectory.
func (g *FileGateway) Create(ctx context.Context, ref string) (Binding, error) {
	b, err := g.resolve(ref)
	if err != nil {
		return Binding{}, err
	}
	if err := os.MkdirAll(filepath.Join(b.BaseDir, notesDirName), 0755); err != nil {
		return Binding{}, errors.Wrap(errors.ErrCodeIO, err, "create data directory %s", b.BaseDir)
	}
	return b, nil
}

// Save writes the topology JSON.
func (g *FileGateway) Save(ctx context.Context, b Binding, data []byte) error {
	if !b.Bound() {
		return errors.New(errors.ErrCodeNoFile, "no document bound")
	}
	if err := os.MkdirAll(b.BaseDir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", b.BaseDir)
	}
	if err := os.WriteFile(b.Path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "save %s", b.Path)
	}
	return nil
}

// notePath returns <baseDir>/nodes/<nodeID>.md. The filename is derived
// verbatim from the node id.
func (g *FileGateway) notePath(b Binding, nodeID string) string {
	return filepath.Join(b.BaseDir, notesDirName, nodeID+".md")
}

// ReadNote reads a note file. A missing file is empty content, not an error.
func (g *FileGateway) ReadNote(ctx context.Context, b Binding, nodeID string) (string, error) {
	data, err := os.ReadFile(g.notePath(b, nodeID))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "read note for %s", nodeID)
	}
	return string(data), nil
}

// WriteNote writes a note file, creating the notes directory if needed.
func (g *FileGateway) WriteNote(ctx context.Context, b Binding, nodeID string, content string) error {
	if !b.Bound() {
		return errors.New(errors.ErrCodeNoFile, "no document bound")
	}
	dir := filepath.Join(b.BaseDir, notesDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create %s", dir)
	}
	path := g.notePath(b, nodeID)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write note %s", path)
	}
	return nil
}
