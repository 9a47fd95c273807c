package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nodemap/nodemap/pkg/errors"
)

func TestResolve(t *testing.T) {
	g := NewFileGateway()

	tests := []struct {
		name     string
		ref      string
		wantName string
		wantBase string
		wantPath string
	}{
		{
			name:     "Stem",
			ref:      "/tmp/graphs/ideas",
			wantName: "ideas",
			wantBase: "/tmp/graphs/ideas_data",
			wantPath: "/tmp/graphs/ideas_data/ideas.json",
		},
		{
			name:     "WithExtension",
			ref:      "/tmp/graphs/ideas.json",
			wantName: "ideas",
			wantBase: "/tmp/graphs/ideas_data",
			wantPath: "/tmp/graphs/ideas_data/ideas.json",
		},
		{
			name:     "InsideDataDir",
			ref:      "/tmp/graphs/ideas_data/ideas.json",
			wantName: "ideas",
			wantBase: "/tmp/graphs/ideas_data",
			wantPath: "/tmp/graphs/ideas_data/ideas.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := g.resolve(tt.ref)
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if b.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", b.Name, tt.wantName)
			}
			if b.BaseDir != tt.wantBase {
				t.Errorf("BaseDir = %q, want %q", b.BaseDir, tt.wantBase)
			}
			if b.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", b.Path, tt.wantPath)
			}
		})
	}
}

func TestResolveEmptyRefIsCanceled(t *testing.T) {
	g := NewFileGateway()
	_, err := g.resolve("")
	if !errors.Is(err, errors.ErrCodeCanceled) {
		t.Errorf("resolve(\"\") = %v, want CANCELED", err)
	}
}

func TestCreateMaterializesDataDir(t *testing.T) {
	g := NewFileGateway()
	dir := t.TempDir()
	ctx := context.Background()

	b, err := g.Create(ctx, filepath.Join(dir, "notes"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "notes_data", "nodes"))
	if err != nil || !info.IsDir() {
		t.Fatalf("notes directory not created: %v", err)
	}
	if b.Name != "notes" {
		t.Errorf("Name = %q, want notes", b.Name)
	}
}

func TestSaveAndOpen(t *testing.T) {
	g := NewFileGateway()
	dir := t.TempDir()
	ctx := context.Background()
	content := []byte(`{"nodes":[],"edges":[]}`)

	b, err := g.Create(ctx, filepath.Join(dir, "mind"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := g.Save(ctx, b, content); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, data, err := g.Open(ctx, filepath.Join(dir, "mind"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(data) != string(content) {
		t.Errorf("data = %s, want %s", data, content)
	}
	if got.Path != b.Path {
		t.Errorf("Path = %q, want %q", got.Path, b.Path)
	}
}

func TestOpenMissingFile(t *testing.T) {
	g := NewFileGateway()
	_, _, err := g.Open(context.Background(), filepath.Join(t.TempDir(), "ghost"))
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Errorf("Open missing = %v, want IO_ERROR", err)
	}
}

func TestNotes(t *testing.T) {
	g := NewFileGateway()
	dir := t.TempDir()
	ctx := context.Background()

	b, err := g.Create(ctx, filepath.Join(dir, "n"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Missing note reads as empty content, not an error.
	content, err := g.ReadNote(ctx, b, "node-1")
	if err != nil {
		t.Fatalf("ReadNote missing: %v", err)
	}
	if content != "" {
		t.Errorf("missing note = %q, want empty", content)
	}

	if err := g.WriteNote(ctx, b, "node-1", "# hello\n"); err != nil {
		t.Fatalf("WriteNote: %v", err)
	}

	// Filename is derived verbatim from the node id.
	if _, err := os.Stat(filepath.Join(b.BaseDir, "nodes", "node-1.md")); err != nil {
		t.Fatalf("note file missing: %v", err)
	}

	content, err = g.ReadNote(ctx, b, "node-1")
	if err != nil {
		t.Fatalf("ReadNote: %v", err)
	}
	if content != "# hello\n" {
		t.Errorf("note = %q, want %q", content, "# hello\n")
	}
}

func TestSaveUnbound(t *testing.T) {
	g := NewFileGateway()
	if err := g.Save(context.Background(), Binding{}, nil); !errors.Is(err, errors.ErrCodeNoFile) {
		t.Errorf("Save unbound = %v, want NO_FILE_BOUND", err)
	}
}
