package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/nodemap/nodemap/pkg/graph"
	"github.com/nodemap/nodemap/pkg/session"
	"github.com/nodemap/nodemap/pkg/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *session.Session) {
	t.Helper()
	sess := session.New(store.NewFileGateway(), session.Options{
		AutosaveDelay: 10 * time.Millisecond,
	})
	srv := httptest.NewServer(New(sess, Options{}).Handler())
	t.Cleanup(srv.Close)
	return srv, sess
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestNodeLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/nodes", map[string]string{"label": "idea"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create node: status %d", resp.StatusCode)
	}
	n := decode[graph.Node](t, resp)
	if n.ID == "" || n.Label != "idea" || n.TagColor != graph.DefaultTagColor {
		t.Errorf("node = %+v, want fresh id, label, default color", n)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/graph", nil)
	g := decode[graphResponse](t, resp)
	if len(g.Nodes) != 1 {
		t.Fatalf("graph has %d nodes, want 1", len(g.Nodes))
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/nodes/"+n.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete node: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/nodes/"+n.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete missing node: status %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestEdgeLifecycle(t *testing.T) {
	srv, sess := newTestServer(t)
	a := sess.AddNode("a")
	b := sess.AddNode("b")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/edges",
		map[string]string{"source": a.ID, "target": b.ID})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("connect: status %d", resp.StatusCode)
	}
	e := decode[graph.Edge](t, resp)
	if !e.Directed {
		t.Error("new edge should default to directed")
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/edges/"+e.ID+"/toggle", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("toggle: status %d", resp.StatusCode)
	}
	resp.Body.Close()
	if got := sess.Document().Edges[0]; got.Directed {
		t.Error("edge should be undirected after toggle")
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/edges",
		map[string]string{"source": a.ID, "target": "ghost"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("connect to ghost: status %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestTagRoutes(t *testing.T) {
	srv, sess := newTestServer(t)
	n := sess.AddNode("n")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/tags",
		map[string]string{"name": "core", "color": "#112233"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create tag: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Duplicate color is rejected with a conflict.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/tags",
		map[string]string{"name": "other", "color": "#112233"})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate tag: status %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/nodes/"+n.ID+"/tag",
		map[string]string{"name": "core", "color": "#112233"})
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("retag: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/tags", nil)
	tags := decode[[]graph.Tag](t, resp)
	if len(tags) != 1 {
		t.Errorf("tags = %d, want 1", len(tags))
	}
}

func TestSelectionAndNotes(t *testing.T) {
	srv, sess := newTestServer(t)
	n := sess.AddNode("n")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/nodes/"+n.ID+"/select", nil)
	sel := decode[session.Selection](t, resp)
	if sel.Kind != session.SelectionNode || sel.ID != n.ID {
		t.Errorf("selection = %+v, want node %s", sel, n.ID)
	}

	// Unbound session: the note loads empty immediately.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/nodes/"+n.ID+"/note", nil)
	note := decode[noteResponse](t, resp)
	if !note.Loaded || note.Content != "" {
		t.Errorf("note = %+v, want loaded and empty", note)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/nodes/"+n.ID+"/note",
		map[string]string{"content": "remember this"})
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("put note: status %d", resp.StatusCode)
	}
	resp.Body.Close()
	if got, _ := sess.Note(n.ID); got != "remember this" {
		t.Errorf("note = %q", got)
	}

	resp = doJSON(t, http.MethodDelete, srv.URL+"/api/selection", nil)
	resp.Body.Close()
	if sess.Selected().Kind != session.SelectionNone {
		t.Error("selection should be cleared")
	}
}

func TestDocumentLifecycle(t *testing.T) {
	srv, sess := newTestServer(t)
	sess.AddNode("persist me")

	// Save without a binding fails with a precondition error.
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/document/save", nil)
	if resp.StatusCode != http.StatusPreconditionFailed {
		t.Errorf("save unbound: status %d, want 412", resp.StatusCode)
	}
	resp.Body.Close()

	ref := filepath.Join(t.TempDir(), "ideas")
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/document/save-as", map[string]string{"ref": ref})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save-as: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/document/new", nil)
	g := decode[graphResponse](t, resp)
	if len(g.Nodes) != 0 {
		t.Errorf("new document has %d nodes, want 0", len(g.Nodes))
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/document/open", map[string]string{"ref": ref})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("open: status %d", resp.StatusCode)
	}
	g = decode[graphResponse](t, resp)
	if len(g.Nodes) != 1 {
		t.Errorf("reopened document has %d nodes, want 1", len(g.Nodes))
	}
}

func TestLayoutRoute(t *testing.T) {
	srv, sess := newTestServer(t)
	a := sess.AddNode("a")
	b := sess.AddNode("b")
	sess.Connect(a.ID, b.ID)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/layout", nil)
	positions := decode[map[string]graph.Point](t, resp)
	if len(positions) != 2 {
		t.Fatalf("positions = %d, want 2", len(positions))
	}
	if positions[a.ID].X >= positions[b.ID].X {
		t.Errorf("a should sit left of b: %v", positions)
	}
}

func TestMalformedBody(t *testing.T) {
	srv, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/nodes", bytes.NewBufferString("{"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body: status %d, want 400", resp.StatusCode)
	}
}
