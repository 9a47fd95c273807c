package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nodemap/nodemap/pkg/cache"
	"github.com/nodemap/nodemap/pkg/errors"
	"github.com/nodemap/nodemap/pkg/graph"
	"github.com/nodemap/nodemap/pkg/render"
	"github.com/nodemap/nodemap/pkg/session"
)

// =============================================================================
// Request/Response Types
// =============================================================================

type addNodeRequest struct {
	Label string `json:"label"`
}

type connectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type tagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type noteRequest struct {
	Content string `json:"content"`
}

type refRequest struct {
	Ref string `json:"ref"`
}

type graphResponse struct {
	Nodes     []graph.Node      `json:"nodes"`
	Edges     []graph.Edge      `json:"edges"`
	Tags      []graph.Tag       `json:"tags"`
	Selection session.Selection `json:"selection"`
	Document  string            `json:"document,omitempty"`
	Status    string            `json:"status,omitempty"`
}

type noteResponse struct {
	Content string `json:"content"`
	Loaded  bool   `json:"loaded"`
}

// =============================================================================
// Graph State
// =============================================================================

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	doc := s.session.Document()
	respondJSON(w, http.StatusOK, graphResponse{
		Nodes:     doc.Nodes,
		Edges:     doc.Edges,
		Tags:      s.session.Tags(),
		Selection: s.session.Selected(),
		Document:  s.session.Binding().Name,
		Status:    s.session.Status(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":   s.session.Status(),
		"document": s.session.Binding().Name,
	})
}

// =============================================================================
// Node Operations
// =============================================================================

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	n := s.session.AddNode(req.Label)
	respondJSON(w, http.StatusCreated, n)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := s.session.DeleteNode(chi.URLParam(r, "nodeID")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRetag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.session.Retag(chi.URLParam(r, "nodeID"), req.Name, req.Color); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectNode(w http.ResponseWriter, r *http.Request) {
	if err := s.session.SelectNode(chi.URLParam(r, "nodeID")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.session.Selected())
}

// =============================================================================
// Notes
// =============================================================================

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	content, loaded := s.session.Note(chi.URLParam(r, "nodeID"))
	respondJSON(w, http.StatusOK, noteResponse{Content: content, Loaded: loaded})
}

func (s *Server) handlePutNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.session.SetNote(chi.URLParam(r, "nodeID"), req.Content); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Edge Operations
// =============================================================================

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e, err := s.session.Connect(req.Source, req.Target)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

func (s *Server) handleDeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := s.session.DeleteEdge(chi.URLParam(r, "edgeID")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleEdge(w http.ResponseWriter, r *http.Request) {
	if err := s.session.ToggleEdgeDirection(chi.URLParam(r, "edgeID")); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectEdge(w http.ResponseWriter, r *http.Request) {
	if err := s.session.SelectEdge(chi.URLParam(r, "edgeID")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.session.Selected())
}

// =============================================================================
// Tags
// =============================================================================

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.session.Tags())
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tag, err := s.session.CreateTag(req.Name, req.Color)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, tag)
}

// =============================================================================
// Selection and Layout
// =============================================================================

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	s.session.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.session.Relayout()
	doc := s.session.Document()
	positions := make(map[string]graph.Point, len(doc.Nodes))
	for _, n := range doc.Nodes {
		positions[n.ID] = n.Pos
	}
	respondJSON(w, http.StatusOK, positions)
}

// =============================================================================
// Document Lifecycle
// =============================================================================

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req refRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.session.Open(r.Context(), req.Ref); err != nil {
		respondError(w, err)
		return
	}
	s.handleGraph(w, r)
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	s.session.NewDocument()
	s.handleGraph(w, r)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Save(r.Context()); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": s.session.Status()})
}

func (s *Server) handleSaveAs(w http.ResponseWriter, r *http.Request) {
	var req refRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.session.SaveAs(r.Context(), req.Ref); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": s.session.Status()})
}

// =============================================================================
// Export
// =============================================================================

func (s *Server) handleExportSVG(w http.ResponseWriter, r *http.Request) {
	doc := s.session.Document()
	key := cache.ExportKey(cache.Hash(graph.Marshal(doc)), "svg", nil)

	if data, ok, err := s.cache.Get(r.Context(), key); err == nil && ok {
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write(data)
		return
	}

	svg, err := render.RenderSVG(r.Context(), render.ToDOT(doc))
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.cache.Set(r.Context(), key, svg, s.ttl); err != nil {
		s.logger.Debug("export cache write failed", "err", err)
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

// =============================================================================
// Helpers
// =============================================================================

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, httpStatus(err), map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}

// httpStatus maps error codes to HTTP status codes.
func httpStatus(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound, errors.ErrCodeEdgeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidGraph, errors.ErrCodeParse:
		return http.StatusBadRequest
	case errors.ErrCodeDuplicate:
		return http.StatusConflict
	case errors.ErrCodeCanceled:
		return http.StatusRequestTimeout
	case errors.ErrCodeNoFile:
		return http.StatusPreconditionFailed
	default:
		return http.StatusInternalServerError
	}
}
