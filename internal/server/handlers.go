package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/motorrutas/pkg/editor"
	apperrors "github.com/matzehuels/motorrutas/pkg/errors"
	"github.com/matzehuels/motorrutas/pkg/partition"
	"github.com/matzehuels/motorrutas/pkg/render/nodelink"
	"github.com/matzehuels/motorrutas/pkg/scene"
	"github.com/matzehuels/motorrutas/pkg/session"
)

// =============================================================================
// Requests and Responses
// =============================================================================

type toggleRequest struct {
	Index *int `json:"index" validate:"required"`
}

type moveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=right left all-right all-left"`
}

type tapRequest struct {
	Target   string `json:"target" validate:"max=200"`
	Modifier bool   `json:"modifier"`
}

type edgeRequest struct {
	Source string `json:"source" validate:"required,max=200"`
	Target string `json:"target" validate:"required,max=200"`
}

type formRequest struct {
	Classifier   string `json:"classifier" validate:"max=200"`
	Description  string `json:"description" validate:"max=2000"`
	ValidFrom    string `json:"validFrom" validate:"omitempty,datetime=2006-01-02"`
	ValidTo      string `json:"validTo" validate:"omitempty,datetime=2006-01-02"`
	DeadlineDays int    `json:"deadlineDays" validate:"gte=0,lte=3650"`
	Mandatory    bool   `json:"mandatory"`
}

type sessionResponse struct {
	Session *session.Session `json:"session"`
	State   editor.Snapshot  `json:"state"`
}

type stateResponse struct {
	State editor.Snapshot `json:"state"`
}

type connectResponse struct {
	Created bool            `json:"created"`
	State   editor.Snapshot `json:"state"`
}

type movedResponse struct {
	Moved []partition.Item `json:"moved"`
	State editor.Snapshot  `json:"state"`
}

// =============================================================================
// Sessions
// =============================================================================

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	ed := s.newEditor()
	if err := ed.Load(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	sess := session.New(ed, s.sessionTTL)
	if err := s.store.Set(r.Context(), sess); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Debug("session created", "id", sess.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{Session: sess, State: ed.Snapshot()})
}

// lookup resolves the session in the URL, writing the error response on
// failure.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Session: sess, State: sess.Editor.Snapshot()})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Partition
// =============================================================================

func (s *Server) toggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req toggleRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	sess.Editor.Toggle(*req.Index)
	writeJSON(w, http.StatusOK, stateResponse{State: sess.Editor.Snapshot()})
}

func (s *Server) move(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	moved, err := sess.Editor.Move(editor.Direction(req.Direction))
	if err != nil {
		writeError(w, err)
		return
	}
	if moved == nil {
		moved = []partition.Item{}
	}
	writeJSON(w, http.StatusOK, movedResponse{Moved: moved, State: sess.Editor.Snapshot()})
}

func (s *Server) reload(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := sess.Editor.Reload(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{State: sess.Editor.Snapshot()})
}

// =============================================================================
// Graph
// =============================================================================

func (s *Server) tap(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req tapRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	sess.Editor.Tap(scene.Tap{Target: req.Target, Modifier: req.Modifier})
	writeJSON(w, http.StatusOK, stateResponse{State: sess.Editor.Snapshot()})
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req edgeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	created := sess.Editor.Connect(partition.ItemID(req.Source), partition.ItemID(req.Target))
	writeJSON(w, http.StatusOK, connectResponse{Created: created, State: sess.Editor.Snapshot()})
}

func (s *Server) deleteEdge(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "edgeID")
	if !sess.Editor.DeleteEdge(id) {
		writeError(w, apperrors.New(apperrors.ErrCodeEdgeNotFound, "edge %s not found", id))
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{State: sess.Editor.Snapshot()})
}

func (s *Server) clearEdges(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.Editor.ClearEdges()
	writeJSON(w, http.StatusOK, stateResponse{State: sess.Editor.Snapshot()})
}

func (s *Server) center(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.Editor.Center()
	writeJSON(w, http.StatusOK, stateResponse{State: sess.Editor.Snapshot()})
}

// =============================================================================
// Form and Export
// =============================================================================

func (s *Server) setForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req formRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	sess.Editor.SetForm(editor.Form(req))
	writeJSON(w, http.StatusOK, stateResponse{State: sess.Editor.Snapshot()})
}

func (s *Server) diagram(sess *session.Session) string {
	snap := sess.Editor.Snapshot()
	return nodelink.ToDOT(snap.Elements, nodelink.Options{Title: snap.RouteName})
}

func (s *Server) diagramDOT(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.Write([]byte(s.diagram(sess)))
}

func (s *Server) diagramSVG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	svg, err := nodelink.RenderSVG(r.Context(), s.diagram(sess))
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "render diagram"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}
