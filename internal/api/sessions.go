package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/district-map/internal/area"
	"github.com/sells-group/district-map/internal/mapsession"
	"github.com/sells-group/district-map/internal/navigator"
	"github.com/sells-group/district-map/internal/selection"
	"github.com/sells-group/district-map/internal/viewport"
)

type clickRequest struct {
	Granularity area.Granularity `json:"granularity"`
	Code        string           `json:"code"`
}

type clickResponse struct {
	Applied bool                `json:"applied"`
	Session mapsession.Snapshot `json:"session"`
}

type zoomRequest struct {
	Level int `json:"level"`
}

type compareRequest struct {
	On bool `json:"on"`
}

type compareResponse struct {
	Changed bool                `json:"changed"`
	Session mapsession.Snapshot `json:"session"`
}

type queryResponse struct {
	Found    bool                    `json:"found"`
	Selected bool                    `json:"selected"`
	Area     *selection.SelectedArea `json:"area,omitempty"`
	Session  mapsession.Snapshot     `json:"session"`
}

// session resolves {id} or writes 404.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*mapsession.Session, bool) {
	sess, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		if errors.Is(err, viewport.ErrUnavailable) && sess != nil {
			snap := sess.Snapshot()
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error(), Session: &snap})
			return
		}
		writeErr(w, err)
		return
	}
	zap.L().Info("api: session created", zap.String("session", sess.ID()))
	writeJSON(w, http.StatusCreated, sess.Snapshot())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.sessions.Close(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req clickRequest
	if !decodeBody(w, r, &req) {
		return
	}
	g, err := area.ParseGranularity(string(req.Granularity))
	if err != nil {
		writeErr(w, err)
		return
	}

	out, err := sess.Click(g, req.Code)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clickResponse{Applied: out.Applied, Session: sess.Snapshot()})
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req zoomRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := sess.Zoom(req.Level); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handlePan(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req area.LatLng
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		writeError(w, http.StatusBadRequest, "center out of range")
		return
	}
	if err := sess.Pan(req); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

// handleQuery runs a query-driven selection. A code that matches nothing is
// not an error: the response reports found=false and nothing changes.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req navigator.Query
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := sess.Query(req)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Found:    res.Found,
		Selected: res.Selected,
		Area:     res.Area,
		Session:  sess.Snapshot(),
	})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req compareRequest
	if !decodeBody(w, r, &req) {
		return
	}
	changed, err := sess.SetCompare(req.On)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, compareResponse{Changed: changed, Session: sess.Snapshot()})
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.ClearSelection(); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleShapes(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	data, err := sess.GeoJSON()
	if err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
