package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/netobserve/topoview/pkg/model"
	"github.com/netobserve/topoview/pkg/validation"
)

// handleSubTopologies serves the collection: list and create.
func (s *Server) handleSubTopologies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listSubTopologies(w, r)
	case http.MethodPost:
		s.createSubTopology(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSubTopologyByID serves one document: get, replace, delete, and the
// load action that installs a stored layout into the running session.
func (s *Server) handleSubTopologyByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/subtopologies/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing sub-topology id")
		return
	}

	if action == "load" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.loadSubTopology(w, r, id)
		return
	}
	if action != "" {
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getSubTopology(w, r, id)
	case http.MethodPut:
		s.replaceSubTopology(w, r, id)
	case http.MethodDelete:
		s.deleteSubTopology(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) listSubTopologies(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, s.sanitizeError(err, "list sub-topologies"))
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) createSubTopology(w http.ResponseWriter, r *http.Request) {
	var req validation.SubTopologyRequest
	rd := newRequestDecoder(w, r).
		DecodeJSON(&req).
		Validate(func() error { return validation.ValidateSubTopologyRequest(&req) })
	if rd.HasError() {
		return
	}

	now := time.Now().UTC()
	st := &model.SubTopology{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		DeviceIDs:   req.DeviceIDs,
		Layout:      req.Layout,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if st.Layout.NodePositions == nil {
		st.Layout.NodePositions = map[uint64]model.Position{}
	}
	if err := s.store.Save(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, s.sanitizeError(err, "save sub-topology"))
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) getSubTopology(w http.ResponseWriter, r *http.Request, id string) {
	st, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrDocumentNotFound) {
			writeError(w, http.StatusNotFound, "sub-topology not found")
			return
		}
		writeError(w, http.StatusInternalServerError, s.sanitizeError(err, "get sub-topology"))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// replaceSubTopology is a wholesale replacement; the previously stored
// layout document does not survive in any part.
func (s *Server) replaceSubTopology(w http.ResponseWriter, r *http.Request, id string) {
	var req validation.SubTopologyRequest
	rd := newRequestDecoder(w, r).
		DecodeJSON(&req).
		Validate(func() error { return validation.ValidateSubTopologyRequest(&req) })
	if rd.HasError() {
		return
	}

	existing, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrDocumentNotFound) {
			writeError(w, http.StatusNotFound, "sub-topology not found")
			return
		}
		writeError(w, http.StatusInternalServerError, s.sanitizeError(err, "get sub-topology"))
		return
	}

	st := &model.SubTopology{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		DeviceIDs:   req.DeviceIDs,
		Layout:      req.Layout,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   time.Now().UTC(),
	}
	if st.Layout.NodePositions == nil {
		st.Layout.NodePositions = map[uint64]model.Position{}
	}
	if err := s.store.Save(r.Context(), st); err != nil {
		writeError(w, http.StatusInternalServerError, s.sanitizeError(err, "save sub-topology"))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) deleteSubTopology(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.store.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, s.sanitizeError(err, "delete sub-topology"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadSubTopology installs a stored document's layout into the running
// session, pinning every stored position.
func (s *Server) loadSubTopology(w http.ResponseWriter, r *http.Request, id string) {
	st, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrDocumentNotFound) {
			writeError(w, http.StatusNotFound, "sub-topology not found")
			return
		}
		writeError(w, http.StatusInternalServerError, s.sanitizeError(err, "get sub-topology"))
		return
	}
	if s.session != nil {
		doc := st.Layout
		s.session.Post(func() {
			s.session.LoadManualLayout(doc)
		})
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "id": id})
}
