package api

import (
	"fmt"
	"net/http"

	"github.com/netobserve/topoview/pkg/model"
)

// handleLayout returns the current render state.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.session == nil {
		writeError(w, http.StatusServiceUnavailable, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

// handleMode toggles between zoned and free layout.
func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Mode model.LayoutMode `json:"mode"`
	}
	rd := newRequestDecoder(w, r).
		DecodeJSON(&req).
		Validate(func() error {
			if req.Mode != model.ModeZoned && req.Mode != model.ModeFree {
				return fmt.Errorf("mode must be %q or %q", model.ModeZoned, model.ModeFree)
			}
			return nil
		})
	if rd.HasError() {
		return
	}
	if s.session != nil {
		if req.Mode == model.ModeZoned {
			s.session.SetZonedMode()
		} else {
			s.session.SetFreeMode()
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"mode": string(req.Mode)})
}

// handleFit requests a fit-to-view over the current layout.
func (s *Server) handleFit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.session != nil {
		s.session.RequestFit()
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleFilter toggles the wireless-only display filter.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Wireless bool `json:"wireless"`
	}
	if newRequestDecoder(w, r).DecodeJSON(&req).HasError() {
		return
	}
	if s.session != nil {
		s.session.SetWirelessFilter(req.Wireless)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"wireless": req.Wireless})
}
