// Package api exposes the sub-topology persistence resource and the
// engine's read-side endpoints over HTTP.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/netobserve/topoview/pkg/layoutstore"
	"github.com/netobserve/topoview/pkg/logging"
	"github.com/netobserve/topoview/pkg/metrics"
	"github.com/netobserve/topoview/pkg/session"
)

// Server routes engine HTTP traffic.
type Server struct {
	store   layoutstore.Store
	session *session.Session
	logger  logging.Logger
	metrics *metrics.Registry
	mux     *http.ServeMux
}

// NewServer creates the API server.
func NewServer(store layoutstore.Store, sess *session.Session, reg *metrics.Registry, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Server{
		store:   store,
		session: sess,
		logger:  logger.With(logging.Component("api")),
		metrics: reg,
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	if s.metrics != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.Prometheus(), promhttp.HandlerOpts{}))
	}

	s.mux.HandleFunc("/api/subtopologies", s.handleSubTopologies)
	s.mux.HandleFunc("/api/subtopologies/", s.handleSubTopologyByID)

	s.mux.HandleFunc("/api/layout", s.handleLayout)
	s.mux.HandleFunc("/api/layout/mode", s.handleMode)
	s.mux.HandleFunc("/api/layout/fit", s.handleFit)
	s.mux.HandleFunc("/api/layout/filter", s.handleFilter)
}

// Handler returns the fully wrapped handler chain.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.mux
	h = s.recoverMiddleware(h)
	h = s.loggingMiddleware(h)
	if s.metrics != nil {
		h = s.metricsMiddleware(h)
	}
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
