// Package api exposes a minimal read-only introspection surface over
// the live SessionRegistry and the audit trail. It never mutates a
// session; all mutation goes through internal/command on the
// WebSocket path.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/riverbend/marketsim/internal/persist"
	"github.com/riverbend/marketsim/internal/registry"
)

// Server provides REST introspection endpoints for the simulator.
type Server struct {
	registry *registry.Registry
	reader   persist.AuditReader
	startAt  time.Time
}

// NewServer creates a new API server. reader may be nil when no audit
// store is configured, in which case the trade-history endpoint
// responds 503.
func NewServer(reg *registry.Registry, reader persist.AuditReader) *Server {
	return &Server{registry: reg, reader: reader, startAt: time.Now()}
}

// Register attaches API routes to the given mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sessions", s.handleSessions)
	mux.HandleFunc("GET /api/sessions/{id}/trades", s.handleSessionTrades)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIntParam(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
