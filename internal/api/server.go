// Package api provides the HTTP API for observing a paced run.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (run control).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/talgya/outbreak/internal/collect"
	"github.com/talgya/outbreak/internal/sim"
)

// Server serves the simulation state over HTTP while a paced run is active.
type Server struct {
	Model    *sim.Model
	Runner   *sim.Runner
	Mem      *collect.Memory
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/series", s.handleSeries)
	mux.HandleFunc("/api/v1/config", s.handleConfig)

	// Control endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "control endpoints disabled (no OUTBREAK_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	counts := s.Model.Counts()
	cfg := s.Model.Config()

	status := map[string]any{
		"tick":        s.Model.Tick(),
		"terminated":  s.Model.Terminated(),
		"population":  cfg.Population,
		"susceptible": counts.Susceptible,
		"infected":    counts.Infected,
		"recovered":   counts.Recovered,
		"seed":        cfg.Seed,
	}
	if s.Runner != nil {
		status["speed"] = s.Runner.Speed
		status["running"] = s.Runner.Running
	}
	writeJSON(w, status)
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Mem.Series())
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Model.Config())
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Runner == nil {
		http.Error(w, "no paced runner", http.StatusConflict)
		return
	}

	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Runner.Speed = req.Speed
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Runner.Speed})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
