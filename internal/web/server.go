package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dkalmus/zonecount/internal/catalog"
	"github.com/dkalmus/zonecount/internal/overlay"
	"github.com/dkalmus/zonecount/internal/session"
	"github.com/dkalmus/zonecount/internal/store"
	"github.com/dkalmus/zonecount/internal/zonetree"
)

type Server struct {
	sites       *store.SiteStore
	items       *store.ItemStore
	assignments *store.AssignmentStore
	entries     *store.EntryStore
	tree        *zonetree.Tree
	sessions    *session.Service
	seeder      *catalog.Seeder
	mux         *http.ServeMux
	logger      *slog.Logger

	overlayCfg overlay.Config
	overlayMu  sync.Mutex
	overlays   map[int64]*overlay.Sync
}

func NewServer(
	sites *store.SiteStore,
	items *store.ItemStore,
	assignments *store.AssignmentStore,
	entries *store.EntryStore,
	tree *zonetree.Tree,
	sessions *session.Service,
	seeder *catalog.Seeder,
	overlayCfg overlay.Config,
	logger *slog.Logger,
) *Server {
	s := &Server{
		sites:       sites,
		items:       items,
		assignments: assignments,
		entries:     entries,
		tree:        tree,
		sessions:    sessions,
		seeder:      seeder,
		mux:         http.NewServeMux(),
		logger:      logger,
		overlayCfg:  overlayCfg,
		overlays:    make(map[int64]*overlay.Sync),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /sites", s.handleListSites)
	s.mux.HandleFunc("POST /sites", s.handleCreateSite)
	s.mux.HandleFunc("GET /sites/{id}/zones", s.handleListSiteZones)
	s.mux.HandleFunc("GET /sites/{id}/sessions", s.handleListSiteSessions)

	s.mux.HandleFunc("POST /zones", s.handleCreateZone)
	s.mux.HandleFunc("GET /zones/{id}", s.handleGetZone)
	s.mux.HandleFunc("DELETE /zones/{id}", s.handleDeleteZone)
	s.mux.HandleFunc("POST /zones/{id}/reparent", s.handleReparentZone)
	s.mux.HandleFunc("GET /zones/{id}/subtree", s.handleZoneSubtree)
	s.mux.HandleFunc("GET /zones/{id}/assignments", s.handleListAssignments)
	s.mux.HandleFunc("POST /zones/{id}/assignments", s.handleCreateAssignment)
	s.mux.HandleFunc("POST /zones/{id}/seed", s.handleSeedZone)

	s.mux.HandleFunc("POST /sessions", s.handleStartSession)
	s.mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("POST /sessions/{id}/complete", s.handleCompleteSession)
	s.mux.HandleFunc("POST /sessions/{id}/abandon", s.handleAbandonSession)
	s.mux.HandleFunc("PUT /sessions/{id}/notes", s.handleSetSessionNotes)
	s.mux.HandleFunc("GET /sessions/{id}/stats", s.handleSessionStats)
	s.mux.HandleFunc("POST /sessions/{id}/zones/{zoneID}/counts", s.handleSubmitCounts)

	s.mux.HandleFunc("POST /sites/{id}/overlay", s.handleReconcileOverlay)
	s.mux.HandleFunc("GET /sites/{id}/overlay", s.handleListMarkers)
	s.mux.HandleFunc("GET /sites/{id}/overlay/hit", s.handleOverlayHit)

	s.mux.HandleFunc("GET /search", s.handleSearchItems)
}

// securityHeaders adds defensive HTTP response headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestLogger(s.logger, securityHeaders(s.mux)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respond(w, status, map[string]string{"error": message})
}

func decode[T any](r *http.Request) (*T, error) {
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}
