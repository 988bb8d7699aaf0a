package web

import (
	"context"
	"errors"
	"net/http"

	"github.com/dkalmus/zonecount/internal/count"
	"github.com/dkalmus/zonecount/internal/domain"
	"github.com/dkalmus/zonecount/internal/session"
	"github.com/dkalmus/zonecount/internal/variance"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	req, err := decode[struct {
		SiteID    int64  `json:"site_id"`
		CountedBy string `json:"counted_by"`
	}](r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SiteID == 0 {
		s.respondError(w, http.StatusBadRequest, "site_id required")
		return
	}

	site, err := s.sites.GetByID(r.Context(), req.SiteID)
	if err != nil {
		s.logger.Error("get site error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get site")
		return
	}
	if site == nil {
		s.respondError(w, http.StatusNotFound, "site not found")
		return
	}

	created, err := s.sessions.Start(r.Context(), req.SiteID, req.CountedBy)
	if err != nil {
		s.logger.Error("start session error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	s.respond(w, http.StatusCreated, toSessionPayload(created))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	found, err := s.sessions.Get(r.Context(), sessionID)
	if err != nil {
		s.logger.Error("get session error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get session")
		return
	}
	if found == nil {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}

	s.respond(w, http.StatusOK, toSessionPayload(found))
}

func (s *Server) handleListSiteSessions(w http.ResponseWriter, r *http.Request) {
	siteID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid site id")
		return
	}

	sessions, err := s.sessions.ListBySite(r.Context(), siteID)
	if err != nil {
		s.logger.Error("list sessions error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	out := make([]sessionPayload, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionPayload(sess))
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	s.finishSession(w, r, s.sessions.Complete)
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	s.finishSession(w, r, s.sessions.Abandon)
}

func (s *Server) finishSession(w http.ResponseWriter, r *http.Request, finish func(ctx context.Context, id int64) (*domain.CountSession, error)) {
	sessionID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	finished, err := finish(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			s.respondError(w, http.StatusNotFound, "session not found")
			return
		}
		s.logger.Error("finish session error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to finish session")
		return
	}

	s.respond(w, http.StatusOK, toSessionPayload(finished))
}

func (s *Server) handleSetSessionNotes(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	req, err := decode[struct {
		Notes string `json:"notes"`
	}](r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.sessions.SetNotes(r.Context(), sessionID, req.Notes); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			s.respondError(w, http.StatusNotFound, "session not found")
			return
		}
		s.logger.Error("set session notes error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to set notes")
		return
	}

	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	stats, err := s.sessions.Stats(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			s.respondError(w, http.StatusNotFound, "session not found")
			return
		}
		s.logger.Error("session stats error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	s.respond(w, http.StatusOK, struct {
		ZonesTouched int     `json:"zones_touched"`
		ItemsCounted int     `json:"items_counted"`
		ItemsSkipped int     `json:"items_skipped"`
		UnderPar     int     `json:"under_par"`
		AtOrAbovePar int     `json:"at_or_above_par"`
		ElapsedSecs  float64 `json:"elapsed_seconds"`
	}{
		ZonesTouched: stats.ZonesTouched,
		ItemsCounted: stats.ItemsCounted,
		ItemsSkipped: stats.ItemsSkipped,
		UnderPar:     stats.UnderPar,
		AtOrAbovePar: stats.AtOrAbovePar,
		ElapsedSecs:  stats.Elapsed.Seconds(),
	})
}

type submitCountsRequest struct {
	Counts []struct {
		ItemID   int64    `json:"item_id"`
		Quantity *float64 `json:"quantity"`
		Skipped  bool     `json:"skipped"`
		Note     string   `json:"note"`
	} `json:"counts"`
}

// handleSubmitCounts runs one whole counting pass for a zone: it configures
// an engine with the zone's assignments, applies the submitted commands, and
// commits the batch.
func (s *Server) handleSubmitCounts(w http.ResponseWriter, r *http.Request) {
	sessionID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	zoneID, err := parseID(r, "zoneID")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid zone id")
		return
	}

	req, err := decode[submitCountsRequest](r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, err := s.sessions.Get(r.Context(), sessionID)
	if err != nil {
		s.logger.Error("get session error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get session")
		return
	}
	if sess == nil {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	if sess.Status.Terminal() {
		s.respondError(w, http.StatusConflict, "session is already finished")
		return
	}

	zone, err := s.tree.Get(r.Context(), zoneID)
	if err != nil {
		s.logger.Error("get zone error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get zone")
		return
	}
	if zone == nil {
		s.respondError(w, http.StatusNotFound, "zone not found")
		return
	}

	assignments, err := s.assignments.ListByZone(r.Context(), zoneID)
	if err != nil {
		s.logger.Error("list assignments error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list assignments")
		return
	}

	pars := make(map[int64]*float64, len(assignments))
	for _, a := range assignments {
		pars[a.ItemID] = a.ParLevel
	}

	engine := count.NewEngine(s.entries, s.logger)
	engine.Configure(sessionID, zoneID, assignments)
	for _, c := range req.Counts {
		switch {
		case c.Skipped:
			engine.Skip(c.ItemID)
		case c.Quantity != nil:
			engine.SetCount(c.ItemID, *c.Quantity)
		}
		if c.Note != "" {
			engine.SetNote(c.ItemID, c.Note)
		}
	}

	entries, err := engine.Submit(r.Context())
	if err != nil {
		s.logger.Error("submit counts error", "error", err, "session_id", sessionID, "zone_id", zoneID)
		s.respondError(w, http.StatusInternalServerError, "failed to commit counts")
		return
	}

	out := make([]entryPayload, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryPayload{
			ID:         e.ID,
			SessionID:  e.SessionID,
			ZoneID:     e.ZoneID,
			ItemID:     e.ItemID,
			Quantity:   e.Quantity,
			Skipped:    e.Skipped,
			Note:       e.Note,
			RecordedAt: e.RecordedAt,
			Variance:   string(variance.Classify(e.Quantity, pars[e.ItemID])),
		})
	}
	s.respond(w, http.StatusCreated, out)
}
