package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dkalmus/zonecount/internal/domain"
	"github.com/dkalmus/zonecount/internal/overlay"
)

// overlayFor returns the marker sync for a site, creating it on first use.
// The caller must hold overlayMu for the whole request that touches the sync.
func (s *Server) overlayFor(siteID int64) *overlay.Sync {
	sync, ok := s.overlays[siteID]
	if !ok {
		sync = overlay.NewSync(s.overlayCfg, overlay.Callbacks{}, s.logger)
		s.overlays[siteID] = sync
	}
	return sync
}

// handleReconcileOverlay takes the zone ids currently in view and diffs them
// against the site's live markers. Transitions are advanced to the request
// time before the marker set is returned.
func (s *Server) handleReconcileOverlay(w http.ResponseWriter, r *http.Request) {
	siteID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid site id")
		return
	}

	req, err := decode[struct {
		ZoneIDs []int64 `json:"zone_ids"`
	}](r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	zones := make([]*domain.Zone, 0, len(req.ZoneIDs))
	for _, zoneID := range req.ZoneIDs {
		zone, err := s.tree.Get(r.Context(), zoneID)
		if err != nil {
			s.logger.Error("get zone error", "error", err)
			s.respondError(w, http.StatusInternalServerError, "failed to get zone")
			return
		}
		if zone == nil || zone.SiteID != siteID {
			s.respondError(w, http.StatusBadRequest, "zone not found in site")
			return
		}
		zones = append(zones, zone)
	}

	s.overlayMu.Lock()
	defer s.overlayMu.Unlock()
	sync := s.overlayFor(siteID)
	sync.Reconcile(zones)
	sync.Tick(time.Now())
	s.respond(w, http.StatusOK, toMarkerPayloads(sync.Markers()))
}

func (s *Server) handleListMarkers(w http.ResponseWriter, r *http.Request) {
	siteID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid site id")
		return
	}

	s.overlayMu.Lock()
	defer s.overlayMu.Unlock()
	sync := s.overlayFor(siteID)
	sync.Tick(time.Now())
	s.respond(w, http.StatusOK, toMarkerPayloads(sync.Markers()))
}

// handleOverlayHit resolves a spatial point to the zone whose marker it falls
// inside, for translating a tap on the render layer back to a domain object.
func (s *Server) handleOverlayHit(w http.ResponseWriter, r *http.Request) {
	siteID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid site id")
		return
	}

	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	z, errZ := strconv.ParseFloat(r.URL.Query().Get("z"), 64)
	if errX != nil || errY != nil || errZ != nil {
		s.respondError(w, http.StatusBadRequest, "x, y, and z query parameters required")
		return
	}

	s.overlayMu.Lock()
	zoneID, ok := s.overlayFor(siteID).HitTest(x, y, z)
	s.overlayMu.Unlock()
	if !ok {
		s.respondError(w, http.StatusNotFound, "no marker at that position")
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
	s.respond(w, http.StatusOK, toZonePayload(zone))
}
