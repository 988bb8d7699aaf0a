package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dkalmus/zonecount/internal/domain"
	"github.com/dkalmus/zonecount/internal/zonetree"
)

type createZoneRequest struct {
	SiteID    int64          `json:"site_id"`
	ParentID  *int64         `json:"parent_id"`
	Name      string         `json:"name"`
	Code      string         `json:"code"`
	ZoneType  string         `json:"zone_type"`
	SortOrder int            `json:"sort_order"`
	Anchor    *anchorPayload `json:"anchor"`
}

func (s *Server) handleCreateZone(w http.ResponseWriter, r *http.Request) {
	req, err := decode[createZoneRequest](r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	code := strings.TrimSpace(req.Code)
	if req.SiteID == 0 || name == "" || code == "" {
		s.respondError(w, http.StatusBadRequest, "site_id, name, and code required")
		return
	}

	zone := &domain.Zone{
		SiteID:    req.SiteID,
		ParentID:  req.ParentID,
		Name:      name,
		Code:      code,
		ZoneType:  req.ZoneType,
		SortOrder: req.SortOrder,
	}
	if req.Anchor != nil {
		zone.Anchor = &domain.Anchor{X: req.Anchor.X, Y: req.Anchor.Y, Z: req.Anchor.Z, Radius: req.Anchor.Radius}
	}

	created, err := s.tree.Create(r.Context(), zone)
	if err != nil {
		if errors.Is(err, zonetree.ErrZoneNotFound) {
			s.respondError(w, http.StatusBadRequest, "parent zone not found")
			return
		}
		s.logger.Error("create zone error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to create zone")
		return
	}

	s.respond(w, http.StatusCreated, toZonePayload(created))
}

func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	zoneID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid zone id")
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

	itemCount, err := s.tree.TotalItemCount(r.Context(), zoneID)
	if err != nil {
		s.logger.Error("zone item count error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to count zone items")
		return
	}

	s.respond(w, http.StatusOK, struct {
		zonePayload
		TotalItemCount int `json:"total_item_count"`
	}{toZonePayload(zone), itemCount})
}

func (s *Server) handleDeleteZone(w http.ResponseWriter, r *http.Request) {
	zoneID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid zone id")
		return
	}

	if err := s.tree.Delete(r.Context(), zoneID); err != nil {
		s.logger.Error("delete zone error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to delete zone")
		return
	}

	s.respond(w, http.StatusNoContent, nil)
}

func (s *Server) handleReparentZone(w http.ResponseWriter, r *http.Request) {
	zoneID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid zone id")
		return
	}

	req, err := decode[struct {
		ParentID *int64 `json:"parent_id"`
	}](r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = s.tree.Reparent(r.Context(), zoneID, req.ParentID)
	switch {
	case errors.Is(err, zonetree.ErrInvalidHierarchy):
		s.respondError(w, http.StatusConflict, "zone cannot be moved under itself or a descendant")
		return
	case errors.Is(err, zonetree.ErrZoneNotFound):
		s.respondError(w, http.StatusNotFound, "zone not found")
		return
	case err != nil:
		s.logger.Error("reparent zone error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to reparent zone")
		return
	}

	zone, err := s.tree.Get(r.Context(), zoneID)
	if err != nil {
		s.logger.Error("get zone error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to get zone")
		return
	}
	s.respond(w, http.StatusOK, toZonePayload(zone))
}

func (s *Server) handleListSiteZones(w http.ResponseWriter, r *http.Request) {
	siteID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid site id")
		return
	}

	roots, err := s.tree.Roots(r.Context(), siteID)
	if err != nil {
		s.logger.Error("list roots error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list zones")
		return
	}

	s.respond(w, http.StatusOK, toZonePayloads(roots))
}

func (s *Server) handleZoneSubtree(w http.ResponseWriter, r *http.Request) {
	zoneID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid zone id")
		return
	}

	subtree, err := s.tree.Subtree(r.Context(), zoneID)
	if err != nil {
		if errors.Is(err, zonetree.ErrZoneNotFound) {
			s.respondError(w, http.StatusNotFound, "zone not found")
			return
		}
		s.logger.Error("zone subtree error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list subtree")
		return
	}

	s.respond(w, http.StatusOK, toZonePayloads(subtree))
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	zoneID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid zone id")
		return
	}

	assignments, err := s.assignments.ListByZone(r.Context(), zoneID)
	if err != nil {
		s.logger.Error("list assignments error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to list assignments")
		return
	}

	out := make([]assignmentPayload, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, toAssignmentPayload(a))
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	zoneID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid zone id")
		return
	}

	req, err := decode[struct {
		ItemID    int64    `json:"item_id"`
		ParLevel  *float64 `json:"par_level"`
		SortOrder int      `json:"sort_order"`
	}](r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID == 0 {
		s.respondError(w, http.StatusBadRequest, "item_id required")
		return
	}

	assignment, err := s.assignments.Create(r.Context(), zoneID, req.ItemID, req.ParLevel, req.SortOrder)
	if err != nil {
		s.logger.Error("create assignment error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to create assignment")
		return
	}

	s.respond(w, http.StatusCreated, toAssignmentPayload(assignment))
}

func (s *Server) handleSeedZone(w http.ResponseWriter, r *http.Request) {
	zoneID, err := parseID(r, "id")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid zone id")
		return
	}

	req, err := decode[struct {
		TemplateID string   `json:"template_id"`
		CanonIDs   []string `json:"canon_ids"`
	}](r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var created []*domain.ZoneAssignment
	switch {
	case req.TemplateID != "":
		created, err = s.seeder.SeedZoneFromTemplate(r.Context(), zoneID, req.TemplateID)
	case len(req.CanonIDs) > 0:
		created, err = s.seeder.SeedZone(r.Context(), zoneID, req.CanonIDs)
	default:
		s.respondError(w, http.StatusBadRequest, "template_id or canon_ids required")
		return
	}
	if err != nil {
		s.logger.Error("seed zone error", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to seed zone")
		return
	}

	out := make([]assignmentPayload, 0, len(created))
	for _, a := range created {
		out = append(out, toAssignmentPayload(a))
	}
	s.respond(w, http.StatusCreated, out)
}
