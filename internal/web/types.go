package web

import (
	"time"

	"github.com/dkalmus/zonecount/internal/domain"
	"github.com/dkalmus/zonecount/internal/overlay"
)

type anchorPayload struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Radius float64 `json:"radius"`
}

type sitePayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type zonePayload struct {
	ID        int64          `json:"id"`
	SiteID    int64          `json:"site_id"`
	ParentID  *int64         `json:"parent_id,omitempty"`
	Name      string         `json:"name"`
	Code      string         `json:"code"`
	ZoneType  string         `json:"zone_type,omitempty"`
	SortOrder int            `json:"sort_order"`
	Anchor    *anchorPayload `json:"anchor,omitempty"`
}

func toZonePayload(z *domain.Zone) zonePayload {
	p := zonePayload{
		ID:        z.ID,
		SiteID:    z.SiteID,
		ParentID:  z.ParentID,
		Name:      z.Name,
		Code:      z.Code,
		ZoneType:  z.ZoneType,
		SortOrder: z.SortOrder,
	}
	if z.Anchor != nil {
		p.Anchor = &anchorPayload{X: z.Anchor.X, Y: z.Anchor.Y, Z: z.Anchor.Z, Radius: z.Anchor.Radius}
	}
	return p
}

func toZonePayloads(zones []*domain.Zone) []zonePayload {
	out := make([]zonePayload, 0, len(zones))
	for _, z := range zones {
		out = append(out, toZonePayload(z))
	}
	return out
}

type assignmentPayload struct {
	ID        int64    `json:"id"`
	ZoneID    int64    `json:"zone_id"`
	ItemID    int64    `json:"item_id"`
	ParLevel  *float64 `json:"par_level,omitempty"`
	SortOrder int      `json:"sort_order"`
}

func toAssignmentPayload(a *domain.ZoneAssignment) assignmentPayload {
	return assignmentPayload{
		ID:        a.ID,
		ZoneID:    a.ZoneID,
		ItemID:    a.ItemID,
		ParLevel:  a.ParLevel,
		SortOrder: a.SortOrder,
	}
}

type itemPayload struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Category string  `json:"category,omitempty"`
	CanonID  *string `json:"canon_id,omitempty"`
}

func toItemPayload(i *domain.Item) itemPayload {
	return itemPayload{ID: i.ID, Name: i.Name, Unit: i.Unit, Category: i.Category, CanonID: i.CanonID}
}

type sessionPayload struct {
	ID          int64      `json:"id"`
	SiteID      int64      `json:"site_id"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CountedBy   string     `json:"counted_by,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

func toSessionPayload(s *domain.CountSession) sessionPayload {
	return sessionPayload{
		ID:          s.ID,
		SiteID:      s.SiteID,
		Status:      string(s.Status),
		StartedAt:   s.StartedAt,
		CompletedAt: s.CompletedAt,
		CountedBy:   s.CountedBy,
		Notes:       s.Notes,
	}
}

type markerPayload struct {
	ID       string        `json:"id"`
	ZoneID   int64         `json:"zone_id"`
	Position anchorPayload `json:"position"`
	Scale    float64       `json:"scale"`
	State    string        `json:"state"`
}

func toMarkerPayloads(markers []*overlay.Marker) []markerPayload {
	out := make([]markerPayload, 0, len(markers))
	for _, m := range markers {
		out = append(out, markerPayload{
			ID:       m.ID.String(),
			ZoneID:   m.ZoneID,
			Position: anchorPayload{X: m.Position.X, Y: m.Position.Y, Z: m.Position.Z, Radius: m.Position.Radius},
			Scale:    m.Scale,
			State:    string(m.State()),
		})
	}
	return out
}

type entryPayload struct {
	ID         int64     `json:"id"`
	SessionID  int64     `json:"session_id"`
	ZoneID     int64     `json:"zone_id"`
	ItemID     int64     `json:"item_id"`
	Quantity   float64   `json:"quantity"`
	Skipped    bool      `json:"skipped"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
	Variance   string    `json:"variance"`
}
