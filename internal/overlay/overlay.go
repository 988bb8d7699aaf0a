// Package overlay keeps a set of positioned markers, one per visible zone,
// consistent with the zone list supplied on each update. Reconciliation is a
// create/update/remove diff with explicit per-marker transition states, never
// a full rebuild.
package overlay

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dkalmus/zonecount/internal/domain"
)

// State is a marker's transition state. The tick checks it before acting, so
// repeated reconciles never spawn duplicate creates or removes.
type State string

const (
	Growing   State = "growing"
	Stable    State = "stable"
	Shrinking State = "shrinking"
)

// initialScale is the near-zero scale a marker grows from and shrinks to.
const initialScale = 0.01

// Marker is one positioned overlay element. Identity is a UUID so the render
// layer can hand back an opaque hit and have it resolved to a zone.
type Marker struct {
	ID       uuid.UUID
	ZoneID   int64
	Position domain.Anchor
	Scale    float64

	state           State
	transitionStart time.Time
}

// State returns the marker's current transition state.
func (m *Marker) State() State { return m.state }

// Callbacks are how the render layer observes marker lifecycle. Any callback
// may be nil.
type Callbacks struct {
	OnCreate func(*Marker)
	OnUpdate func(*Marker)
	OnRemove func(*Marker)
}

// Config carries the transition durations, passed in explicitly.
type Config struct {
	GrowDuration   time.Duration
	ShrinkDuration time.Duration
}

type Sync struct {
	cfg       Config
	callbacks Callbacks
	logger    *slog.Logger
	now       func() time.Time

	byZone   map[int64]*Marker
	byMarker map[uuid.UUID]int64
}

func NewSync(cfg Config, callbacks Callbacks, logger *slog.Logger) *Sync {
	return &Sync{
		cfg:       cfg,
		callbacks: callbacks,
		logger:    logger,
		now:       time.Now,
		byZone:    make(map[int64]*Marker),
		byMarker:  make(map[uuid.UUID]int64),
	}
}

// Reconcile diffs the currently visible zones against the live marker set.
// New zones get a marker growing from near-zero scale; known zones get their
// position updated in place; markers whose zone disappeared begin a shrink
// and are removed by Tick once it completes. Zones without an anchor are
// skipped. Safe to call back-to-back.
func (s *Sync) Reconcile(zones []*domain.Zone) {
	now := s.now()
	currentIDs := make(map[int64]struct{}, len(zones))

	for _, zone := range zones {
		if zone.Anchor == nil {
			s.logger.Warn("zone has no anchor, skipping marker", "zone_id", zone.ID)
			continue
		}
		currentIDs[zone.ID] = struct{}{}

		marker, ok := s.byZone[zone.ID]
		if !ok {
			marker = &Marker{
				ID:              uuid.New(),
				ZoneID:          zone.ID,
				Position:        *zone.Anchor,
				Scale:           initialScale,
				state:           Growing,
				transitionStart: now,
			}
			s.byZone[zone.ID] = marker
			s.byMarker[marker.ID] = zone.ID
			if s.callbacks.OnCreate != nil {
				s.callbacks.OnCreate(marker)
			}
			continue
		}

		marker.Position = *zone.Anchor
		if marker.state == Shrinking {
			// The zone reappeared mid-shrink: snap straight back to full
			// scale instead of spawning a second marker.
			marker.state = Stable
			marker.Scale = 1
		}
		if s.callbacks.OnUpdate != nil {
			s.callbacks.OnUpdate(marker)
		}
	}

	for zoneID, marker := range s.byZone {
		if _, visible := currentIDs[zoneID]; visible {
			continue
		}
		if marker.state == Shrinking {
			continue // already on its way out
		}
		marker.state = Shrinking
		marker.transitionStart = now
	}
}

// Tick advances every in-flight transition to the given time. Grown markers
// settle at full scale; markers that finished shrinking are removed and
// unregistered. Calling it repeatedly is harmless.
func (s *Sync) Tick(now time.Time) {
	for zoneID, marker := range s.byZone {
		switch marker.state {
		case Growing:
			if progress := s.progress(marker, now, s.cfg.GrowDuration); progress >= 1 {
				marker.state = Stable
				marker.Scale = 1
			} else {
				marker.Scale = initialScale + progress*(1-initialScale)
			}
			if s.callbacks.OnUpdate != nil {
				s.callbacks.OnUpdate(marker)
			}
		case Shrinking:
			if progress := s.progress(marker, now, s.cfg.ShrinkDuration); progress >= 1 {
				delete(s.byZone, zoneID)
				delete(s.byMarker, marker.ID)
				if s.callbacks.OnRemove != nil {
					s.callbacks.OnRemove(marker)
				}
			} else {
				marker.Scale = 1 - progress*(1-initialScale)
				if s.callbacks.OnUpdate != nil {
					s.callbacks.OnUpdate(marker)
				}
			}
		}
	}
}

func (s *Sync) progress(marker *Marker, now time.Time, duration time.Duration) float64 {
	if duration <= 0 {
		return 1
	}
	return float64(now.Sub(marker.transitionStart)) / float64(duration)
}

// ZoneFor resolves a marker identity back to its zone id, for translating a
// spatial hit into a domain reference.
func (s *Sync) ZoneFor(markerID uuid.UUID) (int64, bool) {
	zoneID, ok := s.byMarker[markerID]
	return zoneID, ok
}

// HitTest returns the zone whose marker is nearest to the given point within
// its tap radius.
func (s *Sync) HitTest(x, y, z float64) (int64, bool) {
	var bestZone int64
	bestDist := -1.0
	for zoneID, marker := range s.byZone {
		dx, dy, dz := x-marker.Position.X, y-marker.Position.Y, z-marker.Position.Z
		distSq := dx*dx + dy*dy + dz*dz
		radius := marker.Position.Radius
		if distSq > radius*radius {
			continue
		}
		if bestDist < 0 || distSq < bestDist {
			bestDist = distSq
			bestZone = zoneID
		}
	}
	return bestZone, bestDist >= 0
}

// Markers returns every live marker ordered by zone id.
func (s *Sync) Markers() []*Marker {
	out := make([]*Marker, 0, len(s.byZone))
	for _, marker := range s.byZone {
		out = append(out, marker)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ZoneID < out[j].ZoneID })
	return out
}

// Marker returns the live marker for a zone, if one exists.
func (s *Sync) Marker(zoneID int64) (*Marker, bool) {
	marker, ok := s.byZone[zoneID]
	return marker, ok
}

// Count is the number of live markers, including ones mid-shrink.
func (s *Sync) Count() int { return len(s.byZone) }
