package domain

import "time"

// Site is the top-level container for zones and count sessions.
type Site struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Anchor is a zone's placement in the spatial overlay: a 3-D position plus a
// tap radius. Zones created without AR placement have no anchor.
type Anchor struct {
	X, Y, Z float64
	Radius  float64
}

// Zone is one physical storage area. Zones form a tree per site: ParentID is
// nil for roots, and sibling order follows SortOrder (the walking path).
type Zone struct {
	ID        int64
	SiteID    int64
	ParentID  *int64
	Name      string
	Code      string // short code printed on physical markers, unique per site
	ZoneType  string
	SortOrder int
	Anchor    *Anchor
	CreatedAt time.Time
}

// IsRoot reports whether the zone has no parent.
func (z *Zone) IsRoot() bool { return z.ParentID == nil }

// Item is a countable thing. It has no zone of its own; it only appears in a
// zone through a ZoneAssignment.
type Item struct {
	ID        int64
	Name      string
	Unit      string
	Category  string
	CanonID   *string // template id in the canon catalog, if seeded from it
	CreatedAt time.Time
}

// ZoneAssignment places an item in a zone with an optional par level and a
// shelf position. A nil ParLevel means no target, so variance is unknown.
type ZoneAssignment struct {
	ID        int64
	ZoneID    int64
	ItemID    int64
	ParLevel  *float64
	SortOrder int
	CreatedAt time.Time
}

// SessionStatus is the lifecycle state of a count session. Completed and
// abandoned are terminal.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
)

// Terminal reports whether no further transitions are allowed.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionAbandoned
}

// CountSession is one end-to-end counting event across a site.
type CountSession struct {
	ID          int64
	SiteID      int64
	Status      SessionStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	CountedBy   string
	Notes       string
}

// CountEntry is one committed observation of an item's quantity in a zone.
// Entries are append-only: sessions gain entries and never mutate them.
type CountEntry struct {
	ID         int64
	SessionID  int64
	ZoneID     int64
	ItemID     int64
	Quantity   float64
	Skipped    bool
	Note       string
	RecordedAt time.Time
}
