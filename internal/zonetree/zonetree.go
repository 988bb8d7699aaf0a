// Package zonetree maintains and queries the per-site zone hierarchy.
//
// Parent/child links are stored as ids and resolved through the zone
// repository on every walk. Cycle prevention follows parent ids, never
// object identity.
package zonetree

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dkalmus/zonecount/internal/domain"
)

// zoneRepository is the subset of store.ZoneStore that Tree requires.
type zoneRepository interface {
	Create(ctx context.Context, zone *domain.Zone) (*domain.Zone, error)
	GetByID(ctx context.Context, id int64) (*domain.Zone, error)
	ListBySite(ctx context.Context, siteID int64) ([]*domain.Zone, error)
	ListRoots(ctx context.Context, siteID int64) ([]*domain.Zone, error)
	ListChildren(ctx context.Context, parentID int64) ([]*domain.Zone, error)
	UpdateParent(ctx context.Context, id int64, newParentID *int64) error
	UpdateSortOrder(ctx context.Context, id int64, sortOrder int) error
	Delete(ctx context.Context, id int64) error
}

// assignmentRepository is the subset of store.AssignmentStore that Tree requires.
type assignmentRepository interface {
	CountByZone(ctx context.Context, zoneID int64) (int, error)
}

type Tree struct {
	zones       zoneRepository
	assignments assignmentRepository
	logger      *slog.Logger
}

func NewTree(zones zoneRepository, assignments assignmentRepository, logger *slog.Logger) *Tree {
	return &Tree{zones: zones, assignments: assignments, logger: logger}
}

// Create inserts a new zone. When a parent is given, it is validated to exist
// and to belong to the same site.
func (t *Tree) Create(ctx context.Context, zone *domain.Zone) (*domain.Zone, error) {
	if zone.ParentID != nil {
		parent, err := t.zones.GetByID(ctx, *zone.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve parent zone: %w", err)
		}
		if parent == nil {
			return nil, ErrZoneNotFound
		}
		if parent.SiteID != zone.SiteID {
			return nil, fmt.Errorf("parent zone belongs to a different site")
		}
	}

	created, err := t.zones.Create(ctx, zone)
	if err != nil {
		return nil, err
	}
	t.logger.Info("zone created", "zone_id", created.ID, "site_id", created.SiteID, "code", created.Code)
	return created, nil
}

func (t *Tree) Get(ctx context.Context, zoneID int64) (*domain.Zone, error) {
	return t.zones.GetByID(ctx, zoneID)
}

// Roots returns the site's parentless zones in walking-path order.
func (t *Tree) Roots(ctx context.Context, siteID int64) ([]*domain.Zone, error) {
	return t.zones.ListRoots(ctx, siteID)
}

// Children returns a zone's direct children in walking-path order.
func (t *Tree) Children(ctx context.Context, zoneID int64) ([]*domain.Zone, error) {
	return t.zones.ListChildren(ctx, zoneID)
}

// IsLeaf reports whether the zone has no children.
func (t *Tree) IsLeaf(ctx context.Context, zoneID int64) (bool, error) {
	children, err := t.zones.ListChildren(ctx, zoneID)
	if err != nil {
		return false, err
	}
	return len(children) == 0, nil
}

// Descendants collects every zone reachable through child links, depth-first,
// excluding the starting zone itself.
func (t *Tree) Descendants(ctx context.Context, zoneID int64) ([]*domain.Zone, error) {
	var out []*domain.Zone
	if err := t.walk(ctx, zoneID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Tree) walk(ctx context.Context, zoneID int64, out *[]*domain.Zone) error {
	children, err := t.zones.ListChildren(ctx, zoneID)
	if err != nil {
		return err
	}
	for _, child := range children {
		*out = append(*out, child)
		if err := t.walk(ctx, child.ID, out); err != nil {
			return err
		}
	}
	return nil
}

// TotalItemCount is the number of item assignments at the zone plus every
// zone below it.
func (t *Tree) TotalItemCount(ctx context.Context, zoneID int64) (int, error) {
	total, err := t.assignments.CountByZone(ctx, zoneID)
	if err != nil {
		return 0, err
	}

	descendants, err := t.Descendants(ctx, zoneID)
	if err != nil {
		return 0, err
	}
	for _, d := range descendants {
		n, err := t.assignments.CountByZone(ctx, d.ID)
		if err != nil {
			return 0, err
		}
		total += n
	}

	return total, nil
}

// Depth is the number of ancestors above the zone; roots are at depth 0.
func (t *Tree) Depth(ctx context.Context, zoneID int64) (int, error) {
	zone, err := t.zones.GetByID(ctx, zoneID)
	if err != nil {
		return 0, err
	}
	if zone == nil {
		return 0, ErrZoneNotFound
	}

	depth := 0
	for zone.ParentID != nil {
		zone, err = t.zones.GetByID(ctx, *zone.ParentID)
		if err != nil {
			return 0, err
		}
		if zone == nil {
			return 0, fmt.Errorf("broken parent link at depth %d: %w", depth, ErrZoneNotFound)
		}
		depth++
	}
	return depth, nil
}

// Reparent moves a zone under newParentID, or to the root when nil. Moving a
// zone under itself or any of its descendants is rejected with
// ErrInvalidHierarchy before anything is written.
func (t *Tree) Reparent(ctx context.Context, zoneID int64, newParentID *int64) error {
	zone, err := t.zones.GetByID(ctx, zoneID)
	if err != nil {
		return fmt.Errorf("failed to get zone: %w", err)
	}
	if zone == nil {
		return ErrZoneNotFound
	}

	if newParentID != nil {
		if *newParentID == zoneID {
			return ErrInvalidHierarchy
		}

		parent, err := t.zones.GetByID(ctx, *newParentID)
		if err != nil {
			return fmt.Errorf("failed to get new parent: %w", err)
		}
		if parent == nil {
			return ErrZoneNotFound
		}
		if parent.SiteID != zone.SiteID {
			return fmt.Errorf("new parent belongs to a different site")
		}

		// Walk up from the candidate parent; hitting the moved zone means the
		// candidate is one of its descendants.
		cursor := parent
		for cursor.ParentID != nil {
			if *cursor.ParentID == zoneID {
				return ErrInvalidHierarchy
			}
			cursor, err = t.zones.GetByID(ctx, *cursor.ParentID)
			if err != nil {
				return fmt.Errorf("failed to walk ancestors: %w", err)
			}
			if cursor == nil {
				return fmt.Errorf("broken parent link: %w", ErrZoneNotFound)
			}
		}
	}

	if err := t.zones.UpdateParent(ctx, zoneID, newParentID); err != nil {
		return err
	}
	t.logger.Info("zone reparented", "zone_id", zoneID, "new_parent_id", newParentID)
	return nil
}

// Move updates the zone's position in the walking path.
func (t *Tree) Move(ctx context.Context, zoneID int64, sortOrder int) error {
	return t.zones.UpdateSortOrder(ctx, zoneID, sortOrder)
}

// Delete removes a zone and, through storage cascades, its subtree along with
// assignments and count entries that referenced any zone in it.
func (t *Tree) Delete(ctx context.Context, zoneID int64) error {
	if err := t.zones.Delete(ctx, zoneID); err != nil {
		return err
	}
	t.logger.Info("zone deleted", "zone_id", zoneID)
	return nil
}

// Subtree returns the zone followed by its descendants, depth-first. Handy
// for rendering one site section.
func (t *Tree) Subtree(ctx context.Context, zoneID int64) ([]*domain.Zone, error) {
	zone, err := t.zones.GetByID(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, ErrZoneNotFound
	}

	out := []*domain.Zone{zone}
	if err := t.walk(ctx, zoneID, &out); err != nil {
		return nil, err
	}
	return out, nil
}
