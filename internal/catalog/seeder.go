package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dkalmus/zonecount/internal/domain"
)

// itemRepository is the subset of store.ItemStore that Seeder requires.
type itemRepository interface {
	Create(ctx context.Context, name, unit, category string, canonID *string) (*domain.Item, error)
	GetByCanonID(ctx context.Context, canonID string) (*domain.Item, error)
}

// assignmentRepository is the subset of store.AssignmentStore that Seeder requires.
type assignmentRepository interface {
	Create(ctx context.Context, zoneID, itemID int64, parLevel *float64, sortOrder int) (*domain.ZoneAssignment, error)
	GetByZoneItem(ctx context.Context, zoneID, itemID int64) (*domain.ZoneAssignment, error)
}

// Seeder creates a new zone's item list from canon catalog entries. Item rows
// are reused by canon id across zones so history joins stay on one item.
type Seeder struct {
	feed        *Feed
	items       itemRepository
	assignments assignmentRepository
	logger      *slog.Logger
}

func NewSeeder(feed *Feed, items itemRepository, assignments assignmentRepository, logger *slog.Logger) *Seeder {
	return &Seeder{feed: feed, items: items, assignments: assignments, logger: logger}
}

// SeedZone assigns the given canon items to the zone with their default par
// levels, in the given order. Unknown canon ids and items already assigned to
// the zone are skipped with a log line.
func (s *Seeder) SeedZone(ctx context.Context, zoneID int64, canonIDs []string) ([]*domain.ZoneAssignment, error) {
	assignments := make([]*domain.ZoneAssignment, 0, len(canonIDs))
	for i, canonID := range canonIDs {
		tmpl, ok := s.feed.Item(canonID)
		if !ok {
			s.logger.Warn("canon item not in feed, skipping", "canon_id", canonID)
			continue
		}

		item, err := s.items.GetByCanonID(ctx, canonID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up item for canon id %s: %w", canonID, err)
		}
		if item == nil {
			item, err = s.items.Create(ctx, tmpl.Name, tmpl.Unit, tmpl.Category, &tmpl.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to create item for canon id %s: %w", canonID, err)
			}
		}

		existing, err := s.assignments.GetByZoneItem(ctx, zoneID, item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing assignment: %w", err)
		}
		if existing != nil {
			s.logger.Warn("item already assigned to zone, skipping", "canon_id", canonID, "zone_id", zoneID)
			continue
		}

		assignment, err := s.assignments.Create(ctx, zoneID, item.ID, tmpl.DefaultPar, i)
		if err != nil {
			return nil, fmt.Errorf("failed to assign canon item %s: %w", canonID, err)
		}
		assignments = append(assignments, assignment)
	}

	s.logger.Info("zone seeded", "zone_id", zoneID, "assignments", len(assignments))
	return assignments, nil
}

// SeedZoneFromTemplate seeds the zone with every item of a zone template.
func (s *Seeder) SeedZoneFromTemplate(ctx context.Context, zoneID int64, templateID string) ([]*domain.ZoneAssignment, error) {
	tmpl, ok := s.feed.Template(templateID)
	if !ok {
		return nil, fmt.Errorf("zone template %s not in feed", templateID)
	}
	return s.SeedZone(ctx, zoneID, tmpl.ItemIDs)
}
