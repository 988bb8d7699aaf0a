package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dkalmus/zonecount/internal/domain"
)

type ZoneStore struct {
	db *sql.DB
}

func NewZoneStore(db *sql.DB) *ZoneStore {
	return &ZoneStore{db: db}
}

const zoneColumns = `id, site_id, parent_id, name, code, zone_type, sort_order,
	anchor_x, anchor_y, anchor_z, anchor_radius, created_at`

func (s *ZoneStore) Create(ctx context.Context, zone *domain.Zone) (*domain.Zone, error) {
	var x, y, z, radius *float64
	if a := zone.Anchor; a != nil {
		x, y, z, radius = &a.X, &a.Y, &a.Z, &a.Radius
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO zones (site_id, parent_id, name, code, zone_type, sort_order,
			anchor_x, anchor_y, anchor_z, anchor_radius)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, zone.SiteID, zone.ParentID, zone.Name, zone.Code, zone.ZoneType, zone.SortOrder, x, y, z, radius)
	if err != nil {
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ZoneStore) GetByID(ctx context.Context, id int64) (*domain.Zone, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+zoneColumns+` FROM zones WHERE id = ?
	`, id)

	zone, err := scanZone(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get zone: %w", err)
	}

	return zone, nil
}

func (s *ZoneStore) ListBySite(ctx context.Context, siteID int64) ([]*domain.Zone, error) {
	return s.list(ctx, `
		SELECT `+zoneColumns+` FROM zones WHERE site_id = ? ORDER BY sort_order ASC, id ASC
	`, siteID)
}

func (s *ZoneStore) ListRoots(ctx context.Context, siteID int64) ([]*domain.Zone, error) {
	return s.list(ctx, `
		SELECT `+zoneColumns+` FROM zones
		WHERE site_id = ? AND parent_id IS NULL ORDER BY sort_order ASC, id ASC
	`, siteID)
}

func (s *ZoneStore) ListChildren(ctx context.Context, parentID int64) ([]*domain.Zone, error) {
	return s.list(ctx, `
		SELECT `+zoneColumns+` FROM zones WHERE parent_id = ? ORDER BY sort_order ASC, id ASC
	`, parentID)
}

func (s *ZoneStore) list(ctx context.Context, query string, args ...any) ([]*domain.Zone, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var zones []*domain.Zone
	for rows.Next() {
		zone, err := scanZone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan zone: %w", err)
		}
		zones = append(zones, zone)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating zones: %w", err)
	}

	return zones, nil
}

// UpdateParent re-homes a zone under newParentID (nil makes it a root).
// Hierarchy validation happens in the zonetree service, not here.
func (s *ZoneStore) UpdateParent(ctx context.Context, id int64, newParentID *int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE zones SET parent_id = ? WHERE id = ?
	`, newParentID, id)
	if err != nil {
		return fmt.Errorf("failed to update zone parent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("zone not found")
	}

	return nil
}

func (s *ZoneStore) UpdateSortOrder(ctx context.Context, id int64, sortOrder int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE zones SET sort_order = ? WHERE id = ?
	`, sortOrder, id)
	if err != nil {
		return fmt.Errorf("failed to update zone sort order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("zone not found")
	}

	return nil
}

func (s *ZoneStore) UpdateAnchor(ctx context.Context, id int64, anchor *domain.Anchor) error {
	var x, y, z, radius *float64
	if anchor != nil {
		x, y, z, radius = &anchor.X, &anchor.Y, &anchor.Z, &anchor.Radius
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE zones SET anchor_x = ?, anchor_y = ?, anchor_z = ?, anchor_radius = ? WHERE id = ?
	`, x, y, z, radius, id)
	if err != nil {
		return fmt.Errorf("failed to update zone anchor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("zone not found")
	}

	return nil
}

// Delete removes the zone. Child zones, assignments, and count entries go
// with it through FK cascades.
func (s *ZoneStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM zones WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete zone: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("zone not found")
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanZone(row rowScanner) (*domain.Zone, error) {
	zone := &domain.Zone{}
	var x, y, z, radius sql.NullFloat64
	err := row.Scan(&zone.ID, &zone.SiteID, &zone.ParentID, &zone.Name, &zone.Code,
		&zone.ZoneType, &zone.SortOrder, &x, &y, &z, &radius, &zone.CreatedAt)
	if err != nil {
		return nil, err
	}

	if x.Valid && y.Valid && z.Valid {
		zone.Anchor = &domain.Anchor{X: x.Float64, Y: y.Float64, Z: z.Float64, Radius: radius.Float64}
	}

	return zone, nil
}
