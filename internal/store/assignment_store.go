package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dkalmus/zonecount/internal/domain"
)

type AssignmentStore struct {
	db *sql.DB
}

func NewAssignmentStore(db *sql.DB) *AssignmentStore {
	return &AssignmentStore{db: db}
}

func (s *AssignmentStore) Create(ctx context.Context, zoneID, itemID int64, parLevel *float64, sortOrder int) (*domain.ZoneAssignment, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO zone_assignments (zone_id, item_id, par_level, sort_order) VALUES (?, ?, ?, ?)
	`, zoneID, itemID, parLevel, sortOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *AssignmentStore) GetByID(ctx context.Context, id int64) (*domain.ZoneAssignment, error) {
	a := &domain.ZoneAssignment{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, zone_id, item_id, par_level, sort_order, created_at
		FROM zone_assignments WHERE id = ?
	`, id).Scan(&a.ID, &a.ZoneID, &a.ItemID, &a.ParLevel, &a.SortOrder, &a.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	return a, nil
}

// GetByZoneItem resolves the junction row joining an entry's (zone, item)
// pair back to its par level.
func (s *AssignmentStore) GetByZoneItem(ctx context.Context, zoneID, itemID int64) (*domain.ZoneAssignment, error) {
	a := &domain.ZoneAssignment{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, zone_id, item_id, par_level, sort_order, created_at
		FROM zone_assignments WHERE zone_id = ? AND item_id = ?
	`, zoneID, itemID).Scan(&a.ID, &a.ZoneID, &a.ItemID, &a.ParLevel, &a.SortOrder, &a.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	return a, nil
}

// ListByZone returns the zone's assignments in shelf order.
func (s *AssignmentStore) ListByZone(ctx context.Context, zoneID int64) ([]*domain.ZoneAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, zone_id, item_id, par_level, sort_order, created_at
		FROM zone_assignments WHERE zone_id = ? ORDER BY sort_order ASC, id ASC
	`, zoneID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var assignments []*domain.ZoneAssignment
	for rows.Next() {
		a := &domain.ZoneAssignment{}
		if err := rows.Scan(&a.ID, &a.ZoneID, &a.ItemID, &a.ParLevel, &a.SortOrder, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assignments: %w", err)
	}

	return assignments, nil
}

func (s *AssignmentStore) CountByZone(ctx context.Context, zoneID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM zone_assignments WHERE zone_id = ?
	`, zoneID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assignments: %w", err)
	}

	return count, nil
}

func (s *AssignmentStore) UpdatePar(ctx context.Context, id int64, parLevel *float64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE zone_assignments SET par_level = ? WHERE id = ?
	`, parLevel, id)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("assignment not found")
	}

	return nil
}

func (s *AssignmentStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM zone_assignments WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("assignment not found")
	}

	return nil
}
