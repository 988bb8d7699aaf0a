package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dkalmus/zonecount/internal/domain"
)

type EntryStore struct {
	db *sql.DB
}

func NewEntryStore(db *sql.DB) *EntryStore {
	return &EntryStore{db: db}
}

// CreateBatch writes every entry inside one transaction. Either all entries
// land or none do; a failed batch leaves the ledger untouched so the caller
// can retry with the same working state.
func (s *EntryStore) CreateBatch(ctx context.Context, entries []*domain.CountEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			slog.Error("failed to roll back entry batch", "error", err)
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO count_entries (session_id, zone_id, item_id, quantity, skipped, note, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		result, err := stmt.ExecContext(ctx, e.SessionID, e.ZoneID, e.ItemID, e.Quantity, e.Skipped, e.Note, e.RecordedAt)
		if err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
		if e.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entry batch: %w", err)
	}

	return nil
}

func (s *EntryStore) ListBySession(ctx context.Context, sessionID int64) ([]*domain.CountEntry, error) {
	return s.list(ctx, `
		SELECT id, session_id, zone_id, item_id, quantity, skipped, note, recorded_at
		FROM count_entries WHERE session_id = ? ORDER BY recorded_at ASC, id ASC
	`, sessionID)
}

// ListByZoneItem returns an item's count history in one zone, newest first.
func (s *EntryStore) ListByZoneItem(ctx context.Context, zoneID, itemID int64) ([]*domain.CountEntry, error) {
	return s.list(ctx, `
		SELECT id, session_id, zone_id, item_id, quantity, skipped, note, recorded_at
		FROM count_entries WHERE zone_id = ? AND item_id = ?
		ORDER BY recorded_at DESC, id DESC
	`, zoneID, itemID)
}

// LatestQuantity returns the most recent non-skipped quantity recorded for
// the (zone, item) pair, or nil when the item has never been counted there.
func (s *EntryStore) LatestQuantity(ctx context.Context, zoneID, itemID int64) (*float64, error) {
	var quantity float64
	err := s.db.QueryRowContext(ctx, `
		SELECT quantity FROM count_entries
		WHERE zone_id = ? AND item_id = ? AND skipped = 0
		ORDER BY recorded_at DESC, id DESC LIMIT 1
	`, zoneID, itemID).Scan(&quantity)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest quantity: %w", err)
	}

	return &quantity, nil
}

func (s *EntryStore) list(ctx context.Context, query string, args ...any) ([]*domain.CountEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var entries []*domain.CountEntry
	for rows.Next() {
		e := &domain.CountEntry{}
		if err := rows.Scan(&e.ID, &e.SessionID, &e.ZoneID, &e.ItemID, &e.Quantity, &e.Skipped, &e.Note, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}
