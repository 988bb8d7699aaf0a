package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkalmus/zonecount/internal/domain"
)

type SessionStore struct {
	db *sql.DB
}

func NewSessionStore(db *sql.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Create(ctx context.Context, siteID int64, countedBy string) (*domain.CountSession, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO count_sessions (site_id, counted_by) VALUES (?, ?)
	`, siteID, countedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *SessionStore) GetByID(ctx context.Context, id int64) (*domain.CountSession, error) {
	session := &domain.CountSession{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, site_id, status, started_at, completed_at, counted_by, notes
		FROM count_sessions WHERE id = ?
	`, id).Scan(&session.ID, &session.SiteID, &session.Status, &session.StartedAt,
		&session.CompletedAt, &session.CountedBy, &session.Notes)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

func (s *SessionStore) ListBySite(ctx context.Context, siteID int64) ([]*domain.CountSession, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, site_id, status, started_at, completed_at, counted_by, notes
		FROM count_sessions WHERE site_id = ? ORDER BY started_at DESC, id DESC
	`, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var sessions []*domain.CountSession
	for rows.Next() {
		session := &domain.CountSession{}
		if err := rows.Scan(&session.ID, &session.SiteID, &session.Status, &session.StartedAt,
			&session.CompletedAt, &session.CountedBy, &session.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// Finish moves an in-progress session to a terminal status. A session already
// in a terminal state is left untouched and (false, nil) is returned, so the
// first terminal transition wins.
func (s *SessionStore) Finish(ctx context.Context, id int64, status domain.SessionStatus, completedAt time.Time) (bool, error) {
	if !status.Terminal() {
		return false, fmt.Errorf("status %q is not terminal", status)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE count_sessions SET status = ?, completed_at = ?
		WHERE id = ? AND status = 'in_progress'
	`, status, completedAt, id)
	if err != nil {
		return false, fmt.Errorf("failed to finish session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (s *SessionStore) UpdateNotes(ctx context.Context, id int64, notes string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE count_sessions SET notes = ? WHERE id = ?
	`, notes, id)
	if err != nil {
		return fmt.Errorf("failed to update session notes: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("session not found")
	}

	return nil
}
