// Package session manages count-session lifecycle and derives statistics
// from the committed entry ledger.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dkalmus/zonecount/internal/domain"
	"github.com/dkalmus/zonecount/internal/variance"
)

// ErrSessionNotFound is returned when an operation references a session id
// that does not exist.
var ErrSessionNotFound = errors.New("count session not found")

// sessionRepository is the subset of store.SessionStore that Service requires.
type sessionRepository interface {
	Create(ctx context.Context, siteID int64, countedBy string) (*domain.CountSession, error)
	GetByID(ctx context.Context, id int64) (*domain.CountSession, error)
	ListBySite(ctx context.Context, siteID int64) ([]*domain.CountSession, error)
	Finish(ctx context.Context, id int64, status domain.SessionStatus, completedAt time.Time) (bool, error)
	UpdateNotes(ctx context.Context, id int64, notes string) error
}

// entryRepository is the subset of store.EntryStore that Service requires.
type entryRepository interface {
	ListBySession(ctx context.Context, sessionID int64) ([]*domain.CountEntry, error)
}

// assignmentRepository is the subset of store.AssignmentStore that Service requires.
type assignmentRepository interface {
	GetByZoneItem(ctx context.Context, zoneID, itemID int64) (*domain.ZoneAssignment, error)
}

// Stats is derived from the session's entries at read time; none of it is
// stored.
type Stats struct {
	ZonesTouched int
	ItemsCounted int
	ItemsSkipped int
	UnderPar     int
	AtOrAbovePar int
	Elapsed      time.Duration
}

type Service struct {
	sessions    sessionRepository
	entries     entryRepository
	assignments assignmentRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(sessions sessionRepository, entries entryRepository, assignments assignmentRepository, logger *slog.Logger) *Service {
	return &Service{
		sessions:    sessions,
		entries:     entries,
		assignments: assignments,
		logger:      logger,
		now:         time.Now,
	}
}

// Start opens a new in-progress session for the site.
func (s *Service) Start(ctx context.Context, siteID int64, countedBy string) (*domain.CountSession, error) {
	session, err := s.sessions.Create(ctx, siteID, countedBy)
	if err != nil {
		return nil, err
	}
	s.logger.Info("count session started", "session_id", session.ID, "site_id", siteID, "counted_by", countedBy)
	return session, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.CountSession, error) {
	return s.sessions.GetByID(ctx, id)
}

func (s *Service) ListBySite(ctx context.Context, siteID int64) ([]*domain.CountSession, error) {
	return s.sessions.ListBySite(ctx, siteID)
}

// Complete moves the session to completed. Calling it on a session that is
// already terminal is a no-op: the first terminal transition wins and the
// stored session is returned unchanged.
func (s *Service) Complete(ctx context.Context, id int64) (*domain.CountSession, error) {
	return s.finish(ctx, id, domain.SessionCompleted)
}

// Abandon moves the session to abandoned, with the same no-op semantics as
// Complete.
func (s *Service) Abandon(ctx context.Context, id int64) (*domain.CountSession, error) {
	return s.finish(ctx, id, domain.SessionAbandoned)
}

func (s *Service) finish(ctx context.Context, id int64, status domain.SessionStatus) (*domain.CountSession, error) {
	done, err := s.sessions.Finish(ctx, id, status, s.now().UTC())
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if done {
		s.logger.Info("count session finished", "session_id", id, "status", status)
	}
	return session, nil
}

// SetNotes replaces the session's free-text notes.
func (s *Service) SetNotes(ctx context.Context, id int64, notes string) error {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if session == nil {
		return ErrSessionNotFound
	}
	return s.sessions.UpdateNotes(ctx, id, notes)
}

// Elapsed is the session's running duration: now minus start while in
// progress, completion minus start once finished.
func (s *Service) Elapsed(session *domain.CountSession) time.Duration {
	if session.CompletedAt != nil {
		return session.CompletedAt.Sub(session.StartedAt)
	}
	return s.now().Sub(session.StartedAt)
}

// Stats computes the session's derived statistics. Par comparisons join each
// entry against its assignment's par level; entries whose assignment is gone
// or has no par are excluded from both par buckets.
func (s *Service) Stats(ctx context.Context, id int64) (*Stats, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	entries, err := s.entries.ListBySession(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		ItemsCounted: len(entries),
		Elapsed:      s.Elapsed(session),
	}

	zones := make(map[int64]struct{})
	for _, entry := range entries {
		zones[entry.ZoneID] = struct{}{}
		if entry.Skipped {
			stats.ItemsSkipped++
		}

		assignment, err := s.assignments.GetByZoneItem(ctx, entry.ZoneID, entry.ItemID)
		if err != nil {
			return nil, fmt.Errorf("failed to join entry %d to its assignment: %w", entry.ID, err)
		}
		if assignment == nil {
			continue
		}

		switch variance.Classify(entry.Quantity, assignment.ParLevel) {
		case variance.Critical, variance.Warning:
			stats.UnderPar++
		case variance.Good:
			stats.AtOrAbovePar++
		}
	}
	stats.ZonesTouched = len(zones)

	return stats, nil
}
