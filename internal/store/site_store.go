package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dkalmus/zonecount/internal/domain"
)

type SiteStore struct {
	db *sql.DB
}

func NewSiteStore(db *sql.DB) *SiteStore {
	return &SiteStore{db: db}
}

func (s *SiteStore) Create(ctx context.Context, name string) (*domain.Site, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO sites (name) VALUES (?)
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create site: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *SiteStore) GetByID(ctx context.Context, id int64) (*domain.Site, error) {
	site := &domain.Site{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM sites WHERE id = ?
	`, id).Scan(&site.ID, &site.Name, &site.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site: %w", err)
	}

	return site, nil
}

func (s *SiteStore) List(ctx context.Context) ([]*domain.Site, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at FROM sites ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []*domain.Site
	for rows.Next() {
		site := &domain.Site{}
		if err := rows.Scan(&site.ID, &site.Name, &site.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sites: %w", err)
	}

	return sites, nil
}

func (s *SiteStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM sites WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("site not found")
	}

	return nil
}
