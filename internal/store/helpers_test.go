package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dkalmus/zonecount/internal/db"
	"github.com/dkalmus/zonecount/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func createTestSite(t *testing.T, d *sql.DB, name string) *domain.Site {
	t.Helper()
	site, err := NewSiteStore(d).Create(context.Background(), name)
	require.NoError(t, err)
	return site
}

func createTestZone(t *testing.T, d *sql.DB, siteID int64, parentID *int64, name, code string) *domain.Zone {
	t.Helper()
	zone, err := NewZoneStore(d).Create(context.Background(), &domain.Zone{
		SiteID:   siteID,
		ParentID: parentID,
		Name:     name,
		Code:     code,
	})
	require.NoError(t, err)
	return zone
}

func createTestItem(t *testing.T, d *sql.DB, name string) *domain.Item {
	t.Helper()
	item, err := NewItemStore(d).Create(context.Background(), name, "each", "", nil)
	require.NoError(t, err)
	return item
}

func floatPtr(v float64) *float64 { return &v }
