package catalog

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkalmus/zonecount/internal/db"
	"github.com/dkalmus/zonecount/internal/domain"
	"github.com/dkalmus/zonecount/internal/store"
)

const testFeed = `{
	"items": [
		{"id": "canon-gin", "name": "London Dry Gin", "unit": "bottle", "category": "spirits", "default_par": 6},
		{"id": "canon-tonic", "name": "Tonic Water", "unit": "can", "category": "mixers", "default_par": 24},
		{"id": "canon-towel", "name": "Bar Towel", "unit": "each", "category": "supplies"}
	],
	"zone_templates": [
		{"id": "tmpl-backbar", "name": "Back Bar", "zone_type": "shelf", "item_ids": ["canon-gin", "canon-tonic"]}
	]
}`

func TestParseFeed(t *testing.T) {
	feed, err := Parse(strings.NewReader(testFeed))
	require.NoError(t, err)
	assert.Len(t, feed.Items, 3)

	gin, ok := feed.Item("canon-gin")
	require.True(t, ok)
	assert.Equal(t, "London Dry Gin", gin.Name)
	require.NotNil(t, gin.DefaultPar)
	assert.Equal(t, 6.0, *gin.DefaultPar)

	towel, ok := feed.Item("canon-towel")
	require.True(t, ok)
	assert.Nil(t, towel.DefaultPar)

	tmpl, ok := feed.Template("tmpl-backbar")
	require.True(t, ok)
	assert.Equal(t, []string{"canon-gin", "canon-tonic"}, tmpl.ItemIDs)

	_, ok = feed.Item("canon-unknown")
	assert.False(t, ok)
}

func TestParseFeedBadJSON(t *testing.T) {
	_, err := Parse(strings.NewReader("{nope"))
	assert.Error(t, err)
}

func newTestSeeder(t *testing.T) (*Seeder, *store.AssignmentStore, *store.ItemStore, int64) {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	ctx := context.Background()
	site, err := store.NewSiteStore(d).Create(ctx, "Main Bar")
	require.NoError(t, err)
	zone, err := store.NewZoneStore(d).Create(ctx, &domain.Zone{SiteID: site.ID, Name: "Back Bar", Code: "BB"})
	require.NoError(t, err)

	feed, err := Parse(strings.NewReader(testFeed))
	require.NoError(t, err)

	items := store.NewItemStore(d)
	assignments := store.NewAssignmentStore(d)
	return NewSeeder(feed, items, assignments, slog.Default()), assignments, items, zone.ID
}

func TestSeedZone(t *testing.T) {
	seeder, assignments, _, zoneID := newTestSeeder(t)
	ctx := context.Background()

	created, err := seeder.SeedZone(ctx, zoneID, []string{"canon-gin", "canon-towel"})
	require.NoError(t, err)
	require.Len(t, created, 2)

	require.NotNil(t, created[0].ParLevel)
	assert.Equal(t, 6.0, *created[0].ParLevel)
	assert.Nil(t, created[1].ParLevel)

	stored, err := assignments.ListByZone(ctx, zoneID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestSeedZoneSkipsUnknownCanonID(t *testing.T) {
	seeder, _, _, zoneID := newTestSeeder(t)

	created, err := seeder.SeedZone(context.Background(), zoneID, []string{"canon-unknown", "canon-gin"})
	require.NoError(t, err)
	require.Len(t, created, 1)
}

func TestSeedZoneReusesItemsAcrossZones(t *testing.T) {
	seeder, _, items, zoneID := newTestSeeder(t)
	ctx := context.Background()

	_, err := seeder.SeedZone(ctx, zoneID, []string{"canon-gin"})
	require.NoError(t, err)
	// Seeding the same canon item again must not duplicate the item row or
	// the assignment.
	again, err := seeder.SeedZone(ctx, zoneID, []string{"canon-gin"})
	require.NoError(t, err)
	assert.Empty(t, again)

	all, err := items.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSeedZoneFromTemplate(t *testing.T) {
	seeder, _, _, zoneID := newTestSeeder(t)

	created, err := seeder.SeedZoneFromTemplate(context.Background(), zoneID, "tmpl-backbar")
	require.NoError(t, err)
	assert.Len(t, created, 2)

	_, err = seeder.SeedZoneFromTemplate(context.Background(), zoneID, "tmpl-missing")
	assert.Error(t, err)
}
