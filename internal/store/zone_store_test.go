package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkalmus/zonecount/internal/domain"
)

func TestZoneStoreCreate(t *testing.T) {
	d := openTestDB(t)
	site := createTestSite(t, d, "Main Bar")

	store := NewZoneStore(d)
	ctx := context.Background()

	zone, err := store.Create(ctx, &domain.Zone{
		SiteID:   site.ID,
		Name:     "Walk-in Cooler",
		Code:     "WC1",
		ZoneType: "cooler",
		Anchor:   &domain.Anchor{X: 1.5, Y: 0, Z: -2.25, Radius: 0.5},
	})
	require.NoError(t, err)
	assert.NotZero(t, zone.ID)
	assert.Equal(t, "Walk-in Cooler", zone.Name)
	assert.True(t, zone.IsRoot())
	require.NotNil(t, zone.Anchor)
	assert.Equal(t, 1.5, zone.Anchor.X)
	assert.Equal(t, 0.5, zone.Anchor.Radius)
}

func TestZoneStoreCreateWithoutAnchor(t *testing.T) {
	d := openTestDB(t)
	site := createTestSite(t, d, "Main Bar")

	zone := createTestZone(t, d, site.ID, nil, "Dry Storage", "DS1")
	assert.Nil(t, zone.Anchor)
}

func TestZoneStoreCodeUniquePerSite(t *testing.T) {
	d := openTestDB(t)
	siteA := createTestSite(t, d, "Main Bar")
	siteB := createTestSite(t, d, "Patio Bar")

	store := NewZoneStore(d)
	ctx := context.Background()

	createTestZone(t, d, siteA.ID, nil, "Back Shelf", "BS1")

	_, err := store.Create(ctx, &domain.Zone{SiteID: siteA.ID, Name: "Other Shelf", Code: "BS1"})
	assert.Error(t, err)

	// Same code on another site is fine.
	_, err = store.Create(ctx, &domain.Zone{SiteID: siteB.ID, Name: "Back Shelf", Code: "BS1"})
	assert.NoError(t, err)
}

func TestZoneStoreListRootsAndChildren(t *testing.T) {
	d := openTestDB(t)
	site := createTestSite(t, d, "Main Bar")

	store := NewZoneStore(d)
	ctx := context.Background()

	root, err := store.Create(ctx, &domain.Zone{SiteID: site.ID, Name: "Cellar", Code: "CE", SortOrder: 2})
	require.NoError(t, err)
	_, err = store.Create(ctx, &domain.Zone{SiteID: site.ID, Name: "Bar Front", Code: "BF", SortOrder: 1})
	require.NoError(t, err)
	childB, err := store.Create(ctx, &domain.Zone{SiteID: site.ID, ParentID: &root.ID, Name: "Rack B", Code: "CE-B", SortOrder: 2})
	require.NoError(t, err)
	childA, err := store.Create(ctx, &domain.Zone{SiteID: site.ID, ParentID: &root.ID, Name: "Rack A", Code: "CE-A", SortOrder: 1})
	require.NoError(t, err)

	roots, err := store.ListRoots(ctx, site.ID)
	require.NoError(t, err)
	require.Len(t, roots, 2)
	assert.Equal(t, "Bar Front", roots[0].Name)
	assert.Equal(t, "Cellar", roots[1].Name)

	children, err := store.ListChildren(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, childA.ID, children[0].ID)
	assert.Equal(t, childB.ID, children[1].ID)
}

func TestZoneStoreUpdateParent(t *testing.T) {
	d := openTestDB(t)
	site := createTestSite(t, d, "Main Bar")

	store := NewZoneStore(d)
	ctx := context.Background()

	a := createTestZone(t, d, site.ID, nil, "A", "A")
	b := createTestZone(t, d, site.ID, nil, "B", "B")

	require.NoError(t, store.UpdateParent(ctx, b.ID, &a.ID))

	moved, err := store.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, a.ID, *moved.ParentID)

	require.NoError(t, store.UpdateParent(ctx, b.ID, nil))
	moved, err = store.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, moved.IsRoot())
}

func TestZoneStoreDeleteCascades(t *testing.T) {
	d := openTestDB(t)
	site := createTestSite(t, d, "Main Bar")

	store := NewZoneStore(d)
	ctx := context.Background()

	root := createTestZone(t, d, site.ID, nil, "Cellar", "CE")
	child := createTestZone(t, d, site.ID, &root.ID, "Rack A", "CE-A")
	item := createTestItem(t, d, "Tonic Water")

	_, err := NewAssignmentStore(d).Create(ctx, child.ID, item.ID, floatPtr(12), 0)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, root.ID))

	gone, err := store.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	assignments, err := NewAssignmentStore(d).ListByZone(ctx, child.ID)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestZoneStoreDeleteMissing(t *testing.T) {
	d := openTestDB(t)

	err := NewZoneStore(d).Delete(context.Background(), 999)
	assert.Error(t, err)
}
