package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentStoreCreate(t *testing.T) {
	d := openTestDB(t)
	site := createTestSite(t, d, "Main Bar")
	zone := createTestZone(t, d, site.ID, nil, "Cellar", "CE")
	item := createTestItem(t, d, "Gin")

	a, err := NewAssignmentStore(d).Create(context.Background(), zone.ID, item.ID, floatPtr(6), 1)
	require.NoError(t, err)
	assert.NotZero(t, a.ID)
	require.NotNil(t, a.ParLevel)
	assert.Equal(t, 6.0, *a.ParLevel)
}

func TestAssignmentStoreCreateWithoutPar(t *testing.T) {
	d := openTestDB(t)
	site := createTestSite(t, d, "Main Bar")
	zone := createTestZone(t, d, site.ID, nil, "Cellar", "CE")
	item := createTestItem(t, d, "Bar Towels")

	a, err := NewAssignmentStore(d).Create(context.Background(), zone.ID, item.ID, nil, 0)
	require.NoError(t, err)
	assert.Nil(t, a.ParLevel)
}

func TestAssignmentStoreUniquePerZoneItem(t *testing.T) {
	d := openTestDB(t)
	site := createTestSite(t, d, "Main Bar")
	zone := createTestZone(t, d, site.ID, nil, "Cellar", "CE")
	item := createTestItem(t, d, "Gin")

	store := NewAssignmentStore(d)
	ctx := context.Background()

	_, err := store.Create(ctx, zone.ID, item.ID, nil, 0)
	require.NoError(t, err)
	_, err = store.Create(ctx, zone.ID, item.ID, nil, 1)
	assert.Error(t, err)
}

func TestAssignmentStoreListByZoneShelfOrder(t *testing.T) {
	d := openTestDB(t)
	site := createTestSite(t, d, "Main Bar")
	zone := createTestZone(t, d, site.ID, nil, "Cellar", "CE")
	gin := createTestItem(t, d, "Gin")
	vodka := createTestItem(t, d, "Vodka")

	store := NewAssignmentStore(d)
	ctx := context.Background()

	_, err := store.Create(ctx, zone.ID, gin.ID, nil, 2)
	require.NoError(t, err)
	_, err = store.Create(ctx, zone.ID, vodka.ID, nil, 1)
	require.NoError(t, err)

	assignments, err := store.ListByZone(ctx, zone.ID)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, vodka.ID, assignments[0].ItemID)
	assert.Equal(t, gin.ID, assignments[1].ItemID)

	count, err := store.CountByZone(ctx, zone.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAssignmentStoreGetByZoneItem(t *testing.T) {
	d := openTestDB(t)
	site := createTestSite(t, d, "Main Bar")
	zone := createTestZone(t, d, site.ID, nil, "Cellar", "CE")
	item := createTestItem(t, d, "Gin")

	store := NewAssignmentStore(d)
	ctx := context.Background()

	created, err := store.Create(ctx, zone.ID, item.ID, floatPtr(4), 0)
	require.NoError(t, err)

	found, err := store.GetByZoneItem(ctx, zone.ID, item.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)

	missing, err := store.GetByZoneItem(ctx, zone.ID, item.ID+1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestAssignmentStoreUpdatePar(t *testing.T) {
	d := openTestDB(t)
	site := createTestSite(t, d, "Main Bar")
	zone := createTestZone(t, d, site.ID, nil, "Cellar", "CE")
	item := createTestItem(t, d, "Gin")

	store := NewAssignmentStore(d)
	ctx := context.Background()

	a, err := store.Create(ctx, zone.ID, item.ID, nil, 0)
	require.NoError(t, err)

	require.NoError(t, store.UpdatePar(ctx, a.ID, floatPtr(8)))

	updated, err := store.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.ParLevel)
	assert.Equal(t, 8.0, *updated.ParLevel)
}
