package zonetree

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkalmus/zonecount/internal/db"
	"github.com/dkalmus/zonecount/internal/domain"
	"github.com/dkalmus/zonecount/internal/store"
)

type fixture struct {
	tree        *Tree
	zones       *store.ZoneStore
	assignments *store.AssignmentStore
	items       *store.ItemStore
	siteID      int64
	db          *sql.DB
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	site, err := store.NewSiteStore(d).Create(context.Background(), "Main Bar")
	require.NoError(t, err)

	zones := store.NewZoneStore(d)
	assignments := store.NewAssignmentStore(d)
	return &fixture{
		tree:        NewTree(zones, assignments, slog.Default()),
		zones:       zones,
		assignments: assignments,
		items:       store.NewItemStore(d),
		siteID:      site.ID,
		db:          d,
	}
}

func (f *fixture) addZone(t *testing.T, parentID *int64, name, code string, sortOrder int) *domain.Zone {
	t.Helper()
	zone, err := f.tree.Create(context.Background(), &domain.Zone{
		SiteID:    f.siteID,
		ParentID:  parentID,
		Name:      name,
		Code:      code,
		SortOrder: sortOrder,
	})
	require.NoError(t, err)
	return zone
}

func (f *fixture) assignItems(t *testing.T, zoneID int64, names ...string) {
	t.Helper()
	for i, name := range names {
		item, err := f.items.Create(context.Background(), name, "each", "", nil)
		require.NoError(t, err)
		_, err = f.assignments.Create(context.Background(), zoneID, item.ID, nil, i)
		require.NoError(t, err)
	}
}

func TestTreeRootsAreParentless(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cellar := f.addZone(t, nil, "Cellar", "CE", 1)
	rack := f.addZone(t, &cellar.ID, "Rack A", "CE-A", 1)

	roots, err := f.tree.Roots(ctx, f.siteID)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, cellar.ID, roots[0].ID)
	assert.True(t, roots[0].IsRoot())
	assert.False(t, rack.IsRoot())
}

func TestTreeDescendantsDepthFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cellar := f.addZone(t, nil, "Cellar", "CE", 1)
	rackA := f.addZone(t, &cellar.ID, "Rack A", "CE-A", 1)
	rackB := f.addZone(t, &cellar.ID, "Rack B", "CE-B", 2)
	shelf := f.addZone(t, &rackA.ID, "Shelf 1", "CE-A1", 1)

	descendants, err := f.tree.Descendants(ctx, cellar.ID)
	require.NoError(t, err)
	require.Len(t, descendants, 3)
	assert.Equal(t, rackA.ID, descendants[0].ID)
	assert.Equal(t, shelf.ID, descendants[1].ID)
	assert.Equal(t, rackB.ID, descendants[2].ID)

	// A zone never appears among its own descendants.
	for _, d := range descendants {
		assert.NotEqual(t, cellar.ID, d.ID)
	}
}

func TestTreeTotalItemCountRollsUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Depth 3: cellar -> rack -> shelf.
	cellar := f.addZone(t, nil, "Cellar", "CE", 1)
	rack := f.addZone(t, &cellar.ID, "Rack A", "CE-A", 1)
	shelf := f.addZone(t, &rack.ID, "Shelf 1", "CE-A1", 1)

	f.assignItems(t, cellar.ID, "Keg Coupler")
	f.assignItems(t, rack.ID, "Gin", "Vodka")
	f.assignItems(t, shelf.ID, "Tonic", "Soda", "Lime Juice")

	total, err := f.tree.TotalItemCount(ctx, cellar.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, total)

	// Equals own assignments plus children's totals at every level.
	rackTotal, err := f.tree.TotalItemCount(ctx, rack.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, rackTotal)

	shelfTotal, err := f.tree.TotalItemCount(ctx, shelf.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, shelfTotal)
}

func TestTreeDepth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cellar := f.addZone(t, nil, "Cellar", "CE", 1)
	rack := f.addZone(t, &cellar.ID, "Rack A", "CE-A", 1)
	shelf := f.addZone(t, &rack.ID, "Shelf 1", "CE-A1", 1)

	depth, err := f.tree.Depth(ctx, cellar.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, depth)

	depth, err = f.tree.Depth(ctx, shelf.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, depth)
}

func TestTreeReparentRejectsDescendant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cellar := f.addZone(t, nil, "Cellar", "CE", 1)
	rack := f.addZone(t, &cellar.ID, "Rack A", "CE-A", 1)
	shelf := f.addZone(t, &rack.ID, "Shelf 1", "CE-A1", 1)

	err := f.tree.Reparent(ctx, cellar.ID, &shelf.ID)
	require.ErrorIs(t, err, ErrInvalidHierarchy)

	// No mutation happened.
	unchanged, err := f.tree.Get(ctx, cellar.ID)
	require.NoError(t, err)
	assert.True(t, unchanged.IsRoot())
}

func TestTreeReparentRejectsSelf(t *testing.T) {
	f := newFixture(t)

	cellar := f.addZone(t, nil, "Cellar", "CE", 1)

	err := f.tree.Reparent(context.Background(), cellar.ID, &cellar.ID)
	assert.ErrorIs(t, err, ErrInvalidHierarchy)
}

func TestTreeReparentValidMove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cellar := f.addZone(t, nil, "Cellar", "CE", 1)
	barFront := f.addZone(t, nil, "Bar Front", "BF", 2)
	rack := f.addZone(t, &cellar.ID, "Rack A", "CE-A", 1)

	require.NoError(t, f.tree.Reparent(ctx, rack.ID, &barFront.ID))

	moved, err := f.tree.Get(ctx, rack.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.ParentID)
	assert.Equal(t, barFront.ID, *moved.ParentID)

	// And back to the root.
	require.NoError(t, f.tree.Reparent(ctx, rack.ID, nil))
	moved, err = f.tree.Get(ctx, rack.ID)
	require.NoError(t, err)
	assert.True(t, moved.IsRoot())
}

func TestTreeReparentMissingZone(t *testing.T) {
	f := newFixture(t)

	err := f.tree.Reparent(context.Background(), 999, nil)
	assert.ErrorIs(t, err, ErrZoneNotFound)
}

func TestTreeIsLeaf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cellar := f.addZone(t, nil, "Cellar", "CE", 1)
	rack := f.addZone(t, &cellar.ID, "Rack A", "CE-A", 1)

	leaf, err := f.tree.IsLeaf(ctx, cellar.ID)
	require.NoError(t, err)
	assert.False(t, leaf)

	leaf, err = f.tree.IsLeaf(ctx, rack.ID)
	require.NoError(t, err)
	assert.True(t, leaf)
}

func TestTreeSubtree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cellar := f.addZone(t, nil, "Cellar", "CE", 1)
	rack := f.addZone(t, &cellar.ID, "Rack A", "CE-A", 1)

	subtree, err := f.tree.Subtree(ctx, cellar.ID)
	require.NoError(t, err)
	require.Len(t, subtree, 2)
	assert.Equal(t, cellar.ID, subtree[0].ID)
	assert.Equal(t, rack.ID, subtree[1].ID)
}

func TestTreeDeleteCascadesSubtree(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cellar := f.addZone(t, nil, "Cellar", "CE", 1)
	rack := f.addZone(t, &cellar.ID, "Rack A", "CE-A", 1)
	f.assignItems(t, rack.ID, "Gin")

	require.NoError(t, f.tree.Delete(ctx, cellar.ID))

	gone, err := f.tree.Get(ctx, rack.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}
