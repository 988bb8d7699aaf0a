package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkalmus/zonecount/internal/domain"
)

func TestSessionStoreCreate(t *testing.T) {
	d := openTestDB(t)
	site := createTestSite(t, d, "Main Bar")

	session, err := NewSessionStore(d).Create(context.Background(), site.ID, "sam")
	require.NoError(t, err)
	assert.NotZero(t, session.ID)
	assert.Equal(t, domain.SessionInProgress, session.Status)
	assert.Equal(t, "sam", session.CountedBy)
	assert.Nil(t, session.CompletedAt)
}

func TestSessionStoreFinish(t *testing.T) {
	d := openTestDB(t)
	site := createTestSite(t, d, "Main Bar")

	store := NewSessionStore(d)
	ctx := context.Background()

	session, err := store.Create(ctx, site.ID, "sam")
	require.NoError(t, err)

	done, err := store.Finish(ctx, session.ID, domain.SessionCompleted, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, done)

	finished, err := store.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, finished.Status)
	assert.NotNil(t, finished.CompletedAt)
}

func TestSessionStoreFinishFirstTerminalWins(t *testing.T) {
	d := openTestDB(t)
	site := createTestSite(t, d, "Main Bar")

	store := NewSessionStore(d)
	ctx := context.Background()

	session, err := store.Create(ctx, site.ID, "sam")
	require.NoError(t, err)

	done, err := store.Finish(ctx, session.ID, domain.SessionCompleted, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, done)

	done, err = store.Finish(ctx, session.ID, domain.SessionAbandoned, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, done)

	finished, err := store.GetByID(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, finished.Status)
}

func TestSessionStoreFinishRejectsNonTerminal(t *testing.T) {
	d := openTestDB(t)

	_, err := NewSessionStore(d).Finish(context.Background(), 1, domain.SessionInProgress, time.Now().UTC())
	assert.Error(t, err)
}

func TestSessionStoreListBySite(t *testing.T) {
	d := openTestDB(t)
	siteA := createTestSite(t, d, "Main Bar")
	siteB := createTestSite(t, d, "Patio Bar")

	store := NewSessionStore(d)
	ctx := context.Background()

	_, err := store.Create(ctx, siteA.ID, "sam")
	require.NoError(t, err)
	_, err = store.Create(ctx, siteB.ID, "alex")
	require.NoError(t, err)

	sessions, err := store.ListBySite(ctx, siteA.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "sam", sessions[0].CountedBy)
}
