package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryBlocklistService(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryBlocklistService(InMemoryBlocklistConfig{DefaultExpiration: time.Hour, CleanupInterval: time.Hour})

	require.NoError(t, svc.AddToBlocklist(ctx, "live", time.Now().Add(time.Hour)))
	require.NoError(t, svc.AddToBlocklist(ctx, "already-expired", time.Now().Add(-time.Minute)))

	found, err := svc.IsBlocklisted(ctx, "live")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = svc.IsBlocklisted(ctx, "already-expired")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = svc.IsBlocklisted(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStateStore_SingleUse(t *testing.T) {
	store := NewStateStore(time.Minute)

	state, err := store.Issue()
	require.NoError(t, err)
	assert.NotEmpty(t, state)

	other, err := store.Issue()
	require.NoError(t, err)
	assert.NotEqual(t, state, other)

	assert.True(t, store.Consume(state))
	assert.False(t, store.Consume(state), "state must not be accepted twice")
	assert.False(t, store.Consume("never-issued"))
	assert.False(t, store.Consume(""))
	assert.True(t, store.Consume(other))
}

func TestStateStore_Expiry(t *testing.T) {
	store := NewStateStore(20 * time.Millisecond)
	state, err := store.Issue()
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	assert.False(t, store.Consume(state))
}
