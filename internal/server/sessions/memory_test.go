package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RevokeUntilExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Revoke(ctx, "t1", now.Add(10*time.Minute)))

	revoked, err := s.IsRevoked(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = s.IsRevoked(ctx, "t2")
	assert.False(t, revoked)

	now = now.Add(11 * time.Minute)
	revoked, _ = s.IsRevoked(ctx, "t1")
	assert.False(t, revoked, "revocation lapses with the token")
}

func TestMemoryStore_PrunesExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Revoke(ctx, "old", now.Add(time.Second)))
	now = now.Add(time.Hour)
	require.NoError(t, s.Revoke(ctx, "new", now.Add(time.Hour)))

	assert.Len(t, s.revoked, 1)
}

func TestMemoryStore_AlreadyExpiredTokenStillRecorded(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Revoke(ctx, "stale", time.Now().Add(-time.Hour)))
	revoked, _ := s.IsRevoked(ctx, "stale")
	assert.True(t, revoked)
}
