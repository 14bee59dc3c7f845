package rediscache_test

import (
	"testing"
	"time"

	"dispatch/internal/adapters/out/rediscache"
	"dispatch/internal/core/domain/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sampleMatrix() services.DistanceMatrix {
	return services.DistanceMatrix{
		services.DepotID: {
			services.DepotID: {DistanceKm: 0, Minutes: 0},
			"stop-a":         {DistanceKm: 3.2, Minutes: 4.8},
		},
		"stop-a": {
			services.DepotID: {DistanceKm: 3.2, Minutes: 4.8},
			"stop-a":         {DistanceKm: 0, Minutes: 0},
		},
	}
}

func TestRedisMatrixCache_RoundTrip(t *testing.T) {
	ctx := t.Context()
	_, client := newTestClient(t)
	cache := rediscache.NewRedisMatrixCache(client)

	_, found, err := cache.GetMatrix(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.SetMatrix(ctx, "abc123", sampleMatrix(), 15*time.Minute))

	matrix, found, err := cache.GetMatrix(ctx, "abc123")
	require.NoError(t, err)
	require.True(t, found)

	entry, ok := matrix.Entry(services.DepotID, "stop-a")
	require.True(t, ok)
	assert.InDelta(t, 3.2, entry.DistanceKm, 0.001)
	assert.InDelta(t, 4.8, entry.Minutes, 0.001)
	assert.True(t, matrix.Covers(services.DepotID, "stop-a"))
}

func TestRedisMatrixCache_EntriesExpire(t *testing.T) {
	ctx := t.Context()
	mr, client := newTestClient(t)
	cache := rediscache.NewRedisMatrixCache(client)

	require.NoError(t, cache.SetMatrix(ctx, "ttl-key", sampleMatrix(), 15*time.Minute))
	mr.FastForward(16 * time.Minute)

	_, found, err := cache.GetMatrix(ctx, "ttl-key")
	require.NoError(t, err)
	assert.False(t, found)
}
