// Package rediscache provides Redis-backed implementations of the matrix
// cache and the live-tracking state store. Everything stored here is
// ephemeral and expires on its own: losing a key costs a recomputation or a
// duplicate notification, never a wrong stop status.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dispatch/internal/core/domain/services"

	"github.com/redis/go-redis/v9"
)

const matrixKeyPrefix = "matrix:"

// RedisMatrixCache stores computed distance matrices as JSON values under
// their location-set hash.
type RedisMatrixCache struct {
	client *redis.Client
}

// NewRedisMatrixCache creates a matrix cache backed by the given client.
func NewRedisMatrixCache(client *redis.Client) *RedisMatrixCache {
	return &RedisMatrixCache{client: client}
}

// GetMatrix returns the cached matrix for a location-set key, if present.
func (c *RedisMatrixCache) GetMatrix(ctx context.Context, key string) (services.DistanceMatrix, bool, error) {
	raw, err := c.client.Get(ctx, matrixKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var matrix services.DistanceMatrix
	if err = json.Unmarshal(raw, &matrix); err != nil {
		return nil, false, err
	}

	return matrix, true, nil
}

// SetMatrix stores a matrix under its location-set key for the given TTL.
func (c *RedisMatrixCache) SetMatrix(
	ctx context.Context,
	key string,
	matrix services.DistanceMatrix,
	ttl time.Duration,
) error {
	raw, err := json.Marshal(matrix)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, matrixKeyPrefix+key, raw, ttl).Err()
}
