package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

const (
	// geofenceStateTTL bounds how long a containment record survives
	// without a fresh position report. After expiry the zone is relearned
	// silently, so a restarted driver app never replays an entry event.
	geofenceStateTTL = 24 * time.Hour

	// livePositionTTL keeps a position readable well past the domain's
	// staleness threshold; consumers decide staleness themselves.
	livePositionTTL = time.Hour
)

// RedisTrackingStateStore keeps the live-tracking pipeline's ephemeral state:
// notification suppression flags, per-zone geofence containment and live
// driver positions.
type RedisTrackingStateStore struct {
	client *redis.Client
}

// NewRedisTrackingStateStore creates a tracking state store backed by the
// given client.
func NewRedisTrackingStateStore(client *redis.Client) *RedisTrackingStateStore {
	return &RedisTrackingStateStore{client: client}
}

// SetNotificationFlag claims a suppression flag with SETNX. The caller that
// sets the flag first owns the notification; everyone else is a duplicate.
func (s *RedisTrackingStateStore) SetNotificationFlag(
	ctx context.Context,
	kind string,
	stopID kernel.UUID,
	ttl time.Duration,
) (bool, error) {
	key := fmt.Sprintf("notify:%s:%s", kind, stopID)
	return s.client.SetNX(ctx, key, "1", ttl).Result()
}

// GetGeofenceContainment returns the recorded containment state for a
// driver/zone pair. known is false when no state exists yet.
func (s *RedisTrackingStateStore) GetGeofenceContainment(
	ctx context.Context,
	driverID kernel.UUID,
	zone string,
) (bool, bool, error) {
	raw, err := s.client.Get(ctx, geofenceKey(driverID, zone)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, false, nil
		}
		return false, false, err
	}

	return raw == "1", true, nil
}

// SetGeofenceContainment records the containment state for a driver/zone pair.
func (s *RedisTrackingStateStore) SetGeofenceContainment(
	ctx context.Context,
	driverID kernel.UUID,
	zone string,
	inside bool,
) error {
	value := "0"
	if inside {
		value = "1"
	}
	return s.client.Set(ctx, geofenceKey(driverID, zone), value, geofenceStateTTL).Err()
}

// SetLivePosition records the driver's latest position as JSON.
func (s *RedisTrackingStateStore) SetLivePosition(
	ctx context.Context,
	driverID kernel.UUID,
	position ports.LivePosition,
) error {
	raw, err := json.Marshal(position)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, positionKey(driverID), raw, livePositionTTL).Err()
}

// GetLivePosition returns the driver's latest position, if any.
func (s *RedisTrackingStateStore) GetLivePosition(
	ctx context.Context,
	driverID kernel.UUID,
) (ports.LivePosition, bool, error) {
	raw, err := s.client.Get(ctx, positionKey(driverID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ports.LivePosition{}, false, nil
		}
		return ports.LivePosition{}, false, err
	}

	var position ports.LivePosition
	if err = json.Unmarshal(raw, &position); err != nil {
		return ports.LivePosition{}, false, err
	}

	return position, true, nil
}

func geofenceKey(driverID kernel.UUID, zone string) string {
	return fmt.Sprintf("geofence:%s:%s", driverID, zone)
}

func positionKey(driverID kernel.UUID) string {
	return fmt.Sprintf("position:%s", driverID)
}
