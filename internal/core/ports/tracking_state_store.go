package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// Notification suppression flag kinds used by the live-tracking pipeline.
const (
	FlagArrival     = "arrival"
	FlagNearArrival = "near_arrival"
	FlagRunningLate = "running_late"
)

// LivePosition is the last reported driver position shared with the public
// tracking surface.
type LivePosition struct {
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lng"`
	ReportedAt time.Time `json:"reported_at"`
}

// TrackingStateStore keeps the live-tracking pipeline's ephemeral state:
// notification suppression flags, per-zone geofence containment and live
// driver positions. All entries expire on their own; losing them degrades to
// a duplicate notification at worst, never to a wrong stop status.
type TrackingStateStore interface {
	// SetNotificationFlag sets a suppression flag for a stop unless it is
	// already present. Returns true when the flag was newly set, meaning the
	// caller owns the notification.
	SetNotificationFlag(ctx context.Context, kind string, stopID kernel.UUID, ttl time.Duration) (bool, error)

	// GetGeofenceContainment returns the previously recorded containment
	// state for a driver/zone pair. known is false when no state exists yet.
	GetGeofenceContainment(ctx context.Context, driverID kernel.UUID, zone string) (inside bool, known bool, err error)

	// SetGeofenceContainment records the containment state for a driver/zone pair.
	SetGeofenceContainment(ctx context.Context, driverID kernel.UUID, zone string, inside bool) error

	// SetLivePosition records the driver's latest position.
	SetLivePosition(ctx context.Context, driverID kernel.UUID, position LivePosition) error

	// GetLivePosition returns the driver's latest position, if any.
	GetLivePosition(ctx context.Context, driverID kernel.UUID) (LivePosition, bool, error)
}
