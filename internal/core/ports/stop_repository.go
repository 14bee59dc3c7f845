package ports

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/stop"
)

// StopRepository defines the persistence contract for stop aggregates.
type StopRepository interface {
	// Add persists a new stop aggregate to storage.
	Add(ctx context.Context, aggregate *stop.Stop) error

	// Update persists changes to an existing stop aggregate.
	Update(ctx context.Context, aggregate *stop.Stop) error

	// Get retrieves a stop aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*stop.Stop, error)

	// GetByReference retrieves the most recent stop for a public tracking
	// handle. Rescheduled attempts share a reference; the latest record wins.
	GetByReference(ctx context.Context, reference string) (*stop.Stop, error)

	// GetPendingForDate retrieves unassigned pending stops for a service
	// date, the scheduler's input set.
	GetPendingForDate(ctx context.Context, date time.Time) ([]*stop.Stop, error)

	// GetByRouteID retrieves a route's stops ordered by sequence index.
	GetByRouteID(ctx context.Context, routeID kernel.UUID) ([]*stop.Stop, error)
}
