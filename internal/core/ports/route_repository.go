package ports

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
)

// ErrDriverAlreadyDispatched is returned when dispatching a route whose
// driver already has another route in progress for the same service date.
var ErrDriverAlreadyDispatched = errors.New("driver already has a route in progress for the service date")

// RouteRepository defines the persistence contract for route aggregates.
type RouteRepository interface {
	// Add persists a new route aggregate to storage.
	Add(ctx context.Context, aggregate *route.Route) error

	// Update persists changes to an existing route aggregate.
	Update(ctx context.Context, aggregate *route.Route) error

	// Get retrieves a route aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*route.Route, error)

	// GetInProgressByDriver retrieves the driver's dispatched route, the one
	// live location updates are matched against. Scheduling and dispatch
	// keep a driver on at most one in-progress route per service date.
	GetInProgressByDriver(ctx context.Context, driverID kernel.UUID) (*route.Route, error)

	// GetInProgressByDriverAndDate retrieves every in-progress route the
	// driver holds for the service date. Dispatch uses it to refuse sending
	// a driver out twice on the same day.
	GetInProgressByDriverAndDate(ctx context.Context, driverID kernel.UUID, serviceDate time.Time) ([]*route.Route, error)
}
