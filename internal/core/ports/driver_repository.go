package ports

import (
	"context"
	"errors"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrDriverReservationConflict is returned by Reserve when another scheduling
// run won the compare-and-set race for the driver. The caller falls through
// to the next candidate.
var ErrDriverReservationConflict = errors.New("driver reservation conflict")

// DriverRepository defines the persistence contract for driver aggregates.
type DriverRepository interface {
	// Add persists a new driver aggregate to storage.
	Add(ctx context.Context, aggregate *driver.Driver) error

	// Update persists changes to an existing driver aggregate.
	Update(ctx context.Context, aggregate *driver.Driver) error

	// Get retrieves a driver aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error)

	// GetAllAvailable retrieves active, available drivers with capability
	// metadata, ordered by rating then on-time percentage. Drivers already
	// holding an open route for the service date are excluded so one driver
	// never ends up with two routes on the same day.
	GetAllAvailable(ctx context.Context, serviceDate time.Time) ([]*driver.Driver, error)

	// Reserve commits a route reservation with a compare-and-set on the
	// driver's previous active-route count so two concurrent scheduling runs
	// can never double-book the driver. Returns
	// ErrDriverReservationConflict when the count moved underneath us.
	Reserve(ctx context.Context, aggregate *driver.Driver, previousCount int) error
}
