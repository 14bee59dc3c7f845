package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrUpdateDriverLocationCommandIsNotConstructed = errors.New(
	"UpdateDriverLocationCommand must be created via NewUpdateDriverLocationCommand constructor",
)

// UpdateDriverLocationCommand carries one position report from a driver's
// device. Coordinates are validated at construction so malformed reports
// never reach the tracking pipeline.
type UpdateDriverLocationCommand struct { //nolint:recvcheck //using for validation
	driverID   kernel.UUID
	location   kernel.Location
	reportedAt time.Time

	guard guard.ConstructorGuard
}

// NewUpdateDriverLocationCommand creates a location-report command.
func NewUpdateDriverLocationCommand(
	driverID kernel.UUID,
	latitude float64,
	longitude float64,
	reportedAt time.Time,
) (UpdateDriverLocationCommand, error) {
	if err := driverID.Validate(); err != nil {
		return UpdateDriverLocationCommand{}, err
	}

	location, err := kernel.NewLocation(latitude, longitude)
	if err != nil {
		return UpdateDriverLocationCommand{}, err
	}

	if reportedAt.IsZero() {
		return UpdateDriverLocationCommand{}, errs.NewValueIsRequiredError("reportedAt")
	}

	return UpdateDriverLocationCommand{
		driverID:   driverID,
		location:   location,
		reportedAt: reportedAt,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c UpdateDriverLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateDriverLocationCommandIsNotConstructed)
}

// DriverID returns the reporting driver.
func (c UpdateDriverLocationCommand) DriverID() kernel.UUID {
	return c.driverID
}

// Location returns the reported position.
func (c UpdateDriverLocationCommand) Location() kernel.Location {
	return c.location
}

// ReportedAt returns when the device captured the position.
func (c UpdateDriverLocationCommand) ReportedAt() time.Time {
	return c.reportedAt
}
