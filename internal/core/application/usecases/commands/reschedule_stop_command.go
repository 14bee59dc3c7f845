package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrRescheduleStopCommandIsNotConstructed = errors.New(
	"RescheduleStopCommand must be created via NewRescheduleStopCommand constructor",
)

// RescheduleStopCommand moves a stop to a later service date. The original
// stop is closed as rescheduled and a fresh stop is created under the same
// public reference.
type RescheduleStopCommand struct { //nolint:recvcheck //using for validation
	stopID      kernel.UUID
	serviceDate time.Time

	guard guard.ConstructorGuard
}

// NewRescheduleStopCommand creates a reschedule command.
func NewRescheduleStopCommand(stopID kernel.UUID, serviceDate time.Time) (RescheduleStopCommand, error) {
	if err := stopID.Validate(); err != nil {
		return RescheduleStopCommand{}, err
	}
	if serviceDate.IsZero() {
		return RescheduleStopCommand{}, errs.NewValueIsRequiredError("serviceDate")
	}

	return RescheduleStopCommand{
		stopID:      stopID,
		serviceDate: serviceDate,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RescheduleStopCommand) Validate() error {
	return c.guard.Validate(ErrRescheduleStopCommandIsNotConstructed)
}

// StopID returns the stop to reschedule.
func (c RescheduleStopCommand) StopID() kernel.UUID {
	return c.stopID
}

// ServiceDate returns the new service date.
func (c RescheduleStopCommand) ServiceDate() time.Time {
	return c.serviceDate
}
