package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrScheduleRoutesCommandIsNotConstructed = errors.New(
	"ScheduleRoutesCommand must be created via NewScheduleRoutesCommand constructor",
)

// ScheduleRoutesCommand plans all unassigned pending stops of a service date
// into driver routes. PlannedStart is the depot departure time ETAs are
// chained from.
type ScheduleRoutesCommand struct { //nolint:recvcheck //using for validation
	serviceDate  time.Time
	plannedStart time.Time

	guard guard.ConstructorGuard
}

// NewScheduleRoutesCommand creates a scheduling command.
func NewScheduleRoutesCommand(serviceDate time.Time, plannedStart time.Time) (ScheduleRoutesCommand, error) {
	if serviceDate.IsZero() {
		return ScheduleRoutesCommand{}, errs.NewValueIsRequiredError("serviceDate")
	}
	if plannedStart.IsZero() {
		return ScheduleRoutesCommand{}, errs.NewValueIsRequiredError("plannedStart")
	}

	return ScheduleRoutesCommand{
		serviceDate:  serviceDate,
		plannedStart: plannedStart,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ScheduleRoutesCommand) Validate() error {
	return c.guard.Validate(ErrScheduleRoutesCommandIsNotConstructed)
}

// ServiceDate returns the date to schedule.
func (c ScheduleRoutesCommand) ServiceDate() time.Time {
	return c.serviceDate
}

// PlannedStart returns the depot departure time for created routes.
func (c ScheduleRoutesCommand) PlannedStart() time.Time {
	return c.plannedStart
}

// UnassignedStop names a stop the scheduler could not place and why.
type UnassignedStop struct {
	StopID kernel.UUID
	Reason string
}

// ScheduleRoutesResult summarizes one scheduling run. A run never fails
// because some stops could not be placed; those are reported here instead.
type ScheduleRoutesResult struct {
	RouteIDs   []kernel.UUID
	Unassigned []UnassignedStop
}
