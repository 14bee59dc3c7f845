package commands

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/stop"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCreateStopCommandIsNotConstructed = errors.New(
	"CreateStopCommand must be created via NewCreateStopCommand constructor",
)

// CreateStopCommand registers a new delivery for a service date. The address
// is resolved to coordinates during handling; the stop starts out pending
// and is picked up by the next scheduling sweep.
type CreateStopCommand struct { //nolint:recvcheck //using for validation
	address            string
	recipientName      string
	recipientPhone     string
	priority           stop.Priority
	demand             kernel.Capacity
	requiresColdChain  bool
	serviceDate        time.Time
	timeWindow         *stop.TimeWindow
	serviceTimeMinutes int
	codAmount          float64

	guard guard.ConstructorGuard
}

// NewCreateStopCommand creates a stop intake command. TimeWindow may be nil
// for deliveries without a promised slot.
func NewCreateStopCommand(
	address string,
	recipientName string,
	recipientPhone string,
	priority stop.Priority,
	demand kernel.Capacity,
	requiresColdChain bool,
	serviceDate time.Time,
	timeWindow *stop.TimeWindow,
	serviceTimeMinutes int,
	codAmount float64,
) (CreateStopCommand, error) {
	if address == "" {
		return CreateStopCommand{}, errs.NewValueIsRequiredError("address")
	}
	if recipientName == "" {
		return CreateStopCommand{}, errs.NewValueIsRequiredError("recipientName")
	}
	if err := priority.Validate(); err != nil {
		return CreateStopCommand{}, err
	}
	if serviceDate.IsZero() {
		return CreateStopCommand{}, errs.NewValueIsRequiredError("serviceDate")
	}
	if serviceTimeMinutes < 0 {
		return CreateStopCommand{}, errs.NewValueIsOutOfRangeError(
			"serviceTimeMinutes", serviceTimeMinutes, 0, nil)
	}
	if codAmount < 0 {
		return CreateStopCommand{}, errs.NewValueIsOutOfRangeError(
			"codAmount", codAmount, 0, nil)
	}

	return CreateStopCommand{
		address:            address,
		recipientName:      recipientName,
		recipientPhone:     recipientPhone,
		priority:           priority,
		demand:             demand,
		requiresColdChain:  requiresColdChain,
		serviceDate:        serviceDate,
		timeWindow:         timeWindow,
		serviceTimeMinutes: serviceTimeMinutes,
		codAmount:          codAmount,
		guard:              guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateStopCommand) Validate() error {
	return c.guard.Validate(ErrCreateStopCommandIsNotConstructed)
}

// Address returns the delivery address to resolve.
func (c CreateStopCommand) Address() string {
	return c.address
}

// RecipientName returns the recipient's name.
func (c CreateStopCommand) RecipientName() string {
	return c.recipientName
}

// RecipientPhone returns the recipient's phone number, possibly empty.
func (c CreateStopCommand) RecipientPhone() string {
	return c.recipientPhone
}

// Priority returns the scheduling tier.
func (c CreateStopCommand) Priority() stop.Priority {
	return c.priority
}

// Demand returns the parcel's capacity demand.
func (c CreateStopCommand) Demand() kernel.Capacity {
	return c.demand
}

// RequiresColdChain reports whether the parcel needs cold storage.
func (c CreateStopCommand) RequiresColdChain() bool {
	return c.requiresColdChain
}

// ServiceDate returns the requested delivery date.
func (c CreateStopCommand) ServiceDate() time.Time {
	return c.serviceDate
}

// TimeWindow returns the promised delivery slot, if any.
func (c CreateStopCommand) TimeWindow() *stop.TimeWindow {
	return c.timeWindow
}

// ServiceTimeMinutes returns the expected on-site handling time.
func (c CreateStopCommand) ServiceTimeMinutes() int {
	return c.serviceTimeMinutes
}

// CODAmount returns the cash to collect on delivery, zero when prepaid.
func (c CreateStopCommand) CODAmount() float64 {
	return c.codAmount
}

// CreateStopResult reports the created stop and its public tracking handle.
type CreateStopResult struct {
	StopID    kernel.UUID
	Reference string
}
