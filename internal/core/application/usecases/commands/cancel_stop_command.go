package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrCancelStopCommandIsNotConstructed = errors.New(
	"CancelStopCommand must be created via NewCancelStopCommand constructor",
)

// CancelStopCommand withdraws a stop from delivery entirely.
type CancelStopCommand struct { //nolint:recvcheck //using for validation
	stopID kernel.UUID

	guard guard.ConstructorGuard
}

// NewCancelStopCommand creates a cancellation command.
func NewCancelStopCommand(stopID kernel.UUID) (CancelStopCommand, error) {
	if err := stopID.Validate(); err != nil {
		return CancelStopCommand{}, err
	}

	return CancelStopCommand{
		stopID: stopID,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelStopCommand) Validate() error {
	return c.guard.Validate(ErrCancelStopCommandIsNotConstructed)
}

// StopID returns the stop to cancel.
func (c CancelStopCommand) StopID() kernel.UUID {
	return c.stopID
}
