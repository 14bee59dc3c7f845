package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrArriveAtStopCommandIsNotConstructed = errors.New(
	"ArriveAtStopCommand must be created via NewArriveAtStopCommand constructor",
)

// ArriveAtStopCommand records an explicit arrival signal from a driver, the
// manual counterpart of proximity auto-arrival.
type ArriveAtStopCommand struct { //nolint:recvcheck //using for validation
	stopID kernel.UUID

	guard guard.ConstructorGuard
}

// NewArriveAtStopCommand creates a command to mark a stop as arrived.
func NewArriveAtStopCommand(stopID kernel.UUID) (ArriveAtStopCommand, error) {
	if err := stopID.Validate(); err != nil {
		return ArriveAtStopCommand{}, err
	}

	return ArriveAtStopCommand{
		stopID: stopID,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ArriveAtStopCommand) Validate() error {
	return c.guard.Validate(ErrArriveAtStopCommandIsNotConstructed)
}

// StopID returns the stop to mark as arrived.
func (c ArriveAtStopCommand) StopID() kernel.UUID {
	return c.stopID
}
