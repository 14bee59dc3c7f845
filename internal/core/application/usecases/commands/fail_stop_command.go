package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrFailStopCommandIsNotConstructed = errors.New(
	"FailStopCommand must be created via NewFailStopCommand constructor",
)

// FailStopCommand records a failed delivery attempt with its reason.
// Critical reasons raise an incident report as a side effect.
type FailStopCommand struct { //nolint:recvcheck //using for validation
	stopID kernel.UUID
	reason string

	guard guard.ConstructorGuard
}

// NewFailStopCommand creates a failure command. The reason is required.
func NewFailStopCommand(stopID kernel.UUID, reason string) (FailStopCommand, error) {
	if err := stopID.Validate(); err != nil {
		return FailStopCommand{}, err
	}
	if reason == "" {
		return FailStopCommand{}, errs.NewValueIsRequiredError("reason")
	}

	return FailStopCommand{
		stopID: stopID,
		reason: reason,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c FailStopCommand) Validate() error {
	return c.guard.Validate(ErrFailStopCommandIsNotConstructed)
}

// StopID returns the stop to fail.
func (c FailStopCommand) StopID() kernel.UUID {
	return c.stopID
}

// Reason returns the recorded failure reason.
func (c FailStopCommand) Reason() string {
	return c.reason
}
