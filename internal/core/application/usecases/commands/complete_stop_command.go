package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/stop"
	"dispatch/internal/pkg/guard"
)

var ErrCompleteStopCommandIsNotConstructed = errors.New(
	"CompleteStopCommand must be created via NewCompleteStopCommand constructor",
)

// CompleteStopCommand closes an arrived stop with proof of delivery.
// When the stop carries a cash-on-delivery amount, CODCollected confirms the
// driver collected it.
type CompleteStopCommand struct { //nolint:recvcheck //using for validation
	stopID       kernel.UUID
	proof        stop.Proof
	codCollected bool

	guard guard.ConstructorGuard
}

// NewCompleteStopCommand creates a completion command. The proof is built and
// validated here so handlers never see malformed evidence.
func NewCompleteStopCommand(
	stopID kernel.UUID,
	proofKind stop.ProofKind,
	proofReference string,
	receivedBy string,
	codCollected bool,
) (CompleteStopCommand, error) {
	if err := stopID.Validate(); err != nil {
		return CompleteStopCommand{}, err
	}

	proof, err := stop.NewProof(proofKind, proofReference, receivedBy)
	if err != nil {
		return CompleteStopCommand{}, err
	}

	return CompleteStopCommand{
		stopID:       stopID,
		proof:        proof,
		codCollected: codCollected,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CompleteStopCommand) Validate() error {
	return c.guard.Validate(ErrCompleteStopCommandIsNotConstructed)
}

// StopID returns the stop to complete.
func (c CompleteStopCommand) StopID() kernel.UUID {
	return c.stopID
}

// Proof returns the validated completion evidence.
func (c CompleteStopCommand) Proof() stop.Proof {
	return c.proof
}

// CODCollected reports whether the cash-on-delivery amount was collected.
func (c CompleteStopCommand) CODCollected() bool {
	return c.codCollected
}
