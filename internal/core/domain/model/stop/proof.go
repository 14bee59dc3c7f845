package stop

import (
	"fmt"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrProofIsNotConstructed is returned when attempting to use an improperly
// initialized Proof.
var ErrProofIsNotConstructed = errs.NewValueIsRequiredError(
	"proof must be created via NewProof constructor")

// ProofKind identifies the kind of completion evidence a driver captured.
type ProofKind int

const (
	// ProofUnknown represents an invalid or undefined proof kind.
	ProofUnknown ProofKind = iota

	// ProofSignature references a captured recipient signature.
	ProofSignature

	// ProofPhoto references a photo taken at the handover point.
	ProofPhoto

	// ProofPIN references a numeric PIN confirmed by the recipient.
	ProofPIN
)

func getProofKindStrings() map[ProofKind]string {
	return map[ProofKind]string{
		ProofUnknown:   "unknown",
		ProofSignature: "signature",
		ProofPhoto:     "photo",
		ProofPIN:       "pin",
	}
}

// ProofKindFromString parses a ProofKind from its string representation.
func ProofKindFromString(s string) (ProofKind, error) {
	for kind, str := range getProofKindStrings() {
		if kind != ProofUnknown && str == s {
			return kind, nil
		}
	}
	return ProofUnknown, errs.NewValueIsInvalidErrorWithCause(
		"proof kind", fmt.Errorf("%q is not a valid proof kind", s))
}

// Validate checks if the ProofKind value is valid.
func (k ProofKind) Validate() error {
	if _, ok := getProofKindStrings()[k]; !ok || k == ProofUnknown {
		return errs.NewValueIsInvalidErrorWithCause(
			"proof kind", fmt.Errorf("%d is not a valid proof kind", k))
	}
	return nil
}

// String implements fmt.Stringer.
func (k ProofKind) String() string {
	if str, ok := getProofKindStrings()[k]; ok {
		return str
	}
	return "unknown"
}

// Proof is the completion evidence attached to a delivered stop:
// a reference to the captured artifact plus the identity of who received it.
type Proof struct {
	kind       ProofKind
	reference  string
	receivedBy string
	guard      guard.ConstructorGuard
}

// NewProof creates a Proof. The artifact reference and the recipient identity
// are both required.
func NewProof(kind ProofKind, reference string, receivedBy string) (Proof, error) {
	if err := kind.Validate(); err != nil {
		return Proof{}, err
	}
	if reference == "" {
		return Proof{}, errs.NewValueIsRequiredError("proof reference")
	}
	if receivedBy == "" {
		return Proof{}, errs.NewValueIsRequiredError("proof receivedBy")
	}

	return Proof{
		kind:       kind,
		reference:  reference,
		receivedBy: receivedBy,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate checks that the Proof was created through the constructor.
func (p Proof) Validate() error {
	return p.guard.Validate(ErrProofIsNotConstructed)
}

// Kind returns the kind of evidence captured.
func (p Proof) Kind() ProofKind {
	return p.kind
}

// Reference returns the artifact reference (signature id, photo id or PIN receipt).
func (p Proof) Reference() string {
	return p.reference
}

// ReceivedBy returns the name of the person who accepted the delivery.
func (p Proof) ReceivedBy() string {
	return p.receivedBy
}
