package queries

import (
	"errors"
	"time"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrGetTrackingInfoQueryIsNotConstructed = errors.New(
	"GetTrackingInfoQuery must be created via NewGetTrackingInfoQuery constructor",
)

// GetTrackingInfoQuery retrieves the public tracking view for a stop by its
// tracking reference. The view is masked by default: the recipient name is
// reduced to its first character and the address to everything after the
// street segment. Supplying the access token from the recipient's
// notification link lifts the masking.
type GetTrackingInfoQuery struct {
	reference string
	token     string

	guard guard.ConstructorGuard
}

// NewGetTrackingInfoQuery creates a tracking query. Reference is required;
// token is optional and unmasks the response when it matches the stop's
// access token.
func NewGetTrackingInfoQuery(reference string, token string) (GetTrackingInfoQuery, error) {
	if reference == "" {
		return GetTrackingInfoQuery{}, errs.NewValueIsRequiredError("reference")
	}

	return GetTrackingInfoQuery{
		reference: reference,
		token:     token,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetTrackingInfoQuery) Validate() error {
	return q.guard.Validate(ErrGetTrackingInfoQueryIsNotConstructed)
}

// Reference returns the public tracking handle.
func (q GetTrackingInfoQuery) Reference() string {
	return q.reference
}

// Token returns the optional access token.
func (q GetTrackingInfoQuery) Token() string {
	return q.token
}

// GetTrackingInfoResponse is the recipient-facing tracking view. Statuses are
// translated to public labels and coordinates are never exposed.
type GetTrackingInfoResponse struct {
	Reference        string
	Status           string
	RecipientName    string
	Address          string
	ServiceDate      time.Time
	SequencePosition *int
	EstimatedArrival *time.Time
	ActualArrival    *time.Time
	CreatedAt        time.Time
	LastUpdatedAt    time.Time
}
