package stop

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of a stop.
// It implements a state machine with defined transitions:
//
//	pending ──> en_route ──> arrived ──> completed
//	    │           │            │
//	    └───────────┴────────────┴──> failed | cancelled | rescheduled
//
// Completed, failed, cancelled and rescheduled are terminal. Failed,
// cancelled and rescheduled are reachable from any non-terminal state.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// StatusPending is the initial status; the stop waits to be routed.
	StatusPending

	// StatusEnRoute means the owning route has been dispatched.
	StatusEnRoute

	// StatusArrived means the driver is at the stop location.
	StatusArrived

	// StatusCompleted means the delivery was handed over with proof.
	StatusCompleted

	// StatusFailed means the delivery attempt failed with a recorded reason.
	StatusFailed

	// StatusCancelled means the stop was cancelled before completion.
	StatusCancelled

	// StatusRescheduled means the stop was closed in favor of a clone on a
	// later service date.
	StatusRescheduled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:     "unknown",
		StatusPending:     "pending",
		StatusEnRoute:     "en_route",
		StatusArrived:     "arrived",
		StatusCompleted:   "completed",
		StatusFailed:      "failed",
		StatusCancelled:   "cancelled",
		StatusRescheduled: "rescheduled",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // StatusUnknown is intentionally excluded as it's invalid
	return map[Status]string{
		StatusPending:     "pending",
		StatusEnRoute:     "en_route",
		StatusArrived:     "arrived",
		StatusCompleted:   "completed",
		StatusFailed:      "failed",
		StatusCancelled:   "cancelled",
		StatusRescheduled: "rescheduled",
	}
}

// StatusFromString parses a Status from its string representation.
func StatusFromString(s string) (Status, error) {
	for status, str := range getValidStatusStrings() {
		if str == s {
			return status, nil
		}
	}
	return StatusUnknown, errs.NewValueIsInvalidErrorWithCause(
		"status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the lowercase snake_case name of the status.
// It implements fmt.Stringer and is safe on any value.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusRescheduled:
		return true
	case StatusUnknown, StatusPending, StatusEnRoute, StatusArrived:
		return false
	}
	return false
}

// MarkEnRoute transitions pending to en_route. Used when the owning route is
// dispatched.
func (s Status) MarkEnRoute() (Status, error) {
	if s != StatusPending {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to mark en_route", s),
		)
	}
	return StatusEnRoute, nil
}

// Arrive transitions en_route to arrived.
func (s Status) Arrive() (Status, error) {
	if s != StatusEnRoute {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to arrive from", s),
		)
	}
	return StatusArrived, nil
}

// Complete transitions arrived to completed.
func (s Status) Complete() (Status, error) {
	if s != StatusArrived {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to complete", s),
		)
	}
	return StatusCompleted, nil
}

// Fail transitions any non-terminal status to failed.
func (s Status) Fail() (Status, error) {
	if err := s.validateNonTerminal("fail"); err != nil {
		return 0, err
	}
	return StatusFailed, nil
}

// Cancel transitions any non-terminal status to cancelled.
func (s Status) Cancel() (Status, error) {
	if err := s.validateNonTerminal("cancel"); err != nil {
		return 0, err
	}
	return StatusCancelled, nil
}

// Reschedule transitions any non-terminal status to rescheduled.
func (s Status) Reschedule() (Status, error) {
	if err := s.validateNonTerminal("reschedule"); err != nil {
		return 0, err
	}
	return StatusRescheduled, nil
}

func (s Status) validateNonTerminal(action string) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.IsTerminal() {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is terminal and cannot %s", s, action),
		)
	}
	return nil
}
