package route

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Status represents the lifecycle state of a route.
//
// State transitions:
//
//	planned ──> optimized ──> in_progress ──> completed
//	    │           │              │
//	    └───────────┴──────────────┴──> cancelled
//
// Re-optimization is allowed while the route is optimized but not yet
// dispatched.
type Status int

const (
	// StatusUnknown represents an invalid or undefined status.
	StatusUnknown Status = iota

	// StatusPlanned means stops are assigned but the sequence is the
	// scheduler's initial order.
	StatusPlanned

	// StatusOptimized means the optimizer has produced the final sequence.
	StatusOptimized

	// StatusInProgress means the route has been dispatched to its driver.
	StatusInProgress

	// StatusCompleted means every stop reached a terminal status.
	StatusCompleted

	// StatusCancelled means the route was abandoned before completion.
	StatusCancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		StatusUnknown:    "unknown",
		StatusPlanned:    "planned",
		StatusOptimized:  "optimized",
		StatusInProgress: "in_progress",
		StatusCompleted:  "completed",
		StatusCancelled:  "cancelled",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // StatusUnknown is intentionally excluded as it's invalid
	return map[Status]string{
		StatusPlanned:    "planned",
		StatusOptimized:  "optimized",
		StatusInProgress: "in_progress",
		StatusCompleted:  "completed",
		StatusCancelled:  "cancelled",
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

// IsActive reports whether the route is dispatched and being driven.
func (s Status) IsActive() bool {
	return s == StatusInProgress
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Optimize transitions planned or optimized to optimized.
func (s Status) Optimize() (Status, error) {
	if s != StatusPlanned && s != StatusOptimized {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to optimize", s),
		)
	}
	return StatusOptimized, nil
}

// Dispatch transitions optimized to in_progress.
func (s Status) Dispatch() (Status, error) {
	if s != StatusOptimized {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to dispatch", s),
		)
	}
	return StatusInProgress, nil
}

// Complete transitions in_progress to completed.
func (s Status) Complete() (Status, error) {
	if s != StatusInProgress {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to complete", s),
		)
	}
	return StatusCompleted, nil
}

// Cancel transitions any non-terminal status to cancelled.
func (s Status) Cancel() (Status, error) {
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if s.IsTerminal() {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is terminal and cannot be cancelled", s),
		)
	}
	return StatusCancelled, nil
}
