package stop

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Priority determines the order in which pending stops are picked up by the
// scheduler. Urgent groups are routed first, scheduled ones last.
type Priority int

const (
	// PriorityUnknown represents an invalid or undefined priority.
	PriorityUnknown Priority = iota

	// PriorityUrgent stops are scheduled before everything else.
	PriorityUrgent

	// PriorityHigh stops follow urgent ones.
	PriorityHigh

	// PriorityStandard is the default tier for regular deliveries.
	PriorityStandard

	// PriorityScheduled stops are pre-booked for a specific date and are
	// processed last within that date.
	PriorityScheduled
)

func getPriorityStrings() map[Priority]string {
	return map[Priority]string{
		PriorityUnknown:   "unknown",
		PriorityUrgent:    "urgent",
		PriorityHigh:      "high",
		PriorityStandard:  "standard",
		PriorityScheduled: "scheduled",
	}
}

func getValidPriorityStrings() map[Priority]string {
	//nolint:exhaustive // PriorityUnknown is intentionally excluded as it's invalid
	return map[Priority]string{
		PriorityUrgent:    "urgent",
		PriorityHigh:      "high",
		PriorityStandard:  "standard",
		PriorityScheduled: "scheduled",
	}
}

// PriorityProcessingOrder returns the priorities in scheduling order.
func PriorityProcessingOrder() []Priority {
	return []Priority{PriorityUrgent, PriorityHigh, PriorityStandard, PriorityScheduled}
}

// PriorityFromString parses a Priority from its string representation.
func PriorityFromString(s string) (Priority, error) {
	for p, str := range getValidPriorityStrings() {
		if str == s {
			return p, nil
		}
	}
	return PriorityUnknown, errs.NewValueIsInvalidErrorWithCause(
		"priority", fmt.Errorf("%q is not a valid priority", s))
}

// Validate checks if the Priority value is valid.
func (p Priority) Validate() error {
	if _, ok := getValidPriorityStrings()[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"priority", fmt.Errorf("%d is not a valid priority", p))
	}
	return nil
}

// String returns the lowercase name of the priority.
// It implements fmt.Stringer and is safe on any value.
func (p Priority) String() string {
	if str, ok := getPriorityStrings()[p]; ok {
		return str
	}
	return "unknown"
}
