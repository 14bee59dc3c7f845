package stop

import (
	"fmt"
	"time"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrTimeWindowIsNotConstructed is returned when attempting to use an
// improperly initialized TimeWindow.
var ErrTimeWindowIsNotConstructed = errs.NewValueIsRequiredError(
	"time window must be created via NewTimeWindow constructor")

// TimeWindow is the interval within which a stop should be served.
// An ETA past End means the delivery is running late.
type TimeWindow struct {
	start time.Time
	end   time.Time
	guard guard.ConstructorGuard
}

// NewTimeWindow creates a TimeWindow. End must be strictly after start.
func NewTimeWindow(start time.Time, end time.Time) (TimeWindow, error) {
	if start.IsZero() || end.IsZero() {
		return TimeWindow{}, errs.NewValueIsRequiredError("time window bounds")
	}
	if !end.After(start) {
		return TimeWindow{}, errs.NewValueIsInvalidErrorWithCause(
			"time window", fmt.Errorf("end %s is not after start %s", end, start))
	}

	return TimeWindow{start: start, end: end, guard: guard.NewConstructorGuard()}, nil
}

// Validate checks that the TimeWindow was created through the constructor.
func (w TimeWindow) Validate() error {
	return w.guard.Validate(ErrTimeWindowIsNotConstructed)
}

// Start returns the opening bound.
func (w TimeWindow) Start() time.Time {
	return w.start
}

// End returns the closing bound.
func (w TimeWindow) End() time.Time {
	return w.end
}

// Contains reports whether t falls within [start, end].
func (w TimeWindow) Contains(t time.Time) bool {
	return !t.Before(w.start) && !t.After(w.end)
}

// IsViolatedBy reports whether an estimated arrival misses the window.
func (w TimeWindow) IsViolatedBy(eta time.Time) bool {
	return eta.After(w.end)
}
