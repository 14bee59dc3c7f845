package route

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrRouteIsNotConstructed is returned when a Route instance was not created
// through NewRoute or RestoreRoute.
var ErrRouteIsNotConstructed = errs.NewValueIsRequiredError(
	"route must be created via NewRoute or RestoreRoute constructors")

// Progress holds the per-route stop counters maintained as stops advance.
type Progress struct {
	Pending   int
	Completed int
	Failed    int
}

// Route is the aggregate root for one driver's ordered sequence of stops on a
// service date.
//
// Route follows these invariants:
//   - The stop-id list is always a permutation of exactly the stops assigned
//     to this route: resequencing never adds, drops or duplicates ids
//   - Status transitions follow the state machine defined on Status
//   - Can only be created through NewRoute or RestoreRoute
type Route struct {
	id          kernel.UUID
	driverID    kernel.UUID
	serviceDate time.Time

	plannedStart time.Time
	stopIDs      []kernel.UUID

	status Status

	totalDistanceKm      float64
	totalDurationMinutes float64
	optimizationMethod   string
	optimizationScore    float64
	optimizedAt          *time.Time

	progress Progress

	guard guard.ConstructorGuard
}

// NewRoute creates a planned Route for a driver with no stops yet.
// PlannedStart is the departure time ETAs are chained from.
func NewRoute(
	id kernel.UUID,
	driverID kernel.UUID,
	serviceDate time.Time,
	plannedStart time.Time,
) (*Route, error) {
	r := &Route{
		status: StatusPlanned,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		r.setID(id),
		r.setDriverID(driverID),
		r.setServiceDate(serviceDate),
		r.setPlannedStart(plannedStart),
	); err != nil {
		return nil, err
	}

	return r, nil
}

// RestoreRoute reconstructs a Route from persistence with all attributes.
func RestoreRoute(
	id kernel.UUID,
	driverID kernel.UUID,
	serviceDate time.Time,
	plannedStart time.Time,
	stopIDs []kernel.UUID,
	status Status,
	totalDistanceKm float64,
	totalDurationMinutes float64,
	optimizationMethod string,
	optimizationScore float64,
	optimizedAt *time.Time,
	progress Progress,
) (*Route, error) {
	r, err := NewRoute(id, driverID, serviceDate, plannedStart)
	if err != nil {
		return nil, err
	}

	if err = status.Validate(); err != nil {
		return nil, err
	}
	if err = validateSequence(stopIDs); err != nil {
		return nil, err
	}

	r.stopIDs = append([]kernel.UUID(nil), stopIDs...)
	r.status = status
	r.totalDistanceKm = totalDistanceKm
	r.totalDurationMinutes = totalDurationMinutes
	r.optimizationMethod = optimizationMethod
	r.optimizationScore = optimizationScore
	r.optimizedAt = optimizedAt
	r.progress = progress

	return r, nil
}

// Validate ensures the Route instance was properly constructed.
func (r *Route) Validate() error {
	if r == nil {
		return ErrRouteIsNotConstructed
	}
	return r.guard.Validate(ErrRouteIsNotConstructed)
}

// IsEqual compares two routes by their unique identifiers.
func (r *Route) IsEqual(other *Route) bool {
	return other != nil && r.id.IsEqual(other.id)
}

// ID returns the route's unique identifier.
func (r *Route) ID() kernel.UUID {
	return r.id
}

// DriverID returns the assigned driver's identifier.
func (r *Route) DriverID() kernel.UUID {
	return r.driverID
}

// ServiceDate returns the date the route is planned for.
func (r *Route) ServiceDate() time.Time {
	return r.serviceDate
}

// PlannedStart returns the planned departure time from the depot.
func (r *Route) PlannedStart() time.Time {
	return r.plannedStart
}

// StopIDs returns a copy of the ordered stop-id sequence.
func (r *Route) StopIDs() []kernel.UUID {
	return append([]kernel.UUID(nil), r.stopIDs...)
}

// StopCount returns the number of stops on the route.
func (r *Route) StopCount() int {
	return len(r.stopIDs)
}

// Status returns the current lifecycle status.
func (r *Route) Status() Status {
	return r.status
}

// TotalDistanceKm returns the optimized tour distance.
func (r *Route) TotalDistanceKm() float64 {
	return r.totalDistanceKm
}

// TotalDurationMinutes returns the estimated driving plus service time.
func (r *Route) TotalDurationMinutes() float64 {
	return r.totalDurationMinutes
}

// OptimizationMethod returns the strategy name recorded by the optimizer.
func (r *Route) OptimizationMethod() string {
	return r.optimizationMethod
}

// OptimizationScore returns the recorded improvement percentage.
func (r *Route) OptimizationScore() float64 {
	return r.optimizationScore
}

// OptimizedAt returns when the sequence was last optimized, or nil.
func (r *Route) OptimizedAt() *time.Time {
	return r.optimizedAt
}

// Progress returns the per-route stop counters.
func (r *Route) Progress() Progress {
	return r.progress
}

// AddStop appends a stop id to the sequence. Only allowed while the route is
// still planned; duplicates violate the permutation invariant and are
// rejected.
func (r *Route) AddStop(stopID kernel.UUID) error {
	if err := stopID.Validate(); err != nil {
		return err
	}
	if r.status != StatusPlanned {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%s is not a valid status to add stops", r.status))
	}
	for _, existing := range r.stopIDs {
		if existing.IsEqual(stopID) {
			return errs.NewValueIsInvalidErrorWithCause(
				"stopID", fmt.Errorf("stop %s is already on the route", stopID))
		}
	}

	r.stopIDs = append(r.stopIDs, stopID)
	r.progress.Pending++
	return nil
}

// ApplyOptimization records the optimizer's result: the final visiting
// sequence plus tour metrics. The sequence must be a permutation of the
// currently assigned stops.
func (r *Route) ApplyOptimization(
	sequence []kernel.UUID,
	totalDistanceKm float64,
	totalDurationMinutes float64,
	method string,
	score float64,
	at time.Time,
) error {
	if err := r.validatePermutation(sequence); err != nil {
		return err
	}
	if method == "" {
		return errs.NewValueIsRequiredError("optimization method")
	}

	newStatus, err := r.status.Optimize()
	if err != nil {
		return err
	}

	r.stopIDs = append([]kernel.UUID(nil), sequence...)
	r.status = newStatus
	r.totalDistanceKm = totalDistanceKm
	r.totalDurationMinutes = totalDurationMinutes
	r.optimizationMethod = method
	r.optimizationScore = score
	r.optimizedAt = &at
	return nil
}

// Dispatch hands the optimized route to its driver. The caller flips the
// route's stops to en_route in the same transaction.
func (r *Route) Dispatch() error {
	if len(r.stopIDs) == 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"stopIDs", errors.New("route has no stops to dispatch"))
	}

	newStatus, err := r.status.Dispatch()
	if err != nil {
		return err
	}

	r.status = newStatus
	return nil
}

// UpdateProgress replaces the per-route stop counters. Called whenever one of
// the route's stops changes status.
func (r *Route) UpdateProgress(progress Progress) {
	r.progress = progress
}

// Complete closes an in_progress route once every stop reached a terminal
// status.
func (r *Route) Complete() error {
	if r.progress.Pending > 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"progress", fmt.Errorf("%d stops are still open", r.progress.Pending))
	}

	newStatus, err := r.status.Complete()
	if err != nil {
		return err
	}

	r.status = newStatus
	return nil
}

// Cancel abandons the route before completion.
func (r *Route) Cancel() error {
	newStatus, err := r.status.Cancel()
	if err != nil {
		return err
	}

	r.status = newStatus
	return nil
}

// validatePermutation checks that sequence contains exactly the route's
// current stop ids with no duplicates, no omissions.
func (r *Route) validatePermutation(sequence []kernel.UUID) error {
	if len(sequence) != len(r.stopIDs) {
		return errs.NewValueIsInvalidErrorWithCause(
			"sequence", fmt.Errorf("sequence has %d stops, route has %d",
				len(sequence), len(r.stopIDs)))
	}

	current := make(map[string]struct{}, len(r.stopIDs))
	for _, id := range r.stopIDs {
		current[id.String()] = struct{}{}
	}

	seen := make(map[string]struct{}, len(sequence))
	for _, id := range sequence {
		key := id.String()
		if _, ok := current[key]; !ok {
			return errs.NewValueIsInvalidErrorWithCause(
				"sequence", fmt.Errorf("stop %s is not assigned to the route", key))
		}
		if _, dup := seen[key]; dup {
			return errs.NewValueIsInvalidErrorWithCause(
				"sequence", fmt.Errorf("stop %s appears twice in the sequence", key))
		}
		seen[key] = struct{}{}
	}

	return nil
}

func validateSequence(stopIDs []kernel.UUID) error {
	seen := make(map[string]struct{}, len(stopIDs))
	for _, id := range stopIDs {
		if err := id.Validate(); err != nil {
			return err
		}
		key := id.String()
		if _, dup := seen[key]; dup {
			return errs.NewValueIsInvalidErrorWithCause(
				"stopIDs", fmt.Errorf("stop %s appears twice", key))
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (r *Route) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Route) setDriverID(driverID kernel.UUID) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	r.driverID = driverID
	return nil
}

func (r *Route) setServiceDate(serviceDate time.Time) error {
	if serviceDate.IsZero() {
		return errs.NewValueIsRequiredError("serviceDate")
	}
	r.serviceDate = serviceDate
	return nil
}

func (r *Route) setPlannedStart(plannedStart time.Time) error {
	if plannedStart.IsZero() {
		return errs.NewValueIsRequiredError("plannedStart")
	}
	r.plannedStart = plannedStart
	return nil
}
