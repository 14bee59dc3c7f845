package stop

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrStopIsNotConstructed is returned when a Stop instance was not created
// through NewStop or RestoreStop.
var ErrStopIsNotConstructed = errs.NewValueIsRequiredError(
	"stop must be created via NewStop or RestoreStop constructors")

// etaReannounceThreshold is the minimum ETA shift that gets persisted and
// re-announced. Smaller shifts are suppressed to avoid update storms.
const etaReannounceThreshold = 5 * time.Minute

// Stop is the aggregate root for a single delivery point: its location,
// recipient, resource demand, time window and lifecycle state.
//
// Stop follows these invariants:
//   - Belongs to at most one route at any time
//   - Sequence index is set only while assigned to a route
//   - Status transitions follow the state machine defined on Status
//   - Can only be created through NewStop or RestoreStop
type Stop struct {
	id        kernel.UUID
	reference string

	routeID  *kernel.UUID
	sequence *int

	location       kernel.Location
	recipientName  string
	recipientPhone string

	priority          Priority
	timeWindow        *TimeWindow
	demand            kernel.Capacity
	requiresColdChain bool

	// serviceTimeMinutes is the on-site handover duration added to ETAs.
	serviceTimeMinutes int

	codAmount    float64
	codCollected bool

	status           Status
	estimatedArrival *time.Time
	actualArrival    *time.Time
	proof            *Proof
	failureReason    *string

	serviceDate time.Time

	guard guard.ConstructorGuard
}

// NewStop creates a pending Stop with validation. Reference is the public
// tracking handle exposed to recipients. Optional attributes (recipient,
// time window, service time, cash on delivery) are attached via setters.
func NewStop(
	id kernel.UUID,
	reference string,
	location kernel.Location,
	priority Priority,
	demand kernel.Capacity,
	requiresColdChain bool,
	serviceDate time.Time,
) (*Stop, error) {
	s := &Stop{
		status:            StatusPending,
		requiresColdChain: requiresColdChain,
		guard:             guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setID(id),
		s.setReference(reference),
		s.setLocation(location),
		s.setPriority(priority),
		s.setDemand(demand),
		s.setServiceDate(serviceDate),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// RestoreStop reconstructs a Stop from persistence with all attributes.
// Unlike NewStop it accepts any valid status and the assignment fields.
func RestoreStop(
	id kernel.UUID,
	reference string,
	location kernel.Location,
	priority Priority,
	demand kernel.Capacity,
	requiresColdChain bool,
	serviceDate time.Time,
	status Status,
	routeID *kernel.UUID,
	sequence *int,
	recipientName string,
	recipientPhone string,
	timeWindow *TimeWindow,
	serviceTimeMinutes int,
	codAmount float64,
	codCollected bool,
	estimatedArrival *time.Time,
	actualArrival *time.Time,
	proof *Proof,
	failureReason *string,
) (*Stop, error) {
	s, err := NewStop(id, reference, location, priority, demand, requiresColdChain, serviceDate)
	if err != nil {
		return nil, err
	}

	if err = status.Validate(); err != nil {
		return nil, err
	}
	if routeID != nil {
		if err = routeID.Validate(); err != nil {
			return nil, err
		}
	}
	if sequence != nil && routeID == nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"sequence", errors.New("sequence is set without a route assignment"))
	}
	if timeWindow != nil {
		if err = timeWindow.Validate(); err != nil {
			return nil, err
		}
	}
	if proof != nil {
		if err = proof.Validate(); err != nil {
			return nil, err
		}
	}
	if serviceTimeMinutes < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"serviceTimeMinutes", fmt.Errorf("%d is negative", serviceTimeMinutes))
	}
	if codAmount < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"codAmount", fmt.Errorf("%v is negative", codAmount))
	}

	s.status = status
	s.routeID = routeID
	s.sequence = sequence
	s.recipientName = recipientName
	s.recipientPhone = recipientPhone
	s.timeWindow = timeWindow
	s.serviceTimeMinutes = serviceTimeMinutes
	s.codAmount = codAmount
	s.codCollected = codCollected
	s.estimatedArrival = estimatedArrival
	s.actualArrival = actualArrival
	s.proof = proof
	s.failureReason = failureReason

	return s, nil
}

// Validate ensures the Stop instance was properly constructed.
func (s *Stop) Validate() error {
	if s == nil {
		return ErrStopIsNotConstructed
	}
	return s.guard.Validate(ErrStopIsNotConstructed)
}

// IsEqual compares two stops by their unique identifiers.
func (s *Stop) IsEqual(other *Stop) bool {
	return other != nil && s.id.IsEqual(other.id)
}

// ID returns the stop's unique identifier.
func (s *Stop) ID() kernel.UUID {
	return s.id
}

// Reference returns the public tracking handle.
func (s *Stop) Reference() string {
	return s.reference
}

// RouteID returns the owning route's ID, or nil while unassigned.
func (s *Stop) RouteID() *kernel.UUID {
	return s.routeID
}

// Sequence returns the 1-based visiting position within the route,
// or nil while unassigned.
func (s *Stop) Sequence() *int {
	return s.sequence
}

// Location returns the delivery destination.
func (s *Stop) Location() kernel.Location {
	return s.location
}

// RecipientName returns the recipient's full name, or "" if not captured.
func (s *Stop) RecipientName() string {
	return s.recipientName
}

// RecipientPhone returns the recipient's phone number, or "" if not captured.
func (s *Stop) RecipientPhone() string {
	return s.recipientPhone
}

// Priority returns the scheduling priority tier.
func (s *Stop) Priority() Priority {
	return s.priority
}

// TimeWindow returns the delivery window, or nil when unconstrained.
func (s *Stop) TimeWindow() *TimeWindow {
	return s.timeWindow
}

// Demand returns the weight/volume this stop places on a vehicle.
func (s *Stop) Demand() kernel.Capacity {
	return s.demand
}

// RequiresColdChain reports whether refrigerated transport is required.
func (s *Stop) RequiresColdChain() bool {
	return s.requiresColdChain
}

// ServiceTimeMinutes returns the on-site handover duration.
func (s *Stop) ServiceTimeMinutes() int {
	return s.serviceTimeMinutes
}

// CODAmount returns the cash-on-delivery amount, zero when none is due.
func (s *Stop) CODAmount() float64 {
	return s.codAmount
}

// CODCollected reports whether the cash-on-delivery amount was collected.
func (s *Stop) CODCollected() bool {
	return s.codCollected
}

// Status returns the current lifecycle status.
func (s *Stop) Status() Status {
	return s.status
}

// EstimatedArrival returns the last persisted ETA, or nil.
func (s *Stop) EstimatedArrival() *time.Time {
	return s.estimatedArrival
}

// ActualArrival returns the recorded arrival time, or nil.
func (s *Stop) ActualArrival() *time.Time {
	return s.actualArrival
}

// Proof returns the completion evidence, or nil before completion.
func (s *Stop) Proof() *Proof {
	return s.proof
}

// FailureReason returns the recorded failure reason, or nil.
func (s *Stop) FailureReason() *string {
	return s.failureReason
}

// ServiceDate returns the date the stop is planned for.
func (s *Stop) ServiceDate() time.Time {
	return s.serviceDate
}

// SetRecipient attaches the recipient's identity. Name is required.
func (s *Stop) SetRecipient(name string, phone string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("recipient name")
	}
	s.recipientName = name
	s.recipientPhone = phone
	return nil
}

// SetTimeWindow attaches a delivery window.
func (s *Stop) SetTimeWindow(w TimeWindow) error {
	if err := w.Validate(); err != nil {
		return err
	}
	s.timeWindow = &w
	return nil
}

// SetServiceTime sets the expected on-site handover duration in minutes.
func (s *Stop) SetServiceTime(minutes int) error {
	if minutes < 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"serviceTimeMinutes", fmt.Errorf("%d is negative", minutes))
	}
	s.serviceTimeMinutes = minutes
	return nil
}

// SetCashOnDelivery sets the amount to collect at handover.
func (s *Stop) SetCashOnDelivery(amount float64) error {
	if amount <= 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"codAmount", fmt.Errorf("%v is not greater than 0", amount))
	}
	s.codAmount = amount
	return nil
}

// AssignToRoute places the stop onto a route at the given 1-based sequence
// position. A stop belongs to at most one route, so assignment requires the
// stop to be pending and unassigned.
func (s *Stop) AssignToRoute(routeID kernel.UUID, sequence int) error {
	if err := routeID.Validate(); err != nil {
		return err
	}
	if s.status != StatusPending {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%s is not a valid status to assign to a route", s.status))
	}
	if s.routeID != nil {
		return errs.NewValueIsInvalidErrorWithCause(
			"routeID", fmt.Errorf("stop is already assigned to route %s", s.routeID))
	}
	if sequence < 1 {
		return errs.NewValueIsOutOfRangeError("sequence", sequence, 1, "route length")
	}

	s.routeID = &routeID
	s.sequence = &sequence
	return nil
}

// Resequence moves the stop to a new visiting position within its route.
// The optimizer reorders sequences but never changes route membership.
func (s *Stop) Resequence(sequence int) error {
	if s.routeID == nil {
		return errs.NewValueIsInvalidErrorWithCause(
			"routeID", errors.New("stop is not assigned to a route"))
	}
	if s.status != StatusPending && s.status != StatusEnRoute {
		return errs.NewValueIsInvalidErrorWithCause(
			"status", fmt.Errorf("%s is not a valid status to resequence", s.status))
	}
	if sequence < 1 {
		return errs.NewValueIsOutOfRangeError("sequence", sequence, 1, "route length")
	}

	s.sequence = &sequence
	return nil
}

// MarkEnRoute flips the stop to en_route when its route is dispatched.
func (s *Stop) MarkEnRoute() error {
	newStatus, err := s.status.MarkEnRoute()
	if err != nil {
		return err
	}
	s.status = newStatus
	return nil
}

// Arrive records the driver's arrival at the stop.
func (s *Stop) Arrive(at time.Time) error {
	newStatus, err := s.status.Arrive()
	if err != nil {
		return err
	}

	s.status = newStatus
	s.actualArrival = &at
	return nil
}

// Complete closes the stop with proof of delivery. When the stop carries a
// cash-on-delivery amount and the payload confirms collection, the amount is
// marked collected.
func (s *Stop) Complete(proof Proof, codCollected bool) error {
	if err := proof.Validate(); err != nil {
		return err
	}

	newStatus, err := s.status.Complete()
	if err != nil {
		return err
	}

	s.status = newStatus
	s.proof = &proof
	s.codCollected = codCollected && s.codAmount > 0
	return nil
}

// Fail closes the stop with a required reason.
// Whether the reason raises an incident is decided by IsCriticalFailure.
func (s *Stop) Fail(reason string) error {
	if reason == "" {
		return errs.NewValueIsRequiredError("failure reason")
	}

	newStatus, err := s.status.Fail()
	if err != nil {
		return err
	}

	s.status = newStatus
	s.failureReason = &reason
	return nil
}

// IsCriticalFailure reports whether the stop failed with a reason that
// requires an incident report.
func (s *Stop) IsCriticalFailure() bool {
	return s.status == StatusFailed &&
		s.failureReason != nil &&
		IsCriticalFailureReason(*s.failureReason)
}

// Cancel closes the stop without a delivery attempt.
func (s *Stop) Cancel() error {
	newStatus, err := s.status.Cancel()
	if err != nil {
		return err
	}
	s.status = newStatus
	return nil
}

// RescheduleTo closes this stop as rescheduled and returns a pending clone
// planned for the new service date. The clone keeps the public tracking
// reference so recipients follow a single handle across attempts.
func (s *Stop) RescheduleTo(newID kernel.UUID, serviceDate time.Time) (*Stop, error) {
	if err := newID.Validate(); err != nil {
		return nil, err
	}
	if !serviceDate.After(s.serviceDate) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"serviceDate", fmt.Errorf("%s is not after current service date %s",
				serviceDate.Format(time.DateOnly), s.serviceDate.Format(time.DateOnly)))
	}

	newStatus, err := s.status.Reschedule()
	if err != nil {
		return nil, err
	}

	clone, err := NewStop(newID, s.reference, s.location, s.priority, s.demand,
		s.requiresColdChain, serviceDate)
	if err != nil {
		return nil, err
	}

	clone.recipientName = s.recipientName
	clone.recipientPhone = s.recipientPhone
	clone.timeWindow = s.timeWindow
	clone.serviceTimeMinutes = s.serviceTimeMinutes
	clone.codAmount = s.codAmount

	s.status = newStatus
	return clone, nil
}

// UpdateEstimatedArrival stores a recomputed ETA and reports whether it was
// persisted. Shifts smaller than five minutes against the previously stored
// ETA are suppressed so downstream consumers are not flooded.
func (s *Stop) UpdateEstimatedArrival(eta time.Time) bool {
	if s.estimatedArrival != nil {
		diff := eta.Sub(*s.estimatedArrival)
		if diff < 0 {
			diff = -diff
		}
		if diff <= etaReannounceThreshold {
			return false
		}
	}

	s.estimatedArrival = &eta
	return true
}

// IsRunningLate reports whether the stored ETA misses the time window.
// Stops without a window or without an ETA are never late.
func (s *Stop) IsRunningLate() bool {
	return s.timeWindow != nil &&
		s.estimatedArrival != nil &&
		s.timeWindow.IsViolatedBy(*s.estimatedArrival)
}

func (s *Stop) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *Stop) setReference(reference string) error {
	if reference == "" {
		return errs.NewValueIsRequiredError("reference")
	}
	s.reference = reference
	return nil
}

func (s *Stop) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	s.location = location
	return nil
}

func (s *Stop) setPriority(priority Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	s.priority = priority
	return nil
}

func (s *Stop) setDemand(demand kernel.Capacity) error {
	if err := demand.Validate(); err != nil {
		return err
	}
	s.demand = demand
	return nil
}

func (s *Stop) setServiceDate(serviceDate time.Time) error {
	if serviceDate.IsZero() {
		return errs.NewValueIsRequiredError("serviceDate")
	}
	s.serviceDate = serviceDate
	return nil
}
