package driver

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrDriverIsNotConstructed is returned when a Driver instance was not created
// through NewDriver or RestoreDriver.
var ErrDriverIsNotConstructed = errs.NewValueIsRequiredError(
	"driver must be created via NewDriver or RestoreDriver constructors")

// locationStaleAfter is how long a reported position stays usable for
// geofence and ETA decisions.
const locationStaleAfter = 5 * time.Minute

// Driver is the aggregate root for a delivery driver: vehicle capability,
// serviceable zones, availability and the last reported position.
//
// Driver follows these invariants:
//   - At most one active route per service date, enforced through the
//     reservation counter committed by the repository's compare-and-set
//   - A position older than five minutes is stale and excluded from
//     tracking decisions
//   - Can only be created through NewDriver or RestoreDriver
type Driver struct {
	id   kernel.UUID
	name string

	vehicleType     string
	capacity        kernel.Capacity
	hasColdStorage  bool
	serviceableZone map[string]struct{}

	isActive    bool
	isAvailable bool
	isVerified  bool

	rating     float64
	onTimeRate float64

	currentLocation *kernel.Location
	locationSeenAt  *time.Time

	activeRouteCount int

	guard guard.ConstructorGuard
}

// NewDriver creates an active, available Driver. Zones limit where the driver
// may be assigned; an empty zone set means the driver serves every zone.
func NewDriver(
	id kernel.UUID,
	name string,
	vehicleType string,
	capacity kernel.Capacity,
	hasColdStorage bool,
	zones []string,
) (*Driver, error) {
	d := &Driver{
		hasColdStorage: hasColdStorage,
		isActive:       true,
		isAvailable:    true,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setName(name),
		d.setVehicleType(vehicleType),
		d.setCapacity(capacity),
		d.setZones(zones),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// RestoreDriver reconstructs a Driver from persistence with all attributes.
func RestoreDriver(
	id kernel.UUID,
	name string,
	vehicleType string,
	capacity kernel.Capacity,
	hasColdStorage bool,
	zones []string,
	isActive bool,
	isAvailable bool,
	isVerified bool,
	rating float64,
	onTimeRate float64,
	currentLocation *kernel.Location,
	locationSeenAt *time.Time,
	activeRouteCount int,
) (*Driver, error) {
	d, err := NewDriver(id, name, vehicleType, capacity, hasColdStorage, zones)
	if err != nil {
		return nil, err
	}

	if currentLocation != nil {
		if err = currentLocation.Validate(); err != nil {
			return nil, err
		}
		if locationSeenAt == nil {
			return nil, errs.NewValueIsRequiredError("locationSeenAt")
		}
	}
	if activeRouteCount < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"activeRouteCount", fmt.Errorf("%d is negative", activeRouteCount))
	}
	if err = d.SetPerformance(rating, onTimeRate); err != nil {
		return nil, err
	}

	d.isActive = isActive
	d.isAvailable = isAvailable
	d.isVerified = isVerified
	d.currentLocation = currentLocation
	d.locationSeenAt = locationSeenAt
	d.activeRouteCount = activeRouteCount

	return d, nil
}

// Validate ensures the Driver instance was properly constructed.
func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

// IsEqual compares two drivers by their unique identifiers.
func (d *Driver) IsEqual(other *Driver) bool {
	return other != nil && d.id.IsEqual(other.id)
}

// ID returns the driver's unique identifier.
func (d *Driver) ID() kernel.UUID {
	return d.id
}

// Name returns the driver's display name.
func (d *Driver) Name() string {
	return d.name
}

// VehicleType returns the vehicle class the driver operates.
func (d *Driver) VehicleType() string {
	return d.vehicleType
}

// Capacity returns the vehicle's carrying capacity.
func (d *Driver) Capacity() kernel.Capacity {
	return d.capacity
}

// HasColdStorage reports whether the vehicle supports cold-chain transport.
func (d *Driver) HasColdStorage() bool {
	return d.hasColdStorage
}

// Zones returns the names of zones the driver may serve.
// Empty means unrestricted.
func (d *Driver) Zones() []string {
	zones := make([]string, 0, len(d.serviceableZone))
	for zone := range d.serviceableZone {
		zones = append(zones, zone)
	}
	return zones
}

// ServesZone reports whether the driver may be assigned work in the zone.
// Drivers with no zone restrictions serve every zone.
func (d *Driver) ServesZone(zone string) bool {
	if len(d.serviceableZone) == 0 {
		return true
	}
	_, ok := d.serviceableZone[zone]
	return ok
}

// IsActive reports whether the driver is employed and working.
func (d *Driver) IsActive() bool {
	return d.isActive
}

// IsAvailable reports whether the driver is currently accepting routes.
func (d *Driver) IsAvailable() bool {
	return d.isAvailable
}

// IsVerified reports whether the driver passed identity verification.
func (d *Driver) IsVerified() bool {
	return d.isVerified
}

// Rating returns the average customer rating, 0 to 5.
func (d *Driver) Rating() float64 {
	return d.rating
}

// OnTimeRate returns the on-time delivery percentage, 0 to 100.
func (d *Driver) OnTimeRate() float64 {
	return d.onTimeRate
}

// CurrentLocation returns the last reported position, or nil if never seen.
func (d *Driver) CurrentLocation() *kernel.Location {
	return d.currentLocation
}

// LocationSeenAt returns when the position was last reported, or nil.
func (d *Driver) LocationSeenAt() *time.Time {
	return d.locationSeenAt
}

// ActiveRouteCount returns the number of routes currently assigned.
func (d *Driver) ActiveRouteCount() int {
	return d.activeRouteCount
}

// SetAvailability updates the active/available flags.
func (d *Driver) SetAvailability(active bool, available bool) {
	d.isActive = active
	d.isAvailable = available
}

// SetVerified updates the identity-verification flag.
func (d *Driver) SetVerified(verified bool) {
	d.isVerified = verified
}

// SetPerformance updates the ranking inputs: rating in [0, 5] and on-time
// percentage in [0, 100].
func (d *Driver) SetPerformance(rating float64, onTimeRate float64) error {
	if rating < 0 || rating > 5 {
		return errs.NewValueIsOutOfRangeError("rating", rating, 0, 5)
	}
	if onTimeRate < 0 || onTimeRate > 100 {
		return errs.NewValueIsOutOfRangeError("onTimeRate", onTimeRate, 0, 100)
	}

	d.rating = rating
	d.onTimeRate = onTimeRate
	return nil
}

// UpdateLocation records a position report.
func (d *Driver) UpdateLocation(location kernel.Location, at time.Time) error {
	if err := location.Validate(); err != nil {
		return err
	}
	if at.IsZero() {
		return errs.NewValueIsRequiredError("at")
	}

	d.currentLocation = &location
	d.locationSeenAt = &at
	return nil
}

// IsLocationStale reports whether the last position is too old for geofence
// and ETA decisions. A driver that never reported a position is stale.
func (d *Driver) IsLocationStale(now time.Time) bool {
	if d.currentLocation == nil || d.locationSeenAt == nil {
		return true
	}
	return now.Sub(*d.locationSeenAt) > locationStaleAfter
}

// ReserveRoute increments the active-route counter. The repository commits
// the increment with a compare-and-set on the previous count so two
// concurrent scheduling runs can never double-book the driver.
func (d *Driver) ReserveRoute() error {
	if !d.isActive || !d.isAvailable {
		return errs.NewValueIsInvalidErrorWithCause(
			"driver", fmt.Errorf("driver %s is not available for reservation", d.id))
	}

	d.activeRouteCount++
	return nil
}

// ReleaseRoute decrements the active-route counter when a route terminates.
func (d *Driver) ReleaseRoute() error {
	if d.activeRouteCount == 0 {
		return errs.NewValueIsInvalidErrorWithCause(
			"activeRouteCount", errors.New("no active routes to release"))
	}

	d.activeRouteCount--
	return nil
}

func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Driver) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	d.name = name
	return nil
}

func (d *Driver) setVehicleType(vehicleType string) error {
	if vehicleType == "" {
		return errs.NewValueIsRequiredError("vehicleType")
	}
	d.vehicleType = vehicleType
	return nil
}

func (d *Driver) setCapacity(capacity kernel.Capacity) error {
	if err := capacity.Validate(); err != nil {
		return err
	}
	d.capacity = capacity
	return nil
}

func (d *Driver) setZones(zones []string) error {
	set := make(map[string]struct{}, len(zones))
	for _, zone := range zones {
		if zone == "" {
			return errs.NewValueIsRequiredError("zone name")
		}
		set[zone] = struct{}{}
	}
	d.serviceableZone = set
	return nil
}
