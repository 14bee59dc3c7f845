package kernel

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrCapacityIsNotConstructed is returned when attempting to use an improperly
// initialized Capacity.
var ErrCapacityIsNotConstructed = errs.NewValueIsRequiredError(
	"capacity must be created via NewCapacity or EmptyCapacity constructors")

// Capacity is a weight/volume pair used both as a vehicle's carrying capacity
// and as the demand a set of stops places on it.
type Capacity struct {
	weightKg float64
	volumeM3 float64
	guard    guard.ConstructorGuard
}

// NewCapacity creates a Capacity. Both components must be non-negative.
func NewCapacity(weightKg float64, volumeM3 float64) (Capacity, error) {
	var joined error
	if weightKg < 0 {
		joined = errors.Join(joined, errs.NewValueIsInvalidErrorWithCause(
			"weightKg", fmt.Errorf("%v is negative", weightKg)))
	}
	if volumeM3 < 0 {
		joined = errors.Join(joined, errs.NewValueIsInvalidErrorWithCause(
			"volumeM3", fmt.Errorf("%v is negative", volumeM3)))
	}
	if joined != nil {
		return Capacity{}, joined
	}

	return Capacity{
		weightKg: weightKg,
		volumeM3: volumeM3,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// EmptyCapacity returns a zero-demand Capacity.
func EmptyCapacity() Capacity {
	return Capacity{guard: guard.NewConstructorGuard()}
}

// Validate checks that the Capacity was created through a constructor.
func (c Capacity) Validate() error {
	return c.guard.Validate(ErrCapacityIsNotConstructed)
}

// WeightKg returns the weight component in kilograms.
func (c Capacity) WeightKg() float64 {
	return c.weightKg
}

// VolumeM3 returns the volume component in cubic meters.
func (c Capacity) VolumeM3() float64 {
	return c.volumeM3
}

// Add returns the component-wise sum of two capacities.
func (c Capacity) Add(other Capacity) (Capacity, error) {
	if err := errors.Join(c.Validate(), other.Validate()); err != nil {
		return Capacity{}, err
	}

	return Capacity{
		weightKg: c.weightKg + other.weightKg,
		volumeM3: c.volumeM3 + other.volumeM3,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Fits reports whether the required demand fits within this capacity
// on both components.
func (c Capacity) Fits(required Capacity) (bool, error) {
	if err := errors.Join(c.Validate(), required.Validate()); err != nil {
		return false, err
	}

	return required.weightKg <= c.weightKg && required.volumeM3 <= c.volumeM3, nil
}

// IsEqual compares two capacities component-wise.
func (c Capacity) IsEqual(other Capacity) bool {
	return c.weightKg == other.weightKg && c.volumeM3 == other.volumeM3
}

// String implements fmt.Stringer.
func (c Capacity) String() string {
	return fmt.Sprintf("Capacity(%.2fkg,%.3fm3)", c.weightKg, c.volumeM3)
}
