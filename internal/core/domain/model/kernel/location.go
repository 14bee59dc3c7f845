package kernel

import (
	"errors"
	"fmt"
	"math"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	// LatitudeMin is the minimum valid latitude in decimal degrees.
	LatitudeMin = -90.0
	// LatitudeMax is the maximum valid latitude in decimal degrees.
	LatitudeMax = 90.0
	// LongitudeMin is the minimum valid longitude in decimal degrees.
	LongitudeMin = -180.0
	// LongitudeMax is the maximum valid longitude in decimal degrees.
	LongitudeMax = 180.0

	// earthRadiusKm is the mean Earth radius used by the haversine formula.
	earthRadiusKm = 6371.0
)

// ErrLocationIsNotConstructed is returned when attempting to use an improperly
// initialized Location. Locations must be created via NewLocation or
// NewLocationWithAddress to ensure coordinate validity.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"location must be created via NewLocation or NewLocationWithAddress constructors")

// Location is an immutable geographic point with an optional human-readable
// address. The zero value is invalid and fails validation - use the
// constructors to create instances.
//
// Distances between locations are great-circle distances computed with the
// haversine formula. Haversine is symmetric by construction, which the
// distance matrix relies on.
//
// Example:
//
//	loc, err := kernel.NewLocation(-33.8688, 151.2093)
//	if err != nil {
//	    // handle validation error
//	}
//	km, _ := loc.DistanceKm(other)
type Location struct { //nolint:recvcheck //using for validation
	latitude  float64
	longitude float64
	address   string
	guard     guard.ConstructorGuard
}

// NewLocation creates a Location from decimal-degree coordinates.
// Latitude must lie in [-90, 90] and longitude in [-180, 180];
// violations are reported as out-of-range errors, joined when both fail.
func NewLocation(latitude float64, longitude float64) (Location, error) {
	loc := Location{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(loc.setLatitude(latitude), loc.setLongitude(longitude)); err != nil {
		return Location{}, err
	}

	return loc, nil
}

// NewLocationWithAddress creates a Location carrying the address string it was
// geocoded from. The address is informational only and takes no part in
// equality or distance calculations.
func NewLocationWithAddress(latitude float64, longitude float64, address string) (Location, error) {
	loc, err := NewLocation(latitude, longitude)
	if err != nil {
		return Location{}, err
	}

	loc.address = address
	return loc, nil
}

// Validate checks that the Location was created through a constructor.
// The zero value fails with ErrLocationIsNotConstructed.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Latitude returns the latitude in decimal degrees.
func (l Location) Latitude() float64 {
	return l.latitude
}

// Longitude returns the longitude in decimal degrees.
func (l Location) Longitude() float64 {
	return l.longitude
}

// Address returns the human-readable address, or "" when none was attached.
func (l Location) Address() string {
	return l.address
}

// String implements fmt.Stringer, formatting as "Location(lat,lng)".
func (l Location) String() string {
	return fmt.Sprintf("Location(%.6f,%.6f)", l.latitude, l.longitude)
}

// IsEqual compares two locations by coordinates, ignoring the address.
// Both locations must be properly constructed for the comparison to succeed.
func (l Location) IsEqual(other Location) (bool, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return false, err
	}

	return l.latitude == other.latitude && l.longitude == other.longitude, nil
}

// DistanceKm returns the great-circle distance to another location in
// kilometers. Both locations must be properly constructed.
// The result is symmetric: a.DistanceKm(b) == b.DistanceKm(a).
func (l Location) DistanceKm(other Location) (float64, error) {
	if err := errors.Join(l.Validate(), other.Validate()); err != nil {
		return 0, err
	}

	return haversineKm(l.latitude, l.longitude, other.latitude, other.longitude), nil
}

// DistanceMeters returns the great-circle distance to another location in meters.
func (l Location) DistanceMeters(other Location) (float64, error) {
	km, err := l.DistanceKm(other)
	if err != nil {
		return 0, err
	}
	return km * 1000, nil
}

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	latDiff := degToRad(lat2 - lat1)
	lngDiff := degToRad(lng2 - lng1)

	a := math.Sin(latDiff/2)*math.Sin(latDiff/2) +
		math.Cos(degToRad(lat1))*math.Cos(degToRad(lat2))*
			math.Sin(lngDiff/2)*math.Sin(lngDiff/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// setLatitude sets the latitude with validation.
// Note: pointer receiver on a private setter keeps validation self-encapsulated
// during construction while the public API stays value-based.
func (l *Location) setLatitude(latitude float64) error {
	if latitude < LatitudeMin || latitude > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, LatitudeMin, LatitudeMax)
	}

	l.latitude = latitude
	return nil
}

// setLongitude sets the longitude with validation.
func (l *Location) setLongitude(longitude float64) error {
	if longitude < LongitudeMin || longitude > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, LongitudeMin, LongitudeMax)
	}

	l.longitude = longitude
	return nil
}
