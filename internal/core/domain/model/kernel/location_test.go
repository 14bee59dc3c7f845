package kernel_test

import (
	"testing"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocation(t *testing.T) {
	t.Run("valid coordinates", func(t *testing.T) {
		loc, err := kernel.NewLocation(-33.8688, 151.2093)

		require.NoError(t, err)
		assert.InDelta(t, -33.8688, loc.Latitude(), 1e-9)
		assert.InDelta(t, 151.2093, loc.Longitude(), 1e-9)
		assert.Empty(t, loc.Address())
	})

	t.Run("boundary coordinates are valid", func(t *testing.T) {
		for _, coords := range [][2]float64{
			{kernel.LatitudeMin, 0},
			{kernel.LatitudeMax, 0},
			{0, kernel.LongitudeMin},
			{0, kernel.LongitudeMax},
		} {
			_, err := kernel.NewLocation(coords[0], coords[1])
			require.NoError(t, err)
		}
	})

	t.Run("latitude out of range", func(t *testing.T) {
		_, err := kernel.NewLocation(91, 151.2093)

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("longitude out of range", func(t *testing.T) {
		_, err := kernel.NewLocation(-33.8688, -181)

		require.Error(t, err)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("both out of range joins errors", func(t *testing.T) {
		_, err := kernel.NewLocation(-100, 200)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "latitude")
		assert.Contains(t, err.Error(), "longitude")
	})
}

func TestNewLocationWithAddress(t *testing.T) {
	loc, err := kernel.NewLocationWithAddress(-33.7169, 150.9050, "Flemington NSW 2140")

	require.NoError(t, err)
	assert.Equal(t, "Flemington NSW 2140", loc.Address())
}

func TestLocation_Validate(t *testing.T) {
	t.Run("zero value is invalid", func(t *testing.T) {
		var loc kernel.Location

		require.Error(t, loc.Validate())
	})

	t.Run("constructed location is valid", func(t *testing.T) {
		loc, _ := kernel.NewLocation(-33.8688, 151.2093)

		require.NoError(t, loc.Validate())
	})
}

func TestLocation_IsEqual(t *testing.T) {
	a, _ := kernel.NewLocation(-33.8688, 151.2093)
	b, _ := kernel.NewLocation(-33.8688, 151.2093)
	c, _ := kernel.NewLocation(-33.7169, 150.9050)

	equal, err := a.IsEqual(b)
	require.NoError(t, err)
	assert.True(t, equal)

	equal, err = a.IsEqual(c)
	require.NoError(t, err)
	assert.False(t, equal)

	t.Run("address does not affect equality", func(t *testing.T) {
		withAddr, _ := kernel.NewLocationWithAddress(-33.8688, 151.2093, "somewhere")

		equal, err := a.IsEqual(withAddr)
		require.NoError(t, err)
		assert.True(t, equal)
	})

	t.Run("zero value fails", func(t *testing.T) {
		var zero kernel.Location

		_, err := a.IsEqual(zero)
		require.Error(t, err)
	})
}

func TestLocation_DistanceKm(t *testing.T) {
	t.Run("zero distance to itself", func(t *testing.T) {
		loc, _ := kernel.NewLocation(-33.8688, 151.2093)

		km, err := loc.DistanceKm(loc)
		require.NoError(t, err)
		assert.Zero(t, km)
	})

	t.Run("known distance Sydney CBD to Sydney Markets", func(t *testing.T) {
		cbd, _ := kernel.NewLocation(-33.8688, 151.2093)
		markets, _ := kernel.NewLocation(-33.7169, 150.9050)

		km, err := cbd.DistanceKm(markets)
		require.NoError(t, err)
		// Great-circle distance is roughly 33 km.
		assert.InDelta(t, 33.0, km, 1.5)
	})

	t.Run("distance is symmetric", func(t *testing.T) {
		a, _ := kernel.NewLocation(-33.8688, 151.2093)
		b, _ := kernel.NewLocation(-33.9500, 151.1000)

		ab, err := a.DistanceKm(b)
		require.NoError(t, err)
		ba, err := b.DistanceKm(a)
		require.NoError(t, err)
		assert.InDelta(t, ab, ba, 1e-12)
	})

	t.Run("meters is km times 1000", func(t *testing.T) {
		a, _ := kernel.NewLocation(-33.8688, 151.2093)
		b, _ := kernel.NewLocation(-33.8700, 151.2100)

		km, err := a.DistanceKm(b)
		require.NoError(t, err)
		m, err := a.DistanceMeters(b)
		require.NoError(t, err)
		assert.InDelta(t, km*1000, m, 1e-9)
	})

	t.Run("zero value fails", func(t *testing.T) {
		var zero kernel.Location
		loc, _ := kernel.NewLocation(-33.8688, 151.2093)

		_, err := loc.DistanceKm(zero)
		require.Error(t, err)
	})
}
