package driver_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureDriver(t *testing.T, zones ...string) *driver.Driver {
	t.Helper()

	capacity, err := kernel.NewCapacity(500, 3)
	require.NoError(t, err)

	d, err := driver.NewDriver(kernel.NewUUID(), "Sam Rider", "van", capacity, false, zones)
	require.NoError(t, err)

	return d
}

func TestNewDriver(t *testing.T) {
	d := fixtureDriver(t, "inner_west")

	assert.True(t, d.IsActive())
	assert.True(t, d.IsAvailable())
	assert.False(t, d.IsVerified())
	assert.Zero(t, d.ActiveRouteCount())
	assert.Nil(t, d.CurrentLocation())

	t.Run("name and vehicle type required", func(t *testing.T) {
		capacity, _ := kernel.NewCapacity(100, 1)

		_, err := driver.NewDriver(kernel.NewUUID(), "", "van", capacity, false, nil)
		require.Error(t, err)

		_, err = driver.NewDriver(kernel.NewUUID(), "Sam", "", capacity, false, nil)
		require.Error(t, err)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var d driver.Driver
		require.ErrorIs(t, d.Validate(), driver.ErrDriverIsNotConstructed)
	})
}

func TestDriver_ServesZone(t *testing.T) {
	t.Run("restricted driver", func(t *testing.T) {
		d := fixtureDriver(t, "inner_west", "cbd")

		assert.True(t, d.ServesZone("cbd"))
		assert.False(t, d.ServesZone("northern_beaches"))
	})

	t.Run("unrestricted driver serves every zone", func(t *testing.T) {
		d := fixtureDriver(t)

		assert.True(t, d.ServesZone("cbd"))
		assert.True(t, d.ServesZone("outer"))
	})
}

func TestDriver_LocationStaleness(t *testing.T) {
	d := fixtureDriver(t)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("never reported is stale", func(t *testing.T) {
		assert.True(t, d.IsLocationStale(now))
	})

	location, err := kernel.NewLocation(-33.8688, 151.2093)
	require.NoError(t, err)
	require.NoError(t, d.UpdateLocation(location, now))

	t.Run("fresh report is usable", func(t *testing.T) {
		assert.False(t, d.IsLocationStale(now.Add(4*time.Minute)))
		assert.False(t, d.IsLocationStale(now.Add(5*time.Minute)))
	})

	t.Run("older than five minutes is stale", func(t *testing.T) {
		assert.True(t, d.IsLocationStale(now.Add(5*time.Minute+time.Second)))
	})
}

func TestDriver_RouteReservation(t *testing.T) {
	d := fixtureDriver(t)

	require.NoError(t, d.ReserveRoute())
	require.NoError(t, d.ReserveRoute())
	assert.Equal(t, 2, d.ActiveRouteCount())

	require.NoError(t, d.ReleaseRoute())
	assert.Equal(t, 1, d.ActiveRouteCount())

	t.Run("cannot release below zero", func(t *testing.T) {
		require.NoError(t, d.ReleaseRoute())
		require.Error(t, d.ReleaseRoute())
	})

	t.Run("unavailable driver cannot be reserved", func(t *testing.T) {
		d.SetAvailability(true, false)
		require.Error(t, d.ReserveRoute())

		d.SetAvailability(false, true)
		require.Error(t, d.ReserveRoute())
	})
}

func TestDriver_SetPerformance(t *testing.T) {
	d := fixtureDriver(t)

	require.NoError(t, d.SetPerformance(4.8, 97.5))
	assert.InDelta(t, 4.8, d.Rating(), 1e-9)
	assert.InDelta(t, 97.5, d.OnTimeRate(), 1e-9)

	require.Error(t, d.SetPerformance(5.1, 50))
	require.Error(t, d.SetPerformance(4, 101))
	require.Error(t, d.SetPerformance(-0.1, 50))
}

func TestRestoreDriver(t *testing.T) {
	capacity, _ := kernel.NewCapacity(500, 3)
	location, _ := kernel.NewLocation(-33.8688, 151.2093)
	seenAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	d, err := driver.RestoreDriver(
		kernel.NewUUID(), "Sam Rider", "van", capacity, true,
		[]string{"cbd"}, true, false, true, 4.2, 88, &location, &seenAt, 1,
	)

	require.NoError(t, err)
	assert.True(t, d.HasColdStorage())
	assert.False(t, d.IsAvailable())
	assert.True(t, d.IsVerified())
	assert.Equal(t, 1, d.ActiveRouteCount())
	require.NotNil(t, d.CurrentLocation())

	t.Run("location without timestamp rejected", func(t *testing.T) {
		_, err := driver.RestoreDriver(
			kernel.NewUUID(), "Sam", "van", capacity, false,
			nil, true, true, false, 0, 0, &location, nil, 0,
		)
		require.Error(t, err)
	})
}
