package kernel_test

import (
	"testing"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCapacity(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c, err := kernel.NewCapacity(120.5, 1.2)

		require.NoError(t, err)
		assert.InDelta(t, 120.5, c.WeightKg(), 1e-9)
		assert.InDelta(t, 1.2, c.VolumeM3(), 1e-9)
	})

	t.Run("negative components rejected", func(t *testing.T) {
		_, err := kernel.NewCapacity(-1, 0)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)

		_, err = kernel.NewCapacity(0, -0.5)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var c kernel.Capacity
		require.Error(t, c.Validate())
	})
}

func TestCapacity_Add(t *testing.T) {
	a, _ := kernel.NewCapacity(10, 0.5)
	b, _ := kernel.NewCapacity(5, 0.25)

	sum, err := a.Add(b)

	require.NoError(t, err)
	assert.InDelta(t, 15.0, sum.WeightKg(), 1e-9)
	assert.InDelta(t, 0.75, sum.VolumeM3(), 1e-9)
}

func TestCapacity_Fits(t *testing.T) {
	vehicle, _ := kernel.NewCapacity(500, 3)

	t.Run("demand within capacity", func(t *testing.T) {
		demand, _ := kernel.NewCapacity(499, 3)

		fits, err := vehicle.Fits(demand)
		require.NoError(t, err)
		assert.True(t, fits)
	})

	t.Run("weight exceeded", func(t *testing.T) {
		demand, _ := kernel.NewCapacity(501, 1)

		fits, err := vehicle.Fits(demand)
		require.NoError(t, err)
		assert.False(t, fits)
	})

	t.Run("volume exceeded", func(t *testing.T) {
		demand, _ := kernel.NewCapacity(100, 3.1)

		fits, err := vehicle.Fits(demand)
		require.NoError(t, err)
		assert.False(t, fits)
	})

	t.Run("empty demand always fits", func(t *testing.T) {
		fits, err := vehicle.Fits(kernel.EmptyCapacity())
		require.NoError(t, err)
		assert.True(t, fits)
	})
}
