package services_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMatrixCache struct {
	mock.Mock
}

func (m *mockMatrixCache) GetMatrix(ctx context.Context, key string) (services.DistanceMatrix, bool, error) {
	args := m.Called(ctx, key)
	matrix, _ := args.Get(0).(services.DistanceMatrix)
	return matrix, args.Bool(1), args.Error(2)
}

func (m *mockMatrixCache) SetMatrix(
	ctx context.Context, key string, matrix services.DistanceMatrix, ttl time.Duration,
) error {
	args := m.Called(ctx, key, matrix, ttl)
	return args.Error(0)
}

func fixedClock(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 9, 1, hour, 30, 0, 0, time.UTC)
	}
}

func mustLocation(t *testing.T, lat, lng float64) *kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation(lat, lng)
	require.NoError(t, err)
	return &loc
}

func fixturePoints(t *testing.T) []services.MatrixPoint {
	t.Helper()
	return []services.MatrixPoint{
		{ID: services.DepotID, Location: mustLocation(t, -33.8688, 151.2093)},
		{ID: "a", Location: mustLocation(t, -33.9000, 151.1500)},
		{ID: "b", Location: mustLocation(t, -33.8000, 151.2500)},
	}
}

func TestMatrixBuilder_Build(t *testing.T) {
	builder, err := services.NewMatrixBuilder(nil, services.DefaultBaseSpeedKmh, fixedClock(12), nil)
	require.NoError(t, err)

	matrix, err := builder.Build(context.Background(), fixturePoints(t))
	require.NoError(t, err)

	t.Run("full NxN with zero diagonal", func(t *testing.T) {
		assert.True(t, matrix.Covers(services.DepotID, "a", "b"))
		for _, id := range []string{services.DepotID, "a", "b"} {
			entry, ok := matrix.Entry(id, id)
			require.True(t, ok)
			assert.Zero(t, entry.DistanceKm)
			assert.Zero(t, entry.Minutes)
		}
	})

	t.Run("distance symmetric and minutes follow base speed", func(t *testing.T) {
		ab, _ := matrix.Entry("a", "b")
		ba, _ := matrix.Entry("b", "a")

		assert.InDelta(t, ab.DistanceKm, ba.DistanceKm, 1e-12)
		assert.Positive(t, ab.DistanceKm)
		assert.InDelta(t, ab.DistanceKm/40*60, ab.Minutes, 1e-9)
	})
}

func TestMatrixBuilder_TimeOfDaySpeed(t *testing.T) {
	points := fixturePoints(t)
	ctx := context.Background()

	buildAt := func(hour int) services.DistanceMatrix {
		builder, err := services.NewMatrixBuilder(nil, services.DefaultBaseSpeedKmh, fixedClock(hour), nil)
		require.NoError(t, err)
		matrix, err := builder.Build(ctx, points)
		require.NoError(t, err)
		return matrix
	}

	offPeak, _ := buildAt(12).Entry("a", "b")

	t.Run("morning and evening peaks slow travel", func(t *testing.T) {
		for _, hour := range []int{6, 8, 16, 18} {
			entry, _ := buildAt(hour).Entry("a", "b")
			assert.InDelta(t, offPeak.Minutes/0.6, entry.Minutes, 1e-9, "hour %d", hour)
		}
	})

	t.Run("night speeds travel up", func(t *testing.T) {
		for _, hour := range []int{20, 23, 0, 4} {
			entry, _ := buildAt(hour).Entry("a", "b")
			assert.InDelta(t, offPeak.Minutes/1.2, entry.Minutes, 1e-9, "hour %d", hour)
		}
	})

	t.Run("shoulder hours run at base speed", func(t *testing.T) {
		for _, hour := range []int{5, 9, 15, 19} {
			entry, _ := buildAt(hour).Entry("a", "b")
			assert.InDelta(t, offPeak.Minutes, entry.Minutes, 1e-9, "hour %d", hour)
		}
	})
}

func TestMatrixBuilder_DepotSubstitution(t *testing.T) {
	builder, err := services.NewMatrixBuilder(nil, services.DefaultBaseSpeedKmh, fixedClock(12), nil)
	require.NoError(t, err)

	points := []services.MatrixPoint{
		{ID: services.DepotID, Location: mustLocation(t, -33.8688, 151.2093)},
		{ID: "unresolved", Location: nil},
	}

	matrix, err := builder.Build(context.Background(), points)
	require.NoError(t, err)

	entry, ok := matrix.Entry(services.DepotID, "unresolved")
	require.True(t, ok)
	assert.Zero(t, entry.DistanceKm)
}

func TestMatrixBuilder_InputValidation(t *testing.T) {
	builder, err := services.NewMatrixBuilder(nil, services.DefaultBaseSpeedKmh, fixedClock(12), nil)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("empty set", func(t *testing.T) {
		_, err := builder.Build(ctx, nil)
		require.Error(t, err)
	})

	t.Run("missing depot", func(t *testing.T) {
		_, err := builder.Build(ctx, []services.MatrixPoint{
			{ID: "a", Location: mustLocation(t, -33.9, 151.15)},
		})
		require.Error(t, err)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		_, err := builder.Build(ctx, []services.MatrixPoint{
			{ID: services.DepotID, Location: mustLocation(t, -33.8688, 151.2093)},
			{ID: "a", Location: mustLocation(t, -33.9, 151.15)},
			{ID: "a", Location: mustLocation(t, -33.8, 151.25)},
		})
		require.Error(t, err)
	})

	t.Run("nonpositive base speed", func(t *testing.T) {
		_, err := services.NewMatrixBuilder(nil, 0, nil, nil)
		require.Error(t, err)
	})
}

func TestMatrixBuilder_Caching(t *testing.T) {
	ctx := context.Background()
	points := fixturePoints(t)

	t.Run("miss computes and stores, hit returns the stored matrix", func(t *testing.T) {
		cache := &mockMatrixCache{}
		builder, err := services.NewMatrixBuilder(cache, services.DefaultBaseSpeedKmh, fixedClock(12), nil)
		require.NoError(t, err)

		cache.On("GetMatrix", ctx, mock.AnythingOfType("string")).
			Return(nil, false, nil).Once()
		cache.On("SetMatrix", ctx, mock.AnythingOfType("string"),
			mock.AnythingOfType("services.DistanceMatrix"), 15*time.Minute).
			Return(nil).Once()

		computed, err := builder.Build(ctx, points)
		require.NoError(t, err)

		cache.On("GetMatrix", ctx, mock.AnythingOfType("string")).
			Return(computed, true, nil).Once()

		cached, err := builder.Build(ctx, points)
		require.NoError(t, err)

		assert.Equal(t, computed, cached)
		cache.AssertExpectations(t)
	})

	t.Run("cache failures degrade to computation", func(t *testing.T) {
		cache := &mockMatrixCache{}
		builder, err := services.NewMatrixBuilder(cache, services.DefaultBaseSpeedKmh, fixedClock(12), nil)
		require.NoError(t, err)

		cache.On("GetMatrix", ctx, mock.AnythingOfType("string")).
			Return(nil, false, assert.AnError)
		cache.On("SetMatrix", ctx, mock.AnythingOfType("string"),
			mock.AnythingOfType("services.DistanceMatrix"), 15*time.Minute).
			Return(assert.AnError)

		matrix, err := builder.Build(ctx, points)
		require.NoError(t, err)
		assert.True(t, matrix.Covers(services.DepotID, "a", "b"))
	})
}
