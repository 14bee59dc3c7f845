package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
)

const (
	// DepotID is the synthetic location identifier for the depot.
	DepotID = "depot"

	// DefaultBaseSpeedKmh is the assumed average vehicle speed before
	// time-of-day scaling.
	DefaultBaseSpeedKmh = 40.0

	// matrixCacheTTL bounds how long a computed matrix stays reusable.
	matrixCacheTTL = 15 * time.Minute

	peakMultiplier  = 0.6
	nightMultiplier = 1.2
)

// MatrixEntry holds the distance and estimated travel time between an ordered
// pair of locations.
type MatrixEntry struct {
	DistanceKm float64 `json:"distance_km"`
	Minutes    float64 `json:"minutes"`
}

// DistanceMatrix maps ordered (from, to) location-id pairs to distance and
// travel time. Distance is symmetric (haversine); travel time is stored per
// direction so a future traffic model can differentiate them.
type DistanceMatrix map[string]map[string]MatrixEntry

// Entry returns the matrix cell for an ordered pair.
func (m DistanceMatrix) Entry(from string, to string) (MatrixEntry, bool) {
	row, ok := m[from]
	if !ok {
		return MatrixEntry{}, false
	}
	entry, ok := row[to]
	return entry, ok
}

// Covers reports whether every given id has a full row and column.
func (m DistanceMatrix) Covers(ids ...string) bool {
	for _, from := range ids {
		for _, to := range ids {
			if _, ok := m.Entry(from, to); !ok {
				return false
			}
		}
	}
	return true
}

// MatrixPoint is one input location for matrix computation. A nil Location
// marks coordinates that could not be resolved upstream; the builder
// substitutes the depot's coordinates for it instead of failing the matrix.
type MatrixPoint struct {
	ID       string
	Location *kernel.Location
}

// MatrixCache stores computed matrices under their location-set key for a
// bounded TTL. Writes are idempotent: rewriting a key with an equivalent
// matrix is safe.
type MatrixCache interface {
	GetMatrix(ctx context.Context, key string) (DistanceMatrix, bool, error)
	SetMatrix(ctx context.Context, key string, matrix DistanceMatrix, ttl time.Duration) error
}

// MatrixBuilder computes full N×N distance/travel-time matrices over a
// location set, caching results by a hash of the set. Travel time applies a
// time-of-day speed multiplier: 0.6× during the 06:00–09:00 and 16:00–19:00
// peaks, 1.2× overnight (20:00–05:00), 1.0× otherwise.
type MatrixBuilder struct {
	cache        MatrixCache
	baseSpeedKmh float64
	now          func() time.Time
	logger       *slog.Logger
}

// NewMatrixBuilder creates a MatrixBuilder. Cache may be nil to disable
// caching; now may be nil to use wall-clock time.
func NewMatrixBuilder(
	cache MatrixCache,
	baseSpeedKmh float64,
	now func() time.Time,
	logger *slog.Logger,
) (MatrixBuilder, error) {
	if baseSpeedKmh <= 0 {
		return MatrixBuilder{}, errs.NewValueIsInvalidErrorWithCause(
			"baseSpeedKmh", fmt.Errorf("%v is not greater than 0", baseSpeedKmh))
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}

	return MatrixBuilder{
		cache:        cache,
		baseSpeedKmh: baseSpeedKmh,
		now:          now,
		logger:       logger.With("component", "matrix_builder"),
	}, nil
}

// Build returns the full matrix for the given points. The set must include
// the depot under DepotID. Cache hits return matrices identical to what a
// fresh computation of the same set would produce; cache failures degrade to
// recomputation, never to an error.
func (b MatrixBuilder) Build(ctx context.Context, points []MatrixPoint) (DistanceMatrix, error) {
	resolved, err := b.resolvePoints(points)
	if err != nil {
		return nil, err
	}

	key := cacheKey(resolved)

	if b.cache != nil {
		cached, ok, cacheErr := b.cache.GetMatrix(ctx, key)
		if cacheErr != nil {
			b.logger.WarnContext(ctx, "matrix cache read failed", "key", key, "error", cacheErr)
		} else if ok {
			return cached, nil
		}
	}

	matrix := b.compute(resolved)

	if b.cache != nil {
		if cacheErr := b.cache.SetMatrix(ctx, key, matrix, matrixCacheTTL); cacheErr != nil {
			b.logger.WarnContext(ctx, "matrix cache write failed", "key", key, "error", cacheErr)
		}
	}

	return matrix, nil
}

type resolvedPoint struct {
	id       string
	location kernel.Location
}

// resolvePoints validates the input set and substitutes the depot's
// coordinates for points whose geocoding failed upstream.
func (b MatrixBuilder) resolvePoints(points []MatrixPoint) ([]resolvedPoint, error) {
	if len(points) == 0 {
		return nil, errs.NewValueIsRequiredError("points")
	}

	var depot *kernel.Location
	seen := make(map[string]struct{}, len(points))
	for _, p := range points {
		if p.ID == "" {
			return nil, errs.NewValueIsRequiredError("point ID")
		}
		if _, dup := seen[p.ID]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause(
				"points", fmt.Errorf("duplicate point id %q", p.ID))
		}
		seen[p.ID] = struct{}{}

		if p.ID == DepotID {
			if p.Location == nil {
				return nil, errs.NewValueIsRequiredError("depot location")
			}
			depot = p.Location
		}
	}
	if depot == nil {
		return nil, errs.NewValueIsRequiredError("depot point")
	}
	if err := depot.Validate(); err != nil {
		return nil, err
	}

	resolved := make([]resolvedPoint, 0, len(points))
	for _, p := range points {
		location := depot
		if p.Location != nil {
			if err := p.Location.Validate(); err != nil {
				return nil, err
			}
			location = p.Location
		} else {
			b.logger.Warn("point has no coordinates, substituting depot", "id", p.ID)
		}
		resolved = append(resolved, resolvedPoint{id: p.ID, location: *location})
	}

	return resolved, nil
}

func (b MatrixBuilder) compute(points []resolvedPoint) DistanceMatrix {
	speed := b.baseSpeedKmh * timeOfDayMultiplier(b.now())

	matrix := make(DistanceMatrix, len(points))
	for _, from := range points {
		row := make(map[string]MatrixEntry, len(points))
		for _, to := range points {
			if from.id == to.id {
				row[to.id] = MatrixEntry{}
				continue
			}

			km, err := from.location.DistanceKm(to.location)
			if err != nil {
				// resolvePoints validated every location already.
				continue
			}

			row[to.id] = MatrixEntry{
				DistanceKm: km,
				Minutes:    km / speed * 60,
			}
		}
		matrix[from.id] = row
	}

	return matrix
}

// TravelMinutes estimates driving time for a distance at the time-of-day
// adjusted speed. The live-tracking pipeline uses it to chain ETAs from a
// driver's current position, where no precomputed matrix applies.
func TravelMinutes(distanceKm float64, baseSpeedKmh float64, at time.Time) float64 {
	return distanceKm / (baseSpeedKmh * timeOfDayMultiplier(at)) * 60
}

// timeOfDayMultiplier scales the base speed: slower in peaks, faster at
// night. Peaks are checked first, though the windows never overlap.
func timeOfDayMultiplier(at time.Time) float64 {
	hour := at.Hour()
	switch {
	case (hour >= 6 && hour < 9) || (hour >= 16 && hour < 19):
		return peakMultiplier
	case hour >= 20 || hour < 5:
		return nightMultiplier
	default:
		return 1.0
	}
}

// cacheKey hashes the ordered location set so matrices for the same set hit
// the same cache slot regardless of input order.
func cacheKey(points []resolvedPoint) string {
	tuples := make([]string, 0, len(points))
	for _, p := range points {
		tuples = append(tuples, fmt.Sprintf("%s:%.6f:%.6f",
			p.id, p.location.Latitude(), p.location.Longitude()))
	}
	sort.Strings(tuples)

	sum := sha256.Sum256([]byte(strings.Join(tuples, "|")))
	return hex.EncodeToString(sum[:])
}
