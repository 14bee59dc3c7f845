package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrGetActiveRoutesQueryIsNotConstructed = errors.New(
	"GetActiveRoutesQuery must be created via NewGetActiveRoutesQuery constructor",
)

// GetActiveRoutesQuery retrieves every route that is not yet finished:
// planned, optimized or in progress. This is the dispatch board's read model.
type GetActiveRoutesQuery struct {
	guard guard.ConstructorGuard
}

// NewGetActiveRoutesQuery creates a query to retrieve open routes.
func NewGetActiveRoutesQuery() GetActiveRoutesQuery {
	return GetActiveRoutesQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q GetActiveRoutesQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveRoutesQueryIsNotConstructed)
}

// GetActiveRoutesResponse is one dispatch-board row: the route, its driver
// and the live progress counters.
type GetActiveRoutesResponse struct {
	ID         kernel.UUID
	DriverID   kernel.UUID
	DriverName string

	Status      string
	ServiceDate time.Time

	StopCount      int
	PendingStops   int
	CompletedStops int
	FailedStops    int

	TotalDistanceKm      float64
	TotalDurationMinutes float64
	OptimizationMethod   string
	OptimizationScore    float64
}
