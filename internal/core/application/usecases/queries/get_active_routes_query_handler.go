package queries

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetActiveRoutesQueryHandler retrieves open routes joined with their
// drivers from the database.
type GetActiveRoutesQueryHandler struct {
	db *gorm.DB
}

// NewGetActiveRoutesQueryHandler creates a handler for dispatch-board
// queries.
func NewGetActiveRoutesQueryHandler(db *gorm.DB) GetActiveRoutesQueryHandler {
	return GetActiveRoutesQueryHandler{db: db}
}

// Handle executes the query. Results are ordered by service date then route
// id for consistent board rendering.
func (h GetActiveRoutesQueryHandler) Handle(
	ctx context.Context,
	query GetActiveRoutesQuery,
) ([]GetActiveRoutesResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	routes := make([]GetActiveRoutesResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			r.id,
			r.driver_id,
			d.name,
			r.status,
			r.service_date,
			r.progress_pending,
			r.progress_completed,
			r.progress_failed,
			r.total_distance_km,
			r.total_duration_minutes,
			r.optimization_method,
			r.optimization_score
		FROM routes r
		JOIN drivers d ON d.id = r.driver_id
		WHERE r.status IN (?, ?, ?)
		ORDER BY r.service_date, r.id
	`, int(route.StatusPlanned), int(route.StatusOptimized), int(route.StatusInProgress)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var resp GetActiveRoutesResponse
		var id, driverID uuid.UUID
		var status int

		err = rows.Scan(
			&id,
			&driverID,
			&resp.DriverName,
			&status,
			&resp.ServiceDate,
			&resp.PendingStops,
			&resp.CompletedStops,
			&resp.FailedStops,
			&resp.TotalDistanceKm,
			&resp.TotalDurationMinutes,
			&resp.OptimizationMethod,
			&resp.OptimizationScore,
		)
		if err != nil {
			return nil, err
		}

		routeID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.ID = routeID

		drvID, idErr := kernel.UUIDFromBytes(driverID[:])
		if idErr != nil {
			return nil, idErr
		}
		resp.DriverID = drvID

		resp.Status = route.Status(status).String()
		resp.StopCount = resp.PendingStops + resp.CompletedStops + resp.FailedStops

		routes = append(routes, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return routes, nil
}
