package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/services"
)

// OptimizeRouteCommandHandler rebuilds the distance matrix for a route's stop
// set, runs the optimizer and records the result: new visiting sequence, tour
// metrics and chained ETAs.
type OptimizeRouteCommandHandler struct {
	uowFactory    StopRouteUoWFactory
	matrixBuilder services.MatrixBuilder
	optimizer     services.RouteOptimizer
	depot         kernel.Location
	logger        *slog.Logger
	now           func() time.Time
}

// NewOptimizeRouteCommandHandler creates a handler for route optimization.
// Depot is the location every tour starts from and returns to.
func NewOptimizeRouteCommandHandler(
	uowFactory StopRouteUoWFactory,
	matrixBuilder services.MatrixBuilder,
	optimizer services.RouteOptimizer,
	depot kernel.Location,
	logger *slog.Logger,
) (OptimizeRouteCommandHandler, error) {
	if err := depot.Validate(); err != nil {
		return OptimizeRouteCommandHandler{}, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return OptimizeRouteCommandHandler{
		uowFactory:    uowFactory,
		matrixBuilder: matrixBuilder,
		optimizer:     optimizer,
		depot:         depot,
		logger:        logger.With("component", "optimize_route"),
		now:           time.Now,
	}, nil
}

// Handle optimizes the route's stop sequence and returns the run's metrics.
func (h OptimizeRouteCommandHandler) Handle(
	ctx context.Context,
	command OptimizeRouteCommand,
) (services.OptimizationResult, error) {
	if err := command.Validate(); err != nil {
		return services.OptimizationResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return services.OptimizationResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	r, err := uow.RouteRepository().Get(ctx, command.RouteID())
	if err != nil {
		return services.OptimizationResult{}, err
	}

	stops, err := uow.StopRepository().GetByRouteID(ctx, command.RouteID())
	if err != nil {
		return services.OptimizationResult{}, err
	}

	matrix, err := h.matrixBuilder.Build(ctx, matrixPointsFor(h.depot, stops))
	if err != nil {
		return services.OptimizationResult{}, err
	}

	result, err := h.optimizer.Optimize(stopIDStrings(stops), matrix, nil)
	if err != nil {
		return services.OptimizationResult{}, err
	}

	if err = applyOptimizedPlan(r, stops, result, matrix, h.now()); err != nil {
		return services.OptimizationResult{}, err
	}

	for _, s := range stops {
		if err = uow.StopRepository().Update(ctx, s); err != nil {
			return services.OptimizationResult{}, err
		}
	}
	if err = uow.RouteRepository().Update(ctx, r); err != nil {
		return services.OptimizationResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return services.OptimizationResult{}, err
	}

	h.logger.InfoContext(ctx, "route optimized",
		"route_id", r.ID(),
		"method", result.Method,
		"score", result.Score,
		"distance_km", result.OptimizedDistanceKm)

	return result, nil
}
