package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/events"
)

// CancelStopCommandHandler withdraws a stop and settles the owning route's
// progress. Cancelled stops shrink the pending count without counting toward
// completions or failures.
type CancelStopCommandHandler struct {
	uowFactory UoWFactory
	publisher  events.Publisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewCancelStopCommandHandler creates a handler for stop cancellation.
func NewCancelStopCommandHandler(
	uowFactory UoWFactory,
	publisher events.Publisher,
	logger *slog.Logger,
) CancelStopCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return CancelStopCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "cancel_stop"),
		now:        time.Now,
	}
}

// Handle cancels the stop and refreshes route progress.
func (h CancelStopCommandHandler) Handle(ctx context.Context, command CancelStopCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stopRepo := uow.StopRepository()

	s, err := stopRepo.Get(ctx, command.StopID())
	if err != nil {
		return err
	}

	if err = s.Cancel(); err != nil {
		return err
	}

	if err = stopRepo.Update(ctx, s); err != nil {
		return err
	}

	if routeID := s.RouteID(); routeID != nil {
		r, routeErr := uow.RouteRepository().Get(ctx, *routeID)
		if routeErr != nil {
			return routeErr
		}
		stops, stopsErr := stopRepo.GetByRouteID(ctx, *routeID)
		if stopsErr != nil {
			return stopsErr
		}
		if err = settleRouteProgress(ctx, uow.RouteRepository(), uow.DriverRepository(), r, stops); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	publish(h.publisher, stopStatusEvent(s, h.now()))
	return nil
}
