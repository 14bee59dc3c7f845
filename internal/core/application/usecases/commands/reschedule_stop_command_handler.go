package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/kernel"
)

// RescheduleStopCommandHandler closes a stop as rescheduled and persists its
// replacement for the new service date. Recipients keep tracking against the
// same reference across the move.
type RescheduleStopCommandHandler struct {
	uowFactory UoWFactory
	publisher  events.Publisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewRescheduleStopCommandHandler creates a handler for stop rescheduling.
func NewRescheduleStopCommandHandler(
	uowFactory UoWFactory,
	publisher events.Publisher,
	logger *slog.Logger,
) RescheduleStopCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return RescheduleStopCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		logger:     logger.With("component", "reschedule_stop"),
		now:        time.Now,
	}
}

// Handle reschedules the stop. Both the closed original and the replacement
// are persisted in the same transaction.
func (h RescheduleStopCommandHandler) Handle(ctx context.Context, command RescheduleStopCommand) error {
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

	clone, err := s.RescheduleTo(kernel.NewUUID(), command.ServiceDate())
	if err != nil {
		return err
	}

	if err = stopRepo.Update(ctx, s); err != nil {
		return err
	}
	if err = stopRepo.Add(ctx, clone); err != nil {
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
