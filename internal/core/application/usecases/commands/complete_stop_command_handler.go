package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/ports"
)

// CompleteStopCommandHandler closes a delivered stop, refreshes the owning
// route's progress counters and completes the route once every stop is
// terminal.
type CompleteStopCommandHandler struct {
	uowFactory UoWFactory
	sink       ports.NotificationSink
	publisher  events.Publisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewCompleteStopCommandHandler creates a handler for stop completion.
func NewCompleteStopCommandHandler(
	uowFactory UoWFactory,
	sink ports.NotificationSink,
	publisher events.Publisher,
	logger *slog.Logger,
) CompleteStopCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return CompleteStopCommandHandler{
		uowFactory: uowFactory,
		sink:       sink,
		publisher:  publisher,
		logger:     logger.With("component", "complete_stop"),
		now:        time.Now,
	}
}

// Handle records the proof of delivery and settles the route.
func (h CompleteStopCommandHandler) Handle(ctx context.Context, command CompleteStopCommand) error {
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

	if err = s.Complete(command.Proof(), command.CODCollected()); err != nil {
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
	notifyRecipient(ctx, h.logger, h.sink, channelSMS, s.RecipientPhone(), map[string]any{
		"event":     "delivered",
		"reference": s.Reference(),
	})

	return nil
}
