package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/ports"
)

// DispatchRouteCommandHandler moves an optimized route into execution: the
// route flips to in_progress and every stop flips to en_route in the same
// transaction. Recipients are told their delivery is out.
type DispatchRouteCommandHandler struct {
	uowFactory StopRouteUoWFactory
	sink       ports.NotificationSink
	publisher  events.Publisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewDispatchRouteCommandHandler creates a handler for route dispatch.
func NewDispatchRouteCommandHandler(
	uowFactory StopRouteUoWFactory,
	sink ports.NotificationSink,
	publisher events.Publisher,
	logger *slog.Logger,
) DispatchRouteCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return DispatchRouteCommandHandler{
		uowFactory: uowFactory,
		sink:       sink,
		publisher:  publisher,
		logger:     logger.With("component", "dispatch_route"),
		now:        time.Now,
	}
}

// Handle dispatches the route and announces each stop going en route.
func (h DispatchRouteCommandHandler) Handle(ctx context.Context, command DispatchRouteCommand) error {
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

	r, err := uow.RouteRepository().Get(ctx, command.RouteID())
	if err != nil {
		return err
	}

	// One driver, one in-progress route per service date.
	active, err := uow.RouteRepository().GetInProgressByDriverAndDate(
		ctx, r.DriverID(), r.ServiceDate())
	if err != nil {
		return err
	}
	for _, other := range active {
		if !other.ID().IsEqual(r.ID()) {
			return ports.ErrDriverAlreadyDispatched
		}
	}

	if err = r.Dispatch(); err != nil {
		return err
	}

	stops, err := uow.StopRepository().GetByRouteID(ctx, command.RouteID())
	if err != nil {
		return err
	}

	for _, s := range stops {
		if err = s.MarkEnRoute(); err != nil {
			return err
		}
		if err = uow.StopRepository().Update(ctx, s); err != nil {
			return err
		}
	}

	if err = uow.RouteRepository().Update(ctx, r); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	dispatchedAt := h.now()
	for _, s := range stops {
		publish(h.publisher, stopStatusEvent(s, dispatchedAt))
		notifyRecipient(ctx, h.logger, h.sink, channelSMS, s.RecipientPhone(), map[string]any{
			"event":     "out_for_delivery",
			"reference": s.Reference(),
		})
	}

	h.logger.InfoContext(ctx, "route dispatched",
		"route_id", r.ID(), "driver_id", r.DriverID(), "stops", len(stops))

	return nil
}
