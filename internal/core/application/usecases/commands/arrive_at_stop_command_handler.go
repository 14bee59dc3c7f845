package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/stop"
	"dispatch/internal/core/ports"
)

// ArriveAtStopCommandHandler flips a stop to arrived on an explicit driver
// signal and queues the arrival notification, deduplicated against the
// proximity auto-arrival path through the tracking-state suppression flag.
type ArriveAtStopCommandHandler struct {
	uowFactory StopUoWFactory
	tracker    ports.TrackingStateStore
	sink       ports.NotificationSink
	publisher  events.Publisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewArriveAtStopCommandHandler creates a handler for explicit arrivals.
func NewArriveAtStopCommandHandler(
	uowFactory StopUoWFactory,
	tracker ports.TrackingStateStore,
	sink ports.NotificationSink,
	publisher events.Publisher,
	logger *slog.Logger,
) ArriveAtStopCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return ArriveAtStopCommandHandler{
		uowFactory: uowFactory,
		tracker:    tracker,
		sink:       sink,
		publisher:  publisher,
		logger:     logger.With("component", "arrive_at_stop"),
		now:        time.Now,
	}
}

// Handle transitions the stop to arrived and announces it exactly once.
func (h ArriveAtStopCommandHandler) Handle(ctx context.Context, command ArriveAtStopCommand) error {
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

	arrivedAt := h.now()
	if err = s.Arrive(arrivedAt); err != nil {
		return err
	}

	if err = stopRepo.Update(ctx, s); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.announce(ctx, s, arrivedAt)
	return nil
}

func (h ArriveAtStopCommandHandler) announce(ctx context.Context, s *stop.Stop, arrivedAt time.Time) {
	publish(h.publisher, stopStatusEvent(s, arrivedAt))

	first := true
	if h.tracker != nil {
		var err error
		first, err = h.tracker.SetNotificationFlag(ctx, ports.FlagArrival, s.ID(), arrivalSuppressionTTL)
		if err != nil {
			h.logger.WarnContext(ctx, "arrival suppression flag failed",
				"stop_id", s.ID(), "error", err)
		}
	}
	if !first {
		return
	}

	id := s.ID()
	publish(h.publisher, events.Event{
		Type:          events.TypeStopArrived,
		OccurredAt:    arrivedAt,
		StopID:        &id,
		RouteID:       s.RouteID(),
		StopReference: s.Reference(),
	})

	notifyRecipient(ctx, h.logger, h.sink, channelSMS, s.RecipientPhone(), map[string]any{
		"event":     "arrived",
		"reference": s.Reference(),
	})
}
