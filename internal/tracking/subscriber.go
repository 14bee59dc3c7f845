package tracking

import (
	"context"
	"log/slog"

	"dispatch/internal/core/domain/events"
)

// LogSubscriber drains the tracking event bus and writes each event to the
// structured log. It is the default subscriber; a webhook or push fan-out
// would sit next to it on the same channel.
type LogSubscriber struct {
	bus    *events.Bus
	logger *slog.Logger
}

// NewLogSubscriber creates a subscriber for the given bus.
func NewLogSubscriber(bus *events.Bus, logger *slog.Logger) *LogSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSubscriber{
		bus:    bus,
		logger: logger.With("component", "tracking_events"),
	}
}

// Run consumes events until the bus closes or the context is cancelled.
func (s *LogSubscriber) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.bus.Events():
			if !ok {
				return
			}
			s.log(ctx, event)
		}
	}
}

func (s *LogSubscriber) log(ctx context.Context, event events.Event) {
	attrs := []any{
		"type", string(event.Type),
		"occurred_at", event.OccurredAt,
	}
	if event.StopReference != "" {
		attrs = append(attrs, "reference", event.StopReference)
	}
	if event.DriverID != nil {
		attrs = append(attrs, "driver_id", event.DriverID.String())
	}
	if event.Zone != "" {
		attrs = append(attrs, "zone", event.Zone)
	}
	if event.Status != "" {
		attrs = append(attrs, "status", event.Status)
	}
	if event.ETA != nil {
		attrs = append(attrs, "eta", *event.ETA)
	}

	s.logger.InfoContext(ctx, "tracking event", attrs...)
}
