package commands

import (
	"context"
	"log/slog"

	"dispatch/internal/core/ports"
)

// Notification channels used by the dispatch pipeline.
const (
	channelSMS = "sms"
)

// notifyRecipient dispatches a fire-and-forget notification. Failures are
// logged and swallowed: the stop record is the authoritative state, never the
// notification outcome.
func notifyRecipient(
	ctx context.Context,
	logger *slog.Logger,
	sink ports.NotificationSink,
	channel string,
	recipient string,
	payload map[string]any,
) {
	if sink == nil || recipient == "" {
		return
	}

	if err := sink.Dispatch(ctx, channel, recipient, payload); err != nil {
		logger.WarnContext(ctx, "notification dispatch failed",
			"channel", channel, "error", err)
	}
}
