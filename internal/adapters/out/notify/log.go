// Package notify carries recipient notifications and incident reports out of
// the system. The log-backed implementations are the default wiring; an SMS
// or push provider implements the same ports and replaces them in the
// composition root.
package notify

import (
	"context"
	"log/slog"

	"dispatch/internal/core/ports"
)

// LogNotificationSink writes recipient notifications to the structured log.
type LogNotificationSink struct {
	logger *slog.Logger
}

// NewLogNotificationSink creates a log-backed notification sink.
func NewLogNotificationSink(logger *slog.Logger) *LogNotificationSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotificationSink{logger: logger.With("component", "notification_sink")}
}

// Dispatch logs the notification. It never fails; callers treat delivery as
// best effort either way.
func (s *LogNotificationSink) Dispatch(
	ctx context.Context, channel string, recipient string, payload map[string]any,
) error {
	s.logger.InfoContext(ctx, "notification dispatched",
		"channel", channel,
		"recipient", recipient,
		"payload", payload)
	return nil
}

// LogIncidentReporter writes incident reports to the structured log at error
// level so they surface in operational alerting.
type LogIncidentReporter struct {
	logger *slog.Logger
}

// NewLogIncidentReporter creates a log-backed incident reporter.
func NewLogIncidentReporter(logger *slog.Logger) *LogIncidentReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogIncidentReporter{logger: logger.With("component", "incident_reporter")}
}

// Report logs the incident.
func (r *LogIncidentReporter) Report(ctx context.Context, incident ports.Incident) error {
	attrs := []any{
		"stop_id", incident.StopID.String(),
		"reason", incident.Reason,
		"reported_at", incident.ReportedAt,
	}
	if incident.RouteID != nil {
		attrs = append(attrs, "route_id", incident.RouteID.String())
	}
	if incident.DriverID != nil {
		attrs = append(attrs, "driver_id", incident.DriverID.String())
	}

	r.logger.ErrorContext(ctx, "delivery incident", attrs...)
	return nil
}
