package commands

import (
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/stop"
)

// arrivalSuppressionTTL bounds how long arrival and near-arrival
// notifications stay deduplicated per stop.
const arrivalSuppressionTTL = 30 * time.Minute

// stopStatusEvent builds the status-changed event for a stop transition.
func stopStatusEvent(s *stop.Stop, at time.Time) events.Event {
	id := s.ID()
	event := events.Event{
		Type:          events.TypeStopStatusChanged,
		OccurredAt:    at,
		StopID:        &id,
		StopReference: s.Reference(),
		Status:        s.Status().String(),
	}
	if routeID := s.RouteID(); routeID != nil {
		event.RouteID = routeID
	}
	return event
}

// publish forwards an event when a publisher is wired.
func publish(publisher events.Publisher, event events.Event) {
	if publisher != nil {
		publisher.Publish(event)
	}
}
