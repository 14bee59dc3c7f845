package events

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
)

// Type discriminates tracking events.
type Type string

const (
	// TypeStopStatusChanged fires on every stop lifecycle transition.
	TypeStopStatusChanged Type = "stop_status_changed"

	// TypeStopArrived fires once when a driver reaches a stop.
	TypeStopArrived Type = "stop_arrived"

	// TypeNearArrival fires when a driver comes within one kilometer of the
	// next stop, at most once per suppression window.
	TypeNearArrival Type = "near_arrival"

	// TypeETAUpdated fires when a stop's persisted ETA shifts.
	TypeETAUpdated Type = "eta_updated"

	// TypeRunningLate fires when a recomputed ETA misses the stop's window.
	TypeRunningLate Type = "running_late"

	// TypeGeofenceEntered fires when a driver crosses into a zone boundary.
	TypeGeofenceEntered Type = "geofence_entered"

	// TypeGeofenceExited fires when a driver crosses out of a zone boundary.
	TypeGeofenceExited Type = "geofence_exited"
)

// Event is one tracking occurrence emitted by the live-tracking pipeline.
// Events are fire-and-forget: they are consumed by notification subscribers
// and never feed back into the stop state machine.
type Event struct {
	Type       Type
	OccurredAt time.Time

	DriverID *kernel.UUID
	RouteID  *kernel.UUID
	StopID   *kernel.UUID

	// StopReference is the public tracking handle, set for stop-scoped events.
	StopReference string

	// Zone names the boundary for geofence events.
	Zone string

	// Status carries the new stop status for status-changed events.
	Status string

	// ETA carries the newly persisted estimate for ETA events.
	ETA *time.Time
}

// Publisher accepts events for asynchronous delivery to subscribers.
type Publisher interface {
	Publish(event Event)
}

// Bus is a channel-backed Publisher. Publishing never blocks: when the
// buffer is full the event is dropped, because tracking events are advisory
// and must not stall location processing.
type Bus struct {
	ch chan Event
}

// NewBus creates a Bus with the given buffer size.
func NewBus(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 256
	}
	return &Bus{ch: make(chan Event, buffer)}
}

// Publish enqueues the event, dropping it if the buffer is full.
func (b *Bus) Publish(event Event) {
	select {
	case b.ch <- event:
	default:
	}
}

// Events returns the subscription channel.
func (b *Bus) Events() <-chan Event {
	return b.ch
}

// Close closes the subscription channel. Publish must not be called after
// Close.
func (b *Bus) Close() {
	close(b.ch)
}
