package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/stop"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

const (
	// autoArrivalRadiusMeters flips the next stop to arrived without an
	// explicit driver action.
	autoArrivalRadiusMeters = 100.0

	// nearArrivalRadiusMeters triggers the heads-up notification.
	nearArrivalRadiusMeters = 1000.0
)

// UpdateDriverLocationCommandHandler consumes one position report and drives
// every live-tracking decision off it: persisting the position, auto-arrival
// and near-arrival detection against the driver's next stop, re-chained ETAs
// for the remaining stops, running-late alerts and geofence transitions.
//
// Reports for unknown drivers or drivers without a dispatched route are
// dropped, not failed: the device keeps sending regardless. Reports older
// than the staleness window still persist the position but make no decisions.
type UpdateDriverLocationCommandHandler struct {
	uowFactory   UoWFactory
	tracker      ports.TrackingStateStore
	zones        *services.ZoneTable
	sink         ports.NotificationSink
	publisher    events.Publisher
	baseSpeedKmh float64
	logger       *slog.Logger
	now          func() time.Time
}

// NewUpdateDriverLocationCommandHandler creates a handler for position reports.
func NewUpdateDriverLocationCommandHandler(
	uowFactory UoWFactory,
	tracker ports.TrackingStateStore,
	zones *services.ZoneTable,
	sink ports.NotificationSink,
	publisher events.Publisher,
	baseSpeedKmh float64,
	logger *slog.Logger,
) (UpdateDriverLocationCommandHandler, error) {
	if baseSpeedKmh <= 0 {
		baseSpeedKmh = services.DefaultBaseSpeedKmh
	}
	if logger == nil {
		logger = slog.Default()
	}

	return UpdateDriverLocationCommandHandler{
		uowFactory:   uowFactory,
		tracker:      tracker,
		zones:        zones,
		sink:         sink,
		publisher:    publisher,
		baseSpeedKmh: baseSpeedKmh,
		logger:       logger.With("component", "update_driver_location"),
		now:          time.Now,
	}, nil
}

// trackingEffects collects the announcements decided inside the transaction
// and delivered only after it commits.
type trackingEffects struct {
	arrived    *stop.Stop
	arrivedAt  time.Time
	near       *stop.Stop
	etaUpdated []*stop.Stop
	late       []*stop.Stop
}

// Handle processes one position report.
func (h UpdateDriverLocationCommandHandler) Handle(
	ctx context.Context,
	command UpdateDriverLocationCommand,
) error {
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

	d, err := uow.DriverRepository().Get(ctx, command.DriverID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		h.logger.WarnContext(ctx, "position report for unknown driver, dropping",
			"driver_id", command.DriverID())
		return nil
	}
	if err != nil {
		return err
	}

	if err = d.UpdateLocation(command.Location(), command.ReportedAt()); err != nil {
		return err
	}
	if err = uow.DriverRepository().Update(ctx, d); err != nil {
		return err
	}

	var fx trackingEffects
	stale := d.IsLocationStale(h.now())
	if stale {
		h.logger.DebugContext(ctx, "stale position report, persisting without decisions",
			"driver_id", command.DriverID(), "reported_at", command.ReportedAt())
	} else {
		if fx, err = h.decide(ctx, uow, command); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	h.recordLivePosition(ctx, command)
	h.announce(ctx, command, fx)
	if !stale {
		h.trackGeofences(ctx, command)
	}

	return nil
}

// decide matches the report against the driver's dispatched route and applies
// arrival and ETA decisions inside the open transaction.
func (h UpdateDriverLocationCommandHandler) decide(
	ctx context.Context,
	uow UoW,
	command UpdateDriverLocationCommand,
) (trackingEffects, error) {
	var fx trackingEffects

	r, err := uow.RouteRepository().GetInProgressByDriver(ctx, command.DriverID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		h.logger.DebugContext(ctx, "no dispatched route for driver, position only",
			"driver_id", command.DriverID())
		return fx, nil
	}
	if err != nil {
		return fx, err
	}

	stops, err := uow.StopRepository().GetByRouteID(ctx, r.ID())
	if err != nil {
		return fx, err
	}

	next := nextEnRouteStop(stops)
	if next != nil {
		meters, distErr := command.Location().DistanceMeters(next.Location())
		if distErr != nil {
			return fx, distErr
		}

		switch {
		case meters <= autoArrivalRadiusMeters:
			if err = next.Arrive(command.ReportedAt()); err != nil {
				return fx, err
			}
			if err = uow.StopRepository().Update(ctx, next); err != nil {
				return fx, err
			}
			fx.arrived = next
			fx.arrivedAt = command.ReportedAt()
		case meters <= nearArrivalRadiusMeters:
			fx.near = next
		}
	}

	if err = h.rechainETAs(ctx, uow, command, stops, &fx); err != nil {
		return fx, err
	}

	return fx, nil
}

// rechainETAs recomputes estimated arrivals for every stop still en route,
// chaining travel time from the driver's reported position through each
// stop's location and service time. Shifts under the re-announce threshold
// are suppressed by the stop itself.
func (h UpdateDriverLocationCommandHandler) rechainETAs(
	ctx context.Context,
	uow UoW,
	command UpdateDriverLocationCommand,
	stops []*stop.Stop,
	fx *trackingEffects,
) error {
	position := command.Location()
	at := command.ReportedAt()
	eta := at

	if fx.arrived != nil {
		// The driver is on site: later ETAs chain from this stop's
		// location after its handover completes.
		position = fx.arrived.Location()
		eta = eta.Add(minutesToDuration(float64(fx.arrived.ServiceTimeMinutes())))
	}

	for _, s := range stops {
		if s.Status() != stop.StatusEnRoute {
			continue
		}

		km, err := position.DistanceKm(s.Location())
		if err != nil {
			return err
		}
		eta = eta.Add(minutesToDuration(services.TravelMinutes(km, h.baseSpeedKmh, at)))

		if s.UpdateEstimatedArrival(eta) {
			if err = uow.StopRepository().Update(ctx, s); err != nil {
				return err
			}
			fx.etaUpdated = append(fx.etaUpdated, s)
			if s.IsRunningLate() {
				fx.late = append(fx.late, s)
			}
		}

		eta = eta.Add(minutesToDuration(float64(s.ServiceTimeMinutes())))
		position = s.Location()
	}

	return nil
}

func (h UpdateDriverLocationCommandHandler) recordLivePosition(
	ctx context.Context,
	command UpdateDriverLocationCommand,
) {
	if h.tracker == nil {
		return
	}

	err := h.tracker.SetLivePosition(ctx, command.DriverID(), ports.LivePosition{
		Latitude:   command.Location().Latitude(),
		Longitude:  command.Location().Longitude(),
		ReportedAt: command.ReportedAt(),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "live position write failed",
			"driver_id", command.DriverID(), "error", err)
	}
}

// announce delivers the committed decisions. Arrival, near-arrival and
// running-late notifications pass through suppression flags so repeated
// reports from the same spot announce once.
func (h UpdateDriverLocationCommandHandler) announce(
	ctx context.Context,
	command UpdateDriverLocationCommand,
	fx trackingEffects,
) {
	driverID := command.DriverID()

	if fx.arrived != nil {
		publish(h.publisher, stopStatusEvent(fx.arrived, fx.arrivedAt))
		if h.claimFlag(ctx, ports.FlagArrival, fx.arrived.ID()) {
			id := fx.arrived.ID()
			publish(h.publisher, events.Event{
				Type:          events.TypeStopArrived,
				OccurredAt:    fx.arrivedAt,
				DriverID:      &driverID,
				RouteID:       fx.arrived.RouteID(),
				StopID:        &id,
				StopReference: fx.arrived.Reference(),
			})
			notifyRecipient(ctx, h.logger, h.sink, channelSMS, fx.arrived.RecipientPhone(), map[string]any{
				"event":     "arrived",
				"reference": fx.arrived.Reference(),
			})
		}
	}

	if fx.near != nil && h.claimFlag(ctx, ports.FlagNearArrival, fx.near.ID()) {
		id := fx.near.ID()
		publish(h.publisher, events.Event{
			Type:          events.TypeNearArrival,
			OccurredAt:    command.ReportedAt(),
			DriverID:      &driverID,
			RouteID:       fx.near.RouteID(),
			StopID:        &id,
			StopReference: fx.near.Reference(),
		})
		notifyRecipient(ctx, h.logger, h.sink, channelSMS, fx.near.RecipientPhone(), map[string]any{
			"event":     "near_arrival",
			"reference": fx.near.Reference(),
		})
	}

	for _, s := range fx.etaUpdated {
		id := s.ID()
		publish(h.publisher, events.Event{
			Type:          events.TypeETAUpdated,
			OccurredAt:    command.ReportedAt(),
			DriverID:      &driverID,
			RouteID:       s.RouteID(),
			StopID:        &id,
			StopReference: s.Reference(),
			ETA:           s.EstimatedArrival(),
		})
	}

	for _, s := range fx.late {
		if !h.claimFlag(ctx, ports.FlagRunningLate, s.ID()) {
			continue
		}
		id := s.ID()
		publish(h.publisher, events.Event{
			Type:          events.TypeRunningLate,
			OccurredAt:    command.ReportedAt(),
			DriverID:      &driverID,
			RouteID:       s.RouteID(),
			StopID:        &id,
			StopReference: s.Reference(),
			ETA:           s.EstimatedArrival(),
		})
		notifyRecipient(ctx, h.logger, h.sink, channelSMS, s.RecipientPhone(), map[string]any{
			"event":     "running_late",
			"reference": s.Reference(),
		})
	}
}

// claimFlag reports whether this report owns the notification for the flag.
// Flag store failures default to announcing: a duplicate notification beats a
// silently dropped one.
func (h UpdateDriverLocationCommandHandler) claimFlag(
	ctx context.Context,
	kind string,
	stopID kernel.UUID,
) bool {
	if h.tracker == nil {
		return true
	}

	first, err := h.tracker.SetNotificationFlag(ctx, kind, stopID, arrivalSuppressionTTL)
	if err != nil {
		h.logger.WarnContext(ctx, "suppression flag failed",
			"kind", kind, "stop_id", stopID, "error", err)
		return true
	}
	return first
}

// trackGeofences diffs the reported position against every zone boundary and
// emits entered/exited events only on containment changes.
func (h UpdateDriverLocationCommandHandler) trackGeofences(
	ctx context.Context,
	command UpdateDriverLocationCommand,
) {
	if h.zones == nil || h.tracker == nil {
		return
	}

	driverID := command.DriverID()
	names := append(h.zones.Names(), services.OuterZone)

	for _, zone := range names {
		inside, err := h.zones.Contains(zone, command.Location())
		if err != nil {
			h.logger.WarnContext(ctx, "zone containment check failed", "zone", zone, "error", err)
			continue
		}

		previous, known, err := h.tracker.GetGeofenceContainment(ctx, driverID, zone)
		if err != nil {
			h.logger.WarnContext(ctx, "geofence state read failed", "zone", zone, "error", err)
			continue
		}
		if known && previous == inside {
			continue
		}

		if err = h.tracker.SetGeofenceContainment(ctx, driverID, zone, inside); err != nil {
			h.logger.WarnContext(ctx, "geofence state write failed", "zone", zone, "error", err)
			continue
		}

		switch {
		case inside:
			publish(h.publisher, events.Event{
				Type:       events.TypeGeofenceEntered,
				OccurredAt: command.ReportedAt(),
				DriverID:   &driverID,
				Zone:       zone,
			})
		case known:
			publish(h.publisher, events.Event{
				Type:       events.TypeGeofenceExited,
				OccurredAt: command.ReportedAt(),
				DriverID:   &driverID,
				Zone:       zone,
			})
		}
	}
}

// nextEnRouteStop returns the first stop, in visiting order, the driver has
// not yet reached.
func nextEnRouteStop(stops []*stop.Stop) *stop.Stop {
	for _, s := range stops {
		if s.Status() == stop.StatusEnRoute {
			return s
		}
	}
	return nil
}
