package commands

import (
	"context"

	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/domain/model/stop"
	"dispatch/internal/core/ports"
)

// progressFromStops derives the route counters from its stops. Cancelled and
// rescheduled stops leave the open bucket without counting as completed or
// failed.
func progressFromStops(stops []*stop.Stop) route.Progress {
	var p route.Progress
	for _, s := range stops {
		switch s.Status() {
		case stop.StatusPending, stop.StatusEnRoute, stop.StatusArrived:
			p.Pending++
		case stop.StatusCompleted:
			p.Completed++
		case stop.StatusFailed:
			p.Failed++
		case stop.StatusUnknown, stop.StatusCancelled, stop.StatusRescheduled:
		}
	}
	return p
}

// settleRouteProgress refreshes the route's counters after a stop transition
// and, once every stop is terminal, completes the route and releases the
// driver's reservation.
func settleRouteProgress(
	ctx context.Context,
	routes ports.RouteRepository,
	drivers ports.DriverRepository,
	r *route.Route,
	stops []*stop.Stop,
) error {
	r.UpdateProgress(progressFromStops(stops))

	if r.Progress().Pending == 0 && r.Status() == route.StatusInProgress {
		if err := r.Complete(); err != nil {
			return err
		}

		d, err := drivers.Get(ctx, r.DriverID())
		if err != nil {
			return err
		}
		if err = d.ReleaseRoute(); err != nil {
			return err
		}
		if err = drivers.Update(ctx, d); err != nil {
			return err
		}
	}

	return routes.Update(ctx, r)
}
