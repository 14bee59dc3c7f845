package commands

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
	"dispatch/internal/core/domain/model/stop"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
)

const reasonNoSuitableDriver = "no suitable driver"

// ScheduleRoutesCommandHandler turns the day's backlog of unassigned stops
// into optimized driver routes. Stops are grouped by priority tier then by
// geographic zone; each group becomes one route for the best-ranked driver
// that survives the reservation race. Groups nobody can take are reported as
// unassigned, never dropped and never fatal.
type ScheduleRoutesCommandHandler struct {
	uowFactory    UoWFactory
	zones         *services.ZoneTable
	engine        services.DriverAssignmentEngine
	matrixBuilder services.MatrixBuilder
	optimizer     services.RouteOptimizer
	depot         kernel.Location
	logger        *slog.Logger
	now           func() time.Time
}

// NewScheduleRoutesCommandHandler creates a handler for batch scheduling.
func NewScheduleRoutesCommandHandler(
	uowFactory UoWFactory,
	zones *services.ZoneTable,
	engine services.DriverAssignmentEngine,
	matrixBuilder services.MatrixBuilder,
	optimizer services.RouteOptimizer,
	depot kernel.Location,
	logger *slog.Logger,
) (ScheduleRoutesCommandHandler, error) {
	if err := depot.Validate(); err != nil {
		return ScheduleRoutesCommandHandler{}, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return ScheduleRoutesCommandHandler{
		uowFactory:    uowFactory,
		zones:         zones,
		engine:        engine,
		matrixBuilder: matrixBuilder,
		optimizer:     optimizer,
		depot:         depot,
		logger:        logger.With("component", "schedule_routes"),
		now:           time.Now,
	}, nil
}

// Handle schedules every pending stop of the service date.
func (h ScheduleRoutesCommandHandler) Handle(
	ctx context.Context,
	command ScheduleRoutesCommand,
) (ScheduleRoutesResult, error) {
	if err := command.Validate(); err != nil {
		return ScheduleRoutesResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ScheduleRoutesResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	pending, err := uow.StopRepository().GetPendingForDate(ctx, command.ServiceDate())
	if err != nil {
		return ScheduleRoutesResult{}, err
	}

	var result ScheduleRoutesResult
	assigned := make(map[kernel.UUID]bool)
	for _, group := range h.groupStops(pending) {
		routeID, groupErr := h.scheduleGroup(ctx, uow, command, group, assigned)
		if groupErr != nil {
			return ScheduleRoutesResult{}, groupErr
		}
		if routeID == nil {
			for _, s := range group.stops {
				result.Unassigned = append(result.Unassigned, UnassignedStop{
					StopID: s.ID(),
					Reason: reasonNoSuitableDriver,
				})
			}
			continue
		}
		result.RouteIDs = append(result.RouteIDs, *routeID)
	}

	if err = uow.Commit(ctx); err != nil {
		return ScheduleRoutesResult{}, err
	}

	h.logger.InfoContext(ctx, "scheduling run finished",
		"service_date", command.ServiceDate().Format(time.DateOnly),
		"routes_created", len(result.RouteIDs),
		"stops_unassigned", len(result.Unassigned))

	return result, nil
}

// stopGroup is one priority tier's worth of stops inside one zone.
type stopGroup struct {
	zone  string
	stops []*stop.Stop
}

// groupStops splits the backlog by priority tier in processing order, then by
// zone within each tier. Zones iterate in sorted order so runs over the same
// backlog produce the same routes.
func (h ScheduleRoutesCommandHandler) groupStops(pending []*stop.Stop) []stopGroup {
	var groups []stopGroup
	for _, priority := range stop.PriorityProcessingOrder() {
		byZone := make(map[string][]*stop.Stop)
		for _, s := range pending {
			if s.Priority() != priority {
				continue
			}
			zone := h.zones.ZoneFor(s.Location())
			byZone[zone] = append(byZone[zone], s)
		}

		zones := make([]string, 0, len(byZone))
		for zone := range byZone {
			zones = append(zones, zone)
		}
		sort.Strings(zones)

		for _, zone := range zones {
			groups = append(groups, stopGroup{zone: zone, stops: byZone[zone]})
		}
	}
	return groups
}

// scheduleGroup builds one route for the group, or returns nil when no driver
// can take it. Candidates are tried best-first; losing the reservation
// compare-and-set falls through to the next one. A driver already routed for
// the date, whether by an earlier group of this run or by a previous run, is
// never offered again.
func (h ScheduleRoutesCommandHandler) scheduleGroup(
	ctx context.Context,
	uow UoW,
	command ScheduleRoutesCommand,
	group stopGroup,
	assigned map[kernel.UUID]bool,
) (*kernel.UUID, error) {
	requirement, err := h.requirementFor(group)
	if err != nil {
		return nil, err
	}

	available, err := uow.DriverRepository().GetAllAvailable(ctx, command.ServiceDate())
	if err != nil {
		return nil, err
	}

	free := make([]*driver.Driver, 0, len(available))
	for _, d := range available {
		if assigned[d.ID()] {
			continue
		}
		free = append(free, d)
	}

	ranked, err := h.engine.RankCandidates(free, requirement)
	if errors.Is(err, services.ErrNoSuitableDriver) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for _, candidate := range ranked {
		reserved, reserveErr := h.reserve(ctx, uow.DriverRepository(), candidate)
		if reserveErr != nil {
			return nil, reserveErr
		}
		if !reserved {
			continue
		}

		r, buildErr := h.buildRoute(ctx, uow, command, candidate, group)
		if buildErr != nil {
			return nil, buildErr
		}

		assigned[candidate.ID()] = true
		id := r.ID()
		return &id, nil
	}

	return nil, nil
}

func (h ScheduleRoutesCommandHandler) requirementFor(group stopGroup) (services.AssignmentRequirement, error) {
	demand := kernel.EmptyCapacity()
	coldChain := false
	for _, s := range group.stops {
		total, err := demand.Add(s.Demand())
		if err != nil {
			return services.AssignmentRequirement{}, err
		}
		demand = total
		coldChain = coldChain || s.RequiresColdChain()
	}

	return services.AssignmentRequirement{
		Demand:            demand,
		RequiresColdChain: coldChain,
		Zone:              group.zone,
		StopCount:         len(group.stops),
		PickupLocation:    &h.depot,
	}, nil
}

// reserve commits the candidate's route reservation, reporting false when a
// concurrent scheduling run won the compare-and-set.
func (h ScheduleRoutesCommandHandler) reserve(
	ctx context.Context,
	drivers ports.DriverRepository,
	candidate *driver.Driver,
) (bool, error) {
	previous := candidate.ActiveRouteCount()
	if err := candidate.ReserveRoute(); err != nil {
		return false, err
	}

	err := drivers.Reserve(ctx, candidate, previous)
	if errors.Is(err, ports.ErrDriverReservationConflict) {
		h.logger.InfoContext(ctx, "lost driver reservation race, trying next candidate",
			"driver_id", candidate.ID())
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (h ScheduleRoutesCommandHandler) buildRoute(
	ctx context.Context,
	uow UoW,
	command ScheduleRoutesCommand,
	d *driver.Driver,
	group stopGroup,
) (*route.Route, error) {
	r, err := route.NewRoute(kernel.NewUUID(), d.ID(), command.ServiceDate(), command.PlannedStart())
	if err != nil {
		return nil, err
	}

	for i, s := range group.stops {
		if err = r.AddStop(s.ID()); err != nil {
			return nil, err
		}
		if err = s.AssignToRoute(r.ID(), i+1); err != nil {
			return nil, err
		}
	}

	matrix, err := h.matrixBuilder.Build(ctx, matrixPointsFor(h.depot, group.stops))
	if err != nil {
		return nil, err
	}

	result, err := h.optimizer.Optimize(stopIDStrings(group.stops), matrix, nil)
	if err != nil {
		return nil, err
	}

	if len(group.stops) == 1 {
		// The optimizer skips trivial inputs; the route still gets its
		// out-and-back tour metrics recorded.
		result = singleStopResult(group.stops, matrix)
	}

	if err = applyOptimizedPlan(r, group.stops, result, matrix, h.now()); err != nil {
		return nil, err
	}

	if err = uow.RouteRepository().Add(ctx, r); err != nil {
		return nil, err
	}
	for _, s := range group.stops {
		if err = uow.StopRepository().Update(ctx, s); err != nil {
			return nil, err
		}
	}

	h.logger.InfoContext(ctx, "route scheduled",
		"route_id", r.ID(),
		"driver_id", d.ID(),
		"zone", group.zone,
		"stops", len(group.stops),
		"method", r.OptimizationMethod(),
		"score", r.OptimizationScore())

	return r, nil
}

// singleStopResult fills in the out-and-back tour metrics the optimizer skips
// for trivial inputs.
func singleStopResult(stops []*stop.Stop, matrix services.DistanceMatrix) services.OptimizationResult {
	id := stops[0].ID().String()
	out, _ := matrix.Entry(services.DepotID, id)
	back, _ := matrix.Entry(id, services.DepotID)
	distance := out.DistanceKm + back.DistanceKm

	return services.OptimizationResult{
		Sequence:            []string{id},
		OriginalDistanceKm:  distance,
		OptimizedDistanceKm: distance,
		Method:              services.MethodNone,
	}
}
