package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/stop"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// LocationDispatcher accepts driver position reports for asynchronous
// processing. Submit returns false when the report was not accepted.
type LocationDispatcher interface {
	Submit(cmd commands.UpdateDriverLocationCommand) bool
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createStopHandler     commands.CreateStopCommandHandler
	optimizeRouteHandler  commands.OptimizeRouteCommandHandler
	scheduleRoutesHandler commands.ScheduleRoutesCommandHandler
	dispatchRouteHandler  commands.DispatchRouteCommandHandler
	arriveAtStopHandler   commands.ArriveAtStopCommandHandler
	completeStopHandler   commands.CompleteStopCommandHandler
	failStopHandler       commands.FailStopCommandHandler
	cancelStopHandler     commands.CancelStopCommandHandler
	rescheduleStopHandler commands.RescheduleStopCommandHandler

	// Position reports go through the dispatcher, not a handler, so a
	// burst from one driver cannot stall another driver's reports.
	locationDispatcher LocationDispatcher

	// Query handlers
	getTrackingInfoHandler queries.GetTrackingInfoQueryHandler
	getActiveRoutesHandler queries.GetActiveRoutesQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createStopHandler commands.CreateStopCommandHandler,
	optimizeRouteHandler commands.OptimizeRouteCommandHandler,
	scheduleRoutesHandler commands.ScheduleRoutesCommandHandler,
	dispatchRouteHandler commands.DispatchRouteCommandHandler,
	arriveAtStopHandler commands.ArriveAtStopCommandHandler,
	completeStopHandler commands.CompleteStopCommandHandler,
	failStopHandler commands.FailStopCommandHandler,
	cancelStopHandler commands.CancelStopCommandHandler,
	rescheduleStopHandler commands.RescheduleStopCommandHandler,
	locationDispatcher LocationDispatcher,
	getTrackingInfoHandler queries.GetTrackingInfoQueryHandler,
	getActiveRoutesHandler queries.GetActiveRoutesQueryHandler,
) *Server {
	return &Server{
		createStopHandler:      createStopHandler,
		optimizeRouteHandler:   optimizeRouteHandler,
		scheduleRoutesHandler:  scheduleRoutesHandler,
		dispatchRouteHandler:   dispatchRouteHandler,
		arriveAtStopHandler:    arriveAtStopHandler,
		completeStopHandler:    completeStopHandler,
		failStopHandler:        failStopHandler,
		cancelStopHandler:      cancelStopHandler,
		rescheduleStopHandler:  rescheduleStopHandler,
		locationDispatcher:     locationDispatcher,
		getTrackingInfoHandler: getTrackingInfoHandler,
		getActiveRoutesHandler: getActiveRoutesHandler,
	}
}

// RegisterRoutes binds all endpoints to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/stops", s.CreateStop)
	e.POST("/api/v1/stops/:id/arrive", s.ArriveAtStop)
	e.POST("/api/v1/stops/:id/complete", s.CompleteStop)
	e.POST("/api/v1/stops/:id/fail", s.FailStop)
	e.POST("/api/v1/stops/:id/cancel", s.CancelStop)
	e.POST("/api/v1/stops/:id/reschedule", s.RescheduleStop)
	e.POST("/api/v1/routes/:id/optimize", s.OptimizeRoute)
	e.POST("/api/v1/routes/:id/dispatch", s.DispatchRoute)
	e.POST("/api/v1/schedule", s.ScheduleRoutes)
	e.POST("/api/v1/drivers/:id/location", s.ReportDriverLocation)
	e.GET("/api/v1/routes", s.GetActiveRoutes)
	e.GET("/track/:reference", s.GetTrackingInfo)
}

// CreateStop handles POST /api/v1/stops - registers a new delivery. The stop
// starts pending and is picked up by the next scheduling sweep.
func (s *Server) CreateStop(ctx echo.Context) error {
	var request NewStop
	if err := ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	serviceDate, err := time.Parse("2006-01-02", request.ServiceDate)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid service_date, expected YYYY-MM-DD",
		})
	}

	priority, err := stop.PriorityFromString(request.Priority)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid priority: " + err.Error(),
		})
	}

	demand, err := kernel.NewCapacity(request.WeightKg, request.VolumeM3)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid demand: " + err.Error(),
		})
	}

	var window *stop.TimeWindow
	if request.WindowStart != nil && request.WindowEnd != nil {
		w, windowErr := stop.NewTimeWindow(*request.WindowStart, *request.WindowEnd)
		if windowErr != nil {
			return ctx.JSON(http.StatusBadRequest, Error{
				Code:    http.StatusBadRequest,
				Message: "Invalid time window: " + windowErr.Error(),
			})
		}
		window = &w
	}

	cmd, err := commands.NewCreateStopCommand(
		request.Address,
		request.RecipientName,
		request.RecipientPhone,
		priority,
		demand,
		request.RequiresColdChain,
		serviceDate,
		window,
		request.ServiceTimeMinutes,
		request.CODAmount,
	)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid stop data: " + err.Error(),
		})
	}

	result, err := s.createStopHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to create stop",
		})
	}

	return ctx.JSON(http.StatusCreated, CreatedStop{
		ID:        result.StopID.String(),
		Reference: result.Reference,
	})
}

// ArriveAtStop handles POST /api/v1/stops/:id/arrive - a driver reporting
// arrival at the doorstep.
func (s *Server) ArriveAtStop(ctx echo.Context) error {
	stopID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return invalidID(ctx, "stop")
	}

	cmd, err := commands.NewArriveAtStopCommand(stopID)
	if err != nil {
		return invalidCommand(ctx, err)
	}

	if err = s.arriveAtStopHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return commandFailed(ctx, "stop", err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// CompleteStop handles POST /api/v1/stops/:id/complete - closes a stop with
// proof of delivery.
func (s *Server) CompleteStop(ctx echo.Context) error {
	stopID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return invalidID(ctx, "stop")
	}

	var request CompletionProof
	if err = ctx.Bind(&request); err != nil {
		return invalidBody(ctx)
	}

	proofKind, err := stop.ProofKindFromString(request.ProofKind)
	if err != nil {
		return invalidCommand(ctx, err)
	}

	cmd, err := commands.NewCompleteStopCommand(
		stopID, proofKind, request.ProofReference, request.ReceivedBy, request.CODCollected)
	if err != nil {
		return invalidCommand(ctx, err)
	}

	if err = s.completeStopHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return commandFailed(ctx, "stop", err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// FailStop handles POST /api/v1/stops/:id/fail - records a failed attempt.
func (s *Server) FailStop(ctx echo.Context) error {
	stopID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return invalidID(ctx, "stop")
	}

	var request FailureReport
	if err = ctx.Bind(&request); err != nil {
		return invalidBody(ctx)
	}

	cmd, err := commands.NewFailStopCommand(stopID, request.Reason)
	if err != nil {
		return invalidCommand(ctx, err)
	}

	if err = s.failStopHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return commandFailed(ctx, "stop", err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// CancelStop handles POST /api/v1/stops/:id/cancel - withdraws a delivery.
func (s *Server) CancelStop(ctx echo.Context) error {
	stopID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return invalidID(ctx, "stop")
	}

	cmd, err := commands.NewCancelStopCommand(stopID)
	if err != nil {
		return invalidCommand(ctx, err)
	}

	if err = s.cancelStopHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return commandFailed(ctx, "stop", err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// RescheduleStop handles POST /api/v1/stops/:id/reschedule - moves a stop to
// a later service date under the same tracking reference.
func (s *Server) RescheduleStop(ctx echo.Context) error {
	stopID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return invalidID(ctx, "stop")
	}

	var request RescheduleRequest
	if err = ctx.Bind(&request); err != nil {
		return invalidBody(ctx)
	}

	serviceDate, err := time.Parse("2006-01-02", request.ServiceDate)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid service_date, expected YYYY-MM-DD",
		})
	}

	cmd, err := commands.NewRescheduleStopCommand(stopID, serviceDate)
	if err != nil {
		return invalidCommand(ctx, err)
	}

	if err = s.rescheduleStopHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return commandFailed(ctx, "stop", err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// DispatchRoute handles POST /api/v1/routes/:id/dispatch - a driver starting
// the route; every stop flips to en_route.
func (s *Server) DispatchRoute(ctx echo.Context) error {
	routeID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return invalidID(ctx, "route")
	}

	cmd, err := commands.NewDispatchRouteCommand(routeID)
	if err != nil {
		return invalidCommand(ctx, err)
	}

	if err = s.dispatchRouteHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return commandFailed(ctx, "route", err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// OptimizeRoute handles POST /api/v1/routes/:id/optimize - reorders the
// route's stop sequence and returns the run's metrics.
func (s *Server) OptimizeRoute(ctx echo.Context) error {
	routeID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid route id",
		})
	}

	cmd, err := commands.NewOptimizeRouteCommand(routeID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid optimize request: " + err.Error(),
		})
	}

	result, err := s.optimizeRouteHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return ctx.JSON(http.StatusNotFound, Error{
				Code:    http.StatusNotFound,
				Message: "Route not found",
			})
		}
		return ctx.JSON(http.StatusConflict, Error{
			Code:    http.StatusConflict,
			Message: "Failed to optimize route: " + err.Error(),
		})
	}

	return ctx.JSON(http.StatusOK, OptimizationRun{
		RouteID:             routeID.String(),
		Method:              string(result.Method),
		OriginalDistanceKm:  result.OriginalDistanceKm,
		OptimizedDistanceKm: result.OptimizedDistanceKm,
		Score:               result.Score,
	})
}

// ScheduleRoutes handles POST /api/v1/schedule - builds routes for every
// pending stop of the service date. Stops that could not be placed are
// reported in the response, not as an error.
func (s *Server) ScheduleRoutes(ctx echo.Context) error {
	var request ScheduleRequest
	if err := ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	serviceDate, err := time.Parse("2006-01-02", request.ServiceDate)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid service_date, expected YYYY-MM-DD",
		})
	}

	plannedStart := request.PlannedStart
	if plannedStart.IsZero() {
		plannedStart = time.Now().UTC().Add(30 * time.Minute)
	}

	cmd, err := commands.NewScheduleRoutesCommand(serviceDate, plannedStart)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid schedule request: " + err.Error(),
		})
	}

	result, err := s.scheduleRoutesHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to schedule routes",
		})
	}

	response := ScheduleResult{
		RouteIDs:   make([]string, 0, len(result.RouteIDs)),
		Unassigned: make([]UnassignedStop, 0, len(result.Unassigned)),
	}
	for _, id := range result.RouteIDs {
		response.RouteIDs = append(response.RouteIDs, id.String())
	}
	for _, unassigned := range result.Unassigned {
		response.Unassigned = append(response.Unassigned, UnassignedStop{
			StopID: unassigned.StopID.String(),
			Reason: unassigned.Reason,
		})
	}

	return ctx.JSON(http.StatusOK, response)
}

// ReportDriverLocation handles POST /api/v1/drivers/:id/location - accepts a
// position report for asynchronous processing and returns immediately.
func (s *Server) ReportDriverLocation(ctx echo.Context) error {
	driverID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid driver id",
		})
	}

	var request LocationReport
	if err := ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	reportedAt := request.ReportedAt
	if reportedAt.IsZero() {
		reportedAt = time.Now().UTC()
	}

	cmd, err := commands.NewUpdateDriverLocationCommand(
		driverID, request.Latitude, request.Longitude, reportedAt)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid position report: " + err.Error(),
		})
	}

	if !s.locationDispatcher.Submit(cmd) {
		return ctx.JSON(http.StatusServiceUnavailable, Error{
			Code:    http.StatusServiceUnavailable,
			Message: "Position report backlog is full",
		})
	}

	return ctx.NoContent(http.StatusAccepted)
}

// GetActiveRoutes handles GET /api/v1/routes - the dispatcher board of all
// open routes with driver and progress details.
func (s *Server) GetActiveRoutes(ctx echo.Context) error {
	query := queries.NewGetActiveRoutesQuery()

	routes, err := s.getActiveRoutesHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve routes",
		})
	}

	response := make([]ActiveRoute, len(routes))
	for i, r := range routes {
		response[i] = ActiveRoute{
			ID:                   r.ID.String(),
			DriverID:             r.DriverID.String(),
			DriverName:           r.DriverName,
			Status:               r.Status,
			ServiceDate:          r.ServiceDate.Format("2006-01-02"),
			StopCount:            r.StopCount,
			PendingStops:         r.PendingStops,
			CompletedStops:       r.CompletedStops,
			FailedStops:          r.FailedStops,
			TotalDistanceKm:      r.TotalDistanceKm,
			TotalDurationMinutes: r.TotalDurationMinutes,
			OptimizationMethod:   r.OptimizationMethod,
			OptimizationScore:    r.OptimizationScore,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetTrackingInfo handles GET /track/:reference - the recipient-facing
// tracking page. Lookup failures are answered with a generic in-progress
// payload so the endpoint never confirms whether a reference exists.
func (s *Server) GetTrackingInfo(ctx echo.Context) error {
	reference := ctx.Param("reference")
	token := ctx.QueryParam("token")

	query, err := queries.NewGetTrackingInfoQuery(reference, token)
	if err != nil {
		return ctx.JSON(http.StatusOK, genericTrackingInfo(reference))
	}

	info, err := s.getTrackingInfoHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusOK, genericTrackingInfo(reference))
	}

	return ctx.JSON(http.StatusOK, TrackingInfo{
		Reference:        info.Reference,
		Status:           info.Status,
		RecipientName:    info.RecipientName,
		Address:          info.Address,
		ServiceDate:      info.ServiceDate.Format("2006-01-02"),
		SequencePosition: info.SequencePosition,
		EstimatedArrival: info.EstimatedArrival,
		ActualArrival:    info.ActualArrival,
		LastUpdatedAt:    info.LastUpdatedAt,
	})
}

func genericTrackingInfo(reference string) TrackingInfo {
	return TrackingInfo{
		Reference: reference,
		Status:    "processing",
	}
}

func invalidID(ctx echo.Context, kind string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: "Invalid " + kind + " id",
	})
}

func invalidBody(ctx echo.Context) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: "Invalid request body",
	})
}

func invalidCommand(ctx echo.Context, err error) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: "Invalid request: " + err.Error(),
	})
}

// commandFailed maps handler errors: unknown aggregates are 404, everything
// else is treated as a state conflict.
func commandFailed(ctx echo.Context, kind string, err error) error {
	if errors.Is(err, errs.ErrObjectNotFound) {
		return ctx.JSON(http.StatusNotFound, Error{
			Code:    http.StatusNotFound,
			Message: strings.ToUpper(kind[:1]) + kind[1:] + " not found",
		})
	}
	return ctx.JSON(http.StatusConflict, Error{
		Code:    http.StatusConflict,
		Message: "Operation rejected: " + err.Error(),
	})
}
