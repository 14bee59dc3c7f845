package commands

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/events"
	"dispatch/internal/core/ports"
)

// FailStopCommandHandler closes a stop as failed, settles the route and
// raises an incident report when the reason is in the critical set.
type FailStopCommandHandler struct {
	uowFactory UoWFactory
	reporter   ports.IncidentReporter
	publisher  events.Publisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewFailStopCommandHandler creates a handler for delivery failures.
func NewFailStopCommandHandler(
	uowFactory UoWFactory,
	reporter ports.IncidentReporter,
	publisher events.Publisher,
	logger *slog.Logger,
) FailStopCommandHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return FailStopCommandHandler{
		uowFactory: uowFactory,
		reporter:   reporter,
		publisher:  publisher,
		logger:     logger.With("component", "fail_stop"),
		now:        time.Now,
	}
}

// Handle records the failure. The incident report is a post-commit side
// effect: a reporting failure is logged, never unwound into the transition.
func (h FailStopCommandHandler) Handle(ctx context.Context, command FailStopCommand) error {
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

	if err = s.Fail(command.Reason()); err != nil {
		return err
	}

	if err = stopRepo.Update(ctx, s); err != nil {
		return err
	}

	if routeID := s.RouteID(); routeID != nil {
		r, routeErr := uow.RouteRepository().Get(ctx, *routeID)
		if routeErr != nil {
			return routeErr
		}
		stops, stopsErr := stopRepo.GetByRouteID(ctx, *routeID)
		if stopsErr != nil {
			return stopsErr
		}
		if err = settleRouteProgress(ctx, uow.RouteRepository(), uow.DriverRepository(), r, stops); err != nil {
			return err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	failedAt := h.now()
	publish(h.publisher, stopStatusEvent(s, failedAt))

	if s.IsCriticalFailure() && h.reporter != nil {
		incident := ports.Incident{
			StopID:     s.ID(),
			RouteID:    s.RouteID(),
			Reason:     command.Reason(),
			ReportedAt: failedAt,
		}
		if err = h.reporter.Report(ctx, incident); err != nil {
			h.logger.ErrorContext(ctx, "incident report failed",
				"stop_id", s.ID(), "reason", command.Reason(), "error", err)
		}
	}

	return nil
}
