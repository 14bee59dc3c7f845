package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// schedulingLeadTime is how far ahead of the scheduling run newly built
// routes plan their depot departure.
const schedulingLeadTime = 30 * time.Minute

// RouteSchedulingJob periodically sweeps unassigned pending stops for the
// current service date and builds optimized routes for them. Stops created
// after a sweep are picked up by the next one.
type RouteSchedulingJob struct {
	handler commands.ScheduleRoutesCommandHandler
	cron    *cron.Cron
	now     func() time.Time
	logger  *slog.Logger
}

// NewRouteSchedulingJob creates a job that schedules routes every five
// minutes. Now may be nil to use wall-clock time.
func NewRouteSchedulingJob(
	handler commands.ScheduleRoutesCommandHandler,
	now func() time.Time,
	logger *slog.Logger,
) *RouteSchedulingJob {
	if now == nil {
		now = time.Now
	}
	return &RouteSchedulingJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		now:     now,
		logger:  logger.With("component", "route_scheduling_job"),
	}
}

// Start begins the scheduling sweep, running every five minutes.
func (j *RouteSchedulingJob) Start() error {
	_, err := j.cron.AddFunc("0 */5 * * * *", j.run)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(),
		"Route scheduling job started (running every five minutes)")
	return nil
}

// Stop stops the scheduling sweep.
func (j *RouteSchedulingJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Route scheduling job stopped")
}

func (j *RouteSchedulingJob) run() {
	ctx := context.Background()
	at := j.now().UTC()
	serviceDate := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)

	cmd, err := commands.NewScheduleRoutesCommand(serviceDate, at.Add(schedulingLeadTime))
	if err != nil {
		j.logger.ErrorContext(ctx, "Route scheduling command rejected", "error", err)
		return
	}

	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Route scheduling job failed", "error", err)
		return
	}

	if len(result.RouteIDs) > 0 || len(result.Unassigned) > 0 {
		j.logger.InfoContext(ctx, "Route scheduling sweep finished",
			"routes", len(result.RouteIDs),
			"unassigned", len(result.Unassigned))
	}
}
