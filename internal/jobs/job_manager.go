package jobs

import (
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	routeSchedulingJob *RouteSchedulingJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	scheduleRoutesHandler commands.ScheduleRoutesCommandHandler,
	now func() time.Time,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		routeSchedulingJob: NewRouteSchedulingJob(scheduleRoutesHandler, now, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	return jm.routeSchedulingJob.Start()
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.routeSchedulingJob.Stop()
}
