// Package jobs provides scheduled background tasks for the dispatch system.
//
// Jobs are cron-based, built on github.com/robfig/cron/v3, and managed
// through JobManager:
//
//	jobManager := jobs.NewJobManager(scheduleRoutesHandler, nil, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// RouteSchedulingJob runs every five minutes. Each sweep picks up the
// pending stops for the current service date that no earlier sweep could
// assign, so an empty sweep is normal and not logged as an error.
package jobs
