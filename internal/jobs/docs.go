// Package jobs runs the scheduled sweeps of the settlement engine on
// github.com/robfig/cron/v3 schedules.
//
// The only job today is ReleaseEligibilityJob. Every 30 seconds it fires the
// mark-release-eligible command, which flags delivered orders whose grace
// period has elapsed and announces each one to the notification layer. Grace
// periods are measured in minutes, so the cadence announces eligibility
// promptly without hammering the orders table.
//
// Jobs are owned by JobManager and started and stopped as one unit:
//
//	jobManager := jobs.NewJobManager(markReleaseEligibleHandler, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// A sweep that finds no due orders is the expected idle case and is not
// logged; every other error is, since it points at a real fault.
package jobs
