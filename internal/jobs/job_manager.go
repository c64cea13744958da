package jobs

import (
	"fmt"
	"log/slog"

	"settlement/internal/core/application/usecases/commands"
)

// JobManager owns the background jobs of the settlement engine and starts
// and stops them as one unit.
type JobManager struct {
	releaseEligibilityJob *ReleaseEligibilityJob
}

// NewJobManager wires the jobs to the command handlers they drive.
func NewJobManager(
	markReleaseEligibleHandler commands.MarkReleaseEligibleCommandHandler,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		releaseEligibilityJob: NewReleaseEligibilityJob(markReleaseEligibleHandler, logger),
	}
}

// StartAll starts every scheduled job, failing on the first one that cannot
// be scheduled.
func (jm *JobManager) StartAll() error {
	if err := jm.releaseEligibilityJob.Start(); err != nil {
		return fmt.Errorf("failed to start release eligibility job: %w", err)
	}

	return nil
}

// StopAll stops every scheduled job gracefully.
func (jm *JobManager) StopAll() {
	jm.releaseEligibilityJob.Stop()
}
