package jobs

import (
	"context"
	"errors"
	"log/slog"

	"settlement/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// ReleaseEligibilityJob manages the scheduled sweep of delivered orders whose
// grace period has elapsed. Runs every 30 seconds to latch release eligibility
// and announce it to the notification pipeline.
type ReleaseEligibilityJob struct {
	handler commands.MarkReleaseEligibleCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewReleaseEligibilityJob creates a new job for sweeping release eligibility.
// Uses MarkReleaseEligibleCommandHandler to process eligible orders every 30 seconds.
func NewReleaseEligibilityJob(handler commands.MarkReleaseEligibleCommandHandler, logger *slog.Logger) *ReleaseEligibilityJob {
	return &ReleaseEligibilityJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "release_eligibility_job"),
	}
}

// Start begins the release eligibility job to run every 30 seconds.
func (j *ReleaseEligibilityJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewMarkReleaseEligibleCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			// Only log errors that are not expected business scenarios
			if !errors.Is(err, commands.ErrNoEligibleOrders) {
				j.logger.ErrorContext(ctx, "Release eligibility job failed", "error", err)
			}
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Release eligibility job started (running every 30 seconds)")
	return nil
}

// Stop stops the release eligibility job.
func (j *ReleaseEligibilityJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Release eligibility job stopped")
}
