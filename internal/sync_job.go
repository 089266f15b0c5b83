package internal

import (
	"context"
	"vihub/internal/models"
	"vihub/internal/providers"
	"vihub/internal/services"
	"vihub/internal/storage/interfaces"
)

// SyncJob is the one-shot batch synchronize run by the CLI.
type SyncJob struct {
	scheduler  interfaces.SchedulerInterface
	reconciler services.ReconciliationServiceInterface
	logger     providers.Logger
}

func NewSyncJob(scheduler interfaces.SchedulerInterface, reconciler services.ReconciliationServiceInterface, logger providers.Logger) *SyncJob {
	return &SyncJob{
		scheduler:  scheduler,
		reconciler: reconciler,
		logger:     logger,
	}
}

func (j *SyncJob) Run(ctx context.Context) ([]models.SyncResult, error) {
	if err := j.scheduler.Restore(); err != nil {
		return nil, err
	}
	j.logger.Infof(providers.TypeSync, "Running one-shot synchronize")
	return j.reconciler.SyncAllAndPersist(ctx)
}
