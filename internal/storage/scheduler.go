package storage

import (
	"context"
	"vihub/internal/providers"
	"vihub/internal/services"
	"vihub/internal/storage/interfaces"
	"vihub/internal/structures"

	"github.com/roylee0704/gron"
	"go.uber.org/atomic"
)

// Scheduler restores the patient list on start, runs the periodic batch
// synchronize and flushes the list on shutdown.
type Scheduler struct {
	config     *structures.Config
	logger     providers.Logger
	patients   services.PatientServiceInterface
	reconciler services.ReconciliationServiceInterface
	cron       *gron.Cron
	syncing    *atomic.Bool
	ctx        context.Context
	cancel     context.CancelFunc
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	if interval := s.config.Sync.Interval; interval > 0 {
		s.cron.AddFunc(gron.Every(interval), s.RunSync)
		s.logger.Infof(providers.TypeSync, "Automatic synchronize every %s", interval)
	}
	s.cron.Start()
}

// RunSync runs one batch synchronize unless another one is still running.
func (s *Scheduler) RunSync() {
	if !s.syncing.CompareAndSwap(false, true) {
		s.logger.Warnf(providers.TypeSync, "Synchronize already in progress, skipping")
		return
	}
	defer s.syncing.Store(false)

	s.logger.Infof(providers.TypeSync, "Synchronize all imported patients...")
	results, err := s.reconciler.SyncAllAndPersist(s.ctx)
	if err != nil {
		s.logger.Errorf(providers.TypeSync, "Error while synchronizing patients: %s", err)
		return
	}
	s.logger.Infof(providers.TypeSync, "Synchronize finished with %d results", len(results))
}

func (s *Scheduler) Stop() {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	return s.patients.Restore()
}

func (s *Scheduler) Persist() error {
	s.logger.Infof(providers.TypeApp, "Persisting patients to file %s...", s.config.Persistence.FilePath)
	if err := s.patients.Persist(); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting data: %s", err)
		return err
	}
	return nil
}

func NewScheduler(
	config *structures.Config,
	logger providers.Logger,
	patients services.PatientServiceInterface,
	reconciler services.ReconciliationServiceInterface,
) interfaces.SchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		config:     config,
		logger:     logger,
		patients:   patients,
		reconciler: reconciler,
		syncing:    atomic.NewBool(false),
		ctx:        ctx,
		cancel:     cancel,
	}
}
