package storage

import (
	"time"

	"github.com/roylee0704/gron"

	"giftd/internal/providers"
	"giftd/internal/services"
	"giftd/internal/storage/interfaces"
	"giftd/internal/structures"
)

// Scheduler runs the periodic safety-net persist. Every mutation already
// saves synchronously; the tick catches anything that slipped through a
// failed save once the underlying condition clears, and Persist doubles as
// the shutdown flush.
type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	service services.LedgerServiceInterface
	metrics providers.MetricsProviderInterface
	cron    *gron.Cron
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := s.config.Persistence.SaveInterval

	s.cron.AddFunc(gron.Every(interval*time.Second), func() {
		if err := s.persist(); err != nil {
			return
		}
		s.logger.Infof(providers.TypeStore, "Persisted ledger to %s", s.config.Persistence.FilePath)
	})

	s.cron.Start()
}

func (s *Scheduler) persist() error {
	start := time.Now()
	err := s.service.Persist()
	s.metrics.ObservePersistenceDuration(time.Since(start))
	if err != nil {
		s.logger.Errorf(providers.TypeStore, "Error while persisting data: %s", err)
	}
	return err
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	return s.service.Restore()
}

func (s *Scheduler) Persist() error {
	s.logger.Infof(providers.TypeStore, "Persisting ledger to file...")
	return s.persist()
}

func NewScheduler(config *structures.Config, logger providers.Logger, service services.LedgerServiceInterface, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		service: service,
		metrics: metrics,
	}
}
