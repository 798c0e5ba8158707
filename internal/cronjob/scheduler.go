// Package cronjob runs periodic background jobs of the API process.
package cronjob

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/realestate-cinematic/cinematic-backend/internal/metrics"
	"github.com/realestate-cinematic/cinematic-backend/internal/storage/docstore"
)

// DefaultHeartbeatSchedule pings the store every 30 seconds.
const DefaultHeartbeatSchedule = "@every 30s"

const heartbeatTimeout = 2 * time.Second

type Scheduler struct {
	cron    *cron.Cron
	store   docstore.Store
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu sync.Mutex
	// last ping result, nil until the first run
	lastUp *bool
}

func NewScheduler(store docstore.Store, m *metrics.Metrics, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		store:   store,
		metrics: m,
		logger:  logger.Named("cron"),
	}
}

// Start registers the store heartbeat on schedule and starts the scheduler.
// Without a store there is nothing to watch and Start is a no-op.
func (s *Scheduler) Start(schedule string) error {
	if s.store == nil {
		s.logger.Info("cron scheduler disabled, no document store configured")
		return nil
	}
	if schedule == "" {
		schedule = DefaultHeartbeatSchedule
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.Heartbeat(context.Background()) }); err != nil {
		return fmt.Errorf("add heartbeat job %q: %w", schedule, err)
	}

	s.logger.Info("cron scheduler started", zap.String("heartbeat", schedule))
	s.cron.Start()
	return nil
}

// Stop waits for running jobs or until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// Heartbeat pings the store once and publishes the result. Transitions
// between up and down are logged; steady state is not.
func (s *Scheduler) Heartbeat(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, heartbeatTimeout)
	defer cancel()

	err := s.store.Ping(ctx)
	up := err == nil
	s.metrics.SetStoreUp(up)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastUp == nil || *s.lastUp != up {
		if up {
			s.logger.Info("document store reachable", zap.String("database", s.store.Name()))
		} else {
			s.logger.Warn("document store unreachable", zap.String("database", s.store.Name()), zap.Error(err))
		}
	}
	s.lastUp = &up
	return up
}
