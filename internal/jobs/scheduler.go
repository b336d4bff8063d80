package jobs

import (
	"context"
	"time"

	"sales_dashboard/internal/domain"
	"sales_dashboard/internal/logger"

	"github.com/robfig/cron/v3"
)

type SummaryRefresher interface {
	RefreshSummary(ctx context.Context) (*domain.DashboardSummary, error)
}

// Scheduler runs background maintenance on cron schedules.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// AddSummaryWarmer recomputes the dashboard summary cache on spec (e.g. "@every 1m").
func (s *Scheduler) AddSummaryWarmer(spec string, r SummaryRefresher) error {
	_, err := s.cron.AddFunc(spec, func() {
		WarmSummary(context.Background(), r)
	})
	return err
}

// WarmSummary runs one refresh with a bounded timeout.
func WarmSummary(ctx context.Context, r SummaryRefresher) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	start := time.Now()
	if _, err := r.RefreshSummary(ctx); err != nil {
		logger.Warn("dashboard summary refresh failed", "error", err)
		return
	}
	logger.Debug("dashboard summary refreshed", "duration_ms", time.Since(start).Milliseconds())
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops scheduling and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
