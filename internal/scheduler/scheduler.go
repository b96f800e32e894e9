package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"media_catalog/internal/domain"
)

const (
	dailyJob  = "refresh-daily"
	weeklyJob = "refresh-weekly"
)

// Refresher is the part of the refresh service the scheduler drives.
type Refresher interface {
	Bootstrap(ctx context.Context) (bool, error)
	RefreshClass(ctx context.Context, class domain.TTLClass) error
	RefreshStale(ctx context.Context) error
	RefreshLabel(ctx context.Context, label string) (*domain.IngestStats, error)
}

type Config struct {
	DailyCron      string
	WeeklyCron     string
	Location       *time.Location
	Bootstrap      bool
	CatchUpOnStart bool
}

// Scheduler runs the startup load and the periodic refresh jobs. At most
// one refresh runs at a time, whether it was triggered by cron or by hand.
type Scheduler struct {
	gocron    gocron.Scheduler
	refresher Refresher
	cfg       Config
	clock     clockwork.Clock
	logger    *slog.Logger

	mu     sync.Mutex
	runCtx context.Context
}

func New(refresher Refresher, cfg Config, clock clockwork.Clock, logger *slog.Logger) (*Scheduler, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	gs, err := gocron.NewScheduler(
		gocron.WithLocation(cfg.Location),
		gocron.WithClock(clock),
		gocron.WithLimitConcurrentJobs(1, gocron.LimitModeWait),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	s := &Scheduler{
		gocron:    gs,
		refresher: refresher,
		cfg:       cfg,
		clock:     clock,
		logger:    logger.With("component", "scheduler"),
		runCtx:    context.Background(),
	}

	jobs := []struct {
		name  string
		cron  string
		class domain.TTLClass
	}{
		{dailyJob, cfg.DailyCron, domain.ClassDaily},
		{weeklyJob, cfg.WeeklyCron, domain.ClassWeekly},
	}
	for _, j := range jobs {
		class := j.class
		_, err := gs.NewJob(
			gocron.CronJob(j.cron, false),
			gocron.NewTask(func() { s.refreshClass(class) }),
			gocron.WithName(j.name),
			gocron.WithTags(string(class)),
		)
		if err != nil {
			_ = gs.Shutdown()
			return nil, fmt.Errorf("failed to create job %q: %w", j.name, err)
		}
		s.logger.Info("registered job", "name", j.name, "cron", j.cron, "class", class)
	}

	return s, nil
}

// Start runs the startup load, then the cron jobs until ctx is done. A
// configuration error during startup is returned; other failures are
// logged and left to the next scheduled run.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.runCtx = ctx
	s.mu.Unlock()

	if err := s.startup(ctx); err != nil {
		_ = s.gocron.Shutdown()
		return err
	}

	s.gocron.Start()
	for _, job := range s.gocron.Jobs() {
		if next, err := job.NextRun(); err == nil {
			s.logger.Info("job scheduled", "name", job.Name(), "next_run", next)
		}
	}

	<-ctx.Done()
	s.logger.Info("scheduler stopping")
	if err := s.gocron.Shutdown(); err != nil {
		s.logger.Error("scheduler shutdown failed", "error", err)
	}
	return ctx.Err()
}

func (s *Scheduler) startup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.Bootstrap {
		ran, err := s.refresher.Bootstrap(ctx)
		if err != nil {
			if domain.IsConfigurationError(err) {
				return err
			}
			s.logger.Error("bootstrap failed", "error", err)
		}
		if ran {
			return nil
		}
	}

	if s.cfg.CatchUpOnStart {
		if err := s.refresher.RefreshStale(ctx); err != nil {
			if domain.IsConfigurationError(err) {
				return err
			}
			s.logger.Error("catch-up refresh failed", "error", err)
		}
	}
	return nil
}

// RunNow refreshes one category immediately, waiting for any refresh in
// progress to finish first.
func (s *Scheduler) RunNow(ctx context.Context, label string) (*domain.IngestStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refresher.RefreshLabel(ctx, label)
}

func (s *Scheduler) refreshClass(class domain.TTLClass) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.clock.Now()
	s.logger.Info("scheduled refresh starting", "class", class)

	if err := s.refresher.RefreshClass(s.runCtx, class); err != nil {
		s.logger.Error("scheduled refresh failed",
			"class", class,
			"duration", s.clock.Since(start),
			"error", err,
		)
		return
	}
	s.logger.Info("scheduled refresh completed", "class", class, "duration", s.clock.Since(start))
}

func (s *Scheduler) Stop() error {
	return s.gocron.Shutdown()
}
