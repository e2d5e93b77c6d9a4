// Package jobs runs periodic maintenance inside the server process.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// jobTimeout bounds a single run of any job.
const jobTimeout = 10 * time.Minute

// ClassLister lists every class id. Implemented by service.ClassService.
type ClassLister interface {
	ListIDs(ctx context.Context) ([]int, error)
}

// CacheWarmer rebuilds published timetables. Implemented by service.TimetableService.
type CacheWarmer interface {
	WarmCache(ctx context.Context, classIDs []int) (int, error)
}

// AuditPruner deletes old audit entries. Implemented by service.AuditService.
type AuditPruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// Config holds the cron specs and the audit retention.
type Config struct {
	CacheWarmSchedule  string
	AuditPruneSchedule string
	AuditRetention     time.Duration
}

// Scheduler owns the cron runner and the maintenance jobs.
type Scheduler struct {
	cron    *cron.Cron
	cfg     Config
	classes ClassLister
	warmer  CacheWarmer
	pruner  AuditPruner
	log     zerolog.Logger
}

// New registers the jobs. It fails on an unparsable schedule. An empty
// schedule disables that job.
func New(cfg Config, classes ClassLister, warmer CacheWarmer, pruner AuditPruner, log zerolog.Logger) (*Scheduler, error) {
	log = log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{log: log}

	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		cfg:     cfg,
		classes: classes,
		warmer:  warmer,
		pruner:  pruner,
		log:     log,
	}

	if cfg.CacheWarmSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.CacheWarmSchedule, s.run("cache_warm", s.WarmCache)); err != nil {
			return nil, fmt.Errorf("cache warm schedule %q: %w", cfg.CacheWarmSchedule, err)
		}
	}
	if cfg.AuditPruneSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.AuditPruneSchedule, s.run("audit_prune", s.PruneAudit)); err != nil {
			return nil, fmt.Errorf("audit prune schedule %q: %w", cfg.AuditPruneSchedule, err)
		}
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop prevents new runs and returns a context done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// WarmCache refreshes the published timetable of every class.
func (s *Scheduler) WarmCache(ctx context.Context) error {
	ids, err := s.classes.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list classes: %w", err)
	}
	n, err := s.warmer.WarmCache(ctx, ids)
	if err != nil {
		return err
	}
	s.log.Info().Int("classes", n).Msg("Published timetable cache warmed")
	return nil
}

// PruneAudit removes audit entries older than the configured retention.
func (s *Scheduler) PruneAudit(ctx context.Context) error {
	if s.cfg.AuditRetention <= 0 {
		return nil
	}
	_, err := s.pruner.Prune(ctx, s.cfg.AuditRetention)
	return err
}

func (s *Scheduler) run(name string, job func(ctx context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			s.log.Error().Err(err).Str("job", name).Msg("Job failed")
			return
		}
		s.log.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("Job finished")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
