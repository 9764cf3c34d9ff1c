// Package scheduler runs the background jobs of the service: periodic
// catalog reloads, idle session sweeps and a catalog staleness monitor.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/giygas/telehealth-api/diagnosis"
	"github.com/giygas/telehealth-api/interfaces"
	"github.com/giygas/telehealth-api/logging"
	"github.com/giygas/telehealth-api/metrics"
)

var _ interfaces.Scheduler = (*Scheduler)(nil)

// SessionSweeper is implemented by session.Manager
type SessionSweeper interface {
	Sweep(now time.Time) int
	Count() int
}

type Scheduler struct {
	catalog   interfaces.CatalogStore
	parser    interfaces.Parser
	validator interfaces.Validator
	sessions  SessionSweeper
	aliases   map[string]string
	refresh   time.Duration

	scheduler    *gocron.Scheduler
	reloadJob    *gocron.Job
	monitorEvery time.Duration
	stop         chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewScheduler wires the jobs. sessions may be nil when no sweep is needed.
func NewScheduler(catalog interfaces.CatalogStore, parser interfaces.Parser, validator interfaces.Validator,
	sessions SessionSweeper, refresh time.Duration) *Scheduler {
	return &Scheduler{
		catalog:      catalog,
		parser:       parser,
		validator:    validator,
		sessions:     sessions,
		aliases:      diagnosis.DefaultAliases(),
		refresh:      refresh,
		scheduler:    gocron.NewScheduler(time.Local),
		monitorEvery: time.Hour,
		stop:         make(chan struct{}),
	}
}

// Start loads the catalog once, failing when that load fails, then starts
// the recurring jobs
func (s *Scheduler) Start() error {
	if err := s.Reload(context.Background()); err != nil {
		logging.Error("Failed to perform initial catalog load", "error", err)
		return fmt.Errorf("initial catalog load failed: %w", err)
	}

	job, err := s.scheduler.Every(s.refresh).WaitForSchedule().SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.Reload(ctx); err != nil {
			logging.Error("Failed to reload catalog", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule catalog reload: %w", err)
	}
	s.reloadJob = job

	if s.sessions != nil {
		_, err = s.scheduler.Every(time.Minute).WaitForSchedule().Do(func() {
			s.SweepSessions(time.Now())
		})
		if err != nil {
			return fmt.Errorf("failed to schedule session sweep: %w", err)
		}
	}

	s.scheduler.StartAsync()
	s.startHealthMonitoring()

	logging.Info("Scheduler started", "catalog_refresh", s.refresh.String(), "source", s.parser.Source())
	return nil
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.scheduler.Stop()
		close(s.stop)
		s.wg.Wait()
	})
}

// Reload parses the catalog and swaps it in. A reload already in progress
// makes this a no-op. On failure the current catalog stays.
func (s *Scheduler) Reload(ctx context.Context) error {
	if !s.catalog.BeginUpdate() {
		logging.Info("Catalog update already in progress, skipping")
		return nil
	}
	defer s.catalog.EndUpdate()

	start := time.Now()
	catalog, err := s.parser.ParseCatalog(ctx)
	if err != nil {
		metrics.CatalogReloadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to parse catalog: %w", err)
	}

	if s.validator != nil {
		s.validator.ReportCatalogQuality(catalog, s.aliases)
	}

	s.catalog.UpdateCatalog(catalog, diagnosis.NewResolver(catalog, s.aliases))
	metrics.CatalogReloadsTotal.WithLabelValues("ok").Inc()

	logging.Info("Catalog update completed",
		"duration", time.Since(start).String(),
		"diagnoses", catalog.Len(),
		"medicines", catalog.MedicineCount(),
	)
	return nil
}

// SweepSessions drops idle sessions and refreshes the session gauge
func (s *Scheduler) SweepSessions(now time.Time) int {
	if s.sessions == nil {
		return 0
	}
	removed := s.sessions.Sweep(now)
	metrics.ActiveSessions.Set(float64(s.sessions.Count()))
	if removed > 0 {
		logging.Debug("Expired idle sessions", "removed", removed)
	}
	return removed
}

// checkStaleness warns when the catalog missed two refreshes
func (s *Scheduler) checkStaleness(now time.Time) bool {
	last := s.catalog.GetLastUpdated()
	if now.Sub(last) > 2*s.refresh {
		logging.Warn("Catalog hasn't been updated in over two refresh intervals",
			"last_update", last.Format(time.RFC3339),
			"refresh", s.refresh.String(),
		)
		return true
	}
	return false
}

func (s *Scheduler) startHealthMonitoring() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.monitorEvery)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case now := <-ticker.C:
				s.checkStaleness(now)
			}
		}
	}()
}

// NextRun returns when the catalog reload job runs next, zero before Start
func (s *Scheduler) NextRun() time.Time {
	if s.reloadJob == nil {
		return time.Time{}
	}
	return s.reloadJob.NextRun()
}
