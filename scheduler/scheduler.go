// Package scheduler reloads the reactive function database on a fixed interval
// and on demand, swapping the result into the data store.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/MolecularAI/smartsrx/interfaces"
	"github.com/MolecularAI/smartsrx/logging"
	"github.com/MolecularAI/smartsrx/metrics"
	"github.com/MolecularAI/smartsrx/validation"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// staleFactor is how many missed intervals make the data stale.
const staleFactor = 2

// Scheduler handles data updates and freshness monitoring
type Scheduler struct {
	dataStore interfaces.DataStore
	parser    interfaces.Parser
	validator interfaces.DataValidator
	scheduler *gocron.Scheduler
	interval  time.Duration

	mu       sync.Mutex
	job      *gocron.Job
	stop     chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a scheduler reloading through parser every interval.
func NewScheduler(dataStore interfaces.DataStore, parser interfaces.Parser, interval time.Duration) *Scheduler {
	return &Scheduler{
		dataStore: dataStore,
		parser:    parser,
		validator: validation.NewDataValidator(),
		scheduler: gocron.NewScheduler(time.Local),
		interval:  interval,
		stop:      make(chan struct{}),
	}
}

// Start performs the initial load, then schedules periodic reloads.
func (s *Scheduler) Start() error {
	// Initial load
	if err := s.updateData(); err != nil {
		logging.Error("Failed to perform initial data load", "error", err)
		return fmt.Errorf("initial data load failed: %w", err)
	}

	job, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() {
		if err := s.updateData(); err != nil {
			logging.Error("Failed to update data", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule updates", "error", err)
		return fmt.Errorf("failed to schedule updates: %w", err)
	}

	s.mu.Lock()
	s.job = job
	s.mu.Unlock()

	s.scheduler.StartAsync()
	logging.Info("Reload scheduled", "interval", s.interval.String(), "next_run", s.NextRun().Format(time.RFC3339))

	s.startHealthMonitoring()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		s.scheduler.Stop()
	})
}

// NextRun returns the time of the next scheduled reload, or the zero time
// when nothing is scheduled.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.job == nil {
		return time.Time{}
	}
	return s.job.NextRun()
}

// Reload loads the source now. It is a no-op when a reload is already running.
func (s *Scheduler) Reload() error {
	return s.updateData()
}

// updateData parses the source and swaps the result into the store
func (s *Scheduler) updateData() error {
	// Prevent concurrent updates
	if !s.dataStore.BeginUpdate() {
		logging.Info("Update already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	logging.Info(fmt.Sprintf("Starting database update at: %s", time.Now().Format(time.RFC3339)))
	start := time.Now()

	db, err := s.parser.Parse()
	if err != nil {
		logging.Error("Failed to parse reactive functions", "error", err)
		metrics.ReloadsTotal.WithLabelValues("failure").Inc()
		return fmt.Errorf("failed to parse reactive functions: %w", err)
	}

	// Keep serving the previous database rather than an unusable one
	if err := s.validator.ValidateDatabase(db); err != nil {
		logging.Error("Parsed database rejected", "error", err)
		metrics.ReloadsTotal.WithLabelValues("rejected").Inc()
		return fmt.Errorf("invalid database: %w", err)
	}

	report := s.validator.ReportDataQuality(db)

	if len(report.DuplicateSpecificTypes) > 0 {
		logging.Warn("Duplicate SMARTS-RX identifiers detected",
			"total", len(report.DuplicateSpecificTypes),
			"specific_types", report.DuplicateSpecificTypes,
		)
	}

	if report.RecordsWithEmptyFields > 0 {
		logging.Warn("Reactive functions with empty fields",
			"count", report.RecordsWithEmptyFields,
			"keys", report.EmptyFieldKeys,
		)
	}

	// Atomic update using injected data store (including report)
	s.dataStore.UpdateData(db, report)

	metrics.ReloadsTotal.WithLabelValues("success").Inc()
	metrics.ReactiveFunctionsLoaded.Set(float64(db.Len()))
	metrics.LastReloadTimestamp.SetToCurrentTime()

	elapsed := time.Since(start)
	logging.Info("Database update completed",
		"duration", elapsed.String(),
		"version", db.Version,
		"function_count", db.Len(),
	)

	return nil
}

// startHealthMonitoring warns when reloads stop succeeding
func (s *Scheduler) startHealthMonitoring() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				lastUpdate := s.dataStore.GetLastUpdated()
				if time.Since(lastUpdate) > staleFactor*s.interval {
					logging.Warn("Data hasn't been updated recently",
						"last_updated", lastUpdate.Format(time.RFC3339),
						"interval", s.interval.String(),
					)
				}
			}
		}
	}()
}
