package scheduler

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MolecularAI/smartsrx/hierarchy"
	"github.com/MolecularAI/smartsrx/interfaces"
)

// mockSchedulerDataStore records what the scheduler stores
type mockSchedulerDataStore struct {
	mu          sync.Mutex
	db          *hierarchy.Database
	report      *interfaces.DataQualityReport
	lastUpdated time.Time
	updating    bool
	updateCount int
}

func (m *mockSchedulerDataStore) GetDatabase() *hierarchy.Database {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db
}

func (m *mockSchedulerDataStore) GetSpecificTypeMap() map[string]hierarchy.ReactiveFunction {
	return map[string]hierarchy.ReactiveFunction{}
}

func (m *mockSchedulerDataStore) GetDataQualityReport() *interfaces.DataQualityReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.report
}

func (m *mockSchedulerDataStore) GetLastUpdated() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastUpdated
}

func (m *mockSchedulerDataStore) IsUpdating() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updating
}

func (m *mockSchedulerDataStore) GetServerStartTime() time.Time {
	return time.Time{} // Return zero time for mock
}

func (m *mockSchedulerDataStore) UpdateData(db *hierarchy.Database, report *interfaces.DataQualityReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.db = db
	m.report = report
	m.lastUpdated = time.Now()
	m.updateCount++
}

func (m *mockSchedulerDataStore) BeginUpdate() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updating {
		return false
	}
	m.updating = true
	return true
}

func (m *mockSchedulerDataStore) EndUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updating = false
}

func (m *mockSchedulerDataStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateCount
}

// mockSchedulerParser returns a fixed database
type mockSchedulerParser struct {
	parseCount atomic.Int32
	shouldFail bool
	db         *hierarchy.Database
}

func (m *mockSchedulerParser) Parse() (*hierarchy.Database, error) {
	m.parseCount.Add(1)
	if m.shouldFail {
		return nil, errors.New("parse failed")
	}
	if m.db != nil {
		return m.db, nil
	}
	return hierarchy.NewDatabase("1.0.0", []hierarchy.ReactiveFunction{
		{Category: "Alcohol", Subcategory: "Primary", SpecificType: "Alcohol_Primary", Pattern: "[CH2][OH]"},
		{Category: "Amine", Subcategory: "Primary", SpecificType: "Amine_Primary", Pattern: "[NH2]"},
	}), nil
}

func TestScheduler_SuccessfulUpdate(t *testing.T) {
	store := &mockSchedulerDataStore{}
	parser := &mockSchedulerParser{}
	s := NewScheduler(store, parser, time.Hour)

	if err := s.updateData(); err != nil {
		t.Fatalf("updateData failed: %v", err)
	}

	if store.count() != 1 {
		t.Errorf("Expected 1 update, got %d", store.count())
	}
	if db := store.GetDatabase(); db == nil || db.Len() != 2 {
		t.Errorf("Expected 2 reactive functions, got %+v", db)
	}
	if store.GetDataQualityReport() == nil {
		t.Error("Expected a quality report to be stored")
	}
	if store.IsUpdating() {
		t.Error("Update flag should be cleared")
	}
}

func TestScheduler_ParseFailure(t *testing.T) {
	store := &mockSchedulerDataStore{}
	parser := &mockSchedulerParser{shouldFail: true}
	s := NewScheduler(store, parser, time.Hour)

	if err := s.updateData(); err == nil {
		t.Error("Expected error when parser fails")
	}
	if store.count() != 0 {
		t.Error("Store should not be updated when parsing fails")
	}
	if store.IsUpdating() {
		t.Error("Update flag should be cleared after a failure")
	}

	if err := s.Start(); err == nil {
		t.Error("Start should fail when the initial load fails")
	}
}

func TestScheduler_RejectsEmptyDatabase(t *testing.T) {
	previous := hierarchy.NewDatabase("0.9.0", []hierarchy.ReactiveFunction{
		{Category: "A", Subcategory: "B", SpecificType: "C", Pattern: "D"},
	})
	store := &mockSchedulerDataStore{db: previous}
	parser := &mockSchedulerParser{db: hierarchy.NewDatabase("1.0.0", nil)}
	s := NewScheduler(store, parser, time.Hour)

	if err := s.updateData(); err == nil {
		t.Error("Expected an empty database to be rejected")
	}
	if store.GetDatabase() != previous {
		t.Error("Previous database should still be served")
	}
}

func TestScheduler_QualityReport(t *testing.T) {
	store := &mockSchedulerDataStore{}
	parser := &mockSchedulerParser{db: hierarchy.NewDatabase("1.0.0", []hierarchy.ReactiveFunction{
		{Category: "A", Subcategory: "B", SpecificType: "Dup", Pattern: "C"},
		{Category: "A", Subcategory: "B", SpecificType: "Dup", Pattern: "N"},
	})}
	s := NewScheduler(store, parser, time.Hour)

	if err := s.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	report := store.GetDataQualityReport()
	if len(report.DuplicateSpecificTypes) != 1 || report.DuplicateSpecificTypes[0] != "Dup" {
		t.Errorf("Expected duplicate Dup, got %v", report.DuplicateSpecificTypes)
	}
}

func TestScheduler_ConcurrentUpdatePrevention(t *testing.T) {
	store := &mockSchedulerDataStore{}
	parser := &mockSchedulerParser{}
	s := NewScheduler(store, parser, time.Hour)

	// Simulate an update already running
	store.BeginUpdate()

	if err := s.updateData(); err != nil {
		t.Errorf("Skipped update should not return an error, got %v", err)
	}
	if parser.parseCount.Load() != 0 {
		t.Error("Parser should not run while another update is in progress")
	}

	store.EndUpdate()
}

func TestScheduler_StartAndNextRun(t *testing.T) {
	store := &mockSchedulerDataStore{}
	parser := &mockSchedulerParser{}
	s := NewScheduler(store, parser, time.Hour)

	if !s.NextRun().IsZero() {
		t.Error("NextRun should be zero before Start")
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	if store.count() != 1 {
		t.Errorf("Expected the initial load only, got %d updates", store.count())
	}

	next := s.NextRun()
	if next.Before(time.Now().Add(50*time.Minute)) || next.After(time.Now().Add(61*time.Minute)) {
		t.Errorf("Expected next run about an hour from now, got %v", next)
	}

	// Stop is idempotent
	s.Stop()
}

func TestSourceWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SMARTS_RX.txt")
	if err := os.WriteFile(path, []byte("header\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan struct{}, 10)
	watcher, err := NewSourceWatcher(path, 50*time.Millisecond, func() error {
		reloaded <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("NewSourceWatcher failed: %v", err)
	}
	watcher.Start()
	defer watcher.Stop()

	// A burst of writes should collapse into one reload
	for i := range 3 {
		if err := os.WriteFile(path, []byte("header\nA B C D\n"[:8+i]), 0644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("Expected a reload after the source changed")
	}

	select {
	case <-reloaded:
		t.Error("Expected writes to be debounced into a single reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestSourceWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SMARTS_RX.txt")
	if err := os.WriteFile(path, []byte("header\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	watcher, err := NewSourceWatcher(path, 20*time.Millisecond, func() error {
		calls.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("NewSourceWatcher failed: %v", err)
	}
	watcher.Start()

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if err := watcher.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("Expected no reload for unrelated files, got %d", calls.Load())
	}
}

func TestSourceWatcher_StopCancelsPendingReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "SMARTS_RX.txt")
	if err := os.WriteFile(path, []byte("header\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	watcher, err := NewSourceWatcher(path, 200*time.Millisecond, func() error {
		calls.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("NewSourceWatcher failed: %v", err)
	}
	watcher.Start()

	if err := os.WriteFile(path, []byte("header\nA B C D\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := watcher.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}

	// Nothing may be armed once Stop returns
	watcher.scheduleReload()
	time.Sleep(500 * time.Millisecond)

	if calls.Load() != 0 {
		t.Errorf("Expected no reload after Stop, got %d", calls.Load())
	}
}

func TestSourceWatcher_MissingDirectory(t *testing.T) {
	_, err := NewSourceWatcher(filepath.Join(t.TempDir(), "missing", "SMARTS_RX.txt"), 0, func() error { return nil })
	if err == nil {
		t.Error("Expected an error when the directory does not exist")
	}
}
