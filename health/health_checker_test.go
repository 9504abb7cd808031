package health

import (
	"net/http"
	"testing"
	"time"

	"github.com/MolecularAI/smartsrx/hierarchy"
	"github.com/MolecularAI/smartsrx/interfaces"
)

// MockHealthDataStore for testing
type MockHealthDataStore struct {
	db          *hierarchy.Database
	report      *interfaces.DataQualityReport
	lastUpdated time.Time
	isUpdating  bool
}

func (m *MockHealthDataStore) GetDatabase() *hierarchy.Database {
	return m.db
}

func (m *MockHealthDataStore) GetSpecificTypeMap() map[string]hierarchy.ReactiveFunction {
	return map[string]hierarchy.ReactiveFunction{}
}

func (m *MockHealthDataStore) GetDataQualityReport() *interfaces.DataQualityReport {
	return m.report
}

func (m *MockHealthDataStore) GetLastUpdated() time.Time {
	return m.lastUpdated
}

func (m *MockHealthDataStore) IsUpdating() bool {
	return m.isUpdating
}

func (m *MockHealthDataStore) GetServerStartTime() time.Time {
	return time.Time{} // Return zero time for mock
}

func (m *MockHealthDataStore) UpdateData(db *hierarchy.Database, report *interfaces.DataQualityReport) {
	// Not used in health tests
}

func (m *MockHealthDataStore) BeginUpdate() bool {
	return true
}

func (m *MockHealthDataStore) EndUpdate() {
	// Not used in health tests
}

// mockScheduler reports a fixed next run
type mockScheduler struct {
	next time.Time
}

func (m *mockScheduler) Start() error       { return nil }
func (m *mockScheduler) Stop()              {}
func (m *mockScheduler) NextRun() time.Time { return m.next }

func testDatabase() *hierarchy.Database {
	return hierarchy.NewDatabase("1.0.0", []hierarchy.ReactiveFunction{
		{Category: "Alcohol", Subcategory: "Primary", SpecificType: "Alcohol_Primary", Pattern: "[CH2][OH]"},
		{Category: "Amine", Subcategory: "Primary", SpecificType: "Amine_Primary", Pattern: "[NH2]"},
	})
}

func TestNewHealthChecker(t *testing.T) {
	healthChecker := NewHealthChecker(&MockHealthDataStore{}, nil, time.Hour)

	if healthChecker == nil {
		t.Fatal("NewHealthChecker returned nil")
	}

	// Type assertion to verify it's the correct type
	if _, ok := healthChecker.(*HealthCheckerImpl); !ok {
		t.Error("NewHealthChecker should return *HealthCheckerImpl")
	}
}

func TestHealthCheck_Healthy(t *testing.T) {
	mockDataStore := &MockHealthDataStore{
		db:          testDatabase(),
		report:      &interfaces.DataQualityReport{DuplicateSpecificTypes: []string{"Dup"}},
		lastUpdated: time.Now().Add(-10 * time.Minute),
	}

	healthChecker := NewHealthChecker(mockDataStore, nil, time.Hour)
	status, details, httpStatus := healthChecker.HealthCheck()

	if status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", status)
	}

	if httpStatus != http.StatusOK {
		t.Errorf("Expected status code 200, got %d", httpStatus)
	}

	// Check required fields
	for _, key := range []string{"version", "reactive_functions", "last_update", "data_age_hours", "is_updating", "next_update"} {
		if _, ok := details[key]; !ok {
			t.Errorf("Details should contain '%s'", key)
		}
	}

	if details["reactive_functions"] != 2 {
		t.Errorf("Expected 2 reactive functions, got %v", details["reactive_functions"])
	}

	if details["version"] != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %v", details["version"])
	}

	if details["duplicate_specific_types"] != 1 {
		t.Errorf("Expected 1 duplicate, got %v", details["duplicate_specific_types"])
	}
}

func TestHealthCheck_Statuses(t *testing.T) {
	tests := []struct {
		name           string
		store          *MockHealthDataStore
		expectedStatus string
		expectedCode   int
	}{
		{
			name:           "no data",
			store:          &MockHealthDataStore{db: hierarchy.NewDatabase("1.0.0", nil), lastUpdated: time.Now()},
			expectedStatus: "unhealthy",
			expectedCode:   http.StatusServiceUnavailable,
		},
		{
			name:           "nil database",
			store:          &MockHealthDataStore{lastUpdated: time.Now()},
			expectedStatus: "unhealthy",
			expectedCode:   http.StatusServiceUnavailable,
		},
		{
			name:           "never loaded",
			store:          &MockHealthDataStore{db: testDatabase()},
			expectedStatus: "unhealthy",
			expectedCode:   http.StatusServiceUnavailable,
		},
		{
			name:           "stale data",
			store:          &MockHealthDataStore{db: testDatabase(), lastUpdated: time.Now().Add(-3 * time.Hour)},
			expectedStatus: "degraded",
			expectedCode:   http.StatusServiceUnavailable,
		},
		{
			name:           "updating with old data",
			store:          &MockHealthDataStore{db: testDatabase(), lastUpdated: time.Now().Add(-90 * time.Minute), isUpdating: true},
			expectedStatus: "degraded",
			expectedCode:   http.StatusServiceUnavailable,
		},
		{
			name:           "updating with recent data",
			store:          &MockHealthDataStore{db: testDatabase(), lastUpdated: time.Now().Add(-time.Minute), isUpdating: true},
			expectedStatus: "healthy",
			expectedCode:   http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, details, code := NewHealthChecker(tt.store, nil, time.Hour).HealthCheck()

			if status != tt.expectedStatus {
				t.Errorf("Expected status '%s', got '%s'", tt.expectedStatus, status)
			}
			if code != tt.expectedCode {
				t.Errorf("Expected status code %d, got %d", tt.expectedCode, code)
			}
			if details == nil {
				t.Error("Details should not be nil")
			}
		})
	}
}

func TestHealthCheck_NoReloadInterval(t *testing.T) {
	mockDataStore := &MockHealthDataStore{
		db:          testDatabase(),
		lastUpdated: time.Now().Add(-30 * 24 * time.Hour),
	}

	status, details, _ := NewHealthChecker(mockDataStore, nil, 0).HealthCheck()

	if status != "healthy" {
		t.Errorf("Data never goes stale without reloads, got '%s'", status)
	}
	if _, ok := details["next_update"]; ok {
		t.Error("next_update should be omitted without reloads")
	}
}

func TestCalculateNextUpdate(t *testing.T) {
	lastUpdated := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	scheduled := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		scheduler interfaces.Scheduler
		interval  time.Duration
		expected  time.Time
	}{
		{"from scheduler", &mockScheduler{next: scheduled}, time.Hour, scheduled},
		{"scheduler not started", &mockScheduler{}, time.Hour, lastUpdated.Add(time.Hour)},
		{"without scheduler", nil, 2 * time.Hour, lastUpdated.Add(2 * time.Hour)},
		{"reloads disabled", nil, 0, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &MockHealthDataStore{lastUpdated: lastUpdated}
			got := NewHealthChecker(store, tt.scheduler, tt.interval).CalculateNextUpdate()
			if !got.Equal(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestCalculateNextUpdate_ZeroLastUpdate(t *testing.T) {
	healthChecker := NewHealthChecker(&MockHealthDataStore{}, nil, time.Hour)

	next := healthChecker.CalculateNextUpdate()
	if next.Before(time.Now().Add(59 * time.Minute)) {
		t.Errorf("Expected next update about an hour from now, got %v", next)
	}
}

func BenchmarkHealthCheck(b *testing.B) {
	mockDataStore := &MockHealthDataStore{
		db:          testDatabase(),
		lastUpdated: time.Now(),
	}
	healthChecker := NewHealthChecker(mockDataStore, nil, time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		healthChecker.HealthCheck()
	}
}
