// Package health reports whether the lookup server has fresh data to serve.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/MolecularAI/smartsrx/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	dataStore interfaces.DataStore
	scheduler interfaces.Scheduler
	interval  time.Duration
}

// NewHealthChecker creates a health checker. Data older than two reload
// intervals is considered stale. scheduler may be nil when reloads are
// disabled.
func NewHealthChecker(dataStore interfaces.DataStore, scheduler interfaces.Scheduler, interval time.Duration) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		dataStore: dataStore,
		scheduler: scheduler,
		interval:  interval,
	}
}

// HealthCheck returns the health status, the data reported by /health and the
// matching HTTP status code.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	db := h.dataStore.GetDatabase()
	lastUpdate := h.dataStore.GetLastUpdated()
	isUpdating := h.dataStore.IsUpdating()
	report := h.dataStore.GetDataQualityReport()

	count := 0
	version := ""
	if db != nil {
		count = db.Len()
		version = db.Version
	}

	dataAge := time.Since(lastUpdate)

	switch {
	case count == 0 || lastUpdate.IsZero():
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable

	case h.interval > 0 && dataAge > 2*h.interval:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	case isUpdating && h.interval > 0 && dataAge > h.interval:
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable

	default:
		status = "healthy"
		httpStatus = http.StatusOK
	}

	data = map[string]any{
		"version":            version,
		"reactive_functions": count,
		"last_update":        lastUpdate.Format(time.RFC3339),
		"data_age_hours":     math.Round(dataAge.Hours()*10) / 10,
		"is_updating":        isUpdating,
	}

	if next := h.CalculateNextUpdate(); !next.IsZero() {
		data["next_update"] = next.Format(time.RFC3339)
	}

	if report != nil {
		data["duplicate_specific_types"] = len(report.DuplicateSpecificTypes)
		data["records_with_empty_fields"] = report.RecordsWithEmptyFields
	}

	return status, data, httpStatus
}

// CalculateNextUpdate returns the next scheduled reload. Without a running
// scheduler it is one interval after the last update, or the zero time when
// reloads are disabled.
func (h *HealthCheckerImpl) CalculateNextUpdate() time.Time {
	if h.scheduler != nil {
		if next := h.scheduler.NextRun(); !next.IsZero() {
			return next
		}
	}

	if h.interval <= 0 {
		return time.Time{}
	}

	lastUpdate := h.dataStore.GetLastUpdated()
	if lastUpdate.IsZero() {
		return time.Now().Add(h.interval)
	}
	return lastUpdate.Add(h.interval)
}
