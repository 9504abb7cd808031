// Package data holds the database currently served by the lookup API.
// Reloads swap the whole database atomically, so readers never observe a
// partially loaded state.
package data

import (
	"sync/atomic"
	"time"

	"github.com/MolecularAI/smartsrx/hierarchy"
	"github.com/MolecularAI/smartsrx/interfaces"
	"github.com/MolecularAI/smartsrx/logging"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// snapshot is everything replaced by a single reload.
type snapshot struct {
	db          *hierarchy.Database
	bySpecific  map[string]hierarchy.ReactiveFunction
	report      *interfaces.DataQualityReport
	lastUpdated time.Time
}

// DataContainer holds the served database behind an atomic pointer for
// zero-downtime updates.
type DataContainer struct {
	current         atomic.Pointer[snapshot]
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a container serving an empty database.
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.current.Store(&snapshot{
		db:         hierarchy.NewDatabase("", nil),
		bySpecific: make(map[string]hierarchy.ReactiveFunction),
		report:     &interfaces.DataQualityReport{},
	})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

func (dc *DataContainer) load() *snapshot {
	if s := dc.current.Load(); s != nil {
		return s
	}
	logging.Warn("Data container is not initialized")
	return &snapshot{
		db:         hierarchy.NewDatabase("", nil),
		bySpecific: make(map[string]hierarchy.ReactiveFunction),
		report:     &interfaces.DataQualityReport{},
	}
}

// GetDatabase returns the database being served.
func (dc *DataContainer) GetDatabase() *hierarchy.Database {
	return dc.load().db
}

// GetSpecificTypeMap returns the records keyed by SMARTS-RX identifier. When
// an identifier is duplicated the first record wins.
func (dc *DataContainer) GetSpecificTypeMap() map[string]hierarchy.ReactiveFunction {
	return dc.load().bySpecific
}

// GetDataQualityReport returns the report computed for the current database.
func (dc *DataContainer) GetDataQualityReport() *interfaces.DataQualityReport {
	return dc.load().report
}

// GetLastUpdated returns the timestamp of the last data update
func (dc *DataContainer) GetLastUpdated() time.Time {
	return dc.load().lastUpdated
}

// IsUpdating returns true if a data update is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}

	logging.Warn("Could not get the server start time value")
	return time.Time{}
}

// UpdateData atomically replaces the served database. A nil database is
// replaced by an empty one and a nil report by an empty report.
func (dc *DataContainer) UpdateData(db *hierarchy.Database, report *interfaces.DataQualityReport) {
	if db == nil {
		db = hierarchy.NewDatabase("", nil)
	}
	if report == nil {
		report = &interfaces.DataQualityReport{}
	}

	bySpecific := make(map[string]hierarchy.ReactiveFunction, db.Len())
	for _, fn := range db.Data {
		if _, exists := bySpecific[fn.SpecificType]; !exists {
			bySpecific[fn.SpecificType] = fn
		}
	}

	// Atomic swap (zero downtime replacement)
	dc.current.Store(&snapshot{
		db:          db,
		bySpecific:  bySpecific,
		report:      report,
		lastUpdated: time.Now(),
	})
}

// BeginUpdate marks the start of a data update operation
// Returns true if update can proceed, false if another update is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a data update operation
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
