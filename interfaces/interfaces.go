// Package interfaces defines the abstractions shared by the smartsrx loader,
// lookup server and scheduler, so each part can be tested in isolation.
package interfaces

import (
	"net/http"
	"time"

	"github.com/MolecularAI/smartsrx/hierarchy"
)

// DataQualityReport summarises issues found in a loaded database.
// None of them prevent the database from being served.
type DataQualityReport struct {
	DuplicateSpecificTypes []string // SMARTS-RX keys used by more than one record
	RecordsWithEmptyFields int
	EmptyFieldKeys         []string // specific types (or row numbers) of records with an empty field
}

// DataStore provides thread-safe access to the current database with atomic
// replacement on reload.
type DataStore interface {
	GetDatabase() *hierarchy.Database
	GetSpecificTypeMap() map[string]hierarchy.ReactiveFunction
	GetDataQualityReport() *DataQualityReport
	GetLastUpdated() time.Time
	IsUpdating() bool
	GetServerStartTime() time.Time

	UpdateData(db *hierarchy.Database, report *DataQualityReport)
	BeginUpdate() bool
	EndUpdate()
}

// Parser loads a database from its configured source.
type Parser interface {
	Parse() (*hierarchy.Database, error)
}

// Scheduler drives periodic reloads.
type Scheduler interface {
	Start() error
	Stop()
	NextRun() time.Time
}

// HTTPHandler serves the lookup API.
type HTTPHandler interface {
	ServeDatabase(w http.ResponseWriter, r *http.Request)
	FindFunctions(w http.ResponseWriter, r *http.Request)
	FindSpecificType(w http.ResponseWriter, r *http.Request)
	ServeCategories(w http.ResponseWriter, r *http.Request)
	ServeSubcategories(w http.ResponseWriter, r *http.Request)
	ServeSpecificTypes(w http.ResponseWriter, r *http.Request)
	ServeSchema(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker reports service health.
type HealthChecker interface {
	HealthCheck() (status string, details map[string]any, httpStatus int)
	CalculateNextUpdate() time.Time
}

// DataValidator checks user input and loaded data.
type DataValidator interface {
	ValidateInput(input string) error
	ValidateDatabase(db *hierarchy.Database) error
	ReportDataQuality(db *hierarchy.Database) *DataQualityReport
}

// PatternMatcher is a substructure matching engine that can be loaded with
// SMARTS patterns keyed by SMARTS-RX identifier and then queried with a
// molecule (SMILES). Implementations live outside this module.
type PatternMatcher interface {
	AddEntry(id, pattern string) error
	Matches(molecule string) ([]string, error)
}
