package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MolecularAI/smartsrx/hierarchy"
	"github.com/MolecularAI/smartsrx/interfaces"
	"github.com/go-chi/chi/v5"
)

// ============================================================================
// TEST DATA FACTORY
// ============================================================================

// testFunctions is a small database covering shared categories, shared
// subcategories and a duplicated SMARTS-RX name.
func testFunctions() []hierarchy.ReactiveFunction {
	return []hierarchy.ReactiveFunction{
		{Category: "Alcohol", Subcategory: "Primary", SpecificType: "Alcohol_Primary", Pattern: "[CX4;H2][OX2H]"},
		{Category: "Alcohol", Subcategory: "Secondary", SpecificType: "Alcohol_Secondary", Pattern: "[CX4;H1][OX2H]"},
		{Category: "Amine", Subcategory: "Primary", SpecificType: "Amine_Primary", Pattern: "[NX3;H2;!$(NC=O)]"},
		{Category: "Acid", Subcategory: "Carboxylic", SpecificType: "Acid_Carboxylic", Pattern: "[CX3](=O)[OX2H1]"},
		{Category: "Acid", Subcategory: "Other", SpecificType: "Acid_Carboxylic", Pattern: "C(=O)[O-]&!@*"},
	}
}

func testDatabase() *hierarchy.Database {
	return hierarchy.NewDatabase("1.0.0", testFunctions())
}

// ============================================================================
// MOCKS
// ============================================================================

// MockDataStore is an in-memory interfaces.DataStore
type MockDataStore struct {
	db          *hierarchy.Database
	bySpecific  map[string]hierarchy.ReactiveFunction
	report      *interfaces.DataQualityReport
	lastUpdated time.Time
	startTime   time.Time
	updating    bool
}

func (m *MockDataStore) GetDatabase() *hierarchy.Database { return m.db }
func (m *MockDataStore) GetSpecificTypeMap() map[string]hierarchy.ReactiveFunction {
	return m.bySpecific
}
func (m *MockDataStore) GetDataQualityReport() *interfaces.DataQualityReport { return m.report }
func (m *MockDataStore) GetLastUpdated() time.Time                           { return m.lastUpdated }
func (m *MockDataStore) IsUpdating() bool                                    { return m.updating }
func (m *MockDataStore) GetServerStartTime() time.Time                       { return m.startTime }
func (m *MockDataStore) UpdateData(db *hierarchy.Database, report *interfaces.DataQualityReport) {
	m.db = db
	m.report = report
}
func (m *MockDataStore) BeginUpdate() bool { return !m.updating }
func (m *MockDataStore) EndUpdate()        {}

// MockDataValidator returns preset errors
type MockDataValidator struct {
	validateInputError    error
	validateDatabaseError error
}

func (m *MockDataValidator) ValidateInput(input string) error { return m.validateInputError }
func (m *MockDataValidator) ValidateDatabase(db *hierarchy.Database) error {
	return m.validateDatabaseError
}
func (m *MockDataValidator) ReportDataQuality(db *hierarchy.Database) *interfaces.DataQualityReport {
	return &interfaces.DataQualityReport{}
}

// MockHealthChecker returns a preset status
type MockHealthChecker struct {
	status     string
	data       map[string]any
	httpStatus int
}

func (m *MockHealthChecker) HealthCheck() (string, map[string]any, int) {
	return m.status, m.data, m.httpStatus
}
func (m *MockHealthChecker) CalculateNextUpdate() time.Time { return time.Time{} }

// ============================================================================
// MOCK BUILDERS
// ============================================================================

// MockDataStoreBuilder provides fluent interface for building mock data stores
type MockDataStoreBuilder struct {
	mock *MockDataStore
}

func NewMockDataStoreBuilder() *MockDataStoreBuilder {
	return &MockDataStoreBuilder{
		mock: &MockDataStore{
			db:          hierarchy.NewDatabase("1.0.0", nil),
			bySpecific:  map[string]hierarchy.ReactiveFunction{},
			report:      &interfaces.DataQualityReport{},
			lastUpdated: time.Now(),
		},
	}
}

func (b *MockDataStoreBuilder) WithDatabase(db *hierarchy.Database) *MockDataStoreBuilder {
	b.mock.db = db
	b.mock.bySpecific = make(map[string]hierarchy.ReactiveFunction)
	for _, fn := range db.Data {
		if _, exists := b.mock.bySpecific[fn.SpecificType]; !exists {
			b.mock.bySpecific[fn.SpecificType] = fn
		}
	}
	return b
}

func (b *MockDataStoreBuilder) WithUpdating(updating bool) *MockDataStoreBuilder {
	b.mock.updating = updating
	return b
}

func (b *MockDataStoreBuilder) WithLastUpdated(lastUpdated time.Time) *MockDataStoreBuilder {
	b.mock.lastUpdated = lastUpdated
	return b
}

func (b *MockDataStoreBuilder) WithServerStartTime(startTime time.Time) *MockDataStoreBuilder {
	b.mock.startTime = startTime
	return b
}

func (b *MockDataStoreBuilder) Build() *MockDataStore {
	return b.mock
}

// MockDataValidatorBuilder provides fluent interface for building mock validators
type MockDataValidatorBuilder struct {
	mock *MockDataValidator
}

func NewMockDataValidatorBuilder() *MockDataValidatorBuilder {
	return &MockDataValidatorBuilder{mock: &MockDataValidator{}}
}

func (b *MockDataValidatorBuilder) WithInputError(err error) *MockDataValidatorBuilder {
	b.mock.validateInputError = err
	return b
}

func (b *MockDataValidatorBuilder) Build() *MockDataValidator {
	return b.mock
}

func newTestHandler(store interfaces.DataStore, validator interfaces.DataValidator) *HTTPHandlerImpl {
	checker := &MockHealthChecker{status: "healthy", data: map[string]any{"reactive_functions": 5}, httpStatus: http.StatusOK}
	return NewHTTPHandler(store, validator, checker).(*HTTPHandlerImpl)
}

// ============================================================================
// HTTP TEST UTILITIES
// ============================================================================

// HTTPTestHelper provides utilities for HTTP handler testing
type HTTPTestHelper struct {
	t *testing.T
}

func NewHTTPTestHelper(t *testing.T) *HTTPTestHelper {
	return &HTTPTestHelper{t: t}
}

// ExecuteRequest executes an HTTP handler with given parameters
func (h *HTTPTestHelper) ExecuteRequest(handler http.HandlerFunc, method, path string, urlParams map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)

	if len(urlParams) > 0 {
		rctx := chi.NewRouteContext()
		for key, value := range urlParams {
			rctx.URLParams.Add(key, value)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// AssertJSONResponse asserts that response contains valid JSON with expected status
func (h *HTTPTestHelper) AssertJSONResponse(resp *httptest.ResponseRecorder, expectedStatus int, target any) {
	h.t.Helper()

	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d", expectedStatus, resp.Code)
	}

	bodyStr := resp.Body.String()
	if bodyStr == "" {
		h.t.Error("Response body should not be empty")
	}

	if err := json.Unmarshal([]byte(bodyStr), target); err != nil {
		h.t.Errorf("Response should be valid JSON, got error: %v", err)
	}
}

// AssertErrorResponse asserts that response contains an error with expected status
func (h *HTTPTestHelper) AssertErrorResponse(resp *httptest.ResponseRecorder, expectedStatus int) {
	h.t.Helper()

	if resp.Code != expectedStatus {
		h.t.Errorf("Expected status %d, got %d", expectedStatus, resp.Code)
	}

	var errorResp map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &errorResp); err != nil {
		h.t.Errorf("Error response should be valid JSON, got error: %v", err)
	}

	// Check that it has error fields
	for _, key := range []string{"error", "message", "code"} {
		if _, ok := errorResp[key]; !ok {
			h.t.Errorf("Error response should have %s field", key)
		}
	}
}
