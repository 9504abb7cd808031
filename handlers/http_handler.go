// Package handlers implements the JSON endpoints of the smartsrx lookup API
// on top of an injected data store, validator and health checker.
package handlers

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MolecularAI/smartsrx/hierarchy"
	"github.com/MolecularAI/smartsrx/interfaces"
	"github.com/MolecularAI/smartsrx/logging"
	"github.com/go-chi/chi/v5"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	dataStore     interfaces.DataStore
	validator     interfaces.DataValidator
	healthChecker interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(dataStore interfaces.DataStore, validator interfaces.DataValidator, healthChecker interfaces.HealthChecker) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		dataStore:     dataStore,
		validator:     validator,
		healthChecker: healthChecker,
	}
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	Uptime        string         `json:"uptime"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
}

// marshal encodes payload without HTML escaping, SMARTS patterns are full of
// '&', '<' and '>'.
func marshal(payload any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RespondWithJSON writes a JSON response. GET responses carry an ETag and
// a matching If-None-Match is answered with 304 Not Modified.
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, r *http.Request, code int, payload any) {
	data, err := marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if code == http.StatusOK && r != nil && r.Method == http.MethodGet {
		sum := sha256.Sum256(data)
		etag := `"` + hex.EncodeToString(sum[:16]) + `"`
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "public, max-age=3600")

		if lastUpdated := h.dataStore.GetLastUpdated(); !lastUpdated.IsZero() {
			w.Header().Set("Last-Modified", lastUpdated.UTC().Format(http.TimeFormat))
		}

		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.WriteHeader(code)
	w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	errorResponse := map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	}
	h.RespondWithJSON(w, nil, code, errorResponse)
}

// formatUptimeHuman formats duration into a human-readable string
func (h *HTTPHandlerImpl) formatUptimeHuman(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	var parts []string

	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	parts = append(parts, fmt.Sprintf("%ds", seconds))

	return strings.Join(parts, " ")
}

// urlParam returns a validated path parameter, writing a 400 response and
// returning false when it is invalid.
func (h *HTTPHandlerImpl) urlParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := chi.URLParam(r, name)
	if value == "" {
		h.RespondWithError(w, http.StatusBadRequest, "Missing "+name)
		return "", false
	}

	if err := h.validator.ValidateInput(value); err != nil {
		logging.Warn("Unusual user input", name, value, "error", err)
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return "", false
	}

	return value, true
}

// ServeDatabase returns the whole database as exported by create-json
func (h *HTTPHandlerImpl) ServeDatabase(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, r, http.StatusOK, h.dataStore.GetDatabase())
}

// FindFunctions returns the records whose category, subcategory or SMARTS-RX
// name equals the query. No match is an empty array, not an error.
func (h *HTTPHandlerImpl) FindFunctions(w http.ResponseWriter, r *http.Request) {
	query, ok := h.urlParam(w, r, "query")
	if !ok {
		return
	}

	results := h.dataStore.GetDatabase().GetFunction(query)
	h.RespondWithJSON(w, r, http.StatusOK, results)
}

// FindSpecificType returns the record registered under a SMARTS-RX name
func (h *HTTPHandlerImpl) FindSpecificType(w http.ResponseWriter, r *http.Request) {
	specificType, ok := h.urlParam(w, r, "specificType")
	if !ok {
		return
	}

	fn, exists := h.dataStore.GetSpecificTypeMap()[specificType]
	if !exists {
		h.RespondWithError(w, http.StatusNotFound, "Reactive function not found")
		return
	}

	h.RespondWithJSON(w, r, http.StatusOK, fn)
}

// ServeCategories returns the sorted distinct categories
func (h *HTTPHandlerImpl) ServeCategories(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, r, http.StatusOK, h.dataStore.GetDatabase().Categories())
}

// ServeSubcategories returns the sorted distinct subcategories
func (h *HTTPHandlerImpl) ServeSubcategories(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, r, http.StatusOK, h.dataStore.GetDatabase().Subcategories())
}

// ServeSpecificTypes returns the sorted distinct SMARTS-RX names
func (h *HTTPHandlerImpl) ServeSpecificTypes(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, r, http.StatusOK, h.dataStore.GetDatabase().SpecificTypes())
}

// ServeSchema returns the JSON schema of the database
func (h *HTTPHandlerImpl) ServeSchema(w http.ResponseWriter, r *http.Request) {
	h.RespondWithJSON(w, r, http.StatusOK, hierarchy.Schema())
}

// HealthCheck returns server health information
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.healthChecker.HealthCheck()

	var uptime time.Duration
	if start := h.dataStore.GetServerStartTime(); !start.IsZero() {
		uptime = time.Since(start)
	}

	response := HealthResponse{
		Status:        status,
		Uptime:        h.formatUptimeHuman(uptime),
		UptimeSeconds: uptime.Seconds(),
		Data:          data,
	}

	h.RespondWithJSON(w, nil, httpStatus, response)
}
