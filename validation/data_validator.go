// Package validation checks lookup queries and reports on the quality of a
// loaded reactive function database.
package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/MolecularAI/smartsrx/hierarchy"
	"github.com/MolecularAI/smartsrx/interfaces"
	"github.com/MolecularAI/smartsrx/logging"
)

const (
	// MaxInputLength bounds lookup queries.
	MaxInputLength = 128

	// maxReportedKeys caps the example keys kept in a quality report.
	maxReportedKeys = 10
)

// Compiled once at package initialization and reused for all validations
var (
	// Names in the database: letters, digits and the punctuation used by
	// SMARTS-RX identifiers.
	inputRegex = regexp.MustCompile(`^[A-Za-z0-9_\-\.\+\(\)',\s]+$`)

	dangerousPatterns = []string{
		"--", "/*", "*/", "../", "..\\", "%2e%2e",
	}
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct{}

// NewDataValidator creates a new data validator
func NewDataValidator() interfaces.DataValidator {
	return &DataValidatorImpl{}
}

// ValidateInput validates a category, subcategory or SMARTS-RX name taken
// from a request. Names outside inputRegex, or containing a dangerous
// pattern such as "--", cannot be queried.
func (v *DataValidatorImpl) ValidateInput(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("input cannot be empty")
	}

	if len(input) > MaxInputLength {
		return fmt.Errorf("input too long: maximum %d characters", MaxInputLength)
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("input contains potentially dangerous content")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("input contains invalid characters. Only letters, numbers, spaces, underscores, hyphens, periods, plus signs, commas, apostrophes and parentheses are allowed")
	}

	if v.hasExcessiveRepetition(input) {
		return fmt.Errorf("input contains excessive character repetition")
	}

	return nil
}

// ValidateDatabase rejects a database that should not replace the one being
// served.
func (v *DataValidatorImpl) ValidateDatabase(db *hierarchy.Database) error {
	if db == nil {
		return fmt.Errorf("database is nil")
	}

	if db.Len() == 0 {
		return fmt.Errorf("no reactive functions found")
	}

	if strings.TrimSpace(db.Version) == "" {
		return fmt.Errorf("database has no version")
	}

	return nil
}

// ReportDataQuality lists duplicated SMARTS-RX identifiers and records with
// empty fields. Only the first few offending keys are kept.
func (v *DataValidatorImpl) ReportDataQuality(db *hierarchy.Database) *interfaces.DataQualityReport {
	report := &interfaces.DataQualityReport{
		DuplicateSpecificTypes: []string{},
		EmptyFieldKeys:         []string{},
	}
	if db == nil {
		return report
	}

	// Check 1: duplicate SMARTS-RX identifiers, reported once each
	counts := make(map[string]int, db.Len())
	for _, fn := range db.Data {
		counts[fn.SpecificType]++
		if counts[fn.SpecificType] == 2 {
			report.DuplicateSpecificTypes = append(report.DuplicateSpecificTypes, fn.SpecificType)
		}
	}
	slices.Sort(report.DuplicateSpecificTypes)

	// Check 2: records with at least one empty field
	for i, fn := range db.Data {
		if fn.Category != "" && fn.Subcategory != "" && fn.SpecificType != "" && fn.Pattern != "" {
			continue
		}
		report.RecordsWithEmptyFields++
		if len(report.EmptyFieldKeys) < maxReportedKeys {
			key := fn.SpecificType
			if key == "" {
				key = "#" + strconv.Itoa(i)
			}
			report.EmptyFieldKeys = append(report.EmptyFieldKeys, key)
		}
	}

	if len(report.DuplicateSpecificTypes) > 0 {
		logging.Debug("Duplicate SMARTS-RX identifiers detected",
			"count", len(report.DuplicateSpecificTypes),
			"duplicates", report.DuplicateSpecificTypes,
		)
	}

	return report
}

// hasExcessiveRepetition checks for the same character repeated more than 20
// times consecutively.
func (v *DataValidatorImpl) hasExcessiveRepetition(input string) bool {
	const limit = 20
	run := 1
	for i := 1; i < len(input); i++ {
		if input[i] == input[i-1] {
			run++
			if run > limit {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}
