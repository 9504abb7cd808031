// Package hierarchy holds the SMARTS-RX data model: reactive functional groups
// classified in three levels (category, subcategory, specific type) together
// with the SMARTS pattern used to match them.
package hierarchy

import (
	"encoding/json"
	"fmt"
)

// ReactiveFunction is a single reactive functional group entry.
// SpecificType is the SMARTS-RX identifier. Pattern is kept as opaque text.
type ReactiveFunction struct {
	Category     string `json:"category" jsonschema:"title=Category,description=Category of the reactive function"`
	Subcategory  string `json:"subcategory" jsonschema:"title=Subcategory,description=Subcategory of the reactive function"`
	SpecificType string `json:"specific_type" jsonschema:"title=Specific Type,description=Specific type of the reactive function"`
	Pattern      string `json:"smarts" jsonschema:"title=Smarts,description=SMARTS pattern"`
}

// ValidationError reports a required field that was not supplied.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field %q is required", e.Field)
}

// NewReactiveFunction builds a ReactiveFunction, rejecting empty fields.
func NewReactiveFunction(category, subcategory, specificType, pattern string) (ReactiveFunction, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"category", category},
		{"subcategory", subcategory},
		{"specific_type", specificType},
		{"smarts", pattern},
	}
	for _, f := range fields {
		if f.value == "" {
			return ReactiveFunction{}, &ValidationError{Field: f.name}
		}
	}

	return ReactiveFunction{
		Category:     category,
		Subcategory:  subcategory,
		SpecificType: specificType,
		Pattern:      pattern,
	}, nil
}

// UnmarshalJSON requires all four keys. "pattern" is accepted in place of "smarts".
func (f *ReactiveFunction) UnmarshalJSON(b []byte) error {
	var raw struct {
		Category     *string `json:"category"`
		Subcategory  *string `json:"subcategory"`
		SpecificType *string `json:"specific_type"`
		Smarts       *string `json:"smarts"`
		Pattern      *string `json:"pattern"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	if raw.Smarts == nil {
		raw.Smarts = raw.Pattern
	}

	switch {
	case raw.Category == nil:
		return &ValidationError{Field: "category"}
	case raw.Subcategory == nil:
		return &ValidationError{Field: "subcategory"}
	case raw.SpecificType == nil:
		return &ValidationError{Field: "specific_type"}
	case raw.Smarts == nil:
		return &ValidationError{Field: "smarts"}
	}

	*f = ReactiveFunction{
		Category:     *raw.Category,
		Subcategory:  *raw.Subcategory,
		SpecificType: *raw.SpecificType,
		Pattern:      *raw.Smarts,
	}
	return nil
}
