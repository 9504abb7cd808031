package hierarchy

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
)

// Database is the versioned, ordered collection of reactive functions.
// It is built once and only read afterwards.
type Database struct {
	Version string             `json:"version" jsonschema:"title=Version,description=Version of the SMARTS database"`
	Data    []ReactiveFunction `json:"data" jsonschema:"title=Data,description=Collection of reactive functions"`
}

// NewDatabase wraps already validated records.
func NewDatabase(version string, data []ReactiveFunction) *Database {
	if data == nil {
		data = []ReactiveFunction{}
	}
	return &Database{Version: version, Data: data}
}

// Len returns the number of records.
func (db *Database) Len() int {
	return len(db.Data)
}

// Categories returns the distinct categories, sorted.
func (db *Database) Categories() []string {
	return db.distinct(func(f ReactiveFunction) string { return f.Category })
}

// Subcategories returns the distinct subcategories, sorted.
func (db *Database) Subcategories() []string {
	return db.distinct(func(f ReactiveFunction) string { return f.Subcategory })
}

// SpecificTypes returns the distinct SMARTS-RX identifiers, sorted.
func (db *Database) SpecificTypes() []string {
	return db.distinct(func(f ReactiveFunction) string { return f.SpecificType })
}

func (db *Database) distinct(field func(ReactiveFunction) string) []string {
	set := make(map[string]struct{}, len(db.Data))
	for _, function := range db.Data {
		set[field(function)] = struct{}{}
	}
	out := slices.Sorted(maps.Keys(set))
	if out == nil {
		out = []string{}
	}
	return out
}

// GetFunction returns every record whose category, subcategory or specific
// type equals query. Matching is exact and case-sensitive. The result keeps
// the database order and is never nil.
func (db *Database) GetFunction(query string) []ReactiveFunction {
	matches := []ReactiveFunction{}
	for _, function := range db.Data {
		if query == function.Category || query == function.Subcategory || query == function.SpecificType {
			matches = append(matches, function)
		}
	}
	return matches
}

// SearchSpecificType returns the first record whose specific type equals query.
func (db *Database) SearchSpecificType(query string) (ReactiveFunction, bool) {
	for _, function := range db.Data {
		if function.SpecificType == query {
			return function, true
		}
	}
	return ReactiveFunction{}, false
}

// UnmarshalJSON requires both "version" and "data".
func (db *Database) UnmarshalJSON(b []byte) error {
	var raw struct {
		Version *string             `json:"version"`
		Data    *[]ReactiveFunction `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Version == nil {
		return &ValidationError{Field: "version"}
	}
	if raw.Data == nil {
		return &ValidationError{Field: "data"}
	}

	*db = *NewDatabase(*raw.Version, *raw.Data)
	return nil
}

// Encode writes db as indented JSON.
func Encode(w io.Writer, db *Database) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(db); err != nil {
		return fmt.Errorf("failed to encode database: %w", err)
	}
	return nil
}

// Decode reads a database previously written by Encode.
func Decode(r io.Reader) (*Database, error) {
	var db Database
	if err := json.NewDecoder(r).Decode(&db); err != nil {
		return nil, fmt.Errorf("failed to decode database: %w", err)
	}
	return &db, nil
}
