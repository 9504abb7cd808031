// Package matcher loads a reactive function database into a substructure
// matching engine and fingerprints molecules against it.
package matcher

import (
	"errors"
	"fmt"
	"slices"

	"github.com/MolecularAI/smartsrx/hierarchy"
	"github.com/MolecularAI/smartsrx/interfaces"
	"github.com/MolecularAI/smartsrx/logging"
)

var ErrEmptyEntry = errors.New("catalog entry needs an identifier and a pattern")

// BuildCatalog adds every record of db to m, keyed by its SMARTS-RX
// identifier. Records already in the catalog under the same identifier are
// skipped so the first definition wins, matching database lookups.
func BuildCatalog(m interfaces.PatternMatcher, db *hierarchy.Database) (int, error) {
	if m == nil {
		return 0, errors.New("nil pattern matcher")
	}
	if db == nil {
		return 0, nil
	}

	seen := make(map[string]struct{}, db.Len())
	added := 0
	for i, fn := range db.Data {
		if fn.SpecificType == "" || fn.Pattern == "" {
			return added, fmt.Errorf("record %d: %w", i, ErrEmptyEntry)
		}
		if _, dup := seen[fn.SpecificType]; dup {
			logging.Debug("Skipping duplicate catalog entry", "specific_type", fn.SpecificType)
			continue
		}
		if err := m.AddEntry(fn.SpecificType, fn.Pattern); err != nil {
			return added, fmt.Errorf("failed to add %s: %w", fn.SpecificType, err)
		}
		seen[fn.SpecificType] = struct{}{}
		added++
	}

	logging.Info("Catalog built", "entries", added, "records", db.Len())
	return added, nil
}

// Fingerprint returns the sorted, de-duplicated identifiers of the catalog
// entries matching molecule.
func Fingerprint(m interfaces.PatternMatcher, molecule string) ([]string, error) {
	if m == nil {
		return nil, errors.New("nil pattern matcher")
	}
	if molecule == "" {
		return nil, errors.New("empty molecule")
	}

	ids, err := m.Matches(molecule)
	if err != nil {
		return nil, fmt.Errorf("failed to match %q: %w", molecule, err)
	}

	result := slices.Clone(ids)
	slices.Sort(result)
	return slices.Compact(result), nil
}
