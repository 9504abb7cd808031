package hierarchy

import "strings"

// requiredColumns is category, subcategory, specific_type, smarts.
const requiredColumns = 4

// ParseStats counts how FromLines treated each input line.
type ParseStats struct {
	Lines    int
	Blank    int
	Comments int
	Short    int
	Accepted int
}

// Skipped returns the number of lines that did not produce a record.
func (s ParseStats) Skipped() int {
	return s.Blank + s.Comments + s.Short
}

// FromLines builds a Database from sep-separated lines:
//
//	category<sep>subcategory<sep>specific_type<sep>smarts
//
// Blank lines, lines starting with '#' and lines with fewer than four fields
// are dropped. Columns past the fourth are ignored. It never fails.
func FromLines(lines []string, sep, version string) *Database {
	db, _ := ParseLines(lines, sep, version)
	return db
}

// ParseLines is FromLines with the per-line accounting.
func ParseLines(lines []string, sep, version string) (*Database, ParseStats) {
	stats := ParseStats{Lines: len(lines)}
	data := make([]ReactiveFunction, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if line == "" {
			stats.Blank++
			continue
		}
		if strings.HasPrefix(line, "#") {
			stats.Comments++
			continue
		}

		fields := splitFields(line, sep)
		if len(fields) < requiredColumns {
			stats.Short++
			continue
		}

		data = append(data, ReactiveFunction{
			Category:     fields[0],
			Subcategory:  fields[1],
			SpecificType: fields[2],
			Pattern:      fields[3],
		})
	}

	stats.Accepted = len(data)
	return NewDatabase(version, data), stats
}

// splitFields splits on sep; an empty sep splits on runs of whitespace.
func splitFields(line, sep string) []string {
	if sep == "" {
		return strings.Fields(line)
	}
	return strings.Split(line, sep)
}
