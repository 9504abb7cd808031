// Package readme regenerates the table of SMARTS-RX classes embedded in the
// project README from the source table.
package readme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/MolecularAI/smartsrx/logging"
	"github.com/MolecularAI/smartsrx/smartsparser"
)

// ErrTableNotFound is returned when the README has no table section.
var ErrTableNotFound = errors.New("could not find the table section in README")

// Marker is the HTML comment inserted above the table when missing.
const Marker = "<!-- The table will be populated by smartsrx update-readme -->"

const (
	tableHeader    = "| Class | Subclass | `SMARTS-RX` |\n|:------:|:--------:|:----------:|\n"
	introPattern   = "(Below we list classes and subclasses for the current `smartsrx` version \\(v([\\d.]+)\\):)"
	sectionEndMark = "\n\n#"
)

var (
	// intro line, HTML comment, blank line
	sectionRegex = regexp.MustCompile(introPattern + `\s*\n(<!--[^\n]*-->)\s*\n\n`)
	// intro line, blank line
	fallbackRegex = regexp.MustCompile(introPattern + `\s*\n\n`)
)

// Row is one table line.
type Row struct {
	Category     string
	Subcategory  string
	SpecificType string
}

// TableRows extracts the first three columns of every non-blank,
// non-comment line that has at least three fields.
func TableRows(lines []string, sep string) []Row {
	var rows []Row
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var parts []string
		if sep == "" {
			parts = strings.Fields(line)
		} else {
			parts = strings.Split(line, sep)
		}
		if len(parts) < 3 {
			continue
		}
		rows = append(rows, Row{Category: parts[0], Subcategory: parts[1], SpecificType: parts[2]})
	}
	return rows
}

// RenderTable renders rows as a Markdown table ending with a newline.
func RenderTable(rows []Row) string {
	var b strings.Builder
	b.WriteString(tableHeader)
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "| %s | %s | %s |", row.Category, row.Subcategory, row.SpecificType)
	}
	b.WriteByte('\n')
	return b.String()
}

// ReplaceTable returns content with its table section replaced by table.
// When version is set the version in the intro line is updated too.
func ReplaceTable(content, table, version string) (string, bool, error) {
	loc := sectionRegex.FindStringSubmatchIndex(content)
	usedFallback := false
	if loc == nil {
		loc = fallbackRegex.FindStringSubmatchIndex(content)
		usedFallback = true
	}
	if loc == nil {
		return "", false, ErrTableNotFound
	}

	intro := content[loc[2]:loc[3]]
	if version != "" {
		intro = content[loc[2]:loc[4]] + strings.TrimPrefix(version, "v") + content[loc[5]:loc[3]]
	}

	marker := Marker
	if !usedFallback {
		marker = content[loc[6]:loc[7]]
	}

	start, end := loc[0], sectionEnd(content, loc[1])
	section := intro + "\n" + marker + "\n\n" + table

	return content[:start] + section + content[end:], usedFallback, nil
}

// sectionEnd finds where the old table stops: before the next heading, or at
// the end of the document ignoring one trailing newline.
func sectionEnd(content string, from int) int {
	if idx := strings.Index(content[from:], sectionEndMark); idx >= 0 {
		return from + idx
	}
	if strings.HasSuffix(content, "\n") && len(content)-1 >= from {
		return len(content) - 1
	}
	return len(content)
}

// UpdateTable rewrites the table section of the README at readmePath from
// the source table at sourcePath and returns the number of rows written.
func UpdateTable(readmePath, sourcePath, sep string, header bool, version string) (int, error) {
	lines, err := smartsparser.ReadSourceLines(sourcePath, header)
	if err != nil {
		return 0, err
	}
	rows := TableRows(lines, sep)

	content, err := os.ReadFile(filepath.Clean(readmePath))
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", readmePath, err)
	}

	updated, usedFallback, err := ReplaceTable(string(content), RenderTable(rows), version)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(readmePath)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", readmePath, err)
	}
	if err := os.WriteFile(readmePath, []byte(updated), info.Mode().Perm()); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", readmePath, err)
	}

	logging.Info("README table updated", "path", readmePath, "entries", len(rows), "fallback", usedFallback)
	return len(rows), nil
}
