package smartsparser

import (
	"fmt"
	"strings"

	"github.com/MolecularAI/smartsrx/export"
	"github.com/MolecularAI/smartsrx/hierarchy"
	"github.com/MolecularAI/smartsrx/interfaces"
	"github.com/MolecularAI/smartsrx/logging"
)

// Compile-time check to ensure SmartsParser implements Parser interface
var _ interfaces.Parser = (*SmartsParser)(nil)

// SmartsParser loads the database from a delimited source table, or from a
// previously exported .json database.
type SmartsParser struct {
	Source        string
	Separator     string
	SkipHeader    bool
	PyprojectFile string
}

// NewSmartsParser creates a parser for the given source.
func NewSmartsParser(source, separator string, skipHeader bool, pyprojectFile string) *SmartsParser {
	return &SmartsParser{
		Source:        source,
		Separator:     separator,
		SkipHeader:    skipHeader,
		PyprojectFile: pyprojectFile,
	}
}

// Parse implements the Parser interface
func (p *SmartsParser) Parse() (*hierarchy.Database, error) {
	if strings.HasSuffix(strings.ToLower(p.Source), ".json") && !IsRemote(p.Source) {
		db, err := export.ReadDatabase(p.Source)
		if err != nil {
			return nil, err
		}
		logging.Info("Database loaded from export", "source", p.Source, "version", db.Version, "records", db.Len())
		return db, nil
	}

	lines, err := ReadSourceLines(p.Source, p.SkipHeader)
	if err != nil {
		return nil, err
	}

	return ParseLines(lines, p.Separator, LoadVersion(p.PyprojectFile), p.Source), nil
}

// ParseLines builds the database and logs how many lines were skipped.
func ParseLines(lines []string, separator, version, source string) *hierarchy.Database {
	db, stats := hierarchy.ParseLines(lines, separator, version)

	if stats.Skipped() > 0 {
		logging.Info(fmt.Sprintf("%s skip statistics", source),
			"empty_lines", stats.Blank,
			"comment_lines", stats.Comments,
			"missing_columns", stats.Short,
			"total_lines", stats.Lines,
			"records_parsed", stats.Accepted)
	}
	if stats.Short > 0 {
		logging.Warn("Lines with fewer than 4 columns were dropped", "source", source, "count", stats.Short)
	}

	logging.Info("SMARTS-RX source parsed", "source", source, "version", version, "records", db.Len())
	return db
}
