// Package smartsparser reads the SMARTS-RX source table and the project
// manifest and turns them into a hierarchy.Database.
package smartsparser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/MolecularAI/smartsrx/logging"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// ErrSourceNotFound is returned when the source table does not exist.
var ErrSourceNotFound = errors.New("source file not found")

// maxLineSize bounds a single line of the source table.
const maxLineSize = 1024 * 1024

// IsRemote reports whether source is fetched over HTTP.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// ReadSourceLines returns the lines of a local file or http(s) URL, dropping
// the first line when skipHeader is set.
func ReadSourceLines(source string, skipHeader bool) ([]string, error) {
	var (
		content []byte
		err     error
	)

	if IsRemote(source) {
		content, err = fetchSource(source)
	} else {
		content, err = os.ReadFile(filepath.Clean(source))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, source)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	lines, err := SplitLines(decodeSource(content))
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", source, err)
	}

	if skipHeader && len(lines) > 0 {
		lines = lines[1:]
	}

	logging.Debug("Source read", "source", source, "lines", len(lines), "header_skipped", skipHeader)
	return lines, nil
}

// decodeSource returns a UTF-8 reader over content. Valid UTF-8 has its BOM
// stripped, anything else is decoded as ISO-8859-1.
func decodeSource(content []byte) io.Reader {
	if utf8.Valid(content) {
		return unicode.UTF8BOM.NewDecoder().Reader(bytes.NewReader(content))
	}
	return charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(content))
}

// SplitLines reads r line by line without the line terminators.
func SplitLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func fetchSource(url string) ([]byte, error) {
	client := &http.Client{
		Timeout: 2 * time.Minute,
	}

	response, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s: unexpected status %s", url, response.Status)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, 64*maxLineSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
