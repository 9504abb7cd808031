// Package export writes and reads the distributable smartsrx.json database
// and its JSON schema.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/MolecularAI/smartsrx/hierarchy"
	"github.com/MolecularAI/smartsrx/logging"
)

const (
	DefaultDatabaseFile = "smartsrx.json"
	DefaultSchemaFile   = "smartsrx_schema.json"
)

// WriteDatabase writes db as indented JSON to path.
func WriteDatabase(path string, db *hierarchy.Database) error {
	var buf bytes.Buffer
	if err := hierarchy.Encode(&buf, db); err != nil {
		return err
	}

	if err := writeFileLocked(path, buf.Bytes()); err != nil {
		return err
	}

	logging.Info("Database written", "path", path, "version", db.Version, "records", db.Len())
	return nil
}

// WriteSchema writes the database JSON schema to path.
func WriteSchema(path string) error {
	schema, err := hierarchy.SchemaJSON()
	if err != nil {
		return err
	}

	if err := writeFileLocked(path, append(schema, '\n')); err != nil {
		return err
	}

	logging.Info("Schema written", "path", path)
	return nil
}

// ReadDatabase loads a database written by WriteDatabase.
func ReadDatabase(path string) (*hierarchy.Database, error) {
	lock := flock.New(lockPath(path))
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	defer unlock(lock)

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("Failed to close database file", "path", path, "error", err)
		}
	}()

	db, err := hierarchy.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return db, nil
}

// writeFileLocked replaces path atomically while holding an exclusive lock
// on its sibling lock file, so a concurrent reader never sees a partial file.
func writeFileLocked(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	lock := flock.New(lockPath(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock %s: %w", path, err)
	}
	defer unlock(lock)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err := os.Remove(tmpName); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logging.Warn("Failed to remove temporary file", "path", tmpName, "error", err)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func lockPath(path string) string {
	return path + ".lock"
}

func unlock(lock *flock.Flock) {
	if err := lock.Unlock(); err != nil {
		logging.Warn("Failed to release file lock", "path", lock.Path(), "error", err)
	}
}
