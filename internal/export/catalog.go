package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// CatalogName is the cumulative per-activity record file inside the export
// directory.
const CatalogName = "activities.csv"

// Catalog owns the append-only activities.csv handle. The header is written
// exactly once, when the file does not yet exist; the file is never rewritten.
type Catalog struct {
	file *os.File
	path string
}

// OpenCatalog opens (or creates) the catalog at path for appending and
// reports whether the file already existed.
func OpenCatalog(path string) (*Catalog, bool, error) {
	existed := true
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, false, fmt.Errorf("stat catalog %s: %w", path, err)
		}
		existed = false
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("open catalog %s: %w", path, err)
	}

	if !existed {
		if _, err := file.WriteString(Header()); err != nil {
			file.Close()
			return nil, false, fmt.Errorf("write catalog header: %w", err)
		}
	}
	return &Catalog{file: file, path: path}, existed, nil
}

// Append serializes one record and appends it to the catalog.
func (c *Catalog) Append(r *Record) error {
	if _, err := c.file.WriteString(ProjectRow(r)); err != nil {
		return fmt.Errorf("append catalog row for activity %d: %w", r.Summary.ActivityID, err)
	}
	return nil
}

// Close releases the catalog file handle.
func (c *Catalog) Close() error {
	return c.file.Close()
}
