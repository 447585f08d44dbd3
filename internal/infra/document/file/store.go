// Package file implements the Record Store as a JSON document on the local
// filesystem.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"userdesk/internal/store/core"
	"userdesk/pkg/domain"
)

// DefaultPath is used when no document path is configured.
const DefaultPath = "db.json"

// Store keeps the collection in a single JSON file. Writes stream to a
// temporary sibling and are renamed over the target so readers only ever see
// a complete document.
type Store struct {
	path string
}

// New returns a file-backed store, creating the parent directory if needed.
func New(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	return &Store{path: path}, nil
}

func (s *Store) Driver() core.Driver { return core.DriverFile }

// Path returns the configured document path.
func (s *Store) Path() string { return s.path }

func (s *Store) ReadAll(_ context.Context) (domain.Collection, error) {
	// #nosec G304 -- document path comes from operator configuration
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Collection{}, nil
	}
	if err != nil {
		return nil, err
	}
	return core.Decode(b)
}

func (s *Store) WriteAll(_ context.Context, records domain.Collection) error {
	b, err := core.Encode(records)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".tmp-"+filepath.Base(s.path)+"-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	// atomically move into place
	return os.Rename(tmp.Name(), s.path)
}
