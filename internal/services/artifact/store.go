// Package artifact manages the transient local dump artifact and its naming.
package artifact

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// timestampLayout renders UTC creation times at nanosecond resolution so
// names stay unique across back-to-back runs and sort lexically by time.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

// Filename derives the artifact filename from its creation time, e.g.
// "backup_2026-08-25T03:00:00.000000000Z.sql". ext appends a codec suffix.
func Filename(t time.Time, ext string) string {
	return "backup_" + t.UTC().Format(timestampLayout) + ".sql" + ext
}

// ObjectKey joins the configured key prefix with the artifact filename.
// Trailing slashes on the prefix are dropped so the key never carries an
// empty path segment. The local filename and the key's base name are the
// same by convention.
func ObjectKey(prefix, filename string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return filename
	}
	return prefix + "/" + filename
}

// Store owns the lifetime of local backup artifacts inside one directory.
type Store interface {
	Create(name string) (io.WriteCloser, error)
	Open(name string) (io.ReadCloser, error)
	Size(name string) (int64, error)
	// Remove deletes the artifact; removing a missing artifact is a no-op.
	Remove(name string) error
	Path(name string) string
}

// Impl implements Store on a local directory.
type Impl struct {
	dir    string
	logger zerolog.Logger
}

// New creates a store rooted at dir.
func New(dir string, logger zerolog.Logger) *Impl {
	return &Impl{
		dir:    dir,
		logger: logger,
	}
}

// Create opens a new artifact for writing. The name must not exist yet.
func (s *Impl) Create(name string) (io.WriteCloser, error) {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating artifact directory %s: %w", s.dir, err)
	}

	path := s.Path(name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("creating artifact %s: %w", path, err)
	}

	s.logger.Debug().Str("path", path).Msg("created artifact")
	return f, nil
}

// Open opens an existing artifact for reading.
func (s *Impl) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("opening artifact %s: %w", s.Path(name), err)
	}
	return f, nil
}

// Size returns the artifact's size in bytes.
func (s *Impl) Size(name string) (int64, error) {
	info, err := os.Stat(s.Path(name))
	if err != nil {
		return 0, fmt.Errorf("sizing artifact %s: %w", s.Path(name), err)
	}
	return info.Size(), nil
}

// Remove deletes the artifact. A missing artifact is not an error so the
// cleanup path can run unconditionally on every pipeline exit.
func (s *Impl) Remove(name string) error {
	path := s.Path(name)

	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("removing artifact %s: %w", path, err)
	}

	s.logger.Debug().Str("path", path).Msg("removed artifact")
	return nil
}

// Path returns the location of an artifact inside the store.
func (s *Impl) Path(name string) string {
	return filepath.Join(s.dir, name)
}
