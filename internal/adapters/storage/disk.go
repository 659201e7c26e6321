package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"eventsapi/internal/domain"

	"github.com/google/uuid"
)

// maxNameAttempts bounds retries after a name collision.
const maxNameAttempts = 5

// DiskStorage writes uploads into a local directory.
type DiskStorage struct {
	dir string
	now func() time.Time
}

// NewDiskStorage returns a DiskStorage rooted at dir, creating the directory if needed.
func NewDiskStorage(dir string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStorage{dir: dir, now: time.Now}, nil
}

var _ domain.FileStorage = (*DiskStorage)(nil)

// Save writes content to <dir>/<unix-ms>-<filename> and returns that path.
// If that name is taken, a short random fragment is inserted after the timestamp.
func (s *DiskStorage) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, path, err := s.create(s.now(), filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

// Remove deletes a file previously returned by Save. Missing files are not an error.
func (s *DiskStorage) Remove(_ context.Context, ref string) error {
	if err := os.Remove(ref); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *DiskStorage) create(at time.Time, filename string) (*os.File, string, error) {
	name := objectName(at, filename)
	for attempt := 1; ; attempt++ {
		path := filepath.Join(s.dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) || attempt == maxNameAttempts {
			return nil, "", err
		}
		name = uniqueObjectName(at, filename)
	}
}

// objectName prefixes the base name of filename with the upload time in milliseconds.
func objectName(at time.Time, filename string) string {
	return strconv.FormatInt(at.UnixMilli(), 10) + "-" + baseName(filename)
}

// uniqueObjectName is objectName with an 8 character random fragment after the timestamp.
func uniqueObjectName(at time.Time, filename string) string {
	return strconv.FormatInt(at.UnixMilli(), 10) + "-" + uuid.NewString()[:8] + "-" + baseName(filename)
}

func baseName(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	return base
}
