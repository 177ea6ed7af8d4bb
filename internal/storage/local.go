package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no blob exists for a key.
var ErrNotFound = errors.New("blob not found")

// BlobStore persists uploaded files and retrieves them by key. Size and
// type validation is the caller's contract, not the store's.
type BlobStore interface {
	Store(r io.Reader, originalName string) (key string, size int64, err error)
	Open(key string) (io.ReadCloser, error)
}

// LocalStore keeps blobs as flat files under a single directory. Keys are
// generated, never caller-supplied paths.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir}, nil
}

// Store writes the blob under a fresh key, preserving the original
// extension so served files keep a usable content type.
func (s *LocalStore) Store(r io.Reader, originalName string) (string, int64, error) {
	key := uuid.NewString() + sanitizeExt(originalName)
	f, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", 0, err
	}
	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, key))
		return "", 0, err
	}
	return key, size, nil
}

// Open returns the blob contents for a key.
func (s *LocalStore) Open(key string) (io.ReadCloser, error) {
	if !validKey(key) {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// validKey rejects anything that could escape the storage directory.
func validKey(key string) bool {
	return key != "" &&
		!strings.ContainsAny(key, `/\`) &&
		!strings.Contains(key, "..")
}

func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}
