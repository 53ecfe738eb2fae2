// Package covers stores locally cached cover images, one file per book,
// named deterministically from the ISBN.
package covers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store is a file-backed blob area for cover images.
type Store struct {
	dir string
}

// NewStore creates the cover directory if needed and returns a store
// rooted there.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cover dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Filename returns the deterministic file name for an ISBN.
func Filename(isbn string) string {
	return isbn + ".jpg"
}

// Save writes the image for an ISBN, overwriting any previous fetch,
// and returns the stored file name.
func (s *Store) Save(isbn string, r io.Reader) (string, error) {
	name := Filename(isbn)
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return name, nil
}

// Open opens a stored cover by file name.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.dir, filepath.Base(name)))
}

// Path returns the on-disk path for a stored cover file name.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}
