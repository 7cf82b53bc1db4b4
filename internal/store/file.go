package store

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dvloznov/finance-dashboard/internal/domain"
)

// DefaultPath is where the generator writes the dataset when nothing else is configured.
const DefaultPath = "data/financial_data.csv"

// FileStore keeps the dataset in a local CSV file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Location returns the file path.
func (s *FileStore) Location() string {
	return s.path
}

// Save writes ds to a temporary file next to the target and renames it into place,
// so readers never observe a half-written store.
func (s *FileStore) Save(ctx context.Context, ds *domain.Dataset) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("FileStore.Save: create directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".financial-*.csv")
	if err != nil {
		return fmt.Errorf("FileStore.Save: create temp file: %w", err)
	}
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmp.Name())
	}()

	bw := bufio.NewWriter(tmp)
	if err := WriteCSV(bw, ds); err != nil {
		tmp.Close()
		return fmt.Errorf("FileStore.Save: %w", err)
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("FileStore.Save: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("FileStore.Save: close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("FileStore.Save: rename into %q: %w", s.path, err)
	}
	return nil
}

// Load reads the dataset. A missing file yields ErrDataNotFound.
func (s *FileStore) Load(ctx context.Context) (*domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("FileStore.Load: %q: %w", s.path, ErrDataNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("FileStore.Load: open %q: %w", s.path, err)
	}
	defer f.Close()

	ds, err := ReadCSV(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("FileStore.Load: %w", err)
	}
	return ds, nil
}

// Close is a no-op for file stores.
func (s *FileStore) Close() error {
	return nil
}
