package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"google.golang.org/api/option"
)

const gcsScheme = "gs://"

// GCSStore keeps the dataset CSV as a single object in a Cloud Storage bucket.
// It assumes Application Default Credentials unless client options say otherwise.
type GCSStore struct {
	client *storage.Client
	bucket string
	object string
}

// NewGCSStore creates a store for a URI such as "gs://bucket/path/financial_data.csv".
func NewGCSStore(ctx context.Context, uri string, opts ...option.ClientOption) (*GCSStore, error) {
	bucket, object, err := ParseGCSURI(uri)
	if err != nil {
		return nil, err
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewGCSStore: create storage client: %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: bucket,
		object: object,
	}, nil
}

// Location returns the gs:// URI of the object.
func (s *GCSStore) Location() string {
	return gcsScheme + s.bucket + "/" + s.object
}

// Save uploads ds as CSV, replacing the object.
func (s *GCSStore) Save(ctx context.Context, ds *domain.Dataset) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	w.ContentType = "text/csv"

	if err := WriteCSV(w, ds); err != nil {
		// Cancelling the context aborts the upload.
		cancel()
		_ = w.Close()
		return fmt.Errorf("GCSStore.Save: %w", err)
	}

	// Close to finalize the upload
	if err := w.Close(); err != nil {
		return fmt.Errorf("GCSStore.Save: finalize upload: %w", err)
	}
	return nil
}

// Load downloads and parses the object. A missing bucket or object yields ErrDataNotFound.
func (s *GCSStore) Load(ctx context.Context) (*domain.Dataset, error) {
	rc, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return nil, fmt.Errorf("GCSStore.Load: %s: %w", s.Location(), ErrDataNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GCSStore.Load: reading object %s/%s: %w", s.bucket, s.object, err)
	}
	defer rc.Close()

	ds, err := ReadCSV(rc)
	if err != nil {
		return nil, fmt.Errorf("GCSStore.Load: %w", err)
	}
	return ds, nil
}

// UploadFile streams a local CSV file into the object as-is.
func (s *GCSStore) UploadFile(ctx context.Context, filePath string) error {
	f, err := os.Open(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("GCSStore.UploadFile: %q: %w", filePath, ErrDataNotFound)
	}
	if err != nil {
		return fmt.Errorf("GCSStore.UploadFile: open file %q: %w", filePath, err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	w.ContentType = "text/csv"

	if _, err := io.Copy(w, f); err != nil {
		cancel()
		_ = w.Close()
		return fmt.Errorf("GCSStore.UploadFile: copy file to GCS writer: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("GCSStore.UploadFile: finalize upload: %w", err)
	}
	return nil
}

// Close releases the storage client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// ParseGCSURI splits "gs://bucket/path/to/file.csv" into bucket and object path.
func ParseGCSURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, gcsScheme) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}

	trimmed := strings.TrimPrefix(uri, gcsScheme)
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}

	return parts[0], parts[1], nil
}

// FilenameFromURI extracts the file name from a GCS URI.
// e.g., "gs://bucket/folder/file.csv" → "file.csv"
func FilenameFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, gcsScheme)

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}

	return path.Base(parts[1])
}
