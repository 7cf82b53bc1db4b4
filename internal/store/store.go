package store

import (
	"context"
	"strings"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"google.golang.org/api/option"
)

// Store persists and loads a complete dataset in the tabular CSV format.
type Store interface {
	// Save replaces the stored dataset with ds.
	Save(ctx context.Context, ds *domain.Dataset) error

	// Load reads the stored dataset. It returns ErrDataNotFound when nothing is stored
	// and ErrMalformedData when the contents cannot be parsed.
	Load(ctx context.Context) (*domain.Dataset, error)

	// Location describes where the dataset lives (file path or gs:// URI).
	Location() string

	// Close releases any underlying client.
	Close() error
}

// Open returns a GCSStore for gs:// locations and a FileStore otherwise.
// Client options only apply to GCS.
func Open(ctx context.Context, location string, opts ...option.ClientOption) (Store, error) {
	if location == "" {
		location = DefaultPath
	}
	if strings.HasPrefix(location, gcsScheme) {
		return NewGCSStore(ctx, location, opts...)
	}
	return NewFileStore(location), nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*GCSStore)(nil)
)
