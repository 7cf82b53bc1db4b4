// Package bigquery exports datasets to a BigQuery table and reads them back.
package bigquery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/store"
	"github.com/samber/lo"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// insertBatchSize caps rows per streaming insert request.
const insertBatchSize = 500

// DatasetRepository persists datasets in BigQuery.
type DatasetRepository interface {
	EnsureTable(ctx context.Context) error
	InsertDataset(ctx context.Context, ds *domain.Dataset) error
	ReplaceDataset(ctx context.Context, ds *domain.Dataset) error
	QueryByDateRange(ctx context.Context, start, end civil.Date) (*domain.Dataset, error)
	Close() error
}

// Repository is the BigQuery implementation of DatasetRepository. It holds one
// shared client for all operations.
type Repository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	tableID   string
}

// NewRepository creates a repository for projectID.datasetID.tableID.
func NewRepository(ctx context.Context, projectID, datasetID, tableID string, opts ...option.ClientOption) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
		tableID:   tableID,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// TableRef returns the fully qualified table name.
func (r *Repository) TableRef() string {
	return fmt.Sprintf("%s.%s.%s", r.projectID, r.datasetID, r.tableID)
}

func (r *Repository) table() *bigquery.Table {
	return r.client.DatasetInProject(r.projectID, r.datasetID).Table(r.tableID)
}

// EnsureTable creates the table, partitioned by month on date, unless it exists.
func (r *Repository) EnsureTable(ctx context.Context) error {
	schema, err := Schema()
	if err != nil {
		return fmt.Errorf("EnsureTable: %w", err)
	}

	meta := &bigquery.TableMetadata{
		Name:        r.tableID,
		Description: "Synthetic daily financial activity per region and department",
		Schema:      schema,
		TimePartitioning: &bigquery.TimePartitioning{
			Type:  bigquery.MonthPartitioningType,
			Field: "date",
		},
		Clustering: &bigquery.Clustering{Fields: []string{"region", "department"}},
	}
	if err := r.table().Create(ctx, meta); err != nil {
		if isAlreadyExists(err) {
			return nil
		}
		return fmt.Errorf("EnsureTable: creating %s: %w", r.TableRef(), err)
	}
	return nil
}

func isAlreadyExists(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusConflict
}

// InsertDataset appends ds with streaming inserts in batches.
func (r *Repository) InsertDataset(ctx context.Context, ds *domain.Dataset) error {
	if ds.Empty() {
		return nil
	}

	rows := lo.Map(ds.Records(), func(rec domain.Record, _ int) *DatasetRow { return ToRow(rec) })
	inserter := r.table().Inserter()
	for i, batch := range lo.Chunk(rows, insertBatchSize) {
		if err := inserter.Put(ctx, batch); err != nil {
			return fmt.Errorf("InsertDataset: inserting batch %d: %w", i, err)
		}
	}
	return nil
}

// ReplaceDataset overwrites the table with ds using a CSV load job.
func (r *Repository) ReplaceDataset(ctx context.Context, ds *domain.Dataset) error {
	var buf bytes.Buffer
	if err := store.WriteCSV(&buf, ds); err != nil {
		return fmt.Errorf("ReplaceDataset: encoding csv: %w", err)
	}

	src := bigquery.NewReaderSource(&buf)
	src.SourceFormat = bigquery.CSV
	src.SkipLeadingRows = 1

	loader := r.table().LoaderFrom(src)
	loader.WriteDisposition = bigquery.WriteTruncate

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("ReplaceDataset: starting load: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("ReplaceDataset: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("ReplaceDataset: job error: %w", err)
	}
	return nil
}

// QueryByDateRange reads the rows with start <= date <= end.
func (r *Repository) QueryByDateRange(ctx context.Context, start, end civil.Date) (*domain.Dataset, error) {
	q := r.client.Query(fmt.Sprintf(`
		SELECT
			date,
			year,
			month,
			region,
			department,
			revenue,
			cost_of_goods_sold,
			operating_expenses,
			marketing_expenses,
			other_expenses
		FROM `+"`%s`"+`
		WHERE date >= @start_date
		  AND date <= @end_date
		ORDER BY date, region, department
	`, r.TableRef()))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: start},
		{Name: "end_date", Value: end},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryByDateRange: query read: %w", err)
	}

	var records []domain.Record
	for {
		var row DatasetRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryByDateRange: iter next: %w", err)
		}
		rec, err := FromRow(&row)
		if err != nil {
			return nil, fmt.Errorf("QueryByDateRange: %w", err)
		}
		records = append(records, rec)
	}

	return domain.NewDataset(records), nil
}

// Ensure Repository implements DatasetRepository.
var _ DatasetRepository = (*Repository)(nil)
