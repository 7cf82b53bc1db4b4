package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func testDataset() *domain.Dataset {
	a := domain.NewRecord(civil.Date{Year: 2021, Month: 1, Day: 1}, domain.RegionNorthAmerica, domain.DepartmentSales)
	a.Revenue = decimal.RequireFromString("52012.34")
	a.CostOfGoodsSold = decimal.RequireFromString("25000.10")
	a.OperatingExpenses = decimal.RequireFromString("12000.00")
	a.MarketingExpenses = decimal.RequireFromString("7000.5")
	a.OtherExpenses = decimal.RequireFromString("3000.25")

	b := domain.NewRecord(civil.Date{Year: 2021, Month: 1, Day: 2}, domain.RegionEurope, domain.DepartmentRnD)
	b.Revenue = decimal.RequireFromString("1000")
	b.CostOfGoodsSold = decimal.RequireFromString("100")
	b.OperatingExpenses = decimal.RequireFromString("100")
	b.MarketingExpenses = decimal.RequireFromString("50")
	b.OtherExpenses = decimal.RequireFromString("25")

	return domain.NewDataset([]domain.Record{a, b})
}

func assertSameRecords(t *testing.T, want, got *domain.Dataset) {
	t.Helper()
	require.Equal(t, want.Len(), got.Len())
	for i := 0; i < want.Len(); i++ {
		w, g := want.At(i), got.At(i)
		assert.Equal(t, w.Key(), g.Key())
		assert.Equal(t, w.Year, g.Year)
		assert.Equal(t, w.Month, g.Month)
		for _, f := range domain.MonetaryFields {
			assert.True(t, w.Value(f).Equal(g.Value(f)), "row %d field %s: want %s got %s", i, f, w.Value(f), g.Value(f))
		}
	}
}

func TestCSVRoundTrip(t *testing.T) {
	ds := testDataset()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ds))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(domain.Columns, ","), lines[0])
	assert.Equal(t, "2021-01-01,2021,1,North America,Sales,52012.34,25000.10,12000.00,7000.50,3000.25", lines[1])

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	assertSameRecords(t, ds, got)
}

func TestReadCSV(t *testing.T) {
	header := strings.Join(domain.Columns, ",")

	tests := []struct {
		name      string
		input     string
		wantRows  int
		wantError error
	}{
		{
			name:     "header only",
			input:    header + "\n",
			wantRows: 0,
		},
		{
			name:     "byte order mark and reordered columns",
			input:    "\xEF\xBB\xBF" + "Region,Department,Date,Year,Month,Revenue,Cost_of_Goods_Sold,Operating_Expenses,Marketing_Expenses,Other_Expenses,Extra\nEurope,Sales,2022-05-01,2022,5,1000,400,100,60,40,x\n",
			wantRows: 1,
		},
		{
			name:      "empty file",
			input:     "",
			wantError: ErrMalformedData,
		},
		{
			name:      "missing revenue column",
			input:     "Date,Year,Month,Region,Department\n2022-01-01,2022,1,Europe,Sales\n",
			wantError: ErrMalformedData,
		},
		{
			name:      "bad date",
			input:     header + "\n2022-13-01,2022,13,Europe,Sales,1,1,1,1,1\n",
			wantError: ErrMalformedData,
		},
		{
			name:      "bad amount",
			input:     header + "\n2022-01-01,2022,1,Europe,Sales,abc,1,1,1,1\n",
			wantError: ErrMalformedData,
		},
		{
			name:      "month disagrees with date",
			input:     header + "\n2022-01-01,2022,2,Europe,Sales,1,1,1,1,1\n",
			wantError: ErrMalformedData,
		},
		{
			name:      "short row",
			input:     header + "\n2022-01-01,2022,1,Europe\n",
			wantError: ErrMalformedData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ReadCSV(strings.NewReader(tt.input))
			if tt.wantError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, ds.Len())
		})
	}
}

func TestFileStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "financial_data.csv")
	fs := NewFileStore(path)

	ds := testDataset()
	require.NoError(t, fs.Save(ctx, ds))

	got, err := fs.Load(ctx)
	require.NoError(t, err)
	assertSameRecords(t, ds, got)

	// Overwrite with a smaller dataset.
	require.NoError(t, fs.Save(ctx, domain.NewDataset(ds.Records()[:1])))
	got, err = fs.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files should be cleaned up")
}

func TestFileStore_LoadMissing(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "missing.csv"))

	_, err := fs.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataNotFound)
	assert.Equal(t, HintRegenerate, UserMessage(err))
}

func TestFileStore_LoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Region\n2021-01-01,Europe\n"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedData)
	assert.Contains(t, UserMessage(err), "malformed")
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, "boom", UserMessage(errors.New("boom")))
}

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		name       string
		uri        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{"nested object", "gs://my-bucket/data/financial_data.csv", "my-bucket", "data/financial_data.csv", false},
		{"root object", "gs://b/file.csv", "b", "file.csv", false},
		{"no scheme", "my-bucket/file.csv", "", "", true},
		{"no object", "gs://my-bucket", "", "", true},
		{"trailing slash", "gs://my-bucket/", "", "", true},
		{"empty bucket", "gs:///file.csv", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := ParseGCSURI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}

func TestFilenameFromURI(t *testing.T) {
	assert.Equal(t, "file.csv", FilenameFromURI("gs://bucket/folder/file.csv"))
	assert.Equal(t, "bucket", FilenameFromURI("gs://bucket"))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, "")
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	assert.Equal(t, DefaultPath, s.Location())

	s, err = Open(ctx, "gs://bucket/financial_data.csv", option.WithoutAuthentication())
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &GCSStore{}, s)
	assert.Equal(t, "gs://bucket/financial_data.csv", s.Location())

	_, err = Open(ctx, "gs://bucket")
	assert.Error(t, err)
}
