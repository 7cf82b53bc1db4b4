package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dvloznov/finance-dashboard/internal/config"
	"github.com/dvloznov/finance-dashboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_WritesDatasetAndReport(t *testing.T) {
	cfg := config.Default()
	path := filepath.Join(t.TempDir(), "out", "financial_data.csv")

	var out bytes.Buffer
	err := run(context.Background(), &cfg, []string{"-start", "2023-01-01", "-end", "2023-01-10", "-seed", "7", "-out", path}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Generated 120 records of financial data")
	assert.Contains(t, out.String(), "Data saved to: "+path)

	ds, err := store.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, ds.Len())
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad start", args: []string{"-start", "01/01/2023"}},
		{name: "bad end", args: []string{"-end", "2023-13-01"}},
		{name: "end before start", args: []string{"-start", "2023-02-01", "-end", "2023-01-01"}},
		{name: "unknown flag", args: []string{"-rows", "10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			path := filepath.Join(t.TempDir(), "financial_data.csv")

			var out bytes.Buffer
			err := run(context.Background(), &cfg, append(tt.args, "-out", path), &out)
			require.Error(t, err)
			assert.Empty(t, out.String())

			_, statErr := os.Stat(path)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}
