package handlers

import (
	"net/url"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilter(t *testing.T) {
	d := func(y, m, day int) *civil.Date {
		return &civil.Date{Year: y, Month: time.Month(m), Day: day}
	}

	tests := []struct {
		name        string
		query       string
		wantStart   *civil.Date
		wantEnd     *civil.Date
		wantRegions []string
		wantDepts   []string
		wantErr     bool
	}{
		{name: "empty", query: ""},
		{
			name:      "date range",
			query:     "start_date=2022-01-01&end_date=2022-12-31",
			wantStart: d(2022, 1, 1),
			wantEnd:   d(2022, 12, 31),
		},
		{
			name:        "repeated region",
			query:       "region=Europe&region=North+America",
			wantRegions: []string{"Europe", "North America"},
		},
		{
			name:      "comma separated department with blanks and duplicates",
			query:     "department=Sales,+R%26D,,Sales",
			wantDepts: []string{"Sales", "R&D"},
		},
		{
			name:      "start after end is allowed",
			query:     "start_date=2023-01-01&end_date=2022-01-01",
			wantStart: d(2023, 1, 1),
			wantEnd:   d(2022, 1, 1),
		},
		{name: "bad start", query: "start_date=01/02/2022", wantErr: true},
		{name: "bad end", query: "end_date=2022-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			f, err := ParseFilter(q)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantStart, f.Start)
			assert.Equal(t, tt.wantEnd, f.End)
			if tt.wantRegions == nil {
				assert.Empty(t, f.Regions)
			} else {
				assert.Equal(t, tt.wantRegions, f.Regions)
			}
			if tt.wantDepts == nil {
				assert.Empty(t, f.Departments)
			} else {
				assert.Equal(t, tt.wantDepts, f.Departments)
			}
		})
	}
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, analyser.Daily, g)

	g, err = ParseGranularity(url.Values{"granularity": {"Monthly"}})
	require.NoError(t, err)
	assert.Equal(t, analyser.Monthly, g)

	_, err = ParseGranularity(url.Values{"granularity": {"weekly"}})
	assert.Error(t, err)
}
