package bigquery

import (
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() domain.Record {
	r := domain.NewRecord(civil.Date{Year: 2022, Month: time.March, Day: 14}, domain.RegionEurope, domain.DepartmentSales)
	r.Revenue = decimal.RequireFromString("18345.67")
	r.CostOfGoodsSold = decimal.RequireFromString("8255.55")
	r.OperatingExpenses = decimal.RequireFromString("3669.13")
	r.MarketingExpenses = decimal.RequireFromString("1467.65")
	r.OtherExpenses = decimal.RequireFromString("917.28")
	return r
}

func TestToRowFromRow(t *testing.T) {
	rec := sampleRecord()

	row := ToRow(rec)
	assert.Equal(t, rec.Date, row.Date)
	assert.Equal(t, int64(2022), row.Year)
	assert.Equal(t, int64(3), row.Month)
	assert.Equal(t, "18345.67", row.Revenue.FloatString(2))
	assert.Equal(t, "917.28", row.OtherExpenses.FloatString(2))

	back, err := FromRow(row)
	require.NoError(t, err)
	assert.Equal(t, rec.Key(), back.Key())
	assert.True(t, rec.Revenue.Equal(back.Revenue))
	assert.True(t, rec.TotalExpenses().Equal(back.TotalExpenses()))
}

func TestFromRow_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DatasetRow)
	}{
		{name: "null amount", mutate: func(r *DatasetRow) { r.MarketingExpenses = nil }},
		{name: "month mismatch", mutate: func(r *DatasetRow) { r.Month = 4 }},
		{name: "year mismatch", mutate: func(r *DatasetRow) { r.Year = 2021 }},
		{name: "invalid date", mutate: func(r *DatasetRow) { r.Date = civil.Date{Year: 2022, Month: time.February, Day: 30} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := ToRow(sampleRecord())
			tt.mutate(row)
			_, err := FromRow(row)
			assert.Error(t, err)
		})
	}
}

func TestFromRow_RoundsToCents(t *testing.T) {
	row := ToRow(sampleRecord())
	row.Revenue = big.NewRat(100001, 1000) // 100.001

	rec, err := FromRow(row)
	require.NoError(t, err)
	assert.Equal(t, "100.00", rec.Revenue.StringFixed(2))
}

func TestSchema(t *testing.T) {
	s, err := Schema()
	require.NoError(t, err)
	require.Len(t, s, len(domain.Columns))

	want := []struct {
		name string
		typ  bigquery.FieldType
	}{
		{"date", bigquery.DateFieldType},
		{"year", bigquery.IntegerFieldType},
		{"month", bigquery.IntegerFieldType},
		{"region", bigquery.StringFieldType},
		{"department", bigquery.StringFieldType},
		{"revenue", bigquery.NumericFieldType},
		{"cost_of_goods_sold", bigquery.NumericFieldType},
		{"operating_expenses", bigquery.NumericFieldType},
		{"marketing_expenses", bigquery.NumericFieldType},
		{"other_expenses", bigquery.NumericFieldType},
	}
	for i, w := range want {
		assert.Equal(t, w.name, s[i].Name)
		assert.Equal(t, w.typ, s[i].Type, w.name)
	}
}
