package bigquery

import (
	"fmt"
	"math/big"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// DatasetRow is one record as stored in the BigQuery table. Fields follow the CSV
// column order so a CSV load job maps onto the same schema.
type DatasetRow struct {
	Date       civil.Date `bigquery:"date"`       // REQUIRED, partition column
	Year       int64      `bigquery:"year"`       // REQUIRED
	Month      int64      `bigquery:"month"`      // REQUIRED
	Region     string     `bigquery:"region"`     // REQUIRED
	Department string     `bigquery:"department"` // REQUIRED

	Revenue           *big.Rat `bigquery:"revenue"`            // REQUIRED NUMERIC
	CostOfGoodsSold   *big.Rat `bigquery:"cost_of_goods_sold"` // REQUIRED NUMERIC
	OperatingExpenses *big.Rat `bigquery:"operating_expenses"` // REQUIRED NUMERIC
	MarketingExpenses *big.Rat `bigquery:"marketing_expenses"` // REQUIRED NUMERIC
	OtherExpenses     *big.Rat `bigquery:"other_expenses"`     // REQUIRED NUMERIC
}

// Schema is the table schema inferred from DatasetRow.
func Schema() (bigquery.Schema, error) {
	s, err := bigquery.InferSchema(DatasetRow{})
	if err != nil {
		return nil, fmt.Errorf("Schema: %w", err)
	}
	return s, nil
}

// ToRow converts a record to its table row.
func ToRow(r domain.Record) *DatasetRow {
	return &DatasetRow{
		Date:              r.Date,
		Year:              int64(r.Year),
		Month:             int64(r.Month),
		Region:            r.Region,
		Department:        r.Department,
		Revenue:           r.Revenue.Rat(),
		CostOfGoodsSold:   r.CostOfGoodsSold.Rat(),
		OperatingExpenses: r.OperatingExpenses.Rat(),
		MarketingExpenses: r.MarketingExpenses.Rat(),
		OtherExpenses:     r.OtherExpenses.Rat(),
	}
}

// FromRow converts a table row back to a record. Amounts are read at cent precision;
// a row whose Year or Month disagrees with Date is rejected.
func FromRow(row *DatasetRow) (domain.Record, error) {
	rec := domain.Record{
		Date:       row.Date,
		Year:       int(row.Year),
		Month:      int(row.Month),
		Region:     row.Region,
		Department: row.Department,
	}
	if !row.Date.IsValid() {
		return domain.Record{}, fmt.Errorf("FromRow: invalid date %s", row.Date)
	}
	if !rec.Consistent() {
		return domain.Record{}, fmt.Errorf("FromRow: year/month %d-%d do not match date %s", row.Year, row.Month, row.Date)
	}

	fields := []struct {
		name string
		src  *big.Rat
		dst  *decimal.Decimal
	}{
		{"revenue", row.Revenue, &rec.Revenue},
		{"cost_of_goods_sold", row.CostOfGoodsSold, &rec.CostOfGoodsSold},
		{"operating_expenses", row.OperatingExpenses, &rec.OperatingExpenses},
		{"marketing_expenses", row.MarketingExpenses, &rec.MarketingExpenses},
		{"other_expenses", row.OtherExpenses, &rec.OtherExpenses},
	}
	for _, f := range fields {
		if f.src == nil {
			return domain.Record{}, fmt.Errorf("FromRow: %s is NULL", f.name)
		}
		d, err := decimal.NewFromString(f.src.FloatString(2))
		if err != nil {
			return domain.Record{}, fmt.Errorf("FromRow: %s: %w", f.name, err)
		}
		*f.dst = d
	}
	return rec, nil
}
