package domain

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Column names of the persisted tabular store, in header order.
const (
	ColDate              = "Date"
	ColYear              = "Year"
	ColMonth             = "Month"
	ColRegion            = "Region"
	ColDepartment        = "Department"
	ColRevenue           = "Revenue"
	ColCostOfGoodsSold   = "Cost_of_Goods_Sold"
	ColOperatingExpenses = "Operating_Expenses"
	ColMarketingExpenses = "Marketing_Expenses"
	ColOtherExpenses     = "Other_Expenses"
)

// Columns is the exact header row of the tabular store.
var Columns = []string{
	ColDate,
	ColYear,
	ColMonth,
	ColRegion,
	ColDepartment,
	ColRevenue,
	ColCostOfGoodsSold,
	ColOperatingExpenses,
	ColMarketingExpenses,
	ColOtherExpenses,
}

// Record is one synthetic financial observation for a single date, region and department.
// Monetary fields are rounded to 2 fractional digits.
type Record struct {
	Date       civil.Date // calendar date, "Date" column (YYYY-MM-DD)
	Year       int        // derived from Date
	Month      int        // derived from Date, 1-12
	Region     string
	Department string

	Revenue           decimal.Decimal
	CostOfGoodsSold   decimal.Decimal
	OperatingExpenses decimal.Decimal
	MarketingExpenses decimal.Decimal
	OtherExpenses     decimal.Decimal
}

// NewRecord builds a Record whose Year and Month are derived from date.
func NewRecord(date civil.Date, region, department string) Record {
	return Record{
		Date:       date,
		Year:       date.Year,
		Month:      int(date.Month),
		Region:     region,
		Department: department,
	}
}

// Consistent reports whether Year and Month agree with Date.
func (r Record) Consistent() bool {
	return r.Year == r.Date.Year && r.Month == int(r.Date.Month)
}

// TotalExpenses returns the sum of the four expense categories.
func (r Record) TotalExpenses() decimal.Decimal {
	return r.CostOfGoodsSold.
		Add(r.OperatingExpenses).
		Add(r.MarketingExpenses).
		Add(r.OtherExpenses)
}

// Expense returns the amount booked under the given category.
func (r Record) Expense(cat ExpenseCategory) decimal.Decimal {
	switch cat {
	case CostOfGoodsSold:
		return r.CostOfGoodsSold
	case OperatingExpenses:
		return r.OperatingExpenses
	case MarketingExpenses:
		return r.MarketingExpenses
	case OtherExpenses:
		return r.OtherExpenses
	default:
		return decimal.Zero
	}
}

// Value returns the monetary field identified by f.
func (r Record) Value(f Field) decimal.Decimal {
	if f == Revenue {
		return r.Revenue
	}
	return r.Expense(ExpenseCategory(f))
}

// Key identifies a record within a dataset.
type Key struct {
	Date       civil.Date
	Region     string
	Department string
}

// Key returns the (Date, Region, Department) triple of the record.
func (r Record) Key() Key {
	return Key{Date: r.Date, Region: r.Region, Department: r.Department}
}
