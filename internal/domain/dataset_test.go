package domain

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []Record {
	d1 := civil.Date{Year: 2022, Month: 3, Day: 1}
	d2 := civil.Date{Year: 2021, Month: 12, Day: 31}
	a := NewRecord(d1, RegionEurope, DepartmentSales)
	a.Revenue = decimal.RequireFromString("1000.00")
	a.CostOfGoodsSold = decimal.RequireFromString("400.00")
	a.OperatingExpenses = decimal.RequireFromString("100.00")
	a.MarketingExpenses = decimal.RequireFromString("60.00")
	a.OtherExpenses = decimal.RequireFromString("40.00")
	b := NewRecord(d2, RegionAsiaPacific, DepartmentRnD)
	c := NewRecord(d1, RegionEurope, DepartmentRnD)
	return []Record{a, b, c}
}

func TestNewRecord_DerivesYearAndMonth(t *testing.T) {
	r := NewRecord(civil.Date{Year: 2023, Month: 11, Day: 5}, RegionEurope, DepartmentSales)
	assert.Equal(t, 2023, r.Year)
	assert.Equal(t, 11, r.Month)
	assert.True(t, r.Consistent())

	r.Month = 10
	assert.False(t, r.Consistent())
}

func TestRecord_Expenses(t *testing.T) {
	r := sampleRecords()[0]
	assert.True(t, r.TotalExpenses().Equal(decimal.RequireFromString("600")))
	assert.True(t, r.Expense(MarketingExpenses).Equal(decimal.RequireFromString("60")))
	assert.True(t, r.Value(Revenue).Equal(decimal.RequireFromString("1000")))
	assert.True(t, r.Value(Field(OtherExpenses)).Equal(decimal.RequireFromString("40")))
	assert.True(t, r.Expense(ExpenseCategory("bogus")).IsZero())
}

func TestNewDataset_CopiesInput(t *testing.T) {
	records := sampleRecords()
	ds := NewDataset(records)
	records[0].Region = "Mutated"

	assert.Equal(t, RegionEurope, ds.At(0).Region)

	out := ds.Records()
	out[0].Region = "Mutated"
	assert.Equal(t, RegionEurope, ds.At(0).Region)
}

func TestDataset_NilIsEmpty(t *testing.T) {
	var ds *Dataset
	assert.Equal(t, 0, ds.Len())
	assert.True(t, ds.Empty())
	assert.Nil(t, ds.Records())
	assert.Nil(t, ds.Regions())
	_, _, ok := ds.DateSpan()
	assert.False(t, ok)
	assert.Equal(t, 0, ds.Where(func(Record) bool { return true }).Len())
}

func TestDataset_DateSpanAndCategories(t *testing.T) {
	ds := NewDataset(sampleRecords())

	first, last, ok := ds.DateSpan()
	require.True(t, ok)
	assert.Equal(t, "2021-12-31", first.String())
	assert.Equal(t, "2022-03-01", last.String())

	assert.Equal(t, []string{RegionEurope, RegionAsiaPacific}, ds.Regions())
	assert.Equal(t, []string{DepartmentSales, DepartmentRnD}, ds.Departments())
}

func TestDataset_Where(t *testing.T) {
	ds := NewDataset(sampleRecords())
	rnd := ds.Where(func(r Record) bool { return r.Department == DepartmentRnD })

	assert.Equal(t, 2, rnd.Len())
	assert.Equal(t, 3, ds.Len())

	count := 0
	rnd.Each(func(r Record) {
		assert.Equal(t, DepartmentRnD, r.Department)
		count++
	})
	assert.Equal(t, 2, count)
}
