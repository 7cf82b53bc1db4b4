package report

import (
	"bytes"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testDataset() *domain.Dataset {
	d := civil.Date{Year: 2022, Month: time.March, Day: 1}
	a := domain.NewRecord(d, domain.RegionEurope, domain.DepartmentSales)
	a.Revenue = decimal.RequireFromString("1000")
	a.CostOfGoodsSold = decimal.RequireFromString("300")
	a.OperatingExpenses = decimal.RequireFromString("150")
	a.MarketingExpenses = decimal.RequireFromString("100")
	a.OtherExpenses = decimal.RequireFromString("50")
	b := domain.NewRecord(d, domain.RegionAsiaPacific, domain.DepartmentRnD)
	b.Revenue = decimal.RequireFromString("2000.25")
	b.CostOfGoodsSold = decimal.RequireFromString("900")
	b.OperatingExpenses = decimal.RequireFromString("500")
	b.MarketingExpenses = decimal.RequireFromString("200")
	b.OtherExpenses = decimal.RequireFromString("100")
	return domain.NewDataset([]domain.Record{a, b})
}

func TestWriteWorkbook(t *testing.T) {
	ds := testDataset()

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, ds, analyser.ComputeKPIs(ds), analyser.GetSummaryStats(ds)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetKPIs, SheetByRegion, SheetByDepartment, SheetData}, f.GetSheetList())

	kpis, err := f.GetRows(SheetKPIs)
	require.NoError(t, err)
	require.Len(t, kpis, 5)
	assert.Equal(t, []string{"Total Revenue", "3000.25"}, kpis[1])
	assert.Equal(t, []string{"Net Profit", "700.25"}, kpis[3])

	regions, err := f.GetRows(SheetByRegion)
	require.NoError(t, err)
	require.Len(t, regions, 1+2*len(domain.MonetaryFields))
	assert.Equal(t, statsHeaders, regions[0])
	assert.Equal(t, "Asia-Pacific", regions[1][0])
	assert.Equal(t, "Revenue", regions[1][1])
	assert.Equal(t, "1", regions[1][2])

	data, err := f.GetRows(SheetData)
	require.NoError(t, err)
	require.Len(t, data, 3)
	assert.Equal(t, domain.Columns, data[0])
	assert.Equal(t, "2022-03-01", data[1][0])
	assert.Equal(t, "Europe", data[1][3])
	assert.Equal(t, "2000.25", data[2][5])
}

func TestWriteWorkbook_Empty(t *testing.T) {
	ds := domain.NewDataset(nil)

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, ds, analyser.ComputeKPIs(ds), analyser.GetSummaryStats(ds)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetByDepartment)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	data, err := f.GetRows(SheetData)
	require.NoError(t, err)
	assert.Len(t, data, 1)
}
