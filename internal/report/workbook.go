package report

import (
	"fmt"
	"io"

	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Sheet names in workbook order.
const (
	SheetKPIs         = "KPIs"
	SheetByRegion     = "By Region"
	SheetByDepartment = "By Department"
	SheetData         = "Data"
)

var statsHeaders = []string{"Group", "Field", "Count", "Sum", "Mean", "Std", "Min", "Median", "Max"}

// WriteWorkbook writes an xlsx export of ds: headline KPIs, the grouped statistics
// and the raw records. summary may be None, in which case the statistics sheets only
// carry their headers.
func WriteWorkbook(w io.Writer, ds *domain.Dataset, kpis analyser.KPIs, summary analyser.Option[analyser.SummaryStats]) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetKPIs); err != nil {
		return fmt.Errorf("WriteWorkbook: %w", err)
	}
	if err := writeKPIs(f, kpis); err != nil {
		return fmt.Errorf("WriteWorkbook: %w", err)
	}

	stats, _ := summary.Get()
	if err := writeStats(f, SheetByRegion, stats.ByRegion); err != nil {
		return fmt.Errorf("WriteWorkbook: %w", err)
	}
	if err := writeStats(f, SheetByDepartment, stats.ByDepartment); err != nil {
		return fmt.Errorf("WriteWorkbook: %w", err)
	}
	if err := writeData(f, ds); err != nil {
		return fmt.Errorf("WriteWorkbook: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("WriteWorkbook: write: %w", err)
	}
	return nil
}

func writeKPIs(f *excelize.File, k analyser.KPIs) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Revenue", k.TotalRevenue.InexactFloat64()},
		{"Total Expenses", k.TotalExpenses.InexactFloat64()},
		{"Net Profit", k.NetProfit.InexactFloat64()},
		{"Profit Margin (%)", k.ProfitMargin},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SheetKPIs, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", SheetKPIs, i+1, err)
		}
	}
	return f.SetColWidth(SheetKPIs, "A", "B", 20)
}

func writeStats(f *excelize.File, sheet string, groups []analyser.GroupStats) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheet, err)
	}
	if err := f.SetSheetRow(sheet, "A1", &statsHeaders); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}

	row := 2
	for _, g := range groups {
		for _, field := range domain.MonetaryFields {
			s := g.Fields[field]
			values := []interface{}{
				g.Key, string(field), g.Count,
				s.Sum.InexactFloat64(), s.Mean, s.Std, s.Min, s.Median, s.Max,
			}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return fmt.Errorf("%s row %d: %w", sheet, row, err)
			}
			row++
		}
	}
	return f.SetColWidth(sheet, "A", "B", 22)
}

func writeData(f *excelize.File, ds *domain.Dataset) error {
	if _, err := f.NewSheet(SheetData); err != nil {
		return fmt.Errorf("new sheet %s: %w", SheetData, err)
	}
	sw, err := f.NewStreamWriter(SheetData)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	header := make([]interface{}, len(domain.Columns))
	for i, c := range domain.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("%s header: %w", SheetData, err)
	}

	row := 2
	var werr error
	ds.Each(func(r domain.Record) {
		if werr != nil {
			return
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		werr = sw.SetRow(cell, []interface{}{
			r.Date.String(),
			r.Year,
			r.Month,
			r.Region,
			r.Department,
			r.Revenue.InexactFloat64(),
			r.CostOfGoodsSold.InexactFloat64(),
			r.OperatingExpenses.InexactFloat64(),
			r.MarketingExpenses.InexactFloat64(),
			r.OtherExpenses.InexactFloat64(),
		})
		row++
	})
	if werr != nil {
		return fmt.Errorf("%s row %d: %w", SheetData, row-1, werr)
	}
	return sw.Flush()
}
