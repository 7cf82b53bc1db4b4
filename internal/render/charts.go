package render

import (
	"fmt"
	"image/color"
	"io"
	"time"

	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Default PNG size.
const (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 6 * vg.Inch
)

// ChartName identifies one of the dashboard charts.
type ChartName string

const (
	ChartRevenue     ChartName = "revenue"
	ChartExpenses    ChartName = "expenses"
	ChartCostDrivers ChartName = "cost-drivers"
)

// Charts lists every chart in dashboard order.
var Charts = []ChartName{ChartRevenue, ChartExpenses, ChartCostDrivers}

// RevenueChart plots revenue over time as a line.
func RevenueChart(s analyser.RevenueSeries) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Revenue Over Time"
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Revenue ($)"

	format := "2006-01-02"
	if s.Granularity == analyser.Monthly {
		format = "2006-01"
	}
	p.X.Tick.Marker = plot.TimeTicks{Format: format}

	points := make(plotter.XYs, len(s.Points))
	for i, pt := range s.Points {
		points[i].X = float64(pt.Period.In(time.UTC).Unix())
		points[i].Y = pt.Revenue.InexactFloat64()
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, fmt.Errorf("RevenueChart: %w", err)
	}
	line.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	line.Width = vg.Points(1.5)

	p.Add(line)
	p.Add(plotter.NewGrid())
	return p, nil
}

// ExpenseChart plots one bar per expense category.
func ExpenseChart(totals []analyser.CategoryTotal) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Expense Breakdown"
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Y.Label.Text = "Total ($)"

	values := make(plotter.Values, len(totals))
	labels := make([]string, len(totals))
	for i, t := range totals {
		values[i] = t.Total.InexactFloat64()
		labels[i] = fmt.Sprintf("%s (%.1f%%)", t.Category.Label(), t.Share)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return nil, fmt.Errorf("ExpenseChart: %w", err)
	}
	bars.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	bars.LineStyle.Width = vg.Length(0)

	p.Add(bars)
	p.NominalX(labels...)
	return p, nil
}

// CostDriverChart plots stacked expense bars per department, one layer per category.
func CostDriverChart(m analyser.CostDriverMatrix) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Cost Drivers by Department"
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Y.Label.Text = "Expenses ($)"
	p.Legend.Top = true

	var below *plotter.BarChart
	for j, c := range m.Categories {
		values := make(plotter.Values, len(m.Departments))
		for i := range m.Departments {
			values[i] = m.Values[i][j].InexactFloat64()
		}

		bars, err := plotter.NewBarChart(values, vg.Points(40))
		if err != nil {
			return nil, fmt.Errorf("CostDriverChart: %s: %w", c, err)
		}
		bars.Color = plotutil.Color(j)
		bars.LineStyle.Width = vg.Length(0)
		if below != nil {
			bars.StackOn(below)
		}
		below = bars

		p.Add(bars)
		p.Legend.Add(c.Label(), bars)
	}

	p.NominalX(m.Departments...)
	return p, nil
}

// ForDataset builds the named chart from ds. ok is false when ds is empty and there is
// nothing to render.
func ForDataset(name ChartName, ds *domain.Dataset, g analyser.Granularity) (p *plot.Plot, ok bool, err error) {
	switch name {
	case ChartRevenue:
		s, found := analyser.RevenueTimeSeries(ds, g).Get()
		if !found {
			return nil, false, nil
		}
		p, err = RevenueChart(s)
	case ChartExpenses:
		t, found := analyser.ExpenseBreakdown(ds).Get()
		if !found {
			return nil, false, nil
		}
		p, err = ExpenseChart(t)
	case ChartCostDrivers:
		m, found := analyser.CostDriversByDepartment(ds).Get()
		if !found {
			return nil, false, nil
		}
		p, err = CostDriverChart(m)
	default:
		return nil, false, fmt.Errorf("ForDataset: unknown chart %q", name)
	}
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// WritePNG encodes p as a PNG image of the given size.
func WritePNG(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	c := vgimg.New(width, height)
	p.Draw(draw.New(c))

	png := vgimg.PngCanvas{Canvas: c}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("WritePNG: %w", err)
	}
	return nil
}
