package handlers

import (
	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/dvloznov/finance-dashboard/internal/dashboard"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Response payloads carry money as JSON numbers rounded to cents.

// FilterResponse echoes the applied filter.
type FilterResponse struct {
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Regions     []string `json:"regions"`
	Departments []string `json:"departments"`
}

// KPIsResponse is the headline figures.
type KPIsResponse struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalExpenses float64 `json:"total_expenses"`
	NetProfit     float64 `json:"net_profit"`
	ProfitMargin  float64 `json:"profit_margin"`
}

// RevenuePointResponse is one point of the revenue series.
type RevenuePointResponse struct {
	Period  string  `json:"period"`
	Revenue float64 `json:"revenue"`
}

// RevenueSeriesResponse is revenue over time.
type RevenueSeriesResponse struct {
	Granularity string                 `json:"granularity"`
	Points      []RevenuePointResponse `json:"points"`
}

// CategoryTotalResponse is one bar of the expense breakdown.
type CategoryTotalResponse struct {
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Total    float64 `json:"total"`
	Share    float64 `json:"share"`
}

// CostDriversResponse is the department by category matrix.
type CostDriversResponse struct {
	Departments []string    `json:"departments"`
	Categories  []string    `json:"categories"`
	Values      [][]float64 `json:"values"`
	Totals      []float64   `json:"totals"`
}

// StatsResponse describes one monetary field.
type StatsResponse struct {
	Sum    float64 `json:"sum"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// GroupStatsResponse holds the stats of one region or department.
type GroupStatsResponse struct {
	Key    string                   `json:"key"`
	Count  int                      `json:"count"`
	Fields map[string]StatsResponse `json:"fields"`
}

// SummaryResponse groups statistics by region and department.
type SummaryResponse struct {
	ByRegion     []GroupStatsResponse `json:"by_region"`
	ByDepartment []GroupStatsResponse `json:"by_department"`
}

// DashboardResponse is the full dashboard for one filter. Series and summary are
// null when the filter matched nothing.
type DashboardResponse struct {
	Filter      FilterResponse          `json:"filter"`
	Rows        int                     `json:"rows"`
	KPIs        KPIsResponse            `json:"kpis"`
	Revenue     *RevenueSeriesResponse  `json:"revenue"`
	Expenses    []CategoryTotalResponse `json:"expenses"`
	CostDrivers *CostDriversResponse    `json:"cost_drivers"`
	Summary     *SummaryResponse        `json:"summary"`
}

// DatasetResponse describes the loaded dataset.
type DatasetResponse struct {
	Location    string   `json:"location"`
	Rows        int      `json:"rows"`
	StartDate   string   `json:"start_date,omitempty"`
	EndDate     string   `json:"end_date,omitempty"`
	Regions     []string `json:"regions"`
	Departments []string `json:"departments"`
	Columns     []string `json:"columns"`
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func toFilter(f analyser.Filter) FilterResponse {
	out := FilterResponse{
		Regions:     lo.Ternary(f.Regions == nil, []string{}, f.Regions),
		Departments: lo.Ternary(f.Departments == nil, []string{}, f.Departments),
	}
	if f.Start != nil {
		out.StartDate = f.Start.String()
	}
	if f.End != nil {
		out.EndDate = f.End.String()
	}
	return out
}

func toKPIs(k analyser.KPIs) KPIsResponse {
	return KPIsResponse{
		TotalRevenue:  money(k.TotalRevenue),
		TotalExpenses: money(k.TotalExpenses),
		NetProfit:     money(k.NetProfit),
		ProfitMargin:  k.ProfitMargin,
	}
}

func toRevenue(o analyser.Option[analyser.RevenueSeries]) *RevenueSeriesResponse {
	s, ok := o.Get()
	if !ok {
		return nil
	}
	return &RevenueSeriesResponse{
		Granularity: string(s.Granularity),
		Points: lo.Map(s.Points, func(p analyser.RevenuePoint, _ int) RevenuePointResponse {
			return RevenuePointResponse{Period: p.Period.String(), Revenue: money(p.Revenue)}
		}),
	}
}

func toExpenses(o analyser.Option[[]analyser.CategoryTotal]) []CategoryTotalResponse {
	return lo.Map(o.OrZero(), func(t analyser.CategoryTotal, _ int) CategoryTotalResponse {
		return CategoryTotalResponse{
			Category: string(t.Category),
			Label:    t.Category.Label(),
			Total:    money(t.Total),
			Share:    t.Share,
		}
	})
}

func toCostDrivers(o analyser.Option[analyser.CostDriverMatrix]) *CostDriversResponse {
	m, ok := o.Get()
	if !ok {
		return nil
	}
	out := &CostDriversResponse{
		Departments: m.Departments,
		Categories:  lo.Map(m.Categories, func(c domain.ExpenseCategory, _ int) string { return string(c) }),
		Values:      make([][]float64, len(m.Values)),
		Totals:      make([]float64, len(m.Values)),
	}
	for i, row := range m.Values {
		out.Values[i] = lo.Map(row, func(v decimal.Decimal, _ int) float64 { return money(v) })
		out.Totals[i] = money(m.Total(i))
	}
	return out
}

func toSummary(o analyser.Option[analyser.SummaryStats]) *SummaryResponse {
	s, ok := o.Get()
	if !ok {
		return nil
	}
	return &SummaryResponse{
		ByRegion:     lo.Map(s.ByRegion, toGroupStats),
		ByDepartment: lo.Map(s.ByDepartment, toGroupStats),
	}
}

func toGroupStats(g analyser.GroupStats, _ int) GroupStatsResponse {
	fields := make(map[string]StatsResponse, len(g.Fields))
	for f, s := range g.Fields {
		fields[string(f)] = StatsResponse{
			Sum:    money(s.Sum),
			Mean:   s.Mean,
			Std:    s.Std,
			Min:    s.Min,
			Median: s.Median,
			Max:    s.Max,
		}
	}
	return GroupStatsResponse{Key: g.Key, Count: g.Count, Fields: fields}
}

func toDashboard(v *dashboard.View) DashboardResponse {
	return DashboardResponse{
		Filter:      toFilter(v.Filter),
		Rows:        v.Rows,
		KPIs:        toKPIs(v.KPIs),
		Revenue:     toRevenue(v.Revenue),
		Expenses:    toExpenses(v.Expenses),
		CostDrivers: toCostDrivers(v.CostDrivers),
		Summary:     toSummary(v.SummaryStats),
	}
}

func toDataset(location string, ds *domain.Dataset) DatasetResponse {
	out := DatasetResponse{
		Location:    location,
		Rows:        ds.Len(),
		Regions:     ds.Regions(),
		Departments: ds.Departments(),
		Columns:     domain.Columns,
	}
	if start, end, ok := ds.DateSpan(); ok {
		out.StartDate = start.String()
		out.EndDate = end.String()
	}
	return out
}
