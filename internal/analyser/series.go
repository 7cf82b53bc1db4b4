package analyser

import (
	"fmt"
	"slices"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// Granularity selects the period a revenue series is bucketed by.
type Granularity string

const (
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
)

// ParseGranularity accepts "daily" or "monthly" (case-insensitive). Empty means Daily.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return Daily, nil
	case Daily, Monthly:
		return g, nil
	default:
		return "", fmt.Errorf("ParseGranularity: unknown granularity %q", s)
	}
}

func (g Granularity) bucket(d civil.Date) civil.Date {
	if g == Monthly {
		return civil.Date{Year: d.Year, Month: d.Month, Day: 1}
	}
	return d
}

// RevenuePoint is the revenue of one period. Period is the first day of the bucket.
type RevenuePoint struct {
	Period  civil.Date
	Revenue decimal.Decimal
}

// RevenueSeries is revenue over time in ascending period order.
type RevenueSeries struct {
	Granularity Granularity
	Points      []RevenuePoint
}

// RevenueTimeSeries sums revenue per period.
func RevenueTimeSeries(ds *domain.Dataset, g Granularity) Option[RevenueSeries] {
	if ds.Empty() {
		return None[RevenueSeries]()
	}

	sums := make(map[civil.Date]decimal.Decimal)
	ds.Each(func(r domain.Record) {
		p := g.bucket(r.Date)
		sums[p] = sums[p].Add(r.Revenue)
	})

	points := make([]RevenuePoint, 0, len(sums))
	for p, v := range sums {
		points = append(points, RevenuePoint{Period: p, Revenue: v})
	}
	slices.SortFunc(points, func(a, b RevenuePoint) int { return a.Period.Compare(b.Period) })

	return Some(RevenueSeries{Granularity: g, Points: points})
}

// CategoryTotal is the amount spent in one expense category.
type CategoryTotal struct {
	Category domain.ExpenseCategory
	Total    decimal.Decimal
	// Share is the category's percentage of all expenses.
	Share float64
}

// ExpenseBreakdown totals each expense category, in column order.
func ExpenseBreakdown(ds *domain.Dataset) Option[[]CategoryTotal] {
	if ds.Empty() {
		return None[[]CategoryTotal]()
	}

	totals := make([]CategoryTotal, len(domain.ExpenseCategories))
	for i, c := range domain.ExpenseCategories {
		totals[i].Category = c
	}

	var all decimal.Decimal
	ds.Each(func(r domain.Record) {
		for i, c := range domain.ExpenseCategories {
			totals[i].Total = totals[i].Total.Add(r.Expense(c))
		}
	})
	for _, t := range totals {
		all = all.Add(t.Total)
	}

	if all.IsPositive() {
		for i := range totals {
			totals[i].Share = totals[i].Total.Mul(hundred).Div(all).InexactFloat64()
		}
	}
	return Some(totals)
}

// CostDriverMatrix holds expense totals per department and category.
// Values[i][j] is the total of Categories[j] in Departments[i].
type CostDriverMatrix struct {
	Departments []string
	Categories  []domain.ExpenseCategory
	Values      [][]decimal.Decimal
}

// Total returns the sum of all categories for department row i.
func (m CostDriverMatrix) Total(i int) decimal.Decimal {
	return decimal.Sum(decimal.Zero, m.Values[i]...)
}

// CostDriversByDepartment sums every expense category per department.
// Departments keep their order of first appearance.
func CostDriversByDepartment(ds *domain.Dataset) Option[CostDriverMatrix] {
	if ds.Empty() {
		return None[CostDriverMatrix]()
	}

	m := CostDriverMatrix{
		Departments: ds.Departments(),
		Categories:  slices.Clone(domain.ExpenseCategories),
	}
	row := make(map[string]int, len(m.Departments))
	m.Values = make([][]decimal.Decimal, len(m.Departments))
	for i, d := range m.Departments {
		row[d] = i
		m.Values[i] = make([]decimal.Decimal, len(m.Categories))
	}

	ds.Each(func(r domain.Record) {
		vals := m.Values[row[r.Department]]
		for j, c := range m.Categories {
			vals[j] = vals[j].Add(r.Expense(c))
		}
	})
	return Some(m)
}
