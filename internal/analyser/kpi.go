package analyser

import (
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// KPIs are the headline figures of a Dataset.
type KPIs struct {
	TotalRevenue  decimal.Decimal
	TotalExpenses decimal.Decimal
	NetProfit     decimal.Decimal
	// ProfitMargin is in percent, 0 when there is no revenue.
	ProfitMargin float64
}

// ComputeKPIs sums revenue and expenses over ds. An empty Dataset gives all zeros.
func ComputeKPIs(ds *domain.Dataset) KPIs {
	var k KPIs
	ds.Each(func(r domain.Record) {
		k.TotalRevenue = k.TotalRevenue.Add(r.Revenue)
		k.TotalExpenses = k.TotalExpenses.Add(r.TotalExpenses())
	})

	k.NetProfit = k.TotalRevenue.Sub(k.TotalExpenses)
	if k.TotalRevenue.IsPositive() {
		k.ProfitMargin = k.NetProfit.Mul(hundred).Div(k.TotalRevenue).InexactFloat64()
	}
	return k
}
