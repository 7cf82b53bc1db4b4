package generator

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// Generator produces a synthetic Dataset from a Config and an explicit random source.
//
// Random draws are consumed in a fixed order per row: one revenue noise sample,
// four expense ratio samples (COGS, operating, marketing, other), then one shared
// fluctuation sample. Rows are produced date by date, then region, then department.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

// New creates a Generator drawing from src.
func New(cfg Config, src rand.Source) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("generator.New: nil random source")
	}
	return &Generator{cfg: cfg, rng: rand.New(src)}, nil
}

// NewSeeded creates a Generator with a PCG source seeded from cfg.Seed.
func NewSeeded(cfg Config) (*Generator, error) {
	return New(cfg, rand.NewPCG(cfg.Seed, cfg.Seed))
}

// Config returns the configuration the generator was built with.
func (g *Generator) Config() Config {
	return g.cfg
}

// Generate builds one record per (date, region, department) in the configured range.
func (g *Generator) Generate(ctx context.Context) (*domain.Dataset, error) {
	records := make([]domain.Record, 0, g.cfg.ExpectedRows())

	for d := g.cfg.Start; !d.After(g.cfg.End); d = d.AddDays(1) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("Generate: %s: %w", d, err)
		}

		seasonal := g.seasonalMultiplier(d)
		growth := 1 + g.cfg.AnnualGrowth*float64(d.Year-g.cfg.Start.Year)
		weekend := isWeekend(d)

		for _, region := range g.cfg.Regions {
			for _, dept := range g.cfg.Departments {
				records = append(records, g.row(d, region, dept, seasonal*growth, weekend))
			}
		}
	}

	return domain.NewDataset(records), nil
}

func (g *Generator) row(d civil.Date, region RegionSpec, dept DepartmentSpec, scale float64, weekend bool) domain.Record {
	f := g.cfg.Floors

	noise := g.normal(1, g.cfg.RevenueNoiseSD)
	revenue := max(dept.BaseRevenue*scale*region.Multiplier*noise, f.Revenue)

	cogs := revenue * g.uniform(g.cfg.CostOfGoodsSoldRatio)
	opex := revenue * g.uniform(g.cfg.OperatingExpensesRatio)
	mkt := revenue * g.uniform(g.cfg.MarketingExpensesRatio)
	other := revenue * g.uniform(g.cfg.OtherExpensesRatio)

	adjust := 1.0
	if weekend {
		adjust = g.cfg.WeekendFactor
	}
	adjust *= g.normal(1, g.cfg.FluctuationSD)

	rec := domain.NewRecord(d, region.Name, dept.Name)
	rec.Revenue = money(max(revenue*adjust, f.Revenue))
	rec.CostOfGoodsSold = money(max(cogs*adjust, f.CostOfGoodsSold))
	rec.OperatingExpenses = money(max(opex*adjust, f.OperatingExpenses))
	rec.MarketingExpenses = money(max(mkt*adjust, f.MarketingExpenses))
	rec.OtherExpenses = money(max(other*adjust, f.OtherExpenses))
	return rec
}

func (g *Generator) seasonalMultiplier(d civil.Date) float64 {
	return g.cfg.Seasonality[(int(d.Month)-1)/3]
}

func (g *Generator) normal(mean, sd float64) float64 {
	return mean + sd*g.rng.NormFloat64()
}

func (g *Generator) uniform(r Range) float64 {
	return r.Min + (r.Max-r.Min)*g.rng.Float64()
}

func isWeekend(d civil.Date) bool {
	wd := d.In(time.UTC).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
