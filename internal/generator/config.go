package generator

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/go-playground/validator/v10"
)

// RegionSpec names a region and its revenue multiplier.
type RegionSpec struct {
	Name       string  `yaml:"name" validate:"required"`
	Multiplier float64 `yaml:"multiplier" validate:"gt=0"`
}

// DepartmentSpec names a department and its daily base revenue.
type DepartmentSpec struct {
	Name        string  `yaml:"name" validate:"required"`
	BaseRevenue float64 `yaml:"base_revenue" validate:"gt=0"`
}

// Range is a closed interval [Min, Max] for a uniform draw.
type Range struct {
	Min float64 `validate:"gte=0"`
	Max float64 `validate:"gtefield=Min"`
}

// Floors are the minimum values of the five monetary fields after all adjustments.
type Floors struct {
	Revenue           float64 `validate:"gte=0"`
	CostOfGoodsSold   float64 `validate:"gte=0"`
	OperatingExpenses float64 `validate:"gte=0"`
	MarketingExpenses float64 `validate:"gte=0"`
	OtherExpenses     float64 `validate:"gte=0"`
}

// Config holds every table and constant the generator reads.
type Config struct {
	Start civil.Date
	End   civil.Date
	Seed  uint64

	Regions     []RegionSpec     `validate:"required,min=1,unique=Name,dive"`
	Departments []DepartmentSpec `validate:"required,min=1,unique=Name,dive"`

	// Seasonality is indexed by quarter: [0] is Jan-Mar, [3] is Oct-Dec.
	Seasonality   [4]float64 `validate:"dive,gt=0"`
	AnnualGrowth  float64    `validate:"gte=0"`
	WeekendFactor float64    `validate:"gt=0"`

	RevenueNoiseSD float64 `validate:"gte=0"`
	FluctuationSD  float64 `validate:"gte=0"`

	CostOfGoodsSoldRatio   Range
	OperatingExpensesRatio Range
	MarketingExpensesRatio Range
	OtherExpensesRatio     Range

	Floors Floors
}

// DefaultConfig returns the fixed 2021-2023 configuration with seed 42.
func DefaultConfig() Config {
	return Config{
		Start: civil.Date{Year: 2021, Month: 1, Day: 1},
		End:   civil.Date{Year: 2023, Month: 12, Day: 31},
		Seed:  42,
		Regions: []RegionSpec{
			{Name: domain.RegionNorthAmerica, Multiplier: 1.2},
			{Name: domain.RegionEurope, Multiplier: 1.0},
			{Name: domain.RegionAsiaPacific, Multiplier: 0.9},
		},
		Departments: []DepartmentSpec{
			{Name: domain.DepartmentSales, BaseRevenue: 50000},
			{Name: domain.DepartmentOperations, BaseRevenue: 30000},
			{Name: domain.DepartmentMarketing, BaseRevenue: 40000},
			{Name: domain.DepartmentRnD, BaseRevenue: 35000},
		},
		Seasonality:            [4]float64{0.8, 1.1, 1.0, 1.3},
		AnnualGrowth:           0.15,
		WeekendFactor:          0.7,
		RevenueNoiseSD:         0.1,
		FluctuationSD:          0.05,
		CostOfGoodsSoldRatio:   Range{Min: 0.4, Max: 0.6},
		OperatingExpensesRatio: Range{Min: 0.2, Max: 0.3},
		MarketingExpensesRatio: Range{Min: 0.1, Max: 0.2},
		OtherExpensesRatio:     Range{Min: 0.05, Max: 0.15},
		Floors: Floors{
			Revenue:           1000,
			CostOfGoodsSold:   100,
			OperatingExpenses: 100,
			MarketingExpenses: 50,
			OtherExpenses:     25,
		},
	}
}

// WithRange returns a copy of c covering [start, end].
func (c Config) WithRange(start, end civil.Date) Config {
	c.Start, c.End = start, end
	return c
}

// WithSeed returns a copy of c using seed.
func (c Config) WithSeed(seed uint64) Config {
	c.Seed = seed
	return c
}

var validate = validator.New()

// Validate checks the tables and the date range.
func (c Config) Validate() error {
	if !c.Start.IsValid() || !c.End.IsValid() {
		return fmt.Errorf("Config.Validate: invalid date range %s..%s", c.Start, c.End)
	}
	if c.End.Before(c.Start) {
		return fmt.Errorf("Config.Validate: end %s is before start %s", c.End, c.Start)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("Config.Validate: %w", err)
	}
	return nil
}

// Days returns the number of calendar days in [Start, End].
func (c Config) Days() int {
	return c.End.DaysSince(c.Start) + 1
}

// ExpectedRows returns days × regions × departments.
func (c Config) ExpectedRows() int {
	return c.Days() * len(c.Regions) * len(c.Departments)
}
