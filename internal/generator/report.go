package generator

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dustin/go-humanize"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Report summarizes a generated dataset.
type Report struct {
	RunID         uuid.UUID       `json:"run_id"`
	Location      string          `json:"location,omitempty"`
	Rows          int             `json:"rows"`
	Start         civil.Date      `json:"start"`
	End           civil.Date      `json:"end"`
	Regions       []string        `json:"regions"`
	Departments   []string        `json:"departments"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
}

// Summarize computes the report for ds. The date span is zero for an empty dataset.
func Summarize(ds *domain.Dataset) Report {
	rep := Report{
		RunID:       uuid.New(),
		Rows:        ds.Len(),
		Regions:     ds.Regions(),
		Departments: ds.Departments(),
	}
	rep.Start, rep.End, _ = ds.DateSpan()

	ds.Each(func(r domain.Record) {
		rep.TotalRevenue = rep.TotalRevenue.Add(r.Revenue)
		rep.TotalExpenses = rep.TotalExpenses.Add(r.TotalExpenses())
	})
	return rep
}

// String renders the textual summary printed after generation.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generated %s records of financial data\n", humanize.Comma(int64(r.Rows)))
	if r.Location != "" {
		fmt.Fprintf(&b, "Data saved to: %s\n", r.Location)
	}
	if r.Rows > 0 {
		fmt.Fprintf(&b, "Date range: %s to %s\n", r.Start, r.End)
	}
	fmt.Fprintf(&b, "Regions: %s\n", strings.Join(r.Regions, ", "))
	fmt.Fprintf(&b, "Departments: %s\n", strings.Join(r.Departments, ", "))
	fmt.Fprintf(&b, "Total Revenue: %s\n", Currency(r.TotalRevenue))
	fmt.Fprintf(&b, "Total Expenses: %s\n", Currency(r.TotalExpenses))
	return b.String()
}

// Currency formats an amount as "$1,234.56".
func Currency(d decimal.Decimal) string {
	f := d.Round(2).InexactFloat64()
	if f < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -f)
	}
	return "$" + humanize.FormatFloat("#,###.##", f)
}

// Run generates a dataset from cfg, saves it to st (overwriting) and returns its report.
func Run(ctx context.Context, cfg Config, st store.Store) (*domain.Dataset, Report, error) {
	log := logger.FromContext(ctx)

	gen, err := NewSeeded(cfg)
	if err != nil {
		return nil, Report{}, fmt.Errorf("Run: %w", err)
	}

	log.Info().
		Str("start", cfg.Start.String()).
		Str("end", cfg.End.String()).
		Uint64("seed", cfg.Seed).
		Int("expected_rows", cfg.ExpectedRows()).
		Msg("Generating financial dataset")

	ds, err := gen.Generate(ctx)
	if err != nil {
		return nil, Report{}, fmt.Errorf("Run: %w", err)
	}

	if err := st.Save(ctx, ds); err != nil {
		return nil, Report{}, fmt.Errorf("Run: save to %s: %w", st.Location(), err)
	}

	rep := Summarize(ds)
	rep.Location = st.Location()

	log.Info().
		Str("run_id", rep.RunID.String()).
		Int("row_count", rep.Rows).
		Str("location", rep.Location).
		Msg("Dataset saved")

	return ds, rep, nil
}
