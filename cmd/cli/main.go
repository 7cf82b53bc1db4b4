package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/dvloznov/finance-dashboard/internal/config"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/store"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	commands := map[string]func(*config.Config, zerolog.Logger, []string){
		"generate":    runGenerate,
		"kpis":        runKPIs,
		"summary":     runSummary,
		"export-csv":  runExportCSV,
		"export-xlsx": runExportXLSX,
		"charts":      runCharts,
		"upload":      runUpload,
		"export-bq":   runExportBQ,
		"import-bq":   runImportBQ,
		"sync-notion": runSyncNotion,
		"narrate":     runNarrate,
	}

	switch name := os.Args[1]; name {
	case "help", "-h", "--help":
		printUsage()
	default:
		run, ok := commands[name]
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
			printUsage()
			os.Exit(1)
		}
		run(cfg, log, os.Args[2:])
	}
}

func printUsage() {
	fmt.Println("Finance Dashboard CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  generate     Generate the synthetic dataset and save it to the store")
	fmt.Println("  kpis         Print revenue, expenses, net profit and margin")
	fmt.Println("  summary      Print descriptive statistics per region and department")
	fmt.Println("  export-csv   Write the filtered dataset as CSV")
	fmt.Println("  export-xlsx  Write KPIs, summary and data as an Excel workbook")
	fmt.Println("  charts       Render the dashboard charts as PNG files")
	fmt.Println("  upload       Copy a local dataset file to Cloud Storage")
	fmt.Println("  export-bq    Load the filtered dataset into BigQuery")
	fmt.Println("  import-bq    Read a date range back from BigQuery into the store")
	fmt.Println("  sync-notion  Mirror the summary statistics into a Notion database")
	fmt.Println("  narrate      Ask Gemini for a written commentary on the figures")
	fmt.Println("  help         Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// filterFlags are shared by every command that reads the dataset.
type filterFlags struct {
	start       *string
	end         *string
	regions     *string
	departments *string
}

func addFilterFlags(fs *flag.FlagSet) *filterFlags {
	return &filterFlags{
		start:       fs.String("start-date", "", "First date to include, YYYY-MM-DD"),
		end:         fs.String("end-date", "", "Last date to include, YYYY-MM-DD"),
		regions:     fs.String("region", "", "Comma-separated regions to include"),
		departments: fs.String("department", "", "Comma-separated departments to include"),
	}
}

func (f *filterFlags) filter() (analyser.Filter, error) {
	var out analyser.Filter

	if *f.start != "" {
		d, err := civil.ParseDate(*f.start)
		if err != nil {
			return analyser.Filter{}, fmt.Errorf("invalid start-date format, expected YYYY-MM-DD: %w", err)
		}
		out.Start = &d
	}
	if *f.end != "" {
		d, err := civil.ParseDate(*f.end)
		if err != nil {
			return analyser.Filter{}, fmt.Errorf("invalid end-date format, expected YYYY-MM-DD: %w", err)
		}
		out.End = &d
	}
	out.Regions = splitList(*f.regions)
	out.Departments = splitList(*f.departments)
	return out, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := lo.Map(strings.Split(s, ","), func(p string, _ int) string { return strings.TrimSpace(p) })
	return lo.Uniq(lo.Compact(parts))
}

// commandContext bounds a command so the CLI never hangs on a remote call.
func commandContext(log zerolog.Logger, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	return logger.WithContext(ctx, log), cancel
}

// openStore opens the configured store, or location when it is not empty.
func openStore(ctx context.Context, cfg *config.Config, location string) store.Store {
	log := logger.FromContext(ctx)
	if location == "" {
		location = cfg.Data.Location
	}
	st, err := store.Open(ctx, location, cfg.ClientOptions()...)
	if err != nil {
		log.Fatal().Err(err).Str("location", location).Msg("Failed to open data store")
	}
	return st
}

// loadFiltered loads the dataset and applies the filter flags. Loading errors end
// the process with the user-facing hint.
func loadFiltered(ctx context.Context, cfg *config.Config, ff *filterFlags) (*domain.Dataset, analyser.Filter) {
	log := logger.FromContext(ctx)

	f, err := ff.filter()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid filter")
	}

	st := openStore(ctx, cfg, "")
	ds, err := st.Load(ctx)
	if cerr := st.Close(); cerr != nil {
		log.Warn().Err(cerr).Str("location", st.Location()).Msg("Failed to close data store")
	}
	if err != nil {
		log.Error().Err(err).Str("location", st.Location()).Msg(store.UserMessage(err))
		os.Exit(1)
	}

	filtered := analyser.Apply(ds, f)
	log.Debug().Int("rows", ds.Len()).Int("filtered_rows", filtered.Len()).Msg("Dataset loaded")
	return filtered, f
}

// createOutput opens path for writing, "-" meaning stdout.
func createOutput(log zerolog.Logger, path string) (*os.File, func()) {
	if path == "-" {
		return os.Stdout, func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to create output file")
	}
	return f, func() {
		if err := f.Close(); err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to close output file")
		}
	}
}
