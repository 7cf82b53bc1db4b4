package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dustin/go-humanize"
	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/dvloznov/finance-dashboard/internal/config"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/generator"
	infraBQ "github.com/dvloznov/finance-dashboard/internal/infra/bigquery"
	"github.com/dvloznov/finance-dashboard/internal/insights"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/notionsync"
	"github.com/dvloznov/finance-dashboard/internal/render"
	"github.com/dvloznov/finance-dashboard/internal/report"
	"github.com/dvloznov/finance-dashboard/internal/store"
	"github.com/rs/zerolog"
)

func runGenerate(cfg *config.Config, log zerolog.Logger, args []string) {
	genCfg, err := cfg.Generation()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid generator configuration")
	}

	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	seed := fs.Uint64("seed", genCfg.Seed, "Random seed")
	start := fs.String("start", genCfg.Start.String(), "First date, YYYY-MM-DD")
	end := fs.String("end", genCfg.End.String(), "Last date, YYYY-MM-DD")
	out := fs.String("out", cfg.Data.Location, "Output location (local path or gs://bucket/object)")
	fs.Parse(args)

	startDate, err := civil.ParseDate(*start)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: invalid start format, expected YYYY-MM-DD")
	}
	endDate, err := civil.ParseDate(*end)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: invalid end format, expected YYYY-MM-DD")
	}

	ctx, cancel := commandContext(log, 10*time.Minute)
	defer cancel()

	st := openStore(ctx, cfg, *out)
	defer st.Close()

	_, rep, err := generator.Run(ctx, genCfg.WithRange(startDate, endDate).WithSeed(*seed), st)
	if err != nil {
		log.Fatal().Err(err).Msg("Generation failed")
	}
	fmt.Print(rep.String())
}

func runKPIs(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("kpis", flag.ExitOnError)
	ff := addFilterFlags(fs)
	fs.Parse(args)

	ctx, cancel := commandContext(log, 5*time.Minute)
	defer cancel()

	ds, _ := loadFiltered(ctx, cfg, ff)
	k := analyser.ComputeKPIs(ds)

	fmt.Printf("Rows:           %s\n", humanize.Comma(int64(ds.Len())))
	fmt.Printf("Total Revenue:  %s\n", generator.Currency(k.TotalRevenue))
	fmt.Printf("Total Expenses: %s\n", generator.Currency(k.TotalExpenses))
	fmt.Printf("Net Profit:     %s\n", generator.Currency(k.NetProfit))
	fmt.Printf("Profit Margin:  %.2f%%\n", k.ProfitMargin)
}

func runSummary(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	ff := addFilterFlags(fs)
	field := fs.String("field", string(domain.Revenue), "Monetary column to describe")
	fs.Parse(args)

	ctx, cancel := commandContext(log, 5*time.Minute)
	defer cancel()

	ds, _ := loadFiltered(ctx, cfg, ff)
	summary, ok := analyser.GetSummaryStats(ds).Get()
	if !ok {
		fmt.Println("No data for the selected filters.")
		return
	}

	f := domain.Field(*field)
	if !validField(f) {
		log.Fatal().Str("field", *field).Msg("Unknown field")
	}

	printGroups("Region", f, summary.ByRegion)
	fmt.Println()
	printGroups("Department", f, summary.ByDepartment)
}

func validField(f domain.Field) bool {
	for _, m := range domain.MonetaryFields {
		if m == f {
			return true
		}
	}
	return false
}

func printGroups(heading string, f domain.Field, groups []analyser.GroupStats) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\tRows\tSum\tMean\tStd\tMin\tMedian\tMax\t\n", heading)
	for _, g := range groups {
		s := g.Fields[f]
		fmt.Fprintf(w, "%s\t%d\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			g.Key, g.Count, s.Sum.StringFixed(2), s.Mean, s.Std, s.Min, s.Median, s.Max)
	}
	w.Flush()
}

func runExportCSV(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("export-csv", flag.ExitOnError)
	ff := addFilterFlags(fs)
	out := fs.String("out", "-", "Output file, - for stdout")
	fs.Parse(args)

	ctx, cancel := commandContext(log, 5*time.Minute)
	defer cancel()

	ds, _ := loadFiltered(ctx, cfg, ff)

	w, closeFn := createOutput(log, *out)
	defer closeFn()
	if err := store.WriteCSV(w, ds); err != nil {
		log.Fatal().Err(err).Msg("Failed to write CSV")
	}
	log.Info().Int("row_count", ds.Len()).Str("path", *out).Msg("CSV exported")
}

func runExportXLSX(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("export-xlsx", flag.ExitOnError)
	ff := addFilterFlags(fs)
	out := fs.String("out", "financial_data.xlsx", "Output file")
	fs.Parse(args)

	ctx, cancel := commandContext(log, 5*time.Minute)
	defer cancel()

	ds, _ := loadFiltered(ctx, cfg, ff)

	w, closeFn := createOutput(log, *out)
	defer closeFn()
	if err := report.WriteWorkbook(w, ds, analyser.ComputeKPIs(ds), analyser.GetSummaryStats(ds)); err != nil {
		log.Fatal().Err(err).Msg("Failed to write workbook")
	}
	log.Info().Int("row_count", ds.Len()).Str("path", *out).Msg("Workbook exported")
}

func runCharts(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("charts", flag.ExitOnError)
	ff := addFilterFlags(fs)
	dir := fs.String("dir", "charts", "Output directory")
	gran := fs.String("granularity", string(analyser.Monthly), "Revenue series granularity: daily or monthly")
	fs.Parse(args)

	g, err := analyser.ParseGranularity(*gran)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid granularity")
	}

	ctx, cancel := commandContext(log, 5*time.Minute)
	defer cancel()

	ds, _ := loadFiltered(ctx, cfg, ff)

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", *dir).Msg("Failed to create output directory")
	}

	for _, name := range render.Charts {
		p, ok, err := render.ForDataset(name, ds, g)
		if err != nil {
			log.Fatal().Err(err).Str("chart", string(name)).Msg("Failed to build chart")
		}
		if !ok {
			log.Warn().Str("chart", string(name)).Msg("No data for the selected filters, chart skipped")
			continue
		}

		path := filepath.Join(*dir, string(name)+".png")
		w, closeFn := createOutput(log, path)
		err = render.WritePNG(w, p, render.DefaultWidth, render.DefaultHeight)
		closeFn()
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Failed to write chart")
		}
		fmt.Printf("Wrote %s\n", path)
	}
}

func runUpload(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	src := fs.String("src", "", "Local dataset file (default: the object's file name under the data directory)")
	dest := fs.String("dest", "", "Destination gs://bucket/object URI (required)")
	fs.Parse(args)

	if *dest == "" {
		log.Fatal().Msg("Error: --dest is required")
	}
	*src = uploadSource(*src, *dest)

	ctx, cancel := commandContext(log, 10*time.Minute)
	defer cancel()

	gcs, err := store.NewGCSStore(ctx, *dest, cfg.ClientOptions()...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create GCS store")
	}
	defer gcs.Close()

	if err := gcs.UploadFile(ctx, *src); err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}
	fmt.Printf("Uploaded %s to %s\n", *src, gcs.Location())
}

// uploadSource returns src, or the local file named like the destination object.
func uploadSource(src, dest string) string {
	if src != "" {
		return src
	}
	return filepath.Join(filepath.Dir(store.DefaultPath), store.FilenameFromURI(dest))
}

func newBigQueryRepository(ctx context.Context, cfg *config.Config) *infraBQ.Repository {
	log := logger.FromContext(ctx)
	repo, err := infraBQ.NewRepository(ctx, cfg.BigQuery.ProjectID, cfg.BigQuery.DatasetID, cfg.BigQuery.TableID, cfg.ClientOptions()...)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
	}
	return repo
}

func runExportBQ(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("export-bq", flag.ExitOnError)
	ff := addFilterFlags(fs)
	appendRows := fs.Bool("append", false, "Append rows instead of replacing the table contents")
	fs.Parse(args)

	if err := cfg.RequireBigQuery(); err != nil {
		log.Fatal().Err(err).Msg("BigQuery export unavailable")
	}

	ctx, cancel := commandContext(log, 15*time.Minute)
	defer cancel()

	ds, _ := loadFiltered(ctx, cfg, ff)

	repo := newBigQueryRepository(ctx, cfg)
	defer repo.Close()

	if err := repo.EnsureTable(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure BigQuery table")
	}

	var err error
	if *appendRows {
		err = repo.InsertDataset(ctx, ds)
	} else {
		err = repo.ReplaceDataset(ctx, ds)
	}
	if err != nil {
		log.Fatal().Err(err).Str("table", repo.TableRef()).Msg("BigQuery export failed")
	}
	fmt.Printf("Exported %s rows to %s\n", humanize.Comma(int64(ds.Len())), repo.TableRef())
}

func runImportBQ(cfg *config.Config, log zerolog.Logger, args []string) {
	genCfg, err := cfg.Generation()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid generator configuration")
	}

	fs := flag.NewFlagSet("import-bq", flag.ExitOnError)
	start := fs.String("start-date", genCfg.Start.String(), "First date, YYYY-MM-DD")
	end := fs.String("end-date", genCfg.End.String(), "Last date, YYYY-MM-DD")
	out := fs.String("out", cfg.Data.Location, "Output location (local path or gs://bucket/object)")
	fs.Parse(args)

	startDate, err := civil.ParseDate(*start)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: invalid start-date format, expected YYYY-MM-DD")
	}
	endDate, err := civil.ParseDate(*end)
	if err != nil {
		log.Fatal().Err(err).Msg("Error: invalid end-date format, expected YYYY-MM-DD")
	}
	if endDate.Before(startDate) {
		log.Fatal().Str("start_date", *start).Str("end_date", *end).Msg("Error: end-date must not be before start-date")
	}
	if err := cfg.RequireBigQuery(); err != nil {
		log.Fatal().Err(err).Msg("BigQuery import unavailable")
	}

	ctx, cancel := commandContext(log, 15*time.Minute)
	defer cancel()

	repo := newBigQueryRepository(ctx, cfg)
	defer repo.Close()

	ds, err := repo.QueryByDateRange(ctx, startDate, endDate)
	if err != nil {
		log.Fatal().Err(err).Msg("BigQuery query failed")
	}

	st := openStore(ctx, cfg, *out)
	defer st.Close()
	if err := st.Save(ctx, ds); err != nil {
		log.Fatal().Err(err).Str("location", st.Location()).Msg("Failed to save dataset")
	}
	fmt.Printf("Imported %s rows from %s into %s\n", humanize.Comma(int64(ds.Len())), repo.TableRef(), st.Location())
}

func runSyncNotion(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("sync-notion", flag.ExitOnError)
	ff := addFilterFlags(fs)
	dryRun := fs.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	fs.Parse(args)

	if err := cfg.RequireNotion(); err != nil {
		log.Fatal().Err(err).Msg("Notion sync unavailable")
	}

	ctx, cancel := commandContext(log, 10*time.Minute)
	defer cancel()

	ds, _ := loadFiltered(ctx, cfg, ff)
	summary, ok := analyser.GetSummaryStats(ds).Get()
	if !ok {
		log.Fatal().Msg("No data for the selected filters, nothing to sync")
	}

	notionClient := notionsync.NewNotionClient(cfg.Notion.Token)
	res, err := notionsync.SyncSummary(ctx, notionClient, cfg.Notion.DatabaseID, summary, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Printf("Sync completed: %d created, %d updated, %d archived, %d failed.\n",
		res.Created, res.Updated, res.Archived, res.Failed)
	if res.Failed > 0 {
		os.Exit(1)
	}
}

func runNarrate(cfg *config.Config, log zerolog.Logger, args []string) {
	fs := flag.NewFlagSet("narrate", flag.ExitOnError)
	ff := addFilterFlags(fs)
	fs.Parse(args)

	if err := cfg.RequireGemini(); err != nil {
		log.Fatal().Err(err).Msg("Narration unavailable")
	}

	ctx, cancel := commandContext(log, 2*time.Minute)
	defer cancel()

	ds, f := loadFiltered(ctx, cfg, ff)

	narrator, err := insights.NewGeminiNarrator(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	text, err := narrator.Narrate(ctx, insights.Input{
		Scope:    insights.DescribeFilter(f),
		Rows:     ds.Len(),
		KPIs:     analyser.ComputeKPIs(ds),
		Expenses: analyser.ExpenseBreakdown(ds),
		Summary:  analyser.GetSummaryStats(ds),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Narration failed")
	}
	fmt.Println(text)
}
