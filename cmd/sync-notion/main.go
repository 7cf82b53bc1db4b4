package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/dvloznov/finance-dashboard/internal/config"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/notionsync"
	"github.com/dvloznov/finance-dashboard/internal/store"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Parse CLI flags; the Notion settings default to the configuration.
	startDateStr := flag.String("start-date", "", "Start date in YYYY-MM-DD format")
	endDateStr := flag.String("end-date", "", "End date in YYYY-MM-DD format")
	notionToken := flag.String("notion-token", cfg.Notion.Token, "Notion API token")
	notionDBID := flag.String("notion-db-id", cfg.Notion.DatabaseID, "Notion database ID")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	cfg.Notion.Token = *notionToken
	cfg.Notion.DatabaseID = *notionDBID
	if err := cfg.RequireNotion(); err != nil {
		log.Fatal().Err(err).Msg("Error: --notion-token and --notion-db-id are required")
	}

	var filter analyser.Filter
	if *startDateStr != "" {
		d, err := civil.ParseDate(*startDateStr)
		if err != nil {
			log.Fatal().Err(err).Str("start_date", *startDateStr).Msg("Error: invalid start-date format, expected YYYY-MM-DD")
		}
		filter.Start = &d
	}
	if *endDateStr != "" {
		d, err := civil.ParseDate(*endDateStr)
		if err != nil {
			log.Fatal().Err(err).Str("end_date", *endDateStr).Msg("Error: invalid end-date format, expected YYYY-MM-DD")
		}
		filter.End = &d
	}
	if filter.Start != nil && filter.End != nil && filter.End.Before(*filter.Start) {
		log.Fatal().
			Str("start_date", *startDateStr).
			Str("end_date", *endDateStr).
			Msg("Error: end-date must not be before start-date")
	}

	// Create context with timeout so the sync doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	st, err := store.Open(ctx, cfg.Data.Location, cfg.ClientOptions()...)
	if err != nil {
		log.Fatal().Err(err).Str("location", cfg.Data.Location).Msg("Failed to open data store")
	}
	ds, err := st.Load(ctx)
	if cerr := st.Close(); cerr != nil {
		log.Warn().Err(cerr).Str("location", st.Location()).Msg("Failed to close data store")
	}
	if err != nil {
		if errors.Is(err, store.ErrDataNotFound) || errors.Is(err, store.ErrMalformedData) {
			log.Error().Err(err).Msg(store.UserMessage(err))
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Failed to load dataset")
	}

	summary, ok := analyser.GetSummaryStats(analyser.Apply(ds, filter)).Get()
	if !ok {
		log.Fatal().Msg("No data in the selected date range, nothing to sync")
	}

	log.Info().
		Str("start_date", *startDateStr).
		Str("end_date", *endDateStr).
		Bool("dry_run", *dryRun).
		Msg("Starting Notion sync")

	notionClient := notionsync.NewNotionClient(cfg.Notion.Token)

	res, err := notionsync.SyncSummary(ctx, notionClient, cfg.Notion.DatabaseID, summary, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Printf("Sync completed successfully: %d created, %d updated, %d archived, %d failed.\n",
		res.Created, res.Updated, res.Archived, res.Failed)
}
