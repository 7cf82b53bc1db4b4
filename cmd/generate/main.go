package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/config"
	"github.com/dvloznov/finance-dashboard/internal/generator"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/store"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := logger.WithContext(context.Background(), log)
	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		log.Error().Err(err).Msg("Generation failed")
		os.Exit(1)
	}
}

// run parses args, generates the dataset into the chosen store and prints the
// report to out. With no args it regenerates the configured range and seed.
func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	genCfg, err := cfg.Generation()
	if err != nil {
		return fmt.Errorf("invalid generator configuration: %w", err)
	}

	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	seed := fs.Uint64("seed", genCfg.Seed, "Random seed")
	start := fs.String("start", genCfg.Start.String(), "First date in YYYY-MM-DD format")
	end := fs.String("end", genCfg.End.String(), "Last date in YYYY-MM-DD format")
	location := fs.String("out", cfg.Data.Location, "Output location (local path or gs://bucket/object)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	startDate, err := civil.ParseDate(*start)
	if err != nil {
		return fmt.Errorf("invalid start format, expected YYYY-MM-DD: %w", err)
	}
	endDate, err := civil.ParseDate(*end)
	if err != nil {
		return fmt.Errorf("invalid end format, expected YYYY-MM-DD: %w", err)
	}
	genCfg = genCfg.WithRange(startDate, endDate).WithSeed(*seed)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	st, err := store.Open(ctx, *location, cfg.ClientOptions()...)
	if err != nil {
		return fmt.Errorf("open data store %s: %w", *location, err)
	}
	defer st.Close()

	_, rep, err := generator.Run(ctx, genCfg, st)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(out, rep.String())
	return err
}
