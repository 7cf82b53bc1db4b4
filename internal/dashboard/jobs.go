package dashboard

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/generator"
	"github.com/dvloznov/finance-dashboard/internal/jobs"
)

// GenerationConfig applies the job's seed and date range to base and validates the result.
// Empty dates keep base's range.
func GenerationConfig(base generator.Config, job *jobs.GenerateDatasetJob) (generator.Config, error) {
	start, end := base.Start, base.End
	if job.StartDate != "" {
		d, err := civil.ParseDate(job.StartDate)
		if err != nil {
			return generator.Config{}, fmt.Errorf("GenerationConfig: start_date: %w", err)
		}
		start = d
	}
	if job.EndDate != "" {
		d, err := civil.ParseDate(job.EndDate)
		if err != nil {
			return generator.Config{}, fmt.Errorf("GenerationConfig: end_date: %w", err)
		}
		end = d
	}

	cfg := base.WithRange(start, end).WithSeed(job.Seed)
	if err := cfg.Validate(); err != nil {
		return generator.Config{}, fmt.Errorf("GenerationConfig: %w", err)
	}
	return cfg, nil
}

// JobHandler regenerates the dataset for each GenerateDatasetJob and records the
// row count and run ID on the job.
func (s *Service) JobHandler(base generator.Config) jobs.JobHandler {
	return func(ctx context.Context, job jobs.Job) error {
		gen, ok := job.(*jobs.GenerateDatasetJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		cfg, err := GenerationConfig(base, gen)
		if err != nil {
			return err
		}

		s.log.Info().
			Str("job_id", gen.JobID).
			Uint64("seed", cfg.Seed).
			Stringer("start", cfg.Start).
			Stringer("end", cfg.End).
			Msg("Processing generate job")

		rep, err := s.Regenerate(ctx, cfg)
		if err != nil {
			s.log.Error().Err(err).Str("job_id", gen.JobID).Msg("Dataset generation failed")
			return err
		}

		gen.RowCount = rep.Rows
		gen.RunID = rep.RunID.String()

		s.log.Info().
			Str("job_id", gen.JobID).
			Int("row_count", rep.Rows).
			Msg("Dataset generation completed")
		return nil
	}
}
