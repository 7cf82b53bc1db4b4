package dashboard

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/generator"
	"github.com/dvloznov/finance-dashboard/internal/logger"
	"github.com/dvloznov/finance-dashboard/internal/metrics"
	"github.com/dvloznov/finance-dashboard/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// View is everything the dashboard shows for one filter selection.
type View struct {
	Filter       analyser.Filter
	Rows         int
	KPIs         analyser.KPIs
	Revenue      analyser.Option[analyser.RevenueSeries]
	Expenses     analyser.Option[[]analyser.CategoryTotal]
	CostDrivers  analyser.Option[analyser.CostDriverMatrix]
	SummaryStats analyser.Option[analyser.SummaryStats]
}

// Service holds the loaded dataset as an immutable snapshot and serves filtered views
// of it. Regeneration replaces the snapshot atomically.
type Service struct {
	store   store.Store
	log     zerolog.Logger
	metrics *metrics.Metrics

	snapshot atomic.Pointer[domain.Dataset]
	regenMu  sync.Mutex
}

// NewService creates a service backed by st. m may be nil.
func NewService(st store.Store, log zerolog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   st,
		log:     log,
		metrics: m,
	}
}

// Location describes the backing store.
func (s *Service) Location() string {
	return s.store.Location()
}

// Load reads the store into a new snapshot. On error the previous snapshot is kept.
func (s *Service) Load(ctx context.Context) (*domain.Dataset, error) {
	ds, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("Service.Load: %w", err)
	}
	s.swap(ds)

	s.log.Info().
		Int("row_count", ds.Len()).
		Str("location", s.store.Location()).
		Msg("Dataset loaded")
	return ds, nil
}

// Snapshot returns the current dataset, or store.ErrDataNotFound if none is loaded.
func (s *Service) Snapshot() (*domain.Dataset, error) {
	ds := s.snapshot.Load()
	if ds == nil {
		return nil, store.ErrDataNotFound
	}
	return ds, nil
}

// Filtered applies f to the current snapshot.
func (s *Service) Filtered(f analyser.Filter) (*domain.Dataset, error) {
	ds, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return analyser.Apply(ds, f), nil
}

// View filters the snapshot and computes KPIs, series and summary concurrently.
func (s *Service) View(ctx context.Context, f analyser.Filter, g analyser.Granularity) (*View, error) {
	ds, err := s.Filtered(f)
	if err != nil {
		return nil, err
	}
	return Compute(ctx, ds, f, g)
}

// Compute builds a View of ds. The builders only read ds, so they run in parallel.
func Compute(ctx context.Context, ds *domain.Dataset, f analyser.Filter, g analyser.Granularity) (*View, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("Compute: %w", err)
	}
	v := &View{Filter: f, Rows: ds.Len()}

	var eg errgroup.Group
	eg.Go(func() error {
		v.KPIs = analyser.ComputeKPIs(ds)
		return nil
	})
	eg.Go(func() error {
		v.Revenue = analyser.RevenueTimeSeries(ds, g)
		return nil
	})
	eg.Go(func() error {
		v.Expenses = analyser.ExpenseBreakdown(ds)
		return nil
	})
	eg.Go(func() error {
		v.CostDrivers = analyser.CostDriversByDepartment(ds)
		return nil
	})
	eg.Go(func() error {
		v.SummaryStats = analyser.GetSummaryStats(ds)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("Compute: %w", err)
	}
	return v, nil
}

// Regenerate generates a dataset from cfg, overwrites the store and swaps the
// snapshot. Concurrent calls are serialized.
func (s *Service) Regenerate(ctx context.Context, cfg generator.Config) (generator.Report, error) {
	s.regenMu.Lock()
	defer s.regenMu.Unlock()

	ds, rep, err := generator.Run(logger.WithContext(ctx, s.log), cfg, s.store)
	s.metrics.ObserveGeneration(err)
	if err != nil {
		return generator.Report{}, fmt.Errorf("Service.Regenerate: %w", err)
	}
	s.swap(ds)
	return rep, nil
}

func (s *Service) swap(ds *domain.Dataset) {
	s.snapshot.Store(ds)
	s.metrics.SetDatasetRows(ds.Len())
}
