package analyser

import (
	"slices"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// Stats describes one monetary field within a group.
type Stats struct {
	Sum    decimal.Decimal
	Mean   float64
	Std    float64 // sample standard deviation, 0 for a single row
	Min    float64
	Median float64
	Max    float64
}

// GroupStats holds Stats for every monetary field of one region or department.
type GroupStats struct {
	Key    string
	Count  int
	Fields map[domain.Field]Stats
}

// SummaryStats groups descriptive statistics by region and by department.
type SummaryStats struct {
	ByRegion     []GroupStats
	ByDepartment []GroupStats
}

// GetSummaryStats computes per-region and per-department statistics of all monetary
// fields. Groups are sorted by key.
func GetSummaryStats(ds *domain.Dataset) Option[SummaryStats] {
	if ds.Empty() {
		return None[SummaryStats]()
	}
	return Some(SummaryStats{
		ByRegion:     groupStats(ds, func(r domain.Record) string { return r.Region }),
		ByDepartment: groupStats(ds, func(r domain.Record) string { return r.Department }),
	})
}

func groupStats(ds *domain.Dataset, key func(domain.Record) string) []GroupStats {
	groups := make(map[string][]domain.Record)
	ds.Each(func(r domain.Record) {
		k := key(r)
		groups[k] = append(groups[k], r)
	})

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]GroupStats, 0, len(keys))
	for _, k := range keys {
		rows := groups[k]
		gs := GroupStats{Key: k, Count: len(rows), Fields: make(map[domain.Field]Stats, len(domain.MonetaryFields))}
		for _, f := range domain.MonetaryFields {
			gs.Fields[f] = describe(rows, f)
		}
		out = append(out, gs)
	}
	return out
}

func describe(rows []domain.Record, f domain.Field) Stats {
	var s Stats
	xs := make([]float64, len(rows))
	for i, r := range rows {
		v := r.Value(f)
		s.Sum = s.Sum.Add(v)
		xs[i] = v.InexactFloat64()
	}

	s.Mean = stat.Mean(xs, nil)
	if len(rows) > 1 {
		s.Std = stat.StdDev(xs, nil)
	}

	slices.Sort(xs)
	s.Min = xs[0]
	s.Max = xs[len(xs)-1]
	s.Median = median(xs)
	return s
}

// median of sorted xs; even counts average the two middle values.
func median(xs []float64) float64 {
	n := len(xs)
	if n%2 == 1 {
		return xs[n/2]
	}
	return (xs[n/2-1] + xs[n/2]) / 2
}

// Group returns the stats for key, if present.
func Group(groups []GroupStats, key string) (GroupStats, bool) {
	for _, g := range groups {
		if g.Key == key {
			return g, true
		}
	}
	return GroupStats{}, false
}
