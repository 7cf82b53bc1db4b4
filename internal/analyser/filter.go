package analyser

import (
	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/samber/lo"
)

// Filter narrows a Dataset. Every field is optional: nil bounds are unbounded and
// empty sets do not restrict. Conditions combine with AND.
type Filter struct {
	Start       *civil.Date // inclusive
	End         *civil.Date // inclusive
	Regions     []string
	Departments []string
}

// IsZero reports whether f restricts nothing.
func (f Filter) IsZero() bool {
	return f.Start == nil && f.End == nil && len(f.Regions) == 0 && len(f.Departments) == 0
}

// Between returns a filter on the inclusive date range [start, end].
func Between(start, end civil.Date) Filter {
	return Filter{Start: &start, End: &end}
}

// Apply returns the records of ds that match f as a new Dataset. ds is never modified;
// no match yields an empty Dataset.
func Apply(ds *domain.Dataset, f Filter) *domain.Dataset {
	regions := lo.SliceToMap(f.Regions, func(r string) (string, struct{}) { return r, struct{}{} })
	departments := lo.SliceToMap(f.Departments, func(d string) (string, struct{}) { return d, struct{}{} })

	return ds.Where(func(r domain.Record) bool {
		if f.Start != nil && r.Date.Before(*f.Start) {
			return false
		}
		if f.End != nil && r.Date.After(*f.End) {
			return false
		}
		if len(regions) > 0 {
			if _, ok := regions[r.Region]; !ok {
				return false
			}
		}
		if len(departments) > 0 {
			if _, ok := departments[r.Department]; !ok {
				return false
			}
		}
		return true
	})
}
