package domain

import (
	"slices"

	"cloud.google.com/go/civil"
	"github.com/samber/lo"
)

// Dataset is an ordered, immutable collection of Records.
// The zero value and a nil *Dataset are both valid empty datasets.
type Dataset struct {
	records []Record
}

// NewDataset copies records into a new Dataset.
func NewDataset(records []Record) *Dataset {
	return &Dataset{records: slices.Clone(records)}
}

// wrap adopts records without copying; callers must not retain the slice.
func wrap(records []Record) *Dataset {
	return &Dataset{records: records}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Empty reports whether the dataset has no records.
func (d *Dataset) Empty() bool {
	return d.Len() == 0
}

// At returns the i-th record.
func (d *Dataset) At(i int) Record {
	return d.records[i]
}

// Records returns a copy of the underlying records.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return slices.Clone(d.records)
}

// Each calls fn for every record in order.
func (d *Dataset) Each(fn func(Record)) {
	if d == nil {
		return
	}
	for _, r := range d.records {
		fn(r)
	}
}

// Where returns a new Dataset holding the records for which keep returns true.
func (d *Dataset) Where(keep func(Record) bool) *Dataset {
	if d == nil {
		return wrap(nil)
	}
	return wrap(lo.Filter(d.records, func(r Record, _ int) bool {
		return keep(r)
	}))
}

// DateSpan returns the earliest and latest dates. ok is false for an empty dataset.
func (d *Dataset) DateSpan() (first, last civil.Date, ok bool) {
	if d.Empty() {
		return civil.Date{}, civil.Date{}, false
	}
	first, last = d.records[0].Date, d.records[0].Date
	for _, r := range d.records[1:] {
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last, true
}

// Regions returns the distinct regions in order of first appearance.
func (d *Dataset) Regions() []string {
	if d == nil {
		return nil
	}
	return lo.Uniq(lo.Map(d.records, func(r Record, _ int) string { return r.Region }))
}

// Departments returns the distinct departments in order of first appearance.
func (d *Dataset) Departments() []string {
	if d == nil {
		return nil
	}
	return lo.Uniq(lo.Map(d.records, func(r Record, _ int) string { return r.Department }))
}
