package handlers

import (
	"fmt"
	"net/url"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/samber/lo"
)

// Query parameters shared by the dashboard endpoints.
const (
	paramStartDate   = "start_date"
	paramEndDate     = "end_date"
	paramRegion      = "region"
	paramDepartment  = "department"
	paramGranularity = "granularity"
)

// ParseFilter reads the filter query parameters. region and department may be
// repeated or comma-separated; dates are YYYY-MM-DD. A start after the end is
// allowed and simply matches nothing.
func ParseFilter(q url.Values) (analyser.Filter, error) {
	var f analyser.Filter

	start, err := optionalDate(q, paramStartDate)
	if err != nil {
		return analyser.Filter{}, err
	}
	end, err := optionalDate(q, paramEndDate)
	if err != nil {
		return analyser.Filter{}, err
	}
	f.Start, f.End = start, end

	f.Regions = listParam(q, paramRegion)
	f.Departments = listParam(q, paramDepartment)
	return f, nil
}

// ParseGranularity reads the granularity parameter; absent means daily.
func ParseGranularity(q url.Values) (analyser.Granularity, error) {
	g, err := analyser.ParseGranularity(q.Get(paramGranularity))
	if err != nil {
		return "", fmt.Errorf("invalid %s %q: use daily or monthly", paramGranularity, q.Get(paramGranularity))
	}
	return g, nil
}

func optionalDate(q url.Values, key string) (*civil.Date, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return nil, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format, expected YYYY-MM-DD", key)
	}
	return &d, nil
}

func listParam(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return lo.Uniq(out)
}
