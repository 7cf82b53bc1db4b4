package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes ds as a header row followed by one line per record.
func WriteCSV(w io.Writer, ds *domain.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.Columns); err != nil {
		return fmt.Errorf("WriteCSV: header: %w", err)
	}

	var werr error
	ds.Each(func(r domain.Record) {
		if werr != nil {
			return
		}
		werr = cw.Write(formatRecord(r))
	})
	if werr != nil {
		return fmt.Errorf("WriteCSV: row: %w", werr)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: flush: %w", err)
	}
	return nil
}

func formatRecord(r domain.Record) []string {
	return []string{
		r.Date.String(),
		strconv.Itoa(r.Year),
		strconv.Itoa(r.Month),
		r.Region,
		r.Department,
		r.Revenue.StringFixed(2),
		r.CostOfGoodsSold.StringFixed(2),
		r.OperatingExpenses.StringFixed(2),
		r.MarketingExpenses.StringFixed(2),
		r.OtherExpenses.StringFixed(2),
	}
}

// ReadCSV parses a tabular store. Columns are matched by header name, so their order
// may vary and extra columns are ignored. A missing column or an unparsable value
// yields ErrMalformedData.
func ReadCSV(r io.Reader) (*domain.Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ReadCSV: read: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("ReadCSV: empty file: %w", ErrMalformedData)
	}
	if err != nil {
		return nil, fmt.Errorf("ReadCSV: header: %w: %v", ErrMalformedData, err)
	}

	idx, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []domain.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadCSV: line %d: %w: %v", line, ErrMalformedData, err)
		}
		rec, err := parseRecord(row, idx)
		if err != nil {
			return nil, fmt.Errorf("ReadCSV: line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return domain.NewDataset(records), nil
}

func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}

	var missing []string
	for _, col := range domain.Columns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("ReadCSV: missing columns %s: %w", strings.Join(missing, ", "), ErrMalformedData)
	}
	return idx, nil
}

func parseRecord(row []string, idx map[string]int) (domain.Record, error) {
	field := func(col string) (string, error) {
		i := idx[col]
		if i >= len(row) {
			return "", fmt.Errorf("column %s: missing value: %w", col, ErrMalformedData)
		}
		return strings.TrimSpace(row[i]), nil
	}

	raw, err := field(domain.ColDate)
	if err != nil {
		return domain.Record{}, err
	}
	date, err := civil.ParseDate(raw)
	if err != nil {
		return domain.Record{}, fmt.Errorf("column %s: %q: %w", domain.ColDate, raw, ErrMalformedData)
	}

	var rec domain.Record
	rec.Date = date
	if rec.Region, err = field(domain.ColRegion); err != nil {
		return domain.Record{}, err
	}
	if rec.Department, err = field(domain.ColDepartment); err != nil {
		return domain.Record{}, err
	}
	if rec.Year, err = intField(field, domain.ColYear); err != nil {
		return domain.Record{}, err
	}
	if rec.Month, err = intField(field, domain.ColMonth); err != nil {
		return domain.Record{}, err
	}
	if !rec.Consistent() {
		return domain.Record{}, fmt.Errorf("year/month %d-%02d disagree with date %s: %w", rec.Year, rec.Month, date, ErrMalformedData)
	}

	amounts := []struct {
		col string
		dst *decimal.Decimal
	}{
		{domain.ColRevenue, &rec.Revenue},
		{domain.ColCostOfGoodsSold, &rec.CostOfGoodsSold},
		{domain.ColOperatingExpenses, &rec.OperatingExpenses},
		{domain.ColMarketingExpenses, &rec.MarketingExpenses},
		{domain.ColOtherExpenses, &rec.OtherExpenses},
	}
	for _, a := range amounts {
		raw, err := field(a.col)
		if err != nil {
			return domain.Record{}, err
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return domain.Record{}, fmt.Errorf("column %s: %q: %w", a.col, raw, ErrMalformedData)
		}
		*a.dst = v
	}

	return rec, nil
}

func intField(field func(string) (string, error), col string) (int, error) {
	raw, err := field(col)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("column %s: %q: %w", col, raw, ErrMalformedData)
	}
	return v, nil
}
