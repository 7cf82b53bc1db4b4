package render

import (
	"bytes"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testDataset() *domain.Dataset {
	var records []domain.Record
	start := civil.Date{Year: 2022, Month: time.January, Day: 30}
	for i := 0; i < 5; i++ {
		for _, dept := range []string{domain.DepartmentSales, domain.DepartmentRnD} {
			r := domain.NewRecord(start.AddDays(i), domain.RegionEurope, dept)
			r.Revenue = decimal.NewFromInt(int64(1000 + 100*i))
			r.CostOfGoodsSold = decimal.NewFromInt(400)
			r.OperatingExpenses = decimal.NewFromInt(200)
			r.MarketingExpenses = decimal.NewFromInt(150)
			r.OtherExpenses = decimal.NewFromInt(50)
			records = append(records, r)
		}
	}
	return domain.NewDataset(records)
}

func TestForDataset_WritesPNG(t *testing.T) {
	ds := testDataset()

	for _, name := range Charts {
		for _, g := range []analyser.Granularity{analyser.Daily, analyser.Monthly} {
			t.Run(string(name)+"/"+string(g), func(t *testing.T) {
				p, ok, err := ForDataset(name, ds, g)
				require.NoError(t, err)
				require.True(t, ok)
				require.NotNil(t, p)

				var buf bytes.Buffer
				require.NoError(t, WritePNG(&buf, p, 4*vg.Inch, 3*vg.Inch))
				assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), "expected PNG output")
			})
		}
	}
}

func TestForDataset_EmptyHasNothingToRender(t *testing.T) {
	for _, name := range Charts {
		p, ok, err := ForDataset(name, domain.NewDataset(nil), analyser.Daily)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, p)
	}
}

func TestForDataset_UnknownChart(t *testing.T) {
	_, _, err := ForDataset("pie", testDataset(), analyser.Daily)
	assert.Error(t, err)
}

func TestCostDriverChart_Titles(t *testing.T) {
	m, ok := analyser.CostDriversByDepartment(testDataset()).Get()
	require.True(t, ok)

	p, err := CostDriverChart(m)
	require.NoError(t, err)
	assert.Equal(t, "Cost Drivers by Department", p.Title.Text)
}
