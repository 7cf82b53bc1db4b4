package notionsync

import (
	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"
)

// Property names of the summary database.
const (
	PropName            = "Name"
	PropGroup           = "Group"
	PropRows            = "Rows"
	PropRevenue         = "Revenue"
	PropAverageRevenue  = "Average Revenue"
	PropExpenses        = "Expenses"
	PropAverageExpenses = "Average Expenses"
	PropNetProfit       = "Net Profit"
	PropProfitMargin    = "Profit Margin"
)

// GroupKind tells region pages from department pages.
type GroupKind string

const (
	GroupRegion     GroupKind = "Region"
	GroupDepartment GroupKind = "Department"
)

// PageTitle is the unique title of a group's page, e.g. "Region: Europe".
func PageTitle(kind GroupKind, key string) string {
	return string(kind) + ": " + key
}

// GroupToNotionProperties converts one group's statistics to page properties.
func GroupToNotionProperties(kind GroupKind, g analyser.GroupStats) notionapi.Properties {
	revenue := g.Fields[domain.Revenue]

	var expenses decimal.Decimal
	var avgExpenses float64
	for _, c := range domain.ExpenseCategories {
		s := g.Fields[domain.Field(c)]
		expenses = expenses.Add(s.Sum)
		avgExpenses += s.Mean
	}

	net := revenue.Sum.Sub(expenses)
	var margin float64
	if revenue.Sum.IsPositive() {
		margin = net.Div(revenue.Sum).InexactFloat64()
	}

	return notionapi.Properties{
		PropName: notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{Content: PageTitle(kind, g.Key)},
				},
			},
		},
		PropGroup: notionapi.SelectProperty{
			Select: notionapi.Option{Name: string(kind)},
		},
		PropRows:            notionapi.NumberProperty{Number: float64(g.Count)},
		PropRevenue:         notionapi.NumberProperty{Number: revenue.Sum.InexactFloat64()},
		PropAverageRevenue:  notionapi.NumberProperty{Number: round2(revenue.Mean)},
		PropExpenses:        notionapi.NumberProperty{Number: expenses.InexactFloat64()},
		PropAverageExpenses: notionapi.NumberProperty{Number: round2(avgExpenses)},
		PropNetProfit:       notionapi.NumberProperty{Number: net.InexactFloat64()},
		// Notion's percent number format expects a fraction.
		PropProfitMargin: notionapi.NumberProperty{Number: margin},
	}
}

func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

// extractTitle returns the plain text of a page's Name property, or "".
func extractTitle(page notionapi.Page) string {
	if prop, ok := page.Properties[PropName]; ok {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			if len(title.Title) > 0 {
				return title.Title[0].PlainText
			}
		}
	}
	return ""
}
