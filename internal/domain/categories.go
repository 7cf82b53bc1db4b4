package domain

// Default region names.
const (
	RegionNorthAmerica = "North America"
	RegionEurope       = "Europe"
	RegionAsiaPacific  = "Asia-Pacific"
)

// Default department names.
const (
	DepartmentSales      = "Sales"
	DepartmentOperations = "Operations"
	DepartmentMarketing  = "Marketing"
	DepartmentRnD        = "R&D"
)

// ExpenseCategory names one of the four expense columns.
type ExpenseCategory string

const (
	CostOfGoodsSold   ExpenseCategory = ColCostOfGoodsSold
	OperatingExpenses ExpenseCategory = ColOperatingExpenses
	MarketingExpenses ExpenseCategory = ColMarketingExpenses
	OtherExpenses     ExpenseCategory = ColOtherExpenses
)

// ExpenseCategories lists the expense categories in column order.
var ExpenseCategories = []ExpenseCategory{
	CostOfGoodsSold,
	OperatingExpenses,
	MarketingExpenses,
	OtherExpenses,
}

// Label returns a human readable name for the category.
func (c ExpenseCategory) Label() string {
	switch c {
	case CostOfGoodsSold:
		return "Cost of Goods Sold"
	case OperatingExpenses:
		return "Operating Expenses"
	case MarketingExpenses:
		return "Marketing Expenses"
	case OtherExpenses:
		return "Other Expenses"
	default:
		return string(c)
	}
}

// Field names one of the five monetary columns.
type Field string

// Revenue is the only monetary field that is not an expense.
const Revenue Field = ColRevenue

// MonetaryFields lists the five monetary columns in header order.
var MonetaryFields = []Field{
	Revenue,
	Field(CostOfGoodsSold),
	Field(OperatingExpenses),
	Field(MarketingExpenses),
	Field(OtherExpenses),
}
