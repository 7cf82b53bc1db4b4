package notionsync

import (
	"context"
	"errors"
	"testing"

	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockNotion is a test double for NotionService.
type mockNotion struct {
	QueryDatabaseFunc func(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	CreatePageFunc    func(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
	UpdatePageFunc    func(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error)
	ArchivePageFunc   func(ctx context.Context, pageID string) error

	created  []string
	updated  []string
	archived []string
}

func (m *mockNotion) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	if m.QueryDatabaseFunc != nil {
		return m.QueryDatabaseFunc(ctx, databaseID, filter)
	}
	return &notionapi.DatabaseQueryResponse{}, nil
}

func (m *mockNotion) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	m.created = append(m.created, titleOf(properties))
	if m.CreatePageFunc != nil {
		return m.CreatePageFunc(ctx, databaseID, properties)
	}
	return &notionapi.Page{ID: "new"}, nil
}

func (m *mockNotion) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	m.updated = append(m.updated, pageID)
	if m.UpdatePageFunc != nil {
		return m.UpdatePageFunc(ctx, pageID, properties)
	}
	return &notionapi.Page{ID: notionapi.ObjectID(pageID)}, nil
}

func (m *mockNotion) ArchivePage(ctx context.Context, pageID string) error {
	m.archived = append(m.archived, pageID)
	if m.ArchivePageFunc != nil {
		return m.ArchivePageFunc(ctx, pageID)
	}
	return nil
}

func titleOf(props notionapi.Properties) string {
	if t, ok := props[PropName].(notionapi.TitleProperty); ok && len(t.Title) > 0 {
		return t.Title[0].Text.Content
	}
	return ""
}

func notionPage(id, title string) notionapi.Page {
	props := notionapi.Properties{}
	if title != "" {
		props[PropName] = &notionapi.TitleProperty{Title: []notionapi.RichText{{PlainText: title}}}
	}
	return notionapi.Page{ID: notionapi.ObjectID(id), Properties: props}
}

func group(key string, count int, revenue, expense string) analyser.GroupStats {
	fields := map[domain.Field]analyser.Stats{
		domain.Revenue: {Sum: decimal.RequireFromString(revenue), Mean: 100.123},
	}
	for _, c := range domain.ExpenseCategories {
		fields[domain.Field(c)] = analyser.Stats{Sum: decimal.RequireFromString(expense), Mean: 10}
	}
	return analyser.GroupStats{Key: key, Count: count, Fields: fields}
}

func testSummary() analyser.SummaryStats {
	return analyser.SummaryStats{
		ByRegion: []analyser.GroupStats{
			group("Europe", 4, "1000.00", "150.00"),
			group("North America", 4, "2000.00", "100.00"),
		},
		ByDepartment: []analyser.GroupStats{
			group("Sales", 8, "3000.00", "250.00"),
		},
	}
}

// pagedQuery serves pages in two batches to exercise cursor handling.
func pagedQuery(first, second []notionapi.Page) func(context.Context, string, *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return func(_ context.Context, _ string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
		if req.StartCursor == "" {
			return &notionapi.DatabaseQueryResponse{Results: first, HasMore: true, NextCursor: "c2"}, nil
		}
		return &notionapi.DatabaseQueryResponse{Results: second}, nil
	}
}

func TestSyncSummary(t *testing.T) {
	m := &mockNotion{
		QueryDatabaseFunc: pagedQuery(
			[]notionapi.Page{notionPage("p1", "Region: Europe"), notionPage("p2", "Region: Atlantis")},
			[]notionapi.Page{notionPage("p3", ""), notionPage("p4", "Region: Europe")},
		),
	}

	res, err := SyncSummary(context.Background(), m, "db", testSummary(), false)
	require.NoError(t, err)

	assert.Equal(t, Result{Created: 2, Updated: 1, Archived: 3}, res)
	assert.Equal(t, []string{"p1"}, m.updated)
	assert.ElementsMatch(t, []string{"Region: North America", "Department: Sales"}, m.created)
	assert.ElementsMatch(t, []string{"p2", "p3", "p4"}, m.archived)
}

func TestSyncSummary_DryRun(t *testing.T) {
	m := &mockNotion{
		QueryDatabaseFunc: pagedQuery(
			[]notionapi.Page{notionPage("p1", "Department: Sales")},
			[]notionapi.Page{notionPage("p2", "Department: Legal")},
		),
	}

	res, err := SyncSummary(context.Background(), m, "db", testSummary(), true)
	require.NoError(t, err)

	assert.Equal(t, Result{Created: 2, Updated: 1, Archived: 1}, res)
	assert.Empty(t, m.created)
	assert.Empty(t, m.updated)
	assert.Empty(t, m.archived)
}

func TestSyncSummary_Failures(t *testing.T) {
	m := &mockNotion{
		CreatePageFunc: func(context.Context, string, notionapi.Properties) (*notionapi.Page, error) {
			return nil, errors.New("rate limited")
		},
	}

	res, err := SyncSummary(context.Background(), m, "db", testSummary(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Failed)
	assert.Zero(t, res.Created)
}

func TestSyncSummary_QueryError(t *testing.T) {
	m := &mockNotion{
		QueryDatabaseFunc: func(context.Context, string, *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
			return nil, errors.New("unauthorized")
		},
	}

	_, err := SyncSummary(context.Background(), m, "db", testSummary(), false)
	assert.Error(t, err)
	assert.Empty(t, m.created)
}

func TestGroupToNotionProperties(t *testing.T) {
	props := GroupToNotionProperties(GroupRegion, group("Europe", 4, "1000.00", "150.00"))

	assert.Equal(t, "Region: Europe", titleOf(props))
	assert.Equal(t, notionapi.Option{Name: "Region"}, props[PropGroup].(notionapi.SelectProperty).Select)

	num := func(name string) float64 { return props[name].(notionapi.NumberProperty).Number }
	assert.Equal(t, 4.0, num(PropRows))
	assert.Equal(t, 1000.0, num(PropRevenue))
	assert.Equal(t, 100.12, num(PropAverageRevenue))
	assert.Equal(t, 600.0, num(PropExpenses))
	assert.Equal(t, 40.0, num(PropAverageExpenses))
	assert.Equal(t, 400.0, num(PropNetProfit))
	assert.InDelta(t, 0.4, num(PropProfitMargin), 1e-9)
}
