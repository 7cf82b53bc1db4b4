// Package insights asks a language model for a short written commentary on the
// dashboard figures.
package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/finance-dashboard/internal/analyser"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/generator"
	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

// DefaultModelName is used when no model is configured.
const DefaultModelName = "gemini-2.5-flash"

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Input is what the narrator is told about the current selection.
type Input struct {
	// Scope describes the filter in words, e.g. "Europe, 2022-01-01 to 2022-12-31".
	Scope    string
	Rows     int
	KPIs     analyser.KPIs
	Expenses analyser.Option[[]analyser.CategoryTotal]
	Summary  analyser.Option[analyser.SummaryStats]
}

// Narrator writes a commentary for the given figures.
type Narrator interface {
	Narrate(ctx context.Context, in Input) (string, error)
}

// ContentGenerator is the part of the genai client the narrator uses; *genai.Models
// satisfies it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiNarrator implements Narrator with a Gemini model.
type GeminiNarrator struct {
	models ContentGenerator
	model  string
}

// NewGeminiNarrator creates a narrator backed by the Gemini API.
func NewGeminiNarrator(ctx context.Context, apiKey, model string) (*GeminiNarrator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiNarrator: create genai client: %w", err)
	}
	return NewNarrator(client.Models, model), nil
}

// NewNarrator creates a narrator over any ContentGenerator. An empty model means
// DefaultModelName.
func NewNarrator(models ContentGenerator, model string) *GeminiNarrator {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiNarrator{models: models, model: model}
}

const systemInstruction = "You are a financial analyst writing for a business dashboard. " +
	"Be concise and factual. Only use the figures you are given."

// Narrate implements Narrator.
func (n *GeminiNarrator) Narrate(ctx context.Context, in Input) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: BuildPrompt(in)}},
		},
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		Temperature:       genai.Ptr[float32](0.3),
	}

	resp, err := n.models.GenerateContent(ctx, n.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("Narrate: generate content: %w", err)
	}

	text := cleanModelText(resp.Text())
	if text == "" {
		return "", fmt.Errorf("Narrate: %w", ErrEmptyResponse)
	}
	return text, nil
}

// BuildPrompt renders the figures as a plain-text prompt.
func BuildPrompt(in Input) string {
	var b strings.Builder

	b.WriteString("Write a short commentary (3 to 5 bullet points) on this synthetic company's finances.\n\n")
	if in.Scope != "" {
		fmt.Fprintf(&b, "Selection: %s\n", in.Scope)
	}
	fmt.Fprintf(&b, "Rows: %d\n\n", in.Rows)

	b.WriteString("Key figures:\n")
	fmt.Fprintf(&b, "- Total revenue: %s\n", generator.Currency(in.KPIs.TotalRevenue))
	fmt.Fprintf(&b, "- Total expenses: %s\n", generator.Currency(in.KPIs.TotalExpenses))
	fmt.Fprintf(&b, "- Net profit: %s\n", generator.Currency(in.KPIs.NetProfit))
	fmt.Fprintf(&b, "- Profit margin: %.2f%%\n", in.KPIs.ProfitMargin)

	if totals, ok := in.Expenses.Get(); ok {
		b.WriteString("\nExpense breakdown:\n")
		for _, t := range totals {
			fmt.Fprintf(&b, "- %s: %s (%.1f%%)\n", t.Category.Label(), generator.Currency(t.Total), t.Share)
		}
	}

	if s, ok := in.Summary.Get(); ok {
		writeGroups(&b, "Revenue by region", s.ByRegion)
		writeGroups(&b, "Revenue by department", s.ByDepartment)
	}

	b.WriteString("\nReturn plain text bullet points only, without headings or Markdown code fences.\n")
	return b.String()
}

func writeGroups(b *strings.Builder, heading string, groups []analyser.GroupStats) {
	fmt.Fprintf(b, "\n%s:\n", heading)
	for _, g := range groups {
		rev := g.Fields[domain.Revenue]
		fmt.Fprintf(b, "- %s: total %s, daily mean %s\n",
			g.Key, generator.Currency(rev.Sum), generator.Currency(decimal.NewFromFloat(rev.Mean)))
	}
}

// DescribeFilter renders f for the Scope of an Input.
func DescribeFilter(f analyser.Filter) string {
	if f.IsZero() {
		return "all data"
	}
	var parts []string
	if len(f.Regions) > 0 {
		parts = append(parts, "regions "+strings.Join(f.Regions, ", "))
	}
	if len(f.Departments) > 0 {
		parts = append(parts, "departments "+strings.Join(f.Departments, ", "))
	}
	switch {
	case f.Start != nil && f.End != nil:
		parts = append(parts, fmt.Sprintf("%s to %s", f.Start, f.End))
	case f.Start != nil:
		parts = append(parts, fmt.Sprintf("from %s", f.Start))
	case f.End != nil:
		parts = append(parts, fmt.Sprintf("until %s", f.End))
	}
	return strings.Join(parts, "; ")
}

// cleanModelText strips Markdown fences the model may add despite instructions.
func cleanModelText(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return strings.TrimSpace(strings.Trim(s, "`"))
		}
		s = s[idx+1:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
