package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reno-ai/reno-backend/internal/projects/domain"
)

func f64(v float64) *float64 { return &v }

func fullProject() *domain.Project {
	return &domain.Project{
		ID:              "p1",
		Title:           "Kitchen Refresh",
		Date:            "2026-10-01",
		Status:          domain.StatusInProgress,
		Notes:           "Warm white walls, brass handles.",
		InspirationLink: "https://example.com/board",
		EstimatedCost:   f64(12500),
		ActualCost:      f64(9800.50),
		Checklist: []domain.ChecklistItem{
			{ID: "a", Task: "Buy paint", Details: "2 gallons eggshell", Completed: true},
			{ID: "b", Task: "Replace handles"},
		},
	}
}

func TestRenderFullProject(t *testing.T) {
	got := Render(fullProject())

	want := "========================================\n" +
		"PROJECT: Kitchen Refresh\n" +
		"========================================\n\n" +
		"Status: In Progress\n" +
		"Target Date: 10/1/2026\n\n" +
		"--- BUDGET ---\n" +
		"Estimated: $12,500.00\n" +
		"Actual:    $9,800.50\n\n" +
		"--- NOTES ---\nWarm white walls, brass handles.\n\n" +
		"--- CHECKLIST ---\n" +
		"[x] Buy paint\n    - 2 gallons eggshell\n" +
		"[ ] Replace handles\n\n" +
		"--- INSPIRATION ---\nLink: https://example.com/board\n"
	assert.Equal(t, want, got)
}

func TestRenderOmitsEmptySections(t *testing.T) {
	p := &domain.Project{Title: "Bare", Date: "2026-01-15", Status: domain.StatusIdea}
	got := Render(p)

	assert.NotContains(t, got, "BUDGET")
	assert.NotContains(t, got, "NOTES")
	assert.NotContains(t, got, "INSPIRATION")
	assert.Contains(t, got, "No items in checklist.")
}

func TestRenderBudgetShownWhenEitherCostSet(t *testing.T) {
	p := &domain.Project{Title: "Half", Date: "2026-01-15", Status: domain.StatusIdea, ActualCost: f64(250)}
	got := Render(p)

	assert.Contains(t, got, "Estimated: Not set\n")
	assert.Contains(t, got, "Actual:    $250.00\n")
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "Not set", FormatCurrency(nil))
	assert.Equal(t, "$0.00", FormatCurrency(f64(0)))
	assert.Equal(t, "$999.99", FormatCurrency(f64(999.99)))
	assert.Equal(t, "$1,000.00", FormatCurrency(f64(1000)))
	assert.Equal(t, "$1,234,567.89", FormatCurrency(f64(1234567.89)))
	assert.Equal(t, "-$500.00", FormatCurrency(f64(-500)))
}

func TestFilenameSanitizes(t *testing.T) {
	assert.Equal(t, "kitchen_refresh_export.txt", Filename("Kitchen Refresh"))
	assert.Equal(t, "a_b_c_d_export.txt", Filename(`A/B\C?D`))
	assert.Equal(t, "plain_export.txt", Filename("plain"))
}

func TestParseChecklistRoundTrip(t *testing.T) {
	p := fullProject()
	rendered := Render(p)

	start := strings.Index(rendered, "--- CHECKLIST ---\n")
	require.GreaterOrEqual(t, start, 0)
	section := rendered[start+len("--- CHECKLIST ---\n"):]

	items := ParseChecklist(section)
	require.Len(t, items, 2)
	assert.Equal(t, "Buy paint", items[0].Task)
	assert.Equal(t, "2 gallons eggshell", items[0].Details)
	assert.True(t, items[0].Completed)
	assert.Equal(t, "Replace handles", items[1].Task)
	assert.False(t, items[1].Completed)
}

func TestParseChecklistSkipsNoise(t *testing.T) {
	items := ParseChecklist("random header\n[ ] Real task\nnot a task\n    - detail line\n")
	require.Len(t, items, 1)
	assert.Equal(t, "Real task", items[0].Task)
	assert.Equal(t, "detail line", items[0].Details)
}
