// Package export renders a project into the plain-text share format and
// parses checklists back out of it.
package export

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/reno-ai/reno-backend/internal/projects/domain"
)

const banner = "========================================"

var filenameUnsafe = regexp.MustCompile(`[\s/\\?%*:|"<>]`)

// Render produces the shareable plain-text form of a project.
func Render(p *domain.Project) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", banner)
	fmt.Fprintf(&b, "PROJECT: %s\n", p.Title)
	fmt.Fprintf(&b, "%s\n\n", banner)
	fmt.Fprintf(&b, "Status: %s\n", p.Status)
	fmt.Fprintf(&b, "Target Date: %s\n\n", formatDate(p.Date))

	if p.EstimatedCost != nil || p.ActualCost != nil {
		b.WriteString("--- BUDGET ---\n")
		fmt.Fprintf(&b, "Estimated: %s\n", FormatCurrency(p.EstimatedCost))
		fmt.Fprintf(&b, "Actual:    %s\n\n", FormatCurrency(p.ActualCost))
	}

	if p.Notes != "" {
		fmt.Fprintf(&b, "--- NOTES ---\n%s\n\n", p.Notes)
	}

	b.WriteString("--- CHECKLIST ---\n")
	if len(p.Checklist) == 0 {
		b.WriteString("No items in checklist.\n\n")
	} else {
		for i, item := range p.Checklist {
			prefix := "[ ]"
			if item.Completed {
				prefix = "[x]"
			}
			fmt.Fprintf(&b, "%s %s", prefix, item.Task)
			if item.Details != "" {
				fmt.Fprintf(&b, "\n    - %s", item.Details)
			}
			if i < len(p.Checklist)-1 {
				b.WriteByte('\n')
			}
		}
		b.WriteString("\n\n")
	}

	if p.InspirationLink != "" {
		fmt.Fprintf(&b, "--- INSPIRATION ---\nLink: %s\n", p.InspirationLink)
	}

	return b.String()
}

// Filename derives the download name from the project title: unsafe
// characters replaced with underscores, lowercased, suffixed _export.txt.
func Filename(title string) string {
	return strings.ToLower(filenameUnsafe.ReplaceAllString(title, "_")) + "_export.txt"
}

// FormatCurrency renders an amount as US dollars with comma grouping, or
// "Not set" when absent.
func FormatCurrency(amount *float64) string {
	if amount == nil {
		return "Not set"
	}
	v := *amount
	neg := v < 0 || (v == 0 && math.Signbit(v))
	cents := int64(math.Round(math.Abs(v) * 100))
	whole := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", whole)
	var grouped strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(d)
	}

	out := fmt.Sprintf("$%s.%02d", grouped.String(), frac)
	if neg {
		out = "-" + out
	}
	return out
}

func formatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("1/2/2006")
}

var checklistLine = regexp.MustCompile(`^\[( |x|X)\] (.+)$`)

// ParseChecklist reads the checklist section format back into items: one
// "[x] task" or "[ ] task" per line with an optional indented "- details"
// continuation. Lines outside that shape are skipped. Parsed items carry no
// ids; callers assign them.
func ParseChecklist(text string) []domain.ChecklistItem {
	var items []domain.ChecklistItem
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		if m := checklistLine.FindStringSubmatch(trimmed); m != nil {
			items = append(items, domain.ChecklistItem{
				Task:      m[2],
				Completed: m[1] == "x" || m[1] == "X",
			})
			continue
		}
		detail := strings.TrimSpace(trimmed)
		if strings.HasPrefix(detail, "- ") && len(items) > 0 && items[len(items)-1].Details == "" {
			items[len(items)-1].Details = strings.TrimPrefix(detail, "- ")
		}
	}
	return items
}
