package genai

import (
	"fmt"
	"time"

	"github.com/reno-ai/reno-backend/internal/projects/domain"
)

// Prompts embed the current date so the model can resolve relative
// references ("tomorrow", "next week") in the user's notes.

func checklistPrompt(title, notes string) string {
	currentDate := time.Now().Format("Monday, January 2, 2006 3:04 PM MST")
	return fmt.Sprintf(`You are a helpful renovation planning assistant. The current date is %s. Use this information to resolve any relative date references (e.g., 'tomorrow', 'next week') in the user's notes.
Based on the project title, notes, and the provided image, generate a detailed checklist of tasks.
First, perform Optical Character Recognition (OCR) on the image to extract any text from documents, labels, or notes.
Then, analyze the visual content of the image (e.g., room layout, existing fixtures, condition of surfaces).
Combine the project title, your notes, the extracted text from the image, and the visual analysis to create a comprehensive checklist.

Project Title: %q
Notes: %q

Generate a JSON array of objects, where each object represents a checklist item with "task" and optional "details" fields.`, currentDate, title, notes)
}

func titlePrompt(notes string) string {
	return fmt.Sprintf(`Based on the following project notes, generate a concise and descriptive project title. The title should be no more than 5-7 words. Respond with only the title text and nothing else.

Notes: %q`, notes)
}

func costPrompt(p *domain.Project) string {
	tasks := ""
	for _, item := range p.Checklist {
		tasks += "- " + item.Task
		if item.Details != "" {
			tasks += " (" + item.Details + ")"
		}
		tasks += "\n"
	}
	return fmt.Sprintf(`You are a renovation cost estimator. Estimate the total cost in US dollars for the following project. Respond with only a single number and nothing else (no currency symbol, no ranges, no commentary).

Project Title: %q
Notes: %q
Checklist:
%s`, p.Title, p.Notes, tasks)
}

func suggestionsPrompt(p *domain.Project, item *domain.ChecklistItem, kind SuggestionKind) string {
	focus := "creative variations and alternative approaches"
	if kind == SuggestMaterials {
		focus = "suitable materials, with rough price tiers"
	}
	return fmt.Sprintf(`You are a renovation planning assistant. For the project %q, suggest %s for this checklist task. Keep it practical and concise.

Task: %q
Details: %q`, p.Title, focus, item.Task, item.Details)
}
