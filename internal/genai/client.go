// Package genai is the request/response client for the generative model:
// checklist generation, title generation, cost estimation and free-text
// suggestions. All calls are single-shot with no retry; failures are
// surfaced verbatim to the caller.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/reno-ai/reno-backend/internal/projects/domain"
)

type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

// ChecklistEntry is one generated task before it becomes a ChecklistItem.
type ChecklistEntry struct {
	Task    string `json:"task"`
	Details string `json:"details,omitempty"`
}

// SuggestionKind selects the flavor of item suggestions.
type SuggestionKind string

const (
	SuggestVariations SuggestionKind = "variations"
	SuggestMaterials  SuggestionKind = "materials"
)

// GenerateChecklist turns title, notes and an optional inline JPEG into an
// ordered list of tasks. The response schema constrains the model to an
// array of {task, details?} objects.
func (c *Client) GenerateChecklist(ctx context.Context, title, notes, imageB64 string) ([]ChecklistEntry, error) {
	parts := []part{{Text: checklistPrompt(title, notes)}}
	if imageB64 != "" {
		parts = append(parts, part{InlineData: &inlineData{MimeType: "image/jpeg", Data: imageB64}})
	}

	text, err := c.generate(ctx, parts, &generationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   checklistSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("generate checklist: %w", err)
	}

	var entries []ChecklistEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &entries); err != nil {
		return nil, fmt.Errorf("generate checklist: parse response: %w", err)
	}
	return entries, nil
}

// GenerateTitle produces a short project title from transcribed notes.
// Surrounding quotes the model may add are stripped.
func (c *Client) GenerateTitle(ctx context.Context, notes string) (string, error) {
	if strings.TrimSpace(notes) == "" {
		return "", nil
	}

	text, err := c.generate(ctx, []part{{Text: titlePrompt(notes)}}, nil)
	if err != nil {
		return "", fmt.Errorf("generate title: %w", err)
	}

	title := strings.TrimSpace(text)
	title = strings.TrimPrefix(title, `"`)
	title = strings.TrimSuffix(title, `"`)
	return title, nil
}

// EstimateCost asks the model for a single overall cost figure.
func (c *Client) EstimateCost(ctx context.Context, p *domain.Project) (float64, error) {
	text, err := c.generate(ctx, []part{{Text: costPrompt(p)}}, nil)
	if err != nil {
		return 0, fmt.Errorf("estimate cost: %w", err)
	}

	cleaned := strings.NewReplacer("$", "", ",", "", "\n", " ").Replace(text)
	cleaned = strings.TrimSpace(cleaned)
	// tolerate trailing words around the number
	fields := strings.Fields(cleaned)
	for _, f := range fields {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			return v, nil
		}
	}
	return 0, fmt.Errorf("estimate cost: no number in response %q", text)
}

// Suggestions returns free-text ideas for a single checklist item.
func (c *Client) Suggestions(ctx context.Context, p *domain.Project, item *domain.ChecklistItem, kind SuggestionKind) (string, error) {
	text, err := c.generate(ctx, []part{{Text: suggestionsPrompt(p, item, kind)}}, nil)
	if err != nil {
		return "", fmt.Errorf("suggestions: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (c *Client) generate(ctx context.Context, parts []part, cfg *generationConfig) (string, error) {
	reqBody := generateRequest{
		Contents:         []content{{Parts: parts}},
		GenerationConfig: cfg,
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL, c.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("model request: %w", err)
	}
	defer resp.Body.Close()

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode >= 400 {
		msg := "unknown error"
		if out.Error != nil {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("model error (status %d): %s", resp.StatusCode, msg)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty model response")
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}
