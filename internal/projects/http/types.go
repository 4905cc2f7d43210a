package http

import (
	"context"

	"github.com/reno-ai/reno-backend/internal/calendar"
	"github.com/reno-ai/reno-backend/internal/genai"
	"github.com/reno-ai/reno-backend/internal/projects/domain"
	"github.com/reno-ai/reno-backend/internal/projects/service"
	"github.com/reno-ai/reno-backend/internal/reminders"
	"github.com/reno-ai/reno-backend/internal/transcribe"
)

// Completer is the slice of the completion client the handlers use.
type Completer interface {
	GenerateChecklist(ctx context.Context, title, notes, imageB64 string) ([]genai.ChecklistEntry, error)
	EstimateCost(ctx context.Context, p *domain.Project) (float64, error)
	Suggestions(ctx context.Context, p *domain.Project, item *domain.ChecklistItem, kind genai.SuggestionKind) (string, error)
}

// Transcriber runs one full recording session over an audio source.
type Transcriber interface {
	Record(ctx context.Context, source transcribe.AudioSource, currentTitle string) (*transcribe.Result, error)
}

// CalendarSync pushes reminders to an external calendar. Nil when the
// calendar integration is not configured.
type CalendarSync interface {
	SyncEvent(ev *calendar.ReminderEvent) (string, error)
	RemoveEvent(itemID string) error
}

// Handler bundles the dependencies for project HTTP endpoints.
type Handler struct {
	store       *service.Store
	ai          Completer
	scheduler   *reminders.Scheduler
	transcriber Transcriber
	cal         CalendarSync
}

func New(store *service.Store, ai Completer, scheduler *reminders.Scheduler, transcriber Transcriber, cal CalendarSync) *Handler {
	return &Handler{
		store:       store,
		ai:          ai,
		scheduler:   scheduler,
		transcriber: transcriber,
		cal:         cal,
	}
}
