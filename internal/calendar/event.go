package calendar

import (
	"fmt"
	"time"

	gcal "google.golang.org/api/calendar/v3"

	"github.com/reno-ai/reno-backend/internal/projects/domain"
)

const (
	itemIDProperty = "reno_item_id"

	// eventDuration is the block reserved on the calendar per reminder.
	eventDuration = 30 * time.Minute
)

// ReminderEvent is the calendar-facing shape of one armed reminder.
type ReminderEvent struct {
	ItemID       string
	ProjectTitle string
	Task         string
	Details      string
	At           time.Time
}

// FromItem converts a checklist item with a reminder into a ReminderEvent.
// Items without a reminder, or with an unparsable one, convert to nil.
func FromItem(p *domain.Project, item domain.ChecklistItem) (*ReminderEvent, error) {
	if item.Reminder == "" {
		return nil, nil
	}
	at, err := time.Parse(time.RFC3339, item.Reminder)
	if err != nil {
		return nil, fmt.Errorf("parse reminder for item %s: %w", item.ID, err)
	}
	return &ReminderEvent{
		ItemID:       item.ID,
		ProjectTitle: p.Title,
		Task:         item.Task,
		Details:      item.Details,
		At:           at,
	}, nil
}

// ToAPI renders the event in Calendar API form.
func (e *ReminderEvent) ToAPI() *gcal.Event {
	description := e.Details
	if description == "" {
		description = "Renovation checklist reminder."
	}
	return &gcal.Event{
		Summary:     fmt.Sprintf("%s: %s", e.ProjectTitle, e.Task),
		Description: description,
		Start:       &gcal.EventDateTime{DateTime: e.At.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: e.At.Add(eventDuration).Format(time.RFC3339)},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{itemIDProperty: e.ItemID},
		},
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			ForceSendFields: []string{"UseDefault"},
			Overrides: []*gcal.EventReminder{
				{Method: "popup", Minutes: 0},
			},
		},
	}
}

// diffEvent returns a patch holding only the fields that differ between the
// stored event and the freshly converted one, or nil when nothing changed.
func diffEvent(existing, target *gcal.Event) *gcal.Event {
	patch := &gcal.Event{}
	changed := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		changed = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		changed = true
	}
	if !sameInstant(existing.Start, target.Start) || !sameInstant(existing.End, target.End) {
		patch.Start = target.Start
		patch.End = target.End
		changed = true
	}

	if !changed {
		return nil
	}
	return patch
}

func sameInstant(a, b *gcal.EventDateTime) bool {
	if a == nil || b == nil {
		return a == b
	}
	at, errA := time.Parse(time.RFC3339, a.DateTime)
	bt, errB := time.Parse(time.RFC3339, b.DateTime)
	if errA != nil || errB != nil {
		return a.DateTime == b.DateTime
	}
	return at.Equal(bt)
}
