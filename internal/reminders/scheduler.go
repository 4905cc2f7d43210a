// Package reminders arms local timers for checklist item reminders and
// delivers notifications when they fire.
package reminders

import (
	"log"
	"sync"
	"time"

	"github.com/reno-ai/reno-backend/internal/projects/domain"
)

// Notification is what the user sees when a reminder fires. Tag carries the
// checklist item id so sinks can deduplicate.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Tag   string `json:"tag"`
	At    string `json:"at"`
}

// Notifier delivers a fired reminder. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

type entry struct {
	timer     *time.Timer
	projectID string
}

// Scheduler holds one pending timer per checklist item. Arming an item that
// already has a pending timer replaces it, so an item never fires twice for
// one reminder.
type Scheduler struct {
	notifier Notifier
	now      func() time.Time

	mu      sync.Mutex
	timers  map[string]entry
	stopped bool
}

func NewScheduler(notifier Notifier) *Scheduler {
	return &Scheduler{
		notifier: notifier,
		now:      time.Now,
		timers:   make(map[string]entry),
	}
}

// Arm schedules a notification for the item's reminder instant. A reminder
// in the past, or an item without one, arms nothing. The previous timer for
// the same item, if any, is cancelled first.
func (s *Scheduler) Arm(projectID, projectTitle string, item domain.ChecklistItem) bool {
	if item.Reminder == "" {
		return false
	}
	at, err := time.Parse(time.RFC3339, item.Reminder)
	if err != nil {
		log.Printf("[warn] operation=reminder_arm item_id=%s error=%v", item.ID, err)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}

	delay := at.Sub(s.now())
	if delay <= 0 {
		s.cancelLocked(item.ID)
		return false
	}

	s.cancelLocked(item.ID)
	n := Notification{
		Title: "Reno Reminder: " + projectTitle,
		Body:  item.Task,
		Tag:   item.ID,
		At:    at.UTC().Format(time.RFC3339),
	}
	itemID := item.ID
	s.timers[itemID] = entry{
		projectID: projectID,
		timer: time.AfterFunc(delay, func() {
			s.fire(itemID, n)
		}),
	}
	return true
}

func (s *Scheduler) fire(itemID string, n Notification) {
	s.mu.Lock()
	delete(s.timers, itemID)
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		return
	}
	s.notifier.Notify(n)
}

// Cancel drops the pending timer for one item.
func (s *Scheduler) Cancel(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(itemID)
}

// CancelProject drops every pending timer belonging to a project. Called
// when the project is deleted.
func (s *Scheduler) CancelProject(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for itemID, e := range s.timers {
		if e.projectID == projectID {
			e.timer.Stop()
			delete(s.timers, itemID)
		}
	}
}

// Pending reports the number of armed timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels all timers; the scheduler is unusable afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for itemID, e := range s.timers {
		e.timer.Stop()
		delete(s.timers, itemID)
	}
}

func (s *Scheduler) cancelLocked(itemID string) {
	if e, ok := s.timers[itemID]; ok {
		e.timer.Stop()
		delete(s.timers, itemID)
	}
}
