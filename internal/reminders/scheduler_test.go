package reminders

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reno-ai/reno-backend/internal/projects/domain"
)

type recordingNotifier struct {
	mu    sync.Mutex
	fired []Notification
	gotit chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{gotit: make(chan struct{}, 16)}
}

func (n *recordingNotifier) Notify(note Notification) {
	n.mu.Lock()
	n.fired = append(n.fired, note)
	n.mu.Unlock()
	n.gotit <- struct{}{}
}

func (n *recordingNotifier) all() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notification(nil), n.fired...)
}

func (n *recordingNotifier) waitOne(t *testing.T) {
	t.Helper()
	select {
	case <-n.gotit:
	case <-time.After(2 * time.Second):
		t.Fatal("notification never fired")
	}
}

func itemWithReminder(id, task string, at time.Time) domain.ChecklistItem {
	return domain.ChecklistItem{ID: id, Task: task, Reminder: at.UTC().Format(time.RFC3339Nano)}
}

func TestSchedulerFiresWithProjectContext(t *testing.T) {
	notifier := newRecordingNotifier()
	s := NewScheduler(notifier)
	defer s.Stop()

	item := itemWithReminder("item-1", "Buy paint rollers", time.Now().Add(30*time.Millisecond))
	require.True(t, s.Arm("p1", "Kitchen Refresh", item))

	notifier.waitOne(t)
	fired := notifier.all()
	require.Len(t, fired, 1)
	assert.Equal(t, "Reno Reminder: Kitchen Refresh", fired[0].Title)
	assert.Equal(t, "Buy paint rollers", fired[0].Body)
	assert.Equal(t, "item-1", fired[0].Tag)
	assert.Equal(t, 0, s.Pending())
}

func TestSchedulerRearmReplacesPriorTimer(t *testing.T) {
	notifier := newRecordingNotifier()
	s := NewScheduler(notifier)
	defer s.Stop()

	item := itemWithReminder("item-1", "Call the plumber", time.Now().Add(time.Hour))
	require.True(t, s.Arm("p1", "Bathroom", item))

	item.Reminder = time.Now().Add(30 * time.Millisecond).UTC().Format(time.RFC3339Nano)
	require.True(t, s.Arm("p1", "Bathroom", item))
	assert.Equal(t, 1, s.Pending(), "one pending timer per item")

	notifier.waitOne(t)
	assert.Len(t, notifier.all(), 1, "only the second arm fires")
}

func TestSchedulerRejectsPastAndEmptyReminders(t *testing.T) {
	s := NewScheduler(newRecordingNotifier())
	defer s.Stop()

	past := itemWithReminder("item-1", "Too late", time.Now().Add(-time.Minute))
	assert.False(t, s.Arm("p1", "Deck", past))
	assert.False(t, s.Arm("p1", "Deck", domain.ChecklistItem{ID: "item-2", Task: "No reminder"}))
	assert.Equal(t, 0, s.Pending())
}

func TestSchedulerArmPastCancelsExisting(t *testing.T) {
	s := NewScheduler(newRecordingNotifier())
	defer s.Stop()

	item := itemWithReminder("item-1", "Order tiles", time.Now().Add(time.Hour))
	require.True(t, s.Arm("p1", "Floor", item))

	item.Reminder = time.Now().Add(-time.Minute).UTC().Format(time.RFC3339)
	assert.False(t, s.Arm("p1", "Floor", item))
	assert.Equal(t, 0, s.Pending(), "moving a reminder into the past clears the timer")
}

func TestSchedulerCancel(t *testing.T) {
	notifier := newRecordingNotifier()
	s := NewScheduler(notifier)
	defer s.Stop()

	item := itemWithReminder("item-1", "Sand the shelves", time.Now().Add(40*time.Millisecond))
	require.True(t, s.Arm("p1", "Shelving", item))
	s.Cancel("item-1")
	assert.Equal(t, 0, s.Pending())

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, notifier.all())
}

func TestSchedulerCancelProjectDropsOnlyThatProject(t *testing.T) {
	s := NewScheduler(newRecordingNotifier())
	defer s.Stop()

	require.True(t, s.Arm("p1", "Kitchen", itemWithReminder("a", "x", time.Now().Add(time.Hour))))
	require.True(t, s.Arm("p1", "Kitchen", itemWithReminder("b", "y", time.Now().Add(time.Hour))))
	require.True(t, s.Arm("p2", "Garage", itemWithReminder("c", "z", time.Now().Add(time.Hour))))

	s.CancelProject("p1")
	assert.Equal(t, 1, s.Pending())
}

func TestSchedulerStopSilencesEverything(t *testing.T) {
	notifier := newRecordingNotifier()
	s := NewScheduler(notifier)

	require.True(t, s.Arm("p1", "Attic", itemWithReminder("item-1", "Insulate", time.Now().Add(30*time.Millisecond))))
	s.Stop()

	assert.False(t, s.Arm("p1", "Attic", itemWithReminder("item-2", "Vent", time.Now().Add(time.Hour))))
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, notifier.all())
}

type staticLister struct {
	projects []domain.Project
}

func (l *staticLister) List() []domain.Project { return l.projects }

func TestRescanArmsOnlyDueIncompleteItems(t *testing.T) {
	notifier := newRecordingNotifier()
	s := NewScheduler(notifier)
	defer s.Stop()

	soon := time.Now().Add(time.Hour)
	far := time.Now().Add(72 * time.Hour)
	lister := &staticLister{projects: []domain.Project{
		{
			ID:    "p1",
			Title: "Kitchen",
			Checklist: []domain.ChecklistItem{
				itemWithReminder("a", "Due soon", soon),
				itemWithReminder("b", "Too far out", far),
				{ID: "c", Task: "No reminder"},
			},
		},
		{
			ID:    "p2",
			Title: "Garage",
			Checklist: []domain.ChecklistItem{
				func() domain.ChecklistItem {
					it := itemWithReminder("d", "Already done", soon)
					it.Completed = true
					return it
				}(),
				itemWithReminder("e", "Also due", soon),
			},
		},
	}}

	r := NewRescanner(lister, s, 36*time.Hour)
	assert.Equal(t, 2, r.Rescan())
	assert.Equal(t, 2, s.Pending())

	// rescanning again replaces rather than duplicates
	assert.Equal(t, 2, r.Rescan())
	assert.Equal(t, 2, s.Pending())
}
