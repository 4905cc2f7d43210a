package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reno-ai/reno-backend/internal/projects/domain"
	"github.com/reno-ai/reno-backend/internal/projects/service"
)

// memStore is an in-memory ProjectStore used to observe mirror traffic.
type memStore struct {
	mu       sync.Mutex
	records  map[string]*domain.Project
	failNext error
}

func newMemStore() *memStore {
	return &memStore{records: map[string]*domain.Project{}}
}

func (m *memStore) Save(_ context.Context, p *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.records[p.ID] = p.Clone()
	return nil
}

func (m *memStore) Load(_ context.Context, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (m *memStore) LoadAll(context.Context) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Project, 0, len(m.records))
	for _, p := range m.records {
		out = append(out, *p.Clone())
	}
	return out, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *memStore) Ping(context.Context) error { return nil }
func (m *memStore) Close() error               { return nil }

func newTestStore(t *testing.T) (*service.Store, *service.Mirror, *memStore) {
	t.Helper()
	backend := newMemStore()
	mirror := service.NewMirror(backend)
	mirror.Start()
	t.Cleanup(mirror.Close)
	return service.NewStore(mirror), mirror, backend
}

func waitResult(t *testing.T, mirror *service.Mirror) service.MirrorResult {
	t.Helper()
	select {
	case res := <-mirror.Results():
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for mirror result")
		return service.MirrorResult{}
	}
}

func TestStore_AddIsNewestFirst(t *testing.T) {
	store, _, _ := newTestStore(t)

	first := service.NewProject("Bathroom", "2026-03-01", "", "", nil)
	second := service.NewProject("Deck", "2026-11-15", "", "", nil)
	store.Add(first)
	store.Add(second)

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "Deck", list[0].Title)
	assert.Equal(t, "Bathroom", list[1].Title)
}

func TestStore_AddMirrorsEventually(t *testing.T) {
	store, mirror, backend := newTestStore(t)

	p := service.NewProject("Kitchen", "2026-10-01", "", "some notes", nil)
	store.Add(p)

	res := waitResult(t, mirror)
	require.NoError(t, res.Err)
	assert.Equal(t, service.OpSave, res.Kind)
	assert.Equal(t, p.ID, res.ProjectID)

	persisted, err := backend.Load(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", persisted.Title)
}

func TestStore_MirrorFailureKeepsMemoryState(t *testing.T) {
	store, mirror, backend := newTestStore(t)
	backend.failNext = errors.New("store unavailable")

	p := service.NewProject("Kitchen", "2026-10-01", "", "", nil)
	store.Add(p)

	res := waitResult(t, mirror)
	assert.Error(t, res.Err)

	// In-memory state is the source of truth; no rollback.
	got, err := store.Get(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", got.Title)
}

func TestStore_DeleteRemovesMemoryAndRecord(t *testing.T) {
	store, mirror, backend := newTestStore(t)

	p := service.NewProject("Kitchen", "2026-10-01", "", "", nil)
	store.Add(p)
	waitResult(t, mirror)

	require.NoError(t, store.Delete(p.ID))
	res := waitResult(t, mirror)
	require.NoError(t, res.Err)
	assert.Equal(t, service.OpDelete, res.Kind)

	_, err := store.Get(p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = backend.Load(context.Background(), p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ToggleItem(t *testing.T) {
	store, _, _ := newTestStore(t)

	p := service.NewProject("Kitchen", "2026-10-01", "", "", nil)
	p.Checklist = []domain.ChecklistItem{{ID: "i1", Task: "Demo wall"}}
	store.Add(p)

	got, err := store.ToggleItem(p.ID, "i1")
	require.NoError(t, err)
	assert.True(t, got.Checklist[0].Completed)

	got, err = store.ToggleItem(p.ID, "i1")
	require.NoError(t, err)
	assert.False(t, got.Checklist[0].Completed)

	_, err = store.ToggleItem(p.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestStore_EditItemRejectsEmptyTask(t *testing.T) {
	store, _, _ := newTestStore(t)

	p := service.NewProject("Kitchen", "2026-10-01", "", "", nil)
	p.Checklist = []domain.ChecklistItem{{ID: "i1", Task: "Demo wall"}}
	store.Add(p)

	empty := "   "
	_, err := store.EditItem(p.ID, "i1", &empty, nil)
	assert.ErrorIs(t, err, domain.ErrEmptyTask)

	task := "Demo wall carefully"
	details := "wear goggles"
	got, err := store.EditItem(p.ID, "i1", &task, &details)
	require.NoError(t, err)
	assert.Equal(t, "Demo wall carefully", got.Checklist[0].Task)
	assert.Equal(t, "wear goggles", got.Checklist[0].Details)
}

func TestStore_SetReminderRejectsPast(t *testing.T) {
	store, _, _ := newTestStore(t)

	p := service.NewProject("Kitchen", "2026-10-01", "", "", nil)
	p.Checklist = []domain.ChecklistItem{{ID: "i1", Task: "Demo wall"}}
	store.Add(p)

	_, err := store.SetReminder(p.ID, "i1", time.Now().Add(-time.Hour))
	assert.ErrorIs(t, err, domain.ErrPastReminder)

	future := time.Now().Add(time.Hour)
	got, err := store.SetReminder(p.ID, "i1", future)
	require.NoError(t, err)
	assert.Equal(t, future.UTC().Format(time.RFC3339), got.Checklist[0].Reminder)

	got, err = store.ClearReminder(p.ID, "i1")
	require.NoError(t, err)
	assert.Empty(t, got.Checklist[0].Reminder)
}

func TestStore_ReplaceChecklistDiscardsStaleResult(t *testing.T) {
	store, _, _ := newTestStore(t)

	p := service.NewProject("Kitchen", "2026-10-01", "", "", nil)
	store.Add(p)

	gen, err := store.Generation(p.ID)
	require.NoError(t, err)

	// The project changes while generation is in flight.
	newNotes := "changed"
	_, err = store.UpdateFields(p.ID, service.FieldUpdate{Notes: &newNotes})
	require.NoError(t, err)

	_, applied, err := store.ReplaceChecklist(p.ID, gen, []domain.ChecklistItem{{ID: "i1", Task: "stale"}})
	require.NoError(t, err)
	assert.False(t, applied)

	got, err := store.Get(p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Checklist)

	// A fresh generation applies cleanly.
	gen, err = store.Generation(p.ID)
	require.NoError(t, err)
	got, applied, err = store.ReplaceChecklist(p.ID, gen, []domain.ChecklistItem{{ID: "i2", Task: "fresh"}})
	require.NoError(t, err)
	assert.True(t, applied)
	require.Len(t, got.Checklist, 1)
	assert.Equal(t, "fresh", got.Checklist[0].Task)
}

func TestStore_UpdateFieldsValidatesStatus(t *testing.T) {
	store, _, _ := newTestStore(t)

	p := service.NewProject("Kitchen", "2026-10-01", "", "", nil)
	store.Add(p)

	bad := domain.Status("Paused")
	_, err := store.UpdateFields(p.ID, service.FieldUpdate{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	good := domain.StatusCompleted
	got, err := store.UpdateFields(p.ID, service.FieldUpdate{Status: &good})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
}
