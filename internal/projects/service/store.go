package service

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reno-ai/reno-backend/internal/projects/domain"
)

// Store is the application's working set of projects. Every mutation updates
// the ordered in-memory collection synchronously (newest-first for adds) and
// queues an asynchronous write to the persistent store through the mirror.
type Store struct {
	mu       sync.Mutex
	projects []*domain.Project
	gens     map[string]uint64
	mirror   *Mirror
	now      func() time.Time
}

func NewStore(mirror *Mirror) *Store {
	return &Store{
		gens:   make(map[string]uint64),
		mirror: mirror,
		now:    time.Now,
	}
}

// Hydrate replaces the working set with persisted projects. The repository
// returns them sorted by target date descending; order is preserved.
func (s *Store) Hydrate(projects []domain.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.projects = make([]*domain.Project, len(projects))
	for i := range projects {
		s.projects[i] = projects[i].Clone()
	}
}

// NewProject builds a project from creation-form input.
func NewProject(title, date, inspirationLink, notes string, photo *domain.Photo) *domain.Project {
	now := time.Now().UTC()
	return &domain.Project{
		ID:              uuid.New().String(),
		Title:           strings.TrimSpace(title),
		Date:            date,
		InspirationLink: strings.TrimSpace(inspirationLink),
		Photo:           photo,
		Notes:           notes,
		Status:          domain.StatusIdea,
		Checklist:       []domain.ChecklistItem{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Add prepends the project and mirrors it.
func (s *Store) Add(p *domain.Project) {
	s.mu.Lock()
	s.projects = append([]*domain.Project{p.Clone()}, s.projects...)
	s.mu.Unlock()

	s.mirror.EnqueueSave(p)
}

// List returns a snapshot of the working set in display order.
func (s *Store) List() []domain.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = *p.Clone()
	}
	return out
}

// Get returns a copy of one project.
func (s *Store) Get(id string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.find(id)
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

// Delete removes the project from memory and queues removal of its record.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	idx := -1
	for i, p := range s.projects {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return domain.ErrNotFound
	}
	s.projects = append(s.projects[:idx], s.projects[idx+1:]...)
	delete(s.gens, id)
	s.mu.Unlock()

	s.mirror.EnqueueDelete(id)
	return nil
}

// Generation returns the mutation counter for a project. Long-running
// asynchronous work records the generation it started from and its result is
// discarded if the project has changed since (stale-write guard).
func (s *Store) Generation(id string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(id) == nil {
		return 0, domain.ErrNotFound
	}
	return s.gens[id], nil
}

// update applies fn to the live project under lock, bumps the generation,
// stamps UpdatedAt and mirrors the result.
func (s *Store) update(id string, fn func(p *domain.Project) error) (*domain.Project, error) {
	s.mu.Lock()
	p := s.find(id)
	if p == nil {
		s.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	if err := fn(p); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	p.UpdatedAt = s.now().UTC()
	s.gens[id]++
	snapshot := p.Clone()
	s.mu.Unlock()

	s.mirror.EnqueueSave(snapshot)
	return snapshot, nil
}

func (s *Store) find(id string) *domain.Project {
	for _, p := range s.projects {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// FieldUpdate carries optional field edits; nil means unchanged.
type FieldUpdate struct {
	Title           *string
	Date            *string
	Notes           *string
	InspirationLink *string
	Status          *domain.Status
	EstimatedCost   *float64
	ActualCost      *float64
}

// UpdateFields applies a partial edit.
func (s *Store) UpdateFields(id string, u FieldUpdate) (*domain.Project, error) {
	return s.update(id, func(p *domain.Project) error {
		if u.Status != nil && !domain.ValidStatus(*u.Status) {
			return domain.ErrInvalidStatus
		}
		if u.Title != nil {
			p.Title = strings.TrimSpace(*u.Title)
		}
		if u.Date != nil {
			p.Date = *u.Date
		}
		if u.Notes != nil {
			p.Notes = *u.Notes
		}
		if u.InspirationLink != nil {
			p.InspirationLink = strings.TrimSpace(*u.InspirationLink)
		}
		if u.Status != nil {
			p.Status = *u.Status
		}
		if u.EstimatedCost != nil {
			p.EstimatedCost = u.EstimatedCost
		}
		if u.ActualCost != nil {
			p.ActualCost = u.ActualCost
		}
		return nil
	})
}

// SetPhoto attaches normalized image copies.
func (s *Store) SetPhoto(id string, photo *domain.Photo) (*domain.Project, error) {
	return s.update(id, func(p *domain.Project) error {
		p.Photo = photo
		return nil
	})
}

// ReplaceChecklist swaps in a freshly generated checklist, but only if the
// project has not been mutated since the generation started. Returns false
// when the result was stale and discarded.
func (s *Store) ReplaceChecklist(id string, startedAt uint64, items []domain.ChecklistItem) (*domain.Project, bool, error) {
	s.mu.Lock()
	p := s.find(id)
	if p == nil {
		s.mu.Unlock()
		return nil, false, domain.ErrNotFound
	}
	if s.gens[id] != startedAt {
		s.mu.Unlock()
		return nil, false, nil
	}
	p.Checklist = items
	p.UpdatedAt = s.now().UTC()
	s.gens[id]++
	snapshot := p.Clone()
	s.mu.Unlock()

	s.mirror.EnqueueSave(snapshot)
	return snapshot, true, nil
}

// ToggleItem flips an item's completion flag.
func (s *Store) ToggleItem(id, itemID string) (*domain.Project, error) {
	return s.update(id, func(p *domain.Project) error {
		item := p.Item(itemID)
		if item == nil {
			return domain.ErrItemNotFound
		}
		item.Completed = !item.Completed
		return nil
	})
}

// EditItem updates task text and details. Task must stay non-empty.
func (s *Store) EditItem(id, itemID string, task, details *string) (*domain.Project, error) {
	return s.update(id, func(p *domain.Project) error {
		item := p.Item(itemID)
		if item == nil {
			return domain.ErrItemNotFound
		}
		if task != nil {
			trimmed := strings.TrimSpace(*task)
			if trimmed == "" {
				return domain.ErrEmptyTask
			}
			item.Task = trimmed
		}
		if details != nil {
			item.Details = strings.TrimSpace(*details)
		}
		return nil
	})
}

// RemoveItem deletes one checklist item.
func (s *Store) RemoveItem(id, itemID string) (*domain.Project, error) {
	return s.update(id, func(p *domain.Project) error {
		for i := range p.Checklist {
			if p.Checklist[i].ID == itemID {
				p.Checklist = append(p.Checklist[:i], p.Checklist[i+1:]...)
				return nil
			}
		}
		return domain.ErrItemNotFound
	})
}

// SetReminder stores a future reminder instant on an item.
func (s *Store) SetReminder(id, itemID string, at time.Time) (*domain.Project, error) {
	return s.update(id, func(p *domain.Project) error {
		item := p.Item(itemID)
		if item == nil {
			return domain.ErrItemNotFound
		}
		if !at.After(s.now()) {
			return domain.ErrPastReminder
		}
		item.Reminder = at.UTC().Format(time.RFC3339)
		return nil
	})
}

// ClearReminder removes an item's reminder.
func (s *Store) ClearReminder(id, itemID string) (*domain.Project, error) {
	return s.update(id, func(p *domain.Project) error {
		item := p.Item(itemID)
		if item == nil {
			return domain.ErrItemNotFound
		}
		item.Reminder = ""
		return nil
	})
}
