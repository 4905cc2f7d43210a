package domain

import "time"

// Status is the lifecycle stage of a renovation project.
type Status string

const (
	StatusIdea       Status = "Idea"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// ValidStatus reports whether s is one of the known lifecycle stages.
func ValidStatus(s Status) bool {
	return s == StatusIdea || s == StatusInProgress || s == StatusCompleted
}

// BudgetState describes the actual cost relative to the estimate.
type BudgetState string

const (
	BudgetUnset BudgetState = "unset"
	BudgetUnder BudgetState = "under"
	BudgetOver  BudgetState = "over"
)

// Photo holds the two encoded copies of an attached image, base64 JPEG.
type Photo struct {
	Thumbnail string `json:"thumbnail"`
	Full      string `json:"full"`
}

// ChecklistItem is one actionable task within a project.
// Reminder, when set, is an RFC3339 instant that was in the future at the
// time it was set.
type ChecklistItem struct {
	ID        string `json:"id"`
	Task      string `json:"task"`
	Details   string `json:"details,omitempty"`
	Completed bool   `json:"completed"`
	Reminder  string `json:"reminder,omitempty"`
}

// Project represents a single renovation effort. It is storage-agnostic and
// used across the service, repository and HTTP layers. ID is immutable and
// unique across the store.
type Project struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Date            string          `json:"date"` // target date, YYYY-MM-DD
	InspirationLink string          `json:"inspiration_link,omitempty"`
	Photo           *Photo          `json:"photo,omitempty"`
	Notes           string          `json:"notes"`
	Status          Status          `json:"status"`
	EstimatedCost   *float64        `json:"estimated_cost,omitempty"`
	ActualCost      *float64        `json:"actual_cost,omitempty"`
	Checklist       []ChecklistItem `json:"checklist"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Item returns the checklist item with the given id, or nil.
func (p *Project) Item(itemID string) *ChecklistItem {
	for i := range p.Checklist {
		if p.Checklist[i].ID == itemID {
			return &p.Checklist[i]
		}
	}
	return nil
}

// Budget compares actual cost against the estimate. Both must be present for
// a verdict; actual above estimate is over budget, at or below is under.
func (p *Project) Budget() BudgetState {
	if p.EstimatedCost == nil || p.ActualCost == nil {
		return BudgetUnset
	}
	if *p.ActualCost > *p.EstimatedCost {
		return BudgetOver
	}
	return BudgetUnder
}

// Progress returns completed and total checklist counts.
func (p *Project) Progress() (completed, total int) {
	for _, item := range p.Checklist {
		if item.Completed {
			completed++
		}
	}
	return completed, len(p.Checklist)
}

// Clone returns a deep copy so callers can hand projects across goroutine
// boundaries without sharing checklist backing arrays.
func (p *Project) Clone() *Project {
	cp := *p
	if p.Photo != nil {
		photo := *p.Photo
		cp.Photo = &photo
	}
	if p.EstimatedCost != nil {
		v := *p.EstimatedCost
		cp.EstimatedCost = &v
	}
	if p.ActualCost != nil {
		v := *p.ActualCost
		cp.ActualCost = &v
	}
	cp.Checklist = make([]ChecklistItem, len(p.Checklist))
	copy(cp.Checklist, p.Checklist)
	return &cp
}
