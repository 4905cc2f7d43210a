package reminders

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/reno-ai/reno-backend/internal/projects/domain"
)

// ProjectLister supplies the current project set for a rescan.
type ProjectLister interface {
	List() []domain.Project
}

// Rescanner re-arms near-term reminders from the project store. Timers live
// only in process memory, so a restart silently drops them; the rescan at
// startup plus a daily cron pass rebuilds every timer due within the
// horizon.
type Rescanner struct {
	lister    ProjectLister
	scheduler *Scheduler
	horizon   time.Duration
	cron      *cron.Cron
}

func NewRescanner(lister ProjectLister, scheduler *Scheduler, horizon time.Duration) *Rescanner {
	return &Rescanner{
		lister:    lister,
		scheduler: scheduler,
		horizon:   horizon,
		cron:      cron.New(),
	}
}

// Start runs one immediate rescan and schedules the daily pass.
func (r *Rescanner) Start() error {
	r.Rescan()
	if _, err := r.cron.AddFunc("@daily", func() { r.Rescan() }); err != nil {
		return err
	}
	r.cron.Start()
	return nil
}

func (r *Rescanner) Stop() {
	r.cron.Stop()
}

// Rescan arms every pending reminder due within the horizon. Already-armed
// items are re-armed, which is harmless: Arm replaces the prior timer with
// the same instant.
func (r *Rescanner) Rescan() int {
	cutoff := time.Now().Add(r.horizon)
	armed := 0
	for _, p := range r.lister.List() {
		for _, item := range p.Checklist {
			if item.Reminder == "" || item.Completed {
				continue
			}
			at, err := time.Parse(time.RFC3339, item.Reminder)
			if err != nil || at.After(cutoff) {
				continue
			}
			if r.scheduler.Arm(p.ID, p.Title, item) {
				armed++
			}
		}
	}
	log.Printf("[info] operation=reminder_rescan armed=%d horizon=%s", armed, r.horizon)
	return armed
}
