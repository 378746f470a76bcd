package reminder

import (
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/skipbin/skipbin/internal/config"
	"github.com/skipbin/skipbin/internal/types"
)

// Scheduler derives payment reminder schedules from a policy table of day
// offsets relative to the invoice due date. It only produces data; delivery
// is the notifier's job.
type Scheduler struct {
	offsets []config.ReminderOffset
}

// NewScheduler builds a scheduler from the configured reminder policy
func NewScheduler(cfg config.ReminderConfig) *Scheduler {
	offsets := make([]config.ReminderOffset, len(cfg.Offsets))
	copy(offsets, cfg.Offsets)
	return &Scheduler{offsets: offsets}
}

// Schedule returns the reminder entries for an invoice in chronological
// order. Entries that would fall before the issue date are dropped.
func (s *Scheduler) Schedule(issueDate, dueDate time.Time) []types.ReminderScheduleEntry {
	entries := lo.FilterMap(s.offsets, func(offset config.ReminderOffset, _ int) (types.ReminderScheduleEntry, bool) {
		date := dueDate.AddDate(0, 0, offset.Days)
		if date.Before(issueDate) {
			return types.ReminderScheduleEntry{}, false
		}
		return types.ReminderScheduleEntry{Date: date, Type: offset.Type}, true
	})

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})

	return entries
}
