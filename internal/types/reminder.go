package types

import (
	"time"

	ierr "github.com/skipbin/skipbin/internal/errors"
	"github.com/samber/lo"
)

// ReminderType indicates the tone of a payment reminder relative to the due date
type ReminderType string

const (
	// ReminderTypeGentle is sent ahead of the due date
	ReminderTypeGentle ReminderType = "gentle"
	// ReminderTypeDueToday is sent on the due date itself
	ReminderTypeDueToday ReminderType = "due_today"
	// ReminderTypeFirm is sent shortly after the due date has passed
	ReminderTypeFirm ReminderType = "firm"
	// ReminderTypeFinal is the last reminder before the account is escalated
	ReminderTypeFinal ReminderType = "final"
)

func (t ReminderType) String() string {
	return string(t)
}

func (t ReminderType) Validate() error {
	allowed := []ReminderType{
		ReminderTypeGentle,
		ReminderTypeDueToday,
		ReminderTypeFirm,
		ReminderTypeFinal,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid reminder type").
			WithHint("Please provide a valid reminder type").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ReminderScheduleEntry is a single planned reminder. The engine stores the
// schedule; delivery is handled by an external notifier.
type ReminderScheduleEntry struct {
	Date time.Time    `json:"date"`
	Type ReminderType `json:"type"`
}
