package models

import "time"

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

type RepeatType string

const (
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
	RepeatYearly  RepeatType = "yearly"
)

func (r RepeatType) Valid() bool {
	switch r {
	case RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	}
	return false
}

// Task is a single actionable item. GroupID is a weak reference to a
// TaskGroup; nil means the task belongs to no group. IsOverdue, IsDueToday
// and IsDueTomorrow are derived at read time and never persisted.
type Task struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	Completed       bool        `json:"completed"`
	DueDate         *time.Time  `json:"dueDate,omitempty"`
	Priority        Priority    `json:"priority"`
	ListName        string      `json:"listName,omitempty"`
	GroupID         *string     `json:"groupId"`
	Group           *TaskGroup  `json:"group"`
	ReminderEnabled bool        `json:"reminderEnabled"`
	ReminderDate    *time.Time  `json:"reminderDate,omitempty"`
	RepeatEnabled   bool        `json:"repeatEnabled"`
	RepeatType      RepeatType  `json:"repeatType,omitempty"`
	RepeatInterval  int         `json:"repeatInterval,omitempty"`
	RepeatEndDate   *time.Time  `json:"repeatEndDate,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`

	IsOverdue     bool `json:"isOverdue"`
	IsDueToday    bool `json:"isDueToday"`
	IsDueTomorrow bool `json:"isDueTomorrow"`
}

// DeriveAt fills the virtual date fields relative to now. Comparisons are
// by calendar date in now's location, never by instant.
func (t *Task) DeriveAt(now time.Time) {
	t.IsOverdue = false
	t.IsDueToday = false
	t.IsDueTomorrow = false
	if t.DueDate == nil {
		return
	}

	due := dateOf(t.DueDate.In(now.Location()))
	today := dateOf(now)

	t.IsOverdue = !t.Completed && due.Before(today)
	t.IsDueToday = due.Equal(today)
	t.IsDueTomorrow = due.Equal(today.AddDate(0, 0, 1))
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
