package models

import (
	"fmt"
	"unicode/utf8"
)

// Violation describes a single field constraint failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidateTask checks every field constraint on a task and returns all
// violations found. Fields are expected to be trimmed already. Date shape
// is checked whenever a date is present; only the requiredness of
// repeatInterval is gated on repeatEnabled.
func ValidateTask(t *Task) []Violation {
	var vs []Violation

	if t.Title == "" {
		vs = append(vs, Violation{"title", "title is required"})
	} else if utf8.RuneCountInString(t.Title) > 200 {
		vs = append(vs, Violation{"title", "title cannot exceed 200 characters"})
	}

	if utf8.RuneCountInString(t.Description) > 1000 {
		vs = append(vs, Violation{"description", "description cannot exceed 1000 characters"})
	}

	if !t.Priority.Valid() {
		vs = append(vs, Violation{"priority", "priority must be low, normal, or high"})
	}

	if utf8.RuneCountInString(t.ListName) > 100 {
		vs = append(vs, Violation{"listName", "list name cannot exceed 100 characters"})
	}

	if t.DueDate != nil && t.DueDate.IsZero() {
		vs = append(vs, Violation{"dueDate", "invalid due date"})
	}

	if t.ReminderDate != nil && t.ReminderDate.IsZero() {
		vs = append(vs, Violation{"reminderDate", "invalid reminder date"})
	}

	if t.RepeatType != "" && !t.RepeatType.Valid() {
		vs = append(vs, Violation{"repeatType", "repeat type must be daily, weekly, monthly, or yearly"})
	}

	if t.RepeatEnabled && t.RepeatInterval < 1 {
		vs = append(vs, Violation{"repeatInterval", "repeat interval is required when repeat is enabled"})
	}

	if t.RepeatEndDate != nil && t.RepeatEndDate.IsZero() {
		vs = append(vs, Violation{"repeatEndDate", "invalid repeat end date"})
	}

	return vs
}

// ValidateGroup checks every field constraint on a group. Name uniqueness
// needs the store and is enforced by the repository.
func ValidateGroup(g *TaskGroup) []Violation {
	var vs []Violation

	if g.Name == "" {
		vs = append(vs, Violation{"name", "group name is required"})
	} else if utf8.RuneCountInString(g.Name) > 100 {
		vs = append(vs, Violation{"name", "group name cannot exceed 100 characters"})
	}

	if g.Color != "" && !ValidHexColor(g.Color) {
		vs = append(vs, Violation{"color", "color must be a valid hex color code (e.g. #FF5733)"})
	}

	if utf8.RuneCountInString(g.Description) > 500 {
		vs = append(vs, Violation{"description", "description cannot exceed 500 characters"})
	}

	return vs
}
