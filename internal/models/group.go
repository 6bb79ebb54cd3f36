package models

import (
	"math/rand/v2"
	"regexp"
	"time"
)

// TaskGroup is a named, colored category that tasks may optionally belong
// to. TaskCount is derived from the current task set when listing groups;
// it is not stored.
type TaskGroup struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	TaskCount   int       `json:"taskCount"`
}

// groupPalette is the fixed set of colors assigned to groups created
// without an explicit color.
var groupPalette = []string{
	"#6366f1", "#8b5cf6", "#ec4899", "#f43f5e", "#ef4444",
	"#f97316", "#f59e0b", "#eab308", "#84cc16", "#22c55e",
	"#10b981", "#14b8a6", "#06b6d4", "#0ea5e9", "#3b82f6",
}

var hexColorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// RandomColor picks a palette color for groups created without one.
func RandomColor() string {
	return groupPalette[rand.IntN(len(groupPalette))]
}

// ValidHexColor reports whether s is a #RGB or #RRGGBB color code.
func ValidHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}
