package service

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/timeleft/tasktracker/internal/repository"
)

func newTestService(t *testing.T) *TaskService {
	t.Helper()
	db := repository.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { db.Disconnect() })
	return NewTaskService(repository.NewTaskRepository(db), repository.NewTaskGroupRepository(db))
}

func TestCreateTaskNormalizesDates(t *testing.T) {
	svc := newTestService(t)

	// A bare calendar date and a full timestamp for the same instant must
	// normalize identically.
	bare, err := svc.CreateTask(TaskRequest{Title: "bare", DueDate: "2026-03-05"})
	if err != nil {
		t.Fatalf("create with bare date: %v", err)
	}
	full, err := svc.CreateTask(TaskRequest{Title: "full", DueDate: "2026-03-05T00:00:00Z"})
	if err != nil {
		t.Fatalf("create with timestamp: %v", err)
	}

	want := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if bare.DueDate == nil || !bare.DueDate.Equal(want) {
		t.Errorf("bare date stored as %v, want %v", bare.DueDate, want)
	}
	if full.DueDate == nil || !full.DueDate.Equal(*bare.DueDate) {
		t.Errorf("timestamp %v and bare date %v normalized differently", full.DueDate, bare.DueDate)
	}
}

func TestCreateTaskRejectsBadDates(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.CreateTask(TaskRequest{
		Title:        "bad",
		DueDate:      "not-a-date",
		ReminderDate: "also-bad",
	})
	var ve *repository.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Violations) != 2 {
		t.Fatalf("expected violations for both dates, got %v", ve.Violations)
	}
	if ve.Violations[0].Field != "dueDate" || ve.Violations[1].Field != "reminderDate" {
		t.Errorf("unexpected violation fields: %v", ve.Violations)
	}

	// Nothing persisted.
	tasks, err := svc.ListTasks(true, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("rejected create persisted %d task(s)", len(tasks))
	}
}

func TestListTasksThreeValuedFilter(t *testing.T) {
	svc := newTestService(t)

	g, err := svc.CreateGroup(GroupRequest{Name: "G"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, err := svc.CreateTask(TaskRequest{Title: "grouped", GroupID: g.ID}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateTask(TaskRequest{Title: "free"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := svc.ListTasks(false, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("omitted filter: got %d tasks, want 2", len(all))
	}

	none := ""
	ungrouped, err := svc.ListTasks(false, &none)
	if err != nil {
		t.Fatalf("list ungrouped: %v", err)
	}
	if len(ungrouped) != 1 || ungrouped[0].Title != "free" {
		t.Errorf("null filter: got %d tasks", len(ungrouped))
	}

	grouped, err := svc.ListTasks(false, &g.ID)
	if err != nil {
		t.Fatalf("list grouped: %v", err)
	}
	if len(grouped) != 1 || grouped[0].Title != "grouped" {
		t.Errorf("id filter: got %d tasks", len(grouped))
	}
	if grouped[0].Group == nil || grouped[0].Group.Name != "G" {
		t.Error("group relation not inlined on listing")
	}
}

func TestUpdateTaskPartialContract(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateTask(TaskRequest{Title: "original", Priority: "high"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	completed := true
	due := "2026-06-01"
	got, err := svc.UpdateTask(created.ID, UpdateTaskRequest{
		Completed: &completed,
		DueDate:   &due,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if !got.Completed {
		t.Error("completed not applied")
	}
	if got.Title != "original" || got.Priority != "high" {
		t.Errorf("unsupplied fields touched: %q %s", got.Title, got.Priority)
	}
	if got.DueDate == nil || !got.DueDate.Equal(time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("due date = %v", got.DueDate)
	}

	badPriority := "urgent"
	if _, err := svc.UpdateTask(created.ID, UpdateTaskRequest{Priority: &badPriority}); !repository.IsValidation(err) {
		t.Errorf("expected validation failure for bad priority, got %v", err)
	}
}

func TestToggleAndDeleteContract(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateTask(TaskRequest{Title: "t"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	toggled, err := svc.ToggleTask(created.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !toggled.Completed {
		t.Error("toggle did not complete the task")
	}

	if err := svc.DeleteTask(created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.ToggleTask(created.ID); !repository.IsNotFound(err) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
}

func TestGroupContract(t *testing.T) {
	svc := newTestService(t)

	g, err := svc.CreateGroup(GroupRequest{Name: "Work", Color: "#abc"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	if _, err := svc.CreateTask(TaskRequest{Title: "t", GroupID: g.ID}); err != nil {
		t.Fatalf("create task: %v", err)
	}

	groups, err := svc.ListGroups()
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(groups) != 1 || groups[0].TaskCount != 1 {
		t.Errorf("group listing = %+v", groups)
	}

	desc := "office"
	updated, err := svc.UpdateGroup(g.ID, UpdateGroupRequest{Description: &desc})
	if err != nil {
		t.Fatalf("update group: %v", err)
	}
	if updated.Description != "office" || updated.Name != "Work" {
		t.Errorf("update group = %+v", updated)
	}

	if err := svc.DeleteGroup(g.ID); err != nil {
		t.Fatalf("delete group: %v", err)
	}
	if err := svc.DeleteGroup(g.ID); !repository.IsNotFound(err) {
		t.Errorf("expected NotFound on second delete, got %v", err)
	}
}
