package importer

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/timeleft/tasktracker/internal/repository"
	"github.com/timeleft/tasktracker/internal/service"
)

func newTestImporter(t *testing.T) (*service.TaskService, *repository.TaskGroupRepository) {
	t.Helper()
	db := repository.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	t.Cleanup(func() { db.Disconnect() })
	groups := repository.NewTaskGroupRepository(db)
	svc := service.NewTaskService(repository.NewTaskRepository(db), groups)
	return svc, groups
}

const sampleYAML = `
groups:
  - name: Work
    color: "#FF5733"
  - name: Home
tasks:
  - title: Ship the report
    due_date: 2026-03-05
    priority: high
    group: Work
  - title: Water the plants
    group: Home
  - title: Ungrouped errand
    list_name: errands
`

func TestImport(t *testing.T) {
	svc, groups := newTestImporter(t)

	n, err := Import(svc, groups, []byte(sampleYAML))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 3 {
		t.Errorf("imported %d tasks, want 3", n)
	}

	gs, err := svc.ListGroups()
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(gs) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(gs))
	}

	work, err := groups.GetByName("Work")
	if err != nil {
		t.Fatalf("get Work: %v", err)
	}
	if work.Color != "#FF5733" {
		t.Errorf("Work color = %q", work.Color)
	}

	tasks, err := svc.ListTasks(true, &work.ID)
	if err != nil {
		t.Fatalf("list Work tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Ship the report" {
		t.Errorf("Work tasks = %+v", tasks)
	}
	if tasks[0].DueDate == nil {
		t.Error("due date not parsed")
	}
}

func TestImportReusesExistingGroups(t *testing.T) {
	svc, groups := newTestImporter(t)

	existing, err := svc.CreateGroup(service.GroupRequest{Name: "Work", Color: "#abc"})
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	doc := `
groups:
  - name: work
tasks:
  - title: Reuse me
    group: work
`
	if _, err := Import(svc, groups, []byte(doc)); err != nil {
		t.Fatalf("import: %v", err)
	}

	gs, err := svc.ListGroups()
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(gs) != 1 {
		t.Fatalf("import duplicated an existing group: %d groups", len(gs))
	}
	if gs[0].ID != existing.ID || gs[0].TaskCount != 1 {
		t.Errorf("group = %+v", gs[0])
	}
}

func TestImportUnknownGroupFails(t *testing.T) {
	svc, groups := newTestImporter(t)

	doc := `
tasks:
  - title: Lost task
    group: Nowhere
`
	_, err := Import(svc, groups, []byte(doc))
	if err == nil || !strings.Contains(err.Error(), "Nowhere") {
		t.Errorf("expected unknown-group error, got %v", err)
	}
}

func TestImportEmptyDocumentFails(t *testing.T) {
	svc, groups := newTestImporter(t)

	if _, err := Import(svc, groups, []byte("{}")); err == nil {
		t.Error("expected error for empty document")
	}
	if _, err := Import(svc, groups, []byte(":::")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
