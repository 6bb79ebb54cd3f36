package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/timeleft/tasktracker/internal/models"
)

const taskColumns = `id, title, description, completed, due_date, priority, list_name, group_id,
	reminder_enabled, reminder_date, repeat_enabled, repeat_type, repeat_interval, repeat_end_date,
	created_at, updated_at`

// Ascending by due date with undated tasks last, most recently created
// first within the same date.
const taskOrder = `ORDER BY (due_date IS NULL) ASC, due_date ASC, created_at DESC`

type CreateTaskInput struct {
	Title           string
	Description     string
	DueDate         *time.Time
	Priority        models.Priority
	ListName        string
	GroupID         string
	ReminderEnabled bool
	ReminderDate    *time.Time
	RepeatEnabled   bool
	RepeatType      models.RepeatType
	RepeatInterval  int
	RepeatEndDate   *time.Time
}

// UpdateTaskInput applies only non-nil fields. GroupID is the exception:
// it is re-normalized on every update, so an empty or absent value
// detaches the task from its group.
type UpdateTaskInput struct {
	Title           *string
	Description     *string
	Completed       *bool
	DueDate         *time.Time
	Priority        *models.Priority
	ListName        *string
	GroupID         string
	ReminderEnabled *bool
	ReminderDate    *time.Time
	RepeatEnabled   *bool
	RepeatType      *models.RepeatType
	RepeatInterval  *int
	RepeatEndDate   *time.Time
}

// GroupFilter narrows a task listing to one group. An empty ID selects
// tasks with no group; a nil *GroupFilter applies no group filter at all.
type GroupFilter struct {
	ID string
}

type TaskRepository struct {
	db *Database
}

func NewTaskRepository(db *Database) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create builds a task from input and persists it. Priority defaults to
// normal. GroupID is normalized: a non-empty string must resolve to an
// existing group, anything else is stored as explicit NULL.
func (r *TaskRepository) Create(input CreateTaskInput) (*models.Task, error) {
	db, err := r.db.Connect()
	if err != nil {
		return nil, err
	}

	t := &models.Task{
		ID:              uuid.NewString(),
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		DueDate:         input.DueDate,
		Priority:        input.Priority,
		ListName:        strings.TrimSpace(input.ListName),
		ReminderEnabled: input.ReminderEnabled,
		ReminderDate:    input.ReminderDate,
		RepeatEnabled:   input.RepeatEnabled,
		RepeatType:      input.RepeatType,
		RepeatInterval:  input.RepeatInterval,
		RepeatEndDate:   input.RepeatEndDate,
	}
	if t.Priority == "" {
		t.Priority = models.PriorityNormal
	}

	groupID, err := r.resolveGroupID(db, input.GroupID)
	if err != nil {
		return nil, err
	}
	t.GroupID = groupID

	if vs := models.ValidateTask(t); len(vs) > 0 {
		return nil, &ValidationError{Violations: vs}
	}

	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err = db.Exec(`
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		t.ID,
		t.Title,
		t.Description,
		t.Completed,
		encodeTimePtr(t.DueDate),
		t.Priority,
		t.ListName,
		t.GroupID,
		t.ReminderEnabled,
		encodeTimePtr(t.ReminderDate),
		t.RepeatEnabled,
		nullIfEmpty(string(t.RepeatType)),
		nullIfZero(t.RepeatInterval),
		encodeTimePtr(t.RepeatEndDate),
		encodeTime(t.CreatedAt),
		encodeTime(t.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	return r.load(db, t.ID, now)
}

// Get retrieves a task by id with its group inlined and derived fields
// populated.
func (r *TaskRepository) Get(id string) (*models.Task, error) {
	db, err := r.db.Connect()
	if err != nil {
		return nil, err
	}
	return r.load(db, id, time.Now())
}

// List returns tasks ordered by due date ascending (undated last), ties
// broken by creation time descending. Incomplete tasks only unless
// includeCompleted is set. See GroupFilter for the group semantics.
func (r *TaskRepository) List(includeCompleted bool, group *GroupFilter) ([]models.Task, error) {
	db, err := r.db.Connect()
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	var conds []string
	var args []any

	if !includeCompleted {
		conds = append(conds, "completed = 0")
	}
	if group != nil {
		if group.ID == "" {
			conds = append(conds, "group_id IS NULL")
		} else {
			conds = append(conds, "group_id = ?")
			args = append(args, group.ID)
		}
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " " + taskOrder

	return queryTasks(db, query, args...)
}

// Update applies only the supplied fields, re-validates the merged record
// and persists it.
func (r *TaskRepository) Update(id string, input UpdateTaskInput) (*models.Task, error) {
	db, err := r.db.Connect()
	if err != nil {
		return nil, err
	}

	t, err := r.fetch(db, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		t.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		t.Description = strings.TrimSpace(*input.Description)
	}
	if input.Completed != nil {
		t.Completed = *input.Completed
	}
	if input.DueDate != nil {
		t.DueDate = input.DueDate
	}
	if input.Priority != nil {
		t.Priority = *input.Priority
	}
	if input.ListName != nil {
		t.ListName = strings.TrimSpace(*input.ListName)
	}
	if input.ReminderEnabled != nil {
		t.ReminderEnabled = *input.ReminderEnabled
	}
	if input.ReminderDate != nil {
		t.ReminderDate = input.ReminderDate
	}
	if input.RepeatEnabled != nil {
		t.RepeatEnabled = *input.RepeatEnabled
	}
	if input.RepeatType != nil {
		t.RepeatType = *input.RepeatType
	}
	if input.RepeatInterval != nil {
		t.RepeatInterval = *input.RepeatInterval
	}
	if input.RepeatEndDate != nil {
		t.RepeatEndDate = input.RepeatEndDate
	}

	groupID, err := r.resolveGroupID(db, input.GroupID)
	if err != nil {
		return nil, err
	}
	t.GroupID = groupID

	if vs := models.ValidateTask(t); len(vs) > 0 {
		return nil, &ValidationError{Violations: vs}
	}

	now := time.Now()
	_, err = db.Exec(`
		UPDATE tasks SET
			title = ?, description = ?, completed = ?, due_date = ?, priority = ?, list_name = ?,
			group_id = ?, reminder_enabled = ?, reminder_date = ?, repeat_enabled = ?,
			repeat_type = ?, repeat_interval = ?, repeat_end_date = ?, updated_at = ?
		WHERE id = ?
	`,
		t.Title,
		t.Description,
		t.Completed,
		encodeTimePtr(t.DueDate),
		t.Priority,
		t.ListName,
		t.GroupID,
		t.ReminderEnabled,
		encodeTimePtr(t.ReminderDate),
		t.RepeatEnabled,
		nullIfEmpty(string(t.RepeatType)),
		nullIfZero(t.RepeatInterval),
		encodeTimePtr(t.RepeatEndDate),
		encodeTime(now),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	return r.load(db, id, now)
}

// Delete removes a task by id. Deleting a missing task is surfaced as
// NotFound rather than silently succeeding.
func (r *TaskRepository) Delete(id string) error {
	db, err := r.db.Connect()
	if err != nil {
		return err
	}

	result, err := db.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows affected: %w", err)
	}
	if rows == 0 {
		return &NotFoundError{Entity: "task", ID: id}
	}
	return nil
}

// ToggleComplete flips the completed flag. Toggling twice restores the
// original state.
func (r *TaskRepository) ToggleComplete(id string) (*models.Task, error) {
	return r.setCompleted(id, "completed = 1 - completed")
}

// MarkComplete sets the completed flag.
func (r *TaskRepository) MarkComplete(id string) (*models.Task, error) {
	return r.setCompleted(id, "completed = 1")
}

// MarkIncomplete clears the completed flag.
func (r *TaskRepository) MarkIncomplete(id string) (*models.Task, error) {
	return r.setCompleted(id, "completed = 0")
}

func (r *TaskRepository) setCompleted(id, assignment string) (*models.Task, error) {
	db, err := r.db.Connect()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result, err := db.Exec(
		"UPDATE tasks SET "+assignment+", updated_at = ? WHERE id = ?",
		encodeTime(now), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task completion: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update task completion rows affected: %w", err)
	}
	if rows == 0 {
		return nil, &NotFoundError{Entity: "task", ID: id}
	}

	return r.load(db, id, now)
}

// ListOverdue returns incomplete tasks whose due date falls on a calendar
// day strictly before today.
func (r *TaskRepository) ListOverdue() ([]models.Task, error) {
	return r.listDerived(func(t *models.Task) bool { return t.IsOverdue })
}

// ListDueToday returns incomplete tasks due on today's calendar date.
func (r *TaskRepository) ListDueToday() ([]models.Task, error) {
	return r.listDerived(func(t *models.Task) bool { return t.IsDueToday })
}

func (r *TaskRepository) listDerived(keep func(*models.Task) bool) ([]models.Task, error) {
	db, err := r.db.Connect()
	if err != nil {
		return nil, err
	}

	all, err := queryTasks(db,
		`SELECT `+taskColumns+` FROM tasks WHERE completed = 0 AND due_date IS NOT NULL `+taskOrder)
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	for i := range all {
		if keep(&all[i]) {
			tasks = append(tasks, all[i])
		}
	}
	return tasks, nil
}

// ListByPriority returns incomplete tasks with the given priority.
func (r *TaskRepository) ListByPriority(p models.Priority) ([]models.Task, error) {
	db, err := r.db.Connect()
	if err != nil {
		return nil, err
	}

	return queryTasks(db,
		`SELECT `+taskColumns+` FROM tasks WHERE completed = 0 AND priority = ? `+taskOrder, p)
}

// resolveGroupID normalizes a raw group reference: empty or blank input
// becomes nil (explicit "no group"), anything else must resolve to an
// existing group.
func (r *TaskRepository) resolveGroupID(db *sql.DB, raw string) (*string, error) {
	groupID := strings.TrimSpace(raw)
	if groupID == "" {
		return nil, nil
	}

	var exists int
	err := db.QueryRow("SELECT COUNT(*) FROM task_groups WHERE id = ?", groupID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check group reference: %w", err)
	}
	if exists == 0 {
		return nil, &InvalidReferenceError{GroupID: groupID}
	}
	return &groupID, nil
}

// fetch reads a raw task row without the group relation or derived fields.
func (r *TaskRepository) fetch(db *sql.DB, id string) (*models.Task, error) {
	row := db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "task", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// load reads a task and resolves its group relation as an explicit second
// lookup, then fills the derived fields relative to now.
func (r *TaskRepository) load(db *sql.DB, id string, now time.Time) (*models.Task, error) {
	t, err := r.fetch(db, id)
	if err != nil {
		return nil, err
	}

	if t.GroupID != nil {
		g, err := fetchGroup(db, *t.GroupID)
		if err != nil {
			return nil, err
		}
		t.Group = g
	}

	t.DeriveAt(now)
	return t, nil
}

func queryTasks(db *sql.DB, query string, args ...any) ([]models.Task, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	// Resolve group relations, one lookup per distinct group.
	groups := make(map[string]*models.TaskGroup)
	now := time.Now()
	for i := range tasks {
		if tasks[i].GroupID != nil {
			gid := *tasks[i].GroupID
			g, ok := groups[gid]
			if !ok {
				g, err = fetchGroup(db, gid)
				if err != nil {
					return nil, err
				}
				groups[gid] = g
			}
			tasks[i].Group = g
		}
		tasks[i].DeriveAt(now)
	}

	return tasks, nil
}

func scanTask(scanner interface{ Scan(...any) error }) (*models.Task, error) {
	var t models.Task
	var completed, reminderEnabled, repeatEnabled int
	var dueDate, reminderDate, repeatType, repeatEndDate, groupID sql.NullString
	var repeatInterval sql.NullInt64
	var createdAt, updatedAt string

	err := scanner.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&completed,
		&dueDate,
		&t.Priority,
		&t.ListName,
		&groupID,
		&reminderEnabled,
		&reminderDate,
		&repeatEnabled,
		&repeatType,
		&repeatInterval,
		&repeatEndDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Completed = completed != 0
	t.ReminderEnabled = reminderEnabled != 0
	t.RepeatEnabled = repeatEnabled != 0
	if groupID.Valid {
		t.GroupID = &groupID.String
	}
	if repeatType.Valid {
		t.RepeatType = models.RepeatType(repeatType.String)
	}
	if repeatInterval.Valid {
		t.RepeatInterval = int(repeatInterval.Int64)
	}

	for _, col := range []struct {
		src  sql.NullString
		dest **time.Time
	}{
		{dueDate, &t.DueDate},
		{reminderDate, &t.ReminderDate},
		{repeatEndDate, &t.RepeatEndDate},
	} {
		if !col.src.Valid {
			continue
		}
		parsed, err := decodeTime(col.src.String)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", col.src.String, err)
		}
		*col.dest = &parsed
	}

	if t.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if t.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &t, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullIfZero(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
