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

const groupColumns = `id, name, color, description, created_at, updated_at`

type CreateGroupInput struct {
	Name        string
	Color       string
	Description string
}

// UpdateGroupInput applies only non-nil fields.
type UpdateGroupInput struct {
	Name        *string
	Color       *string
	Description *string
}

type TaskGroupRepository struct {
	db *Database
}

func NewTaskGroupRepository(db *Database) *TaskGroupRepository {
	return &TaskGroupRepository{db: db}
}

// Create persists a new group. A missing color is assigned from the fixed
// palette before validation; an invalid color is rejected, never
// corrected. Names must be unique across all groups.
func (r *TaskGroupRepository) Create(input CreateGroupInput) (*models.TaskGroup, error) {
	db, err := r.db.Connect()
	if err != nil {
		return nil, err
	}

	g := &models.TaskGroup{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Color:       strings.TrimSpace(input.Color),
		Description: strings.TrimSpace(input.Description),
	}
	if g.Color == "" {
		g.Color = models.RandomColor()
	}

	if vs := models.ValidateGroup(g); len(vs) > 0 {
		return nil, &ValidationError{Violations: vs}
	}

	taken, err := r.nameTaken(db, g.Name, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &ValidationError{Violations: []models.Violation{
			{Field: "name", Message: fmt.Sprintf("group name %q is already in use", g.Name)},
		}}
	}

	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now

	_, err = db.Exec(`
		INSERT INTO task_groups (`+groupColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, g.ID, g.Name, g.Color, g.Description, encodeTime(g.CreatedAt), encodeTime(g.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert task group: %w", err)
	}

	return r.Get(g.ID)
}

// Get retrieves a group by id.
func (r *TaskGroupRepository) Get(id string) (*models.TaskGroup, error) {
	db, err := r.db.Connect()
	if err != nil {
		return nil, err
	}
	return fetchGroup(db, id)
}

// GetByName retrieves a group by name, matched case-insensitively.
func (r *TaskGroupRepository) GetByName(name string) (*models.TaskGroup, error) {
	db, err := r.db.Connect()
	if err != nil {
		return nil, err
	}

	row := db.QueryRow(
		`SELECT `+groupColumns+` FROM task_groups WHERE name = ? COLLATE NOCASE`,
		strings.TrimSpace(name),
	)
	g, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "task group", ID: name}
	}
	if err != nil {
		return nil, fmt.Errorf("get task group by name: %w", err)
	}
	return g, nil
}

// List returns all groups ordered by name ascending, each annotated with
// the number of tasks currently referencing it. The count is an
// aggregation over the live task set, not a stored counter.
func (r *TaskGroupRepository) List() ([]models.TaskGroup, error) {
	db, err := r.db.Connect()
	if err != nil {
		return nil, err
	}

	rows, err := db.Query(`
		SELECT g.id, g.name, g.color, g.description, g.created_at, g.updated_at, COUNT(t.id)
		FROM task_groups g
		LEFT JOIN tasks t ON t.group_id = g.id
		GROUP BY g.id
		ORDER BY g.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query task groups: %w", err)
	}
	defer rows.Close()

	var groups []models.TaskGroup
	for rows.Next() {
		var g models.TaskGroup
		var createdAt, updatedAt string
		err := rows.Scan(&g.ID, &g.Name, &g.Color, &g.Description, &createdAt, &updatedAt, &g.TaskCount)
		if err != nil {
			return nil, fmt.Errorf("scan task group: %w", err)
		}
		if g.CreatedAt, err = decodeTime(createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if g.UpdatedAt, err = decodeTime(updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task groups: %w", err)
	}

	return groups, nil
}

// Update applies only the supplied fields under the same uniqueness and
// color rules as Create. An empty color leaves the stored color untouched.
func (r *TaskGroupRepository) Update(id string, input UpdateGroupInput) (*models.TaskGroup, error) {
	db, err := r.db.Connect()
	if err != nil {
		return nil, err
	}

	g, err := fetchGroup(db, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		g.Name = strings.TrimSpace(*input.Name)
	}
	if input.Color != nil && strings.TrimSpace(*input.Color) != "" {
		g.Color = strings.TrimSpace(*input.Color)
	}
	if input.Description != nil {
		g.Description = strings.TrimSpace(*input.Description)
	}

	if vs := models.ValidateGroup(g); len(vs) > 0 {
		return nil, &ValidationError{Violations: vs}
	}

	taken, err := r.nameTaken(db, g.Name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &ValidationError{Violations: []models.Violation{
			{Field: "name", Message: fmt.Sprintf("group name %q is already in use", g.Name)},
		}}
	}

	now := time.Now()
	_, err = db.Exec(`
		UPDATE task_groups SET name = ?, color = ?, description = ?, updated_at = ?
		WHERE id = ?
	`, g.Name, g.Color, g.Description, encodeTime(now), id)
	if err != nil {
		return nil, fmt.Errorf("update task group: %w", err)
	}

	return r.Get(id)
}

// Delete removes a group in two steps: detach every task referencing it,
// then delete the group record. The detach must run first so an
// interruption between steps can only leave an orphan group with no
// tasks, never a task pointing at a missing group.
func (r *TaskGroupRepository) Delete(id string) error {
	db, err := r.db.Connect()
	if err != nil {
		return err
	}

	if _, err := fetchGroup(db, id); err != nil {
		return err
	}

	_, err = db.Exec(
		"UPDATE tasks SET group_id = NULL, updated_at = ? WHERE group_id = ?",
		encodeTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("detach tasks from group: %w", err)
	}

	result, err := db.Exec("DELETE FROM task_groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task group: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task group rows affected: %w", err)
	}
	if rows == 0 {
		return &NotFoundError{Entity: "task group", ID: id}
	}
	return nil
}

// Tasks returns the tasks referencing the group, incomplete only unless
// includeCompleted is set.
func (r *TaskGroupRepository) Tasks(id string, includeCompleted bool) ([]models.Task, error) {
	db, err := r.db.Connect()
	if err != nil {
		return nil, err
	}

	if _, err := fetchGroup(db, id); err != nil {
		return nil, err
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE group_id = ?`
	if !includeCompleted {
		query += ` AND completed = 0`
	}
	query += ` ` + taskOrder

	return queryTasks(db, query, id)
}

func (r *TaskGroupRepository) nameTaken(db *sql.DB, name, excludeID string) (bool, error) {
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM task_groups WHERE name = ? AND id <> ?",
		name, excludeID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check group name uniqueness: %w", err)
	}
	return count > 0, nil
}

func fetchGroup(db *sql.DB, id string) (*models.TaskGroup, error) {
	row := db.QueryRow(`SELECT `+groupColumns+` FROM task_groups WHERE id = ?`, id)
	g, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: "task group", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get task group: %w", err)
	}
	return g, nil
}

func scanGroup(scanner interface{ Scan(...any) error }) (*models.TaskGroup, error) {
	var g models.TaskGroup
	var createdAt, updatedAt string

	err := scanner.Scan(&g.ID, &g.Name, &g.Color, &g.Description, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if g.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if g.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &g, nil
}
