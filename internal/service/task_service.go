package service

import (
	"strings"
	"time"

	"github.com/timeleft/tasktracker/internal/models"
	"github.com/timeleft/tasktracker/internal/repository"
)

// TaskService is the boundary facade consumed by the UI layer. Identifiers
// cross it as opaque strings and dates as ISO-8601 strings; both
// representations are normalized here before reaching the repositories.
type TaskService struct {
	tasks  *repository.TaskRepository
	groups *repository.TaskGroupRepository
}

func NewTaskService(tasks *repository.TaskRepository, groups *repository.TaskGroupRepository) *TaskService {
	return &TaskService{
		tasks:  tasks,
		groups: groups,
	}
}

type TaskRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	DueDate         string `json:"dueDate,omitempty"`
	Priority        string `json:"priority,omitempty"`
	ListName        string `json:"listName,omitempty"`
	GroupID         string `json:"groupId,omitempty"`
	ReminderEnabled bool   `json:"reminderEnabled,omitempty"`
	ReminderDate    string `json:"reminderDate,omitempty"`
	RepeatEnabled   bool   `json:"repeatEnabled,omitempty"`
	RepeatType      string `json:"repeatType,omitempty"`
	RepeatInterval  int    `json:"repeatInterval,omitempty"`
	RepeatEndDate   string `json:"repeatEndDate,omitempty"`
}

// UpdateTaskRequest carries a partial update: nil fields are left
// untouched. GroupID follows the create normalization, so omitting it
// detaches the task.
type UpdateTaskRequest struct {
	Title           *string `json:"title,omitempty"`
	Description     *string `json:"description,omitempty"`
	Completed       *bool   `json:"completed,omitempty"`
	DueDate         *string `json:"dueDate,omitempty"`
	Priority        *string `json:"priority,omitempty"`
	ListName        *string `json:"listName,omitempty"`
	GroupID         string  `json:"groupId,omitempty"`
	ReminderEnabled *bool   `json:"reminderEnabled,omitempty"`
	ReminderDate    *string `json:"reminderDate,omitempty"`
	RepeatEnabled   *bool   `json:"repeatEnabled,omitempty"`
	RepeatType      *string `json:"repeatType,omitempty"`
	RepeatInterval  *int    `json:"repeatInterval,omitempty"`
	RepeatEndDate   *string `json:"repeatEndDate,omitempty"`
}

type GroupRequest struct {
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}

type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty"`
	Color       *string `json:"color,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ListTasks returns ordered tasks. groupFilter is three-valued: nil means
// no group filter, a pointer to an empty string selects only ungrouped
// tasks, and a concrete id selects that group.
func (s *TaskService) ListTasks(includeCompleted bool, groupFilter *string) ([]models.Task, error) {
	var filter *repository.GroupFilter
	if groupFilter != nil {
		filter = &repository.GroupFilter{ID: strings.TrimSpace(*groupFilter)}
	}
	return s.tasks.List(includeCompleted, filter)
}

func (s *TaskService) CreateTask(req TaskRequest) (*models.Task, error) {
	var vs []models.Violation
	due := parseDate("dueDate", req.DueDate, &vs)
	reminder := parseDate("reminderDate", req.ReminderDate, &vs)
	repeatEnd := parseDate("repeatEndDate", req.RepeatEndDate, &vs)
	if len(vs) > 0 {
		return nil, &repository.ValidationError{Violations: vs}
	}

	return s.tasks.Create(repository.CreateTaskInput{
		Title:           req.Title,
		Description:     req.Description,
		DueDate:         due,
		Priority:        models.Priority(req.Priority),
		ListName:        req.ListName,
		GroupID:         req.GroupID,
		ReminderEnabled: req.ReminderEnabled,
		ReminderDate:    reminder,
		RepeatEnabled:   req.RepeatEnabled,
		RepeatType:      models.RepeatType(req.RepeatType),
		RepeatInterval:  req.RepeatInterval,
		RepeatEndDate:   repeatEnd,
	})
}

func (s *TaskService) UpdateTask(id string, req UpdateTaskRequest) (*models.Task, error) {
	var vs []models.Violation
	input := repository.UpdateTaskInput{
		Title:           req.Title,
		Description:     req.Description,
		Completed:       req.Completed,
		ListName:        req.ListName,
		GroupID:         req.GroupID,
		ReminderEnabled: req.ReminderEnabled,
		RepeatEnabled:   req.RepeatEnabled,
		RepeatInterval:  req.RepeatInterval,
	}

	if req.DueDate != nil {
		input.DueDate = parseDate("dueDate", *req.DueDate, &vs)
	}
	if req.ReminderDate != nil {
		input.ReminderDate = parseDate("reminderDate", *req.ReminderDate, &vs)
	}
	if req.RepeatEndDate != nil {
		input.RepeatEndDate = parseDate("repeatEndDate", *req.RepeatEndDate, &vs)
	}
	if len(vs) > 0 {
		return nil, &repository.ValidationError{Violations: vs}
	}

	if req.Priority != nil {
		p := models.Priority(*req.Priority)
		input.Priority = &p
	}
	if req.RepeatType != nil {
		rt := models.RepeatType(*req.RepeatType)
		input.RepeatType = &rt
	}

	return s.tasks.Update(id, input)
}

func (s *TaskService) DeleteTask(id string) error {
	return s.tasks.Delete(id)
}

func (s *TaskService) ToggleTask(id string) (*models.Task, error) {
	return s.tasks.ToggleComplete(id)
}

func (s *TaskService) ListGroups() ([]models.TaskGroup, error) {
	return s.groups.List()
}

func (s *TaskService) CreateGroup(req GroupRequest) (*models.TaskGroup, error) {
	return s.groups.Create(repository.CreateGroupInput{
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	})
}

func (s *TaskService) UpdateGroup(id string, req UpdateGroupRequest) (*models.TaskGroup, error) {
	return s.groups.Update(id, repository.UpdateGroupInput{
		Name:        req.Name,
		Color:       req.Color,
		Description: req.Description,
	})
}

func (s *TaskService) DeleteGroup(id string) error {
	return s.groups.Delete(id)
}

// parseDate accepts an RFC 3339 timestamp or a bare calendar date. An
// empty value means "not set"; an unparseable one is recorded as a
// violation on the given field.
func parseDate(field, value string, vs *[]models.Violation) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	*vs = append(*vs, models.Violation{Field: field, Message: "invalid date: " + value})
	return nil
}
