package importer

import (
	"fmt"

	"github.com/timeleft/tasktracker/internal/repository"
	"github.com/timeleft/tasktracker/internal/service"
	"gopkg.in/yaml.v3"
)

// YAMLGroup is a task group in the YAML input.
type YAMLGroup struct {
	Name        string `yaml:"name"`
	Color       string `yaml:"color,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// YAMLTask is a single task in the YAML input. Group references a group by
// name, not id.
type YAMLTask struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	DueDate     string `yaml:"due_date,omitempty"`
	Priority    string `yaml:"priority,omitempty"`
	ListName    string `yaml:"list_name,omitempty"`
	Group       string `yaml:"group,omitempty"`
}

// YAMLInput is the root structure of the YAML input.
type YAMLInput struct {
	Groups []YAMLGroup `yaml:"groups,omitempty"`
	Tasks  []YAMLTask  `yaml:"tasks"`
}

// Import parses a YAML document and creates its groups and tasks through
// the service layer, so the usual validation and normalization apply.
// Groups already present (matched by name) are reused, not duplicated.
// Returns the number of tasks created.
func Import(svc *service.TaskService, groups *repository.TaskGroupRepository, data []byte) (int, error) {
	var input YAMLInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return 0, fmt.Errorf("parse YAML: %w", err)
	}

	if len(input.Tasks) == 0 && len(input.Groups) == 0 {
		return 0, fmt.Errorf("no groups or tasks found in YAML")
	}

	groupIDs := make(map[string]string)
	for _, yg := range input.Groups {
		id, err := ensureGroup(svc, groups, yg)
		if err != nil {
			return 0, err
		}
		groupIDs[yg.Name] = id
	}

	count := 0
	for _, yt := range input.Tasks {
		groupID := ""
		if yt.Group != "" {
			id, ok := groupIDs[yt.Group]
			if !ok {
				g, err := groups.GetByName(yt.Group)
				if err != nil {
					return count, fmt.Errorf("unknown group %q for task %q: %w", yt.Group, yt.Title, err)
				}
				id = g.ID
				groupIDs[yt.Group] = id
			}
			groupID = id
		}

		_, err := svc.CreateTask(service.TaskRequest{
			Title:       yt.Title,
			Description: yt.Description,
			DueDate:     yt.DueDate,
			Priority:    yt.Priority,
			ListName:    yt.ListName,
			GroupID:     groupID,
		})
		if err != nil {
			return count, fmt.Errorf("create task %q: %w", yt.Title, err)
		}
		count++
	}

	return count, nil
}

func ensureGroup(svc *service.TaskService, groups *repository.TaskGroupRepository, yg YAMLGroup) (string, error) {
	existing, err := groups.GetByName(yg.Name)
	if err == nil {
		return existing.ID, nil
	}
	if !repository.IsNotFound(err) {
		return "", fmt.Errorf("look up group %q: %w", yg.Name, err)
	}

	created, err := svc.CreateGroup(service.GroupRequest{
		Name:        yg.Name,
		Color:       yg.Color,
		Description: yg.Description,
	})
	if err != nil {
		return "", fmt.Errorf("create group %q: %w", yg.Name, err)
	}
	return created.ID, nil
}
