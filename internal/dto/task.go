package dto

import (
	"time"

	"github.com/yukikurage/taskbot/internal/models"
	"github.com/yukikurage/taskbot/internal/utils"
)

// AssigneeDTO represents a user or role reference in API responses
type AssigneeDTO struct {
	Kind models.AssigneeKind `json:"kind"`
	Ref  string              `json:"ref"`
}

// NotificationDTO represents a task reminder in API responses
type NotificationDTO struct {
	Rate int             `json:"rate"`
	Unit models.TimeUnit `json:"unit"`
}

// TaskDTO represents a task in API responses. Dates use dd/mm/yyyy.
type TaskDTO struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Done         bool             `json:"done"`
	StartDate    string           `json:"start_date"`
	EndDate      string           `json:"end_date,omitempty"`
	ExternalID   string           `json:"external_id,omitempty"`
	Assignees    []AssigneeDTO    `json:"assignees"`
	Notification *NotificationDTO `json:"notification,omitempty"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Done:        task.Done,
		StartDate:   models.FormatDate(&task.StartDate),
		EndDate:     models.FormatDate(task.EndDate),
		ExternalID:  task.ExternalIDValue(),
		Assignees:   make([]AssigneeDTO, 0, len(task.Assignees)),
		UpdatedAt:   task.UpdatedAt,
	}
	for _, a := range task.Assignees {
		dto.Assignees = append(dto.Assignees, AssigneeDTO{Kind: a.Kind, Ref: a.Ref})
	}
	if task.Notification != nil {
		dto.Notification = &NotificationDTO{
			Rate: task.Notification.Rate,
			Unit: task.Notification.Unit,
		}
	}
	return dto
}

// ToTaskDTOs converts a slice of Task models
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}
