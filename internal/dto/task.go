package dto

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
)

// TaskCommentDTO represents a task comment in API responses
type TaskCommentDTO struct {
	ID        uint64      `json:"id"`
	Message   string      `json:"message"`
	User      *UserRefDTO `json:"user,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID             uint64              `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Status         models.TaskStatus   `json:"status"`
	Priority       models.TaskPriority `json:"priority"`
	ProjectID      uint64              `json:"project_id"`
	AssignerID     uint64              `json:"assigner_id"`
	EstimatedHours *float64            `json:"estimated_hours"`
	TimeSpent      float64             `json:"time_spent"`
	DueDate        *time.Time          `json:"due_date"`
	Assigner       *UserRefDTO         `json:"assigner,omitempty"`
	Assignees      []UserRefDTO        `json:"assignees,omitempty"`
	Comments       []TaskCommentDTO    `json:"comments,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// ToTaskDTO converts a Task model to TaskDTO. Referenced users and
// comments appear only when the caller preloaded them.
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:             task.ID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         task.Status,
		Priority:       task.Priority,
		ProjectID:      task.ProjectID,
		AssignerID:     task.AssignerID,
		EstimatedHours: task.EstimatedHours,
		TimeSpent:      task.TimeSpent,
		DueDate:        task.DueDate,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}

	if task.Assigner.ID != 0 {
		assigner := ToUserRefDTO(task.Assigner)
		dto.Assigner = &assigner
	}

	if len(task.Assignees) > 0 {
		dto.Assignees = make([]UserRefDTO, len(task.Assignees))
		for i, assignee := range task.Assignees {
			dto.Assignees[i] = ToUserRefDTO(assignee.User)
		}
	}

	if len(task.Comments) > 0 {
		dto.Comments = make([]TaskCommentDTO, len(task.Comments))
		for i, comment := range task.Comments {
			dto.Comments[i] = ToTaskCommentDTO(comment)
		}
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}

// ToTaskCommentDTO converts a TaskComment model to TaskCommentDTO
func ToTaskCommentDTO(comment models.TaskComment) TaskCommentDTO {
	dto := TaskCommentDTO{
		ID:        comment.ID,
		Message:   comment.Message,
		CreatedAt: comment.CreatedAt,
	}
	if comment.User.ID != 0 {
		user := ToUserRefDTO(comment.User)
		dto.User = &user
	}
	return dto
}
