package dto

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	StartDate   time.Time            `json:"start_date"`
	EndDate     *time.Time           `json:"end_date"`
	ManagerID   uint64               `json:"manager_id"`
	TeamID      *uint64              `json:"team_id"`
	Manager     *UserRefDTO          `json:"manager,omitempty"`
	Members     []UserRefDTO         `json:"members,omitempty"`
	TaskIDs     []uint64             `json:"task_ids,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// ToProjectDTO converts a Project model to ProjectDTO. Referenced
// users appear only when the caller preloaded them.
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Status:      project.Status,
		StartDate:   project.StartDate,
		EndDate:     project.EndDate,
		ManagerID:   project.ManagerID,
		TeamID:      project.TeamID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}

	if project.Manager.ID != 0 {
		manager := ToUserRefDTO(project.Manager)
		dto.Manager = &manager
	}

	if len(project.Members) > 0 {
		dto.Members = make([]UserRefDTO, len(project.Members))
		for i, member := range project.Members {
			dto.Members[i] = ToUserRefDTO(member.User)
		}
	}

	if len(project.Tasks) > 0 {
		dto.TaskIDs = make([]uint64, len(project.Tasks))
		for i, task := range project.Tasks {
			dto.TaskIDs[i] = task.ID
		}
	}

	return dto
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		dtos[i] = ToProjectDTO(project)
	}
	return dtos
}
