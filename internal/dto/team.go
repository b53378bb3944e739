package dto

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
)

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID                 uint64       `json:"id"`
	Name               string       `json:"name"`
	ManagerID          *uint64      `json:"manager_id"`
	AvailableResources []string     `json:"available_resources"`
	Manager            *UserRefDTO  `json:"manager,omitempty"`
	Members            []UserRefDTO `json:"members,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// ToTeamDTO converts a Team model to TeamDTO. Referenced users appear
// only when the caller preloaded them.
func ToTeamDTO(team models.Team) TeamDTO {
	resources := team.AvailableResources
	if resources == nil {
		resources = []string{}
	}

	dto := TeamDTO{
		ID:                 team.ID,
		Name:               team.Name,
		ManagerID:          team.ManagerID,
		AvailableResources: resources,
		CreatedAt:          team.CreatedAt,
		UpdatedAt:          team.UpdatedAt,
	}

	if team.Manager != nil && team.Manager.ID != 0 {
		manager := ToUserRefDTO(*team.Manager)
		dto.Manager = &manager
	}

	if len(team.Members) > 0 {
		dto.Members = make([]UserRefDTO, len(team.Members))
		for i, member := range team.Members {
			dto.Members[i] = ToUserRefDTO(member.User)
		}
	}

	return dto
}

// ToTeamDTOs converts a slice of teams
func ToTeamDTOs(teams []models.Team) []TeamDTO {
	dtos := make([]TeamDTO, len(teams))
	for i, team := range teams {
		dtos[i] = ToTeamDTO(team)
	}
	return dtos
}
