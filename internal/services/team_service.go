package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameRequired = errors.New("team name is required")
	ErrTeamNameTaken    = errors.New("team name already exists")
)

// TeamService handles team business logic and the role-scoped
// visibility rules.
type TeamService struct {
	teamRepo    repository.TeamRepository
	projectRepo repository.ProjectRepository
}

// NewTeamService creates a new TeamService.
func NewTeamService(teamRepo repository.TeamRepository, projectRepo repository.ProjectRepository) *TeamService {
	return &TeamService{
		teamRepo:    teamRepo,
		projectRepo: projectRepo,
	}
}

// ListTeams returns the teams visible to the caller: everything for
// admins, managed teams for managers, membership for users.
func (s *TeamService) ListTeams(actor *auth.Identity, page, pageSize int) ([]models.Team, int64, error) {
	filter := repository.TeamFilter{Page: page, PageSize: pageSize}

	switch actor.Role {
	case models.RoleAdmin:
		// no scoping
	case models.RoleManager:
		filter.ManagerID = &actor.ID
	case models.RoleUser:
		filter.MemberID = &actor.ID
	}

	teams, total, err := s.teamRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, total, nil
}

// GetTeam returns one team if the caller may see it.
func (s *TeamService) GetTeam(actor *auth.Identity, id uint64) (*models.Team, error) {
	team, err := s.findTeam(id, "Manager", "Members.User")
	if err != nil {
		return nil, err
	}

	if !canSeeTeam(actor, team) {
		return nil, ErrForbidden
	}

	return team, nil
}

// CreateTeamInput represents input for creating a team. The team is
// attached to an existing project of the caller.
type CreateTeamInput struct {
	Name               string
	ProjectID          uint64
	MemberIDs          []uint64
	AvailableResources []string
}

// CreateTeam creates a team managed by the caller and attaches it to
// the referenced project. The project must exist before any permission
// decision, and a manager may only attach teams to projects they manage.
func (s *TeamService) CreateTeam(actor *auth.Identity, input CreateTeamInput) (*models.Team, error) {
	if actor.Role == models.RoleUser {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTeamNameRequired
	}
	if len(input.MemberIDs) == 0 {
		return nil, ErrMembersRequired
	}

	project, err := s.projectRepo.FindByID(input.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if actor.Role == models.RoleManager && project.ManagerID != actor.ID {
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(input.Name)
	if _, err := s.teamRepo.FindByName(name); err == nil {
		return nil, ErrTeamNameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check team name: %w", err)
	}

	memberIDs := uniqueUint64(input.MemberIDs)
	count, err := s.projectRepo.CountUsersByIDs(memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to verify members: %w", err)
	}
	if int(count) != len(memberIDs) {
		return nil, ErrUnknownMembers
	}

	managerID := actor.ID
	team := &models.Team{
		Name:               name,
		ManagerID:          &managerID,
		AvailableResources: input.AvailableResources,
	}

	if err := s.teamRepo.Create(team, memberIDs); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	project.TeamID = &team.ID
	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to attach team to project: %w", err)
	}

	return s.teamRepo.FindByID(team.ID, "Manager", "Members.User")
}

// UpdateTeamInput carries the allow-listed team fields. Anything
// outside this set in the request body is ignored.
type UpdateTeamInput struct {
	Name               *string
	MemberIDs          []uint64
	AvailableResources []string
}

// UpdateTeam applies the allow-listed fields if the caller may mutate
// the team (admin, or the managing manager).
func (s *TeamService) UpdateTeam(actor *auth.Identity, id uint64, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.findTeam(id)
	if err != nil {
		return nil, err
	}

	if !canMutateTeam(actor, team) {
		return nil, ErrForbidden
	}

	// Validate the member list before touching the row so a bad list
	// cannot leave the scalar changes half-applied.
	var memberIDs []uint64
	if input.MemberIDs != nil {
		if len(input.MemberIDs) == 0 {
			return nil, ErrMembersRequired
		}
		memberIDs = uniqueUint64(input.MemberIDs)
		count, err := s.projectRepo.CountUsersByIDs(memberIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to verify members: %w", err)
		}
		if int(count) != len(memberIDs) {
			return nil, ErrUnknownMembers
		}
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		if name != team.Name {
			if _, err := s.teamRepo.FindByName(name); err == nil {
				return nil, ErrTeamNameTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to check team name: %w", err)
			}
		}
		team.Name = name
	}
	if input.AvailableResources != nil {
		team.AvailableResources = input.AvailableResources
	}

	if err := s.teamRepo.Update(team); err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}

	if memberIDs != nil {
		if err := s.teamRepo.ReplaceMembers(team.ID, memberIDs); err != nil {
			return nil, fmt.Errorf("failed to replace members: %w", err)
		}
	}

	return s.teamRepo.FindByID(team.ID, "Manager", "Members.User")
}

// DeleteTeam removes a team if the caller may mutate it.
func (s *TeamService) DeleteTeam(actor *auth.Identity, id uint64) error {
	team, err := s.findTeam(id)
	if err != nil {
		return err
	}

	if !canMutateTeam(actor, team) {
		return ErrForbidden
	}

	if err := s.teamRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return nil
}

func (s *TeamService) findTeam(id uint64, preload ...string) (*models.Team, error) {
	team, err := s.teamRepo.FindByID(id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

func canSeeTeam(actor *auth.Identity, team *models.Team) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return team.ManagerID != nil && *team.ManagerID == actor.ID
	case models.RoleUser:
		for _, m := range team.Members {
			if m.UserID == actor.ID {
				return true
			}
		}
		return false
	}
	return false
}

func canMutateTeam(actor *auth.Identity, team *models.Team) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return team.ManagerID != nil && *team.ManagerID == actor.ID
	case models.RoleUser:
		return false
	}
	return false
}
