package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
)

var (
	// ErrForbidden is shared by the entity services for every
	// role/ownership check that fails.
	ErrForbidden = errors.New("permission denied")

	ErrProjectNotFound     = errors.New("project not found")
	ErrProjectNameRequired = errors.New("project name is required")
	ErrMembersRequired     = errors.New("at least one member is required")
	ErrUnknownMembers      = errors.New("one or more members do not exist")
)

// ProjectService handles project business logic and the role-scoped
// visibility rules.
type ProjectService struct {
	projectRepo repository.ProjectRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo}
}

// ListProjects returns the projects visible to the caller: everything
// for admins, managed projects for managers, membership for users.
func (s *ProjectService) ListProjects(actor *auth.Identity, page, pageSize int) ([]models.Project, int64, error) {
	filter := repository.ProjectFilter{Page: page, PageSize: pageSize}

	switch actor.Role {
	case models.RoleAdmin:
		// no scoping
	case models.RoleManager:
		filter.ManagerID = &actor.ID
	case models.RoleUser:
		filter.MemberID = &actor.ID
	}

	projects, total, err := s.projectRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// GetProject returns one project if the caller may see it.
func (s *ProjectService) GetProject(actor *auth.Identity, id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id, "Manager", "Team", "Members.User", "Tasks")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if !canSeeProject(actor, project) {
		return nil, ErrForbidden
	}

	return project, nil
}

// CreateProjectInput represents input for creating a project.
type CreateProjectInput struct {
	Name        string
	Description string
	Status      models.ProjectStatus
	StartDate   time.Time
	EndDate     *time.Time
	TeamID      *uint64
	MemberIDs   []uint64
}

// CreateProject creates a project managed by the caller. The caller's
// role is admin or manager; plain users are rejected.
func (s *ProjectService) CreateProject(actor *auth.Identity, input CreateProjectInput) (*models.Project, error) {
	if actor.Role == models.RoleUser {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrProjectNameRequired
	}
	if len(input.MemberIDs) == 0 {
		return nil, ErrMembersRequired
	}

	memberIDs := uniqueUint64(input.MemberIDs)
	count, err := s.projectRepo.CountUsersByIDs(memberIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to verify members: %w", err)
	}
	if int(count) != len(memberIDs) {
		return nil, ErrUnknownMembers
	}

	status := input.Status
	if status == "" {
		status = models.ProjectStatusPlanning
	}

	project := &models.Project{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Status:      status,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		ManagerID:   actor.ID,
		TeamID:      input.TeamID,
	}

	if err := s.projectRepo.Create(project, memberIDs); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.projectRepo.FindByID(project.ID, "Manager", "Members.User")
}

// UpdateProjectInput carries the allow-listed project fields. Anything
// outside this set in the request body is ignored.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
	TeamID      *uint64
	MemberIDs   []uint64
}

// UpdateProject applies the allow-listed fields if the caller may
// mutate the project (admin, or the managing manager).
func (s *ProjectService) UpdateProject(actor *auth.Identity, id uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if !canMutateProject(actor, project) {
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
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrProjectNameRequired
		}
		project.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		project.Status = *input.Status
	}
	if input.StartDate != nil {
		project.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		project.EndDate = input.EndDate
	}
	if input.TeamID != nil {
		project.TeamID = input.TeamID
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	if memberIDs != nil {
		if err := s.projectRepo.ReplaceMembers(project.ID, memberIDs); err != nil {
			return nil, fmt.Errorf("failed to replace members: %w", err)
		}
	}

	return s.projectRepo.FindByID(project.ID, "Manager", "Members.User")
}

// DeleteProject removes a project if the caller may mutate it.
func (s *ProjectService) DeleteProject(actor *auth.Identity, id uint64) error {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if !canMutateProject(actor, project) {
		return ErrForbidden
	}

	if err := s.projectRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

func canSeeProject(actor *auth.Identity, project *models.Project) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return project.ManagerID == actor.ID
	case models.RoleUser:
		for _, m := range project.Members {
			if m.UserID == actor.ID {
				return true
			}
		}
		return false
	}
	return false
}

func canMutateProject(actor *auth.Identity, project *models.Project) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return project.ManagerID == actor.ID
	case models.RoleUser:
		return false
	}
	return false
}

// uniqueUint64 removes duplicate values from a slice of uint64.
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
