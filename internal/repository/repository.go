package repository

import (
	"time"

	"github.com/taskflow/taskflow-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email (emails are stored lowercased)
	FindByEmail(email string) (*models.User, error)

	// Update persists changes to a user
	Update(user *models.User) error

	// List retrieves users with pagination
	List(page, pageSize int) ([]models.User, int64, error)

	// Delete soft deletes a user
	Delete(id uint64) error
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	ManagerID *uint64
	MemberID  *uint64
	Page      int
	PageSize  int
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a project together with its member rows
	Create(project *models.Project, memberIDs []uint64) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// List retrieves projects matching the filter
	List(filter ProjectFilter) ([]models.Project, int64, error)

	// Update persists changes to a project
	Update(project *models.Project) error

	// ReplaceMembers replaces the project's member set
	ReplaceMembers(projectID uint64, memberIDs []uint64) error

	// Delete removes a project with its tasks and member rows
	Delete(id uint64) error

	// CountUsersByIDs counts how many of the given user IDs exist
	CountUsersByIDs(userIDs []uint64) (int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID        *uint64
	ProjectManagerID *uint64
	AssignedUserID   *uint64
	Status           *models.TaskStatus
	Page             int
	PageSize         int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a task together with its assignee rows
	Create(task *models.Task, assigneeIDs []uint64) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks matching the filter
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update persists changes to a task
	Update(task *models.Task) error

	// ReplaceAssignees replaces the task's assignee set
	ReplaceAssignees(taskID uint64, userIDs []uint64) error

	// Delete removes a task with its assignee and comment rows
	Delete(id uint64) error

	// AddComment appends a comment to a task
	AddComment(comment *models.TaskComment) error
}

// TeamFilter holds filtering options for listing teams
type TeamFilter struct {
	ManagerID *uint64
	MemberID  *uint64
	Page      int
	PageSize  int
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Create creates a team together with its member rows
	Create(team *models.Team, memberIDs []uint64) error

	// FindByID finds a team by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Team, error)

	// FindByName finds a team by its unique name
	FindByName(name string) (*models.Team, error)

	// List retrieves teams matching the filter
	List(filter TeamFilter) ([]models.Team, int64, error)

	// Update persists changes to a team
	Update(team *models.Team) error

	// ReplaceMembers replaces the team's member set
	ReplaceMembers(teamID uint64, memberIDs []uint64) error

	// Delete removes a team with its member rows
	Delete(id uint64) error
}

// ProjectDuration carries the dates of one completed project for the
// average-duration KPI.
type ProjectDuration struct {
	StartDate time.Time
	EndDate   time.Time
}

// MemberTaskStats is the per-caller facet block of the member dashboard.
type MemberTaskStats struct {
	Total       int64
	Completed   int64
	Overdue     int64
	DueThisWeek int64
}

// AnalyticsRepository exposes the read-only aggregation primitives the
// dashboards are assembled from.
type AnalyticsRepository interface {
	CountUsers() (int64, error)
	CountUsersCreatedBetween(start, end time.Time) (int64, error)
	UsersByRole() (map[models.Role]int64, error)

	CountProjects() (int64, error)
	CountProjectsCreatedBetween(start, end time.Time) (int64, error)
	ProjectsByStatus() (map[models.ProjectStatus]int64, error)
	CountCompletedProjects() (int64, error)
	CountOverdueProjects(now time.Time) (int64, error)
	CompletedProjectDurations() ([]ProjectDuration, error)

	CountTasks() (int64, error)
	CountTasksCreatedBetween(start, end time.Time) (int64, error)
	TasksByStatus() (map[models.TaskStatus]int64, error)
	TasksByPriority() (map[models.TaskPriority]int64, error)
	CountCompletedTasks() (int64, error)
	CountOverdueTasks(now time.Time) (int64, error)
	CountUnassignedTasks() (int64, error)

	CountTeams() (int64, error)

	MemberTaskStats(userID uint64, now time.Time) (*MemberTaskStats, error)
	CountActiveProjectsFor(userID uint64) (int64, error)
}
