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
	ErrTaskNotFound            = errors.New("task not found")
	ErrTaskTitleRequired       = errors.New("task title is required")
	ErrTaskDescriptionRequired = errors.New("task description is required")
	ErrAssigneesRequired       = errors.New("at least one assignee is required")
	ErrUnknownAssignees        = errors.New("one or more assignees do not exist")
	ErrCommentRequired         = errors.New("comment message is required")
)

// TaskService handles task business logic and the role-scoped
// visibility rules.
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
	}
}

// ListTasks returns the tasks visible to the caller: everything for
// admins, tasks in managed projects for managers, assigned tasks for
// users.
func (s *TaskService) ListTasks(actor *auth.Identity, status *models.TaskStatus, page, pageSize int) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{Status: status, Page: page, PageSize: pageSize}

	switch actor.Role {
	case models.RoleAdmin:
		// no scoping
	case models.RoleManager:
		filter.ProjectManagerID = &actor.ID
	case models.RoleUser:
		filter.AssignedUserID = &actor.ID
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// GetTask returns one task if the caller may see it.
func (s *TaskService) GetTask(actor *auth.Identity, id uint64) (*models.Task, error) {
	task, err := s.findTask(id, "Project", "Assigner", "Assignees.User", "Comments.User")
	if err != nil {
		return nil, err
	}

	if !canSeeTask(actor, task) {
		return nil, ErrForbidden
	}

	return task, nil
}

// CreateTaskInput represents input for creating a task.
type CreateTaskInput struct {
	Title          string
	Description    string
	Status         models.TaskStatus
	Priority       models.TaskPriority
	ProjectID      uint64
	AssigneeIDs    []uint64
	EstimatedHours *float64
	DueDate        *time.Time
}

// CreateTask creates a task under a project. The referenced project
// must exist before any permission decision, and a manager may only
// create tasks under projects they manage.
func (s *TaskService) CreateTask(actor *auth.Identity, input CreateTaskInput) (*models.Task, error) {
	if actor.Role == models.RoleUser {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTaskTitleRequired
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, ErrTaskDescriptionRequired
	}
	if len(input.AssigneeIDs) == 0 {
		return nil, ErrAssigneesRequired
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

	assigneeIDs := uniqueUint64(input.AssigneeIDs)
	count, err := s.projectRepo.CountUsersByIDs(assigneeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to verify assignees: %w", err)
	}
	if int(count) != len(assigneeIDs) {
		return nil, ErrUnknownAssignees
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	task := &models.Task{
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		Status:         status,
		Priority:       priority,
		ProjectID:      project.ID,
		AssignerID:     actor.ID,
		EstimatedHours: input.EstimatedHours,
		DueDate:        input.DueDate,
	}

	if err := s.taskRepo.Create(task, assigneeIDs); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Project", "Assigner", "Assignees.User")
}

// UpdateTaskInput carries the allow-listed task fields. A user-role
// caller is restricted to Status and TimeSpent; everything else in the
// request is ignored for them, and fields outside this set are ignored
// for everyone.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Status         *models.TaskStatus
	Priority       *models.TaskPriority
	AssigneeIDs    []uint64
	EstimatedHours *float64
	TimeSpent      *float64
	DueDate        *time.Time
}

// UpdateTask applies the allow-listed fields under the role table: a
// user must be an assignee and may change only status and timeSpent; a
// manager must manage the task's project; an admin is unrestricted.
func (s *TaskService) UpdateTask(actor *auth.Identity, id uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(id, "Project", "Assignees")
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleAdmin, models.RoleManager:
		if !canMutateTask(actor, task) {
			return nil, ErrForbidden
		}

		if input.Title != nil {
			if strings.TrimSpace(*input.Title) == "" {
				return nil, ErrTaskTitleRequired
			}
			task.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.Status != nil {
			task.Status = *input.Status
		}
		if input.Priority != nil {
			task.Priority = *input.Priority
		}
		if input.EstimatedHours != nil {
			task.EstimatedHours = input.EstimatedHours
		}
		if input.TimeSpent != nil {
			task.TimeSpent = *input.TimeSpent
		}
		if input.DueDate != nil {
			task.DueDate = input.DueDate
		}

	case models.RoleUser:
		if !isAssignee(actor.ID, task) {
			return nil, ErrForbidden
		}
		if input.Status != nil {
			task.Status = *input.Status
		}
		if input.TimeSpent != nil {
			task.TimeSpent = *input.TimeSpent
		}

	default:
		return nil, ErrForbidden
	}

	// Validate the assignee list before touching the row so a bad
	// list cannot leave the scalar changes half-applied.
	var assigneeIDs []uint64
	if input.AssigneeIDs != nil && actor.Role != models.RoleUser {
		if len(input.AssigneeIDs) == 0 {
			return nil, ErrAssigneesRequired
		}
		assigneeIDs = uniqueUint64(input.AssigneeIDs)
		count, err := s.projectRepo.CountUsersByIDs(assigneeIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to verify assignees: %w", err)
		}
		if int(count) != len(assigneeIDs) {
			return nil, ErrUnknownAssignees
		}
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if assigneeIDs != nil {
		if err := s.taskRepo.ReplaceAssignees(task.ID, assigneeIDs); err != nil {
			return nil, fmt.Errorf("failed to replace assignees: %w", err)
		}
	}

	return s.taskRepo.FindByID(task.ID, "Project", "Assigner", "Assignees.User")
}

// DeleteTask removes a task. Users never may; managers only within
// projects they manage.
func (s *TaskService) DeleteTask(actor *auth.Identity, id uint64) error {
	task, err := s.findTask(id, "Project")
	if err != nil {
		return err
	}

	if !canMutateTask(actor, task) {
		return ErrForbidden
	}

	if err := s.taskRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// AddComment appends a comment to a task the caller can see.
func (s *TaskService) AddComment(actor *auth.Identity, taskID uint64, message string) (*models.TaskComment, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrCommentRequired
	}

	task, err := s.findTask(taskID, "Project", "Assignees")
	if err != nil {
		return nil, err
	}
	if !canSeeTask(actor, task) {
		return nil, ErrForbidden
	}

	comment := &models.TaskComment{
		TaskID:  task.ID,
		UserID:  actor.ID,
		Message: strings.TrimSpace(message),
	}
	if err := s.taskRepo.AddComment(comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return comment, nil
}

func (s *TaskService) findTask(id uint64, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func canSeeTask(actor *auth.Identity, task *models.Task) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return task.Project.ManagerID == actor.ID
	case models.RoleUser:
		return isAssignee(actor.ID, task)
	}
	return false
}

func canMutateTask(actor *auth.Identity, task *models.Task) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return task.Project.ManagerID == actor.ID
	case models.RoleUser:
		return false
	}
	return false
}

func isAssignee(userID uint64, task *models.Task) bool {
	for _, a := range task.Assignees {
		if a.UserID == userID {
			return true
		}
	}
	return false
}
