package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskflow/taskflow-api/internal/dto"
	apierrors "github.com/taskflow/taskflow-api/internal/errors"
	"github.com/taskflow/taskflow-api/internal/logger"
	"github.com/taskflow/taskflow-api/internal/middleware"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/services"
	"github.com/taskflow/taskflow-api/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// List returns the tasks visible to the caller, optionally filtered by
// status via the ?status query parameter.
func (h *TaskHandler) List(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthenticated(c, "")
		return
	}

	params := utils.GetPaginationParams(c)

	var status *models.TaskStatus
	if raw := c.Query("status"); raw != "" {
		s := models.TaskStatus(raw)
		if !s.Valid() {
			apierrors.BadRequest(c, "Invalid task status")
			return
		}
		status = &s
	}

	tasks, total, err := h.taskService.ListTasks(identity, status, params.Page, params.Limit)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    params.ListData("tasks", dto.ToTaskDTOs(tasks), total),
	})
}

// Get returns one task with its references resolved.
func (h *TaskHandler) Get(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthenticated(c, "")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.taskService.GetTask(identity, id)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": dto.ToTaskDTO(*task)})
}

// Create creates a task under a project the caller manages.
func (h *TaskHandler) Create(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthenticated(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title          string     `json:"title" binding:"required"`
		Description    string     `json:"description"`
		Status         string     `json:"status"`
		Priority       string     `json:"priority"`
		ProjectID      uint64     `json:"projectId" binding:"required"`
		AssigneeIDs    []uint64   `json:"assignees"`
		EstimatedHours *float64   `json:"estimatedHours"`
		DueDate        *time.Time `json:"dueDate"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	status := models.TaskStatus(req.Status)
	if req.Status != "" && !status.Valid() {
		apierrors.BadRequest(c, "Invalid task status")
		return
	}
	priority := models.TaskPriority(req.Priority)
	if req.Priority != "" && !priority.Valid() {
		apierrors.BadRequest(c, "Invalid task priority")
		return
	}

	task, err := h.taskService.CreateTask(identity, services.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Status:         status,
		Priority:       priority,
		ProjectID:      req.ProjectID,
		AssigneeIDs:    req.AssigneeIDs,
		EstimatedHours: req.EstimatedHours,
		DueDate:        req.DueDate,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": dto.ToTaskDTO(*task)})
}

// Update applies task changes under the per-role field tables.
func (h *TaskHandler) Update(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthenticated(c, "")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type UpdateTaskRequest struct {
		Title          *string    `json:"title"`
		Description    *string    `json:"description"`
		Status         *string    `json:"status"`
		Priority       *string    `json:"priority"`
		AssigneeIDs    []uint64   `json:"assignees"`
		EstimatedHours *float64   `json:"estimatedHours"`
		TimeSpent      *float64   `json:"timeSpent"`
		DueDate        *time.Time `json:"dueDate"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		AssigneeIDs:    req.AssigneeIDs,
		EstimatedHours: req.EstimatedHours,
		TimeSpent:      req.TimeSpent,
		DueDate:        req.DueDate,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		if !status.Valid() {
			apierrors.BadRequest(c, "Invalid task status")
			return
		}
		input.Status = &status
	}
	if req.Priority != nil {
		priority := models.TaskPriority(*req.Priority)
		if !priority.Valid() {
			apierrors.BadRequest(c, "Invalid task priority")
			return
		}
		input.Priority = &priority
	}

	task, err := h.taskService.UpdateTask(identity, id, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": dto.ToTaskDTO(*task)})
}

// Delete removes a task.
func (h *TaskHandler) Delete(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthenticated(c, "")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(identity, id); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Task deleted successfully"})
}

// AddComment appends a comment to a task the caller can see.
func (h *TaskHandler) AddComment(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthenticated(c, "")
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	type AddCommentRequest struct {
		Message string `json:"message" binding:"required"`
	}

	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	comment, err := h.taskService.AddComment(identity, id, req.Message)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": dto.ToTaskCommentDTO(*comment)})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTaskTitleRequired),
		errors.Is(err, services.ErrTaskDescriptionRequired),
		errors.Is(err, services.ErrAssigneesRequired),
		errors.Is(err, services.ErrUnknownAssignees),
		errors.Is(err, services.ErrCommentRequired):
		apierrors.BadRequest(c, err.Error())
	default:
		logger.Log.Error("unexpected task error", zap.Error(err))
		apierrors.InternalError(c, "")
	}
}
