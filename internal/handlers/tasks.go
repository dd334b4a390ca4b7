package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"

	"github.com/buinguyet/kobizo-code-challenge/internal/middleware"
	"github.com/buinguyet/kobizo-code-challenge/internal/models"
	"github.com/buinguyet/kobizo-code-challenge/internal/services"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,oneof=pending in_progress done"`
	UserID      string `json:"user_id" binding:"omitempty,uuid"`
	ParentID    string `json:"parent_id" binding:"omitempty,uuid"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1"`
	Description *string `json:"description"`
	Status      *string `json:"status" binding:"omitempty,oneof=pending in_progress done"`
	ParentID    *string `json:"parent_id" binding:"omitempty,uuid"`
}

type ListTasksRequest struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending in_progress done"`
	ParentID string `form:"parent_id" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	principal := middleware.PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated", "message": "User not authenticated"})
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	if req.Status == "" {
		req.Status = models.StatusPending
	}

	// Tasks are admin-created and may be assigned to any user; an absent
	// user_id assigns the task to the caller.
	ownerID := uuid.FromStringOrNil(principal.ID)
	if req.UserID != "" {
		ownerID = uuid.FromStringOrNil(req.UserID)
	}

	task := models.Task{
		UserID:      ownerID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}
	if req.ParentID != "" {
		parentID := uuid.FromStringOrNil(req.ParentID)
		task.ParentID = &parentID
	}

	created, err := h.taskService.Create(c.Request.Context(), task)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *TaskHandler) GetTasks(c *gin.Context) {
	principal := middleware.PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated", "message": "User not authenticated"})
		return
	}

	var req ListTasksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_query",
			"message": "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	query := services.ListTasksQuery{
		Status: req.Status,
		Page:   req.Page,
		Limit:  req.Limit,
	}
	if req.ParentID != "" {
		parentID := uuid.FromStringOrNil(req.ParentID)
		query.ParentID = &parentID
	}

	tasks, err := h.taskService.List(c.Request.Context(), principal.ID, query)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	principal := middleware.PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated", "message": "User not authenticated"})
		return
	}

	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetByID(c.Request.Context(), id, principal.ID)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) GetSubtasks(c *gin.Context) {
	principal := middleware.PrincipalFromContext(c)
	if principal == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not_authenticated", "message": "User not authenticated"})
		return
	}

	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.Subtasks(c.Request.Context(), id, principal.ID)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	patch := services.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}
	if req.ParentID != nil {
		parentID := uuid.FromStringOrNil(*req.ParentID)
		patch.ParentID = &parentID
	}

	if err := h.taskService.Update(c.Request.Context(), id, patch); err != nil {
		handleTaskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), id); err != nil {
		handleTaskError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseTaskID rejects malformed ids before any delegate call; a bad id is
// indistinguishable from a missing task.
func parseTaskID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "task_not_found",
			"message": "Task not found",
		})
		return uuid.Nil, false
	}
	return id, true
}

func handleTaskError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrTaskNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "task_not_found",
			"message": "Task not found",
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": "Failed to process task request",
	})
}
