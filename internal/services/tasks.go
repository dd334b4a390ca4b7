package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gofrs/uuid"

	"github.com/buinguyet/kobizo-code-challenge/internal/models"
	"github.com/buinguyet/kobizo-code-challenge/internal/supabase"
)

const (
	tasksTable      = "tasks"
	defaultPageSize = 10
)

// ListTasksQuery carries the optional list filters and pagination.
type ListTasksQuery struct {
	Status   string
	ParentID *uuid.UUID
	Page     int
	Limit    int
}

// TaskPatch is a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *string
	ParentID    *uuid.UUID
}

func (p TaskPatch) fields() map[string]interface{} {
	patch := map[string]interface{}{}
	if p.Title != nil {
		patch["title"] = *p.Title
	}
	if p.Description != nil {
		patch["description"] = *p.Description
	}
	if p.Status != nil {
		patch["status"] = *p.Status
	}
	if p.ParentID != nil {
		patch["parent_id"] = p.ParentID.String()
	}
	return patch
}

type TaskService interface {
	Create(ctx context.Context, task models.Task) (models.Task, error)
	List(ctx context.Context, userID string, q ListTasksQuery) ([]models.Task, error)
	GetByID(ctx context.Context, id uuid.UUID, userID string) (models.Task, error)
	Subtasks(ctx context.Context, parentID uuid.UUID, userID string) ([]models.Task, error)
	Update(ctx context.Context, id uuid.UUID, patch TaskPatch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TaskServiceImpl struct {
	store TaskStore
}

func NewTaskService(store TaskStore) *TaskServiceImpl {
	return &TaskServiceImpl{store: store}
}

func (s *TaskServiceImpl) Create(ctx context.Context, task models.Task) (models.Task, error) {
	record := map[string]interface{}{
		"title":       task.Title,
		"description": task.Description,
		"status":      task.Status,
		"user_id":     task.UserID.String(),
	}
	if task.ParentID != nil {
		record["parent_id"] = task.ParentID.String()
	}

	var rows []models.Task
	if err := s.store.Insert(ctx, tasksTable, record, &rows); err != nil {
		log.Printf("tasks: insert failed: %v", err)
		return models.Task{}, fmt.Errorf("creating task: %w", err)
	}
	if len(rows) == 0 {
		return models.Task{}, errors.New("no representation returned for created task")
	}
	return rows[0], nil
}

func (s *TaskServiceImpl) List(ctx context.Context, userID string, q ListTasksQuery) ([]models.Task, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = defaultPageSize
	}

	filters := map[string]string{"user_id": userID}
	if q.Status != "" {
		filters["status"] = q.Status
	}
	if q.ParentID != nil {
		filters["parent_id"] = q.ParentID.String()
	}

	var tasks []models.Task
	err := s.store.Select(ctx, tasksTable, supabase.Query{
		Filters: filters,
		Order:   "created_at.desc",
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}, &tasks)
	if err != nil {
		log.Printf("tasks: list failed for user %s: %v", userID, err)
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// GetByID filters on both the task id and the owning user in a single
// query, so a task is never fetched before the ownership check.
func (s *TaskServiceImpl) GetByID(ctx context.Context, id uuid.UUID, userID string) (models.Task, error) {
	var task models.Task
	found, err := s.store.SelectSingle(ctx, tasksTable, supabase.Query{
		Filters: map[string]string{"id": id.String(), "user_id": userID},
	}, &task)
	if err != nil {
		log.Printf("tasks: lookup %s failed: %v", id, err)
		return models.Task{}, ErrTaskNotFound
	}
	if !found {
		return models.Task{}, ErrTaskNotFound
	}
	return task, nil
}

// Subtasks does not check that the parent itself exists; an unknown parent
// id simply yields an empty list.
func (s *TaskServiceImpl) Subtasks(ctx context.Context, parentID uuid.UUID, userID string) ([]models.Task, error) {
	var tasks []models.Task
	err := s.store.Select(ctx, tasksTable, supabase.Query{
		Filters: map[string]string{"parent_id": parentID.String(), "user_id": userID},
		Order:   "created_at.desc",
	}, &tasks)
	if err != nil {
		log.Printf("tasks: subtask list for %s failed: %v", parentID, err)
		return nil, fmt.Errorf("listing subtasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// Update checks existence by id alone: both mutation routes are admin-only
// and an admin may manage any user's task.
func (s *TaskServiceImpl) Update(ctx context.Context, id uuid.UUID, patch TaskPatch) error {
	if err := s.checkExists(ctx, id); err != nil {
		return err
	}

	fields := patch.fields()
	if len(fields) == 0 {
		return nil
	}

	err := s.store.Update(ctx, tasksTable, supabase.Query{
		Filters: map[string]string{"id": id.String()},
	}, fields)
	if err != nil {
		log.Printf("tasks: update %s failed: %v", id, err)
		return fmt.Errorf("updating task: %w", err)
	}
	return nil
}

func (s *TaskServiceImpl) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.checkExists(ctx, id); err != nil {
		return err
	}

	err := s.store.Delete(ctx, tasksTable, supabase.Query{
		Filters: map[string]string{"id": id.String()},
	})
	if err != nil {
		log.Printf("tasks: delete %s failed: %v", id, err)
		return fmt.Errorf("deleting task: %w", err)
	}
	return nil
}

func (s *TaskServiceImpl) checkExists(ctx context.Context, id uuid.UUID) error {
	var row struct {
		ID string `json:"id"`
	}
	found, err := s.store.SelectSingle(ctx, tasksTable, supabase.Query{
		Columns: "id",
		Filters: map[string]string{"id": id.String()},
	}, &row)
	if err != nil {
		log.Printf("tasks: existence check %s failed: %v", id, err)
		return ErrTaskNotFound
	}
	if !found {
		return ErrTaskNotFound
	}
	return nil
}
