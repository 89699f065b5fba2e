package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/tasktab/internal/tasktab/domain"
	"github.com/aussiebroadwan/tasktab/internal/tasktab/store"
	"github.com/aussiebroadwan/tasktab/pkg/idx"
)

// CreateTaskInput is the payload for creating a task. Status is optional
// and defaults to pending.
type CreateTaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// TaskPatch carries the partial update for a task; only present fields
// are applied.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// TaskService owns task CRUD. Every operation takes the owner id
// established by the request authenticator; client-supplied owner ids are
// never accepted anywhere in this service.
type TaskService struct {
	Store store.Store
}

// Create persists a new task for ownerID.
func (s *TaskService) Create(ctx context.Context, ownerID string, in CreateTaskInput) (domain.Task, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)

	var fields []FieldError
	if in.Title == "" {
		fields = append(fields, FieldError{Field: "title", Msg: "title is required"})
	}
	if in.Description == "" {
		fields = append(fields, FieldError{Field: "description", Msg: "description is required"})
	}

	status := domain.StatusPending
	if in.Status != "" {
		status = domain.TaskStatus(in.Status)
		if !domain.ValidStatus(status) {
			fields = append(fields, statusFieldError())
		}
	}
	if err := validationError(fields); err != nil {
		return domain.Task{}, err
	}

	now := nowUTC()
	task := domain.Task{
		ID:          idx.New().String(),
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.Tasks().CreateTask(ctx, task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// List returns every task owned by ownerID.
func (s *TaskService) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	return s.Store.Tasks().ListTasksByOwner(ctx, ownerID)
}

// Update applies patch to the task identified by (taskID, ownerID). A
// task that does not exist and a task owned by someone else both come
// back as ErrNotFound.
func (s *TaskService) Update(ctx context.Context, ownerID, taskID string, patch TaskPatch) (domain.Task, error) {
	var fields []FieldError
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		fields = append(fields, FieldError{Field: "title", Msg: "title must not be empty"})
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		fields = append(fields, FieldError{Field: "description", Msg: "description must not be empty"})
	}
	if patch.Status != nil && !domain.ValidStatus(domain.TaskStatus(*patch.Status)) {
		fields = append(fields, statusFieldError())
	}
	if err := validationError(fields); err != nil {
		return domain.Task{}, err
	}

	var updated domain.Task
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		task, err := tx.Tasks().GetTaskForOwner(ctx, taskID, ownerID)
		if err != nil {
			return err
		}

		if patch.Title != nil {
			task.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			task.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Status != nil {
			task.Status = domain.TaskStatus(*patch.Status)
		}
		task.UpdatedAt = nowUTC()

		if err := tx.Tasks().UpdateTask(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})
	if err != nil {
		return domain.Task{}, mapStoreErr(err)
	}
	return updated, nil
}

// Delete removes the task identified by (taskID, ownerID). Deleting a
// task that is absent or foreign is an error, not a silent success.
func (s *TaskService) Delete(ctx context.Context, ownerID, taskID string) error {
	if err := s.Store.Tasks().DeleteTask(ctx, taskID, ownerID); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

func statusFieldError() FieldError {
	return FieldError{Field: "status", Msg: "status must be one of pending, in-progress, completed"}
}

func mapStoreErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
