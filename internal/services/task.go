package services

import (
	"context"
	"log"
	"time"

	"github.com/todos-backend/apiserver/internal/events"
	"github.com/todos-backend/apiserver/types"
)

// TaskRepository defines ownership-scoped persistence operations for
// tasks.
type TaskRepository interface {
	Create(ctx context.Context, ownerID int, title string, description *string) (types.Task, error)
	ListByOwner(ctx context.Context, ownerID int) ([]types.Task, error)
	GetByOwner(ctx context.Context, taskID, ownerID int) (types.Task, error)
	Update(ctx context.Context, taskID, ownerID int, fields types.TaskUpdate) (types.Task, error)
	Delete(ctx context.Context, taskID, ownerID int) error
}

// TaskService encapsulates task use-cases and emits lifecycle events
// after successful writes.
type TaskService struct {
	repo      TaskRepository
	publisher events.Publisher
}

func NewTaskService(repo TaskRepository, publisher events.Publisher) *TaskService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &TaskService{repo: repo, publisher: publisher}
}

func (s *TaskService) Create(ctx context.Context, ownerID int, title string, description *string) (types.Task, error) {
	task, err := s.repo.Create(ctx, ownerID, title, description)
	if err != nil {
		return types.Task{}, err
	}
	s.emit(ctx, events.TaskCreated, task.ID, ownerID)
	return task, nil
}

func (s *TaskService) ListByOwner(ctx context.Context, ownerID int) ([]types.Task, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *TaskService) GetByOwner(ctx context.Context, taskID, ownerID int) (types.Task, error) {
	return s.repo.GetByOwner(ctx, taskID, ownerID)
}

func (s *TaskService) Update(ctx context.Context, taskID, ownerID int, fields types.TaskUpdate) (types.Task, error) {
	task, err := s.repo.Update(ctx, taskID, ownerID, fields)
	if err != nil {
		return types.Task{}, err
	}
	s.emit(ctx, events.TaskUpdated, task.ID, ownerID)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, taskID, ownerID int) error {
	if err := s.repo.Delete(ctx, taskID, ownerID); err != nil {
		return err
	}
	s.emit(ctx, events.TaskDeleted, taskID, ownerID)
	return nil
}

// emit publishes fire-and-forget; a broker failure never surfaces to the
// client.
func (s *TaskService) emit(ctx context.Context, eventType string, taskID, ownerID int) {
	event := events.Event{
		Type:       eventType,
		TaskID:     taskID,
		UserID:     ownerID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("failed to publish %s event for task %d: %v", eventType, taskID, err)
	}
}
