package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/todos-backend/apiserver/internal/events"
	"github.com/todos-backend/apiserver/internal/store"
	"github.com/todos-backend/apiserver/types"
)

type fakeTaskRepo struct {
	tasks  map[int]types.Task
	nextID int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[int]types.Task), nextID: 1}
}

func (r *fakeTaskRepo) Create(ctx context.Context, ownerID int, title string, description *string) (types.Task, error) {
	now := time.Now().UTC()
	task := types.Task{
		ID:          r.nextID,
		UserID:      ownerID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.nextID++
	r.tasks[task.ID] = task
	return task, nil
}

func (r *fakeTaskRepo) ListByOwner(ctx context.Context, ownerID int) ([]types.Task, error) {
	tasks := make([]types.Task, 0)
	for id := 1; id < r.nextID; id++ {
		task, ok := r.tasks[id]
		if ok && task.UserID == ownerID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (r *fakeTaskRepo) GetByOwner(ctx context.Context, taskID, ownerID int) (types.Task, error) {
	task, ok := r.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return types.Task{}, store.ErrNotFound
	}
	return task, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, taskID, ownerID int, fields types.TaskUpdate) (types.Task, error) {
	task, ok := r.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return types.Task{}, store.ErrNotFound
	}
	if fields.Title != nil {
		task.Title = *fields.Title
	}
	if fields.Description != nil {
		task.Description = fields.Description
	}
	if fields.IsCompleted != nil {
		task.IsCompleted = *fields.IsCompleted
	}
	task.UpdatedAt = time.Now().UTC()
	r.tasks[taskID] = task
	return task, nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, taskID, ownerID int) error {
	task, ok := r.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return store.ErrNotFound
	}
	delete(r.tasks, taskID)
	return nil
}

type recordingPublisher struct {
	published []events.Event
	fail      bool
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	if p.fail {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestTaskLifecycleEmitsEvents(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := NewTaskService(newFakeTaskRepo(), publisher)

	task, err := svc.Create(context.Background(), 1, "Buy milk", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	completed := true
	if _, err := svc.Update(context.Background(), task.ID, 1, types.TaskUpdate{IsCompleted: &completed}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.Delete(context.Background(), task.ID, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []string{events.TaskCreated, events.TaskUpdated, events.TaskDeleted}
	if len(publisher.published) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(publisher.published))
	}
	for i, eventType := range want {
		event := publisher.published[i]
		if event.Type != eventType {
			t.Fatalf("event %d: expected %s, got %s", i, eventType, event.Type)
		}
		if event.TaskID != task.ID || event.UserID != 1 {
			t.Fatalf("event %d carries wrong ids: %+v", i, event)
		}
	}
}

func TestTaskOpsIgnorePublishFailure(t *testing.T) {
	svc := NewTaskService(newFakeTaskRepo(), &recordingPublisher{fail: true})

	task, err := svc.Create(context.Background(), 1, "Buy milk", nil)
	if err != nil {
		t.Fatalf("create should succeed despite broker failure: %v", err)
	}
	if err := svc.Delete(context.Background(), task.ID, 1); err != nil {
		t.Fatalf("delete should succeed despite broker failure: %v", err)
	}
}

func TestCrossOwnerOpsFailAsNotFound(t *testing.T) {
	svc := NewTaskService(newFakeTaskRepo(), nil)

	task, err := svc.Create(context.Background(), 1, "Buy milk", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Another owner's id must behave exactly like a nonexistent task id.
	if _, err := svc.GetByOwner(context.Background(), task.ID, 2); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get: expected ErrNotFound, got %v", err)
	}
	completed := true
	if _, err := svc.Update(context.Background(), task.ID, 2, types.TaskUpdate{IsCompleted: &completed}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(context.Background(), task.ID, 2); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}

	if _, err := svc.GetByOwner(context.Background(), task.ID, 1); err != nil {
		t.Fatalf("task should be unaffected: %v", err)
	}
}
