package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/todos-backend/apiserver/types"
)

// TaskRepository handles persistence for tasks. Every read, update, and
// delete filters by both the task id and the owning user id, so a task
// belonging to another owner is indistinguishable from a nonexistent one.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, ownerID int, title string, description *string) (types.Task, error) {
	const query = `
		INSERT INTO tasks (user_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, title, description, is_completed, created_at, updated_at`
	var task types.Task
	err := r.db.QueryRowContext(ctx, query, ownerID, title, description).Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.IsCompleted,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Task{}, ErrCreateFailed
		}
		return types.Task{}, err
	}
	if task.ID < 1 {
		return types.Task{}, ErrCreateFailed
	}
	return task, nil
}

func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID int) ([]types.Task, error) {
	const query = `
		SELECT id, user_id, title, description, is_completed, created_at, updated_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]types.Task, 0)
	for rows.Next() {
		var task types.Task
		if err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Title,
			&task.Description,
			&task.IsCompleted,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *TaskRepository) GetByOwner(ctx context.Context, taskID, ownerID int) (types.Task, error) {
	const query = `
		SELECT id, user_id, title, description, is_completed, created_at, updated_at
		FROM tasks
		WHERE id = $1 AND user_id = $2`
	var task types.Task
	err := r.db.QueryRowContext(ctx, query, taskID, ownerID).Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.IsCompleted,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Task{}, ErrNotFound
		}
		return types.Task{}, err
	}
	return task, nil
}

// Update applies the supplied fields in a single statement conditioned on
// ownership. Zero rows updated surfaces as ErrNotFound.
func (r *TaskRepository) Update(ctx context.Context, taskID, ownerID int, fields types.TaskUpdate) (types.Task, error) {
	assignments := []string{"updated_at = (now() AT TIME ZONE 'UTC')"}
	args := []any{}

	if fields.Title != nil {
		args = append(args, *fields.Title)
		assignments = append(assignments, fmt.Sprintf("title = $%d", len(args)))
	}
	if fields.Description != nil {
		args = append(args, *fields.Description)
		assignments = append(assignments, fmt.Sprintf("description = $%d", len(args)))
	}
	if fields.IsCompleted != nil {
		args = append(args, *fields.IsCompleted)
		assignments = append(assignments, fmt.Sprintf("is_completed = $%d", len(args)))
	}

	args = append(args, taskID, ownerID)
	query := fmt.Sprintf(`
		UPDATE tasks
		SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING id, user_id, title, description, is_completed, created_at, updated_at`,
		strings.Join(assignments, ", "), len(args)-1, len(args))

	var task types.Task
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.IsCompleted,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Task{}, ErrNotFound
		}
		return types.Task{}, err
	}
	return task, nil
}

// Delete removes the task. Anything other than exactly one row removed
// is a failure.
func (r *TaskRepository) Delete(ctx context.Context, taskID, ownerID int) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, taskID, ownerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected != 1 {
		return ErrNotFound
	}
	return nil
}
