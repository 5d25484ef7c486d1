package types

import "time"

// Task represents a todo item owned by a single user.
type Task struct {
	// ID is the unique identifier of the task.
	ID int `json:"id" db:"id"`

	// UserID is the identifier of the user who owns the task. Every read,
	// update, or delete filters by this together with ID.
	UserID int `json:"user_id" db:"user_id"`

	// Title is the short title of the task.
	Title string `json:"title" db:"title"`

	// Description is the optional longer description of the task.
	Description *string `json:"description" db:"description"`

	// IsCompleted reports whether the task has been completed.
	IsCompleted bool `json:"is_completed" db:"is_completed"`

	// CreatedAt is the timestamp when the task was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the task.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TaskUpdate carries a partial update for a task. Nil fields are left
// unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	IsCompleted *bool
}

// Empty reports whether the update changes nothing.
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.IsCompleted == nil
}
