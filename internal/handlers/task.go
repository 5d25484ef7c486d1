package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/todos-backend/apiserver/internal/services"
	"github.com/todos-backend/apiserver/internal/store"
	"github.com/todos-backend/apiserver/types"
)

const (
	minTitleLen       = 2
	maxTitleLen       = 255
	maxDescriptionLen = 5000
)

// TaskHandler provides HTTP handlers for tasks. All routes require an
// authenticated caller; ownership failures are reported as 400, never
// 404, so non-owners cannot probe for task existence.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler constructs a handler with the provided service.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// TaskRouter registers task routes on the given router.
func TaskRouter(r chi.Router, taskService *services.TaskService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewTaskHandler(taskService)

	r.Use(authMiddleware)
	r.Post("/", handler.CreateTask)
	r.Get("/", handler.ListTasks)
	r.Route("/{taskID}", func(r chi.Router) {
		r.Get("/", handler.GetTask)
		r.Patch("/", handler.UpdateTask)
		r.Delete("/", handler.DeleteTask)
	})
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		unauthorized(w)
		return
	}

	var req TaskCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if msg := validateTitle(req.Title); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if msg := validateDescription(req.Description); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	task, err := h.taskService.Create(r.Context(), user.ID, req.Title, req.Description)
	if err != nil {
		if errors.Is(err, store.ErrCreateFailed) {
			writeError(w, http.StatusBadRequest, "failed to create task")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		unauthorized(w)
		return
	}

	tasks, err := h.taskService.ListByOwner(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}

	writeJSON(w, http.StatusOK, TaskListResponse{
		Tasks: tasks,
		Total: len(tasks),
	})
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		unauthorized(w)
		return
	}

	id, err := parseTaskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.taskService.GetByOwner(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch task")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		unauthorized(w)
		return
	}

	id, err := parseTaskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req TaskUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	fields := types.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	}
	if fields.Empty() {
		writeError(w, http.StatusBadRequest, "at least one field must be provided")
		return
	}
	if fields.Title != nil {
		trimmed := strings.TrimSpace(*fields.Title)
		if msg := validateTitle(trimmed); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		fields.Title = &trimmed
	}
	if msg := validateDescription(fields.Description); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	task, err := h.taskService.Update(r.Context(), id, user.ID, fields)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "failed to update task")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update task")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user, err := userFromContext(r.Context())
	if err != nil {
		unauthorized(w)
		return
	}

	id, err := parseTaskID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.taskService.Delete(r.Context(), id, user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "failed to delete task")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type TaskCreateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// TaskUpdateRequest carries a partial update. Absent and null fields are
// both treated as unchanged.
type TaskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsCompleted *bool   `json:"is_completed"`
}

// TaskListResponse is the task list payload.
type TaskListResponse struct {
	Tasks []types.Task `json:"tasks"`
	Total int          `json:"total"`
}

func parseTaskID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "taskID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid task id")
	}
	return id, nil
}

func validateTitle(title string) string {
	length := utf8.RuneCountInString(title)
	if length < minTitleLen || length > maxTitleLen {
		return "title must be between 2 and 255 characters"
	}
	return ""
}

func validateDescription(description *string) string {
	if description == nil {
		return ""
	}
	if utf8.RuneCountInString(*description) > maxDescriptionLen {
		return "description must be at most 5000 characters"
	}
	return ""
}
