package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/todos-backend/apiserver/internal/services"
	"github.com/todos-backend/apiserver/internal/store"
	"github.com/todos-backend/apiserver/internal/token"
	"github.com/todos-backend/apiserver/types"
)

type memUserRepo struct {
	users  map[string]types.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]types.User), nextID: 1}
}

func (r *memUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	user, ok := r.users[email]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) Create(ctx context.Context, email, passwordHash string) (types.User, error) {
	if _, ok := r.users[email]; ok {
		return types.User{}, store.ErrDuplicateEmail
	}
	now := time.Now().UTC()
	user := types.User{
		ID:           r.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.nextID++
	r.users[email] = user
	return user, nil
}

type memTaskRepo struct {
	tasks  map[int]types.Task
	nextID int
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[int]types.Task), nextID: 1}
}

func (r *memTaskRepo) Create(ctx context.Context, ownerID int, title string, description *string) (types.Task, error) {
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

func (r *memTaskRepo) ListByOwner(ctx context.Context, ownerID int) ([]types.Task, error) {
	tasks := make([]types.Task, 0)
	for id := 1; id < r.nextID; id++ {
		task, ok := r.tasks[id]
		if ok && task.UserID == ownerID {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}

func (r *memTaskRepo) GetByOwner(ctx context.Context, taskID, ownerID int) (types.Task, error) {
	task, ok := r.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return types.Task{}, store.ErrNotFound
	}
	return task, nil
}

func (r *memTaskRepo) Update(ctx context.Context, taskID, ownerID int, fields types.TaskUpdate) (types.Task, error) {
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

func (r *memTaskRepo) Delete(ctx context.Context, taskID, ownerID int) error {
	task, ok := r.tasks[taskID]
	if !ok || task.UserID != ownerID {
		return store.ErrNotFound
	}
	delete(r.tasks, taskID)
	return nil
}

// newTestRouter wires the API the same way the server does, over
// in-memory repositories.
func newTestRouter() *chi.Mux {
	tokens := token.NewService("test-secret", time.Hour)
	authService := services.NewAuthService(newMemUserRepo(), tokens)
	taskService := services.NewTaskService(newMemTaskRepo(), nil)
	authHandler := NewAuthHandler(authService)

	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			AuthRouter(r, authService)
		})
		r.Route("/tasks", func(r chi.Router) {
			TaskRouter(r, taskService, authHandler.RequireAuth)
		})
	})
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doRawAuth(t *testing.T, router http.Handler, method, path, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", authHeader)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	if err := json.Unmarshal(rec.Body.Bytes(), &value); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return value
}

func signupAndLogin(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", "", SignupRequest{Email: email, Password: password})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d: %s", email, rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: email, Password: password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d: %s", email, rec.Code, rec.Body.String())
	}
	resp := decodeBody[LoginResponse](t, rec)
	if resp.AccessToken == "" {
		t.Fatal("expected non-empty access token")
	}
	return resp.AccessToken
}
