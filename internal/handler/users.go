package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/umami-pos/api/internal/user"
)

// UserStore defines the user directory methods needed by user handlers.
// Satisfied by *user.Directory; narrow interface for testability.
type UserStore interface {
	List() []user.User
	Create(ctx context.Context, f user.Fields) (user.User, error)
	Update(ctx context.Context, id string, f user.Fields) (user.User, error)
	Delete(ctx context.Context, id string) error
}

// UserHandler handles user CRUD endpoints.
type UserHandler struct {
	store UserStore
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store UserStore) *UserHandler {
	return &UserHandler{store: store}
}

// RegisterRoutes registers user CRUD endpoints on the given Chi router.
// Expected to be mounted at /users behind an ADMIN role check.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type userRequest struct {
	Username       string `json:"username"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           string `json:"role"`
	Status         string `json:"status"`
	RestaurantRole string `json:"restaurant_role"`
}

func (req userRequest) fields() user.Fields {
	return user.Fields{
		Username:       req.Username,
		Name:           req.Name,
		Email:          req.Email,
		Role:           req.Role,
		Status:         req.Status,
		RestaurantRole: req.RestaurantRole,
		Password:       req.Password,
	}
}

type userResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	Status         string    `json:"status"`
	RestaurantRole string    `json:"restaurant_role,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toUserResponse(u user.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		Status:         u.Status,
		RestaurantRole: u.RestaurantRole,
		CreatedAt:      u.CreatedAt,
	}
}

// --- Handlers ---

// List returns every user without password hashes.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users := h.store.List()
	resp := make([]userResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	u, err := h.store.Create(r.Context(), req.fields())
	if err != nil {
		writeUserError(w, "create user", err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// Update edits a user. An empty password keeps the current one.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	u, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), req.fields())
	if err != nil {
		writeUserError(w, "update user", err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRemoteError(w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeUserError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, user.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, user.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
	case errors.Is(err, user.ErrDuplicate):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeRemoteError(w, op, err)
	}
}
