package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/umami-pos/api/internal/catalog"
)

// CategoryHandler handles category CRUD endpoints.
type CategoryHandler struct {
	store RemoteStore[catalog.Category]
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(store RemoteStore[catalog.Category]) *CategoryHandler {
	return &CategoryHandler{store: store}
}

// RegisterRoutes registers category CRUD endpoints on the given Chi router.
// Expected to be mounted at /categories.
func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories := h.store.Documents()
	if categories == nil {
		categories = []catalog.Category{}
	}
	flagCollectionError(w, h.store)
	writeJSON(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	created, err := h.store.Add(r.Context(), catalog.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	})
	if err != nil {
		writeRemoteError(w, "create category", err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := findByID(h.store.Documents(), id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	c := catalog.Category{ID: id, Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := h.store.Update(r.Context(), id, c); err != nil {
		writeRemoteError(w, "update category", err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRemoteError(w, "delete category", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
