package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/umami-pos/api/internal/catalog"
)

// WarehouseHandler handles stock item CRUD endpoints.
type WarehouseHandler struct {
	store RemoteStore[catalog.WarehouseItem]
}

// NewWarehouseHandler creates a new WarehouseHandler.
func NewWarehouseHandler(store RemoteStore[catalog.WarehouseItem]) *WarehouseHandler {
	return &WarehouseHandler{store: store}
}

// RegisterRoutes registers warehouse endpoints on the given Chi router.
// Expected to be mounted at /warehouse.
func (h *WarehouseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type warehouseRequest struct {
	Name     string `json:"name"`
	Stock    int    `json:"stock"`
	MinStock int    `json:"min_stock"`
	Category string `json:"category"`
}

type warehouseResponse struct {
	catalog.WarehouseItem
	Low bool `json:"low"`
}

func toWarehouseResponse(it catalog.WarehouseItem) warehouseResponse {
	return warehouseResponse{WarehouseItem: it, Low: it.IsLow()}
}

func (req warehouseRequest) toItem() (catalog.WarehouseItem, string) {
	if strings.TrimSpace(req.Name) == "" {
		return catalog.WarehouseItem{}, "name is required"
	}
	if req.Stock < 0 || req.MinStock < 0 {
		return catalog.WarehouseItem{}, "stock and min_stock must not be negative"
	}
	return catalog.WarehouseItem{
		Name:     strings.TrimSpace(req.Name),
		Stock:    req.Stock,
		MinStock: req.MinStock,
		Category: req.Category,
	}, ""
}

// List returns every item, or only low-stock items with ?low=true.
func (h *WarehouseHandler) List(w http.ResponseWriter, r *http.Request) {
	items := h.store.Documents()
	if r.URL.Query().Get("low") == "true" {
		items = catalog.LowStock(items)
	}

	resp := make([]warehouseResponse, len(items))
	for i, it := range items {
		resp[i] = toWarehouseResponse(it)
	}

	flagCollectionError(w, h.store)
	writeJSON(w, http.StatusOK, resp)
}

func (h *WarehouseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req warehouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	it, msg := req.toItem()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	created, err := h.store.Add(r.Context(), it)
	if err != nil {
		writeRemoteError(w, "create warehouse item", err)
		return
	}

	writeJSON(w, http.StatusCreated, toWarehouseResponse(created))
}

func (h *WarehouseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := findByID(h.store.Documents(), id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "warehouse item not found"})
		return
	}

	var req warehouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	it, msg := req.toItem()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	it.ID = id

	if err := h.store.Update(r.Context(), id, it); err != nil {
		writeRemoteError(w, "update warehouse item", err)
		return
	}

	writeJSON(w, http.StatusOK, toWarehouseResponse(it))
}

func (h *WarehouseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRemoteError(w, "delete warehouse item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
