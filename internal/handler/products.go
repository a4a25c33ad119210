package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/umami-pos/api/internal/catalog"
)

// ProductHandler handles product CRUD endpoints.
type ProductHandler struct {
	store RemoteStore[catalog.Product]
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(store RemoteStore[catalog.Product]) *ProductHandler {
	return &ProductHandler{store: store}
}

// RegisterRoutes registers product CRUD endpoints on the given Chi router.
// Expected to be mounted at /products.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/categories", h.Categories)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type productRequest struct {
	Name     string  `json:"name"`
	Price    string  `json:"price"`
	Category string  `json:"category"`
	Image    *string `json:"image"`
}

type productResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Category string `json:"category"`
	Image    string `json:"image"`
}

func toProductResponse(p catalog.Product) productResponse {
	return productResponse{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price.StringFixed(2),
		Category: p.Category,
		Image:    p.ImageOrPlaceholder(),
	}
}

func (req productRequest) toProduct() (catalog.Product, string) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return catalog.Product{}, "name is required"
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return catalog.Product{}, "price must be a decimal number"
	}
	if price.IsNegative() {
		return catalog.Product{}, "price must not be negative"
	}
	if strings.TrimSpace(req.Category) == "" {
		return catalog.Product{}, "category is required"
	}
	return catalog.Product{
		Name:     name,
		Price:    price,
		Category: strings.TrimSpace(req.Category),
		Image:    req.Image,
	}, ""
}

// --- Handlers ---

// List returns every product, optionally filtered by ?category=.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products := catalog.FilterByCategory(h.store.Documents(), r.URL.Query().Get("category"))

	resp := make([]productResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}

	flagCollectionError(w, h.store)
	writeJSON(w, http.StatusOK, resp)
}

// Categories returns "All" followed by the distinct product categories.
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	flagCollectionError(w, h.store)
	writeJSON(w, http.StatusOK, catalog.Categories(h.store.Documents()))
}

// Create adds a new product.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	p, msg := req.toProduct()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	created, err := h.store.Add(r.Context(), p)
	if err != nil {
		writeRemoteError(w, "create product", err)
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(created))
}

// Update replaces an existing product.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := findByID(h.store.Documents(), id); !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	p, msg := req.toProduct()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}
	p.ID = id

	if err := h.store.Update(r.Context(), id, p); err != nil {
		writeRemoteError(w, "update product", err)
		return
	}

	writeJSON(w, http.StatusOK, toProductResponse(p))
}

// Delete removes a product. Unknown ids succeed.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRemoteError(w, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
