package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/umami-pos/api/internal/cart"
	"github.com/umami-pos/api/internal/order"
)

// OrderBook defines the managed-orders methods needed by order handlers.
// Satisfied by *order.Book; narrow interface for testability.
type OrderBook interface {
	List() []order.Order
	Get(id string) (order.Order, error)
	SetStatus(ctx context.Context, id, status string) (order.Order, error)
	Delete(ctx context.Context, id string) error
}

// OrderHandler handles the managed-orders endpoints.
type OrderHandler struct {
	book OrderBook
	now  func() time.Time
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(book OrderBook) *OrderHandler {
	return &OrderHandler{book: book, now: time.Now}
}

// RegisterRoutes registers order endpoints on the given Chi router.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

type orderResponse struct {
	ID           string              `json:"id"`
	CustomerName string              `json:"customer_name"`
	TaxID        string              `json:"tax_id"`
	AmountPaid   string              `json:"amount_paid"`
	Change       string              `json:"change"`
	Table        int                 `json:"table,omitempty"`
	Takeaway     bool                `json:"takeaway"`
	Destination  string              `json:"destination"`
	Status       string              `json:"status"`
	Total        string              `json:"total"`
	CreatedAt    time.Time           `json:"created_at"`
	Age          string              `json:"age"`
	Items        []orderItemResponse `json:"items"`
}

func toOrderItemResponse(li cart.LineItem) orderItemResponse {
	return orderItemResponse{
		ProductID: li.ProductID,
		Name:      li.Name,
		Price:     li.Price.StringFixed(2),
		Quantity:  li.Quantity,
		Subtotal:  li.Subtotal().StringFixed(2),
	}
}

func toOrderResponse(o order.Order, now time.Time) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, li := range o.Items {
		items[i] = toOrderItemResponse(li)
	}
	return orderResponse{
		ID:           o.ID,
		CustomerName: o.CustomerName,
		TaxID:        o.TaxID,
		AmountPaid:   o.AmountPaid.StringFixed(2),
		Change:       o.Change.StringFixed(2),
		Table:        o.Destination.Table,
		Takeaway:     o.Destination.Takeaway,
		Destination:  o.Destination.Label(),
		Status:       o.Status,
		Total:        o.Total.StringFixed(2),
		CreatedAt:    o.CreatedAt,
		Age:          order.TimeAgo(o.CreatedAt, now),
		Items:        items,
	}
}

// --- Handlers ---

// List returns orders newest first, optionally filtered by ?status=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !order.IsValidStatus(status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	now := h.now()
	resp := []orderResponse{}
	for _, o := range h.book.List() {
		if status != "" && o.Status != status {
			continue
		}
		resp = append(resp, toOrderResponse(o, now))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single order with its items.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.book.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o, h.now()))
}

// UpdateStatus moves an order through its status machine.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	o, err := h.book.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidStatus):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		case errors.Is(err, order.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, order.ErrInvalidTransition):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			writeRemoteError(w, "update order status", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(o, h.now()))
}

// Delete permanently removes an order. Unknown ids succeed.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.book.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRemoteError(w, "delete order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
