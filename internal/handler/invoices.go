package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/umami-pos/api/internal/accounting"
)

// InvoiceBilling is satisfied by *accounting.Billing.
type InvoiceBilling interface {
	List(term string) []accounting.Invoice
	Get(id string) (accounting.Invoice, error)
	Create(ctx context.Context, f accounting.InvoiceFields) (accounting.Invoice, error)
	SetStatus(ctx context.Context, id, status string) (accounting.Invoice, error)
}

type InvoiceHandler struct {
	billing InvoiceBilling
}

func NewInvoiceHandler(billing InvoiceBilling) *InvoiceHandler {
	return &InvoiceHandler{billing: billing}
}

// RegisterRoutes expects to be mounted at /invoices.
func (h *InvoiceHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}/status", h.UpdateStatus)
}

type createInvoiceRequest struct {
	CustomerName string `json:"customer_name"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	Total        string `json:"total"`
}

type invoiceResponse struct {
	ID           string `json:"id"`
	CustomerName string `json:"customer_name"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	Total        string `json:"total"`
	OrderID      string `json:"order_id,omitempty"`
}

func toInvoiceResponse(inv accounting.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:           inv.ID,
		CustomerName: inv.CustomerName,
		Date:         inv.Date,
		Status:       inv.Status,
		Total:        inv.Total.StringFixed(2),
		OrderID:      inv.OrderID,
	}
}

// List supports ?search= over invoice id and customer name, and an exact
// ?status= filter.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !accounting.IsValidInvoiceStatus(status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	resp := []invoiceResponse{}
	for _, inv := range h.billing.List(r.URL.Query().Get("search")) {
		if status != "" && inv.Status != status {
			continue
		}
		resp = append(resp, toInvoiceResponse(inv))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.billing.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invoice not found"})
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

// Create issues an invoice not tied to an order.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	inv, err := h.billing.Create(r.Context(), accounting.InvoiceFields{
		CustomerName: req.CustomerName,
		Date:         req.Date,
		Status:       req.Status,
		Total:        req.Total,
	})
	if err != nil {
		h.writeInvoiceError(w, "create invoice", err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceResponse(inv))
}

func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	inv, err := h.billing.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.writeInvoiceError(w, "update invoice status", err)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceResponse(inv))
}

func (h *InvoiceHandler) writeInvoiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, accounting.ErrInvalidInvoice):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, accounting.ErrInvoiceNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "invoice not found"})
	default:
		writeRemoteError(w, op, err)
	}
}
