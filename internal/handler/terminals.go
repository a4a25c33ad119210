package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/umami-pos/api/internal/cart"
	"github.com/umami-pos/api/internal/checkout"
	"github.com/umami-pos/api/internal/middleware"
	"github.com/umami-pos/api/internal/order"
	"github.com/umami-pos/api/internal/terminal"
)

// TerminalRegistry defines the session registry methods needed by terminal
// handlers. Satisfied by *terminal.Registry; narrow interface for testability.
type TerminalRegistry interface {
	Open(ownerID string) *terminal.Session
	Get(id string) (*terminal.Session, error)
	Close(id string)
}

// TerminalHandler forwards order-screen events to server-side sessions.
type TerminalHandler struct {
	registry TerminalRegistry
	orders   *OrderHandler
}

// NewTerminalHandler creates a new TerminalHandler. orders renders placed
// orders the same way the orders endpoints do.
func NewTerminalHandler(registry TerminalRegistry, orders *OrderHandler) *TerminalHandler {
	return &TerminalHandler{registry: registry, orders: orders}
}

// RegisterRoutes registers terminal endpoints on the given Chi router.
// Expected to be mounted at /terminals behind Authenticate.
func (h *TerminalHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Open)
	r.Route("/{tid}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Close)

		r.Post("/items", h.AddItem)
		r.Patch("/items/{pid}", h.ChangeQuantity)
		r.Delete("/items/{pid}", h.RemoveItem)
		r.Post("/items/{pid}/select", h.SelectItem)
		r.Post("/keys", h.Key)

		r.Post("/checkout", h.OpenCheckout)
		r.Put("/checkout", h.UpdateCheckout)
		r.Delete("/checkout", h.CancelCheckout)
		r.Post("/checkout/keypad", h.Keypad)
		r.Post("/checkout/confirm", h.Confirm)
	})
}

// --- Request / Response types ---

type addItemRequest struct {
	ProductID string `json:"product_id"`
}

type changeQuantityRequest struct {
	Delta int `json:"delta"`
}

// maxQuantityDelta bounds one +/- request.
const maxQuantityDelta = 999

type keyRequest struct {
	Key string `json:"key"`
}

type checkoutRequest struct {
	PayerName *string `json:"payer_name"`
	TaxID     *string `json:"tax_id"`
	Tendered  *string `json:"tendered"`
	Table     *int    `json:"table"`
	Takeaway  bool    `json:"takeaway"`
}

type placedResponse struct {
	Terminal terminal.Snapshot `json:"terminal"`
	Order    *orderResponse    `json:"order,omitempty"`
}

// --- Handlers ---

// Open starts a new order screen for the caller.
func (h *TerminalHandler) Open(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	s := h.registry.Open(claims.UserID)
	snap, err := s.Snapshot()
	if err != nil {
		writeTerminalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

func (h *TerminalHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondSnapshot(w)(s.Snapshot())
}

// Close tears the session down, discarding its cart.
func (h *TerminalHandler) Close(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.registry.Close(s.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *TerminalHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ProductID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "product_id is required"})
		return
	}

	respondSnapshot(w)(s.AddProduct(req.ProductID))
}

// ChangeQuantity applies the +/- buttons; a line item reaching zero is removed.
func (h *TerminalHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req changeQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Delta == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "delta must not be zero"})
		return
	}
	if req.Delta > maxQuantityDelta || req.Delta < -maxQuantityDelta {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "delta out of range"})
		return
	}

	respondSnapshot(w)(s.ChangeQuantity(chi.URLParam(r, "pid"), req.Delta))
}

func (h *TerminalHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondSnapshot(w)(s.RemoveItem(chi.URLParam(r, "pid")))
}

// SelectItem targets a line item for keyboard quantity entry.
func (h *TerminalHandler) SelectItem(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondSnapshot(w)(s.SelectItem(chi.URLParam(r, "pid")))
}

// Key forwards one keystroke to the quantity entry buffer.
func (h *TerminalHandler) Key(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req keyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	respondSnapshot(w)(s.Key(req.Key))
}

func (h *TerminalHandler) OpenCheckout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondSnapshot(w)(s.OpenCheckout())
}

func (h *TerminalHandler) UpdateCheckout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Table != nil && req.Takeaway {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "choose a table or takeaway, not both"})
		return
	}

	respondSnapshot(w)(s.UpdateCheckout(terminal.CheckoutUpdate{
		PayerName: req.PayerName,
		TaxID:     req.TaxID,
		Tendered:  req.Tendered,
		Table:     req.Table,
		Takeaway:  req.Takeaway,
	}))
}

func (h *TerminalHandler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	respondSnapshot(w)(s.CancelCheckout())
}

// Keypad forwards one key of the tendered-amount keypad. Enter confirms
// the order when a destination is chosen.
func (h *TerminalHandler) Keypad(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req keyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	snap, placed, err := s.KeypadKey(r.Context(), req.Key)
	if err != nil {
		writeTerminalError(w, err)
		return
	}

	resp := placedResponse{Terminal: snap}
	status := http.StatusOK
	if placed != nil {
		o := toOrderResponse(*placed, h.orders.now())
		resp.Order = &o
		status = http.StatusCreated
	}
	writeJSON(w, status, resp)
}

// Confirm places the order and clears the cart.
func (h *TerminalHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	placed, err := s.Confirm(r.Context())
	if err != nil {
		writeTerminalError(w, err)
		return
	}

	snap, err := s.Snapshot()
	if err != nil {
		writeTerminalError(w, err)
		return
	}
	o := toOrderResponse(placed, h.orders.now())
	writeJSON(w, http.StatusCreated, placedResponse{Terminal: snap, Order: &o})
}

// --- Helpers ---

// session loads the {tid} session and checks the caller owns it.
func (h *TerminalHandler) session(w http.ResponseWriter, r *http.Request) (*terminal.Session, bool) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return nil, false
	}

	s, err := h.registry.Get(chi.URLParam(r, "tid"))
	if err != nil {
		writeTerminalError(w, err)
		return nil, false
	}
	if s.OwnerID != claims.UserID {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied for this terminal"})
		return nil, false
	}
	return s, true
}

func respondSnapshot(w http.ResponseWriter) func(terminal.Snapshot, error) {
	return func(snap terminal.Snapshot, err error) {
		if err != nil {
			writeTerminalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func writeTerminalError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, terminal.ErrSessionNotFound), errors.Is(err, terminal.ErrClosed):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "terminal not found"})
	case errors.Is(err, terminal.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
	case errors.Is(err, cart.ErrItemNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not in cart"})
	case errors.Is(err, checkout.ErrInvalidTable), errors.Is(err, order.ErrNoDestination):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, terminal.ErrEmptyCart), errors.Is(err, terminal.ErrCheckoutClosed):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeRemoteError(w, "terminal", err)
	}
}
