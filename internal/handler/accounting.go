package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/umami-pos/api/internal/accounting"
	"github.com/umami-pos/api/internal/enum"
)

// --- Store interface ---

// EntryJournal is satisfied by *accounting.Journal.
type EntryJournal interface {
	List(term string) []accounting.Entry
	Get(id string) (accounting.Entry, error)
	Add(ctx context.Context, f accounting.EntryFields) (accounting.Entry, error)
	Update(ctx context.Context, id string, f accounting.EntryFields) (accounting.Entry, error)
	Delete(ctx context.Context, id string) error
	Totals() accounting.Totals
}

// --- AccountingHandler ---

type AccountingHandler struct {
	journal EntryJournal
}

func NewAccountingHandler(journal EntryJournal) *AccountingHandler {
	return &AccountingHandler{journal: journal}
}

// RegisterRoutes expects to be mounted at /accounting.
func (h *AccountingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/entries", h.ListEntries)
	r.Post("/entries", h.CreateEntry)
	r.Get("/entries/{id}", h.GetEntry)
	r.Put("/entries/{id}", h.UpdateEntry)
	r.Delete("/entries/{id}", h.DeleteEntry)
	r.Get("/summary", h.Summary)
}

// --- Request / Response types ---

type entryRequest struct {
	Date        string `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

func (req entryRequest) fields() accounting.EntryFields {
	return accounting.EntryFields{
		Date:        req.Date,
		Type:        req.Type,
		Description: req.Description,
		Amount:      req.Amount,
	}
}

type entryResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

func toEntryResponse(e accounting.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		Date:        e.Date,
		Type:        e.Type,
		Description: e.Description,
		Amount:      e.Amount.StringFixed(2),
	}
}

type summaryResponse struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}

// --- Handlers ---

// ListEntries supports ?search= over description and type, and an exact
// ?type= filter.
func (h *AccountingHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	typ := r.URL.Query().Get("type")
	if typ != "" && typ != enum.EntryTypeIncome && typ != enum.EntryTypeExpense {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid type"})
		return
	}

	resp := []entryResponse{}
	for _, e := range h.journal.List(r.URL.Query().Get("search")) {
		if typ != "" && e.Type != typ {
			continue
		}
		resp = append(resp, toEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AccountingHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	e, err := h.journal.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "entry not found"})
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(e))
}

func (h *AccountingHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	e, err := h.journal.Add(r.Context(), req.fields())
	if err != nil {
		h.writeEntryError(w, "create entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEntryResponse(e))
}

// UpdateEntry replaces every field of the entry.
func (h *AccountingHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	e, err := h.journal.Update(r.Context(), chi.URLParam(r, "id"), req.fields())
	if err != nil {
		h.writeEntryError(w, "update entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(e))
}

func (h *AccountingHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRemoteError(w, "delete entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary totals every entry, ignoring any search.
func (h *AccountingHandler) Summary(w http.ResponseWriter, r *http.Request) {
	t := h.journal.Totals()
	writeJSON(w, http.StatusOK, summaryResponse{
		Income:  t.Income.StringFixed(2),
		Expense: t.Expense.StringFixed(2),
		Balance: t.Balance.StringFixed(2),
	})
}

func (h *AccountingHandler) writeEntryError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, accounting.ErrInvalidEntry):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, accounting.ErrEntryNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "entry not found"})
	default:
		writeRemoteError(w, op, err)
	}
}
