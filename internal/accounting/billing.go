package accounting

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/umami-pos/api/internal/collection"
	"github.com/umami-pos/api/internal/enum"
	"github.com/umami-pos/api/internal/order"
)

var (
	ErrInvoiceNotFound = errors.New("invoice not found")
	ErrInvalidInvoice  = errors.New("invalid invoice")
)

type Invoice struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customer_name"`
	Date         string          `json:"date"`
	Status       string          `json:"status"`
	Total        decimal.Decimal `json:"total"`
	OrderID      string          `json:"order_id,omitempty"`
}

func (i Invoice) GetID() string { return i.ID }

func (i Invoice) WithID(id string) Invoice {
	i.ID = id
	return i
}

// IsValidInvoiceStatus reports whether s is a known invoice status.
func IsValidInvoiceStatus(s string) bool {
	switch s {
	case enum.InvoiceStatusPaid, enum.InvoiceStatusPending, enum.InvoiceStatusOverdue:
		return true
	}
	return false
}

// InvoiceFields is a manually issued invoice. Empty Date means today and
// empty Status means PENDING.
type InvoiceFields struct {
	CustomerName string
	Date         string
	Status       string
	Total        string
}

func (f InvoiceFields) invoice(today time.Time) (Invoice, error) {
	inv := Invoice{
		CustomerName: strings.TrimSpace(f.CustomerName),
		Date:         strings.TrimSpace(f.Date),
		Status:       strings.ToUpper(strings.TrimSpace(f.Status)),
	}
	if inv.CustomerName == "" {
		return Invoice{}, fmt.Errorf("%w: customer_name is required", ErrInvalidInvoice)
	}
	if inv.Date == "" {
		inv.Date = today.Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, inv.Date); err != nil {
		return Invoice{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInvoice)
	}
	if inv.Status == "" {
		inv.Status = enum.InvoiceStatusPending
	} else if !IsValidInvoiceStatus(inv.Status) {
		return Invoice{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInvoice, inv.Status)
	}
	total, err := decimal.NewFromString(strings.TrimSpace(f.Total))
	if err != nil || total.IsNegative() {
		return Invoice{}, fmt.Errorf("%w: total must be a non-negative number", ErrInvalidInvoice)
	}
	inv.Total = total
	return inv, nil
}

// MatchInvoices keeps invoices whose id or customer name contains term,
// ignoring case.
func MatchInvoices(invoices []Invoice, term string) []Invoice {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return invoices
	}
	var out []Invoice
	for _, inv := range invoices {
		if strings.Contains(strings.ToLower(inv.ID), term) ||
			strings.Contains(strings.ToLower(inv.CustomerName), term) {
			out = append(out, inv)
		}
	}
	return out
}

// Billing is the invoices screen. It also listens for placed orders and
// issues one invoice per order.
type Billing struct {
	store collection.Store[Invoice]
	now   func() time.Time

	// serialises InvoiceOrder so one order never gets two invoices
	mu sync.Mutex
}

func NewBilling(store collection.Store[Invoice]) *Billing {
	return &Billing{store: store, now: time.Now}
}

func (b *Billing) List(term string) []Invoice {
	return MatchInvoices(b.store.Documents(), term)
}

func (b *Billing) Get(id string) (Invoice, error) {
	for _, inv := range b.store.Documents() {
		if inv.ID == id {
			return inv, nil
		}
	}
	return Invoice{}, ErrInvoiceNotFound
}

func (b *Billing) Create(ctx context.Context, f InvoiceFields) (Invoice, error) {
	inv, err := f.invoice(b.now())
	if err != nil {
		return Invoice{}, err
	}
	inv.ID = uuid.NewString()
	return b.store.Add(ctx, inv)
}

// InvoiceOrder issues the invoice for o. An order paid in full is PAID,
// otherwise PENDING. Invoicing an already invoiced order returns the
// existing invoice.
func (b *Billing) InvoiceOrder(ctx context.Context, o order.Order) (Invoice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, inv := range b.store.Documents() {
		if inv.OrderID != "" && inv.OrderID == o.ID {
			return inv, nil
		}
	}

	status := enum.InvoiceStatusPending
	if o.AmountPaid.GreaterThanOrEqual(o.Total) {
		status = enum.InvoiceStatusPaid
	}
	date := o.CreatedAt
	if date.IsZero() {
		date = b.now()
	}
	inv := Invoice{
		ID:           uuid.NewString(),
		CustomerName: o.CustomerName,
		Date:         date.Format(dateLayout),
		Status:       status,
		Total:        o.Total,
		OrderID:      o.ID,
	}
	return b.store.Add(ctx, inv)
}

// SetStatus moves the invoice to status. Any known status may follow any
// other; a PAID invoice can be reopened after a refund.
func (b *Billing) SetStatus(ctx context.Context, id, status string) (Invoice, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !IsValidInvoiceStatus(status) {
		return Invoice{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInvoice, status)
	}
	inv, err := b.Get(id)
	if err != nil {
		return Invoice{}, err
	}
	inv.Status = status
	if err := b.store.Update(ctx, id, inv); err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

// Notify implements order.Notifier.
func (b *Billing) Notify(ctx context.Context, eventType string, o order.Order) {
	if eventType != enum.EventOrderCreated {
		return
	}
	if _, err := b.InvoiceOrder(ctx, o); err != nil {
		log.Printf("ERROR: invoice order %s: %v", o.ID, err)
	}
}
