// Package order defines finalized orders and the managed-orders book.
package order

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/umami-pos/api/internal/cart"
	"github.com/umami-pos/api/internal/enum"
)

// Placeholders stored when the payer leaves the optional fields blank.
const (
	NoCustomerName = "no company name provided"
	NoTaxID        = "no tax ID provided"
)

var (
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNoDestination     = errors.New("destination is required")
)

// Destination is a table number or takeaway, never both.
type Destination struct {
	Table    int  `json:"table,omitempty"`
	Takeaway bool `json:"takeaway"`
}

// Valid reports exactly one of table and takeaway set.
func (d Destination) Valid() bool {
	return (d.Table > 0) != d.Takeaway
}

// Label renders the destination for tickets and lists.
func (d Destination) Label() string {
	if d.Takeaway {
		return "Takeaway"
	}
	if d.Table > 0 {
		return "Table " + strconv.Itoa(d.Table)
	}
	return ""
}

// RoutingKey is the kitchen routing suffix for the destination.
func (d Destination) RoutingKey() string {
	if d.Takeaway {
		return "takeaway"
	}
	return fmt.Sprintf("table.%d", d.Table)
}

// Details is what the payer fills in at confirmation, defaults applied.
type Details struct {
	CustomerName string
	TaxID        string
	AmountPaid   decimal.Decimal
	Destination  Destination
}

// Order is a confirmed order. Items and Total are frozen at confirmation.
type Order struct {
	ID           string          `json:"id"`
	CustomerName string          `json:"customer_name"`
	TaxID        string          `json:"tax_id"`
	AmountPaid   decimal.Decimal `json:"amount_paid"`
	Change       decimal.Decimal `json:"change"`
	Destination  Destination     `json:"destination"`
	CreatedAt    time.Time       `json:"created_at"`
	Status       string          `json:"status"`
	Items        []cart.LineItem `json:"items"`
	Total        decimal.Decimal `json:"total"`
}

func (o Order) GetID() string { return o.ID }

func (o Order) WithID(id string) Order {
	o.ID = id
	return o
}

// New builds a PENDING order from a copy of items. Blank name and tax id
// fall back to the placeholders.
func New(d Details, items []cart.LineItem, total decimal.Decimal, now time.Time) (Order, error) {
	if !d.Destination.Valid() {
		return Order{}, ErrNoDestination
	}
	frozen := make([]cart.LineItem, len(items))
	copy(frozen, items)

	name := d.CustomerName
	if name == "" {
		name = NoCustomerName
	}
	taxID := d.TaxID
	if taxID == "" {
		taxID = NoTaxID
	}

	return Order{
		CustomerName: name,
		TaxID:        taxID,
		AmountPaid:   d.AmountPaid,
		Change:       ChangeDue(d.AmountPaid, total),
		Destination:  d.Destination,
		CreatedAt:    now,
		Status:       enum.OrderStatusPending,
		Items:        frozen,
		Total:        total,
	}, nil
}

// ChangeDue is tendered minus total, never negative.
func ChangeDue(tendered, total decimal.Decimal) decimal.Decimal {
	change := tendered.Sub(total)
	if change.IsNegative() {
		return decimal.Zero
	}
	return change
}

// IsValidStatus reports whether s is a known order status.
func IsValidStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusInPreparation,
		enum.OrderStatusCompleted, enum.OrderStatusCancelled:
		return true
	}
	return false
}

// ValidateTransition checks that current may move to next.
// COMPLETED and CANCELLED are final.
func ValidateTransition(current, next string) error {
	if !IsValidStatus(next) {
		return ErrInvalidStatus
	}
	allowed := map[string][]string{
		enum.OrderStatusPending:       {enum.OrderStatusInPreparation, enum.OrderStatusCompleted, enum.OrderStatusCancelled},
		enum.OrderStatusInPreparation: {enum.OrderStatusCompleted, enum.OrderStatusCancelled},
	}
	for _, s := range allowed[current] {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
}
