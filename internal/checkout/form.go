// Package checkout is the order confirmation step: payer details, the
// tendered amount keypad and the destination choice.
package checkout

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/umami-pos/api/internal/order"
)

// Keypad keys besides the digits.
const (
	KeyEnter     = "Enter"
	KeyBackspace = "Backspace"
	KeyBack      = "←"
	KeyPoint     = "."
)

// DefaultTableCount is the number of selectable tables.
const DefaultTableCount = 12

var ErrInvalidTable = errors.New("invalid table number")

// Form is the state of one confirmation dialog.
type Form struct {
	tableCount int

	PayerName string
	TaxID     string
	tendered  string
	table     int
	takeaway  bool
}

// NewForm creates an empty form with tables numbered 1..tableCount.
func NewForm(tableCount int) *Form {
	if tableCount <= 0 {
		tableCount = DefaultTableCount
	}
	return &Form{tableCount: tableCount}
}

// Reset clears every field. The dialog resets on each open.
func (f *Form) Reset() {
	*f = Form{tableCount: f.tableCount}
}

// TableCount returns the number of selectable tables.
func (f *Form) TableCount() int {
	return f.tableCount
}

// SelectTable chooses table n and clears takeaway.
func (f *Form) SelectTable(n int) error {
	if n < 1 || n > f.tableCount {
		return ErrInvalidTable
	}
	f.table = n
	f.takeaway = false
	return nil
}

// SelectTakeaway chooses takeaway and clears the table.
func (f *Form) SelectTakeaway() {
	f.table = 0
	f.takeaway = true
}

// Destination returns the current choice, possibly empty.
func (f *Form) Destination() order.Destination {
	return order.Destination{Table: f.table, Takeaway: f.takeaway}
}

// CanConfirm reports whether a destination has been chosen.
func (f *Form) CanConfirm() bool {
	return f.table > 0 || f.takeaway
}

// HandleKey applies one keypad press and reports whether it asked to submit.
// Enter only submits when the form can be confirmed.
func (f *Form) HandleKey(key string) (submit bool) {
	switch key {
	case KeyEnter:
		return f.CanConfirm()
	case KeyBack, KeyBackspace:
		if n := len(f.tendered); n > 0 {
			f.tendered = f.tendered[:n-1]
		}
	case KeyPoint:
		if !strings.Contains(f.tendered, KeyPoint) {
			f.tendered += KeyPoint
		}
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			f.tendered += key
		}
	}
	return false
}

// SetTendered replaces the tendered text, keeping digits and the first point.
func (f *Form) SetTendered(s string) {
	var b strings.Builder
	seenPoint := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !seenPoint:
			seenPoint = true
			b.WriteRune(r)
		}
	}
	f.tendered = b.String()
}

// TenderedText is the raw keypad buffer.
func (f *Form) TenderedText() string {
	return f.tendered
}

// Tendered parses the keypad buffer. Empty or unparseable input is zero.
func (f *Form) Tendered() decimal.Decimal {
	s := strings.TrimSuffix(f.tendered, KeyPoint)
	if strings.HasPrefix(s, KeyPoint) {
		s = "0" + s
	}
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Change is the change due for total, two decimals, never negative.
// Underpayment shows 0.00 and does not block confirmation.
func (f *Form) Change(total decimal.Decimal) string {
	return order.ChangeDue(f.Tendered(), total).StringFixed(2)
}

// Details resolves the form into order details.
func (f *Form) Details() order.Details {
	return order.Details{
		CustomerName: strings.TrimSpace(f.PayerName),
		TaxID:        strings.TrimSpace(f.TaxID),
		AmountPaid:   f.Tendered(),
		Destination:  f.Destination(),
	}
}
