package cart

import "strconv"

// Key names understood by Entry.HandleKey besides the digits.
const (
	KeyEnter     = "Enter"
	KeyEscape    = "Escape"
	KeyBackspace = "Backspace"
)

const (
	maxEntryDigits   = 2
	maxEntryQuantity = 99
)

// Entry is the keyboard quantity buffer for one selected line item.
// Commit writes through Cart.SetQuantity, the same path the buttons use.
type Entry struct {
	cart     *Cart
	selected string
	buffer   string
}

// NewEntry binds an entry buffer to c.
func NewEntry(c *Cart) *Entry {
	return &Entry{cart: c}
}

// prune drops a selection whose line item left the cart.
func (e *Entry) prune() {
	if e.selected != "" && !e.cart.Has(e.selected) {
		e.selected = ""
		e.buffer = ""
	}
}

// Select targets the line item and clears the buffer.
func (e *Entry) Select(productID string) error {
	if !e.cart.Has(productID) {
		return ErrItemNotFound
	}
	e.selected = productID
	e.buffer = ""
	return nil
}

// Pending returns the selected product id and the typed digits.
// An empty id means nothing is selected.
func (e *Entry) Pending() (productID, buffer string) {
	e.prune()
	return e.selected, e.buffer
}

// HandleKey applies one keystroke. Keys are ignored while nothing is selected.
func (e *Entry) HandleKey(key string) {
	e.prune()
	if e.selected == "" {
		return
	}
	switch key {
	case KeyEnter:
		e.Commit()
	case KeyEscape:
		e.Cancel()
	case KeyBackspace:
		if n := len(e.buffer); n > 0 {
			e.buffer = e.buffer[:n-1]
		}
	default:
		if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
			e.typeDigit(key)
		}
	}
}

func (e *Entry) typeDigit(d string) {
	next := e.buffer + d
	if len(next) > maxEntryDigits {
		return
	}
	if n, err := strconv.Atoi(next); err != nil || n > maxEntryQuantity {
		return
	}
	e.buffer = next
}

// Commit applies the buffer to the selected item and clears the selection.
// An empty buffer leaves the quantity unchanged; zero removes the item.
func (e *Entry) Commit() {
	e.prune()
	if e.selected != "" && e.buffer != "" {
		if n, err := strconv.Atoi(e.buffer); err == nil && n >= 0 && n <= maxEntryQuantity {
			e.cart.SetQuantity(e.selected, n)
		}
	}
	e.selected = ""
	e.buffer = ""
}

// Cancel clears the selection without touching the cart.
func (e *Entry) Cancel() {
	e.selected = ""
	e.buffer = ""
}
