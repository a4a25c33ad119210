// Package cart builds an in-progress order: line items keyed by product,
// quantity edits and a running total.
//
// A Cart is not safe for concurrent use; the owning terminal session
// serialises access.
package cart

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
	"github.com/umami-pos/api/internal/catalog"
)

// ErrItemNotFound is returned when a product id is not in the cart.
var ErrItemNotFound = errors.New("item not in cart")

// LineItem is a product with a quantity. Quantity is always >= 1 while the
// item is in a cart.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is price times quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart is an insertion-ordered set of line items with unique product ids.
type Cart struct {
	items []LineItem
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{}
}

func (c *Cart) index(productID string) int {
	for i, it := range c.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add increments the product's quantity, or appends it with quantity 1.
func (c *Cart) Add(p catalog.Product) {
	if i := c.index(p.ID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Category:  p.Category,
		Image:     p.ImageOrPlaceholder(),
		Quantity:  1,
	})
}

// ChangeQuantity adds delta to the item's quantity. The result is clamped
// at zero and a zero item is dropped. Absent products are ignored.
func (c *Cart) ChangeQuantity(productID string, delta int) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	q := c.items[i].Quantity
	switch {
	case delta > 0 && q > math.MaxInt-delta:
		q = math.MaxInt
	case delta < 0 && q < math.MinInt-delta:
		q = 0
	default:
		q += delta
	}
	c.SetQuantity(productID, q)
}

// SetQuantity sets the item's quantity. Values below one remove the item.
// Both the increment buttons and keyboard entry end up here.
func (c *Cart) SetQuantity(productID string, qty int) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	if qty <= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
		return
	}
	c.items[i].Quantity = qty
}

// Remove drops the item regardless of quantity.
func (c *Cart) Remove(productID string) {
	if i := c.index(productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// Has reports whether the product is in the cart.
func (c *Cart) Has(productID string) bool {
	return c.index(productID) >= 0
}

// Item returns the line item for productID.
func (c *Cart) Item(productID string) (LineItem, error) {
	i := c.index(productID)
	if i < 0 {
		return LineItem{}, ErrItemNotFound
	}
	return c.items[i], nil
}

// Items returns a copy of the line items in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len is the number of distinct products.
func (c *Cart) Len() int {
	return len(c.items)
}

// Total is the sum of price times quantity, recomputed on every call.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.items = nil
}
