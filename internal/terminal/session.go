// Package terminal holds one POS order screen per session: its cart, the
// keyboard quantity buffer and the confirmation dialog.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/umami-pos/api/internal/cart"
	"github.com/umami-pos/api/internal/catalog"
	"github.com/umami-pos/api/internal/checkout"
	"github.com/umami-pos/api/internal/modal"
	"github.com/umami-pos/api/internal/order"
)

var (
	ErrClosed          = errors.New("terminal session closed")
	ErrProductNotFound = errors.New("product not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrCheckoutClosed  = errors.New("checkout is not open")
	ErrNoDestination   = order.ErrNoDestination
)

// ProductSource lists the products a terminal can sell.
// Satisfied by collection.Store[catalog.Product].
type ProductSource interface {
	Documents() []catalog.Product
}

// Placer records confirmed orders. Satisfied by *order.Book.
type Placer interface {
	Place(ctx context.Context, o order.Order) (order.Order, error)
}

// Session is one order screen. All methods are safe for concurrent use and
// are applied one at a time.
type Session struct {
	ID      string
	OwnerID string

	mu       sync.Mutex
	cart     *cart.Cart
	entry    *cart.Entry
	form     *checkout.Form
	dialog   modal.Selection[checkout.Form]
	orders   Placer
	products ProductSource
	now      func() time.Time
	lastUsed time.Time
	closed   bool
}

func newSession(ownerID string, orders Placer, products ProductSource, tableCount int, now func() time.Time) *Session {
	c := cart.New()
	return &Session{
		ID:       uuid.NewString(),
		OwnerID:  ownerID,
		cart:     c,
		entry:    cart.NewEntry(c),
		form:     checkout.NewForm(tableCount),
		orders:   orders,
		products: products,
		now:      now,
		lastUsed: now(),
	}
}

// lock acquires the session and fails once it is closed.
func (s *Session) lock() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.lastUsed = s.now()
	return nil
}

func (s *Session) findProduct(id string) (catalog.Product, error) {
	for _, p := range s.products.Documents() {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, ErrProductNotFound
}

// AddProduct puts one more of the product in the cart.
func (s *Session) AddProduct(productID string) (Snapshot, error) {
	if err := s.lock(); err != nil {
		return Snapshot{}, err
	}
	defer s.mu.Unlock()

	p, err := s.findProduct(productID)
	if err != nil {
		return Snapshot{}, err
	}
	s.cart.Add(p)
	return s.snapshot(), nil
}

// ChangeQuantity applies delta to the line item.
func (s *Session) ChangeQuantity(productID string, delta int) (Snapshot, error) {
	if err := s.lock(); err != nil {
		return Snapshot{}, err
	}
	defer s.mu.Unlock()

	s.cart.ChangeQuantity(productID, delta)
	return s.snapshot(), nil
}

// RemoveItem drops the line item.
func (s *Session) RemoveItem(productID string) (Snapshot, error) {
	if err := s.lock(); err != nil {
		return Snapshot{}, err
	}
	defer s.mu.Unlock()

	s.cart.Remove(productID)
	return s.snapshot(), nil
}

// SelectItem targets the line item for keyboard entry.
func (s *Session) SelectItem(productID string) (Snapshot, error) {
	if err := s.lock(); err != nil {
		return Snapshot{}, err
	}
	defer s.mu.Unlock()

	if err := s.entry.Select(productID); err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(), nil
}

// Key feeds one keystroke to the quantity buffer.
func (s *Session) Key(key string) (Snapshot, error) {
	if err := s.lock(); err != nil {
		return Snapshot{}, err
	}
	defer s.mu.Unlock()

	s.entry.HandleKey(key)
	return s.snapshot(), nil
}

// OpenCheckout opens the confirmation dialog with a fresh form.
func (s *Session) OpenCheckout() (Snapshot, error) {
	if err := s.lock(); err != nil {
		return Snapshot{}, err
	}
	defer s.mu.Unlock()

	if s.cart.Len() == 0 {
		return Snapshot{}, ErrEmptyCart
	}
	s.form.Reset()
	s.dialog.Open(s.form)
	return s.snapshot(), nil
}

// CheckoutUpdate carries the free-text fields and destination of the dialog.
// Nil fields are left unchanged.
type CheckoutUpdate struct {
	PayerName *string
	TaxID     *string
	Tendered  *string
	Table     *int
	Takeaway  bool
}

// UpdateCheckout edits the open dialog.
func (s *Session) UpdateCheckout(u CheckoutUpdate) (Snapshot, error) {
	if err := s.lock(); err != nil {
		return Snapshot{}, err
	}
	defer s.mu.Unlock()

	form := s.dialog.Selected()
	if form == nil {
		return Snapshot{}, ErrCheckoutClosed
	}
	if u.Table != nil {
		if err := form.SelectTable(*u.Table); err != nil {
			return Snapshot{}, err
		}
	} else if u.Takeaway {
		form.SelectTakeaway()
	}
	if u.PayerName != nil {
		form.PayerName = *u.PayerName
	}
	if u.TaxID != nil {
		form.TaxID = *u.TaxID
	}
	if u.Tendered != nil {
		form.SetTendered(*u.Tendered)
	}
	return s.snapshot(), nil
}

// SelectTable sends the order to table n, clearing takeaway.
func (s *Session) SelectTable(n int) (Snapshot, error) {
	return s.UpdateCheckout(CheckoutUpdate{Table: &n})
}

// SelectTakeaway marks the order as takeaway, clearing the table.
func (s *Session) SelectTakeaway() (Snapshot, error) {
	return s.UpdateCheckout(CheckoutUpdate{Takeaway: true})
}

// KeypadKey feeds one keypad press to the dialog. Enter with a destination
// confirms the order, which is then returned.
func (s *Session) KeypadKey(ctx context.Context, key string) (Snapshot, *order.Order, error) {
	if err := s.lock(); err != nil {
		return Snapshot{}, nil, err
	}
	defer s.mu.Unlock()

	form := s.dialog.Selected()
	if form == nil {
		return Snapshot{}, nil, ErrCheckoutClosed
	}
	if !form.HandleKey(key) {
		return s.snapshot(), nil, nil
	}
	placed, err := s.confirm(ctx)
	if err != nil {
		return Snapshot{}, nil, err
	}
	return s.snapshot(), &placed, nil
}

// Confirm turns the cart into an order, then clears the cart and closes
// the dialog. On failure the cart is left as it was.
func (s *Session) Confirm(ctx context.Context) (order.Order, error) {
	if err := s.lock(); err != nil {
		return order.Order{}, err
	}
	defer s.mu.Unlock()
	return s.confirm(ctx)
}

func (s *Session) confirm(ctx context.Context) (order.Order, error) {
	form := s.dialog.Selected()
	if form == nil {
		return order.Order{}, ErrCheckoutClosed
	}
	if s.cart.Len() == 0 {
		return order.Order{}, ErrEmptyCart
	}
	if !form.CanConfirm() {
		return order.Order{}, ErrNoDestination
	}

	total := s.cart.Total()
	o, err := order.New(form.Details(), s.cart.Items(), total, s.now())
	if err != nil {
		return order.Order{}, err
	}
	placed, err := s.orders.Place(ctx, o)
	if err != nil {
		return order.Order{}, fmt.Errorf("confirm: %w", err)
	}

	s.cart.Clear()
	s.entry.Cancel()
	s.dialog.Close()
	s.form.Reset()
	return placed, nil
}

// CancelCheckout closes the dialog without touching the cart.
func (s *Session) CancelCheckout() (Snapshot, error) {
	if err := s.lock(); err != nil {
		return Snapshot{}, err
	}
	defer s.mu.Unlock()

	s.dialog.Close()
	return s.snapshot(), nil
}

// Snapshot returns the current state for rendering.
func (s *Session) Snapshot() (Snapshot, error) {
	if err := s.lock(); err != nil {
		return Snapshot{}, err
	}
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

// Close discards the session. Later calls return ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

// closeIfIdle closes the session only if it has not been used since cutoff.
// The check and the close happen under one lock, so a call that touches the
// session first keeps it open.
func (s *Session) closeIfIdle(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.lastUsed.Before(cutoff) {
		return false
	}
	s.closeLocked()
	return true
}

func (s *Session) closeLocked() {
	s.closed = true
	s.cart.Clear()
	s.entry.Cancel()
	s.dialog.Close()
}
