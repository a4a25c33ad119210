package order

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/umami-pos/api/internal/collection"
	"github.com/umami-pos/api/internal/enum"
)

// ErrNotFound is returned by Get and SetStatus for an unknown id.
var ErrNotFound = errors.New("order not found")

// Notifier receives order lifecycle events.
type Notifier interface {
	Notify(ctx context.Context, eventType string, o Order)
}

// Notifiers fans an event out to several notifiers.
type Notifiers []Notifier

func (ns Notifiers) Notify(ctx context.Context, eventType string, o Order) {
	for _, n := range ns {
		n.Notify(ctx, eventType, o)
	}
}

// Book is the managed-orders collection.
type Book struct {
	store    collection.Store[Order]
	notifier Notifier
}

// NewBook creates a Book over store. notifier may be nil.
func NewBook(store collection.Store[Order], notifier Notifier) *Book {
	return &Book{store: store, notifier: notifier}
}

func (b *Book) notify(ctx context.Context, eventType string, o Order) {
	if b.notifier != nil {
		b.notifier.Notify(ctx, eventType, o)
	}
}

// Place adds o to the book and returns it with its id.
func (b *Book) Place(ctx context.Context, o Order) (Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	placed, err := b.store.Add(ctx, o)
	if err != nil {
		return Order{}, fmt.Errorf("place order: %w", err)
	}
	b.notify(ctx, enum.EventOrderCreated, placed)
	return placed, nil
}

// List returns every order, newest first.
func (b *Book) List() []Order {
	return b.store.Documents()
}

// Get returns the order with the given id.
func (b *Book) Get(id string) (Order, error) {
	for _, o := range b.store.Documents() {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

// Delete permanently removes the order. Unknown ids are ignored.
func (b *Book) Delete(ctx context.Context, id string) error {
	o, err := b.Get(id)
	if err != nil {
		return nil
	}
	if err := b.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	b.notify(ctx, enum.EventOrderDeleted, o)
	return nil
}

// SetStatus moves the order to status if the transition is allowed.
func (b *Book) SetStatus(ctx context.Context, id, status string) (Order, error) {
	o, err := b.Get(id)
	if err != nil {
		return Order{}, err
	}
	if err := ValidateTransition(o.Status, status); err != nil {
		return Order{}, err
	}
	o.Status = status
	if err := b.store.Update(ctx, id, o); err != nil {
		return Order{}, fmt.Errorf("update order status: %w", err)
	}
	log.Printf("order %s status -> %s", id, status)
	b.notify(ctx, enum.EventOrderUpdated, o)
	return o, nil
}
