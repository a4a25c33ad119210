// Package collection holds list state with CRUD mutators, either in memory
// or mirrored from a remote document collection. Both variants share Store.
package collection

import "context"

// Entity is anything with a stable identifier.
type Entity interface {
	GetID() string
}

// Record is an Entity that can be rebuilt with a store-assigned id.
type Record[T any] interface {
	Entity
	WithID(id string) T
}

// Store is the shape shared by Local and Remote.
type Store[T any] interface {
	Documents() []T
	Add(ctx context.Context, entity T) (T, error)
	Update(ctx context.Context, id string, entity T) error
	Remove(ctx context.Context, id string) error
}
