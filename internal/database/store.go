package database

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by KV lookups for a missing key.
// Document updates and deletes on a missing id are no-ops and never return it.
var ErrNotFound = errors.New("not found")

// Document is a single record in a named collection.
type Document struct {
	ID        string
	Data      json.RawMessage
	CreatedAt time.Time
}

// DocumentStore is the remote document-collection API.
// Satisfied by *PostgresStore and *MemoryStore.
type DocumentStore interface {
	ListAll(ctx context.Context, collection string) ([]Document, error)
	Create(ctx context.Context, collection string, data json.RawMessage) (string, error)
	Update(ctx context.Context, collection, id string, data json.RawMessage) error
	Delete(ctx context.Context, collection, id string) error
}

// KVStore persists a JSON value under a fixed key.
type KVStore interface {
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Put(ctx context.Context, key string, value json.RawMessage) error
}
