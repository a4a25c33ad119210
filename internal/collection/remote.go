package collection

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/umami-pos/api/internal/database"
)

// Remote mirrors a document collection. Every successful write is followed
// by one full reload; a failed write leaves the list untouched and sets Err.
type Remote[T Record[T]] struct {
	store      database.DocumentStore
	collection string

	mu      sync.RWMutex
	docs    []T
	err     error
	loading int

	// fetchSeq orders reloads; applied is the newest reload written to docs.
	fetchSeq uint64
	applied  uint64
}

// NewRemote creates a Remote and performs the initial fetch. A failed
// initial fetch is reported through Err, not returned.
func NewRemote[T Record[T]](ctx context.Context, store database.DocumentStore, collection string) *Remote[T] {
	r := &Remote[T]{store: store, collection: collection}
	r.Fetch(ctx)
	return r
}

// Collection returns the collection name.
func (r *Remote[T]) Collection() string {
	return r.collection
}

// Documents returns a snapshot of the last successful reload.
func (r *Remote[T]) Documents() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]T, len(r.docs))
	copy(out, r.docs)
	return out
}

// Err returns the last failure, cleared by the next successful fetch.
func (r *Remote[T]) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Loading reports whether a reload is in flight.
func (r *Remote[T]) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading > 0
}

// Fetch reloads the full collection.
func (r *Remote[T]) Fetch(ctx context.Context) error {
	r.mu.Lock()
	r.fetchSeq++
	seq := r.fetchSeq
	r.loading++
	r.mu.Unlock()

	docs, err := r.load(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.loading--
	if err != nil {
		log.Printf("ERROR: fetch %s: %v", r.collection, err)
		// Older reloads never override a newer result.
		if seq > r.applied {
			r.applied = seq
			r.err = err
		}
		return err
	}
	if seq > r.applied {
		r.applied = seq
		r.docs = docs
		r.err = nil
	}
	return nil
}

func (r *Remote[T]) load(ctx context.Context) ([]T, error) {
	raw, err := r.store.ListAll(ctx, r.collection)
	if err != nil {
		return nil, err
	}
	docs := make([]T, 0, len(raw))
	for _, d := range raw {
		var entity T
		if err := json.Unmarshal(d.Data, &entity); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", r.collection, d.ID, err)
		}
		docs = append(docs, entity.WithID(d.ID))
	}
	return docs, nil
}

// Add creates entity remotely and returns it with the assigned id.
func (r *Remote[T]) Add(ctx context.Context, entity T) (T, error) {
	data, err := encodeFields(entity)
	if err != nil {
		return entity, r.fail("add to", err)
	}
	id, err := r.store.Create(ctx, r.collection, data)
	if err != nil {
		return entity, r.fail("add to", err)
	}
	r.Fetch(ctx)
	return entity.WithID(id), nil
}

// Update writes entity's fields over the document with the given id.
func (r *Remote[T]) Update(ctx context.Context, id string, entity T) error {
	data, err := encodeFields(entity)
	if err != nil {
		return r.fail("update in", err)
	}
	if err := r.store.Update(ctx, r.collection, id, data); err != nil {
		return r.fail("update in", err)
	}
	r.Fetch(ctx)
	return nil
}

// Remove deletes the document with the given id.
func (r *Remote[T]) Remove(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, r.collection, id); err != nil {
		return r.fail("remove from", err)
	}
	r.Fetch(ctx)
	return nil
}

func (r *Remote[T]) fail(op string, err error) error {
	log.Printf("ERROR: %s %s: %v", op, r.collection, err)
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
	return fmt.Errorf("%s %s: %w", op, r.collection, err)
}

// encodeFields marshals entity without its id; the store owns ids.
func encodeFields(entity any) (json.RawMessage, error) {
	b, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("entity must encode to a JSON object: %w", err)
	}
	delete(fields, "id")
	return json.Marshal(fields)
}
