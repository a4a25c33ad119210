package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memDoc struct {
	seq       int64
	createdAt time.Time
	fields    map[string]json.RawMessage
}

// MemoryStore is an in-process DocumentStore and KVStore.
// Used when no DATABASE_URL is configured and in tests.
type MemoryStore struct {
	mu          sync.RWMutex
	seq         int64
	collections map[string]map[string]*memDoc
	kv          map[string]json.RawMessage
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]*memDoc),
		kv:          make(map[string]json.RawMessage),
	}
}

// ListAll returns the collection newest first.
func (s *MemoryStore) ListAll(_ context.Context, collection string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.collections[collection]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return docs[ids[i]].seq > docs[ids[j]].seq
	})

	result := make([]Document, 0, len(ids))
	for _, id := range ids {
		d := docs[id]
		data, err := json.Marshal(d.fields)
		if err != nil {
			return nil, fmt.Errorf("encode %s/%s: %w", collection, id, err)
		}
		result = append(result, Document{ID: id, Data: data, CreatedAt: d.createdAt})
	}
	return result, nil
}

// Create stores data under a new id.
func (s *MemoryStore) Create(_ context.Context, collection string, data json.RawMessage) (string, error) {
	fields, err := decodeFields(data)
	if err != nil {
		return "", fmt.Errorf("create in %s: %w", collection, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]*memDoc)
	}
	s.seq++
	id := uuid.New().String()
	s.collections[collection][id] = &memDoc{seq: s.seq, createdAt: time.Now(), fields: fields}
	return id, nil
}

// Update merges the top-level fields of data. A missing id is a no-op.
func (s *MemoryStore) Update(_ context.Context, collection, id string, data json.RawMessage) error {
	fields, err := decodeFields(data)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.collections[collection][id]
	if !ok {
		return nil
	}
	for k, v := range fields {
		d.fields[k] = v
	}
	return nil
}

// Delete removes a document. A missing id is a no-op.
func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections[collection], id)
	return nil
}

// Get returns the value stored under key, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.kv[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append(json.RawMessage(nil), v...), nil
}

// Put stores value under key.
func (s *MemoryStore) Put(_ context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("put %s: invalid JSON", key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = append(json.RawMessage(nil), value...)
	return nil
}

func decodeFields(data json.RawMessage) (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if len(data) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("document must be a JSON object: %w", err)
	}
	return fields, nil
}
