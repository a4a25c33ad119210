package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx shared by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id          UUID PRIMARY KEY,
	collection  TEXT NOT NULL,
	data        JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS documents_collection_created_idx
	ON documents (collection, created_at DESC);

CREATE TABLE IF NOT EXISTS kv (
	key         TEXT PRIMARY KEY,
	value       JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Connect opens a pgx pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Migrate creates the documents and kv tables if they do not exist.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// PostgresStore keeps every collection in one JSONB table.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore creates a PostgresStore on a pool or transaction.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// ListAll returns the collection newest first, matching the prepend order of
// the in-memory collections.
func (s *PostgresStore) ListAll(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, data, created_at FROM documents
		 WHERE collection = $1
		 ORDER BY created_at DESC, id`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var (
			id   uuid.UUID
			data []byte
			doc  Document
		)
		if err := rows.Scan(&id, &data, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		doc.ID = id.String()
		doc.Data = json.RawMessage(data)
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return docs, nil
}

// Create inserts a new document and returns its generated id.
func (s *PostgresStore) Create(ctx context.Context, collection string, data json.RawMessage) (string, error) {
	id := uuid.New()
	_, err := s.db.Exec(ctx,
		`INSERT INTO documents (id, collection, data) VALUES ($1, $2, $3)`,
		id, collection, []byte(data))
	if err != nil {
		return "", fmt.Errorf("create in %s: %w", collection, err)
	}
	return id.String(), nil
}

// Update merges data into the stored fields. A missing id is a no-op.
func (s *PostgresStore) Update(ctx context.Context, collection, id string, data json.RawMessage) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		// Ids this store never issued cannot match a row.
		return nil
	}
	_, err = s.db.Exec(ctx,
		`UPDATE documents SET data = data || $3::jsonb, updated_at = now()
		 WHERE collection = $1 AND id = $2`,
		collection, docID, []byte(data))
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

// Delete removes a document. A missing id is a no-op.
func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	docID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	_, err = s.db.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, docID)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// PostgresKV is a KVStore on the kv table.
type PostgresKV struct {
	db DBTX
}

// NewPostgresKV creates a PostgresKV.
func NewPostgresKV(db DBTX) *PostgresKV {
	return &PostgresKV{db: db}
}

// Get returns the value stored under key, or ErrNotFound.
func (s *PostgresKV) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var value []byte
	err := s.db.QueryRow(ctx, `SELECT value FROM kv WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return json.RawMessage(value), nil
}

// Put upserts value under key.
func (s *PostgresKV) Put(ctx context.Context, key string, value json.RawMessage) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO kv (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, []byte(value))
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
