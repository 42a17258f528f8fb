package store

import (
	"context"
	"time"
)

// Blob is one stored snapshot with its bookkeeping columns.
type Blob struct {
	Key       string    `db:"key"`
	Data      []byte    `db:"data"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Store persists opaque snapshots by key. The technology collection and the
// application settings each live under their own key.
type Store interface {
	// Load returns the blob under key. found is false when the key has
	// never been written or was deleted.
	Load(ctx context.Context, key string) (data []byte, found bool, err error)

	// Save replaces the blob under key in a single statement, so a reader
	// sees either the previous snapshot or the new one.
	Save(ctx context.Context, key string, data []byte) error

	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}
