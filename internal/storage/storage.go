// Package storage provides whole-document snapshot persistence. A backend
// stores exactly one snapshot: the serialized entity graph, written and read
// as a unit. Partial writes are never exposed to callers.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoSnapshot indicates no snapshot has been persisted yet (first run).
var ErrNoSnapshot = errors.New("no snapshot stored")

// Backend persists a single opaque snapshot document.
type Backend interface {
	// Load returns the last persisted snapshot, or ErrNoSnapshot.
	Load(ctx context.Context) ([]byte, error)
	// Save atomically replaces the persisted snapshot.
	Save(ctx context.Context, data []byte) error
	Close() error
}

// Open selects a backend by name. Supported backends are "file" (atomic JSON
// file, the default) and "sqlite" (single-row snapshot table).
func Open(backend, path string) (Backend, error) {
	switch backend {
	case "", "file":
		return NewFileBackend(path), nil
	case "sqlite":
		return NewSQLiteBackend(path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
