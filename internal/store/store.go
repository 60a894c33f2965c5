// Package store owns the in-memory entity graph and its durability policy.
// All mutations are serialized through one mutex; durable writes always
// cover the entire graph.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hyperfocal/ledgermind/internal/ledger"
	"github.com/hyperfocal/ledgermind/internal/storage"
)

// Store is the single source of truth while the process is alive.
type Store struct {
	backend storage.Backend
	logger  *slog.Logger

	mu         sync.Mutex
	state      *ledger.State
	dirty      bool
	dirtySince time.Time
	gen        uint64
}

// Open loads the last persisted snapshot from the backend, or initializes an
// empty graph when none exists. An unreadable snapshot is treated as absent:
// the corruption is logged and the store starts fresh, never fatal.
func Open(ctx context.Context, backend storage.Backend, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{backend: backend, logger: logger}

	data, err := backend.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNoSnapshot):
		logger.Info("no snapshot found, starting with empty state")
		s.state = ledger.NewState()
	case err != nil:
		return nil, fmt.Errorf("loading snapshot: %w", err)
	default:
		state := &ledger.State{}
		if uerr := json.Unmarshal(data, state); uerr != nil {
			logger.Warn("snapshot unreadable, starting with empty state", "error", uerr)
			s.state = ledger.NewState()
		} else {
			state.ResetSession()
			s.state = state
		}
	}
	return s, nil
}

// Mutate applies an in-memory change under the lock and marks the store
// dirty. It never performs I/O and never blocks on the flusher. Every
// successful mutation stamps the session's last-activity time.
func (s *Store) Mutate(fn func(*ledger.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.state); err != nil {
		return err
	}
	s.state.Session.LastActivityAt = ledger.Now()
	if !s.dirty {
		s.dirty = true
		s.dirtySince = time.Now()
	}
	s.gen++
	return nil
}

// View runs fn against the current state under the lock. fn must not retain
// references to the graph after it returns.
func (s *Store) View(fn func(*ledger.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}

// Flush writes the entire graph to the backend. The snapshot bytes are
// produced under the lock; the write itself happens outside it, so a slow
// backend cannot stall mutations. The dirty flag clears only if no mutation
// landed while the write was in flight.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.state, "", "  ")
	gen := s.gen
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := s.backend.Save(ctx, data); err != nil {
		return fmt.Errorf("persisting snapshot: %w", err)
	}

	s.mu.Lock()
	if s.gen == gen {
		s.dirty = false
	}
	s.mu.Unlock()
	return nil
}

// DirtyFor returns how long the store has carried unflushed changes, and
// whether it is dirty at all.
func (s *Store) DirtyFor() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return 0, false
	}
	return time.Since(s.dirtySince), true
}

// SessionID returns the current session identifier.
func (s *Store) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Session.SessionID
}
