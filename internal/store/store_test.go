package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hyperfocal/ledgermind/internal/ledger"
	"github.com/hyperfocal/ledgermind/internal/storage"
	"github.com/hyperfocal/ledgermind/internal/store"
	"github.com/stretchr/testify/require"
)

// flakyBackend fails the first failures saves, then behaves like an
// in-memory backend.
type flakyBackend struct {
	mu       sync.Mutex
	failures int
	saves    int
	data     []byte
}

func (b *flakyBackend) Load(_ context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.data == nil {
		return nil, storage.ErrNoSnapshot
	}
	return b.data, nil
}

func (b *flakyBackend) Save(_ context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saves++
	if b.saves <= b.failures {
		return errors.New("disk on fire")
	}
	b.data = data
	return nil
}

func (b *flakyBackend) Close() error { return nil }

func newFileStore(t *testing.T, path string) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), storage.NewFileBackend(path), nil)
	require.NoError(t, err)
	return st
}

func TestOpen_FreshStateWhenNoSnapshot(t *testing.T) {
	st := newFileStore(t, filepath.Join(t.TempDir(), "state.json"))

	st.View(func(s *ledger.State) {
		require.NotEmpty(t, s.Session.SessionID)
		require.Empty(t, s.Services)
		require.Empty(t, s.Transactions)
	})
	_, dirty := st.DirtyFor()
	require.False(t, dirty)
}

func TestOpen_CorruptSnapshotFallsBackToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	st := newFileStore(t, path)
	st.View(func(s *ledger.State) {
		require.Empty(t, s.Services)
		require.NotEmpty(t, s.Session.SessionID)
	})
}

func TestMutate_MarksDirtyAndStampsActivity(t *testing.T) {
	st := newFileStore(t, filepath.Join(t.TempDir(), "state.json"))

	var before int64
	st.View(func(s *ledger.State) { before = s.Session.LastActivityAt })

	err := st.Mutate(func(s *ledger.State) error {
		s.Milestones = append(s.Milestones, &ledger.ProgressMilestone{ID: "m1", CreatedAt: ledger.Now()})
		return nil
	})
	require.NoError(t, err)

	_, dirty := st.DirtyFor()
	require.True(t, dirty)
	st.View(func(s *ledger.State) {
		require.GreaterOrEqual(t, s.Session.LastActivityAt, before)
	})
}

func TestMutate_ErrorLeavesStoreClean(t *testing.T) {
	st := newFileStore(t, filepath.Join(t.TempDir(), "state.json"))

	wantErr := errors.New("rejected")
	err := st.Mutate(func(s *ledger.State) error { return wantErr })
	require.ErrorIs(t, err, wantErr)

	_, dirty := st.DirtyFor()
	require.False(t, dirty)
}

func TestFlush_RoundTripPreservesGraph(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	st := newFileStore(t, path)

	require.NoError(t, st.Mutate(func(s *ledger.State) error {
		s.Services["svc1"] = &ledger.ManagedService{
			ID:     "svc1",
			Name:   "qr-codes",
			Status: ledger.StatusActive,
			Scaling: ledger.ScalingConfig{
				AutoScale:     true,
				MaxDailySpend: 100,
				KillThreshold: -10,
			},
		}
		s.Transactions = append(s.Transactions, &ledger.Transaction{
			ID: "txn1", ServiceID: "svc1", Amount: 19.99, Currency: "USD", CreatedAt: ledger.Now(),
		})
		s.Blockers = append(s.Blockers, &ledger.Blocker{
			ID: "b1", Description: "stripe webhook flaky", Severity: "high", Status: ledger.BlockerIdentified,
		})
		return nil
	}))
	require.NoError(t, st.Flush(ctx))

	_, dirty := st.DirtyFor()
	require.False(t, dirty)

	reloaded := newFileStore(t, path)
	reloaded.View(func(s *ledger.State) {
		require.Len(t, s.Services, 1)
		require.Equal(t, "qr-codes", s.Services["svc1"].Name)
		require.Len(t, s.Transactions, 1)
		require.Equal(t, 19.99, s.Transactions[0].Amount)
		require.Len(t, s.Blockers, 1)
		require.Equal(t, ledger.BlockerIdentified, s.Blockers[0].Status)
	})

	// Session identity is per-process, not persisted state.
	require.NotEqual(t, st.SessionID(), reloaded.SessionID())
}

func TestFlush_FailureKeepsDirtyForRetry(t *testing.T) {
	ctx := context.Background()
	backend := &flakyBackend{failures: 1}
	st, err := store.Open(ctx, backend, nil)
	require.NoError(t, err)

	require.NoError(t, st.Mutate(func(s *ledger.State) error {
		s.Milestones = append(s.Milestones, &ledger.ProgressMilestone{ID: "m1"})
		return nil
	}))

	require.Error(t, st.Flush(ctx))
	_, dirty := st.DirtyFor()
	require.True(t, dirty, "failed flush must keep the store dirty")

	require.NoError(t, st.Flush(ctx))
	_, dirty = st.DirtyFor()
	require.False(t, dirty)
}
