package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperfocal/ledgermind/internal/ledger"
	"github.com/hyperfocal/ledgermind/internal/store"
	"github.com/stretchr/testify/require"
)

func TestFlusher_FlushesAfterIdleThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st := newFileStore(t, path)

	flusher := store.NewFlusher(st, 5*time.Millisecond, 20*time.Millisecond, nil)
	flusher.Start()

	require.NoError(t, st.Mutate(func(s *ledger.State) error {
		s.Milestones = append(s.Milestones, &ledger.ProgressMilestone{ID: "m1"})
		return nil
	}))

	require.Eventually(t, func() bool {
		_, dirty := st.DirtyFor()
		return !dirty
	}, time.Second, 5*time.Millisecond, "background flush never cleared the dirty flag")

	require.NoError(t, flusher.Stop(context.Background()))
}

func TestFlusher_DoesNotFlushBeforeIdleThreshold(t *testing.T) {
	st := newFileStore(t, filepath.Join(t.TempDir(), "state.json"))

	flusher := store.NewFlusher(st, 5*time.Millisecond, time.Hour, nil)
	flusher.Start()

	require.NoError(t, st.Mutate(func(s *ledger.State) error { return nil }))

	time.Sleep(50 * time.Millisecond)
	_, dirty := st.DirtyFor()
	require.True(t, dirty, "store flushed before the idle threshold elapsed")

	require.NoError(t, flusher.Stop(context.Background()))
}

func TestFlusher_StopPerformsFinalFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st := newFileStore(t, path)

	flusher := store.NewFlusher(st, time.Hour, time.Hour, nil)
	flusher.Start()

	require.NoError(t, st.Mutate(func(s *ledger.State) error {
		s.Milestones = append(s.Milestones, &ledger.ProgressMilestone{ID: "final"})
		return nil
	}))
	require.NoError(t, flusher.Stop(context.Background()))

	reloaded := newFileStore(t, path)
	reloaded.View(func(s *ledger.State) {
		require.Len(t, s.Milestones, 1)
		require.Equal(t, "final", s.Milestones[0].ID)
	})
}
