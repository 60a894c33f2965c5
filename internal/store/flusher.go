package store

import (
	"context"
	"log/slog"
	"time"
)

// Flusher is the background durability scheduler. On a fixed check interval
// it flushes the store once it has been dirty for at least the idle
// threshold. A failed flush is logged and retried on the next tick; it is
// never surfaced to mutators.
type Flusher struct {
	store    *Store
	interval time.Duration
	idle     time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewFlusher creates a flusher checking every interval and flushing once the
// store has been dirty for idle or longer.
func NewFlusher(s *Store, interval, idle time.Duration, logger *slog.Logger) *Flusher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Flusher{store: s, interval: interval, idle: idle, logger: logger}
}

// Start launches the background loop. It must be paired with Stop.
func (f *Flusher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.done = make(chan struct{})

	go func() {
		defer close(f.done)
		ticker := time.NewTicker(f.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				f.tick(ctx)
			}
		}
	}()
}

func (f *Flusher) tick(ctx context.Context) {
	since, dirty := f.store.DirtyFor()
	if !dirty || since < f.idle {
		return
	}
	if err := f.store.Flush(ctx); err != nil {
		f.logger.Warn("snapshot flush failed, will retry", "error", err)
	}
}

// Stop cancels the loop, waits for it to exit, then performs one final
// unconditional flush so graceful shutdown loses nothing.
func (f *Flusher) Stop(ctx context.Context) error {
	if f.cancel != nil {
		f.cancel()
		<-f.done
	}
	return f.store.Flush(ctx)
}
