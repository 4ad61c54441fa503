package conversation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Watcher polls the active conversation while it is being viewed: an
// immediate refresh on start, one per tick, and one per focus signal.
// It stops when its context is canceled; there is no background polling
// for a conversation nobody is looking at.
type Watcher struct {
	log      *slog.Logger
	store    *Store
	interval time.Duration
	focus    chan struct{}
}

func NewWatcher(log *slog.Logger, store *Store, interval time.Duration) *Watcher {
	return &Watcher{
		log:      log,
		store:    store,
		interval: interval,
		focus:    make(chan struct{}, 1),
	}
}

// Run implements contract.Worker. A failed poll is logged and self-heals
// on the next tick; polling is the retry mechanism, not an error loop.
func (w *Watcher) Run(ctx context.Context) error {
	w.refresh(ctx)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.refresh(ctx)
		case <-w.focus:
			w.refresh(ctx)
		}
	}
}

// Focus requests an immediate refresh, coalescing repeated signals while
// one is already pending.
func (w *Watcher) Focus() {
	select {
	case w.focus <- struct{}{}:
	default:
	}
}

func (w *Watcher) refresh(ctx context.Context) {
	if _, err := w.store.Load(ctx); err != nil {
		w.log.Warn("Conversation poll failed", "err", err)
		return
	}
	w.store.MarkConversationRead(ctx)
}

// WatchHandle owns the lifetime of one conversation watch. Stop must be
// called on every exit path; it is idempotent and returns only after the
// watch goroutine has fully terminated.
type WatchHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (h *WatchHandle) Stop() {
	h.once.Do(h.cancel)
	<-h.done
}

// Start runs the watcher in its own goroutine and hands the caller the
// handle that tears it down. Canceling the parent context tears it down
// as well.
func (w *Watcher) Start(parent context.Context) *WatchHandle {
	ctx, cancel := context.WithCancel(parent)
	h := &WatchHandle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		_ = w.Run(ctx)
	}()
	return h
}
