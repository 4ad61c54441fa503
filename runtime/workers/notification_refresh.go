package workers

import (
	"context"
	"log/slog"
	"time"

	"planner-client/notification"
)

// NotificationRefreshWorker periodically runs the authoritative FetchAll
// that corrects optimistic and push-synthesized records. A failed refresh
// is logged and retried on the next tick.
type NotificationRefreshWorker struct {
	log      *slog.Logger
	store    *notification.Store
	userName string
	interval time.Duration
}

func NewNotificationRefreshWorker(log *slog.Logger, store *notification.Store, userName string, interval time.Duration) *NotificationRefreshWorker {
	return &NotificationRefreshWorker{log: log, store: store, userName: userName, interval: interval}
}

func (w *NotificationRefreshWorker) Run(ctx context.Context) error {
	if _, err := w.store.FetchAll(ctx, w.userName); err != nil {
		w.log.Warn("Initial notification fetch failed", "err", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.store.FetchAll(ctx, w.userName); err != nil {
				w.log.Warn("Notification refresh failed", "err", err)
				continue
			}
			w.log.Debug("Notifications refreshed", "unread", w.store.UnreadCount())
		}
	}
}
