// Package notification reconciles three independent mutation paths —
// authoritative server fetches, local optimistic CRUD, and inbound push
// synthesis — into one consistent set with an accurate unread count.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"planner-client/contract"
	"planner-client/domain"
)

type Store struct {
	log *slog.Logger
	api contract.NotificationAPI

	mu            sync.Mutex
	userName      string
	notifications []domain.Notification
	unread        int
}

func NewStore(log *slog.Logger, api contract.NotificationAPI) *Store {
	return &Store{log: log, api: api}
}

// FetchAll is the authoritative refresh: it replaces the held set
// entirely, superseding any locally-synthesized records by content, and
// recomputes the unread count from the fresh set.
func (s *Store) FetchAll(ctx context.Context, userName string) ([]domain.Notification, error) {
	fetched, err := s.api.GetAllNotifications(ctx, userName)
	if err != nil {
		return nil, err
	}
	fetched = lo.Filter(fetched, func(n domain.Notification, _ int) bool { return n.ID > 0 })
	for i := range fetched {
		fetched[i].Origin = domain.ProvenanceServer
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.userName = userName
	s.notifications = fetched
	s.recountLocked()
	return s.snapshotLocked(), nil
}

// Add submits the request and, on success, prepends a locally-synthesized
// record: the server acknowledges with a bare bool, never a full record.
// The next FetchAll corrects any drift this shortcut introduces.
func (s *Store) Add(ctx context.Context, req domain.NotificationRequest) (domain.Notification, error) {
	if err := domain.ValidateNotification(req); err != nil {
		return domain.Notification{}, err
	}
	if err := s.api.AddNotification(ctx, req); err != nil {
		return domain.Notification{}, err
	}

	synthesized := domain.SynthesizeNotification(req)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append([]domain.Notification{synthesized}, s.notifications...)
	s.recountLocked()
	return synthesized, nil
}

// Update submits the request and replaces the matching record in place.
// When the id is not held locally (state drift) the record is appended
// instead: a mutation the server accepted is never dropped silently.
func (s *Store) Update(ctx context.Context, req domain.NotificationRequest) (domain.Notification, error) {
	if err := domain.ValidateNotification(req); err != nil {
		return domain.Notification{}, err
	}
	if err := s.api.UpdateNotification(ctx, req); err != nil {
		return domain.Notification{}, err
	}

	updated := domain.SynthesizeNotification(req)
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := lo.IndexOf(lo.Map(s.notifications, func(n domain.Notification, _ int) int { return n.ID }), req.NotificationID)
	if idx >= 0 {
		s.notifications[idx] = updated
	} else {
		s.log.Warn("Updated notification missing locally, appending", "notificationId", req.NotificationID)
		s.notifications = append(s.notifications, updated)
	}
	s.recountLocked()
	return updated, nil
}

// DeleteResult makes the optimistic-delete caller contract explicit.
type DeleteResult struct {
	Applied bool
	// Revert holds the record that was optimistically removed when the
	// server rejected the delete. The store does not auto-rollback; the
	// caller either re-inserts it or triggers a FetchAll resync.
	Revert *domain.Notification
}

// Delete removes the record locally before the server confirms.
func (s *Store) Delete(ctx context.Context, notificationID int) (DeleteResult, error) {
	s.mu.Lock()
	var removed *domain.Notification
	s.notifications = lo.Filter(s.notifications, func(n domain.Notification, _ int) bool {
		if n.ID == notificationID {
			held := n
			removed = &held
			return false
		}
		return true
	})
	s.recountLocked()
	s.mu.Unlock()

	if err := s.api.DeleteNotification(ctx, notificationID); err != nil {
		return DeleteResult{Applied: false, Revert: removed}, err
	}
	return DeleteResult{Applied: true}, nil
}

// DeleteAll fires one delete per id concurrently. Partial failure is not
// reconciled locally: one authoritative FetchAll resynchronizes the set.
func (s *Store) DeleteAll(ctx context.Context, ids []int) error {
	var wg sync.WaitGroup
	var failedMu sync.Mutex
	var failed int

	for _, id := range ids {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if _, err := s.Delete(ctx, id); err != nil {
				failedMu.Lock()
				failed++
				failedMu.Unlock()
			}
		}(id)
	}
	wg.Wait()

	if failed == 0 {
		return nil
	}

	s.log.Warn("Partial delete failure, resynchronizing", "failed", failed, "total", len(ids))
	if _, err := s.FetchAll(ctx, s.UserName()); err != nil {
		return fmt.Errorf("resync after partial delete failure: %w", err)
	}
	return fmt.Errorf("%d of %d deletes failed", failed, len(ids))
}

// UnreadCount is always recomputed from the set, never tracked
// incrementally, so the three mutation paths cannot drift it.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

func (s *Store) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) UserName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userName
}

func (s *Store) recountLocked() {
	s.unread = lo.CountBy(s.notifications, func(n domain.Notification) bool { return !n.IsRead })
}

func (s *Store) snapshotLocked() []domain.Notification {
	out := make([]domain.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}
