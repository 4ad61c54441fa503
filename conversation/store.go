// Package conversation owns the message history for exactly one active
// peer pairing: fetch, local-first send feedback, optimistic read-state,
// and periodic reconciliation against the server.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"planner-client/contract"
	"planner-client/domain"
	"planner-client/errors"
	"planner-client/moderation"
)

const reconcileTimeout = 5 * time.Second

// Store holds the client-side view of one conversation. Switching peers
// bumps an epoch; any response resolving under an older epoch is
// discarded, so peer A's data can never populate peer B's view no matter
// how the fetches interleave.
type Store struct {
	log            *slog.Logger
	api            contract.MessagingAPI
	filter         *moderation.Filter
	reconcileDelay time.Duration

	mu       sync.Mutex
	selfID   string
	peerID   string
	epoch    uint64
	messages []domain.Message
}

// NewStore builds a conversation store. The filter is optional; a nil
// filter sends content through unmodified.
func NewStore(log *slog.Logger, api contract.MessagingAPI, filter *moderation.Filter, reconcileDelay time.Duration) *Store {
	return &Store{log: log, api: api, filter: filter, reconcileDelay: reconcileDelay}
}

// Open switches the active peer pairing. The previous view is cleared
// before anything is fetched; the view is replaced, never merged across
// peers.
func (s *Store) Open(selfID, peerID string) error {
	if selfID == "" || peerID == "" {
		return errors.ErrNoActivePeer
	}
	if selfID == peerID {
		return errors.ErrSelfConversation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selfID = selfID
	s.peerID = peerID
	s.epoch++
	s.messages = nil
	return nil
}

// Load fetches the full history for the active pairing and replaces the
// view. A response that resolves after the peer has switched is dropped.
// Local read-state is monotonic: a message marked read locally stays read
// even if an in-flight fetch still carries the stale flag.
func (s *Store) Load(ctx context.Context) ([]domain.Message, error) {
	s.mu.Lock()
	epoch, selfID, peerID := s.epoch, s.selfID, s.peerID
	s.mu.Unlock()
	if selfID == "" || peerID == "" {
		return nil, errors.ErrNoActivePeer
	}

	fetched, err := s.api.GetConversation(ctx, selfID, peerID)
	if err != nil {
		return nil, err
	}
	// The server occasionally leaks unpersisted rows; drop them.
	fetched = lo.Filter(fetched, func(m domain.Message, _ int) bool { return m.Persisted() })

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		s.log.Debug("Discarding stale conversation fetch", "peer", peerID)
		return s.snapshotLocked(), nil
	}

	read := make(map[int]struct{})
	for _, m := range s.messages {
		if m.IsRead {
			read[m.ID] = struct{}{}
		}
	}
	for i := range fetched {
		if _, ok := read[fetched[i].ID]; ok {
			fetched[i].IsRead = true
		}
	}
	s.messages = fetched
	return s.snapshotLocked(), nil
}

// Send submits a draft and, on success, appends the server-returned
// record to the view. The draft itself never enters state: on failure the
// caller keeps the content and may retry, and no phantom entry remains.
// A short-delay reconciliation fetch is scheduled after every successful
// send to pick up server-side side effects.
func (s *Store) Send(ctx context.Context, content string) (domain.Message, error) {
	s.mu.Lock()
	epoch, selfID, peerID := s.epoch, s.selfID, s.peerID
	s.mu.Unlock()
	if selfID == "" || peerID == "" {
		return domain.Message{}, errors.ErrNoActivePeer
	}

	cmd := domain.SendMessageCommand{
		SenderID:   selfID,
		ReceiverID: peerID,
		Content:    strings.TrimSpace(content),
	}
	if s.filter != nil {
		cmd.Content = s.filter.Apply(cmd.Content)
	}
	if err := domain.ValidateSend(cmd); err != nil {
		return domain.Message{}, err
	}

	sent, err := s.api.SendMessage(ctx, cmd)
	if err != nil {
		return domain.Message{}, fmt.Errorf("send failed: %w", err)
	}

	s.mu.Lock()
	if s.epoch == epoch && sent.Persisted() {
		s.messages = append(s.messages, sent)
	}
	s.mu.Unlock()

	s.scheduleReconcile(epoch)
	return sent, nil
}

// scheduleReconcile runs one full refetch after the configured delay,
// unless the peer has switched in the meantime.
func (s *Store) scheduleReconcile(epoch uint64) {
	time.AfterFunc(s.reconcileDelay, func() {
		s.mu.Lock()
		current := s.epoch
		s.mu.Unlock()
		if current != epoch {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()
		if _, err := s.Load(ctx); err != nil {
			s.log.Warn("Post-send reconciliation failed", "err", err)
		}
	})
}

// MarkRead optimistically flips the local flag and notifies the server
// best-effort. The transition is one-directional and idempotent: marking
// an already-read message again does nothing, and a failed server call
// leaves the optimistic state in place without retrying.
func (s *Store) MarkRead(ctx context.Context, messageID int) {
	s.mu.Lock()
	already := false
	for i := range s.messages {
		if s.messages[i].ID == messageID {
			already = s.messages[i].IsRead
			s.messages[i].IsRead = true
		}
	}
	s.mu.Unlock()
	if already {
		return
	}
	if err := s.api.MarkAsRead(ctx, messageID); err != nil {
		s.log.Warn("Mark-as-read failed, keeping optimistic state", "messageId", messageID, "err", err)
	}
}

// MarkConversationRead sweeps every unread message addressed to the
// current user. Called when the conversation gains focus.
func (s *Store) MarkConversationRead(ctx context.Context) {
	s.mu.Lock()
	selfID := s.selfID
	unread := lo.FilterMap(s.messages, func(m domain.Message, _ int) (int, bool) {
		return m.ID, !m.IsRead && m.ReceiverID == selfID
	})
	s.mu.Unlock()
	for _, id := range unread {
		s.MarkRead(ctx, id)
	}
}

// Delete removes a message server-side first and drops it from the view
// only once the server confirms.
func (s *Store) Delete(ctx context.Context, messageID int) error {
	if err := s.api.DeleteMessage(ctx, messageID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = lo.Filter(s.messages, func(m domain.Message, _ int) bool { return m.ID != messageID })
	return nil
}

// Messages returns a copy of the current view, as fetched. Display
// ordering is the consumer's concern; see Ascending.
func (s *Store) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Peer returns the active pairing.
func (s *Store) Peer() (selfID, peerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selfID, s.peerID
}

func (s *Store) snapshotLocked() []domain.Message {
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Ascending orders messages for display, oldest first. Messages with
// unparsable timestamps sort before any parsable one rather than
// crashing the sort or floating to the bottom of the chat.
func Ascending(messages []domain.Message) []domain.Message {
	out := make([]domain.Message, len(messages))
	copy(out, messages)
	sort.SliceStable(out, func(i, j int) bool {
		ti, iok := out[i].At()
		tj, jok := out[j].At()
		switch {
		case iok && jok:
			return ti.Before(tj)
		case iok:
			return false
		case jok:
			return true
		default:
			return false
		}
	})
	return out
}
