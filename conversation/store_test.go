package conversation_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	stderrors "errors"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"planner-client/conversation"
	"planner-client/domain"
	"planner-client/errors"
	"planner-client/mocks"
)

func newStore(t *testing.T) (*conversation.Store, *mocks.MockMessagingAPI) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	apiMock := mocks.NewMockMessagingAPI(ctrl)
	return conversation.NewStore(slog.Default(), apiMock, nil, 10*time.Millisecond), apiMock
}

func TestStore_OpenRejectsInvalidPairings(t *testing.T) {
	req := require.New(t)
	store, _ := newStore(t)

	req.ErrorIs(store.Open("", "u-2"), errors.ErrNoActivePeer)
	req.ErrorIs(store.Open("u-1", ""), errors.ErrNoActivePeer)
	req.ErrorIs(store.Open("u-1", "u-1"), errors.ErrSelfConversation)
	req.NoError(store.Open("u-1", "u-2"))
}

func TestStore_LoadReplacesViewAndDropsDrafts(t *testing.T) {
	req := require.New(t)
	store, apiMock := newStore(t)
	req.NoError(store.Open("u-1", "u-2"))

	apiMock.EXPECT().GetConversation(gomock.Any(), "u-1", "u-2").Return([]domain.Message{
		{ID: 1, SenderID: "u-2", ReceiverID: "u-1", Content: "hi"},
		{ID: 0, SenderID: "u-2", ReceiverID: "u-1", Content: "ghost draft"},
		{ID: 2, SenderID: "u-1", ReceiverID: "u-2", Content: "hello"},
	}, nil)

	messages, err := store.Load(context.Background())
	req.NoError(err)
	req.Len(messages, 2)
	for _, m := range messages {
		req.True(m.Persisted())
	}
}

func TestStore_LoadKeepsLocalReadStateMonotonic(t *testing.T) {
	req := require.New(t)
	store, apiMock := newStore(t)
	req.NoError(store.Open("u-1", "u-2"))

	apiMock.EXPECT().GetConversation(gomock.Any(), "u-1", "u-2").Return([]domain.Message{
		{ID: 5, SenderID: "u-2", ReceiverID: "u-1", Content: "hi", IsRead: false},
	}, nil).Times(2)
	apiMock.EXPECT().MarkAsRead(gomock.Any(), 5).Return(nil)

	_, err := store.Load(context.Background())
	req.NoError(err)
	store.MarkRead(context.Background(), 5)

	// The second fetch still carries the stale unread flag; the local
	// read transition must survive the merge.
	messages, err := store.Load(context.Background())
	req.NoError(err)
	req.Len(messages, 1)
	req.True(messages[0].IsRead)
}

func TestStore_PeerSwitchDiscardsInFlightFetch(t *testing.T) {
	req := require.New(t)
	store, apiMock := newStore(t)
	req.NoError(store.Open("u-1", "u-2"))

	started := make(chan struct{})
	release := make(chan struct{})
	apiMock.EXPECT().GetConversation(gomock.Any(), "u-1", "u-2").
		DoAndReturn(func(context.Context, string, string) ([]domain.Message, error) {
			close(started)
			<-release
			return []domain.Message{{ID: 9, SenderID: "u-2", ReceiverID: "u-1", Content: "stale"}}, nil
		})

	done := make(chan []domain.Message, 1)
	go func() {
		messages, err := store.Load(context.Background())
		req.NoError(err)
		done <- messages
	}()

	// Switch peers while the first fetch is still in flight; its response
	// resolves under an old epoch and must not land in the new view.
	<-started
	req.NoError(store.Open("u-1", "u-3"))
	close(release)

	messages := <-done
	req.Empty(messages)
	req.Empty(store.Messages())
}

func TestStore_SendAppendsServerRecord(t *testing.T) {
	req := require.New(t)
	store, apiMock := newStore(t)
	req.NoError(store.Open("u-1", "u-2"))

	apiMock.EXPECT().SendMessage(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmd domain.SendMessageCommand) (domain.Message, error) {
			req.Equal("u-1", cmd.SenderID)
			req.Equal("u-2", cmd.ReceiverID)
			req.Equal("hello there", cmd.Content)
			return domain.Message{ID: 42, SenderID: "u-1", ReceiverID: "u-2", Content: cmd.Content, CreatedAt: "2026-02-10T08:00:00Z"}, nil
		})
	// The post-send reconciliation fetch fires after the configured delay.
	reconciled := make(chan struct{})
	apiMock.EXPECT().GetConversation(gomock.Any(), "u-1", "u-2").
		DoAndReturn(func(context.Context, string, string) ([]domain.Message, error) {
			close(reconciled)
			return []domain.Message{{ID: 42, SenderID: "u-1", ReceiverID: "u-2", Content: "hello there"}}, nil
		})

	sent, err := store.Send(context.Background(), "  hello there ")
	req.NoError(err)
	req.Equal(42, sent.ID)

	messages := store.Messages()
	req.Len(messages, 1)
	req.Equal(42, messages[0].ID)

	select {
	case <-reconciled:
	case <-time.After(2 * time.Second):
		t.Fatal("reconciliation fetch never fired")
	}
}

func TestStore_FailedSendLeavesNoPhantomEntry(t *testing.T) {
	req := require.New(t)
	store, apiMock := newStore(t)
	req.NoError(store.Open("u-1", "u-2"))

	apiMock.EXPECT().SendMessage(gomock.Any(), gomock.Any()).
		Return(domain.Message{}, &errors.TransportError{Err: stderrors.New("refused")})

	_, err := store.Send(context.Background(), "hello")
	req.Error(err)
	req.Empty(store.Messages())
}

func TestStore_SendRejectsBlankContent(t *testing.T) {
	req := require.New(t)
	store, _ := newStore(t)
	req.NoError(store.Open("u-1", "u-2"))

	_, err := store.Send(context.Background(), "   ")
	req.ErrorIs(err, errors.ErrInvalidSend)
}

func TestStore_SendWithoutActivePeer(t *testing.T) {
	req := require.New(t)
	store, _ := newStore(t)

	_, err := store.Send(context.Background(), "hello")
	req.ErrorIs(err, errors.ErrNoActivePeer)
}

func TestStore_MarkReadIsIdempotent(t *testing.T) {
	req := require.New(t)
	store, apiMock := newStore(t)
	req.NoError(store.Open("u-1", "u-2"))

	apiMock.EXPECT().GetConversation(gomock.Any(), "u-1", "u-2").Return([]domain.Message{
		{ID: 3, SenderID: "u-2", ReceiverID: "u-1", Content: "hi"},
	}, nil)
	// Exactly one network call regardless of how often the UI repeats the
	// transition.
	apiMock.EXPECT().MarkAsRead(gomock.Any(), 3).Return(nil).Times(1)

	_, err := store.Load(context.Background())
	req.NoError(err)

	store.MarkRead(context.Background(), 3)
	store.MarkRead(context.Background(), 3)
	store.MarkRead(context.Background(), 3)

	messages := store.Messages()
	req.True(messages[0].IsRead)
}

func TestStore_MarkReadKeepsOptimisticStateOnFailure(t *testing.T) {
	req := require.New(t)
	store, apiMock := newStore(t)
	req.NoError(store.Open("u-1", "u-2"))

	apiMock.EXPECT().GetConversation(gomock.Any(), "u-1", "u-2").Return([]domain.Message{
		{ID: 3, SenderID: "u-2", ReceiverID: "u-1", Content: "hi"},
	}, nil)
	apiMock.EXPECT().MarkAsRead(gomock.Any(), 3).
		Return(&errors.TransportError{Err: stderrors.New("refused")})

	_, err := store.Load(context.Background())
	req.NoError(err)
	store.MarkRead(context.Background(), 3)

	req.True(store.Messages()[0].IsRead)
}

func TestStore_MarkConversationReadSweepsOnlyInbound(t *testing.T) {
	req := require.New(t)
	store, apiMock := newStore(t)
	req.NoError(store.Open("u-1", "u-2"))

	apiMock.EXPECT().GetConversation(gomock.Any(), "u-1", "u-2").Return([]domain.Message{
		{ID: 1, SenderID: "u-2", ReceiverID: "u-1", Content: "unread inbound"},
		{ID: 2, SenderID: "u-1", ReceiverID: "u-2", Content: "own outbound"},
		{ID: 3, SenderID: "u-2", ReceiverID: "u-1", Content: "already read", IsRead: true},
	}, nil)
	apiMock.EXPECT().MarkAsRead(gomock.Any(), 1).Return(nil)

	_, err := store.Load(context.Background())
	req.NoError(err)
	store.MarkConversationRead(context.Background())
}

func TestStore_DeleteIsServerFirst(t *testing.T) {
	req := require.New(t)
	store, apiMock := newStore(t)
	req.NoError(store.Open("u-1", "u-2"))

	apiMock.EXPECT().GetConversation(gomock.Any(), "u-1", "u-2").Return([]domain.Message{
		{ID: 1, SenderID: "u-1", ReceiverID: "u-2", Content: "keep"},
		{ID: 2, SenderID: "u-1", ReceiverID: "u-2", Content: "drop"},
	}, nil)
	_, err := store.Load(context.Background())
	req.NoError(err)

	apiMock.EXPECT().DeleteMessage(gomock.Any(), 2).
		Return(&errors.ServerError{Message: "not yours"})
	req.Error(store.Delete(context.Background(), 2))
	req.Len(store.Messages(), 2)

	apiMock.EXPECT().DeleteMessage(gomock.Any(), 2).Return(nil)
	req.NoError(store.Delete(context.Background(), 2))

	messages := store.Messages()
	req.Len(messages, 1)
	req.Equal(1, messages[0].ID)
}

func TestAscending_OrdersByTimestamp(t *testing.T) {
	req := require.New(t)
	messages := []domain.Message{
		{ID: 3, CreatedAt: "2026-02-10T10:00:00Z"},
		{ID: 1, CreatedAt: "2026-02-10T08:00:00Z"},
		{ID: 4, CreatedAt: "garbage"},
		{ID: 2, CreatedAt: "2026-02-10T09:00:00Z"},
	}

	ordered := conversation.Ascending(messages)
	ids := []int{ordered[0].ID, ordered[1].ID, ordered[2].ID, ordered[3].ID}
	// Unparsable timestamps sort first, then chronological order.
	req.Equal([]int{4, 1, 2, 3}, ids)
}
