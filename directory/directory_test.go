package directory_test

import (
	"context"
	"log/slog"
	"testing"

	stderrors "errors"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"planner-client/directory"
	"planner-client/domain"
	"planner-client/mocks"
)

func TestDirectory_RefreshLoadsContactsAndFeed(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	apiMock := mocks.NewMockMessagingAPI(ctrl)
	apiMock.EXPECT().GetAllRelationships(gomock.Any(), "u-1").Return([]domain.Contact{
		{UserName: "bob", FullName: "Bob Martin"},
	}, nil)
	apiMock.EXPECT().GetAllMessagesByUser(gomock.Any(), "u-1").Return([]domain.Message{
		{ID: 1, SenderID: "bob", ReceiverID: "u-1", Content: "see you tomorrow", CreatedAt: "2026-02-10T08:00:00Z"},
	}, nil)

	dir := directory.NewDirectory(slog.Default(), apiMock)
	req.NoError(dir.Refresh(context.Background(), "u-1"))

	entries := dir.Entries("u-1")
	req.Len(entries, 1)
	req.Equal("bob", entries[0].Contact.UserName)
	req.Equal("see you tomorrow", entries[0].Preview.LastMessage)
	req.Equal("M", entries[0].Identity.Initial)
}

func TestDirectory_FeedFailureOnlyDegradesPreviews(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	apiMock := mocks.NewMockMessagingAPI(ctrl)
	apiMock.EXPECT().GetAllRelationships(gomock.Any(), "u-1").Return([]domain.Contact{
		{UserName: "bob", FullName: "Bob Martin"},
	}, nil)
	apiMock.EXPECT().GetAllMessagesByUser(gomock.Any(), "u-1").
		Return(nil, stderrors.New("feed down"))

	dir := directory.NewDirectory(slog.Default(), apiMock)
	req.NoError(dir.Refresh(context.Background(), "u-1"))

	entries := dir.Entries("u-1")
	req.Len(entries, 1)
	req.Equal(directory.PreviewPlaceholder, entries[0].Preview.LastMessage)
}

func TestDirectory_RelationshipFailureIsFatal(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	apiMock := mocks.NewMockMessagingAPI(ctrl)
	apiMock.EXPECT().GetAllRelationships(gomock.Any(), "u-1").
		Return(nil, stderrors.New("forbidden"))

	dir := directory.NewDirectory(slog.Default(), apiMock)
	req.Error(dir.Refresh(context.Background(), "u-1"))
	req.Empty(dir.Contacts())
}

func TestDerivePreview_PicksNewestExchangedMessage(t *testing.T) {
	req := require.New(t)
	contact := domain.Contact{UserName: "bob"}
	feed := []domain.Message{
		{ID: 1, SenderID: "u-1", ReceiverID: "bob", Content: "older", CreatedAt: "2026-02-10T08:00:00Z"},
		{ID: 2, SenderID: "bob", ReceiverID: "u-1", Content: "newest", CreatedAt: "2026-02-10T10:00:00Z"},
		{ID: 3, SenderID: "carol", ReceiverID: "u-1", Content: "other contact", CreatedAt: "2026-02-10T11:00:00Z"},
		{ID: 0, SenderID: "bob", ReceiverID: "u-1", Content: "draft leak", CreatedAt: "2026-02-10T12:00:00Z"},
	}

	preview := directory.DerivePreview("u-1", contact, feed)
	req.Equal("newest", preview.LastMessage)
	req.Equal("2026-02-10T10:00:00Z", preview.LastMessageAt)
}

func TestDerivePreview_UnparsableTimestampsLoseTheHeadSlot(t *testing.T) {
	req := require.New(t)
	contact := domain.Contact{UserName: "bob"}
	feed := []domain.Message{
		{ID: 1, SenderID: "bob", ReceiverID: "u-1", Content: "no timestamp", CreatedAt: "when?"},
		{ID: 2, SenderID: "bob", ReceiverID: "u-1", Content: "dated", CreatedAt: "2026-02-10T10:00:00Z"},
	}

	preview := directory.DerivePreview("u-1", contact, feed)
	req.Equal("dated", preview.LastMessage)
}

func TestDerivePreview_EmptyHistoryShowsPlaceholder(t *testing.T) {
	req := require.New(t)
	preview := directory.DerivePreview("u-1", domain.Contact{UserName: "bob"}, nil)
	req.Equal(directory.PreviewPlaceholder, preview.LastMessage)
	req.Empty(preview.LastMessageAt)
}

func TestDerivePreview_TruncatesLongContent(t *testing.T) {
	req := require.New(t)
	long := ""
	for i := 0; i < 30; i++ {
		long += "lorem "
	}
	feed := []domain.Message{
		{ID: 1, SenderID: "bob", ReceiverID: "u-1", Content: long, CreatedAt: "2026-02-10T10:00:00Z"},
	}

	preview := directory.DerivePreview("u-1", domain.Contact{UserName: "bob"}, feed)
	req.Less(len(preview.LastMessage), len(long))
	req.Contains(preview.LastMessage, "...")
}

func TestDeriveIdentity_IsDeterministic(t *testing.T) {
	req := require.New(t)
	contact := domain.Contact{UserName: "bob.martin", FullName: "bob martin"}

	first := directory.DeriveIdentity(contact)
	second := directory.DeriveIdentity(contact)
	req.Equal(first, second)
	req.Equal("M", first.Initial)
	req.Regexp(`^#[0-9A-F]{6}$`, first.Color)
}

func TestDeriveIdentity_EmptyNameFallsBack(t *testing.T) {
	req := require.New(t)
	identity := directory.DeriveIdentity(domain.Contact{UserName: "x", FullName: "   "})
	req.Equal("U", identity.Initial)
}
