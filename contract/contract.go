//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"planner-client/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// MessagingAPI is the slice of the remote API consumed by the
// conversation store and the contact directory.
type MessagingAPI interface {
	GetConversation(ctx context.Context, senderID, receiverID string) ([]domain.Message, error)
	GetAllMessagesByUser(ctx context.Context, userID string) ([]domain.Message, error)
	SendMessage(ctx context.Context, cmd domain.SendMessageCommand) (domain.Message, error)
	MarkAsRead(ctx context.Context, messageID int) error
	DeleteMessage(ctx context.Context, messageID int) error
	GetAllRelationships(ctx context.Context, userID string) ([]domain.Contact, error)
}

// NotificationAPI is the slice of the remote API consumed by the
// notification store.
type NotificationAPI interface {
	GetAllNotifications(ctx context.Context, userName string) ([]domain.Notification, error)
	AddNotification(ctx context.Context, req domain.NotificationRequest) error
	UpdateNotification(ctx context.Context, req domain.NotificationRequest) error
	DeleteNotification(ctx context.Context, notificationID int) error
}

// AuthAPI is the slice of the remote API consumed by the login flow.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (domain.LoginResult, error)
	GetUserInformation(ctx context.Context, username string) (string, error)
}
