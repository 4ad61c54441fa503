package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"planner-client/errors"
)

var validate = validator.New()

// SendMessageCommand is a validated request to send one message.
// Validation runs before any network call so an empty content or a
// self-addressed message never reaches the server.
type SendMessageCommand struct {
	SenderID   string `json:"SenderId" validate:"required"`
	ReceiverID string `json:"ReceiverId" validate:"required"`
	Content    string `json:"Content" validate:"required"`
}

func ValidateSend(cmd SendMessageCommand) error {
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidSend, err)
	}
	if cmd.SenderID == cmd.ReceiverID {
		return errors.ErrSelfConversation
	}
	return nil
}

// NotificationRequest is the payload submitted to the notification
// endpoints. A zero NotificationID means the server assigns one.
type NotificationRequest struct {
	NotificationID int    `json:"NotificationId"`
	UserName       string `json:"UserName" validate:"required"`
	Title          string `json:"Title" validate:"required"`
	Content        string `json:"Content" validate:"required"`
	Type           string `json:"Type"`
	IsRead         bool   `json:"IsRead"`
}

func ValidateNotification(req NotificationRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRequest, err)
	}
	return nil
}
