// Package push bridges the platform push service into the notification
// store. The platform side (device registration, permission prompts) is
// an external collaborator hidden behind Registrar; this package only
// defines the seam and the payload synthesis.
package push

import (
	"context"
	"log/slog"

	"planner-client/domain"
)

// Payload is the raw inbound push payload delivered by the platform.
type Payload struct {
	Title string
	Body  string
	Data  map[string]string
}

// Registrar registers the device for push delivery and yields the push
// token the server targets.
type Registrar interface {
	Register(ctx context.Context) (string, error)
}

// Receiver is the slice of the notification store the bridge feeds.
type Receiver interface {
	Add(ctx context.Context, req domain.NotificationRequest) (domain.Notification, error)
}

// Bridge is the single callback handed to the platform listener. Each
// payload is synthesized into a notification through the same add path as
// user-created ones; the record stays locally-provenanced until the next
// authoritative fetch supersedes it.
type Bridge struct {
	log      *slog.Logger
	receiver Receiver
	// fallbackUser names the notification when the payload data does not.
	fallbackUser string
}

func NewBridge(log *slog.Logger, receiver Receiver, fallbackUser string) *Bridge {
	return &Bridge{log: log, receiver: receiver, fallbackUser: fallbackUser}
}

// Receive consumes one inbound payload. Payloads without both a title and
// a body are dropped: the platform emits silent data-only pushes this
// subsystem has no use for.
func (b *Bridge) Receive(ctx context.Context, p Payload) {
	if p.Title == "" || p.Body == "" {
		b.log.Debug("Ignoring push payload without title or body")
		return
	}

	req := domain.NotificationRequest{
		UserName: p.Data["userName"],
		Title:    p.Title,
		Content:  p.Body,
		Type:     p.Data["type"],
		IsRead:   false,
	}
	if req.UserName == "" {
		req.UserName = b.fallbackUser
	}
	if req.Type == "" {
		req.Type = "push"
	}

	if _, err := b.receiver.Add(ctx, req); err != nil {
		b.log.Warn("Push payload could not be recorded", "title", p.Title, "err", err)
	}
}
