package domain

import (
	"time"

	"github.com/google/uuid"
)

// Provenance distinguishes server-fetched notification records from the
// ones synthesized locally after a successful add or an inbound push.
// Reconciliation logic matches on this tag instead of guessing from the
// shape of the id.
type Provenance int

const (
	// ProvenanceServer marks an authoritative record carrying a real id.
	ProvenanceServer Provenance = iota
	// ProvenanceLocal marks an ephemeral record that the next
	// authoritative fetch supersedes.
	ProvenanceLocal
)

// Notification is one inbound notification record.
type Notification struct {
	ID        int        `json:"NotificationId"`
	LocalID   uuid.UUID  `json:"-"`
	Origin    Provenance `json:"-"`
	UserName  string     `json:"UserName"`
	FullName  string     `json:"FullName,omitempty"`
	Title     string     `json:"Title"`
	Content   string     `json:"Content"`
	Type      string     `json:"Type"`
	IsRead    bool       `json:"IsRead"`
	CreatedAt string     `json:"CreatedAt"`
}

// SynthesizeNotification builds the local record for a request the server
// acknowledged with a bare bool. Local records get a uuid so two events
// arriving in the same millisecond can never collide.
func SynthesizeNotification(req NotificationRequest) Notification {
	n := Notification{
		ID:        req.NotificationID,
		UserName:  req.UserName,
		Title:     req.Title,
		Content:   req.Content,
		Type:      req.Type,
		IsRead:    req.IsRead,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if n.ID > 0 {
		n.Origin = ProvenanceServer
	} else {
		n.Origin = ProvenanceLocal
		n.LocalID = uuid.New()
	}
	return n
}
