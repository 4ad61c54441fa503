// Package domain contains core concepts of the study planner client.
// This file defines the Message exchanged between exactly two users.
// The client holds a read-only projection of server state: the server
// assigns every message id, the client never invents one.
package domain

import "time"

// DraftID marks a message that has not been persisted server-side.
// A draft must never appear in any client-held view.
const DraftID = 0

// Message is the client-side projection of a server-owned chat message.
type Message struct {
	ID           int    `json:"MessageId"`
	SenderID     string `json:"SenderId"`
	SenderName   string `json:"SenderName,omitempty"`
	ReceiverID   string `json:"ReceiverId"`
	ReceiverName string `json:"ReceiverName,omitempty"`
	Content      string `json:"Content"`
	IsRead       bool   `json:"IsRead"`
	CreatedAt    string `json:"CreatedAt"`
}

// Persisted reports whether the server has assigned a real id.
func (m Message) Persisted() bool { return m.ID > DraftID }

// Between reports whether the message was exchanged between the two given
// users, in either direction.
func (m Message) Between(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) ||
		(m.SenderID == b && m.ReceiverID == a)
}

// At parses the server timestamp. The server is not trusted to always emit
// a parsable value, so callers get an explicit ok flag instead of a panic
// or a zero time that sorts first by accident.
func (m Message) At() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, m.CreatedAt)
	return t, err == nil
}
