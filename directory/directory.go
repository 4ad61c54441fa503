// Package directory resolves which peers the current user may message
// and derives the contact-list presentation: last-message previews and a
// deterministic visual identity per contact.
package directory

import (
	"context"
	"log/slog"
	"sync"

	"planner-client/contract"
	"planner-client/domain"
)

type Directory struct {
	log *slog.Logger
	api contract.MessagingAPI

	mu       sync.RWMutex
	contacts []domain.Contact
	feed     []domain.Message
}

func NewDirectory(log *slog.Logger, api contract.MessagingAPI) *Directory {
	return &Directory{log: log, api: api}
}

// Refresh reloads the relationship list and the flat message feed the
// previews are derived from. No polling here: contact lists change far
// less often than message content, so this runs on mount and on explicit
// pull-to-refresh. A feed failure only degrades previews to their
// placeholder and is not propagated.
func (d *Directory) Refresh(ctx context.Context, userID string) error {
	contacts, err := d.api.GetAllRelationships(ctx, userID)
	if err != nil {
		return err
	}

	feed, err := d.api.GetAllMessagesByUser(ctx, userID)
	if err != nil {
		d.log.Warn("Message feed unavailable, previews fall back to placeholder", "err", err)
		feed = nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.contacts = contacts
	d.feed = feed
	return nil
}

// Contacts returns the cached relationship list.
func (d *Directory) Contacts() []domain.Contact {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.Contact, len(d.contacts))
	copy(out, d.contacts)
	return out
}

// Entry pairs a contact with everything the list row needs.
type Entry struct {
	Contact  domain.Contact
	Preview  Preview
	Identity Identity
}

// Entries assembles the full contact list view for the given user.
func (d *Directory) Entries(selfID string) []Entry {
	d.mu.RLock()
	contacts := d.contacts
	feed := d.feed
	d.mu.RUnlock()

	entries := make([]Entry, 0, len(contacts))
	for _, c := range contacts {
		entries = append(entries, Entry{
			Contact:  c,
			Preview:  DerivePreview(selfID, c, feed),
			Identity: DeriveIdentity(c),
		})
	}
	return entries
}
