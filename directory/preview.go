package directory

import (
	"sort"

	"github.com/aquilax/truncate"
	"github.com/samber/lo"

	"planner-client/domain"
)

// PreviewPlaceholder is shown for a contact with no message history.
// A fixed invitation, never an empty row.
const PreviewPlaceholder = "Start the conversation"

const previewMaxLen = 80

// Preview is the last-message summary of one contact row.
type Preview struct {
	LastMessage   string
	LastMessageAt string
}

// DerivePreview filters the feed to the messages exchanged with this
// specific contact, orders them newest first, and takes the head.
// Messages with unparsable timestamps sort last; one bad timestamp must
// never crash the sort or win the head slot over a parsable one.
func DerivePreview(selfID string, contact domain.Contact, feed []domain.Message) Preview {
	relevant := lo.Filter(feed, func(m domain.Message, _ int) bool {
		return m.Persisted() && m.Between(selfID, contact.UserName)
	})
	if len(relevant) == 0 {
		return Preview{LastMessage: PreviewPlaceholder}
	}

	sort.SliceStable(relevant, func(i, j int) bool {
		ti, iok := relevant[i].At()
		tj, jok := relevant[j].At()
		switch {
		case iok && jok:
			return ti.After(tj)
		case iok:
			return true
		default:
			return false
		}
	})

	head := relevant[0]
	return Preview{
		LastMessage:   truncate.Truncate(head.Content, previewMaxLen, "...", truncate.PositionEnd),
		LastMessageAt: head.CreatedAt,
	}
}
