package directory

import (
	"strings"
	"unicode"

	"planner-client/domain"
)

// No server-side avatar exists, so the visual identity is a pure function
// of the contact: same contact, same initial and color, on every device.

var avatarPalette = [...]string{
	"#3B82F6", // blue
	"#10B981", // green
	"#8B5CF6", // purple
	"#F59E0B", // orange
	"#06B6D4", // teal
	"#E11D48", // pink/red
}

// Identity is the derived avatar: the initial of the contact's last name
// and a palette color picked by hashing the username.
type Identity struct {
	Initial string
	Color   string
}

func DeriveIdentity(contact domain.Contact) Identity {
	return Identity{
		Initial: lastNameInitial(contact.FullName),
		Color:   avatarColor(contact.UserName),
	}
}

func lastNameInitial(fullName string) string {
	names := strings.Fields(strings.TrimSpace(fullName))
	if len(names) == 0 {
		return "U"
	}
	last := []rune(names[len(names)-1])
	return string(unicode.ToUpper(last[0]))
}

// avatarColor hashes the username into the palette. 32-bit arithmetic is
// deliberate: it keeps the mapping stable next to the web client, which
// computes the same hash.
func avatarColor(userName string) string {
	var hash int32
	for _, r := range userName {
		hash = int32(r) + ((hash << 5) - hash)
	}
	idx := int64(hash)
	if idx < 0 {
		idx = -idx
	}
	return avatarPalette[idx%int64(len(avatarPalette))]
}
