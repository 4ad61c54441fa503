package auth

import (
	"log/slog"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"planner-client/errors"
)

// tokenWith builds a signed token carrying the given role and permission
// claim. The session decodes without verifying, so any key works here.
func tokenWith(t *testing.T, role string, permission []any) string {
	t.Helper()
	claims := jwt.MapClaims{
		"nameid":      "u-1",
		"unique_name": "alice",
		"role":        role,
	}
	if permission != nil {
		claims["Permission"] = permission
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func TestSession_FailClosedOnMalformedToken(t *testing.T) {
	req := require.New(t)
	session := NewSession(slog.Default())

	err := session.SetToken("not-a-jwt")
	req.ErrorIs(err, errors.ErrInvalidToken)

	req.False(session.Authenticated())
	req.False(session.CanDisplay(FeatureSchedule))
	req.False(session.CanEdit(FeatureSchedule))
	req.False(session.CanDisplay(FeatureMessaging))
	req.False(session.CanEdit(FeatureMessaging))
}

func TestSession_MalformedTokenClearsPreviousCapabilities(t *testing.T) {
	req := require.New(t)
	session := NewSession(slog.Default())

	req.NoError(session.SetToken(tokenWith(t, "STUDENT", []any{`{"id":"ucSchedule","ro":false}`})))
	req.True(session.CanEdit("ucSchedule"))

	req.Error(session.SetToken("garbage"))
	req.False(session.CanDisplay("ucSchedule"))
	req.False(session.CanEdit("ucSchedule"))
}

func TestSession_ReadOnlyEntry(t *testing.T) {
	req := require.New(t)
	session := NewSession(slog.Default())

	req.NoError(session.SetToken(tokenWith(t, "STUDENT", []any{`{"id":"ucSchedule","ro":true}`})))

	req.True(session.CanDisplay("ucSchedule"))
	req.False(session.CanEdit("ucSchedule"))
	req.False(session.CanDisplay("ucAssignment"))
	req.False(session.CanEdit("ucAssignment"))
}

func TestSession_AdminOverridesReadOnly(t *testing.T) {
	req := require.New(t)
	session := NewSession(slog.Default())

	req.NoError(session.SetToken(tokenWith(t, RoleAdmin, []any{`{"id":"ucSchedule","ro":true}`})))

	req.True(session.CanEdit("ucSchedule"))
	// The override covers every feature id, including ones without an
	// explicit entry.
	req.True(session.CanEdit("ucAssignment"))
	// Display still follows the entry set.
	req.False(session.CanDisplay("ucAssignment"))
}

func TestSession_AcceptsStringAndObjectEntries(t *testing.T) {
	req := require.New(t)
	session := NewSession(slog.Default())

	req.NoError(session.SetToken(tokenWith(t, "STUDENT", []any{
		`{"id":"ucSchedule","ro":true}`,
		map[string]any{"id": "ucAssignment", "ro": false},
	})))

	req.True(session.CanDisplay("ucSchedule"))
	req.False(session.CanEdit("ucSchedule"))
	req.True(session.CanDisplay("ucAssignment"))
	req.True(session.CanEdit("ucAssignment"))
}

func TestSession_DiscardsEntriesWithoutID(t *testing.T) {
	req := require.New(t)
	session := NewSession(slog.Default())

	req.NoError(session.SetToken(tokenWith(t, "STUDENT", []any{
		`{"ro":true}`,
		`not even json`,
		map[string]any{"id": "ucReminder"},
	})))

	req.True(session.CanDisplay("ucReminder"))
	req.True(session.CanEdit("ucReminder"))
	req.False(session.CanDisplay(""))
}

func TestSession_AuthenticatedButFeatureless(t *testing.T) {
	req := require.New(t)
	session := NewSession(slog.Default())

	req.NoError(session.SetToken(tokenWith(t, "STUDENT", nil)))

	// Distinct from "not authenticated": the token decoded fine, there
	// are just no capabilities in it.
	req.True(session.Authenticated())
	req.False(session.CanDisplay("ucSchedule"))
	req.False(session.CanEdit("ucSchedule"))
	req.Equal("alice", session.UserName())
}

func TestSession_ClearOnLogout(t *testing.T) {
	req := require.New(t)
	session := NewSession(slog.Default())

	req.NoError(session.SetToken(tokenWith(t, RoleAdmin, []any{`{"id":"ucSchedule"}`})))
	req.True(session.Authenticated())

	session.Clear()

	req.False(session.Authenticated())
	req.False(session.CanDisplay("ucSchedule"))
	req.False(session.CanEdit("ucSchedule"))
	req.Empty(session.UserName())
	req.Empty(session.Role())
}
