package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"planner-client/errors"
)

// TokenClaims is the claim set the server embeds in the access token.
// The Permission claim is polymorphic: entries arrive either as
// JSON-encoded strings or as structured objects, depending on the server
// version, and the decoder must accept both.
type TokenClaims struct {
	NameID     string `json:"nameid"`
	UniqueName string `json:"unique_name"`
	Role       string `json:"role"`
	Permission []any  `json:"Permission"`
	jwt.RegisteredClaims
}

// decodeClaims parses the token payload without verifying the signature.
// The client never holds the signing key; the server already validated
// this token when it issued it, and every request carrying it is
// re-validated server-side anyway.
func decodeClaims(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}
	return claims, nil
}
