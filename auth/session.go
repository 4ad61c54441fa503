// Package auth owns the session-scoped capability state decoded from the
// access token. The capability map has exactly two writers, SetToken and
// Clear, both driven by the login/logout flow; everything else only reads.
package auth

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// RoleAdmin short-circuits every read-only flag: an administrator can
// edit any feature regardless of explicit per-feature entries.
const RoleAdmin = "ADMIN"

// Feature identifiers carried in the token's permission entries.
const (
	FeatureSchedule       = "ucSchedule"
	FeatureAssignment     = "ucAssignment"
	FeatureReminder       = "ucReminder"
	FeatureTaskManagement = "ucTaskManagement"
	FeatureMessaging      = "ucMessage"
	FeatureNotification   = "ucNotification"
)

// Permission is one per-feature capability entry. Absence of an entry
// means no access, never default access.
type Permission struct {
	ID       string `json:"id"`
	ReadOnly bool   `json:"ro"`
}

// Session holds the decoded capability map for one authenticated session.
// Initialized empty at process start, populated by SetToken on login,
// torn down by Clear on logout. Never partially updated outside those two.
type Session struct {
	mu          sync.RWMutex
	log         *slog.Logger
	token       string
	claims      *TokenClaims
	permissions map[string]Permission
}

func NewSession(log *slog.Logger) *Session {
	return &Session{log: log, permissions: map[string]Permission{}}
}

// SetToken decodes the token and swaps in the new capability map in one
// step. A token that cannot be decoded leaves the session cleared, so a
// bad token can never widen access.
func (s *Session) SetToken(token string) error {
	claims, err := decodeClaims(token)
	if err != nil {
		s.Clear()
		return err
	}
	parsed := s.parsePermissions(claims.Permission)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.claims = claims
	s.permissions = parsed
	return nil
}

// Clear resets to the no-access state. Called on logout.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.claims = nil
	s.permissions = map[string]Permission{}
}

// CanDisplay reports whether the feature is visible at all. A read-only
// entry still displays.
func (s *Session) CanDisplay(featureID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.permissions[featureID]
	return ok
}

// CanEdit reports whether the feature may be mutated. The administrator
// role overrides any read-only flag.
func (s *Session) CanEdit(featureID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims != nil && s.claims.Role == RoleAdmin {
		return true
	}
	perm, ok := s.permissions[featureID]
	return ok && !perm.ReadOnly
}

// Authenticated distinguishes "please log in" from "logged in but
// featureless": both answer false to every capability query, but only the
// former lacks a decoded token.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims != nil
}

func (s *Session) Role() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return ""
	}
	return s.claims.Role
}

// UserName returns the identity the conversation and notification stores
// key their requests on.
func (s *Session) UserName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil {
		return ""
	}
	return s.claims.UniqueName
}

// parsePermissions accepts both entry encodings. Entries without an id
// are discarded with a log line, not treated as fatal: one malformed
// entry must not take down the whole capability map.
func (s *Session) parsePermissions(raw []any) map[string]Permission {
	parsed := make(map[string]Permission, len(raw))
	for _, entry := range raw {
		perm, err := parseEntry(entry)
		if err != nil {
			s.log.Warn("Discarding malformed permission entry", "entry", entry, "err", err)
			continue
		}
		if perm.ID == "" {
			s.log.Warn("Discarding permission entry without id", "entry", entry)
			continue
		}
		parsed[perm.ID] = perm
	}
	return parsed
}

func parseEntry(entry any) (Permission, error) {
	var perm Permission
	switch v := entry.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &perm); err != nil {
			return Permission{}, fmt.Errorf("string entry: %w", err)
		}
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return Permission{}, fmt.Errorf("object entry: %w", err)
		}
		if err := json.Unmarshal(encoded, &perm); err != nil {
			return Permission{}, fmt.Errorf("object entry: %w", err)
		}
	}
	return perm, nil
}
