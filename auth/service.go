package auth

import (
	"context"
	"fmt"
	"log/slog"

	"planner-client/contract"
	"planner-client/repositories"
)

type IAuthService interface {
	Login(ctx context.Context, username, password string) error
	Resume() (bool, error)
	Logout() error
}

// AuthService drives the only two writers of the capability map: login
// populates it, logout clears it. It also owns the persisted session
// state (bearer token, classroom id) written at login and wiped at
// logout.
type AuthService struct {
	api     contract.AuthAPI
	session *Session
	store   repositories.ISessionRepository
	log     *slog.Logger
}

func NewAuthService(api contract.AuthAPI, session *Session, store repositories.ISessionRepository, log *slog.Logger) *AuthService {
	return &AuthService{api: api, session: session, store: store, log: log}
}

func (s *AuthService) Login(ctx context.Context, username, password string) error {
	result, err := s.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := s.session.SetToken(result.Token); err != nil {
		return err
	}
	if err := s.store.SaveToken(result.Token); err != nil {
		return fmt.Errorf("persisting token: %w", err)
	}

	// The classroom id lives in a second endpoint. Its absence is not a
	// login failure; it only degrades display.
	classID, err := s.api.GetUserInformation(ctx, result.Username)
	if err != nil {
		s.log.Warn("Could not resolve classroom id", "username", result.Username, "err", err)
		return nil
	}
	if classID != "" {
		if err := s.store.SaveClassID(classID); err != nil {
			return fmt.Errorf("persisting classroom id: %w", err)
		}
	}
	return nil
}

// Resume restores a previously persisted session at process start.
// Returns false when no token is stored.
func (s *AuthService) Resume() (bool, error) {
	token, err := s.store.Token()
	if err != nil {
		return false, err
	}
	if token == "" {
		return false, nil
	}
	if err := s.session.SetToken(token); err != nil {
		// A stale or corrupt token behaves like no session at all.
		s.log.Warn("Persisted token no longer decodes, clearing session", "err", err)
		return false, s.store.Clear()
	}
	return true, nil
}

func (s *AuthService) Logout() error {
	s.session.Clear()
	return s.store.Clear()
}
