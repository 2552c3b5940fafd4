// Package session keeps the auth token and role of one dashboard session.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"orderdesk/internal/domain"
	"orderdesk/internal/logx"
	"orderdesk/internal/storage"
)

const (
	TokenKey = "authToken"
	RoleKey  = "authRole"
)

// ErrNoToken is returned when there is no usable token. It matches
// domain.ErrUnauthorized.
var ErrNoToken = fmt.Errorf("%w: no auth token", domain.ErrUnauthorized)

type Role string

const (
	Manager Role = "manager"
	Agent   Role = "agent"
)

func ParseRole(v string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(v))) {
	case Manager:
		return Manager, nil
	case Agent:
		return Agent, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", domain.ErrValidation, v)
}

// LoginRoute is where a signed-out user of this role is sent.
func (r Role) LoginRoute() string {
	if r == Agent {
		return "/agent/login"
	}
	return "/login"
}

type Session struct {
	store storage.Store
	now   func() time.Time
}

func New(store storage.Store) *Session {
	return &Session{store: store, now: time.Now}
}

// SignIn stores a token obtained by the login flow.
func (s *Session) SignIn(ctx context.Context, token string, role Role) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token is required", domain.ErrValidation)
	}
	if err := s.store.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := s.store.Set(ctx, RoleKey, string(role)); err != nil {
		return fmt.Errorf("store role: %w", err)
	}
	return nil
}

// Token returns the stored token. A JWT whose exp has passed is cleared
// and reported as ErrNoToken; the signature is left to the backend.
func (s *Session) Token(ctx context.Context) (string, error) {
	token, ok, err := s.store.Get(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	if !ok || token == "" {
		return "", ErrNoToken
	}
	if s.expired(token) {
		logx.Info().Msg("stored auth token expired, clearing")
		if err := s.store.Remove(ctx, TokenKey); err != nil {
			return "", fmt.Errorf("clear expired token: %w", err)
		}
		return "", ErrNoToken
	}
	return token, nil
}

func (s *Session) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		// opaque token
		return false
	}
	return !claims.VerifyExpiresAt(s.now().Unix(), false)
}

// Role defaults to Manager when nothing was stored.
func (s *Session) Role(ctx context.Context) (Role, error) {
	v, ok, err := s.store.Get(ctx, RoleKey)
	if err != nil {
		return "", fmt.Errorf("load role: %w", err)
	}
	if !ok {
		return Manager, nil
	}
	role, err := ParseRole(v)
	if err != nil {
		return Manager, nil
	}
	return role, nil
}

func (s *Session) SignedIn(ctx context.Context) (bool, error) {
	_, err := s.Token(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNoToken) {
		return false, nil
	}
	return false, err
}

// SignOut clears the token and role and returns the login route for the
// role that was signed in.
func (s *Session) SignOut(ctx context.Context) (string, error) {
	role, err := s.Role(ctx)
	if err != nil {
		role = Manager
	}
	if err := s.store.Remove(ctx, TokenKey); err != nil {
		return role.LoginRoute(), fmt.Errorf("clear token: %w", err)
	}
	if err := s.store.Remove(ctx, RoleKey); err != nil {
		return role.LoginRoute(), fmt.Errorf("clear role: %w", err)
	}
	return role.LoginRoute(), nil
}
