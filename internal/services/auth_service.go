package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pratik-mahalle/mediremind/internal/auth"
	"github.com/pratik-mahalle/mediremind/internal/domain/user"
	"github.com/pratik-mahalle/mediremind/internal/pkg/logger"
)

// ErrTokenRevoked is returned by Verify for a logged out token
var ErrTokenRevoked = errors.New("token has been revoked")

// Session is the result of a successful login
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *user.User
}

// AuthService issues, verifies and revokes session tokens
type AuthService struct {
	users   user.Service
	tokens  *auth.TokenManager
	revoker auth.Revoker
	logger  *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users user.Service, tokens *auth.TokenManager, revoker auth.Revoker, log *logger.Logger) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		revoker: revoker,
		logger:  log,
	}
}

// Login checks the credentials and mints a token
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	token, claims, err := s.tokens.Mint(u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to mint token: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
		"jti":     claims.ID,
	}).Info("Session issued")

	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      u,
	}, nil
}

// Verify parses token and rejects revoked ones
func (s *AuthService) Verify(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// Logout revokes the token described by claims
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	expiresAt := time.Now().Add(s.tokens.TTL())
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.revoker.Revoke(ctx, claims.ID, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": claims.UserID,
		"jti":     claims.ID,
	}).Info("Session revoked")

	return nil
}
