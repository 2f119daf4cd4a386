package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/polyglot-playground/internal/apperror"
	"github.com/sakif/polyglot-playground/internal/auth"
)

// OperatorSubject is the JWT subject issued to the playground operator.
const OperatorSubject = "operator"

// AuthService logs the operator in by password and validates their sessions.
//
//	AuthHandler (HTTP) → AuthService → PasswordService (bcrypt)
//	                                 ↘ TokenService (JWT)
type AuthService struct {
	tokens       *auth.TokenService
	passwords    *auth.PasswordService
	passwordHash string
	logger       *slog.Logger
}

// NewAuthService checks that passwordHash is a real bcrypt hash so a typo in the
// config fails at startup instead of locking the operator out.
func NewAuthService(
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	passwordHash string,
	logger *slog.Logger,
) (*AuthService, error) {
	if err := auth.CheckHash(passwordHash); err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}
	return &AuthService{
		tokens:       tokens,
		passwords:    passwords,
		passwordHash: passwordHash,
		logger:       logger,
	}, nil
}

// Session is an issued login.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Login verifies password and issues a session token.
// A wrong password is apperror.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, password string) (*Session, error) {
	if err := s.passwords.Verify(s.passwordHash, password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			s.logger.Warn("failed login attempt")
			return nil, apperror.Unauthorized("invalid password")
		}
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	expires := time.Now().Add(auth.SessionDuration)
	token, err := s.tokens.Generate(OperatorSubject)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token: %w", err)
	}

	s.logger.Info("operator logged in")
	return &Session{Token: token, ExpiresAt: expires}, nil
}

// Tokens exposes the token service for the route middleware.
func (s *AuthService) Tokens() *auth.TokenService {
	return s.tokens
}
