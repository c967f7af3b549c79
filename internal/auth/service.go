package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hireloop-ats/hireloop/internal/rbac"
	"github.com/hireloop-ats/hireloop/internal/shared"
)

// ErrAccountExists indicates the username or email is already registered.
var ErrAccountExists = errors.New("auth: account already exists")

// Service wraps authentication business rules.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	tokens   *TokenIssuer
	registry *SessionRegistry
}

// NewService constructs a new Service.
func NewService(logger *slog.Logger, repo Repository, tokens *TokenIssuer, registry *SessionRegistry) *Service {
	return &Service{logger: logger, repo: repo, tokens: tokens, registry: registry}
}

// Login validates credentials and issues a bearer token. The token ID is
// recorded in the session registry so logout can revoke it.
func (s *Service) Login(ctx context.Context, login, password string) (*User, string, error) {
	user, err := s.repo.FindByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}

	token, tokenID, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	if err := s.registry.Register(ctx, tokenID, user.ID); err != nil {
		return nil, "", err
	}
	if err := s.repo.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil && s.logger != nil {
		// Non-fatal: the login already succeeded.
		s.logger.Warn("stamp last login", slog.Int64("user_id", user.ID), slog.Any("error", err))
	}
	return user, token, nil
}

// Register creates a new account with a hashed password.
func (s *Service) Register(ctx context.Context, email, username, fullName, password, role string) (*User, error) {
	if role == "" {
		role = string(rbac.RoleHRManager)
	}
	if !rbac.Role(role).Valid() {
		return nil, errors.New("auth: unknown role " + role)
	}
	if _, err := s.repo.FindByLogin(ctx, username); err == nil {
		return nil, ErrAccountExists
	}
	if _, err := s.repo.FindByLogin(ctx, email); err == nil {
		return nil, ErrAccountExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUser(ctx, User{
		Email:        strings.TrimSpace(email),
		Username:     strings.TrimSpace(username),
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: string(hash),
		Role:         role,
	})
}

// Logout revokes the bearer token.
func (s *Service) Logout(ctx context.Context, tokenID string) error {
	return s.registry.Revoke(ctx, tokenID)
}

// Resolve verifies a raw bearer token and returns the matching principal.
// Every failure path collapses into ErrUnauthorized; callers must not
// distinguish between bad, expired and revoked tokens.
func (s *Service) Resolve(ctx context.Context, rawToken string) (*shared.Principal, error) {
	userID, tokenID, err := s.tokens.Verify(rawToken)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	active, err := s.registry.Active(ctx, tokenID)
	if err != nil || !active {
		return nil, shared.ErrUnauthorized
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil || !user.IsActive {
		return nil, shared.ErrUnauthorized
	}
	return &shared.Principal{
		UserID:   user.ID,
		Name:     user.FullName,
		Role:     user.Role,
		TokenID:  tokenID,
		IsActive: user.IsActive,
	}, nil
}
