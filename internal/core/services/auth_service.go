package services

import (
	"context"
	"log/slog"

	"github.com/vncsmyrnk/accounts/internal/core/domain"
	"github.com/vncsmyrnk/accounts/internal/core/ports"
)

type authService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenService
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens ports.TokenService) ports.AuthService {
	return &authService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.AuthToken, error) {
	user, err := s.users.GetByEmailWithPassword(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return unexpected[*domain.AuthToken](ctx, "failed to get user", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	ok, err := s.hasher.Match(password, user.PasswordHash)
	if err != nil {
		slog.WarnContext(ctx, "stored hash could not be verified", "user_id", user.ID, "error", err)
		return nil, domain.ErrInvalidCredentials
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	return s.IssueTokens(ctx, user)
}

func (s *authService) Refresh(ctx context.Context, userID string) (*domain.AuthToken, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return unexpected[*domain.AuthToken](ctx, "failed to get user", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return s.IssueTokens(ctx, user)
}

func (s *authService) ConfirmToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	return s.tokens.Verify(ctx, token)
}

func (s *authService) IssueTokens(ctx context.Context, user *domain.User) (*domain.AuthToken, error) {
	pair, err := s.tokens.IssuePair(ctx, user)
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue tokens", "user_id", user.ID, "error", err)
		return nil, domain.ErrTokenCreation
	}
	return pair, nil
}
