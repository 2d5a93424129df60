package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/accounts/internal/core/domain"
)

// SecretProvider supplies the HMAC key tokens are signed with.
type SecretProvider interface {
	SigningKey(ctx context.Context) ([]byte, error)
}

type TokenService interface {
	Sign(ctx context.Context, userID string, ttl time.Duration) (string, error)
	Verify(ctx context.Context, token string) (*domain.TokenClaims, error)
	IssuePair(ctx context.Context, user *domain.User) (*domain.AuthToken, error)
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.AuthToken, error)
	Refresh(ctx context.Context, userID string) (*domain.AuthToken, error)
	ConfirmToken(ctx context.Context, token string) (*domain.TokenClaims, error)
	IssueTokens(ctx context.Context, user *domain.User) (*domain.AuthToken, error)
}
