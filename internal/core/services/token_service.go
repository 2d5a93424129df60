package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vncsmyrnk/accounts/internal/core/domain"
	"github.com/vncsmyrnk/accounts/internal/core/ports"
)

type userClaims struct {
	User string `json:"user"`
	jwt.RegisteredClaims
}

type tokenService struct {
	users      ports.UserRepository
	secrets    ports.SecretProvider
	bearerTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(users ports.UserRepository, secrets ports.SecretProvider, bearerTTL, refreshTTL time.Duration) ports.TokenService {
	return &tokenService{
		users:      users,
		secrets:    secrets,
		bearerTTL:  bearerTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (s *tokenService) Sign(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	key, err := s.signingKey(ctx)
	if err != nil {
		return "", err
	}

	now := s.now()
	claims := userClaims{
		User: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil || signed == "" {
		slog.ErrorContext(ctx, "failed to sign token", "error", err)
		return "", domain.ErrSigning
	}
	return signed, nil
}

// Verify checks the signature and expiry, then requires the subject to still
// exist. Deleting a user is what invalidates its outstanding tokens.
func (s *tokenService) Verify(ctx context.Context, token string) (*domain.TokenClaims, error) {
	key, err := s.signingKey(ctx)
	if err != nil {
		return nil, err
	}

	claims := &userClaims{}
	_, err = jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		slog.WarnContext(ctx, "rejected token", "error", err)
		return nil, domain.ErrMalformedToken
	}
	if claims.User == "" {
		return nil, domain.ErrMalformedToken
	}

	user, err := s.users.GetByID(ctx, claims.User)
	if err != nil {
		return unexpected[*domain.TokenClaims](ctx, "failed to load token subject", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	out := &domain.TokenClaims{UserID: user.ID}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func (s *tokenService) IssuePair(ctx context.Context, user *domain.User) (*domain.AuthToken, error) {
	bearer, err := s.Sign(ctx, user.ID.String(), s.bearerTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Sign(ctx, user.ID.String(), s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &domain.AuthToken{BearerToken: bearer, RefreshToken: refresh}, nil
}

func (s *tokenService) signingKey(ctx context.Context) ([]byte, error) {
	key, err := s.secrets.SigningKey(ctx)
	if err != nil || len(key) == 0 {
		slog.ErrorContext(ctx, "signing secret unavailable", "error", err)
		return nil, domain.ErrConfiguration
	}
	return key, nil
}

// unexpected logs an infrastructure failure and hides it behind
// domain.ErrUnexpected.
func unexpected[T any](ctx context.Context, msg string, err error) (T, error) {
	var zero T
	slog.ErrorContext(ctx, msg, "error", err)
	return zero, domain.ErrUnexpected
}
