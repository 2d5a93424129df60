package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/accounts/internal/core/domain"
)

// UserRepository reads return nil, nil when no row matches.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByIDWithPassword(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (*domain.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Match(plaintext, hash string) (bool, error)
}
