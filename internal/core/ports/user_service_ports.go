package ports

import (
	"context"

	"github.com/vncsmyrnk/accounts/internal/core/domain"
)

type RegisterUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Dob       string
}

type UserService interface {
	Register(ctx context.Context, input RegisterUserInput) (*domain.AuthToken, error)
	Remove(ctx context.Context, userID, password string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (*domain.User, error)
	Fetch(ctx context.Context, userID string) (*domain.User, error)
	ConfirmByEmail(ctx context.Context, email string) (*domain.User, error)
}
