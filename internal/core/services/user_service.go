package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/accounts/internal/core/domain"
	"github.com/vncsmyrnk/accounts/internal/core/ports"
)

type userService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	auth   ports.AuthService
	now    func() time.Time
}

func NewUserService(users ports.UserRepository, hasher ports.PasswordHasher, auth ports.AuthService) ports.UserService {
	return &userService{
		users:  users,
		hasher: hasher,
		auth:   auth,
		now:    time.Now,
	}
}

func (s *userService) Register(ctx context.Context, input ports.RegisterUserInput) (*domain.AuthToken, error) {
	hash, err := s.hashPassword(ctx, input.Password)
	if err != nil {
		return nil, err
	}

	dob, dobErr := time.Parse(domain.DateLayout, strings.TrimSpace(input.Dob))
	newUser := domain.NewUser{
		Email:     domain.NormalizeEmail(input.Email),
		Password:  input.Password,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Dob:       dob,
	}
	if err := registrationError(domain.ValidateNewUser(newUser, s.now()), dobErr); err != nil {
		slog.WarnContext(ctx, "rejected registration", "error", err)
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, newUser.Email)
	if err != nil {
		return unexpected[*domain.AuthToken](ctx, "failed to check existing user", err)
	}
	if existing != nil {
		return nil, domain.ErrAlreadyExists
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        newUser.Email,
		PasswordHash: hash,
		FirstName:    newUser.FirstName,
		LastName:     newUser.LastName,
		Dob:          newUser.Dob,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) || errors.Is(err, domain.ErrMissingColumn) {
			slog.WarnContext(ctx, "user insert rejected", "error", err)
			return nil, err
		}
		return unexpected[*domain.AuthToken](ctx, "failed to create user", err)
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return s.auth.IssueTokens(ctx, user)
}

func (s *userService) Remove(ctx context.Context, userID, password string) (*domain.User, error) {
	user, err := s.confirmPassword(ctx, userID, password)
	if err != nil {
		return nil, err
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return unexpected[*domain.User](ctx, "failed to delete user", err)
	}

	slog.InfoContext(ctx, "user removed", "user_id", user.ID)
	return user.WithoutPassword(), nil
}

func (s *userService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (*domain.User, error) {
	if oldPassword == "" {
		return nil, domain.ErrMissingOldPassword
	}
	if newPassword == "" {
		return nil, domain.ErrMissingNewPassword
	}

	user, err := s.confirmPassword(ctx, userID, oldPassword)
	if err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(ctx, newPassword)
	if err != nil {
		return nil, err
	}

	updated, err := s.users.UpdatePassword(ctx, user.ID, hash)
	if err != nil {
		return unexpected[*domain.User](ctx, "failed to update password", err)
	}
	if updated == nil {
		return nil, domain.ErrPasswordUpdate
	}
	return updated.WithoutPassword(), nil
}

func (s *userService) Fetch(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return unexpected[*domain.User](ctx, "failed to get user", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user.WithoutPassword(), nil
}

func (s *userService) ConfirmByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, domain.ErrMissingFields
	}
	if !domain.ValidEmail(email) {
		return nil, domain.ErrInvalidEmail
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return unexpected[*domain.User](ctx, "failed to get user", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user.WithoutPassword(), nil
}

// confirmPassword loads the user and checks password against its stored hash.
func (s *userService) confirmPassword(ctx context.Context, userID, password string) (*domain.User, error) {
	user, err := s.users.GetByIDWithPassword(ctx, userID)
	if err != nil {
		return unexpected[*domain.User](ctx, "failed to get user", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	ok, err := s.hasher.Match(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, domain.ErrPasswordMismatch
	}
	return user, nil
}

func (s *userService) hashPassword(ctx context.Context, password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if err == nil {
		return hash, nil
	}
	if errors.Is(err, domain.ErrPasswordPolicy) {
		return "", domain.ErrPasswordPolicy
	}
	slog.ErrorContext(ctx, "failed to hash password", "error", err)
	return "", domain.ErrHashFailure
}

// registrationError reduces validation results to the error a caller sees.
// An unparsable dob is reported as a dob violation.
func registrationError(err, dobErr error) error {
	var verr *domain.ValidationError
	if err != nil && !errors.As(err, &verr) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if dobErr != nil {
		if verr == nil {
			verr = &domain.ValidationError{}
		}
		if !verr.Has("dob") {
			verr.Violations = append(verr.Violations, domain.FieldViolation{
				Field:   "dob",
				Message: "must be a date formatted as YYYY-MM-DD",
			})
		}
	}
	if verr == nil {
		return nil
	}

	switch {
	case verr.Has("email"):
		return domain.ErrEmailRequirements
	case verr.Has("firstName"), verr.Has("lastName"):
		return domain.ErrMissingFields
	default:
		return fmt.Errorf("%w: %s", domain.ErrValidation, verr.Error())
	}
}
