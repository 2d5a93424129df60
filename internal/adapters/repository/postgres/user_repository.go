package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/vncsmyrnk/accounts/internal/core/domain"
	"github.com/vncsmyrnk/accounts/internal/core/ports"
)

const (
	pqUniqueViolation  = "23505"
	pqNotNullViolation = "23502"
)

const (
	selectUserByEmail = `
		SELECT id, email, first_name, last_name, dob, created_at FROM "user"
		WHERE email = $1
	`
	selectUserByEmailWithPassword = `
		SELECT id, email, password, first_name, last_name, dob, created_at FROM "user"
		WHERE email = $1
	`
	selectUserByID = `
		SELECT id, email, first_name, last_name, dob, created_at FROM "user"
		WHERE id = $1
	`
	selectUserByIDWithPassword = `
		SELECT id, email, password, first_name, last_name, dob, created_at FROM "user"
		WHERE id = $1
	`
	insertUser = `
		INSERT INTO "user" (id, email, password, first_name, last_name, dob)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, email, first_name, last_name, dob, created_at
	`
	deleteUser         = `DELETE FROM "user" WHERE id = $1`
	updateUserPassword = `
		UPDATE "user" SET password = $1 WHERE id = $2
		RETURNING id, email, first_name, last_name, dob, created_at
	`
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) ports.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, selectUserByEmail, false, email)
}

func (r *UserRepository) GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, selectUserByEmailWithPassword, true, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	return r.getOne(ctx, selectUserByID, false, userID)
}

func (r *UserRepository) GetByIDWithPassword(ctx context.Context, id string) (*domain.User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	return r.getOne(ctx, selectUserByIDWithPassword, true, userID)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	err := r.db.QueryRowContext(ctx, insertUser,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Dob,
	).Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Dob, &user.CreatedAt)
	if err != nil {
		if cerr := constraintError(err); cerr != nil {
			return cerr
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, deleteUser, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRowContext(ctx, updateUserPassword, passwordHash, id).
		Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Dob, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if cerr := constraintError(err); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("failed to update password: %w", err)
	}
	return user, nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, withPassword bool, arg any) (*domain.User, error) {
	user := &domain.User{}
	dest := []any{&user.ID, &user.Email}
	if withPassword {
		dest = append(dest, &user.PasswordHash)
	}
	dest = append(dest, &user.FirstName, &user.LastName, &user.Dob, &user.CreatedAt)

	if err := r.db.QueryRowContext(ctx, query, arg).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// constraintError turns constraint violations into domain errors that keep
// the driver's message. It returns nil for any other error.
func constraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrDuplicateKey, pqErr.Message)
	case pqNotNullViolation:
		return fmt.Errorf("%w: %s", domain.ErrMissingColumn, pqErr.Message)
	}
	return nil
}
