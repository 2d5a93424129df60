package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/accounts/internal/core/domain"
)

var userColumns = []string{"id", "email", "first_name", "last_name", "dob", "created_at"}

var userWithPasswordColumns = []string{"id", "email", "password", "first_name", "last_name", "dob", "created_at"}

func newRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return &UserRepository{db: db}, mock
}

var (
	testID      = uuid.MustParse("5f2b7c4e-0d7a-4b8e-9a43-2d1f6a9c0b11")
	testDob     = time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	testCreated = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func TestGetByEmail_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT id, email, first_name, last_name, dob, created_at FROM "user"\s+WHERE email = \$1`).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(testID.String(), "jane@example.com", "Jane", "Doe", testDob, testCreated))

	user, err := repo.GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, testID, user.ID)
	assert.Equal(t, "Jane", user.FirstName)
	assert.Equal(t, testDob, user.Dob)
	assert.Empty(t, user.PasswordHash)
}

func TestGetByEmailWithPassword_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT id, email, password, first_name, last_name, dob, created_at FROM "user"\s+WHERE email = \$1`).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(userWithPasswordColumns).
			AddRow(testID.String(), "jane@example.com", "$argon2id$hash", "Jane", "Doe", testDob, testCreated))

	user, err := repo.GetByEmailWithPassword(context.Background(), "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "$argon2id$hash", user.PasswordHash)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM "user"\s+WHERE id = \$1`).
		WithArgs(testID.String()).
		WillReturnError(sql.ErrNoRows)

	user, err := repo.GetByID(context.Background(), testID.String())
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestGetByIDWithPassword_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT id, email, password, first_name, last_name, dob, created_at FROM "user"\s+WHERE id = \$1`).
		WithArgs(testID.String()).
		WillReturnRows(sqlmock.NewRows(userWithPasswordColumns).
			AddRow(testID.String(), "jane@example.com", "hash", "Jane", "Doe", testDob, testCreated))

	user, err := repo.GetByIDWithPassword(context.Background(), testID.String())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "hash", user.PasswordHash)
}

func TestGetByID_MalformedIDIsAbsent(t *testing.T) {
	repo, _ := newRepoWithMock(t)

	user, err := repo.GetByID(context.Background(), "not-a-uuid")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = repo.GetByIDWithPassword(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM "user"`).WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), testID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT INTO "user" \(id, email, password, first_name, last_name, dob\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)\s+RETURNING id, email, first_name, last_name, dob, created_at`).
		WithArgs(testID.String(), "jane@example.com", "hash", "Jane", "Doe", testDob).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(testID.String(), "jane@example.com", "Jane", "Doe", testDob, testCreated))

	user := &domain.User{
		ID: testID, Email: "jane@example.com", PasswordHash: "hash",
		FirstName: "Jane", LastName: "Doe", Dob: testDob,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, testCreated, user.CreatedAt)
}

func TestCreate_ConstraintViolations(t *testing.T) {
	tests := []struct {
		name    string
		pqErr   *pq.Error
		wantErr error
	}{
		{
			name:    "unique",
			pqErr:   &pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "user_email_key"`},
			wantErr: domain.ErrDuplicateKey,
		},
		{
			name:    "not null",
			pqErr:   &pq.Error{Code: "23502", Message: `null value in column "first_name" violates not-null constraint`},
			wantErr: domain.ErrMissingColumn,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			mock.ExpectQuery(`INSERT INTO "user"`).WillReturnError(tt.pqErr)

			err := repo.Create(context.Background(), &domain.User{ID: testID})
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.pqErr.Message)
		})
	}
}

func TestCreate_OtherError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(`INSERT INTO "user"`).WillReturnError(&pq.Error{Code: "08006", Message: "connection failure"})

	err := repo.Create(context.Background(), &domain.User{ID: testID})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDuplicateKey)
	assert.NotErrorIs(t, err, domain.ErrMissingColumn)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE FROM "user" WHERE id = \$1`).
		WithArgs(testID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), testID))
}

func TestUpdatePassword(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`UPDATE "user" SET password = \$1 WHERE id = \$2\s+RETURNING id, email, first_name, last_name, dob, created_at`).
		WithArgs("new-hash", testID.String()).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(testID.String(), "jane@example.com", "Jane", "Doe", testDob, testCreated))

	user, err := repo.UpdatePassword(context.Background(), testID, "new-hash")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, testID, user.ID)
}

func TestUpdatePassword_NoRow(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`UPDATE "user" SET password`).
		WithArgs("new-hash", testID.String()).
		WillReturnRows(sqlmock.NewRows(userColumns))

	user, err := repo.UpdatePassword(context.Background(), testID, "new-hash")
	require.NoError(t, err)
	assert.Nil(t, user)
}
