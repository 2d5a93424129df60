package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/accounts/internal/core/domain"
)

func TestGetMe(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	pair := app.register(t, "Jane@Example.com", password)

	status, env := app.call(t, http.MethodGet, "/user", nil, pair.BearerToken)
	require.Equal(t, http.StatusOK, status, env.Error)

	var user map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.NotContains(t, user, "password")

	var dbID, dbEmail, dbHash string
	err := app.DB.QueryRow(`SELECT id, email, password FROM "user" WHERE email = $1`, "jane@example.com").
		Scan(&dbID, &dbEmail, &dbHash)
	require.NoError(t, err)

	assert.Equal(t, dbID, user["id"])
	assert.Equal(t, dbEmail, user["email"])
	assert.Equal(t, "Jane", user["firstName"])
	assert.Equal(t, "1990-05-17", user["dob"])
	assert.Contains(t, dbHash, "$argon2id$v=19$m=16384,t=3,p=4$")
}

func TestRegister_Duplicate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	app.register(t, "jane@example.com", password)

	status, env := app.call(t, http.MethodPost, "/user", map[string]string{
		"email":     "JANE@example.com",
		"password":  password,
		"firstName": "Jane",
		"lastName":  "Doe",
		"dob":       "1990-05-17",
	}, "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, domain.ErrAlreadyExists.Error(), env.Error)
}

func TestCreate_UniqueViolation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)
	ctx := context.Background()

	newUser := func() *domain.User {
		return &domain.User{
			ID:           uuid.New(),
			Email:        "race@example.com",
			PasswordHash: "hash",
			FirstName:    "Race",
			LastName:     "Condition",
			Dob:          time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	require.NoError(t, app.Users.Create(ctx, newUser()))
	err := app.Users.Create(ctx, newUser())
	assert.ErrorIs(t, err, domain.ErrDuplicateKey)
	assert.Contains(t, err.Error(), "user_email_key")
}

func TestChangePassword(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	pair := app.register(t, "jane@example.com", password)
	newPassword := "N3w!password"

	status, env := app.call(t, http.MethodPut, "/password", map[string]string{
		"oldPassword": password,
		"password":    newPassword,
	}, pair.BearerToken)
	require.Equal(t, http.StatusOK, status, env.Error)

	status, _ = app.call(t, http.MethodPost, "/login", map[string]string{"email": "jane@example.com", "password": newPassword}, "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = app.call(t, http.MethodPost, "/login", map[string]string{"email": "jane@example.com", "password": password}, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRemoveUser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	pair := app.register(t, "jane@example.com", password)

	status, env := app.call(t, http.MethodDelete, "/user", map[string]string{"password": "Wr0ng!pass"}, pair.BearerToken)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, domain.ErrPasswordMismatch.Error(), env.Error)

	status, env = app.call(t, http.MethodDelete, "/user", map[string]string{"password": password}, pair.BearerToken)
	require.Equal(t, http.StatusOK, status, env.Error)

	// Outstanding tokens die with the user.
	status, _ = app.call(t, http.MethodGet, "/user", nil, pair.BearerToken)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = app.call(t, http.MethodPost, "/user/confirm", map[string]string{"email": "jane@example.com"}, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealthz(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	app := setupTestApp(t)
	defer app.Teardown(t)

	status, env := app.call(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, `"ok"`, string(env.Data))
}
