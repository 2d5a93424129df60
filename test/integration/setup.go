package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vncsmyrnk/accounts/internal/adapters/crypto/argon2id"
	handler "github.com/vncsmyrnk/accounts/internal/adapters/handler/http"
	repo "github.com/vncsmyrnk/accounts/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/accounts/internal/adapters/secrets"
	"github.com/vncsmyrnk/accounts/internal/core/ports"
	"github.com/vncsmyrnk/accounts/internal/core/services"
)

const signingKeyEnv = "AUTH_PRIVATE_KEY"

type TestApp struct {
	DB          *sql.DB
	Server      *httptest.Server
	Client      *http.Client
	Users       ports.UserRepository
	DBContainer testcontainers.Container
}

func setupPostgresContainer(ctx context.Context) (testcontainers.Container, string, error) {
	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("accounts"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", err
	}

	return pgContainer, connStr, nil
}

func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	t.Setenv(signingKeyEnv, "test-secret")
	ctx := context.Background()

	dbContainer, dbURL, err := setupPostgresContainer(ctx)
	require.NoError(t, err)

	db, err := repo.Open(ctx, dbURL, 5, 5)
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(ctx, db))

	userRepo := repo.NewUserRepository(db)
	hasher := argon2id.NewHasher()
	tokenSvc := services.NewTokenService(userRepo, secrets.NewCached(secrets.NewLocal(signingKeyEnv)), 15*time.Minute, 168*time.Hour)
	authSvc := services.NewAuthService(userRepo, hasher, tokenSvc)
	userSvc := services.NewUserService(userRepo, hasher, authSvc)

	server := httptest.NewServer(handler.NewHandler(authSvc, userSvc, db, prometheus.NewRegistry()))

	return &TestApp{
		DB:          db,
		Server:      server,
		Client:      server.Client(),
		Users:       userRepo,
		DBContainer: dbContainer,
	}
}

func (app *TestApp) Teardown(t *testing.T) {
	app.Server.Close()
	app.DB.Close()
	if err := app.DBContainer.Terminate(context.Background()); err != nil {
		t.Logf("failed to terminate container: %v", err)
	}
}

type envelope struct {
	Data          json.RawMessage `json:"data"`
	Error         string          `json:"error"`
	CorrelationID string          `json:"correlationId"`
}

// call sends body as JSON and decodes the response envelope.
func (app *TestApp) call(t *testing.T, method, path string, body any, token string) (int, envelope) {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, app.Server.URL+path, &payload)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

type tokenPair struct {
	BearerToken  string `json:"bearerToken"`
	RefreshToken string `json:"refreshToken"`
}

func (app *TestApp) register(t *testing.T, email, password string) tokenPair {
	t.Helper()
	status, env := app.call(t, http.MethodPost, "/user", map[string]string{
		"email":     email,
		"password":  password,
		"firstName": "Jane",
		"lastName":  "Doe",
		"dob":       "1990-05-17",
	}, "")
	require.Equal(t, http.StatusCreated, status, env.Error)

	var pair tokenPair
	require.NoError(t, json.Unmarshal(env.Data, &pair))
	return pair
}
