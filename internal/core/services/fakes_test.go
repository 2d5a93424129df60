package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/accounts/internal/core/domain"
)

var errStorage = errors.New("storage unavailable")

// memoryUsers is an in-memory ports.UserRepository.
type memoryUsers struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]domain.User
	failAll bool
	// createErr, when set, is returned by Create instead of storing.
	createErr error
	// updateErr and updateMissing make UpdatePassword fail or report no row.
	updateErr     error
	updateMissing bool
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[uuid.UUID]domain.User)}
}

func (m *memoryUsers) add(u domain.User) *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	m.byID[u.ID] = u
	return &u
}

func (m *memoryUsers) find(match func(domain.User) bool, withPassword bool) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStorage
	}
	for _, u := range m.byID {
		if match(u) {
			if !withPassword {
				u.PasswordHash = ""
			}
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return m.find(func(u domain.User) bool { return u.Email == email }, false)
}

func (m *memoryUsers) GetByEmailWithPassword(_ context.Context, email string) (*domain.User, error) {
	return m.find(func(u domain.User) bool { return u.Email == email }, true)
}

func (m *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	return m.find(func(u domain.User) bool { return u.ID.String() == id }, false)
}

func (m *memoryUsers) GetByIDWithPassword(_ context.Context, id string) (*domain.User, error) {
	return m.find(func(u domain.User) bool { return u.ID.String() == id }, true)
}

func (m *memoryUsers) Create(_ context.Context, user *domain.User) error {
	if m.failAll {
		return errStorage
	}
	if m.createErr != nil {
		return m.createErr
	}
	m.add(*user)
	return nil
}

func (m *memoryUsers) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return errStorage
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAll {
		return nil, errStorage
	}
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	if m.updateMissing {
		return nil, nil
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	u.PasswordHash = hash
	m.byID[id] = u
	u.PasswordHash = ""
	return &u, nil
}

// plainHasher applies the real password policy but stores a reversible form.
type plainHasher struct {
	hashErr error
}

func (h plainHasher) Hash(password string) (string, error) {
	if err := domain.CheckPasswordPolicy(password); err != nil {
		return "", err
	}
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "plain$" + password, nil
}

func (h plainHasher) Match(plaintext, hash string) (bool, error) {
	stored, ok := strings.CutPrefix(hash, "plain$")
	if !ok {
		return false, errors.New("unknown hash format")
	}
	return stored == plaintext, nil
}

type staticSecret struct {
	key []byte
	err error
}

func (s staticSecret) SigningKey(context.Context) ([]byte, error) {
	return s.key, s.err
}
