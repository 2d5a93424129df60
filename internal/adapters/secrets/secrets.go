// Package secrets resolves the token signing key from the process
// environment or from AWS Secrets Manager.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/vncsmyrnk/accounts/internal/core/ports"
	"golang.org/x/sync/singleflight"
)

var ErrSecretNotFound = errors.New("secret not found")

// Local reads the signing key from an environment variable.
type Local struct {
	name   string
	lookup func(string) (string, bool)
}

func NewLocal(name string) *Local {
	return &Local{name: name, lookup: os.LookupEnv}
}

func (l *Local) SigningKey(_ context.Context) ([]byte, error) {
	v, ok := l.lookup(l.name)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, fmt.Errorf("%w: %s is not defined", ErrSecretNotFound, l.name)
	}
	return []byte(v), nil
}

// Cached keeps the first key a provider returns. Failures are not cached,
// so a later call retries the underlying provider.
type Cached struct {
	next  ports.SecretProvider
	group singleflight.Group

	mu  sync.RWMutex
	key []byte
}

func NewCached(next ports.SecretProvider) *Cached {
	return &Cached{next: next}
}

func (c *Cached) SigningKey(ctx context.Context) ([]byte, error) {
	c.mu.RLock()
	key := c.key
	c.mu.RUnlock()
	if key != nil {
		return key, nil
	}

	// Shared by every waiter, so detached from the leader's cancellation.
	v, err, _ := c.group.Do("signing-key", func() (interface{}, error) {
		key, err := c.next.SigningKey(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.key = key
		c.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
