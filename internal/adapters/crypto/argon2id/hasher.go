// Package argon2id hashes and verifies passwords with Argon2id, encoding
// hashes in the PHC string format:
//
//	$argon2id$v=19$m=<memory KiB>,t=<iterations>,p=<parallelism>$<salt>$<key>
//
// Salt and key use unpadded standard base64, so hashes produced by other
// Argon2 implementations with the same format verify here too.
package argon2id

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vncsmyrnk/accounts/internal/core/domain"
	"golang.org/x/crypto/argon2"
)

const (
	// MemoryKiB is fixed; stored hashes carry their own cost parameters.
	MemoryKiB   uint32 = 16384
	Iterations  uint32 = 3
	Parallelism uint8  = 4
	SaltLength  uint32 = 16
	KeyLength   uint32 = 32
)

var errInvalidHash = errors.New("invalid argon2id hash")

type params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

type Hasher struct {
	params params
	rand   io.Reader
}

func NewHasher() *Hasher {
	return &Hasher{
		params: params{memory: MemoryKiB, iterations: Iterations, parallelism: Parallelism},
		rand:   rand.Reader,
	}
}

// Hash enforces the password policy and returns the encoded Argon2id hash.
func (h *Hasher) Hash(password string) (string, error) {
	if err := domain.CheckPasswordPolicy(password); err != nil {
		return "", err
	}

	salt := make([]byte, SaltLength)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("%w: salt: %v", domain.ErrHashFailure, err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.iterations, h.params.memory, h.params.parallelism, KeyLength)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.memory,
		h.params.iterations,
		h.params.parallelism,
		b64.EncodeToString(salt),
		b64.EncodeToString(key),
	), nil
}

// Match reports whether plaintext produces hash. A hash that cannot be
// decoded yields ErrInvalidCredentials rather than a decoding error.
func (h *Hasher) Match(plaintext, hash string) (bool, error) {
	p, salt, expected, err := decode(hash)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, err)
	}
	if !h.withinBounds(p) {
		return false, fmt.Errorf("%w: %v", domain.ErrInvalidCredentials, errInvalidHash)
	}

	key := argon2.IDKey([]byte(plaintext), salt, p.iterations, p.memory, p.parallelism, uint32(len(expected))) // #nosec G115 -- bounded by decode
	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

// withinBounds refuses hashes whose cost would be far above our own.
func (h *Hasher) withinBounds(p params) bool {
	return p.memory <= h.params.memory*4 &&
		p.iterations <= h.params.iterations*4 &&
		p.parallelism <= h.params.parallelism*4
}

func decode(encoded string) (params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return params{}, nil, nil, errInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params{}, nil, nil, errInvalidHash
	}

	var mem, it, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &it, &par); err != nil {
		return params{}, nil, nil, errInvalidHash
	}
	if mem == 0 || it == 0 || par == 0 || par > 255 {
		return params{}, nil, nil, errInvalidHash
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) < 8 {
		return params{}, nil, nil, errInvalidHash
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) < 16 || len(key) > 128 {
		return params{}, nil, nil, errInvalidHash
	}

	return params{memory: mem, iterations: it, parallelism: uint8(par)}, salt, key, nil
}
