package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format of a date of birth.
const DateLayout = "2006-01-02"

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Dob          time.Time `json:"dob"`
	CreatedAt    time.Time `json:"createdAt"`
}

// WithoutPassword returns a copy safe to hand back to callers.
func (u *User) WithoutPassword() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	return &c
}

// MarshalJSON writes dob in DateLayout, the same form registration accepts.
func (u User) MarshalJSON() ([]byte, error) {
	type wire User
	return json.Marshal(struct {
		wire
		Dob string `json:"dob"`
	}{wire: wire(u), Dob: u.Dob.Format(DateLayout)})
}

// NewUser is a registration request after normalization.
type NewUser struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Dob       time.Time
}

type AuthToken struct {
	BearerToken  string `json:"bearerToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenClaims is what a verified token asserts about its subject.
type TokenClaims struct {
	UserID    uuid.UUID
	IssuedAt  time.Time
	ExpiresAt time.Time
}
