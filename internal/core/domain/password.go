package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	PasswordMinLength = 8
	PasswordMaxLength = 32

	// PasswordSpecials is the set a password must draw at least one character from.
	PasswordSpecials = "!@#$%^&*()-+"
)

// CheckPasswordPolicy returns ErrPasswordPolicy unless password is 8 to 32
// characters long, mixes lower case, upper case, digits and specials, and
// uses nothing outside those classes.
func CheckPasswordPolicy(password string) error {
	n := utf8.RuneCountInString(password)
	if n < PasswordMinLength || n > PasswordMaxLength {
		return ErrPasswordPolicy
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSpecials, r):
			special = true
		default:
			return ErrPasswordPolicy
		}
	}

	if !lower || !upper || !digit || !special {
		return ErrPasswordPolicy
	}
	return nil
}
