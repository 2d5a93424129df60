package domain

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

var emailPattern = regexp.MustCompile(`^(([^<>()[\]\\.,;:\s@"]+(\.[^<>()[\]\\.,;:\s@"]+)*)|(".+"))@(([a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?\.)+[a-zA-Z]{2,})$`)

// ValidEmail reports whether email looks like local@domain.tld.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NormalizeEmail is the form an email is stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field of an input that failed its rules.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Has reports whether field is among the violations.
func (e *ValidationError) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

type newUserRules struct {
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Dob       time.Time `json:"dob"`
}

// ValidateNewUser checks the structural rules of a registration. It returns
// nil or a *ValidationError.
func ValidateNewUser(u NewUser, now time.Time) error {
	r := newUserRules(u)

	err := validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Match(emailPattern)),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.FirstName, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&r.LastName, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&r.Dob, validation.Required, validation.By(notAfter(now))),
	)
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Violations: []FieldViolation{{Field: "user", Message: err.Error()}}}
	}
	return violationsOf(fieldErrs)
}

func violationsOf(errs validation.Errors) *ValidationError {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := &ValidationError{Violations: make([]FieldViolation, 0, len(fields))}
	for _, f := range fields {
		out.Violations = append(out.Violations, FieldViolation{Field: f, Message: errs[f].Error()})
	}
	return out
}

func notAfter(limit time.Time) validation.RuleFunc {
	return func(value interface{}) error {
		t, ok := value.(time.Time)
		if !ok {
			return errors.New("must be a date")
		}
		if t.After(limit) {
			return errors.New("must not be in the future")
		}
		return nil
	}
}
