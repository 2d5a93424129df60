package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("unable to find user")
	ErrInvalidCredentials = errors.New("password does not match")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrAlreadyExists      = errors.New("this user already exists")

	ErrPasswordPolicy = errors.New("password does not meet requirements: 8 to 32 characters with at least " +
		"one digit, one upper case letter, one lower case letter and one of !@#$%^&*()-+, no white space")
	ErrHashFailure        = errors.New("unable to hash password")
	ErrMissingOldPassword = errors.New("missing old password, it is required in order to update to a new password")
	ErrMissingNewPassword = errors.New("missing new password, it is required in order to update your password")
	ErrPasswordUpdate     = errors.New("unable to update password")

	ErrMissingFields     = errors.New("please provide all required fields")
	ErrInvalidEmail      = errors.New("the provided email address is invalid")
	ErrEmailRequirements = errors.New("email does not meet requirements, please ensure it follows the email@site.tld format")
	ErrValidation        = errors.New("unable to validate user")

	// Storage constraint failures. Callers wrap them with the driver message.
	ErrDuplicateKey  = errors.New("duplicate entry")
	ErrMissingColumn = errors.New("missing required column")

	ErrSigning        = errors.New("unable to encode token")
	ErrTokenCreation  = errors.New("unable to create a new token")
	ErrMalformedToken = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrConfiguration  = errors.New("signing secret is not configured")

	ErrUnexpected = errors.New("an unexpected error occurred")
)
