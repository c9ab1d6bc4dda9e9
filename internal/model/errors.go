package model

import "errors"

var (
	// User related errors
	ErrUserNotFound          = errors.New("user not found")
	ErrUserAlreadyExists     = errors.New("user already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")

	// Credential errors. Lookup failure and password mismatch both map to
	// ErrInvalidCredentials so the client cannot tell which part was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token related errors
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	// Configuration errors. A missing signing secret is an operator error and
	// must surface as a 500, never as a 401.
	ErrMissingSecret = errors.New("signing secret is not configured")
)
