package model

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthUser is the identity attached to a request after the access token has
// been verified. Email may be empty when the token carried no email claim.
type AuthUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email,omitempty"`
}

// UserProfile is the externally visible projection of a user row.
type UserProfile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
