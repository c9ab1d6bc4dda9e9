package model

// AuthenticatedUser is the user payload returned by register and login.
// The access token travels in the body; the refresh token only ever travels
// in the refreshToken cookie.
type AuthenticatedUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

type AuthResponse struct {
	Message string            `json:"message"`
	User    AuthenticatedUser `json:"user"`
}

type RefreshResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
