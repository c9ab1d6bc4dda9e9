package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"shelflife-api/internal/model"
	"shelflife-api/pkg/apierror"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError translates service and repository errors into the stable
// response taxonomy. Driver details never replace the stable message, and
// nothing secret (hashes, signing keys) ever reaches the body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := model.ErrorResponse{Message: "Internal Server Error"}

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	case errors.Is(err, model.ErrUserAlreadyExists):
		status = http.StatusBadRequest
		body.Message = "User with this email already exists"
	case errors.Is(err, model.ErrUsernameAlreadyExists):
		status = http.StatusBadRequest
		body.Message = "User with this username already exists"
	case errors.Is(err, model.ErrInvalidCredentials):
		status = http.StatusBadRequest
		body.Message = "Invalid credentials"
	case errors.Is(err, model.ErrUserNotFound):
		status = http.StatusNotFound
		body.Message = "User not found"
	case errors.Is(err, model.ErrTokenExpired):
		status = http.StatusUnauthorized
		body.Message = "Token expired. Please log in again."
	case errors.Is(err, model.ErrTokenInvalid):
		status = http.StatusUnauthorized
		body.Message = "Invalid token. Please log in again."
	case errors.Is(err, model.ErrMissingSecret):
		status = http.StatusInternalServerError
		body.Message = "Server misconfiguration: JWT secret missing"
	default:
		// Unclassified errors stay a generic 500; log them so they are
		// visible in server logs.
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	writeJSON(w, status, body)
}
