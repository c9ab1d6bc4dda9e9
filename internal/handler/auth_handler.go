package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"shelflife-api/internal/middleware"
	"shelflife-api/internal/model"
	"shelflife-api/internal/service"
	"shelflife-api/pkg/apierror"
)

const refreshCookieName = "refreshToken"

type AuthHandler struct {
	service    *service.AuthService
	validate   *validator.Validate
	refreshTTL time.Duration
	production bool
}

func NewAuthHandler(authService *service.AuthService, refreshTTL time.Duration, production bool) *AuthHandler {
	return &AuthHandler{
		service:    authService,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		refreshTTL: refreshTTL,
		production: production,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("Invalid JSON body"))
		return
	}

	if err := h.validate.Struct(payload); err != nil {
		writeError(w, apierror.New("Username, email, and password are required", validationDetails(err), http.StatusBadRequest))
		return
	}

	user, refreshToken, err := h.service.Register(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, refreshToken)
	writeJSON(w, http.StatusCreated, model.AuthResponse{
		Message: "User registered successfully",
		User:    user,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.BadRequest("Invalid JSON body"))
		return
	}

	if err := h.validate.Struct(payload); err != nil {
		writeError(w, apierror.New("Email and password are required", validationDetails(err), http.StatusBadRequest))
		return
	}

	user, refreshToken, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setRefreshCookie(w, refreshToken)
	writeJSON(w, http.StatusOK, model.AuthResponse{
		Message: "Login successful",
		User:    user,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		writeError(w, apierror.Unauthorized("Refresh token is required"))
		return
	}

	token, err := h.service.Refresh(r.Context(), cookie.Value)
	if err != nil {
		// Only token failures end the session; a storage failure on the
		// user re-read stays a 500 so clients do not get logged out by an
		// outage.
		if errors.Is(err, model.ErrTokenExpired) || errors.Is(err, model.ErrTokenInvalid) {
			writeError(w, apierror.Unauthorized("Invalid or expired refresh token"))
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.RefreshResponse{
		Message: "Token refreshed successfully",
		Token:   token,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	authUser, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("Not authorized, no token"))
		return
	}

	profile, err := h.service.Profile(r.Context(), authUser.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// setRefreshCookie delivers the refresh token the only way it ever travels:
// an HTTP-only cookie. SameSite=None is required for the cross-origin
// frontend in production and implies Secure.
func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	sameSite := http.SameSiteLaxMode
	if h.production {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.production,
		SameSite: sameSite,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	sameSite := http.SameSiteLaxMode
	if h.production {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.production,
		SameSite: sameSite,
	})
}

func validationDetails(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return ""
	}

	first := validationErrs[0]
	return first.Field() + " failed on " + first.Tag()
}
