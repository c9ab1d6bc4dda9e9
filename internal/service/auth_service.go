package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"shelflife-api/internal/model"
	"shelflife-api/pkg/apierror"
)

const bcryptCost = 10

// UserStore is the credential store consumed by the auth service. Lookups
// report an absent row as model.ErrUserNotFound; Create reports a uniqueness
// violation as model.ErrUserAlreadyExists.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	Create(ctx context.Context, username string, email string, passwordHash string) (int64, error)
}

// Claims is the fixed access/refresh token payload shape: userId is always
// present, email only when it was known at issue time.
type Claims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users         UserStore
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewAuthService fails when either signing secret is missing so a
// misconfigured deployment refuses to serve instead of minting tokens with a
// fallback secret.
func NewAuthService(accessSecret string, refreshSecret string, accessTTL time.Duration, refreshTTL time.Duration, users UserStore) (*AuthService, error) {
	if strings.TrimSpace(accessSecret) == "" || strings.TrimSpace(refreshSecret) == "" {
		return nil, model.ErrMissingSecret
	}
	if accessSecret == refreshSecret {
		return nil, fmt.Errorf("access and refresh secrets must differ")
	}

	return &AuthService{
		users:         users,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// Register creates the user row and issues the first token pair. The email
// lookup is only a fast path for a friendly error; the unique index behind
// UserStore.Create is what actually prevents duplicate accounts.
func (s *AuthService) Register(ctx context.Context, username string, email string, password string) (model.AuthenticatedUser, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if username == "" || email == "" || password == "" {
		return model.AuthenticatedUser{}, "", apierror.BadRequest("Username, email, and password are required")
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return model.AuthenticatedUser{}, "", model.ErrUserAlreadyExists
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return model.AuthenticatedUser{}, "", fmt.Errorf("check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return model.AuthenticatedUser{}, "", fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.users.Create(ctx, username, email, string(hash))
	if err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) || errors.Is(err, model.ErrUsernameAlreadyExists) {
			return model.AuthenticatedUser{}, "", err
		}
		return model.AuthenticatedUser{}, "", fmt.Errorf("create user: %w", err)
	}

	return s.issueTokenPair(userID, username, email)
}

// Login authenticates by email. A missing user and a wrong password return
// the same error so the response never reveals which part failed.
func (s *AuthService) Login(ctx context.Context, email string, password string) (model.AuthenticatedUser, string, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, model.ErrUserNotFound) {
		return model.AuthenticatedUser{}, "", model.ErrInvalidCredentials
	}
	if err != nil {
		return model.AuthenticatedUser{}, "", fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return model.AuthenticatedUser{}, "", model.ErrInvalidCredentials
		}
		return model.AuthenticatedUser{}, "", fmt.Errorf("verify password: %w", err)
	}

	return s.issueTokenPair(user.ID, user.Username, user.Email)
}

// Refresh verifies the refresh token and mints a fresh access token. The
// refresh token only carries userId, so the user row is re-read to restore
// the email claim and keep the access token shape consistent across flows.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, model.ErrUserNotFound) {
		return "", model.ErrTokenInvalid
	}
	if err != nil {
		return "", fmt.Errorf("find user for refresh: %w", err)
	}

	return s.IssueAccessToken(user.ID, user.Email)
}

// Profile returns the externally visible projection of a user row for the
// authenticated identity.
func (s *AuthService) Profile(ctx context.Context, userID int64) (model.UserProfile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return model.UserProfile{}, err
	}
	return model.UserProfile{ID: user.ID, Username: user.Username, Email: user.Email}, nil
}

func (s *AuthService) IssueAccessToken(userID int64, email string) (string, error) {
	if len(s.accessSecret) == 0 {
		return "", model.ErrMissingSecret
	}
	return s.signToken(Claims{UserID: userID, Email: email}, s.accessSecret, s.accessTTL)
}

func (s *AuthService) IssueRefreshToken(userID int64) (string, error) {
	if len(s.refreshSecret) == 0 {
		return "", model.ErrMissingSecret
	}
	return s.signToken(Claims{UserID: userID}, s.refreshSecret, s.refreshTTL)
}

func (s *AuthService) VerifyAccessToken(tokenString string) (*Claims, error) {
	if len(s.accessSecret) == 0 {
		return nil, model.ErrMissingSecret
	}
	return verifyToken(tokenString, s.accessSecret)
}

// VerifyAccess is the middleware-facing form of VerifyAccessToken: it maps
// the claim set down to the identity attached to the request context.
func (s *AuthService) VerifyAccess(tokenString string) (model.AuthUser, error) {
	claims, err := s.VerifyAccessToken(tokenString)
	if err != nil {
		return model.AuthUser{}, err
	}
	return model.AuthUser{ID: claims.UserID, Email: claims.Email}, nil
}

func (s *AuthService) VerifyRefreshToken(tokenString string) (*Claims, error) {
	if len(s.refreshSecret) == 0 {
		return nil, model.ErrMissingSecret
	}
	return verifyToken(tokenString, s.refreshSecret)
}

func (s *AuthService) issueTokenPair(userID int64, username string, email string) (model.AuthenticatedUser, string, error) {
	accessToken, err := s.IssueAccessToken(userID, email)
	if err != nil {
		return model.AuthenticatedUser{}, "", err
	}

	refreshToken, err := s.IssueRefreshToken(userID)
	if err != nil {
		return model.AuthenticatedUser{}, "", err
	}

	return model.AuthenticatedUser{
		ID:       userID,
		Username: username,
		Email:    email,
		Token:    accessToken,
	}, refreshToken, nil
}

func (s *AuthService) signToken(claims Claims, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func verifyToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, model.ErrTokenInvalid
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.ErrTokenExpired
		}
		return nil, model.ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, model.ErrTokenInvalid
	}

	// userId is the one mandatory claim.
	if claims.UserID == 0 {
		return nil, model.ErrTokenInvalid
	}

	return claims, nil
}
