package service

import (
	"crypto/subtle"
	"net/mail"
	"strings"
	"time"

	"github.com/Rexomon/Finance-tracker/internal/cache"
	"github.com/Rexomon/Finance-tracker/internal/domain"
	"github.com/Rexomon/Finance-tracker/internal/util"
	"github.com/google/uuid"
)

// Token lifetimes. The refresh token's lifetime also bounds the cache
// entry mirroring it.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenPair is one issued access/refresh token set
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService handles registration and session lifecycle. Sessions are
// single-per-user: the cache holds exactly one refresh token per user,
// and a new login overwrites it, invalidating any earlier session.
type AuthService struct {
	users         domain.UserRepository
	store         cache.Store
	accessSecret  []byte
	refreshSecret []byte
}

// NewAuthService creates a new AuthService
func NewAuthService(users domain.UserRepository, store cache.Store, accessSecret, refreshSecret string) *AuthService {
	return &AuthService{
		users:         users,
		store:         store,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

// Register creates a new user account
func (s *AuthService) Register(name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if len(password) < domain.MinPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}

	// Pre-check so the caller learns which field collides; the unique
	// indexes still backstop the race between check and insert.
	existing, err := s.users.FindByNameOrEmail(name, email)
	if err != nil && err != domain.ErrUserNotFound {
		return nil, err
	}
	if existing != nil {
		if existing.Name == name {
			return nil, domain.ErrUserExists
		}
		return nil, domain.ErrEmailExists
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return s.users.Create(&domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
}

// Login verifies credentials and issues a fresh token pair
func (s *AuthService) Login(email, password string) (*domain.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(strings.TrimSpace(email))
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	ok, err := util.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh rotates the token pair. The presented refresh token must
// parse, match the cached copy byte for byte, and belong to a user that
// still exists; a mismatch means the session was superseded or revoked.
func (s *AuthService) Refresh(refreshToken string) (*domain.User, *TokenPair, error) {
	claims, err := util.ParseToken(refreshToken, s.refreshSecret)
	if err != nil {
		return nil, nil, domain.ErrSessionInvalid
	}

	cached, found, err := s.store.Get(cache.RefreshTokenKey(claims.UserID))
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, nil, domain.ErrSessionInvalid
	}
	if len(cached) != len(refreshToken) ||
		subtle.ConstantTimeCompare([]byte(cached), []byte(refreshToken)) != 1 {
		return nil, nil, domain.ErrSessionInvalid
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, nil, domain.ErrSessionInvalid
		}
		return nil, nil, err
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Logout revokes the user's session
func (s *AuthService) Logout(userID uuid.UUID) error {
	return s.store.Delete(cache.RefreshTokenKey(userID))
}

// Profile returns the user for the authenticated id
func (s *AuthService) Profile(userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(userID)
}

func (s *AuthService) issueTokens(user *domain.User) (*TokenPair, error) {
	accessToken, err := util.SignToken(user.ID, user.Email, s.accessSecret, AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	refreshToken, err := util.SignToken(user.ID, "", s.refreshSecret, RefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	if err := s.store.Set(cache.RefreshTokenKey(user.ID), refreshToken, RefreshTokenTTL); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
