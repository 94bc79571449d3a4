package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account holder. Name and email are unique across
// all users; the password hash is never serialized in API responses.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserRepository defines the persistence interface for users
type UserRepository interface {
	// Create persists a new user. Returns ErrUserExists or ErrEmailExists
	// when a unique index is violated.
	Create(user *User) (*User, error)
	GetByID(id uuid.UUID) (*User, error)
	GetByEmail(email string) (*User, error)
	// FindByNameOrEmail returns a user matching either field, so callers
	// can report which of the two is already taken.
	FindByNameOrEmail(name, email string) (*User, error)
}
