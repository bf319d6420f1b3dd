package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when a user does not exist
var ErrUserNotFound = errors.New("user not found")

// User holds the account fields needed by authentication flows.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
}

// Repository defines the interface for user lookups
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
}
