package user

import "context"

// Repository defines the interface for user data access
type Repository interface {
	// Create creates a new user. It returns ErrEmailTaken when the email
	// is already registered.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Count returns the number of registered users
	Count(ctx context.Context) (int64, error)
}
