package user

import "context"

// RegisterInput is the data needed to open an account
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     Role
}

// Service defines the interface for user business logic
type Service interface {
	// Register creates an account with a hashed password
	Register(ctx context.Context, in RegisterInput) (*User, error)

	// Authenticate returns the user when password matches, or
	// ErrInvalidCredentials
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)
}
