package user

import (
	"errors"
	"strings"
	"time"
)

// User represents an account holder
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"` // Not exposed in JSON
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Role is the account type
type Role string

// User roles
const (
	RolePatient   Role = "PATIENT"
	RoleCaregiver Role = "CAREGIVER"
)

// ParseRole normalizes r, defaulting to RolePatient when empty
func ParseRole(r string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(r))) {
	case "", RolePatient:
		return RolePatient, nil
	case RoleCaregiver:
		return RoleCaregiver, nil
	default:
		return "", ErrInvalidRole
	}
}

// NormalizeEmail is the form emails are stored and looked up in
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
)
