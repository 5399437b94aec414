package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pratik-mahalle/mediremind/internal/domain/user"
	"github.com/pratik-mahalle/mediremind/internal/pkg/logger"
)

// UserService implements user.Service
type UserService struct {
	repo       user.Repository
	logger     *logger.Logger
	bcryptCost int
	// dummyHash is compared against when the email is unknown so both
	// failure paths cost the same
	dummyHash []byte
}

// NewUserService creates a new user service. A bcryptCost outside the
// range bcrypt accepts falls back to bcrypt.DefaultCost.
func NewUserService(repo user.Repository, log *logger.Logger, bcryptCost int) *UserService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("mediremind-dummy-password"), bcryptCost)
	return &UserService{
		repo:       repo,
		logger:     log,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
	}
}

var _ user.Service = (*UserService)(nil)

// Register creates a new account
func (s *UserService) Register(ctx context.Context, in user.RegisterInput) (*user.User, error) {
	email := user.NormalizeEmail(in.Email)

	role, err := user.ParseRole(string(in.Role))
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, user.ErrEmailTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, user.ErrPasswordTooLong
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &user.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if !errors.Is(err, user.ErrEmailTaken) {
			s.logger.ErrorWithErr(err, "Failed to create user")
		}
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
		"role":    u.Role,
	}).Info("User registered")

	return u, nil
}

// Authenticate checks the password of the account registered under email
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.repo.GetByEmail(ctx, user.NormalizeEmail(email))
	if errors.Is(err, user.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, user.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.With("user_id", u.ID).Debug("Password mismatch")
		return nil, user.ErrInvalidCredentials
	}

	return u, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id string) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}
