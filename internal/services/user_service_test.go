package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/pratik-mahalle/mediremind/internal/domain/user"
	"github.com/pratik-mahalle/mediremind/internal/testutil"
)

func newTestUserService() (*UserService, *testutil.MockUserRepository) {
	repo := testutil.NewMockUserRepository()
	return NewUserService(repo, testutil.NewTestLogger(), bcrypt.MinCost), repo
}

func TestUserService_Register(t *testing.T) {
	service, repo := newTestUserService()
	ctx := context.Background()

	tests := []struct {
		name     string
		in       user.RegisterInput
		wantRole user.Role
		wantErr  error
	}{
		{
			name: "patient by default",
			in: user.RegisterInput{
				Name: "Asha", Email: " Asha@Example.com ", Password: "secret1", Phone: "555-0100",
			},
			wantRole: user.RolePatient,
		},
		{
			name: "caregiver",
			in: user.RegisterInput{
				Name: "Ravi", Email: "ravi@example.com", Password: "secret1", Phone: "555-0101",
				Role: "caregiver",
			},
			wantRole: user.RoleCaregiver,
		},
		{
			name: "duplicate email differing in case",
			in: user.RegisterInput{
				Name: "Asha", Email: "ASHA@example.com", Password: "secret1", Phone: "555-0100",
			},
			wantErr: user.ErrEmailTaken,
		},
		{
			name: "unknown role",
			in: user.RegisterInput{
				Name: "Eve", Email: "eve@example.com", Password: "secret1", Phone: "555-0102",
				Role: "ADMIN",
			},
			wantErr: user.ErrInvalidRole,
		},
		{
			name: "password over 72 bytes",
			in: user.RegisterInput{
				Name: "Mei", Email: "mei@example.com", Password: strings.Repeat("密", 30), Phone: "555-0103",
			},
			wantErr: user.ErrPasswordTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := service.Register(ctx, tt.in)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}

			if u.ID == "" {
				t.Error("Register() did not assign an ID")
			}
			if u.Email != user.NormalizeEmail(tt.in.Email) {
				t.Errorf("Register() email = %q", u.Email)
			}
			if u.Role != tt.wantRole {
				t.Errorf("Register() role = %v, want %v", u.Role, tt.wantRole)
			}
			if u.PasswordHash == tt.in.Password {
				t.Error("Register() stored the plain password")
			}
			if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(tt.in.Password)); err != nil {
				t.Errorf("stored hash does not match password: %v", err)
			}
		})
	}

	if n, _ := repo.Count(ctx); n != 2 {
		t.Errorf("expected 2 users, got %d", n)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	service, _ := newTestUserService()
	ctx := context.Background()

	registered, err := service.Register(ctx, user.RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "secret1", Phone: "555-0100",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid credentials", "asha@example.com", "secret1", nil},
		{"email is case insensitive", "ASHA@example.com", "secret1", nil},
		{"wrong password", "asha@example.com", "nope", user.ErrInvalidCredentials},
		{"unknown email", "nobody@example.com", "secret1", user.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := service.Authenticate(ctx, tt.email, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && u.ID != registered.ID {
				t.Errorf("Authenticate() id = %v, want %v", u.ID, registered.ID)
			}
		})
	}
}

func TestUserService_GetByID(t *testing.T) {
	service, _ := newTestUserService()
	ctx := context.Background()

	created, err := service.Register(ctx, user.RegisterInput{
		Name: "Asha", Email: "asha@example.com", Password: "secret1", Phone: "555-0100",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	got, err := service.GetByID(ctx, created.ID)
	if err != nil || got.Email != "asha@example.com" {
		t.Fatalf("GetByID() = %+v, %v", got, err)
	}

	if _, err := service.GetByID(ctx, "missing"); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v", err)
	}
}
