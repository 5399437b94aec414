package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pratik-mahalle/mediremind/internal/domain/user"
	"github.com/pratik-mahalle/mediremind/internal/repository/postgres"
	"github.com/pratik-mahalle/mediremind/internal/testutil"
)

func newUser(id, email string) *user.User {
	return &user.User{
		ID:           id,
		Name:         "Test User",
		Email:        email,
		Phone:        "555-0100",
		PasswordHash: "hash",
		Role:         user.RolePatient,
	}
}

func TestUserRepository_Create(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(db)

	tests := []struct {
		name    string
		user    *user.User
		wantErr error
	}{
		{
			name: "create user successfully",
			user: newUser("u-1", "test@example.com"),
		},
		{
			name: "create another user",
			user: newUser("u-2", "another@example.com"),
		},
		{
			name:    "duplicate email",
			user:    newUser("u-3", "test@example.com"),
			wantErr: user.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(context.Background(), tt.user)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && tt.user.CreatedAt.IsZero() {
				t.Error("Create() did not set CreatedAt")
			}
		})
	}

	count, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d, want 2", count)
	}
}

func TestUserRepository_Get(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	u := newUser("u-1", "test@example.com")
	u.Role = user.RoleCaregiver
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	byID, err := repo.GetByID(ctx, "u-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if byID.Email != u.Email || byID.Role != user.RoleCaregiver || byID.PasswordHash != "hash" {
		t.Errorf("GetByID() = %+v", byID)
	}

	byEmail, err := repo.GetByEmail(ctx, "test@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if byEmail.ID != "u-1" || byEmail.Phone != "555-0100" {
		t.Errorf("GetByEmail() = %+v", byEmail)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetByEmail(ctx, "missing@example.com"); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("GetByEmail(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRevokedTokenRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := postgres.NewRevokedTokenRepository(db)
	ctx := context.Background()
	now := time.Now()

	if err := repo.Revoke(ctx, "expired", now.Add(-time.Hour)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if err := repo.Revoke(ctx, "live", now.Add(time.Hour)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	// Revoking again is a no-op
	if err := repo.Revoke(ctx, "live", now.Add(time.Hour)); err != nil {
		t.Fatalf("Revoke() twice error = %v", err)
	}

	revoked, err := repo.IsRevoked(ctx, "live")
	if err != nil || !revoked {
		t.Fatalf("IsRevoked(live) = %v, %v", revoked, err)
	}

	purged, err := repo.PurgeExpired(ctx, now)
	if err != nil {
		t.Fatalf("PurgeExpired() error = %v", err)
	}
	if purged != 1 {
		t.Errorf("PurgeExpired() = %d, want 1", purged)
	}

	if revoked, _ := repo.IsRevoked(ctx, "expired"); revoked {
		t.Error("expired entry survived purge")
	}
	if revoked, _ := repo.IsRevoked(ctx, "live"); !revoked {
		t.Error("live entry was purged")
	}
}

func TestRebind(t *testing.T) {
	pg := &postgres.DB{Driver: postgres.DriverPostgres}
	if got := pg.Rebind("SELECT a FROM t WHERE b = ? AND c = ?"); got != "SELECT a FROM t WHERE b = $1 AND c = $2" {
		t.Errorf("Rebind() = %q", got)
	}

	lite := &postgres.DB{Driver: postgres.DriverSQLite}
	if got := lite.Rebind("WHERE b = ?"); got != "WHERE b = ?" {
		t.Errorf("Rebind() = %q", got)
	}
}
