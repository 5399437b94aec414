package postgres

import (
	"context"
	"time"

	"github.com/pratik-mahalle/mediremind/internal/pkg/errors"
)

// RevokedTokenRepository remembers logged out tokens by their ID until
// they would have expired anyway.
type RevokedTokenRepository struct {
	db *DB
}

// NewRevokedTokenRepository creates a new revoked token repository
func NewRevokedTokenRepository(db *DB) *RevokedTokenRepository {
	return &RevokedTokenRepository{db: db}
}

// Revoke records token id as revoked until expiresAt. Revoking twice is
// not an error.
func (r *RevokedTokenRepository) Revoke(ctx context.Context, id string, expiresAt time.Time) error {
	query := r.db.Rebind(`
		INSERT INTO revoked_tokens (jti, expires_at, revoked_at)
		VALUES (?, ?, ?)
		ON CONFLICT (jti) DO NOTHING
	`)

	if _, err := r.db.ExecContext(ctx, query, id, expiresAt.Unix(), time.Now().Unix()); err != nil {
		return errors.DatabaseError("Failed to revoke token", err)
	}
	return nil
}

// IsRevoked reports whether token id was revoked
func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, id string) (bool, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`)

	var n int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return false, errors.DatabaseError("Failed to check token", err)
	}
	return n > 0, nil
}

// PurgeExpired deletes entries whose token expired before now and returns
// how many were removed
func (r *RevokedTokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	query := r.db.Rebind(`DELETE FROM revoked_tokens WHERE expires_at < ?`)

	result, err := r.db.ExecContext(ctx, query, now.Unix())
	if err != nil {
		return 0, errors.DatabaseError("Failed to purge revoked tokens", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, errors.DatabaseError("Failed to get affected rows", err)
	}
	return rows, nil
}
