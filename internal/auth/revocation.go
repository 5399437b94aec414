package auth

import (
	"context"
	"time"

	"github.com/pratik-mahalle/mediremind/internal/cache"
)

// Revoker remembers tokens that were logged out before they expired
type Revoker interface {
	Revoke(ctx context.Context, id string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

const revokedKeyPrefix = "mediremind:revoked:"

// CacheRevoker keeps revoked token IDs in a cache. Entries expire together
// with the token, so no purge is needed.
type CacheRevoker struct {
	cache cache.Cache
}

// NewCacheRevoker creates a revoker backed by c
func NewCacheRevoker(c cache.Cache) *CacheRevoker {
	return &CacheRevoker{cache: c}
}

func (r *CacheRevoker) Revoke(ctx context.Context, id string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.cache.Set(ctx, revokedKeyPrefix+id, "1", ttl)
}

func (r *CacheRevoker) IsRevoked(ctx context.Context, id string) (bool, error) {
	return r.cache.Exists(ctx, revokedKeyPrefix+id)
}
