package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pratik-mahalle/mediremind/internal/cache"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)

	token, claims, err := m.Mint("u-1", "asha@example.com", "PATIENT")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}
	if claims.ID == "" {
		t.Fatal("Mint() did not set a token ID")
	}

	parsed, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed.UserID != "u-1" || parsed.Email != "asha@example.com" || parsed.Role != "PATIENT" {
		t.Errorf("Parse() claims = %+v", parsed)
	}
	if parsed.ID != claims.ID {
		t.Errorf("Parse() id = %q, want %q", parsed.ID, claims.ID)
	}
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	token, _, err := m.Mint("u-1", "asha@example.com", "PATIENT")
	if err != nil {
		t.Fatalf("Mint() error = %v", err)
	}

	other := NewTokenManager("fedcba9876543210fedcba9876543210", time.Hour)

	expired := NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	tests := []struct {
		name  string
		m     *TokenManager
		token string
	}{
		{"garbage", m, "not-a-token"},
		{"tampered", m, token + "x"},
		{"wrong secret", other, token},
		{"expired", expired, token},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.m.Parse(tt.token); err != ErrInvalidToken {
				t.Errorf("Parse() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

type memCache struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newMemCache() *memCache {
	return &memCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", cache.ErrNotFound
	}
	return v, nil
}

func (c *memCache) Set(ctx context.Context, key, value string, exp time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	c.ttls[key] = exp
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *memCache) Ping(ctx context.Context) error { return nil }
func (c *memCache) Close() error                   { return nil }

func TestCacheRevoker(t *testing.T) {
	c := newMemCache()
	r := NewCacheRevoker(c)
	ctx := context.Background()

	if err := r.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	revoked, err := r.IsRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Fatalf("IsRevoked() = %v, %v", revoked, err)
	}
	if ttl := c.ttls[revokedKeyPrefix+"jti-1"]; ttl <= 0 || ttl > time.Hour {
		t.Errorf("unexpected ttl %v", ttl)
	}

	// Already expired tokens need no entry
	if err := r.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if revoked, _ := r.IsRevoked(ctx, "jti-2"); revoked {
		t.Error("expired token was stored")
	}
}
