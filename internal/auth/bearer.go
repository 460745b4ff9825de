package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/maypok86/otter/v2"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
)

const (
	cacheTTL    = 30 * time.Second // short so role changes surface promptly
	cacheMaxLen = 10_000           // max concurrent active sessions expected
)

// BearerAuth implements hub.Authenticator over JWT access tokens. Verified
// identities are cached by token hash in an otter W-TinyLFU cache to skip
// repeated signature checks on hot paths.
type BearerAuth struct {
	jwt   *JWT
	cache *otter.Cache[string, *hub.Identity]
}

// NewBearerAuth returns a BearerAuth verifying tokens with jwt.
func NewBearerAuth(jwt *JWT) (*BearerAuth, error) {
	c, err := otter.New(&otter.Options[string, *hub.Identity]{
		MaximumSize:      cacheMaxLen,
		ExpiryCalculator: otter.ExpiryWriting[string, *hub.Identity](cacheTTL),
	})
	if err != nil {
		return nil, fmt.Errorf("create auth cache: %w", err)
	}
	return &BearerAuth{jwt: jwt, cache: c}, nil
}

// Authenticate extracts a Bearer token from the Authorization header and
// validates it, returning the caller's Identity.
func (a *BearerAuth) Authenticate(_ context.Context, r *http.Request) (*hub.Identity, error) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if raw == "" || raw == r.Header.Get("Authorization") {
		return nil, hub.ErrUnauthorized
	}

	key := hub.HashToken(raw)
	if id, ok := a.cache.GetIfPresent(key); ok {
		return id, nil
	}

	id, err := a.jwt.Verify(raw)
	if err != nil {
		return nil, err
	}
	// The cache TTL is well under the shortest sane access token lifetime,
	// so a cached identity cannot outlive its token's expiry by much.
	a.cache.Set(key, id)
	return id, nil
}
