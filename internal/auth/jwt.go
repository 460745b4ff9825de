package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
)

const issuer = "projecthub"

// Claims are the JWT claims embedded in access tokens.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWT mints and verifies HS256 access tokens.
type JWT struct {
	secret []byte
	ttl    time.Duration
}

// NewJWT creates a signer with the given secret and access token lifetime.
func NewJWT(secret string, ttl time.Duration) *JWT {
	return &JWT{secret: []byte(secret), ttl: ttl}
}

// TTL returns the access token lifetime.
func (j *JWT) TTL() time.Duration { return j.ttl }

// Issue mints an access token for the user.
func (j *JWT) Issue(u *hub.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tok, nil
}

// Verify parses and validates an access token, returning the caller identity.
// Expired tokens map to hub.ErrTokenExpired so the API can answer 401 and let
// the client run its refresh path.
func (j *JWT) Verify(raw string) (*hub.Identity, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return j.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, hub.ErrTokenExpired
		}
		return nil, hub.ErrUnauthorized
	}

	role := claims.Role
	if _, ok := hub.RolePermissions[role]; !ok {
		role = hub.RoleMember
	}
	return &hub.Identity{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     role,
		Perms:    hub.RolePermissions[role],
	}, nil
}
