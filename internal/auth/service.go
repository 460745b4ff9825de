package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
	"github.com/Tejas3545/project-hub-sub001/internal/storage"
)

// DefaultRefreshTTL is the refresh token lifetime when none is configured.
const DefaultRefreshTTL = 30 * 24 * time.Hour

// TokenPair is the credential pair returned to clients. Field names follow
// the wire format the API client expects.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"` // access token lifetime in seconds
}

// tokenStores is the slice of storage.Store the service needs.
type tokenStores interface {
	storage.UserStore
	storage.AuthTokenStore
}

// Service implements registration, login, and the refresh token lifecycle.
// Refresh tokens rotate on every use: the presented token is revoked and a
// new one is minted, so a stolen token dies the moment either party uses it.
type Service struct {
	store      tokenStores
	jwt        *JWT
	refreshTTL time.Duration
}

// NewService creates an auth Service. refreshTTL <= 0 selects the default.
func NewService(store tokenStores, jwt *JWT, refreshTTL time.Duration) *Service {
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &Service{store: store, jwt: jwt, refreshTTL: refreshTTL}
}

// Register creates a member account and issues its first token pair.
func (s *Service) Register(ctx context.Context, username, email, password string) (*hub.User, *TokenPair, error) {
	if username == "" || email == "" || password == "" {
		return nil, nil, fmt.Errorf("%w: username, email, and password are required", hub.ErrBadRequest)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, err
	}
	u := &hub.User{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         hub.RoleMember,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, nil, err
	}
	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// Login authenticates a username/password pair and issues a token pair.
func (s *Service) Login(ctx context.Context, username, password string) (*hub.User, *TokenPair, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, hub.ErrNotFound) {
			return nil, nil, hub.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, nil, hub.ErrInvalidCredentials
	}
	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// LoginGitHub signs in an OAuth user, creating a linked account on first sign-in.
func (s *Service) LoginGitHub(ctx context.Context, gh *GitHubUser) (*hub.User, *TokenPair, error) {
	u, err := s.store.GetUserByGitHubID(ctx, gh.ID)
	if errors.Is(err, hub.ErrNotFound) {
		u = &hub.User{
			ID:        uuid.Must(uuid.NewV7()).String(),
			Username:  gh.Login,
			Email:     gh.Email,
			Role:      hub.RoleMember,
			GitHubID:  gh.ID,
			CreatedAt: time.Now().UTC(),
		}
		if u.Email == "" {
			// GitHub hides the email unless the user made it public.
			u.Email = fmt.Sprintf("%s@users.noreply.github.com", gh.Login)
		}
		err = s.store.CreateUser(ctx, u)
		if errors.Is(err, hub.ErrConflict) {
			// Username taken by a local account; disambiguate with the GitHub ID.
			u.Username = fmt.Sprintf("%s-gh%d", gh.Login, gh.ID)
			err = s.store.CreateUser(ctx, u)
		}
	}
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.issuePair(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// Refresh exchanges a valid refresh token for a new pair, rotating the
// refresh token. Unknown, revoked, or expired tokens map to ErrUnauthorized.
func (s *Service) Refresh(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	rec, err := s.store.GetRefreshTokenByHash(ctx, hub.HashToken(rawRefresh))
	if err != nil {
		if errors.Is(err, hub.ErrNotFound) {
			return nil, hub.ErrUnauthorized
		}
		return nil, err
	}
	if rec.Revoked {
		// Reuse of a rotated token is a theft signal; kill the whole session family.
		if err := s.store.RevokeUserTokens(ctx, rec.UserID); err != nil {
			return nil, err
		}
		return nil, hub.ErrTokenRevoked
	}
	if time.Now().After(rec.ExpiresAt) {
		return nil, hub.ErrTokenExpired
	}

	u, err := s.store.GetUser(ctx, rec.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.store.RevokeRefreshToken(ctx, rec.ID); err != nil {
		return nil, err
	}
	return s.issuePair(ctx, u)
}

// Logout revokes the presented refresh token. Unknown tokens are a no-op so
// logout is idempotent.
func (s *Service) Logout(ctx context.Context, rawRefresh string) error {
	rec, err := s.store.GetRefreshTokenByHash(ctx, hub.HashToken(rawRefresh))
	if err != nil {
		if errors.Is(err, hub.ErrNotFound) {
			return nil
		}
		return err
	}
	if rec.Revoked {
		return nil
	}
	return s.store.RevokeRefreshToken(ctx, rec.ID)
}

// User returns the account behind an authenticated identity.
func (s *Service) User(ctx context.Context, id string) (*hub.User, error) {
	return s.store.GetUser(ctx, id)
}

// issuePair mints an access token and a fresh refresh token for the user.
func (s *Service) issuePair(ctx context.Context, u *hub.User) (*TokenPair, error) {
	access, err := s.jwt.Issue(u)
	if err != nil {
		return nil, err
	}

	raw := newRefreshToken()
	now := time.Now().UTC()
	rec := &hub.RefreshToken{
		ID:        uuid.Must(uuid.NewV7()).String(),
		UserID:    u.ID,
		TokenHash: hub.HashToken(raw),
		ExpiresAt: now.Add(s.refreshTTL),
		CreatedAt: now,
	}
	if err := s.store.CreateRefreshToken(ctx, rec); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresIn:    int(s.jwt.TTL().Seconds()),
	}, nil
}

// newRefreshToken returns a 256-bit random hex token.
func newRefreshToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand failure is unrecoverable
	}
	return hex.EncodeToString(buf)
}
