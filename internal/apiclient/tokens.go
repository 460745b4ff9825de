package apiclient

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"
)

// TokenStore holds the credential pair: a short-lived access token sent on
// every request and a longer-lived refresh token used only to mint new
// access tokens. Implementations must be safe for concurrent use.
type TokenStore interface {
	AccessToken() string
	RefreshToken() string
	// SetTokens replaces both tokens (login, registration, OAuth exchange,
	// or a refresh that rotated the pair).
	SetTokens(access, refresh string)
	// SetAccessToken replaces only the access token (non-rotating refresh).
	SetAccessToken(access string)
	// Clear deletes both tokens.
	Clear()
}

// MemoryTokenStore keeps the pair in process memory.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	access  string
	refresh string
}

// NewMemoryTokenStore returns an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access
}

func (s *MemoryTokenStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refresh
}

func (s *MemoryTokenStore) SetTokens(access, refresh string) {
	s.mu.Lock()
	s.access, s.refresh = access, refresh
	s.mu.Unlock()
}

func (s *MemoryTokenStore) SetAccessToken(access string) {
	s.mu.Lock()
	s.access = access
	s.mu.Unlock()
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	s.access, s.refresh = "", ""
	s.mu.Unlock()
}

// FileTokenStore persists the pair as a JSON file so CLI sessions survive
// process restarts. Persistence failures are logged, not returned: losing
// the saved session forces a re-login but never breaks the running call.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
	pair tokenPair
}

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// NewFileTokenStore loads any existing pair from path. A missing or
// malformed file starts an empty session.
func NewFileTokenStore(path string) *FileTokenStore {
	s := &FileTokenStore{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	if err := json.Unmarshal(data, &s.pair); err != nil {
		slog.Warn("ignoring malformed token file", "path", path, "error", err)
		s.pair = tokenPair{}
	}
	return s
}

func (s *FileTokenStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair.AccessToken
}

func (s *FileTokenStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair.RefreshToken
}

func (s *FileTokenStore) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = tokenPair{AccessToken: access, RefreshToken: refresh}
	s.save()
}

func (s *FileTokenStore) SetAccessToken(access string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair.AccessToken = access
	s.save()
}

func (s *FileTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = tokenPair{}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove token file", "path", s.path, "error", err)
	}
}

// save writes the pair with owner-only permissions. Caller holds s.mu.
func (s *FileTokenStore) save() {
	data, _ := json.Marshal(s.pair)
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		slog.Warn("failed to persist tokens", "path", s.path, "error", err)
	}
}
