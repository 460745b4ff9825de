package apiclient

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryTokenStore(t *testing.T) {
	t.Parallel()
	s := NewMemoryTokenStore()

	s.SetTokens("a1", "r1")
	if s.AccessToken() != "a1" || s.RefreshToken() != "r1" {
		t.Errorf("got (%q, %q), want (a1, r1)", s.AccessToken(), s.RefreshToken())
	}

	s.SetAccessToken("a2")
	if s.AccessToken() != "a2" || s.RefreshToken() != "r1" {
		t.Error("SetAccessToken must not touch the refresh token")
	}

	s.Clear()
	if s.AccessToken() != "" || s.RefreshToken() != "" {
		t.Error("Clear should delete both tokens")
	}
}

func TestFileTokenStore_Persistence(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tokens.json")

	s := NewFileTokenStore(path)
	s.SetTokens("access-1", "refresh-1")

	// A fresh store at the same path sees the persisted pair.
	s2 := NewFileTokenStore(path)
	if s2.AccessToken() != "access-1" || s2.RefreshToken() != "refresh-1" {
		t.Errorf("reloaded pair = (%q, %q)", s2.AccessToken(), s2.RefreshToken())
	}

	s2.Clear()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Clear should remove the token file")
	}
}

func TestFileTokenStore_MalformedFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "tokens.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewFileTokenStore(path)
	if s.AccessToken() != "" || s.RefreshToken() != "" {
		t.Error("malformed file should start an empty session")
	}
}
