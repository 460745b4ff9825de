package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
	"github.com/Tejas3545/project-hub-sub001/internal/storage/sqlite"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
server:
  addr: ":9090"
  read_timeout: 10s
database:
  dsn: ":memory:"
auth:
  jwt_secret: test-secret
  access_ttl: 5m
github:
  client_id: cid
  client_secret: csecret
domains:
  - name: Web
    description: Web projects
admins:
  - username: root
    email: root@example.com
    password: hunter2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q, want %q", cfg.Server.Addr, ":9090")
	}
	if cfg.Database.DSN != ":memory:" {
		t.Errorf("dsn = %q, want %q", cfg.Database.DSN, ":memory:")
	}
	if cfg.Auth.AccessTTL != 5*time.Minute {
		t.Errorf("access_ttl = %v, want 5m", cfg.Auth.AccessTTL)
	}
	// Defaults survive partial configs.
	if cfg.Auth.RefreshTTL != 30*24*time.Hour {
		t.Errorf("refresh_ttl = %v, want default 720h", cfg.Auth.RefreshTTL)
	}
	if cfg.RateLimit.PerMinute != 120 {
		t.Errorf("per_minute = %d, want default 120", cfg.RateLimit.PerMinute)
	}
	if !cfg.GitHub.OAuthEnabled() {
		t.Error("expected oauth enabled")
	}
	if len(cfg.Domains) != 1 || cfg.Domains[0].Name != "Web" {
		t.Errorf("domains = %+v", cfg.Domains)
	}
	if len(cfg.Admins) != 1 || cfg.Admins[0].Username != "root" {
		t.Errorf("admins = %+v", cfg.Admins)
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
database:
  dsn: ":memory:"
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for missing jwt_secret")
	}
}

func TestExpandEnv(t *testing.T) {
	// Cannot use t.Parallel() with t.Setenv
	t.Setenv("TEST_JWT_SECRET", "super-secret")

	path := writeConfig(t, `
auth:
  jwt_secret: ${TEST_JWT_SECRET}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Auth.JWTSecret != "super-secret" {
		t.Errorf("jwt_secret = %q, want expanded env value", cfg.Auth.JWTSecret)
	}

	// Unset vars are left verbatim.
	result := expandEnv([]byte("key: ${NOT_SET_ANYWHERE_42}"))
	if string(result) != "key: ${NOT_SET_ANYWHERE_42}" {
		t.Errorf("expandEnv unset = %q", result)
	}
}

func TestBootstrapIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "boot.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	cfg := &Config{
		Domains: []DomainEntry{{Name: "Web"}, {Name: "Systems"}},
		Admins:  []AdminEntry{{Username: "root", Email: "root@example.com", Password: "hunter2"}},
	}
	if err := Bootstrap(ctx, cfg, store); err != nil {
		t.Fatalf("first bootstrap: %v", err)
	}
	if err := Bootstrap(ctx, cfg, store); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}

	domains, err := store.ListDomains(ctx)
	if err != nil {
		t.Fatalf("list domains: %v", err)
	}
	if len(domains) != 2 {
		t.Errorf("domains = %d, want 2", len(domains))
	}

	u, err := store.GetUserByUsername(ctx, "root")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if u.Role != hub.RoleAdmin {
		t.Errorf("role = %q, want admin", u.Role)
	}
}
