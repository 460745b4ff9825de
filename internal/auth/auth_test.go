package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
	"github.com/Tejas3545/project-hub-sub001/internal/storage/sqlite"
)

func newTestService(t *testing.T, accessTTL time.Duration) (*Service, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewService(store, NewJWT("test-secret", accessTTL), time.Hour), store
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "hunter2") {
		t.Error("expected correct password to match")
	}
	if CheckPassword(hash, "hunter3") {
		t.Error("expected wrong password to fail")
	}
	if CheckPassword("", "anything") {
		t.Error("expected empty hash to never match")
	}
}

func TestJWTIssueVerify(t *testing.T) {
	t.Parallel()

	j := NewJWT("secret", time.Minute)
	u := &hub.User{ID: "u1", Username: "ada", Role: hub.RoleAdmin}

	tok, err := j.Issue(u)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := j.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if id.UserID != "u1" || id.Username != "ada" || id.Role != hub.RoleAdmin {
		t.Errorf("identity = %+v", id)
	}
	if !id.Can(hub.PermReviewQueue) {
		t.Error("expected admin identity to carry review queue permission")
	}

	if _, err := NewJWT("other-secret", time.Minute).Verify(tok); !errors.Is(err, hub.ErrUnauthorized) {
		t.Errorf("wrong secret: err = %v, want ErrUnauthorized", err)
	}
}

func TestJWTExpired(t *testing.T) {
	t.Parallel()

	j := NewJWT("secret", -time.Minute)
	tok, err := j.Issue(&hub.User{ID: "u1", Username: "ada", Role: hub.RoleMember})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := j.Verify(tok); !errors.Is(err, hub.ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t, time.Minute)

	u, pair, err := svc.Register(ctx, "ada", "ada@example.com", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Role != hub.RoleMember {
		t.Errorf("role = %q, want member", u.Role)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if pair.ExpiresIn != 60 {
		t.Errorf("expiresIn = %d, want 60", pair.ExpiresIn)
	}

	if _, _, err := svc.Register(ctx, "", "x@example.com", "pw"); !errors.Is(err, hub.ErrBadRequest) {
		t.Errorf("empty username: err = %v, want ErrBadRequest", err)
	}
	if _, _, err := svc.Register(ctx, "ada", "dup@example.com", "pw"); !errors.Is(err, hub.ErrConflict) {
		t.Errorf("duplicate username: err = %v, want ErrConflict", err)
	}

	if _, _, err := svc.Login(ctx, "ada", "s3cret"); err != nil {
		t.Errorf("login: %v", err)
	}
	if _, _, err := svc.Login(ctx, "ada", "wrong"); !errors.Is(err, hub.ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "nobody", "pw"); !errors.Is(err, hub.ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t, time.Minute)

	_, pair, err := svc.Register(ctx, "ada", "ada@example.com", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Error("expected refresh token to rotate")
	}

	// Reusing the rotated token is treated as theft: the whole family dies.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, hub.ErrTokenRevoked) {
		t.Fatalf("reuse: err = %v, want ErrTokenRevoked", err)
	}
	if _, err := svc.Refresh(ctx, next.RefreshToken); !errors.Is(err, hub.ErrTokenRevoked) {
		t.Errorf("post-reuse: err = %v, want ErrTokenRevoked", err)
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, time.Minute)

	if _, err := svc.Refresh(context.Background(), "not-a-token"); !errors.Is(err, hub.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t, time.Minute)

	_, pair, err := svc.Register(ctx, "ada", "ada@example.com", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Errorf("second logout: %v", err)
	}
	if err := svc.Logout(ctx, "unknown"); err != nil {
		t.Errorf("unknown token logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, hub.ErrTokenRevoked) {
		t.Errorf("refresh after logout: err = %v, want ErrTokenRevoked", err)
	}
}

func TestLoginGitHubCreatesAccount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t, time.Minute)

	u, _, err := svc.LoginGitHub(ctx, &GitHubUser{ID: 42, Login: "octocat"})
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	if u.Email != "octocat@users.noreply.github.com" {
		t.Errorf("email = %q, want noreply fallback", u.Email)
	}

	again, _, err := svc.LoginGitHub(ctx, &GitHubUser{ID: 42, Login: "octocat"})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if again.ID != u.ID {
		t.Error("expected second login to reuse the account")
	}
}

func TestLoginGitHubUsernameCollision(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newTestService(t, time.Minute)

	if _, _, err := svc.Register(ctx, "octocat", "local@example.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}
	u, _, err := svc.LoginGitHub(ctx, &GitHubUser{ID: 42, Login: "octocat", Email: "oc@example.com"})
	if err != nil {
		t.Fatalf("github login: %v", err)
	}
	if u.Username != "octocat-gh42" {
		t.Errorf("username = %q, want octocat-gh42", u.Username)
	}
}

func TestBearerAuth(t *testing.T) {
	t.Parallel()

	j := NewJWT("secret", time.Minute)
	ba, err := NewBearerAuth(j)
	if err != nil {
		t.Fatalf("new bearer auth: %v", err)
	}
	tok, err := j.Issue(&hub.User{ID: "u1", Username: "ada", Role: hub.RoleMember})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	id, err := ba.Authenticate(context.Background(), req)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if id.UserID != "u1" {
		t.Errorf("userID = %q, want u1", id.UserID)
	}

	// Second call hits the identity cache.
	if _, err := ba.Authenticate(context.Background(), req); err != nil {
		t.Errorf("cached authenticate: %v", err)
	}

	for name, header := range map[string]string{
		"missing": "",
		"basic":   "Basic dXNlcjpwdw==",
		"garbage": "Bearer not.a.jwt",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		if _, err := ba.Authenticate(context.Background(), req); !errors.Is(err, hub.ErrUnauthorized) {
			t.Errorf("%s: err = %v, want ErrUnauthorized", name, err)
		}
	}
}
