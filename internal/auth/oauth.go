package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"
)

const githubUserURL = "https://api.github.com/user"

// GitHubUser is the subset of the GitHub profile the hub needs.
type GitHubUser struct {
	ID    int64
	Login string
	Email string
}

// GitHubOAuth exchanges OAuth authorization codes for GitHub profiles.
type GitHubOAuth struct {
	cfg     *oauth2.Config
	userURL string // overridable for tests
}

// NewGitHubOAuth creates a GitHub OAuth exchanger.
func NewGitHubOAuth(clientID, clientSecret, redirectURL string) *GitHubOAuth {
	return &GitHubOAuth{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     githuboauth.Endpoint,
		},
		userURL: githubUserURL,
	}
}

// AuthURL returns the GitHub authorization page URL for the given state.
func (g *GitHubOAuth) AuthURL(state string) string {
	return g.cfg.AuthCodeURL(state)
}

// Exchange trades an authorization code for the authenticated GitHub profile.
func (g *GitHubOAuth) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github oauth: exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("github oauth: create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := g.cfg.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("github oauth: fetch user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github oauth: fetch user: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("github oauth: read user: %w", err)
	}

	r := gjson.ParseBytes(body)
	u := &GitHubUser{
		ID:    r.Get("id").Int(),
		Login: r.Get("login").String(),
		Email: r.Get("email").String(),
	}
	if u.ID == 0 || u.Login == "" {
		return nil, fmt.Errorf("github oauth: malformed user payload")
	}
	return u, nil
}
