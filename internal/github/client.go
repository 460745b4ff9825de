// Package github fetches repository metadata from the GitHub REST API for
// github-sourced catalog projects. All calls run through a circuit breaker
// so a throttling or unreachable upstream fails fast.
package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const defaultBaseURL = "https://api.github.com"

// RepoMeta is the slice of repository metadata the catalog tracks.
type RepoMeta struct {
	FullName    string
	Description string
	Stars       int
	Topics      []string
	Archived    bool
}

// StatusError is a non-2xx response from the GitHub API.
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github: %s returned status %d", e.URL, e.Status)
}

// HTTPStatus returns the upstream status code.
func (e *StatusError) HTTPStatus() int { return e.Status }

// Client fetches repository metadata.
type Client struct {
	baseURL string
	token   string // optional PAT; raises the rate limit from 60 to 5000 req/h
	http    *http.Client
	breaker *Breaker
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used by tests and GHE deployments.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithToken sets a personal access token for authenticated requests.
func WithToken(tok string) Option {
	return func(c *Client) { c.token = tok }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithBreaker overrides the circuit breaker.
func WithBreaker(b *Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// New creates a GitHub API client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		breaker: NewBreaker(DefaultBreakerConfig()),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Breaker exposes the client's circuit breaker for health reporting.
func (c *Client) Breaker() *Breaker { return c.breaker }

// ParseRepoURL extracts "owner/repo" from a GitHub repository URL.
func ParseRepoURL(repoURL string) (string, error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", fmt.Errorf("github: parse repo url %q: %w", repoURL, err)
	}
	if u.Host != "github.com" && u.Host != "www.github.com" {
		return "", fmt.Errorf("github: %q is not a github.com url", repoURL)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("github: %q has no owner/repo path", repoURL)
	}
	return parts[0] + "/" + strings.TrimSuffix(parts[1], ".git"), nil
}

// FetchRepo fetches metadata for a repository given its web URL.
func (c *Client) FetchRepo(ctx context.Context, repoURL string) (*RepoMeta, error) {
	fullName, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	if !c.breaker.Allow() {
		return nil, ErrUpstreamDown
	}
	body, err := c.get(ctx, c.baseURL+"/repos/"+fullName)
	if err != nil {
		c.breaker.RecordError(classifyError(err))
		return nil, err
	}
	c.breaker.RecordSuccess()

	r := gjson.ParseBytes(body)
	meta := &RepoMeta{
		FullName:    r.Get("full_name").String(),
		Description: r.Get("description").String(),
		Stars:       int(r.Get("stargazers_count").Int()),
		Archived:    r.Get("archived").Bool(),
	}
	for _, t := range r.Get("topics").Array() {
		meta.Topics = append(meta.Topics, t.String())
	}
	if meta.FullName == "" {
		return nil, fmt.Errorf("github: malformed repo payload for %s", fullName)
	}
	return meta, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("github: create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: request %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Status: resp.StatusCode, URL: u}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("github: read response: %w", err)
	}
	return body, nil
}
