// Package apiclient is the Go client for the Project Hub API. It mediates
// every outbound call: attaches bearer tokens, caches GET responses under a
// URL+token key, and transparently refreshes an expired access token before
// retrying a failed request exactly once.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Tejas3545/project-hub-sub001/internal/cache"
)

// DefaultCacheTTL bounds GET response staleness when no TTL is configured.
const DefaultCacheTTL = 60 * time.Second

// Config holds the dependencies for a Client. All fields except BaseURL are
// optional; zero values fall back to sane defaults.
type Config struct {
	BaseURL    string        // e.g. "http://localhost:5000/api"
	HTTPClient *http.Client  // nil = http.DefaultClient
	Cache      cache.Cache   // nil = no GET caching
	CacheTTL   time.Duration // 0 = DefaultCacheTTL
	Tokens     TokenStore    // nil = in-memory store
	// OnSessionExpired is invoked when the refresh path is exhausted (missing
	// refresh token or failed refresh). The owner is expected to clear session
	// state; the client has already cleared its stored tokens.
	OnSessionExpired func()
}

// Client issues HTTP calls against a single API base URL. All state is held
// on the instance so isolated clients can coexist (one per test, one per
// logged-in session).
type Client struct {
	baseURL   string
	http      *http.Client
	cache     cache.Cache
	ttl       time.Duration
	tokens    TokenStore
	onExpired func()
}

// New creates a Client from cfg.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:   cfg.BaseURL,
		http:      cfg.HTTPClient,
		cache:     cfg.Cache,
		ttl:       cfg.CacheTTL,
		tokens:    cfg.Tokens,
		onExpired: cfg.OnSessionExpired,
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if c.ttl <= 0 {
		c.ttl = DefaultCacheTTL
	}
	if c.tokens == nil {
		c.tokens = NewMemoryTokenStore()
	}
	return c
}

// Tokens returns the client's token store.
func (c *Client) Tokens() TokenStore { return c.tokens }

// Get issues a GET request and decodes the JSON response into out.
// Responses are cached under url+"::"+token for the configured TTL unless
// WithNoCache is given. A cache hit returns without a network round trip.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...Option) error {
	o := applyOptions(opts)
	u := c.baseURL + path + encodeQuery(o.query)
	key := u + "::" + c.resolveToken(o)

	if c.cache != nil && !o.noCache {
		if data, ok := c.cache.Get(ctx, key); ok {
			return decodeBody(data, out)
		}
	}

	data, err := c.do(ctx, http.MethodGet, u, nil, o)
	if err != nil {
		return err
	}
	if c.cache != nil && !o.noCache {
		c.cache.Set(ctx, key, data, c.ttl)
	}
	return decodeBody(data, out)
}

// Post issues a POST request with a JSON body and decodes the response into out.
// POST responses are never cached.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...Option) error {
	return c.write(ctx, http.MethodPost, path, body, out, opts)
}

// Put issues a PUT request with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...Option) error {
	return c.write(ctx, http.MethodPut, path, body, out, opts)
}

// Delete issues a DELETE request. A 2xx response with an empty body is
// treated as success.
func (c *Client) Delete(ctx context.Context, path string, opts ...Option) error {
	o := applyOptions(opts)
	_, err := c.do(ctx, http.MethodDelete, c.baseURL+path+encodeQuery(o.query), nil, o)
	return err
}

func (c *Client) write(ctx context.Context, method, path string, body, out any, opts []Option) error {
	o := applyOptions(opts)
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: marshal body: %w", err)
		}
	}
	data, err := c.do(ctx, method, c.baseURL+path+encodeQuery(o.query), payload, o)
	if err != nil {
		return err
	}
	return decodeBody(data, out)
}

// do runs one request through the auto-refresh wrapper: a first-attempt 401
// triggers a single token refresh and a single retry with the new token; the
// retried response is returned verbatim, success or failure. All other
// failures propagate immediately with no retry.
func (c *Client) do(ctx context.Context, method, url string, body []byte, o options) ([]byte, error) {
	status, data, err := c.send(ctx, method, url, body, c.resolveToken(o))
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		if newTok, ok := c.refresh(ctx); ok {
			status, data, err = c.send(ctx, method, url, body, newTok)
			if err != nil {
				return nil, err
			}
		}
	}

	if status < 200 || status > 299 {
		return nil, &APIError{Status: status, Message: extractMessage(status, data)}
	}
	return data, nil
}

// send performs a single HTTP round trip and drains the body.
func (c *Client) send(ctx context.Context, method, url string, body []byte, token string) (int, []byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return 0, nil, fmt.Errorf("apiclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("apiclient: %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("apiclient: read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// refresh exchanges the stored refresh token for a new access token.
// On any failure it clears both stored tokens and signals session expiry;
// the caller then surfaces the original 401 to its caller.
func (c *Client) refresh(ctx context.Context) (string, bool) {
	rt := c.tokens.RefreshToken()
	if rt == "" {
		c.tokens.Clear()
		c.sessionExpired()
		return "", false
	}

	payload, _ := json.Marshal(map[string]string{"refreshToken": rt})
	status, data, err := c.send(ctx, http.MethodPost, c.baseURL+"/auth/refresh", payload, "")
	if err != nil || status < 200 || status > 299 {
		c.tokens.Clear()
		c.sessionExpired()
		return "", false
	}

	var out struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(data, &out); err != nil || out.AccessToken == "" {
		c.tokens.Clear()
		c.sessionExpired()
		return "", false
	}

	if out.RefreshToken != "" {
		// Server rotated the refresh token; keep the new pair.
		c.tokens.SetTokens(out.AccessToken, out.RefreshToken)
	} else {
		c.tokens.SetAccessToken(out.AccessToken)
	}
	return out.AccessToken, true
}

func (c *Client) sessionExpired() {
	if c.onExpired != nil {
		c.onExpired()
	}
}

// resolveToken returns the per-request token override when set, else the
// ambient stored access token.
func (c *Client) resolveToken(o options) string {
	if o.token != "" {
		return o.token
	}
	return c.tokens.AccessToken()
}

// decodeBody unmarshals data into out. Empty bodies succeed without touching
// out so DELETE-style 200-with-no-body responses are not parse failures.
func decodeBody(data []byte, out any) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("apiclient: decode response: %w", err)
	}
	return nil
}

// encodeQuery serializes query params. Nil values are omitted. Values.Encode
// sorts by key, keeping cache keys stable across map iteration order.
func encodeQuery(q map[string]any) string {
	vals := url.Values{}
	for k, v := range q {
		if v == nil {
			continue
		}
		vals.Set(k, fmt.Sprint(v))
	}
	if len(vals) == 0 {
		return ""
	}
	return "?" + vals.Encode()
}
