package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/dnscache"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
	"github.com/Tejas3545/project-hub-sub001/internal/apiclient"
	"github.com/Tejas3545/project-hub-sub001/internal/cache"
)

func newClient(baseURL, sessionPath string) (*apiclient.Client, error) {
	if err := os.MkdirAll(filepath.Dir(sessionPath), 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	mem, err := cache.NewMemory(1024, apiclient.DefaultCacheTTL)
	if err != nil {
		return nil, err
	}
	return apiclient.New(apiclient.Config{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Transport: apiclient.NewTransport(&dnscache.Resolver{}, false),
			Timeout:   30 * time.Second,
		},
		Cache:  mem,
		Tokens: apiclient.NewFileTokenStore(sessionPath),
		OnSessionExpired: func() {
			fmt.Fprintln(os.Stderr, "session expired, run `hubctl login` again")
		},
	}), nil
}

func dispatch(baseURL, sessionPath, cmd string, args []string) error {
	c, err := newClient(baseURL, sessionPath)
	if err != nil {
		return err
	}
	ctx := context.Background()

	switch cmd {
	case "register":
		return register(ctx, c, args)
	case "login":
		return login(ctx, c, args)
	case "logout":
		return logout(ctx, c)
	case "domains":
		return domains(ctx, c)
	case "projects":
		return projects(ctx, c, args)
	case "show":
		return show(ctx, c, args)
	case "submit":
		return submit(ctx, c, args)
	case "bookmark":
		return bookmark(ctx, c, args)
	case "progress":
		return progress(ctx, c, args)
	case "achievements":
		return achievements(ctx, c)
	case "leaderboard":
		return leaderboard(ctx, c)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// session is the register/login response body.
type session struct {
	User   *hub.User `json:"user"`
	Tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	} `json:"tokens"`
}

func password() (string, error) {
	if pw := os.Getenv("HUB_PASSWORD"); pw != "" {
		return pw, nil
	}
	return "", fmt.Errorf("set HUB_PASSWORD")
}

func register(ctx context.Context, c *apiclient.Client, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: register <username> <email>")
	}
	pw, err := password()
	if err != nil {
		return err
	}
	var s session
	if err := c.Post(ctx, "/auth/register", map[string]string{
		"username": args[0], "email": args[1], "password": pw,
	}, &s); err != nil {
		return err
	}
	c.Tokens().SetTokens(s.Tokens.AccessToken, s.Tokens.RefreshToken)
	fmt.Printf("registered %s\n", s.User.Username)
	return nil
}

func login(ctx context.Context, c *apiclient.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: login <username>")
	}
	pw, err := password()
	if err != nil {
		return err
	}
	var s session
	if err := c.Post(ctx, "/auth/login", map[string]string{
		"username": args[0], "password": pw,
	}, &s); err != nil {
		return err
	}
	c.Tokens().SetTokens(s.Tokens.AccessToken, s.Tokens.RefreshToken)
	fmt.Printf("logged in as %s (%s)\n", s.User.Username, s.User.Role)
	return nil
}

func logout(ctx context.Context, c *apiclient.Client) error {
	rt := c.Tokens().RefreshToken()
	if rt != "" {
		if err := c.Post(ctx, "/auth/logout", map[string]string{"refreshToken": rt}, nil); err != nil {
			return err
		}
	}
	c.Tokens().Clear()
	fmt.Println("logged out")
	return nil
}

func domains(ctx context.Context, c *apiclient.Client) error {
	var resp struct {
		Domains []*hub.Domain `json:"domains"`
	}
	if err := c.Get(ctx, "/api/domains", &resp); err != nil {
		return err
	}
	for _, d := range resp.Domains {
		fmt.Printf("%-20s %s\n", d.Slug, d.Name)
	}
	return nil
}

func projects(ctx context.Context, c *apiclient.Client, args []string) error {
	opts := []apiclient.Option{}
	if len(args) > 0 {
		opts = append(opts, apiclient.WithQuery(map[string]any{"q": args[0]}))
	}
	var resp struct {
		Projects []*hub.Project `json:"projects"`
		Total    int            `json:"total"`
	}
	if err := c.Get(ctx, "/api/projects", &resp, opts...); err != nil {
		return err
	}
	for _, p := range resp.Projects {
		fmt.Printf("%-30s %-12s %5d★  %s\n", p.Slug, p.Difficulty, p.Stars, p.Title)
	}
	fmt.Printf("%d total\n", resp.Total)
	return nil
}

func show(ctx context.Context, c *apiclient.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: show <slug>")
	}
	var p hub.Project
	if err := c.Get(ctx, "/api/projects/"+args[0], &p); err != nil {
		return err
	}
	fmt.Printf("%s (%s, %s)\n", p.Title, p.Difficulty, p.Source)
	if p.Summary != "" {
		fmt.Println(p.Summary)
	}
	if p.RepoURL != "" {
		fmt.Printf("repo: %s (%d stars)\n", p.RepoURL, p.Stars)
	}
	return nil
}

func submit(ctx context.Context, c *apiclient.Client, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: submit <domain> <title> <difficulty> [repo-url]")
	}
	body := map[string]string{
		"domain": args[0], "title": args[1], "difficulty": args[2],
	}
	if len(args) > 3 {
		body["repo_url"] = args[3]
	}
	var p hub.Project
	if err := c.Post(ctx, "/api/projects", body, &p); err != nil {
		return err
	}
	fmt.Printf("submitted %s (status %s)\n", p.Slug, p.Status)
	return nil
}

func bookmark(ctx context.Context, c *apiclient.Client, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: bookmark <project-id>")
	}
	if err := c.Put(ctx, "/api/library/bookmarks/"+args[0], nil, nil); err != nil {
		return err
	}
	fmt.Println("bookmarked")
	return nil
}

func progress(ctx context.Context, c *apiclient.Client, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: progress <project-id> <status> <percent>")
	}
	pct, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("percent must be a number: %w", err)
	}
	var update struct {
		Progress *hub.Progress          `json:"progress"`
		Awarded  []*hub.UserAchievement `json:"awarded"`
	}
	if err := c.Put(ctx, "/api/library/progress/"+args[0], map[string]any{
		"status": args[1], "percent": pct,
	}, &update); err != nil {
		return err
	}
	fmt.Printf("%s: %d%%\n", update.Progress.Status, update.Progress.Percent)
	for _, a := range update.Awarded {
		fmt.Printf("achievement unlocked: %s (+%d points)\n", a.Name, a.Points)
	}
	return nil
}

func achievements(ctx context.Context, c *apiclient.Client) error {
	var resp struct {
		Achievements []*hub.UserAchievement `json:"achievements"`
	}
	// Always fresh: a stale list right after completing a project reads
	// like a lost award.
	if err := c.Get(ctx, "/api/library/achievements", &resp, apiclient.WithNoCache()); err != nil {
		return err
	}
	for _, a := range resp.Achievements {
		fmt.Printf("%-15s %-30s +%d\n", a.Code, a.Name, a.Points)
	}
	return nil
}

func leaderboard(ctx context.Context, c *apiclient.Client) error {
	var resp struct {
		Leaderboard []*hub.LeaderboardEntry `json:"leaderboard"`
	}
	if err := c.Get(ctx, "/api/leaderboard", &resp); err != nil {
		return err
	}
	for _, e := range resp.Leaderboard {
		fmt.Printf("%3d. %-20s %6d pts  %d completed\n", e.Rank, e.Username, e.Points, e.Completed)
	}
	return nil
}
