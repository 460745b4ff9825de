// Package server implements the HTTP transport layer for Project Hub.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
	"github.com/Tejas3545/project-hub-sub001/internal/app"
	"github.com/Tejas3545/project-hub-sub001/internal/auth"
	"github.com/Tejas3545/project-hub-sub001/internal/ratelimit"
	"github.com/Tejas3545/project-hub-sub001/internal/telemetry"
)

// ReadyChecker reports whether the system is ready to serve traffic.
type ReadyChecker func(ctx context.Context) error

// OAuthExchanger trades GitHub authorization codes for profiles.
type OAuthExchanger interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// Deps holds all dependencies for the HTTP server.
type Deps struct {
	Auth        hub.Authenticator
	Accounts    *auth.Service
	OAuth       OAuthExchanger      // nil = GitHub sign-in disabled
	Catalog     *app.Catalog
	Library     *app.Library
	Reviewer    *app.Reviewer
	Stats       *app.Stats
	ReadyCheck  ReadyChecker        // nil = always ready (for tests)
	RateLimiter *ratelimit.Registry // nil = no rate limiting
	Metrics     *telemetry.Metrics  // nil = no metrics middleware
}

// New creates an http.Handler with all routes and middleware wired.
func New(deps Deps) http.Handler {
	s := &server{deps: deps}

	r := chi.NewRouter()

	// Global middleware
	r.Use(s.recovery)
	r.Use(s.requestID)
	r.Use(s.logging)
	if deps.Metrics != nil {
		r.Use(metricsMiddleware(deps.Metrics))
	}

	// System endpoints (no auth)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	// Account endpoints (no auth, but rate limited by IP)
	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/refresh", s.handleRefresh)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/github", s.handleGitHubStart)
		r.Post("/auth/github/callback", s.handleGitHubCallback)
	})

	// Public catalog reads
	r.Group(func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Get("/api/domains", s.handleListDomains)
		r.Get("/api/projects", s.handleListProjects)
		r.Get("/api/projects/{slug}", s.handleGetProject)
		r.Get("/api/achievements", s.handleAchievementCatalog)
		r.Get("/api/leaderboard", s.handleLeaderboard)
	})

	// Member API (auth required)
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(s.rateLimit)
		r.Get("/api/users/me", s.handleMe)
		r.With(s.requirePerm(hub.PermSubmitProject)).Post("/api/projects", s.handleSubmitProject)
		r.Route("/api/library", func(r chi.Router) {
			r.Use(s.requirePerm(hub.PermTrackProgress))
			r.Get("/bookmarks", s.handleListBookmarks)
			r.Put("/bookmarks/{projectID}", s.handleAddBookmark)
			r.Delete("/bookmarks/{projectID}", s.handleRemoveBookmark)
			r.Get("/progress", s.handleListProgress)
			r.Put("/progress/{projectID}", s.handleUpdateProgress)
			r.Get("/achievements", s.handleListAchievements)
		})
	})

	// Admin API
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)
		r.Use(s.rateLimit)
		r.With(s.requirePerm(hub.PermManageCatalog)).Post("/api/admin/domains", s.handleCreateDomain)
		r.Route("/api/admin/reviews", func(r chi.Router) {
			r.Use(s.requirePerm(hub.PermReviewQueue))
			r.Get("/", s.handleListReviews)
			r.Get("/{id}", s.handleGetReview)
			r.Post("/{id}/approve", s.handleApproveReview)
			r.Post("/{id}/reject", s.handleRejectReview)
			r.Post("/{id}/request-changes", s.handleRequestChanges)
		})
	})

	return r
}

type server struct {
	deps Deps
}
