// Package storage defines persistence interfaces for Project Hub.
package storage

import (
	"context"
	"time"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
)

// DomainStore manages catalog categories.
type DomainStore interface {
	CreateDomain(ctx context.Context, d *hub.Domain) error
	GetDomainBySlug(ctx context.Context, slug string) (*hub.Domain, error)
	ListDomains(ctx context.Context) ([]*hub.Domain, error)
}

// ProjectStore manages catalog projects.
type ProjectStore interface {
	CreateProject(ctx context.Context, p *hub.Project) error
	GetProject(ctx context.Context, id string) (*hub.Project, error)
	GetProjectBySlug(ctx context.Context, slug string) (*hub.Project, error)
	ListProjects(ctx context.Context, f hub.ProjectFilter) ([]*hub.Project, error)
	CountProjects(ctx context.Context, f hub.ProjectFilter) (int, error)
	UpdateProjectStatus(ctx context.Context, id, status string) error
	// UpdateRepoMeta refreshes GitHub-sourced metadata (stars, topics).
	UpdateRepoMeta(ctx context.Context, id string, stars int, topics []string) error
	// ListSyncableProjects returns published github-sourced projects.
	ListSyncableProjects(ctx context.Context) ([]*hub.Project, error)
}

// UserStore manages user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *hub.User) error
	GetUser(ctx context.Context, id string) (*hub.User, error)
	GetUserByUsername(ctx context.Context, username string) (*hub.User, error)
	GetUserByGitHubID(ctx context.Context, githubID int64) (*hub.User, error)
	AddUserPoints(ctx context.Context, id string, delta int) error
}

// LibraryStore manages bookmarks and per-project progress.
type LibraryStore interface {
	AddBookmark(ctx context.Context, b *hub.Bookmark) error
	RemoveBookmark(ctx context.Context, userID, projectID string) error
	ListBookmarks(ctx context.Context, userID string) ([]*hub.Bookmark, error)
	UpsertProgress(ctx context.Context, p *hub.Progress) error
	GetProgress(ctx context.Context, userID, projectID string) (*hub.Progress, error)
	ListProgress(ctx context.Context, userID string) ([]*hub.Progress, error)
	CountCompleted(ctx context.Context, userID string) (int, error)
}

// AchievementStore manages achievements and awards.
type AchievementStore interface {
	ListAchievements(ctx context.Context) ([]*hub.Achievement, error)
	GetAchievementByCode(ctx context.Context, code string) (*hub.Achievement, error)
	// AwardAchievement records an award. Returns false when the user already
	// holds the achievement.
	AwardAchievement(ctx context.Context, userID, achievementID string, at time.Time) (bool, error)
	ListUserAchievements(ctx context.Context, userID string) ([]*hub.UserAchievement, error)
}

// ReviewStore manages the QA review queue.
type ReviewStore interface {
	CreateReview(ctx context.Context, r *hub.Review) error
	GetReview(ctx context.Context, id string) (*hub.Review, error)
	ListReviews(ctx context.Context, state string, offset, limit int) ([]*hub.Review, error)
	CountReviews(ctx context.Context, state string) (int, error)
	UpdateReview(ctx context.Context, r *hub.Review) error
}

// AuthTokenStore manages refresh token persistence.
type AuthTokenStore interface {
	CreateRefreshToken(ctx context.Context, t *hub.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (*hub.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string) error
	RevokeUserTokens(ctx context.Context, userID string) error
	// DeleteDeadTokens removes revoked tokens and tokens expired before cutoff,
	// returning the number deleted.
	DeleteDeadTokens(ctx context.Context, cutoff time.Time) (int, error)
}

// StatsStore serves analytics queries.
type StatsStore interface {
	Leaderboard(ctx context.Context, limit int) ([]*hub.LeaderboardEntry, error)
	// RecomputePoints rewrites every user's points from completed progress and
	// awarded achievements, returning the number of users whose total changed.
	RecomputePoints(ctx context.Context) (int, error)
}

// Store combines all storage interfaces.
type Store interface {
	DomainStore
	ProjectStore
	UserStore
	LibraryStore
	AchievementStore
	ReviewStore
	AuthTokenStore
	StatsStore
	Ping(ctx context.Context) error
	Close() error
}
