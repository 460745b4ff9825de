// Package hub defines domain types and interfaces for Project Hub.
// This package has no project imports -- it is the dependency root.
package hub

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"
)

// --- Catalog ---

// Domain is a catalog category grouping related projects (e.g. "Web", "Systems").
type Domain struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Difficulty levels for projects.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Project sources.
const (
	SourceEditorial = "editorial"
	SourceGitHub    = "github"
)

// Project statuses.
const (
	ProjectPending   = "pending"
	ProjectPublished = "published"
	ProjectRejected  = "rejected"
)

// Project is a single catalog entry: a coding project students can work through.
// GitHub-sourced projects carry repo metadata refreshed by the sync worker.
type Project struct {
	ID          string    `json:"id"`
	DomainID    string    `json:"domain_id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Description string    `json:"description,omitempty"`
	Difficulty  string    `json:"difficulty"`
	Source      string    `json:"source"`
	RepoURL     string    `json:"repo_url,omitempty"`
	Stars       int       `json:"stars,omitempty"`
	Topics      []string  `json:"topics,omitempty"`
	Status      string    `json:"status"`
	SubmitterID string    `json:"submitter_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DifficultyPoints maps difficulty to the points awarded on completion.
var DifficultyPoints = map[string]int{
	DifficultyBeginner:     10,
	DifficultyIntermediate: 25,
	DifficultyAdvanced:     50,
}

// ProjectFilter narrows catalog listings. Zero values mean "no filter".
type ProjectFilter struct {
	DomainID   string
	Difficulty string
	Source     string
	Search     string // matches title and summary, case-insensitive
	Status     string
	Offset     int
	Limit      int
}

// --- Users ---

// User roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is a registered account. PasswordHash is empty for OAuth-only accounts.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	GitHubID     int64     `json:"github_id,omitempty"`
	Points       int       `json:"points"`
	CreatedAt    time.Time `json:"created_at"`
}

// --- Library: bookmarks and progress ---

// Bookmark marks a project saved to a user's library.
type Bookmark struct {
	UserID    string    `json:"user_id"`
	ProjectID string    `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Progress statuses.
const (
	ProgressStarted    = "started"
	ProgressInProgress = "in_progress"
	ProgressCompleted  = "completed"
)

// Progress tracks a user's work on one project.
type Progress struct {
	UserID      string     `json:"user_id"`
	ProjectID   string     `json:"project_id"`
	Status      string     `json:"status"`
	Percent     int        `json:"percent"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// --- Achievements ---

// Achievement is a gamification badge. Rows are seeded by migration; codes
// are stable identifiers the award logic keys on.
type Achievement struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

// Completion-count achievement codes, awarded by LibraryService.
const (
	AchFirstBlood = "first_blood" // 1 completed project
	AchPathfinder = "pathfinder"  // 5 completed projects
	AchCenturion  = "centurion"   // 25 completed projects
)

// UserAchievement records an award.
type UserAchievement struct {
	UserID        string    `json:"user_id"`
	AchievementID string    `json:"achievement_id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Points        int       `json:"points"`
	AwardedAt     time.Time `json:"awarded_at"`
}

// --- QA review queue ---

// Review states.
const (
	ReviewPending       = "pending"
	ReviewApproved      = "approved"
	ReviewRejected      = "rejected"
	ReviewChangesNeeded = "changes_requested"
)

// Review is a QA queue entry for a submitted project. Only pending and
// changes_requested reviews accept further transitions.
type Review struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	SubmitterID string     `json:"submitter_id"`
	State       string     `json:"state"`
	ReviewerID  string     `json:"reviewer_id,omitempty"`
	Note        string     `json:"note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// --- Auth ---

// RefreshToken is a stored refresh token record. Only the SHA-256 hash of
// the raw token is persisted.
type RefreshToken struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// HashToken returns the hex-encoded SHA-256 hash of a raw token.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}

// Identity is the authenticated caller context attached to request context.
type Identity struct {
	UserID   string     `json:"user_id"`
	Username string     `json:"username"`
	Role     string     `json:"role"`
	Perms    Permission `json:"-"`
}

// Permission is a bitmask representing authorization capabilities.
type Permission uint32

const (
	PermBrowse        Permission = 1 << iota // read the published catalog
	PermTrackProgress                        // bookmarks, progress, achievements
	PermSubmitProject                        // submit projects into the review queue
	PermReviewQueue                          // moderate the QA review queue
	PermManageCatalog                        // edit domains and published projects
)

// Can reports whether the identity has the given permission.
func (id *Identity) Can(p Permission) bool { return id.Perms&p == p }

// RolePermissions maps role names to their permission bitmasks.
var RolePermissions = map[string]Permission{
	RoleAdmin:  PermBrowse | PermTrackProgress | PermSubmitProject | PermReviewQueue | PermManageCatalog,
	RoleMember: PermBrowse | PermTrackProgress | PermSubmitProject,
}

// Authenticator validates request credentials and returns the caller identity.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) (*Identity, error)
}

// --- Stats ---

// LeaderboardEntry is one row of the points leaderboard.
type LeaderboardEntry struct {
	Rank      int    `json:"rank"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Points    int    `json:"points"`
	Completed int    `json:"completed"`
}

// --- Context keys ---

type contextKey int

const ctxKeyMeta contextKey = 0

// requestMeta bundles per-request values into a single context allocation.
// The Identity field is set later by the authenticate middleware via mutation
// of the same pointer, avoiding a second context.WithValue + Request.WithContext.
type requestMeta struct {
	RequestID string
	Identity  *Identity
}

func metaFromContext(ctx context.Context) *requestMeta {
	m, _ := ctx.Value(ctxKeyMeta).(*requestMeta)
	return m
}

// IdentityFromContext extracts the authenticated identity from context.
func IdentityFromContext(ctx context.Context) *Identity {
	if m := metaFromContext(ctx); m != nil {
		return m.Identity
	}
	return nil
}

// ContextWithIdentity stores the identity in the existing requestMeta if present,
// avoiding a new context.WithValue allocation. Falls back to creating new metadata
// if none exists (e.g., in tests).
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	if m := metaFromContext(ctx); m != nil {
		m.Identity = id
		return ctx
	}
	return context.WithValue(ctx, ctxKeyMeta, &requestMeta{Identity: id})
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if m := metaFromContext(ctx); m != nil {
		return m.RequestID
	}
	return ""
}

// ContextWithRequestID returns a context carrying the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyMeta, &requestMeta{RequestID: id})
}
