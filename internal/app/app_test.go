package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
	"github.com/Tejas3545/project-hub-sub001/internal/storage/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUser(t *testing.T, store *sqlite.Store, username, role string) *hub.User {
	t.Helper()
	u := &hub.User{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Username:  username,
		Email:     username + "@example.com",
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func identityFor(u *hub.User) *hub.Identity {
	return &hub.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
		Perms:    hub.RolePermissions[u.Role],
	}
}

func seedDomain(t *testing.T, c *Catalog, name string) *hub.Domain {
	t.Helper()
	d, err := c.CreateDomain(context.Background(), name, "")
	if err != nil {
		t.Fatalf("seed domain: %v", err)
	}
	return d
}

// seedPublished submits a project as an admin so it publishes immediately.
func seedPublished(t *testing.T, c *Catalog, admin *hub.Identity, domain, title, difficulty string) *hub.Project {
	t.Helper()
	p, err := c.SubmitProject(context.Background(), admin, SubmitProjectOpts{
		DomainSlug: domain,
		Title:      title,
		Difficulty: difficulty,
	})
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}
	return p
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Build a URL Shortener":  "build-a-url-shortener",
		"  Spaces  Everywhere  ": "spaces-everywhere",
		"C++ & Rust!":            "c-rust",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSubmitProjectMemberQueuesReview(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	catalog := NewCatalog(store)

	member := identityFor(seedUser(t, store, "ada", hub.RoleMember))
	seedDomain(t, catalog, "Web")

	p, err := catalog.SubmitProject(ctx, member, SubmitProjectOpts{
		DomainSlug: "web",
		Title:      "Build a Blog",
		Difficulty: hub.DifficultyBeginner,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if p.Status != hub.ProjectPending {
		t.Errorf("status = %q, want pending", p.Status)
	}
	if p.Source != hub.SourceEditorial {
		t.Errorf("source = %q, want editorial", p.Source)
	}

	reviews, err := store.ListReviews(ctx, hub.ReviewPending, 0, 10)
	if err != nil {
		t.Fatalf("list reviews: %v", err)
	}
	if len(reviews) != 1 || reviews[0].ProjectID != p.ID {
		t.Fatalf("reviews = %+v, want one for project", reviews)
	}

	// Pending projects are hidden from other members but visible to the submitter.
	if _, err := catalog.GetProject(ctx, p.Slug, nil); !errors.Is(err, hub.ErrNotFound) {
		t.Errorf("anonymous get: err = %v, want ErrNotFound", err)
	}
	if _, err := catalog.GetProject(ctx, p.Slug, member); err != nil {
		t.Errorf("submitter get: %v", err)
	}
}

func TestSubmitProjectAdminPublishes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	catalog := NewCatalog(store)

	admin := identityFor(seedUser(t, store, "root", hub.RoleAdmin))
	seedDomain(t, catalog, "Web")

	p, err := catalog.SubmitProject(ctx, admin, SubmitProjectOpts{
		DomainSlug: "web",
		Title:      "Build a CDN",
		Difficulty: hub.DifficultyAdvanced,
		RepoURL:    "https://github.com/example/cdn",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if p.Status != hub.ProjectPublished {
		t.Errorf("status = %q, want published", p.Status)
	}
	if p.Source != hub.SourceGitHub {
		t.Errorf("source = %q, want github", p.Source)
	}
	if n, _ := store.CountReviews(ctx, ""); n != 0 {
		t.Errorf("reviews = %d, want 0 for admin submission", n)
	}
}

func TestSubmitProjectValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	catalog := NewCatalog(store)
	member := identityFor(seedUser(t, store, "ada", hub.RoleMember))
	seedDomain(t, catalog, "Web")

	if _, err := catalog.SubmitProject(ctx, member, SubmitProjectOpts{
		DomainSlug: "web", Difficulty: hub.DifficultyBeginner,
	}); !errors.Is(err, hub.ErrBadRequest) {
		t.Errorf("missing title: err = %v, want ErrBadRequest", err)
	}
	if _, err := catalog.SubmitProject(ctx, member, SubmitProjectOpts{
		DomainSlug: "web", Title: "X", Difficulty: "impossible",
	}); !errors.Is(err, hub.ErrBadRequest) {
		t.Errorf("bad difficulty: err = %v, want ErrBadRequest", err)
	}
	if _, err := catalog.SubmitProject(ctx, member, SubmitProjectOpts{
		DomainSlug: "nope", Title: "X", Difficulty: hub.DifficultyBeginner,
	}); !errors.Is(err, hub.ErrNotFound) {
		t.Errorf("unknown domain: err = %v, want ErrNotFound", err)
	}
}

func TestListProjectsPaging(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	catalog := NewCatalog(store)
	admin := identityFor(seedUser(t, store, "root", hub.RoleAdmin))
	seedDomain(t, catalog, "Web")

	for _, title := range []string{"One", "Two", "Three"} {
		seedPublished(t, catalog, admin, "web", title, hub.DifficultyBeginner)
	}

	page, err := catalog.ListProjects(ctx, hub.ProjectFilter{Limit: 2}, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Projects) != 2 || page.Total != 3 {
		t.Errorf("got %d of %d, want 2 of 3", len(page.Projects), page.Total)
	}

	page, err = catalog.ListProjects(ctx, hub.ProjectFilter{Offset: 2, Limit: 2}, false)
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page.Projects) != 1 {
		t.Errorf("page 2 len = %d, want 1", len(page.Projects))
	}
}

func TestBookmarks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	catalog := NewCatalog(store)
	lib := NewLibrary(store, discardLogger())

	admin := identityFor(seedUser(t, store, "root", hub.RoleAdmin))
	ada := seedUser(t, store, "ada", hub.RoleMember)
	seedDomain(t, catalog, "Web")
	p := seedPublished(t, catalog, admin, "web", "Build a Blog", hub.DifficultyBeginner)

	if err := lib.AddBookmark(ctx, ada.ID, p.ID); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := lib.AddBookmark(ctx, ada.ID, p.ID); err != nil {
		t.Errorf("duplicate add should be a no-op: %v", err)
	}
	marks, err := lib.ListBookmarks(ctx, ada.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(marks) != 1 {
		t.Fatalf("len = %d, want 1", len(marks))
	}
	if err := lib.RemoveBookmark(ctx, ada.ID, p.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := lib.AddBookmark(ctx, ada.ID, "missing"); !errors.Is(err, hub.ErrNotFound) {
		t.Errorf("bookmark missing project: err = %v, want ErrNotFound", err)
	}
}

func TestUpdateProgressAwardsPointsOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	catalog := NewCatalog(store)
	lib := NewLibrary(store, discardLogger())

	admin := identityFor(seedUser(t, store, "root", hub.RoleAdmin))
	ada := seedUser(t, store, "ada", hub.RoleMember)
	seedDomain(t, catalog, "Web")
	p := seedPublished(t, catalog, admin, "web", "Build a Blog", hub.DifficultyIntermediate)

	up, err := lib.UpdateProgress(ctx, ada.ID, p.ID, hub.ProgressStarted, 10)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if up.Progress.Percent != 10 || len(up.Awarded) != 0 {
		t.Errorf("start update = %+v", up)
	}

	up, err = lib.UpdateProgress(ctx, ada.ID, p.ID, hub.ProgressCompleted, 90)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if up.Progress.Percent != 100 {
		t.Errorf("completed percent = %d, want 100", up.Progress.Percent)
	}
	if len(up.Awarded) != 1 || up.Awarded[0].Code != hub.AchFirstBlood {
		t.Fatalf("awarded = %+v, want first_blood", up.Awarded)
	}

	u, err := store.GetUser(ctx, ada.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	// 25 for intermediate completion + 10 for first_blood.
	if u.Points != 35 {
		t.Errorf("points = %d, want 35", u.Points)
	}

	// Re-completing must not double-award.
	up, err = lib.UpdateProgress(ctx, ada.ID, p.ID, hub.ProgressCompleted, 100)
	if err != nil {
		t.Fatalf("re-complete: %v", err)
	}
	if len(up.Awarded) != 0 {
		t.Errorf("re-complete awarded = %+v, want none", up.Awarded)
	}
	u, _ = store.GetUser(ctx, ada.ID)
	if u.Points != 35 {
		t.Errorf("points after re-complete = %d, want 35", u.Points)
	}
}

func TestCompletionMilestones(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	catalog := NewCatalog(store)
	lib := NewLibrary(store, discardLogger())

	admin := identityFor(seedUser(t, store, "root", hub.RoleAdmin))
	ada := seedUser(t, store, "ada", hub.RoleMember)
	seedDomain(t, catalog, "Web")

	titles := []string{"P1", "P2", "P3", "P4", "P5"}
	var awards []string
	for _, title := range titles {
		p := seedPublished(t, catalog, admin, "web", title, hub.DifficultyBeginner)
		up, err := lib.UpdateProgress(ctx, ada.ID, p.ID, hub.ProgressCompleted, 100)
		if err != nil {
			t.Fatalf("complete %s: %v", title, err)
		}
		for _, a := range up.Awarded {
			awards = append(awards, a.Code)
		}
	}
	if len(awards) != 2 || awards[0] != hub.AchFirstBlood || awards[1] != hub.AchPathfinder {
		t.Errorf("awards = %v, want [first_blood pathfinder]", awards)
	}
}

func TestUpdateProgressValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	lib := NewLibrary(store, discardLogger())
	ada := seedUser(t, store, "ada", hub.RoleMember)

	if _, err := lib.UpdateProgress(ctx, ada.ID, "p1", "paused", 10); !errors.Is(err, hub.ErrBadRequest) {
		t.Errorf("bad status: err = %v, want ErrBadRequest", err)
	}
	if _, err := lib.UpdateProgress(ctx, ada.ID, "missing", hub.ProgressStarted, 0); !errors.Is(err, hub.ErrNotFound) {
		t.Errorf("missing project: err = %v, want ErrNotFound", err)
	}
}

func TestReviewLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	catalog := NewCatalog(store)
	reviewer := NewReviewer(store, discardLogger())

	member := identityFor(seedUser(t, store, "ada", hub.RoleMember))
	admin := identityFor(seedUser(t, store, "root", hub.RoleAdmin))
	seedDomain(t, catalog, "Web")

	p, err := catalog.SubmitProject(ctx, member, SubmitProjectOpts{
		DomainSlug: "web", Title: "Build a Blog", Difficulty: hub.DifficultyBeginner,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	page, err := reviewer.List(ctx, hub.ReviewPending, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("total = %d, want 1", page.Total)
	}
	rev := page.Reviews[0]

	// Changes requested keeps the review open.
	if _, err := reviewer.RequestChanges(ctx, rev.ID, admin, ""); !errors.Is(err, hub.ErrBadRequest) {
		t.Errorf("empty note: err = %v, want ErrBadRequest", err)
	}
	r, err := reviewer.RequestChanges(ctx, rev.ID, admin, "needs a summary")
	if err != nil {
		t.Fatalf("request changes: %v", err)
	}
	if r.State != hub.ReviewChangesNeeded || r.ResolvedAt != nil {
		t.Errorf("review = %+v, want open changes_requested", r)
	}

	// Approval publishes the project and closes the review.
	r, err = reviewer.Approve(ctx, rev.ID, admin, "looks good")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if r.State != hub.ReviewApproved || r.ResolvedAt == nil {
		t.Errorf("review = %+v, want resolved approved", r)
	}
	got, err := store.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if got.Status != hub.ProjectPublished {
		t.Errorf("project status = %q, want published", got.Status)
	}

	// Terminal states reject further transitions.
	if _, err := reviewer.Reject(ctx, rev.ID, admin, "nope"); !errors.Is(err, hub.ErrReviewClosed) {
		t.Errorf("reject closed: err = %v, want ErrReviewClosed", err)
	}
}

func TestReviewReject(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	catalog := NewCatalog(store)
	reviewer := NewReviewer(store, discardLogger())

	member := identityFor(seedUser(t, store, "ada", hub.RoleMember))
	admin := identityFor(seedUser(t, store, "root", hub.RoleAdmin))
	seedDomain(t, catalog, "Web")

	p, err := catalog.SubmitProject(ctx, member, SubmitProjectOpts{
		DomainSlug: "web", Title: "Spam", Difficulty: hub.DifficultyBeginner,
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	page, _ := reviewer.List(ctx, "", 0, 10)
	if _, err := reviewer.Reject(ctx, page.Reviews[0].ID, admin, "spam"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	got, _ := store.GetProject(ctx, p.ID)
	if got.Status != hub.ProjectRejected {
		t.Errorf("project status = %q, want rejected", got.Status)
	}
}

func TestLeaderboardCaching(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)
	catalog := NewCatalog(store)
	lib := NewLibrary(store, discardLogger())
	stats, err := NewStats(store)
	if err != nil {
		t.Fatalf("new stats: %v", err)
	}

	admin := identityFor(seedUser(t, store, "root", hub.RoleAdmin))
	ada := seedUser(t, store, "ada", hub.RoleMember)
	seedDomain(t, catalog, "Web")
	p := seedPublished(t, catalog, admin, "web", "Build a Blog", hub.DifficultyBeginner)

	if _, err := lib.UpdateProgress(ctx, ada.ID, p.ID, hub.ProgressCompleted, 100); err != nil {
		t.Fatalf("complete: %v", err)
	}

	entries, err := stats.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) == 0 || entries[0].Username != "ada" {
		t.Fatalf("entries = %+v, want ada on top", entries)
	}
	if entries[0].Rank != 1 || entries[0].Completed != 1 {
		t.Errorf("top entry = %+v", entries[0])
	}

	// Second read within the TTL is served from cache.
	if _, err := stats.Leaderboard(ctx, 10); err != nil {
		t.Errorf("cached leaderboard: %v", err)
	}
}
