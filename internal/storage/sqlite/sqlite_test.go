package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	// Use a unique file-based temp DB for each test to avoid shared :memory: races
	path := t.TempDir() + "/test.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedDomain(t *testing.T, s *Store, slug string) *hub.Domain {
	t.Helper()
	d := &hub.Domain{
		ID:        "dom-" + slug,
		Slug:      slug,
		Name:      slug,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateDomain(context.Background(), d); err != nil {
		t.Fatal("seed domain:", err)
	}
	return d
}

func seedUser(t *testing.T, s *Store, username string) *hub.User {
	t.Helper()
	u := &hub.User{
		ID:        "usr-" + username,
		Username:  username,
		Email:     username + "@example.com",
		Role:      hub.RoleMember,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatal("seed user:", err)
	}
	return u
}

func seedProject(t *testing.T, s *Store, d *hub.Domain, slug, difficulty, status string) *hub.Project {
	t.Helper()
	now := time.Now().UTC()
	p := &hub.Project{
		ID:         "prj-" + slug,
		DomainID:   d.ID,
		Slug:       slug,
		Title:      slug,
		Difficulty: difficulty,
		Source:     hub.SourceEditorial,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.CreateProject(context.Background(), p); err != nil {
		t.Fatal("seed project:", err)
	}
	return p
}

func TestProjectRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	d := seedDomain(t, s, "web")

	now := time.Now().UTC().Truncate(time.Second)
	p := &hub.Project{
		ID:         "prj-1",
		DomainID:   d.ID,
		Slug:       "build-a-shell",
		Title:      "Build a Shell",
		Summary:    "A POSIX shell from scratch",
		Difficulty: hub.DifficultyAdvanced,
		Source:     hub.SourceGitHub,
		RepoURL:    "https://github.com/example/shell",
		Topics:     []string{"c", "unix"},
		Status:     hub.ProjectPublished,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.CreateProject(ctx, p); err != nil {
		t.Fatal("create:", err)
	}

	got, err := s.GetProjectBySlug(ctx, "build-a-shell")
	if err != nil {
		t.Fatal("get:", err)
	}
	if got.Title != p.Title || got.Difficulty != p.Difficulty {
		t.Errorf("got %+v", got)
	}
	if len(got.Topics) != 2 || got.Topics[0] != "c" {
		t.Errorf("topics = %v, want [c unix]", got.Topics)
	}

	if err := s.UpdateRepoMeta(ctx, "prj-1", 1234, []string{"c", "unix", "shell"}); err != nil {
		t.Fatal("update meta:", err)
	}
	got, _ = s.GetProject(ctx, "prj-1")
	if got.Stars != 1234 || len(got.Topics) != 3 {
		t.Errorf("after meta update: stars=%d topics=%v", got.Stars, got.Topics)
	}

	syncable, err := s.ListSyncableProjects(ctx)
	if err != nil {
		t.Fatal("syncable:", err)
	}
	if len(syncable) != 1 {
		t.Errorf("syncable = %d, want 1", len(syncable))
	}

	if err := s.UpdateProjectStatus(ctx, "prj-1", hub.ProjectRejected); err != nil {
		t.Fatal("status:", err)
	}
	got, _ = s.GetProject(ctx, "prj-1")
	if got.Status != hub.ProjectRejected {
		t.Errorf("status = %q", got.Status)
	}
}

func TestProjectFilters(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	web := seedDomain(t, s, "web")
	sys := seedDomain(t, s, "systems")

	seedProject(t, s, web, "todo-app", hub.DifficultyBeginner, hub.ProjectPublished)
	seedProject(t, s, web, "chat-app", hub.DifficultyIntermediate, hub.ProjectPublished)
	seedProject(t, s, sys, "toy-kernel", hub.DifficultyAdvanced, hub.ProjectPending)

	tests := []struct {
		name   string
		filter hub.ProjectFilter
		want   int
	}{
		{"all", hub.ProjectFilter{}, 3},
		{"by domain", hub.ProjectFilter{DomainID: web.ID}, 2},
		{"by difficulty", hub.ProjectFilter{Difficulty: hub.DifficultyAdvanced}, 1},
		{"by status", hub.ProjectFilter{Status: hub.ProjectPublished}, 2},
		{"search", hub.ProjectFilter{Search: "APP"}, 2},
		{"no match", hub.ProjectFilter{Search: "compiler"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListProjects(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("list = %d, want %d", len(got), tt.want)
			}
			n, err := s.CountProjects(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if n != tt.want {
				t.Errorf("count = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestUserRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	u := &hub.User{
		ID:           "usr-1",
		Username:     "ada",
		Email:        "ada@example.com",
		PasswordHash: "$2a$10$fake",
		Role:         hub.RoleMember,
		GitHubID:     42,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatal("create:", err)
	}

	// Duplicate username maps to ErrConflict.
	dup := *u
	dup.ID = "usr-2"
	dup.Email = "other@example.com"
	if err := s.CreateUser(ctx, &dup); !errors.Is(err, hub.ErrConflict) {
		t.Errorf("duplicate username err = %v, want ErrConflict", err)
	}

	got, err := s.GetUserByUsername(ctx, "ada")
	if err != nil {
		t.Fatal("get:", err)
	}
	if got.PasswordHash != u.PasswordHash || got.GitHubID != 42 {
		t.Errorf("got %+v", got)
	}

	if _, err := s.GetUserByGitHubID(ctx, 42); err != nil {
		t.Error("github lookup:", err)
	}

	if err := s.AddUserPoints(ctx, "usr-1", 35); err != nil {
		t.Fatal("points:", err)
	}
	got, _ = s.GetUser(ctx, "usr-1")
	if got.Points != 35 {
		t.Errorf("points = %d, want 35", got.Points)
	}
}

func TestLibraryRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	d := seedDomain(t, s, "web")
	u := seedUser(t, s, "ada")
	p := seedProject(t, s, d, "todo-app", hub.DifficultyBeginner, hub.ProjectPublished)

	b := &hub.Bookmark{UserID: u.ID, ProjectID: p.ID, CreatedAt: time.Now().UTC()}
	if err := s.AddBookmark(ctx, b); err != nil {
		t.Fatal("bookmark:", err)
	}
	if err := s.AddBookmark(ctx, b); !errors.Is(err, hub.ErrConflict) {
		t.Errorf("duplicate bookmark err = %v, want ErrConflict", err)
	}

	marks, err := s.ListBookmarks(ctx, u.ID)
	if err != nil || len(marks) != 1 {
		t.Fatalf("list bookmarks = %v, %v", marks, err)
	}

	now := time.Now().UTC()
	prog := &hub.Progress{
		UserID:    u.ID,
		ProjectID: p.ID,
		Status:    hub.ProgressStarted,
		StartedAt: now,
		UpdatedAt: now,
	}
	if err := s.UpsertProgress(ctx, prog); err != nil {
		t.Fatal("upsert:", err)
	}

	done := now.Add(time.Hour)
	prog.Status = hub.ProgressCompleted
	prog.Percent = 100
	prog.CompletedAt = &done
	prog.UpdatedAt = done
	if err := s.UpsertProgress(ctx, prog); err != nil {
		t.Fatal("upsert complete:", err)
	}

	got, err := s.GetProgress(ctx, u.ID, p.ID)
	if err != nil {
		t.Fatal("get progress:", err)
	}
	if got.Status != hub.ProgressCompleted || got.Percent != 100 || got.CompletedAt == nil {
		t.Errorf("got %+v", got)
	}

	n, err := s.CountCompleted(ctx, u.ID)
	if err != nil || n != 1 {
		t.Errorf("completed = %d, %v; want 1", n, err)
	}

	if err := s.RemoveBookmark(ctx, u.ID, p.ID); err != nil {
		t.Fatal("remove bookmark:", err)
	}
	if err := s.RemoveBookmark(ctx, u.ID, p.ID); !errors.Is(err, hub.ErrNotFound) {
		t.Errorf("second remove err = %v, want ErrNotFound", err)
	}
}

func TestAchievementAwards(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "ada")

	all, err := s.ListAchievements(ctx)
	if err != nil {
		t.Fatal("list:", err)
	}
	if len(all) != 3 {
		t.Fatalf("seeded achievements = %d, want 3", len(all))
	}

	first, err := s.GetAchievementByCode(ctx, hub.AchFirstBlood)
	if err != nil {
		t.Fatal("get by code:", err)
	}

	awarded, err := s.AwardAchievement(ctx, u.ID, first.ID, time.Now().UTC())
	if err != nil || !awarded {
		t.Fatalf("award = %v, %v; want true", awarded, err)
	}
	// Idempotent re-award.
	awarded, err = s.AwardAchievement(ctx, u.ID, first.ID, time.Now().UTC())
	if err != nil || awarded {
		t.Fatalf("re-award = %v, %v; want false", awarded, err)
	}

	mine, err := s.ListUserAchievements(ctx, u.ID)
	if err != nil || len(mine) != 1 {
		t.Fatalf("user achievements = %v, %v", mine, err)
	}
	if mine[0].Code != hub.AchFirstBlood || mine[0].Points != first.Points {
		t.Errorf("got %+v", mine[0])
	}
}

func TestReviewRoundTrip(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	d := seedDomain(t, s, "web")
	u := seedUser(t, s, "ada")
	p := seedProject(t, s, d, "todo-app", hub.DifficultyBeginner, hub.ProjectPending)

	r := &hub.Review{
		ID:          "rev-1",
		ProjectID:   p.ID,
		SubmitterID: u.ID,
		State:       hub.ReviewPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.CreateReview(ctx, r); err != nil {
		t.Fatal("create:", err)
	}

	pending, err := s.ListReviews(ctx, hub.ReviewPending, 0, 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending = %v, %v", pending, err)
	}
	n, _ := s.CountReviews(ctx, hub.ReviewPending)
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}

	now := time.Now().UTC()
	r.State = hub.ReviewApproved
	r.ReviewerID = "usr-admin"
	r.Note = "looks good"
	r.ResolvedAt = &now
	if err := s.UpdateReview(ctx, r); err != nil {
		t.Fatal("update:", err)
	}

	got, err := s.GetReview(ctx, "rev-1")
	if err != nil {
		t.Fatal("get:", err)
	}
	if got.State != hub.ReviewApproved || got.ReviewerID != "usr-admin" || got.ResolvedAt == nil {
		t.Errorf("got %+v", got)
	}
}

func TestRefreshTokenLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "ada")
	now := time.Now().UTC()

	live := &hub.RefreshToken{
		ID: "tok-live", UserID: u.ID, TokenHash: "hash-live",
		ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}
	stale := &hub.RefreshToken{
		ID: "tok-stale", UserID: u.ID, TokenHash: "hash-stale",
		ExpiresAt: now.Add(-time.Hour), CreatedAt: now.Add(-2 * time.Hour),
	}
	for _, tok := range []*hub.RefreshToken{live, stale} {
		if err := s.CreateRefreshToken(ctx, tok); err != nil {
			t.Fatal("create:", err)
		}
	}

	got, err := s.GetRefreshTokenByHash(ctx, "hash-live")
	if err != nil || got.Revoked {
		t.Fatalf("get = %+v, %v", got, err)
	}

	if err := s.RevokeRefreshToken(ctx, "tok-live"); err != nil {
		t.Fatal("revoke:", err)
	}
	got, _ = s.GetRefreshTokenByHash(ctx, "hash-live")
	if !got.Revoked {
		t.Error("token should be revoked")
	}

	// Both the revoked and the expired token are dead.
	n, err := s.DeleteDeadTokens(ctx, now)
	if err != nil {
		t.Fatal("reap:", err)
	}
	if n != 2 {
		t.Errorf("reaped = %d, want 2", n)
	}
	if _, err := s.GetRefreshTokenByHash(ctx, "hash-live"); !errors.Is(err, hub.ErrNotFound) {
		t.Errorf("after reap err = %v, want ErrNotFound", err)
	}
}

func TestLeaderboardAndRecompute(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()
	d := seedDomain(t, s, "web")
	ada := seedUser(t, s, "ada")
	seedUser(t, s, "bob")
	p := seedProject(t, s, d, "todo-app", hub.DifficultyIntermediate, hub.ProjectPublished)

	now := time.Now().UTC()
	done := now
	if err := s.UpsertProgress(ctx, &hub.Progress{
		UserID: ada.ID, ProjectID: p.ID, Status: hub.ProgressCompleted,
		Percent: 100, StartedAt: now, CompletedAt: &done, UpdatedAt: now,
	}); err != nil {
		t.Fatal(err)
	}
	first, _ := s.GetAchievementByCode(ctx, hub.AchFirstBlood)
	if _, err := s.AwardAchievement(ctx, ada.ID, first.ID, now); err != nil {
		t.Fatal(err)
	}

	// ada's stored points are stale (0); recompute fixes exactly one user.
	n, err := s.RecomputePoints(ctx)
	if err != nil {
		t.Fatal("recompute:", err)
	}
	if n != 1 {
		t.Errorf("recomputed = %d, want 1", n)
	}
	got, _ := s.GetUser(ctx, ada.ID)
	want := hub.DifficultyPoints[hub.DifficultyIntermediate] + first.Points
	if got.Points != want {
		t.Errorf("points = %d, want %d", got.Points, want)
	}

	board, err := s.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatal("leaderboard:", err)
	}
	if len(board) != 2 || board[0].UserID != ada.ID || board[0].Rank != 1 {
		t.Errorf("board = %+v", board)
	}
	if board[0].Completed != 1 {
		t.Errorf("completed = %d, want 1", board[0].Completed)
	}
}
