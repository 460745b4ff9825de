package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
	"github.com/Tejas3545/project-hub-sub001/internal/storage"
)

// completionMilestones maps completed-project counts to achievement codes.
var completionMilestones = map[int]string{
	1:  hub.AchFirstBlood,
	5:  hub.AchPathfinder,
	25: hub.AchCenturion,
}

// libraryStore is the slice of storage.Store the library needs.
type libraryStore interface {
	storage.ProjectStore
	storage.LibraryStore
	storage.AchievementStore
	storage.UserStore
}

// Library manages bookmarks, progress tracking, and the achievement awards
// that completing projects triggers.
type Library struct {
	store libraryStore
	log   *slog.Logger
}

// NewLibrary returns a Library backed by store.
func NewLibrary(store libraryStore, log *slog.Logger) *Library {
	return &Library{store: store, log: log}
}

// AddBookmark saves a published project to the user's library. Bookmarking
// twice is a no-op.
func (l *Library) AddBookmark(ctx context.Context, userID, projectID string) error {
	p, err := l.store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if p.Status != hub.ProjectPublished {
		return hub.ErrNotFound
	}
	err = l.store.AddBookmark(ctx, &hub.Bookmark{
		UserID:    userID,
		ProjectID: projectID,
		CreatedAt: time.Now().UTC(),
	})
	if errors.Is(err, hub.ErrConflict) {
		return nil
	}
	return err
}

// RemoveBookmark removes a project from the user's library.
func (l *Library) RemoveBookmark(ctx context.Context, userID, projectID string) error {
	return l.store.RemoveBookmark(ctx, userID, projectID)
}

// ListBookmarks returns the user's bookmarks, newest first.
func (l *Library) ListBookmarks(ctx context.Context, userID string) ([]*hub.Bookmark, error) {
	return l.store.ListBookmarks(ctx, userID)
}

// ProgressUpdate is the outcome of a progress write: the stored record plus
// any achievements the update unlocked.
type ProgressUpdate struct {
	Progress *hub.Progress          `json:"progress"`
	Awarded  []*hub.UserAchievement `json:"awarded,omitempty"`
}

// UpdateProgress records the user's progress on a project. Moving to
// completed awards difficulty points and checks completion milestones.
// Percent is clamped to [0,100]; completed always stores 100.
func (l *Library) UpdateProgress(ctx context.Context, userID, projectID, status string, percent int) (*ProgressUpdate, error) {
	switch status {
	case hub.ProgressStarted, hub.ProgressInProgress, hub.ProgressCompleted:
	default:
		return nil, fmt.Errorf("%w: unknown progress status %q", hub.ErrBadRequest, status)
	}
	p, err := l.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.Status != hub.ProjectPublished {
		return nil, hub.ErrNotFound
	}

	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if status == hub.ProgressCompleted {
		percent = 100
	}

	prev, err := l.store.GetProgress(ctx, userID, projectID)
	if err != nil && !errors.Is(err, hub.ErrNotFound) {
		return nil, err
	}
	now := time.Now().UTC()
	rec := &hub.Progress{
		UserID:    userID,
		ProjectID: projectID,
		Status:    status,
		Percent:   percent,
		StartedAt: now,
		UpdatedAt: now,
	}
	if prev != nil {
		rec.StartedAt = prev.StartedAt
		rec.CompletedAt = prev.CompletedAt
	}

	// Completion fires once per project. Re-sending completed, or moving a
	// completed project back in progress, never double-awards.
	firstCompletion := status == hub.ProgressCompleted && (prev == nil || prev.CompletedAt == nil)
	if firstCompletion {
		rec.CompletedAt = &now
	}

	if err := l.store.UpsertProgress(ctx, rec); err != nil {
		return nil, err
	}

	update := &ProgressUpdate{Progress: rec}
	if firstCompletion {
		if err := l.store.AddUserPoints(ctx, userID, hub.DifficultyPoints[p.Difficulty]); err != nil {
			return nil, err
		}
		awarded, err := l.checkMilestones(ctx, userID, now)
		if err != nil {
			return nil, err
		}
		update.Awarded = awarded
	}
	return update, nil
}

// GetProgress returns the user's progress on one project.
func (l *Library) GetProgress(ctx context.Context, userID, projectID string) (*hub.Progress, error) {
	return l.store.GetProgress(ctx, userID, projectID)
}

// ListProgress returns all of the user's progress records.
func (l *Library) ListProgress(ctx context.Context, userID string) ([]*hub.Progress, error) {
	return l.store.ListProgress(ctx, userID)
}

// ListAchievements returns the user's awarded achievements.
func (l *Library) ListAchievements(ctx context.Context, userID string) ([]*hub.UserAchievement, error) {
	return l.store.ListUserAchievements(ctx, userID)
}

// AchievementCatalog returns every achievement that can be earned.
func (l *Library) AchievementCatalog(ctx context.Context) ([]*hub.Achievement, error) {
	return l.store.ListAchievements(ctx)
}

// checkMilestones awards any completion-count achievements the user just
// reached and credits their bonus points.
func (l *Library) checkMilestones(ctx context.Context, userID string, at time.Time) ([]*hub.UserAchievement, error) {
	completed, err := l.store.CountCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}
	code, ok := completionMilestones[completed]
	if !ok {
		return nil, nil
	}

	ach, err := l.store.GetAchievementByCode(ctx, code)
	if err != nil {
		if errors.Is(err, hub.ErrNotFound) {
			// Seed data missing; progress still counts, so log and move on.
			l.log.LogAttrs(ctx, slog.LevelWarn, "achievement code missing",
				slog.String("code", code))
			return nil, nil
		}
		return nil, err
	}
	fresh, err := l.store.AwardAchievement(ctx, userID, ach.ID, at)
	if err != nil || !fresh {
		return nil, err
	}
	if err := l.store.AddUserPoints(ctx, userID, ach.Points); err != nil {
		return nil, err
	}
	l.log.LogAttrs(ctx, slog.LevelInfo, "achievement awarded",
		slog.String("user_id", userID),
		slog.String("code", code))
	return []*hub.UserAchievement{{
		UserID:        userID,
		AchievementID: ach.ID,
		Code:          ach.Code,
		Name:          ach.Name,
		Points:        ach.Points,
		AwardedAt:     at,
	}}, nil
}
