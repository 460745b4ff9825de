package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
)

// AddBookmark saves a project to a user's library. Re-bookmarking an already
// saved project maps to hub.ErrConflict.
func (s *Store) AddBookmark(ctx context.Context, b *hub.Bookmark) error {
	_, err := s.write.ExecContext(ctx,
		`INSERT INTO bookmarks (user_id, project_id, created_at) VALUES (?, ?, ?)`,
		b.UserID, b.ProjectID, b.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return hub.ErrConflict
	}
	return err
}

// RemoveBookmark deletes a bookmark.
func (s *Store) RemoveBookmark(ctx context.Context, userID, projectID string) error {
	result, err := s.write.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE user_id = ? AND project_id = ?`, userID, projectID)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, "bookmark")
}

// ListBookmarks returns a user's bookmarks, newest first.
func (s *Store) ListBookmarks(ctx context.Context, userID string) ([]*hub.Bookmark, error) {
	rows, err := s.read.QueryContext(ctx,
		`SELECT user_id, project_id, created_at FROM bookmarks
		 WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*hub.Bookmark
	for rows.Next() {
		var b hub.Bookmark
		var createdAt sql.NullString
		if err := rows.Scan(&b.UserID, &b.ProjectID, &createdAt); err != nil {
			return nil, err
		}
		if t := parseTime(createdAt); t != nil {
			b.CreatedAt = *t
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// UpsertProgress inserts or replaces a user's progress on a project.
func (s *Store) UpsertProgress(ctx context.Context, p *hub.Progress) error {
	_, err := s.write.ExecContext(ctx,
		`INSERT INTO progress (user_id, project_id, status, percent, started_at, completed_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, project_id) DO UPDATE SET
		   status=excluded.status, percent=excluded.percent,
		   completed_at=excluded.completed_at, updated_at=excluded.updated_at`,
		p.UserID, p.ProjectID, p.Status, p.Percent,
		p.StartedAt.UTC().Format(time.RFC3339), timeToStr(p.CompletedAt),
		p.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetProgress retrieves a user's progress on one project.
func (s *Store) GetProgress(ctx context.Context, userID, projectID string) (*hub.Progress, error) {
	row := s.read.QueryRowContext(ctx,
		`SELECT user_id, project_id, status, percent, started_at, completed_at, updated_at
		 FROM progress WHERE user_id = ? AND project_id = ?`, userID, projectID)
	return scanProgress(row)
}

// ListProgress returns all of a user's progress rows, most recently updated first.
func (s *Store) ListProgress(ctx context.Context, userID string) ([]*hub.Progress, error) {
	rows, err := s.read.QueryContext(ctx,
		`SELECT user_id, project_id, status, percent, started_at, completed_at, updated_at
		 FROM progress WHERE user_id = ? ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*hub.Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountCompleted returns the number of projects a user has completed.
func (s *Store) CountCompleted(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.read.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM progress WHERE user_id = ? AND status = ?`,
		userID, hub.ProgressCompleted).Scan(&n)
	return n, err
}

func scanProgress(s scanner) (*hub.Progress, error) {
	var p hub.Progress
	var startedAt, completedAt, updatedAt sql.NullString

	err := s.Scan(&p.UserID, &p.ProjectID, &p.Status, &p.Percent,
		&startedAt, &completedAt, &updatedAt)
	if err != nil {
		return nil, notFoundErr(err)
	}

	if t := parseTime(startedAt); t != nil {
		p.StartedAt = *t
	}
	p.CompletedAt = parseTime(completedAt)
	if t := parseTime(updatedAt); t != nil {
		p.UpdatedAt = *t
	}
	return &p, nil
}
