package sqlite

import (
	"context"
	"database/sql"
	"time"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
)

const reviewCols = `id, project_id, submitter_id, state, reviewer_id, note, created_at, resolved_at`

// CreateReview inserts a QA queue entry.
func (s *Store) CreateReview(ctx context.Context, r *hub.Review) error {
	_, err := s.write.ExecContext(ctx,
		`INSERT INTO reviews (`+reviewCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ProjectID, r.SubmitterID, r.State, nullStr(r.ReviewerID),
		nullStr(r.Note), r.CreatedAt.UTC().Format(time.RFC3339), timeToStr(r.ResolvedAt),
	)
	return err
}

// GetReview retrieves a review by ID.
func (s *Store) GetReview(ctx context.Context, id string) (*hub.Review, error) {
	row := s.read.QueryRowContext(ctx,
		`SELECT `+reviewCols+` FROM reviews WHERE id = ?`, id)
	return scanReview(row)
}

// ListReviews returns reviews, optionally filtered by state, oldest first so
// moderators work the queue in submission order.
func (s *Store) ListReviews(ctx context.Context, state string, offset, limit int) ([]*hub.Review, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows *sql.Rows
	var err error
	if state != "" {
		rows, err = s.read.QueryContext(ctx,
			`SELECT `+reviewCols+` FROM reviews WHERE state = ?
			 ORDER BY created_at LIMIT ? OFFSET ?`, state, limit, offset)
	} else {
		rows, err = s.read.QueryContext(ctx,
			`SELECT `+reviewCols+` FROM reviews ORDER BY created_at LIMIT ? OFFSET ?`,
			limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*hub.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountReviews returns the number of reviews, optionally filtered by state.
func (s *Store) CountReviews(ctx context.Context, state string) (int, error) {
	var n int
	var err error
	if state != "" {
		err = s.read.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM reviews WHERE state = ?`, state).Scan(&n)
	} else {
		err = s.read.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&n)
	}
	return n, err
}

// UpdateReview persists a state transition.
func (s *Store) UpdateReview(ctx context.Context, r *hub.Review) error {
	result, err := s.write.ExecContext(ctx,
		`UPDATE reviews SET state=?, reviewer_id=?, note=?, resolved_at=? WHERE id=?`,
		r.State, nullStr(r.ReviewerID), nullStr(r.Note), timeToStr(r.ResolvedAt), r.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, "review")
}

func scanReview(s scanner) (*hub.Review, error) {
	var r hub.Review
	var reviewerID, note, createdAt, resolvedAt sql.NullString

	err := s.Scan(&r.ID, &r.ProjectID, &r.SubmitterID, &r.State,
		&reviewerID, &note, &createdAt, &resolvedAt)
	if err != nil {
		return nil, notFoundErr(err)
	}

	r.ReviewerID = reviewerID.String
	r.Note = note.String
	if t := parseTime(createdAt); t != nil {
		r.CreatedAt = *t
	}
	r.ResolvedAt = parseTime(resolvedAt)
	return &r, nil
}
