package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
)

const userCols = `id, username, email, password_hash, role, github_id, points, created_at`

// CreateUser inserts a user account. Duplicate usernames and emails map to
// hub.ErrConflict.
func (s *Store) CreateUser(ctx context.Context, u *hub.User) error {
	var githubID sql.NullInt64
	if u.GitHubID != 0 {
		githubID = sql.NullInt64{Int64: u.GitHubID, Valid: true}
	}
	_, err := s.write.ExecContext(ctx,
		`INSERT INTO users (`+userCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, nullStr(u.PasswordHash), u.Role, githubID,
		u.Points, u.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return hub.ErrConflict
	}
	return err
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*hub.User, error) {
	row := s.read.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*hub.User, error) {
	row := s.read.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// GetUserByGitHubID retrieves an OAuth-linked user.
func (s *Store) GetUserByGitHubID(ctx context.Context, githubID int64) (*hub.User, error) {
	row := s.read.QueryRowContext(ctx,
		`SELECT `+userCols+` FROM users WHERE github_id = ?`, githubID)
	return scanUser(row)
}

// AddUserPoints adds delta to a user's points total.
func (s *Store) AddUserPoints(ctx context.Context, id string, delta int) error {
	result, err := s.write.ExecContext(ctx,
		`UPDATE users SET points = points + ? WHERE id = ?`, delta, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, "user")
}

func scanUser(s scanner) (*hub.User, error) {
	var u hub.User
	var passwordHash, createdAt sql.NullString
	var githubID sql.NullInt64

	err := s.Scan(&u.ID, &u.Username, &u.Email, &passwordHash, &u.Role,
		&githubID, &u.Points, &createdAt)
	if err != nil {
		return nil, notFoundErr(err)
	}

	u.PasswordHash = passwordHash.String
	u.GitHubID = githubID.Int64
	if t := parseTime(createdAt); t != nil {
		u.CreatedAt = *t
	}
	return &u, nil
}
