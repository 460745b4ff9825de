package sqlite

import (
	"context"
	"database/sql"
	"time"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
)

// CreateRefreshToken inserts a refresh token record.
func (s *Store) CreateRefreshToken(ctx context.Context, t *hub.RefreshToken) error {
	_, err := s.write.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt.UTC().Format(time.RFC3339),
		boolToInt(t.Revoked), t.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetRefreshTokenByHash retrieves a refresh token by its SHA-256 hash.
func (s *Store) GetRefreshTokenByHash(ctx context.Context, hash string) (*hub.RefreshToken, error) {
	row := s.read.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, revoked, created_at
		 FROM refresh_tokens WHERE token_hash = ?`, hash)

	var t hub.RefreshToken
	var expiresAt, createdAt sql.NullString
	var revoked int
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &expiresAt, &revoked, &createdAt)
	if err != nil {
		return nil, notFoundErr(err)
	}

	t.Revoked = revoked != 0
	if ts := parseTime(expiresAt); ts != nil {
		t.ExpiresAt = *ts
	}
	if ts := parseTime(createdAt); ts != nil {
		t.CreatedAt = *ts
	}
	return &t, nil
}

// RevokeRefreshToken marks a single token revoked.
func (s *Store) RevokeRefreshToken(ctx context.Context, id string) error {
	result, err := s.write.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, "refresh token")
}

// RevokeUserTokens revokes every live token for a user (logout-everywhere).
func (s *Store) RevokeUserTokens(ctx context.Context, userID string) error {
	_, err := s.write.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE user_id = ? AND revoked = 0`, userID)
	return err
}

// DeleteDeadTokens removes revoked tokens and tokens expired before cutoff.
func (s *Store) DeleteDeadTokens(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.write.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE revoked = 1 OR expires_at < ?`,
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}
