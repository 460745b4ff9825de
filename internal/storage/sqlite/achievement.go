package sqlite

import (
	"context"
	"database/sql"
	"time"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
)

// ListAchievements returns all achievements ordered by points ascending.
func (s *Store) ListAchievements(ctx context.Context) ([]*hub.Achievement, error) {
	rows, err := s.read.QueryContext(ctx,
		`SELECT id, code, name, description, points FROM achievements ORDER BY points`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*hub.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAchievementByCode retrieves an achievement by its stable code.
func (s *Store) GetAchievementByCode(ctx context.Context, code string) (*hub.Achievement, error) {
	row := s.read.QueryRowContext(ctx,
		`SELECT id, code, name, description, points FROM achievements WHERE code = ?`, code)
	return scanAchievement(row)
}

// AwardAchievement records an award. INSERT OR IGNORE keeps awards idempotent;
// the returned bool reports whether a new row was written.
func (s *Store) AwardAchievement(ctx context.Context, userID, achievementID string, at time.Time) (bool, error) {
	result, err := s.write.ExecContext(ctx,
		`INSERT OR IGNORE INTO user_achievements (user_id, achievement_id, awarded_at)
		 VALUES (?, ?, ?)`,
		userID, achievementID, at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// ListUserAchievements returns a user's awards, newest first, joined with the
// achievement details.
func (s *Store) ListUserAchievements(ctx context.Context, userID string) ([]*hub.UserAchievement, error) {
	rows, err := s.read.QueryContext(ctx,
		`SELECT ua.user_id, ua.achievement_id, a.code, a.name, a.points, ua.awarded_at
		 FROM user_achievements ua JOIN achievements a ON a.id = ua.achievement_id
		 WHERE ua.user_id = ? ORDER BY ua.awarded_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*hub.UserAchievement
	for rows.Next() {
		var ua hub.UserAchievement
		var awardedAt sql.NullString
		if err := rows.Scan(&ua.UserID, &ua.AchievementID, &ua.Code, &ua.Name,
			&ua.Points, &awardedAt); err != nil {
			return nil, err
		}
		if t := parseTime(awardedAt); t != nil {
			ua.AwardedAt = *t
		}
		out = append(out, &ua)
	}
	return out, rows.Err()
}

func scanAchievement(s scanner) (*hub.Achievement, error) {
	var a hub.Achievement
	var desc sql.NullString
	if err := s.Scan(&a.ID, &a.Code, &a.Name, &desc, &a.Points); err != nil {
		return nil, notFoundErr(err)
	}
	a.Description = desc.String
	return &a, nil
}
