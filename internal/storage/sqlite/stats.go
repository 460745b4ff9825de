package sqlite

import (
	"context"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
)

// Leaderboard returns the top users by points with their completion counts.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]*hub.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	rows, err := s.read.QueryContext(ctx,
		`SELECT u.id, u.username, u.points,
		   (SELECT COUNT(*) FROM progress p
		    WHERE p.user_id = u.id AND p.status = 'completed') AS completed
		 FROM users u
		 ORDER BY u.points DESC, u.username
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*hub.LeaderboardEntry
	rank := 0
	for rows.Next() {
		var e hub.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.Points, &e.Completed); err != nil {
			return nil, err
		}
		rank++
		e.Rank = rank
		out = append(out, &e)
	}
	return out, rows.Err()
}

// RecomputePoints rewrites users.points from completion difficulty points plus
// achievement points, returning how many rows changed. The rollup worker runs
// this periodically so totals self-heal if an award write was lost.
func (s *Store) RecomputePoints(ctx context.Context) (int, error) {
	result, err := s.write.ExecContext(ctx, `
		UPDATE users SET points = (
		  COALESCE((SELECT SUM(CASE pr.difficulty
		      WHEN 'beginner' THEN 10
		      WHEN 'intermediate' THEN 25
		      WHEN 'advanced' THEN 50
		      ELSE 0 END)
		    FROM progress p JOIN projects pr ON pr.id = p.project_id
		    WHERE p.user_id = users.id AND p.status = 'completed'), 0)
		  +
		  COALESCE((SELECT SUM(a.points)
		    FROM user_achievements ua JOIN achievements a ON a.id = ua.achievement_id
		    WHERE ua.user_id = users.id), 0)
		)
		WHERE points <> (
		  COALESCE((SELECT SUM(CASE pr.difficulty
		      WHEN 'beginner' THEN 10
		      WHEN 'intermediate' THEN 25
		      WHEN 'advanced' THEN 50
		      ELSE 0 END)
		    FROM progress p JOIN projects pr ON pr.id = p.project_id
		    WHERE p.user_id = users.id AND p.status = 'completed'), 0)
		  +
		  COALESCE((SELECT SUM(a.points)
		    FROM user_achievements ua JOIN achievements a ON a.id = ua.achievement_id
		    WHERE ua.user_id = users.id), 0)
		)`)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}
