package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
)

const projectCols = `id, domain_id, slug, title, summary, description, difficulty,
 source, repo_url, stars, topics, status, submitter_id, created_at, updated_at`

// CreateProject inserts a project.
func (s *Store) CreateProject(ctx context.Context, p *hub.Project) error {
	topics, err := marshalJSON(p.Topics)
	if err != nil {
		return err
	}
	_, err = s.write.ExecContext(ctx,
		`INSERT INTO projects (`+projectCols+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.DomainID, p.Slug, p.Title, nullStr(p.Summary), nullStr(p.Description),
		p.Difficulty, p.Source, nullStr(p.RepoURL), p.Stars, topics, p.Status,
		nullStr(p.SubmitterID),
		p.CreatedAt.UTC().Format(time.RFC3339), p.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(ctx context.Context, id string) (*hub.Project, error) {
	row := s.read.QueryRowContext(ctx,
		`SELECT `+projectCols+` FROM projects WHERE id = ?`, id)
	return scanProject(row)
}

// GetProjectBySlug retrieves a project by its URL slug.
func (s *Store) GetProjectBySlug(ctx context.Context, slug string) (*hub.Project, error) {
	row := s.read.QueryRowContext(ctx,
		`SELECT `+projectCols+` FROM projects WHERE slug = ?`, slug)
	return scanProject(row)
}

// ListProjects returns projects matching the filter, newest first.
func (s *Store) ListProjects(ctx context.Context, f hub.ProjectFilter) ([]*hub.Project, error) {
	where, args := projectWhere(f)
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Offset)

	rows, err := s.read.QueryContext(ctx,
		`SELECT `+projectCols+` FROM projects`+where+
			` ORDER BY created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*hub.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountProjects returns the number of projects matching the filter.
func (s *Store) CountProjects(ctx context.Context, f hub.ProjectFilter) (int, error) {
	where, args := projectWhere(f)
	var n int
	err := s.read.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects`+where, args...).Scan(&n)
	return n, err
}

// UpdateProjectStatus transitions a project's publication status.
func (s *Store) UpdateProjectStatus(ctx context.Context, id, status string) error {
	result, err := s.write.ExecContext(ctx,
		`UPDATE projects SET status=?, updated_at=? WHERE id=?`,
		status, time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, "project")
}

// UpdateRepoMeta refreshes GitHub metadata for a project.
func (s *Store) UpdateRepoMeta(ctx context.Context, id string, stars int, topics []string) error {
	tj, err := marshalJSON(topics)
	if err != nil {
		return err
	}
	result, err := s.write.ExecContext(ctx,
		`UPDATE projects SET stars=?, topics=?, updated_at=? WHERE id=?`,
		stars, tj, time.Now().UTC().Format(time.RFC3339), id,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(result, "project")
}

// ListSyncableProjects returns published github-sourced projects with a repo URL.
func (s *Store) ListSyncableProjects(ctx context.Context) ([]*hub.Project, error) {
	rows, err := s.read.QueryContext(ctx,
		`SELECT `+projectCols+` FROM projects
		 WHERE source = ? AND status = ? AND repo_url IS NOT NULL`,
		hub.SourceGitHub, hub.ProjectPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*hub.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// projectWhere builds the WHERE clause for a filter. Search matches title and
// summary case-insensitively via LIKE.
func projectWhere(f hub.ProjectFilter) (string, []any) {
	var conds []string
	var args []any
	if f.DomainID != "" {
		conds = append(conds, "domain_id = ?")
		args = append(args, f.DomainID)
	}
	if f.Difficulty != "" {
		conds = append(conds, "difficulty = ?")
		args = append(args, f.Difficulty)
	}
	if f.Source != "" {
		conds = append(conds, "source = ?")
		args = append(args, f.Source)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}
	if f.Search != "" {
		conds = append(conds, "(title LIKE ? COLLATE NOCASE OR summary LIKE ? COLLATE NOCASE)")
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanProject(s scanner) (*hub.Project, error) {
	var p hub.Project
	var summary, desc, repoURL, topicsJSON, submitterID sql.NullString
	var createdAt, updatedAt sql.NullString

	err := s.Scan(
		&p.ID, &p.DomainID, &p.Slug, &p.Title, &summary, &desc, &p.Difficulty,
		&p.Source, &repoURL, &p.Stars, &topicsJSON, &p.Status, &submitterID,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, notFoundErr(err)
	}

	p.Summary = summary.String
	p.Description = desc.String
	p.RepoURL = repoURL.String
	p.SubmitterID = submitterID.String

	topics, err := unmarshalStringSlice(topicsJSON)
	if err != nil {
		return nil, err
	}
	p.Topics = topics
	if t := parseTime(createdAt); t != nil {
		p.CreatedAt = *t
	}
	if t := parseTime(updatedAt); t != nil {
		p.UpdatedAt = *t
	}
	return &p, nil
}
