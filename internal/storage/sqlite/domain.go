package sqlite

import (
	"context"
	"database/sql"
	"time"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
)

// CreateDomain inserts a catalog category.
func (s *Store) CreateDomain(ctx context.Context, d *hub.Domain) error {
	_, err := s.write.ExecContext(ctx,
		`INSERT INTO domains (id, slug, name, description, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.Slug, d.Name, nullStr(d.Description), d.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetDomainBySlug retrieves a domain by its URL slug.
func (s *Store) GetDomainBySlug(ctx context.Context, slug string) (*hub.Domain, error) {
	row := s.read.QueryRowContext(ctx,
		`SELECT id, slug, name, description, created_at FROM domains WHERE slug = ?`, slug,
	)
	return scanDomain(row)
}

// ListDomains returns all domains ordered by name.
func (s *Store) ListDomains(ctx context.Context) ([]*hub.Domain, error) {
	rows, err := s.read.QueryContext(ctx,
		`SELECT id, slug, name, description, created_at FROM domains ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*hub.Domain
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func scanDomain(s scanner) (*hub.Domain, error) {
	var d hub.Domain
	var desc, createdAt sql.NullString
	if err := s.Scan(&d.ID, &d.Slug, &d.Name, &desc, &createdAt); err != nil {
		return nil, notFoundErr(err)
	}
	d.Description = desc.String
	if t := parseTime(createdAt); t != nil {
		d.CreatedAt = *t
	}
	return &d, nil
}
