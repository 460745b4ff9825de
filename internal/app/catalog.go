// Package app implements application-level services for Project Hub.
package app

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
	"github.com/Tejas3545/project-hub-sub001/internal/storage"
)

// DefaultPageSize bounds catalog listings when the caller sends no limit.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var slugScrub = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a title into a URL-safe slug.
func Slugify(s string) string {
	s = slugScrub.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// catalogStore is the slice of storage.Store the catalog needs.
type catalogStore interface {
	storage.DomainStore
	storage.ProjectStore
	storage.ReviewStore
}

// Catalog manages domains and projects.
type Catalog struct {
	store catalogStore
}

// NewCatalog returns a Catalog backed by store.
func NewCatalog(store catalogStore) *Catalog {
	return &Catalog{store: store}
}

// ListDomains returns all catalog domains.
func (c *Catalog) ListDomains(ctx context.Context) ([]*hub.Domain, error) {
	return c.store.ListDomains(ctx)
}

// CreateDomain creates a catalog domain. Admin only, enforced by the router.
func (c *Catalog) CreateDomain(ctx context.Context, name, description string) (*hub.Domain, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: domain name is required", hub.ErrBadRequest)
	}
	d := &hub.Domain{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Slug:        Slugify(name),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := c.store.CreateDomain(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ProjectPage is one page of a catalog listing.
type ProjectPage struct {
	Projects []*hub.Project `json:"projects"`
	Total    int            `json:"total"`
	Offset   int            `json:"offset"`
	Limit    int            `json:"limit"`
}

// ListProjects returns a page of published projects matching the filter.
// Non-published statuses in the filter are ignored unless includeAll is set
// (admin listings).
func (c *Catalog) ListProjects(ctx context.Context, f hub.ProjectFilter, includeAll bool) (*ProjectPage, error) {
	if !includeAll {
		f.Status = hub.ProjectPublished
	}
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	projects, err := c.store.ListProjects(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := c.store.CountProjects(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ProjectPage{Projects: projects, Total: total, Offset: f.Offset, Limit: f.Limit}, nil
}

// GetProject returns a single project by slug. Unpublished projects are only
// visible to their submitter and to catalog managers.
func (c *Catalog) GetProject(ctx context.Context, slug string, viewer *hub.Identity) (*hub.Project, error) {
	p, err := c.store.GetProjectBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if p.Status == hub.ProjectPublished {
		return p, nil
	}
	if viewer != nil && (viewer.Can(hub.PermManageCatalog) || viewer.UserID == p.SubmitterID) {
		return p, nil
	}
	return nil, hub.ErrNotFound
}

// SubmitProjectOpts holds the fields of a project submission.
type SubmitProjectOpts struct {
	DomainSlug  string
	Title       string
	Summary     string
	Description string
	Difficulty  string
	RepoURL     string // non-empty marks a github-sourced submission
}

// SubmitProject creates a pending project and queues it for QA review.
// Catalog managers skip the queue: their submissions publish immediately.
func (c *Catalog) SubmitProject(ctx context.Context, submitter *hub.Identity, opts SubmitProjectOpts) (*hub.Project, error) {
	if opts.Title == "" {
		return nil, fmt.Errorf("%w: title is required", hub.ErrBadRequest)
	}
	if _, ok := hub.DifficultyPoints[opts.Difficulty]; !ok {
		return nil, fmt.Errorf("%w: unknown difficulty %q", hub.ErrBadRequest, opts.Difficulty)
	}
	d, err := c.store.GetDomainBySlug(ctx, opts.DomainSlug)
	if err != nil {
		return nil, err
	}

	source := hub.SourceEditorial
	if opts.RepoURL != "" {
		source = hub.SourceGitHub
	}
	now := time.Now().UTC()
	p := &hub.Project{
		ID:          uuid.Must(uuid.NewV7()).String(),
		DomainID:    d.ID,
		Slug:        Slugify(opts.Title),
		Title:       opts.Title,
		Summary:     opts.Summary,
		Description: opts.Description,
		Difficulty:  opts.Difficulty,
		Source:      source,
		RepoURL:     opts.RepoURL,
		Status:      hub.ProjectPending,
		SubmitterID: submitter.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if submitter.Can(hub.PermManageCatalog) {
		p.Status = hub.ProjectPublished
	}
	if err := c.store.CreateProject(ctx, p); err != nil {
		return nil, err
	}

	if p.Status == hub.ProjectPending {
		r := &hub.Review{
			ID:          uuid.Must(uuid.NewV7()).String(),
			ProjectID:   p.ID,
			SubmitterID: submitter.UserID,
			State:       hub.ReviewPending,
			CreatedAt:   now,
		}
		if err := c.store.CreateReview(ctx, r); err != nil {
			return nil, err
		}
	}
	return p, nil
}
