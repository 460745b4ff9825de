package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
	"github.com/Tejas3545/project-hub-sub001/internal/storage"
)

// reviewStore is the slice of storage.Store the review queue needs.
type reviewStore interface {
	storage.ReviewStore
	storage.ProjectStore
}

// Reviewer runs the QA review queue for submitted projects.
//
// State machine: pending and changes_requested accept transitions; approved
// and rejected are terminal. Approving publishes the project, rejecting marks
// it rejected, requesting changes leaves the project pending so the submitter
// can edit and the queue entry stays workable.
type Reviewer struct {
	store reviewStore
	log   *slog.Logger
}

// NewReviewer returns a Reviewer backed by store.
func NewReviewer(store reviewStore, log *slog.Logger) *Reviewer {
	return &Reviewer{store: store, log: log}
}

// ReviewPage is one page of the review queue.
type ReviewPage struct {
	Reviews []*hub.Review `json:"reviews"`
	Total   int           `json:"total"`
	Offset  int           `json:"offset"`
	Limit   int           `json:"limit"`
}

// List returns a page of the review queue, optionally filtered by state.
func (rv *Reviewer) List(ctx context.Context, state string, offset, limit int) (*ReviewPage, error) {
	if state != "" {
		switch state {
		case hub.ReviewPending, hub.ReviewApproved, hub.ReviewRejected, hub.ReviewChangesNeeded:
		default:
			return nil, fmt.Errorf("%w: unknown review state %q", hub.ErrBadRequest, state)
		}
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	reviews, err := rv.store.ListReviews(ctx, state, offset, limit)
	if err != nil {
		return nil, err
	}
	total, err := rv.store.CountReviews(ctx, state)
	if err != nil {
		return nil, err
	}
	return &ReviewPage{Reviews: reviews, Total: total, Offset: offset, Limit: limit}, nil
}

// Get returns a single review.
func (rv *Reviewer) Get(ctx context.Context, id string) (*hub.Review, error) {
	return rv.store.GetReview(ctx, id)
}

// Approve closes the review as approved and publishes the project.
func (rv *Reviewer) Approve(ctx context.Context, reviewID string, reviewer *hub.Identity, note string) (*hub.Review, error) {
	return rv.resolve(ctx, reviewID, reviewer, hub.ReviewApproved, note, hub.ProjectPublished)
}

// Reject closes the review as rejected and marks the project rejected.
func (rv *Reviewer) Reject(ctx context.Context, reviewID string, reviewer *hub.Identity, note string) (*hub.Review, error) {
	return rv.resolve(ctx, reviewID, reviewer, hub.ReviewRejected, note, hub.ProjectRejected)
}

// RequestChanges sends the review back to the submitter. The review stays
// open and the project stays pending.
func (rv *Reviewer) RequestChanges(ctx context.Context, reviewID string, reviewer *hub.Identity, note string) (*hub.Review, error) {
	if note == "" {
		return nil, fmt.Errorf("%w: a note is required when requesting changes", hub.ErrBadRequest)
	}
	r, err := rv.openReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	r.State = hub.ReviewChangesNeeded
	r.ReviewerID = reviewer.UserID
	r.Note = note
	if err := rv.store.UpdateReview(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// resolve closes a review into a terminal state and moves the project.
func (rv *Reviewer) resolve(ctx context.Context, reviewID string, reviewer *hub.Identity, state, note, projectStatus string) (*hub.Review, error) {
	r, err := rv.openReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	r.State = state
	r.ReviewerID = reviewer.UserID
	r.Note = note
	r.ResolvedAt = &now
	if err := rv.store.UpdateReview(ctx, r); err != nil {
		return nil, err
	}
	if err := rv.store.UpdateProjectStatus(ctx, r.ProjectID, projectStatus); err != nil {
		return nil, err
	}
	rv.log.LogAttrs(ctx, slog.LevelInfo, "review resolved",
		slog.String("review_id", r.ID),
		slog.String("state", state),
		slog.String("reviewer", reviewer.Username))
	return r, nil
}

// openReview loads a review and verifies it still accepts transitions.
func (rv *Reviewer) openReview(ctx context.Context, id string) (*hub.Review, error) {
	r, err := rv.store.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	switch r.State {
	case hub.ReviewPending, hub.ReviewChangesNeeded:
		return r, nil
	default:
		return nil, fmt.Errorf("%w: review is %s", hub.ErrReviewClosed, r.State)
	}
}
