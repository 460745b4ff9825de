package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
)

func (s *server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := s.deps.Reviewer.List(r.Context(), q.Get("state"),
		atoiDefault(q.Get("offset"), 0), atoiDefault(q.Get("limit"), 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	rev, err := s.deps.Reviewer.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

// reviewAction decodes the shared note body and runs one queue transition.
func (s *server) reviewAction(w http.ResponseWriter, r *http.Request,
	fn func(id string, reviewer *hub.Identity, note string) (*hub.Review, error),
) {
	var req struct {
		Note string `json:"note"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	rev, err := fn(chi.URLParam(r, "id"), hub.IdentityFromContext(r.Context()), req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rev)
}

func (s *server) handleApproveReview(w http.ResponseWriter, r *http.Request) {
	s.reviewAction(w, r, func(id string, reviewer *hub.Identity, note string) (*hub.Review, error) {
		return s.deps.Reviewer.Approve(r.Context(), id, reviewer, note)
	})
}

func (s *server) handleRejectReview(w http.ResponseWriter, r *http.Request) {
	s.reviewAction(w, r, func(id string, reviewer *hub.Identity, note string) (*hub.Review, error) {
		return s.deps.Reviewer.Reject(r.Context(), id, reviewer, note)
	})
}

func (s *server) handleRequestChanges(w http.ResponseWriter, r *http.Request) {
	s.reviewAction(w, r, func(id string, reviewer *hub.Identity, note string) (*hub.Review, error) {
		return s.deps.Reviewer.RequestChanges(r.Context(), id, reviewer, note)
	})
}
