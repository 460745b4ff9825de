package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
	"github.com/Tejas3545/project-hub-sub001/internal/app"
)

func (s *server) handleListDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := s.deps.Catalog.ListDomains(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"domains": domains})
}

func (s *server) handleCreateDomain(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	d, err := s.deps.Catalog.CreateDomain(r.Context(), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := hub.ProjectFilter{
		Difficulty: q.Get("difficulty"),
		Source:     q.Get("source"),
		Search:     q.Get("q"),
		Offset:     atoiDefault(q.Get("offset"), 0),
		Limit:      atoiDefault(q.Get("limit"), 0),
	}
	if slug := q.Get("domain"); slug != "" {
		d, err := s.deps.Catalog.ListDomains(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		for _, dom := range d {
			if dom.Slug == slug {
				f.DomainID = dom.ID
				break
			}
		}
		if f.DomainID == "" {
			writeError(w, hub.ErrNotFound)
			return
		}
	}
	page, err := s.deps.Catalog.ListProjects(r.Context(), f, false)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Catalog.GetProject(r.Context(), chi.URLParam(r, "slug"), hub.IdentityFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleSubmitProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Domain      string `json:"domain"`
		Title       string `json:"title"`
		Summary     string `json:"summary"`
		Description string `json:"description"`
		Difficulty  string `json:"difficulty"`
		RepoURL     string `json:"repo_url"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.deps.Catalog.SubmitProject(r.Context(), hub.IdentityFromContext(r.Context()), app.SubmitProjectOpts{
		DomainSlug:  req.Domain,
		Title:       req.Title,
		Summary:     req.Summary,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		RepoURL:     req.RepoURL,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.Stats.Leaderboard(r.Context(), atoiDefault(r.URL.Query().Get("limit"), 0))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
