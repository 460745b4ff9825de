package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
)

func (s *server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	id := hub.IdentityFromContext(r.Context())
	marks, err := s.deps.Library.ListBookmarks(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookmarks": marks})
}

func (s *server) handleAddBookmark(w http.ResponseWriter, r *http.Request) {
	id := hub.IdentityFromContext(r.Context())
	if err := s.deps.Library.AddBookmark(r.Context(), id.UserID, chi.URLParam(r, "projectID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleRemoveBookmark(w http.ResponseWriter, r *http.Request) {
	id := hub.IdentityFromContext(r.Context())
	if err := s.deps.Library.RemoveBookmark(r.Context(), id.UserID, chi.URLParam(r, "projectID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleListProgress(w http.ResponseWriter, r *http.Request) {
	id := hub.IdentityFromContext(r.Context())
	progress, err := s.deps.Library.ListProgress(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"progress": progress})
}

func (s *server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status  string `json:"status"`
		Percent int    `json:"percent"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	id := hub.IdentityFromContext(r.Context())
	update, err := s.deps.Library.UpdateProgress(r.Context(), id.UserID, chi.URLParam(r, "projectID"), req.Status, req.Percent)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, update)
}

func (s *server) handleListAchievements(w http.ResponseWriter, r *http.Request) {
	id := hub.IdentityFromContext(r.Context())
	achievements, err := s.deps.Library.ListAchievements(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"achievements": achievements})
}

func (s *server) handleAchievementCatalog(w http.ResponseWriter, r *http.Request) {
	achievements, err := s.deps.Library.AchievementCatalog(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"achievements": achievements})
}

func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	id := hub.IdentityFromContext(r.Context())
	u, err := s.deps.Accounts.User(r.Context(), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
