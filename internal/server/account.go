package server

import (
	"net/http"

	hub "github.com/Tejas3545/project-hub-sub001/internal"
	"github.com/Tejas3545/project-hub-sub001/internal/auth"
)

// sessionResponse is the login/register/oauth response body.
type sessionResponse struct {
	User   *hub.User       `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	u, pair, err := s.deps.Accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{User: u, Tokens: pair})
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	u, pair, err := s.deps.Accounts.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: u, Tokens: pair})
}

func (s *server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.RefreshToken == "" {
		writeError(w, hub.ErrUnauthorized)
		return
	}
	pair, err := s.deps.Accounts.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := s.deps.Accounts.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleGitHubStart(w http.ResponseWriter, r *http.Request) {
	if s.deps.OAuth == nil {
		writeError(w, hub.ErrNotFound)
		return
	}
	state := r.URL.Query().Get("state")
	writeJSON(w, http.StatusOK, map[string]string{"url": s.deps.OAuth.AuthURL(state)})
}

func (s *server) handleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	if s.deps.OAuth == nil {
		writeError(w, hub.ErrNotFound)
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	gh, err := s.deps.OAuth.Exchange(r.Context(), req.Code)
	if err != nil {
		writeError(w, hub.ErrUnauthorized)
		return
	}
	u, pair, err := s.deps.Accounts.LoginGitHub(r.Context(), gh)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{User: u, Tokens: pair})
}
