package httpapi

import (
	"net/http"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *Router) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	var body credentialsRequest
	if !r.decodeJSON(w, req, &body) {
		return
	}
	if body.Email == "" || body.Password == "" {
		writeErrorStatus(w, http.StatusBadRequest, "email and password required")
		return
	}
	tokens, err := r.services.Auth.Register(req.Context(), body.Email, body.Password)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, tokens)
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	var body credentialsRequest
	if !r.decodeJSON(w, req, &body) {
		return
	}
	tokens, err := r.services.Auth.Login(req.Context(), body.Email, body.Password)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (r *Router) handleRefresh(w http.ResponseWriter, req *http.Request) {
	var body refreshRequest
	if !r.decodeJSON(w, req, &body) {
		return
	}
	tokens, err := r.services.Auth.Refresh(req.Context(), body.RefreshToken)
	if err != nil {
		r.writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}
