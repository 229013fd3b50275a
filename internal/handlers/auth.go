package handlers

import (
	"net/http"

	"github.com/diewo77/bill-ease/auth"
	"github.com/diewo77/bill-ease/httpx"
	"github.com/diewo77/bill-ease/internal/services"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users    *services.UserService
	sessions *auth.Manager
	logger   *zap.Logger
}

func NewAuthHandler(users *services.UserService, sessions *auth.Manager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions, logger: logger}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := httpx.Decode(w, r, maxJSONBody, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.users.Signup(r.Context(), services.SignupInput{Email: in.Email, Password: in.Password, Name: in.Name})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.sessions.Issue(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := httpx.Decode(w, r, maxJSONBody, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.users.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.sessions.Issue(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}
