package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/polyglot-playground/internal/auth"
	"github.com/sakif/polyglot-playground/internal/service"
)

type LoginRequest struct {
	Password string `json:"password"`
}

// AuthHandler manages the operator session cookie.
//
// HandleLogin sets the cookie and HandleLogout clears it.
type AuthHandler struct {
	auth          *service.AuthService
	secureCookies bool
	logger        *slog.Logger
}

// NewAuthHandler creates an AuthHandler. secureCookies marks the cookie Secure,
// which browsers only send over HTTPS.
func NewAuthHandler(svc *service.AuthService, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:          svc,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// HandleLogin checks the operator password and issues the session cookie.
//
// HTTP: POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, 4<<10, &req); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.auth.Login(r.Context(), req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	auth.SetSessionCookie(w, session.Token, session.ExpiresAt, h.secureCookies)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged in"})
}

// HandleLogout clears the session cookie. The JWT itself stays valid until it
// expires; there is no server-side revocation list.
//
// HTTP: POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}
