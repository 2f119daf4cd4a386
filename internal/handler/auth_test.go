package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/polyglot-playground/internal/auth"
	"github.com/sakif/polyglot-playground/internal/handler"
	"github.com/sakif/polyglot-playground/internal/service"
)

func newAuthRouter(t *testing.T) (http.Handler, *auth.TokenService) {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceWithCost(bcrypt.MinCost)
	hash, err := passwords.Hash("open sesame")
	require.NoError(t, err)
	svc, err := service.NewAuthService(tokens, passwords, hash, testLogger())
	require.NoError(t, err)

	h := handler.NewAuthHandler(svc, false, testLogger())
	r := chi.NewRouter()
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/logout", h.HandleLogout)
	return r, tokens
}

func TestAuthHandler_Login(t *testing.T) {
	r, tokens := newAuthRouter(t)

	rr := do(t, r, http.MethodPost, "/auth/login", handler.LoginRequest{Password: "open sesame"})

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.False(t, cookies[0].Secure)

	subject, err := tokens.Validate(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, service.OperatorSubject, subject)
}

func TestAuthHandler_LoginWrongPassword(t *testing.T) {
	r, _ := newAuthRouter(t)

	rr := do(t, r, http.MethodPost, "/auth/login", handler.LoginRequest{Password: "guess"})

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"unauthorized","message":"invalid password"}`, rr.Body.String())
	assert.Empty(t, rr.Result().Cookies())
}

func TestAuthHandler_Logout(t *testing.T) {
	r, _ := newAuthRouter(t)

	rr := do(t, r, http.MethodPost, "/auth/logout", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Less(t, cookies[0].MaxAge, 0)
}
