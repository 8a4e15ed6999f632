package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	testhelpers "github.com/polkiloo/fueldelivery/internal/test"
)

func TestAuthHandlerRegister(t *testing.T) {
	env := newHandlerEnv(t)
	h := NewAuthHandler(env.facade)
	phone := testhelpers.RandomPhone()

	w := performRequest(t, http.MethodPost, "/auth/register", "/auth/register", h.Register, nil, map[string]any{
		"phone":    phone,
		"password": "secret1",
		"name":     "Noa",
		"role":     "driver",
	})
	body := requireSuccess(t, w, http.StatusCreated)
	require.Equal(t, "registered", body["message"])
	require.NotEmpty(t, body["token"])
	require.Equal(t, "Bearer "+body["token"].(string), w.Header().Get("Authorization"))
	require.Contains(t, w.Header().Get("Set-Cookie"), "fueldelivery_token=")

	user := body["user"].(map[string]any)
	require.Equal(t, phone, user["phone"])
	require.Equal(t, "driver", user["role"])
	require.Equal(t, true, user["isActive"])
	require.Equal(t, false, user["isVerified"])
}

func TestAuthHandlerRegisterErrors(t *testing.T) {
	env := newHandlerEnv(t)
	h := NewAuthHandler(env.facade)

	cases := []struct {
		name   string
		body   any
		status int
	}{
		{"malformed", "{", http.StatusBadRequest},
		{"bad phone", map[string]any{"phone": "12345", "password": "secret1", "name": "A"}, http.StatusBadRequest},
		{"short password", map[string]any{"phone": "0541234567", "password": "123", "name": "A"}, http.StatusBadRequest},
		{"staff role", map[string]any{"phone": "0541234567", "password": "secret1", "name": "A", "role": "admin"}, http.StatusBadRequest},
		{"duplicate phone", map[string]any{"phone": env.customer.Phone, "password": "secret1", "name": "A"}, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := performRequest(t, http.MethodPost, "/auth/register", "/auth/register", h.Register, nil, tc.body)
			requireFailure(t, w, tc.status)
		})
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	env := newHandlerEnv(t)
	h := NewAuthHandler(env.facade)

	w := performRequest(t, http.MethodPost, "/auth/login", "/auth/login", h.Login, nil, map[string]any{
		"phone": env.customer.Phone, "password": "password",
	})
	body := requireSuccess(t, w, http.StatusOK)
	require.Equal(t, "logged in", body["message"])
	require.Equal(t, "token-4", body["token"])
	require.NotEmpty(t, body["user"].(map[string]any)["lastLogin"])

	w = performRequest(t, http.MethodPost, "/auth/login", "/auth/login", h.Login, nil, map[string]any{
		"phone": env.customer.Phone, "password": "wrong-password",
	})
	requireFailure(t, w, http.StatusUnauthorized)

	w = performRequest(t, http.MethodPost, "/auth/login", "/auth/login", h.Login, nil, map[string]any{
		"phone": "0599999999", "password": "password",
	})
	requireFailure(t, w, http.StatusUnauthorized)

	_, err := env.users.SetActive(context.Background(), env.driver.ID, false)
	require.NoError(t, err)
	w = performRequest(t, http.MethodPost, "/auth/login", "/auth/login", h.Login, nil, map[string]any{
		"phone": env.driver.Phone, "password": "password",
	})
	requireFailure(t, w, http.StatusForbidden)
}

func TestAuthHandlerMe(t *testing.T) {
	env := newHandlerEnv(t)
	h := NewAuthHandler(env.facade)

	w := performRequest(t, http.MethodGet, "/me", "/me", h.Me, actorOf(env.supervisor), nil)
	body := requireSuccess(t, w, http.StatusOK)
	user := body["user"].(map[string]any)
	require.EqualValues(t, env.supervisor.ID, user["id"])
	require.Equal(t, "approval_supervisor", user["role"])
}
