package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer points a Client at an httptest server running handler.
func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", srv.Client())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_Login(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in["password"] != "pw123" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"token":   "tok",
			"user":    map[string]string{"id": "u1", "name": "Alice", "email": in["email"]},
		})
	})

	sess, err := c.Login(context.Background(), "a@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
	assert.Equal(t, User{ID: "u1", Name: "Alice", Email: "a@x.com"}, sess.User)

	_, err = c.Login(context.Background(), "a@x.com", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestClient_SignupAndFederatedLogin(t *testing.T) {
	var paths []string
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if r.URL.Path == "/api/federated-login" {
			assert.Equal(t, "id-token", in["identityToken"])
		} else {
			assert.Equal(t, "Alice", in["name"])
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "token": "t", "user": map[string]string{"id": "u"}})
	})

	_, err := c.Signup(context.Background(), "Alice", "a@x.com", "pw")
	require.NoError(t, err)
	_, err = c.FederatedLogin(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/signup", "/api/federated-login"}, paths)
}

func TestClient_PasswordReset(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		switch r.URL.Path {
		case "/api/forgot-password":
			writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent successfully", "devNote": "note"})
		case "/api/reset-password":
			assert.Equal(t, "newpw", in["newPassword"])
			if in["otp"] != "123456" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid OTP"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successful"})
		}
	})

	note, err := c.ForgotPassword(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "note", note)

	assert.NoError(t, c.ResetPassword(context.Background(), "a@x.com", "123456", "newpw"))

	err = c.ResetPassword(context.Background(), "a@x.com", "000000", "newpw")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid OTP", apiErr.Message)
}

func TestClient_VerifyTokenAndLogout(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
			return
		}
		switch r.URL.Path {
		case "/api/verify-token":
			assert.Equal(t, http.MethodGet, r.Method)
			writeJSON(w, http.StatusOK, map[string]any{"valid": true, "user": map[string]string{"id": "u1", "email": "a@x.com"}})
		case "/api/logout":
			assert.Equal(t, http.MethodPost, r.Method)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
		}
	})

	user, err := c.VerifyToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = c.VerifyToken(context.Background(), "bad")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	assert.NoError(t, c.Logout(context.Background(), "good"))
	assert.Error(t, c.Logout(context.Background(), "bad"))
}

func TestClient_IdentityProviderClientID(t *testing.T) {
	configured := true
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if !configured {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Google Client ID not configured"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"clientId": "cid"})
	})

	id, err := c.IdentityProviderClientID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cid", id)

	configured = false
	_, err = c.IdentityProviderClientID(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Google Client ID not configured", apiErr.Message)
	assert.Contains(t, apiErr.Error(), "500")
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := New(srv.URL, srv.Client())
	srv.Close()

	_, err := c.VerifyToken(context.Background(), "tok")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
