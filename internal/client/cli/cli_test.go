package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer answers the subset of the auth API the CLI uses.
func fakeServer(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")

		var in map[string]string
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&in)
		}

		switch r.URL.Path {
		case "/api/login", "/api/signup":
			if in["password"] != "pw123" {
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true, "token": "tok",
				"user": map[string]string{"id": "u1", "name": "Alice", "email": "a@x.com"},
			})
		case "/api/verify-token":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid token"})
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"valid": true, "user": map[string]string{"id": "u1", "name": "Alice", "email": "a@x.com"},
			})
		case "/api/logout":
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Logged out successfully"})
		case "/api/forgot-password":
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "OTP sent successfully"})
		case "/api/reset-password":
			assert.Equal(t, "a@x.com", in["email"])
			assert.Equal(t, "123456", in["otp"])
			assert.Equal(t, "pw123", in["newPassword"])
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Password reset successful"})
		case "/api/identity-provider-client-id":
			_ = json.NewEncoder(w).Encode(map[string]string{"clientId": "cid.apps.googleusercontent.com"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

// stubPassword replaces the terminal prompt for the duration of the test.
func stubPassword(t *testing.T, password string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return []byte(password), nil }
}

func run(t *testing.T, cfg Config, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Run(context.Background(), cfg, args, strings.NewReader(stdin), &out, nil)
	return out.String(), err
}

func TestRun_LoginStatusLogout(t *testing.T) {
	srv, calls := fakeServer(t)
	stubPassword(t, "pw123")
	cfg := Config{Server: srv.URL, StatePath: filepath.Join(t.TempDir(), "state.db")}

	// The email comes from stdin, the password from the stubbed terminal
	out, err := run(t, cfg, "a@x.com\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Alice <a@x.com>")

	// A new invocation reopens the stored session and verifies it
	out, err = run(t, cfg, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Alice <a@x.com>")

	out, err = run(t, cfg, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	// No token is left, so status does not call the server
	out, err = run(t, cfg, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	assert.Equal(t, []string{"/api/login", "/api/verify-token", "/api/verify-token", "/api/logout"}, *calls)
}

func TestRun_LoginRejected(t *testing.T) {
	srv, _ := fakeServer(t)
	stubPassword(t, "wrong")
	cfg := Config{Server: srv.URL, StatePath: filepath.Join(t.TempDir(), "state.db")}

	_, err := run(t, cfg, "", "login", "-email", "a@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestRun_ForgotThenReset(t *testing.T) {
	srv, _ := fakeServer(t)
	stubPassword(t, "pw123")
	cfg := Config{Server: srv.URL, StatePath: filepath.Join(t.TempDir(), "state.db")}

	out, err := run(t, cfg, "", "forgot", "-email", "a@x.com")
	require.NoError(t, err)
	assert.Contains(t, out, "reset code was sent to a@x.com")

	// reset picks up the email remembered by forgot
	out, err = run(t, cfg, "123456\n", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Password reset successful")

	// The pending email is cleared once the reset succeeds.
	out, err = run(t, cfg, "", "reset", "-otp", "123456")
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, out, "No pending reset")
}

func TestRun_ClientID(t *testing.T) {
	srv, _ := fakeServer(t)
	cfg := Config{Server: srv.URL, StatePath: filepath.Join(t.TempDir(), "state.db")}

	out, err := run(t, cfg, "", "client-id")
	require.NoError(t, err)
	assert.Equal(t, "cid.apps.googleusercontent.com\n", out)
}

func TestRun_Usage(t *testing.T) {
	cfg := Config{Server: DefaultServer, StatePath: filepath.Join(t.TempDir(), "state.db")}

	out, err := run(t, cfg, "")
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, out, "usage: dashctl")

	out, err = run(t, cfg, "", "frobnicate")
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, out, `unknown command "frobnicate"`)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("DASHCTL_SERVER", "https://auth.example.com")
	t.Setenv("DASHCTL_STATE", "/tmp/dashctl-test.db")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://auth.example.com", cfg.Server)
	assert.Equal(t, "/tmp/dashctl-test.db", cfg.StatePath)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DASHCTL_SERVER", "")
	t.Setenv("DASHCTL_STATE", "")
	require.NoError(t, os.Unsetenv("DASHCTL_SERVER"))
	require.NoError(t, os.Unsetenv("DASHCTL_STATE"))
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultServer, cfg.Server)
	assert.Equal(t, "state.db", filepath.Base(cfg.StatePath))
	assert.Equal(t, "dashctl", filepath.Base(filepath.Dir(cfg.StatePath)))
}
