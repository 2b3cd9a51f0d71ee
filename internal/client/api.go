package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type User struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
}

type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// APIError is a non-2xx answer from the auth server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth server returned %d", e.Status)
	}
	return fmt.Sprintf("auth server returned %d: %s", e.Status, e.Message)
}

// Client talks to the dashboard auth HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	var out Session
	err := c.do(ctx, http.MethodPost, "/api/signup", "", map[string]string{
		"name": name, "email": email, "password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var out Session
	err := c.do(ctx, http.MethodPost, "/api/login", "", map[string]string{
		"email": email, "password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FederatedLogin(ctx context.Context, identityToken string) (*Session, error) {
	var out Session
	err := c.do(ctx, http.MethodPost, "/api/federated-login", "", map[string]string{
		"identityToken": identityToken,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ForgotPassword returns the server's devNote, which is empty outside
// development builds.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var out struct {
		Message string `json:"message"`
		DevNote string `json:"devNote"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/forgot-password", "", map[string]string{"email": email}, &out); err != nil {
		return "", err
	}
	return out.DevNote, nil
}

func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/api/reset-password", "", map[string]string{
		"email": email, "otp": otp, "newPassword": newPassword,
	}, nil)
}

func (c *Client) VerifyToken(ctx context.Context, token string) (*User, error) {
	var out struct {
		Valid bool `json:"valid"`
		User  User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/verify-token", token, nil, &out); err != nil {
		return nil, err
	}
	if !out.Valid {
		return nil, &APIError{Status: http.StatusUnauthorized, Message: "Invalid token"}
	}
	return &out.User, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/logout", token, nil, nil)
}

func (c *Client) IdentityProviderClientID(ctx context.Context) (string, error) {
	var out struct {
		ClientID string `json:"clientId"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/identity-provider-client-id", "", nil, &out); err != nil {
		return "", err
	}
	return out.ClientID, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal(raw, &failure)
		msg := failure.Message
		if msg == "" {
			msg = failure.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
