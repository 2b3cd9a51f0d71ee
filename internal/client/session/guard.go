package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/AnthoniusHendriyanto/dashboard-auth/internal/client"
	"go.uber.org/zap"
)

type State int

const (
	Unauthenticated State = iota
	Verifying
	Authenticated
	LoggingOut
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Verifying:
		return "verifying"
	case Authenticated:
		return "authenticated"
	case LoggingOut:
		return "logging out"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var ErrNotAuthenticated = errors.New("session is not authenticated")

type Backend interface {
	VerifyToken(ctx context.Context, token string) (*client.User, error)
	Logout(ctx context.Context, token string) error
}

type Storage interface {
	Token() (string, error)
	SetToken(token string) error
	User() (*client.User, error)
	SetUser(user client.User) error
	ResetEmail() (string, error)
	SetResetEmail(email string) error
	ClearResetEmail() error
	ClearSession() error
}

// Presenter renders guard decisions. Calls happen on the goroutine driving
// the guard.
type Presenter interface {
	ShowIdentity(user client.User)
	RedirectToLogin()
	ShowRetry(err error)
}

// Guard decides whether the protected view may render, using the locally
// stored token and a server round trip.
type Guard struct {
	mu        sync.Mutex
	state     State
	backend   Backend
	store     Storage
	presenter Presenter
	logger    *zap.Logger
}

func NewGuard(backend Backend, store Storage, presenter Presenter, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		state:     Unauthenticated,
		backend:   backend,
		store:     store,
		presenter: presenter,
		logger:    logger,
	}
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Guard) setState(s State) {
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
}

// Open shows the cached identity straight away and then confirms the token
// with the server. Any failure purges local state and redirects to login.
func (g *Guard) Open(ctx context.Context) error {
	token, err := g.store.Token()
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return g.purge()
	}

	g.setState(Verifying)

	cached, err := g.store.User()
	if err != nil {
		g.logger.Warn("cached user unreadable", zap.Error(err))
	}
	if cached != nil {
		g.presenter.ShowIdentity(*cached)
	}

	user, err := g.backend.VerifyToken(ctx, token)
	if err != nil {
		g.logger.Info("stored token rejected", zap.Error(err))
		return g.purge()
	}

	if cached == nil || *cached != *user {
		if err := g.store.SetUser(*user); err != nil {
			g.logger.Warn("failed to refresh cached user", zap.Error(err))
		}
		if cached == nil {
			g.presenter.ShowIdentity(*user)
		}
	}

	g.setState(Authenticated)
	return nil
}

// Logout keeps the session when the server call fails so the user can retry.
// A 401 means the token is already dead, so the session is purged instead.
func (g *Guard) Logout(ctx context.Context) error {
	g.mu.Lock()
	if g.state != Authenticated {
		g.mu.Unlock()
		return ErrNotAuthenticated
	}
	g.state = LoggingOut
	g.mu.Unlock()

	token, err := g.store.Token()
	if err == nil {
		err = g.backend.Logout(ctx, token)
	}
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			g.logger.Info("token rejected during logout", zap.Error(err))
			return g.purge()
		}
		g.setState(Authenticated)
		g.presenter.ShowRetry(err)
		return err
	}

	return g.purge()
}

// Remember stores a freshly issued session after signup or login.
func (g *Guard) Remember(sess client.Session) error {
	if err := g.store.SetToken(sess.Token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := g.store.SetUser(sess.User); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	g.setState(Authenticated)
	return nil
}

func (g *Guard) BeginReset(email string) error {
	return g.store.SetResetEmail(email)
}

func (g *Guard) ResetEmail() (string, error) {
	return g.store.ResetEmail()
}

func (g *Guard) EndReset() error {
	return g.store.ClearResetEmail()
}

func (g *Guard) purge() error {
	err := g.store.ClearSession()
	g.setState(Unauthenticated)
	g.presenter.RedirectToLogin()
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
