// Package app implements the application core of the editor backend:
// account handling, work/file-tree lifecycle with cascading deletes,
// multi-page input bookkeeping, payments, and settings. All persistence
// goes through store.Store; handlers stay thin.
package app

import (
	"fmt"
	"strings"
	"time"

	"didactax/pkg/auth"
	"didactax/pkg/domain"
	"didactax/pkg/store"
)

const defaultDashboardPageSize = 5

// Config wires required dependencies for the application core.
type Config struct {
	Store             store.Store
	Sessions          store.SessionStore
	DashboardPageSize int
}

// App is the application service on top of the record store.
type App struct {
	store    store.Store
	sessions store.SessionStore
	pageSize int
	now      func() time.Time
}

// New constructs the application core.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	pageSize := cfg.DashboardPageSize
	if pageSize <= 0 {
		pageSize = defaultDashboardPageSize
	}
	return &App{
		store:    cfg.Store,
		sessions: cfg.Sessions,
		pageSize: pageSize,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Register creates an account and opens a session for it.
func (a *App) Register(email, password, name string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return domain.User{}, "", ErrEmailAndPasswordRequired
	}
	if err := auth.ValidatePassword(password); err != nil {
		return domain.User{}, "", err
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", ErrEmailAlreadyExists
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}
	now := a.now()
	id, err := a.store.CreateUser(domain.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		Streak:       0,
		CreatedAt:    now,
		LastLogin:    now,
	})
	if err != nil {
		return domain.User{}, "", fmt.Errorf("create user: %w", err)
	}
	user, _, err := a.store.GetUser(id)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	token, err := a.sessions.NewSession(id)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("open session: %w", err)
	}
	return user, token, nil
}

// Login checks credentials, refreshes the daily streak, and opens a
// session. The streak grows by one on a consecutive-day login, resets
// to one after a gap, and is unchanged on a same-day login.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}

	now := a.now()
	switch daysBetween(user.LastLogin, now) {
	case 0:
		// Same-day login keeps the streak.
	case 1:
		user.Streak++
	default:
		user.Streak = 1
	}
	user.LastLogin = now
	if err := a.store.UpdateUser(user.ID, map[string]any{
		"streak":     user.Streak,
		"last_login": now,
	}); err != nil {
		return domain.User{}, "", fmt.Errorf("update login state: %w", err)
	}

	token, err := a.sessions.NewSession(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("open session: %w", err)
	}
	return user, token, nil
}

// Logout closes the session for the token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// UserFromToken resolves a session token to its user.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	userID, ok, err := a.sessions.GetUserIDByToken(token)
	if err != nil || !ok {
		return domain.User{}, false
	}
	user, ok, err := a.store.GetUser(userID)
	if err != nil || !ok {
		return domain.User{}, false
	}
	return user, true
}

// UpdateProfile changes the display name.
func (a *App) UpdateProfile(userID uint, name string) (domain.User, error) {
	if err := a.store.UpdateUser(userID, map[string]any{"name": strings.TrimSpace(name)}); err != nil {
		return domain.User{}, err
	}
	user, _, err := a.store.GetUser(userID)
	return user, err
}

// daysBetween counts whole calendar days (UTC) from a to b.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}
