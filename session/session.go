// Package session holds per-browser state on the server: the bearer token,
// a snapshot of the signed-in user, and flash notifications waiting to be
// shown. A cookie carries only the session ID.
package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/itsneelabh/storefront/api"
)

// Level is the severity of a flash notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is a transient message shown on the next rendered page
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Session is one browser's state. Token and User are set and cleared
// together.
type Session struct {
	ID        string         `json:"id"`
	Token     string         `json:"token,omitempty"`
	User      *api.User      `json:"user,omitempty"`
	Flashes   []Notification `json:"flashes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// CurrentUser returns the signed-in user, or nil
func (s *Session) CurrentUser() *api.User {
	if !s.IsAuthenticated() {
		return nil
	}
	return s.User
}

// Role returns the signed-in user's role, or "" for anonymous sessions
func (s *Session) Role() api.Role {
	if u := s.CurrentUser(); u != nil {
		return u.Role
	}
	return ""
}

// IsAuthenticated reports a token that has not visibly expired. Tokens
// without a readable exp claim count as valid; the API has the last word.
func (s *Session) IsAuthenticated() bool {
	if s == nil || s.Token == "" {
		return false
	}
	if exp, ok := s.TokenExpiry(); ok && !exp.After(time.Now()) {
		return false
	}
	return true
}

// TokenExpiry reads the exp claim of a JWT bearer token without verifying
// its signature. ok is false for opaque tokens or tokens without exp.
func (s *Session) TokenExpiry() (exp time.Time, ok bool) {
	if s == nil || s.Token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, claims); err != nil {
		return time.Time{}, false
	}
	numeric, err := claims.GetExpirationTime()
	if err != nil || numeric == nil {
		return time.Time{}, false
	}
	return numeric.Time, true
}

// SignIn stores the credential and the user snapshot
func (s *Session) SignIn(token string, user *api.User) {
	s.Token = token
	if user != nil {
		u := *user
		s.User = &u
	} else {
		s.User = nil
	}
}

// SignOut clears the credential and the user snapshot
func (s *Session) SignOut() {
	s.Token = ""
	s.User = nil
}

// AddFlash queues a notification for the next page
func (s *Session) AddFlash(level Level, message string) {
	s.Flashes = append(s.Flashes, Notification{Level: level, Message: message})
}

// PopFlashes returns and clears queued notifications
func (s *Session) PopFlashes() []Notification {
	out := s.Flashes
	s.Flashes = nil
	return out
}

// Expired reports whether the session itself has outlived its TTL
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

func (s *Session) clone() *Session {
	cp := *s
	if s.User != nil {
		u := *s.User
		cp.User = &u
	}
	if s.Flashes != nil {
		cp.Flashes = append([]Notification(nil), s.Flashes...)
	}
	return &cp
}

// Manager stores sessions. Get returns an error wrapping
// core.ErrSessionNotFound or core.ErrSessionExpired when there is no
// usable session for the ID.
type Manager interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Config tunes a Manager
type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	KeyPrefix       string
}

// DefaultConfig returns the settings used when none are given
func DefaultConfig() Config {
	return Config{
		TTL:             24 * time.Hour,
		CleanupInterval: 5 * time.Minute,
		KeyPrefix:       "storefront:session",
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TTL <= 0 {
		c.TTL = d.TTL
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = d.CleanupInterval
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = d.KeyPrefix
	}
	return c
}
