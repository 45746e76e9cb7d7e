// Package views contains one controller per storefront page. A controller
// owns its remote resources, its local filter state and the derived views
// over them; it reports outcomes through a Notifier and moves the browser
// through a Navigator, so the same controller can be driven by the web
// host or by a test.
package views

import (
	"context"
	"fmt"

	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/core"
	"github.com/itsneelabh/storefront/session"
)

// Notifier shows transient messages to the user
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// Navigator moves the user to another page
type Navigator interface {
	Redirect(path string)
}

// ConfirmFunc asks the user to confirm a destructive action
type ConfirmFunc func(prompt string) bool

// Host is everything a page controller needs from its surroundings. One
// Host is built per request.
type Host struct {
	Client    *api.Client
	Session   *session.Session
	Notifier  Notifier
	Navigator Navigator
	Logger    core.Logger
	Confirm   ConfirmFunc
}

// client returns an API client carrying the session's token, if any
func (h *Host) client() *api.Client {
	if h.Session.IsAuthenticated() {
		return h.Client.WithToken(h.Session.Token)
	}
	return h.Client
}

func (h *Host) logger() core.Logger {
	if h.Logger == nil {
		return core.NoOpLogger{}
	}
	return h.Logger
}

func (h *Host) confirm(prompt string) bool {
	if h.Confirm == nil {
		return true
	}
	return h.Confirm(prompt)
}

// surface reports a failed API call the way every page does: the
// backend's message is shown unless the failure was a 401, and the error is
// logged. Transport and decode failures are only logged.
func (h *Host) surface(ctx context.Context, op string, err error) {
	if err == nil {
		return
	}
	core.LogError(ctx, h.logger(), "API call failed", map[string]interface{}{
		"operation": op,
		"kind":      api.KindOf(err).String(),
		"status":    api.StatusOf(err),
		"error":     err.Error(),
	})

	status := api.StatusOf(err)
	if status == 0 || api.IsUnauthenticated(err) {
		return
	}
	h.Notifier.Error(fmt.Sprintf("Error: %s", err.Error()))
}

// requireLogin sends anonymous users to the login page
func (h *Host) requireLogin(msg string) bool {
	if h.Session.IsAuthenticated() {
		return true
	}
	if msg != "" {
		h.Notifier.Error(msg)
	}
	h.Navigator.Redirect(LoginPath)
	return false
}

// Paths the controllers redirect to
const (
	HomePath     = "/"
	LoginPath    = "/auth/login"
	CartPath     = "/cart"
	OrdersPath   = "/orders"
	AdminPath    = "/admin"
	MerchantPath = "/merchant"
)

// HomeFor is where a freshly signed-in user lands
func HomeFor(role api.Role) string {
	switch role {
	case api.RoleAdmin:
		return AdminPath
	case api.RoleMerchant:
		return MerchantPath
	default:
		return HomePath
	}
}

// ValidationError is a form problem caught before any request is sent
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// errNotSignedIn is returned by actions refused to anonymous users
var errNotSignedIn = fmt.Errorf("not signed in: %w", core.ErrSessionNotFound)
