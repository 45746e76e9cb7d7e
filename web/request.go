package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/core"
	"github.com/itsneelabh/storefront/session"
	"github.com/itsneelabh/storefront/views"
)

// request ties one gin request to the controllers it drives. It is the
// controllers' Notifier and Navigator: notifications become session flashes
// and the last redirect wins. Controllers may notify from several
// goroutines at once.
type request struct {
	c    *gin.Context
	s    *Server
	sess *session.Session

	mu         sync.Mutex
	redirectTo string
	committed  bool
}

func requestFrom(c *gin.Context) *request {
	if v, ok := c.Get(requestKey); ok {
		if r, ok := v.(*request); ok {
			return r
		}
	}
	return nil
}

func (r *request) flash(level session.Level, msg string) {
	r.mu.Lock()
	r.sess.AddFlash(level, msg)
	r.mu.Unlock()
}

func (r *request) Success(msg string) { r.flash(session.LevelSuccess, msg) }
func (r *request) Error(msg string)   { r.flash(session.LevelError, msg) }
func (r *request) Info(msg string)    { r.flash(session.LevelInfo, msg) }

func (r *request) Redirect(path string) {
	r.mu.Lock()
	r.redirectTo = path
	r.mu.Unlock()
}

func (r *request) redirected() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redirectTo
}

// confirmed reads the confirmation the page's form carries for
// destructive actions
func (r *request) confirmed(prompt string) bool {
	switch r.c.PostForm("confirmed") {
	case "true", "on", "1", "yes":
		return true
	}
	core.LogInfo(r.c.Request.Context(), r.s.logger, "Action not confirmed", map[string]interface{}{"prompt": prompt})
	return false
}

// host builds the controller host for this request
func (r *request) host() *views.Host {
	return &views.Host{
		Client:    r.s.client,
		Session:   r.sess,
		Notifier:  r,
		Navigator: r,
		Logger:    r.s.logger,
		Confirm:   r.confirmed,
	}
}

// commit persists the session once. It must run before the response is
// written so the next page sees this request's flashes.
func (r *request) commit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.committed {
		return
	}
	r.committed = true
	if err := r.s.sessions.Save(r.c.Request.Context(), r.sess); err != nil {
		core.LogError(r.c.Request.Context(), r.s.logger, "Session save failed", map[string]interface{}{
			"session_id": r.sess.ID,
			"error":      err.Error(),
		})
	}
}

// rotate moves the session's contents under a fresh id and deletes the
// old one, so an id known before sign-in never becomes an authenticated
// session. On a store failure the old session is kept.
func (r *request) rotate() {
	ctx := r.c.Request.Context()
	fresh, err := r.s.sessions.Create(ctx)
	if err != nil {
		core.LogError(ctx, r.s.logger, "Session rotate failed", map[string]interface{}{"error": err.Error()})
		return
	}

	r.mu.Lock()
	old := r.sess
	fresh.Token, fresh.User, fresh.Flashes = old.Token, old.User, old.Flashes
	r.sess = fresh
	r.mu.Unlock()

	if err := r.s.sessions.Delete(ctx, old.ID); err != nil {
		core.LogWarn(ctx, r.s.logger, "Old session delete failed", map[string]interface{}{
			"session_id": old.ID,
			"error":      err.Error(),
		})
	}
	r.s.setSessionCookie(r.c, fresh.ID)
}

// finish ends an action: it follows the controller's redirect, or fallback
// when there was none
func (r *request) finish(fallback string) {
	target := r.redirected()
	if target == "" {
		target = fallback
	}
	r.commit()
	r.c.Redirect(http.StatusSeeOther, target)
}

// pageData is what every template receives
type pageData struct {
	Title     string
	Path      string
	RequestID string
	Year      int
	Nav       *views.NavShell
	Flashes   []session.Notification
	Page      interface{}
}

// render shows a page, unless the controller asked to go elsewhere
func (r *request) render(status int, name, title string, page interface{}) {
	if target := r.redirected(); target != "" {
		r.commit()
		r.c.Redirect(http.StatusSeeOther, target)
		return
	}

	r.mu.Lock()
	flashes := r.sess.PopFlashes()
	r.mu.Unlock()
	r.commit()

	r.c.HTML(status, name, pageData{
		Title:     title,
		Path:      r.c.Request.URL.Path,
		RequestID: r.c.GetString(requestIDKey),
		Year:      time.Now().Year(),
		Nav:       views.NewNavShell(r.host()),
		Flashes:   flashes,
		Page:      page,
	})
}

// loadFailed records a page whose data did not fully load
func (r *request) loadFailed(page string, err error) {
	if err == nil {
		return
	}
	ctx := r.c.Request.Context()
	if r.s.metrics != nil {
		r.s.metrics.RecordPageError(ctx, page, api.KindOf(err).String())
	}
	r.c.Error(err)
}

// renderError shows the error page. It works with or without a session.
func (s *Server) renderError(c *gin.Context, status int, msg string) {
	if r := requestFrom(c); r != nil {
		r.render(status, "error.html", http.StatusText(status), errorPage{Status: status, Message: msg})
		return
	}
	c.HTML(status, "error.html", pageData{
		Title:     http.StatusText(status),
		Path:      c.Request.URL.Path,
		RequestID: c.GetString(requestIDKey),
		Year:      time.Now().Year(),
		Nav:       views.NewNavShell(&views.Host{Session: &session.Session{}}),
		Page:      errorPage{Status: status, Message: msg},
	})
}

type errorPage struct {
	Status  int
	Message string
}
