package views

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/session"
)

// recorder captures notifications and redirects
type recorder struct {
	mu        sync.Mutex
	successes []string
	errors    []string
	infos     []string
	redirects []string
}

func (r *recorder) Success(msg string) {
	r.mu.Lock()
	r.successes = append(r.successes, msg)
	r.mu.Unlock()
}
func (r *recorder) Error(msg string) { r.mu.Lock(); r.errors = append(r.errors, msg); r.mu.Unlock() }
func (r *recorder) Info(msg string)  { r.mu.Lock(); r.infos = append(r.infos, msg); r.mu.Unlock() }
func (r *recorder) Redirect(p string) {
	r.mu.Lock()
	r.redirects = append(r.redirects, p)
	r.mu.Unlock()
}

func (r *recorder) lastRedirect() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.redirects) == 0 {
		return ""
	}
	return r.redirects[len(r.redirects)-1]
}

func (r *recorder) errorList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.errors...)
}

func (r *recorder) successList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.successes...)
}

var (
	customer = &api.User{ID: 1, Email: "ada@example.com", FullName: "Ada Lovelace", Role: api.RoleCustomer}
	merchant = &api.User{ID: 2, Email: "grace@example.com", FullName: "Grace Hopper", Role: api.RoleMerchant, StoreName: "Compilers"}
	admin    = &api.User{ID: 3, Email: "root@example.com", Role: api.RoleAdmin}
)

// newHost wires a Host to a fake backend. A nil user means anonymous.
func newHost(t *testing.T, backend http.Handler, user *api.User) (*Host, *recorder) {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	sess := &session.Session{ID: "test-session"}
	if user != nil {
		sess.SignIn("test-token", user)
	}
	rec := &recorder{}
	return &Host{
		Client:    api.NewClient(srv.URL, api.WithHTTPClient(srv.Client())),
		Session:   sess,
		Notifier:  rec,
		Navigator: rec,
	}, rec
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func detail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

func ptr[T any](v T) *T { return &v }
