package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage is the persistence surface the handlers need. *Store implements
// it against Postgres; tests substitute an in-memory double.
type Storage interface {
	CreateUser(ctx context.Context, username, passwordHash string) (User, error)
	UserByUsername(ctx context.Context, username string) (User, string, error)
	UserByID(ctx context.Context, id int64) (User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]User, error)

	CreateSession(ctx context.Context) (Session, error)
	SessionByToken(ctx context.Context, token string) (Session, error)
	PromoteSession(ctx context.Context, sessionID, userID int64) (string, error)
	DeleteSession(ctx context.Context, token string) error

	CreateTask(ctx context.Context, ownerID int64, title, description string) (Task, error)
	TasksByOwner(ctx context.Context, ownerID int64) ([]Task, error)
	TaskByID(ctx context.Context, id int64) (Task, error)
	ToggleTask(ctx context.Context, id, ownerID int64) (Task, error)
	DeleteTask(ctx context.Context, id, ownerID int64) error
	AllTasks(ctx context.Context) ([]TaskWithOwner, error)
	Stats(ctx context.Context) (Stats, error)
}

type api struct {
	store Storage
	log   *slog.Logger
}

func newAPI(store Storage, log *slog.Logger) *api {
	return &api{store: store, log: log}
}

func (a *api) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", a.handleIndex)
	mux.HandleFunc("GET /register", a.handleRegisterPage)
	mux.HandleFunc("POST /register", a.handleRegister)
	mux.HandleFunc("GET /login", a.handleLoginPage)
	mux.HandleFunc("POST /login", a.handleLogin)
	mux.HandleFunc("GET /logout", a.handleLogout)
	mux.HandleFunc("GET /dashboard", a.requireAuth(a.handleDashboard))
	mux.HandleFunc("POST /dashboard", a.requireAuth(a.handleDashboardPost))
	mux.HandleFunc("GET /admin", a.requireAdmin(a.handleAdmin))
	mux.HandleFunc("POST /admin", a.requireAdmin(a.handleAdminPost))
	mux.HandleFunc("GET /healthz", a.handleHealth)
}

func (a *api) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, err := a.currentUser(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (a *api) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write([]byte(`{"ok":true}` + "\n"))
}

func parseID(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }

// cookie/session helpers
func (a *api) sessionCookieName() string { return getenv("SESSION_COOKIE_NAME", "tasklite_sess") }
func (a *api) secureCookie() bool        { return getenv("COOKIE_SECURE", "false") == "true" }
func (a *api) sameSite() http.SameSite {
	switch strings.ToLower(getenv("COOKIE_SAMESITE", "lax")) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (a *api) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.sessionCookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secureCookie(),
		SameSite: a.sameSite(),
		Expires:  expires,
		MaxAge:   int(time.Until(expires).Seconds()),
	})
}

func (a *api) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.sessionCookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secureCookie(),
		SameSite: a.sameSite(),
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// ensureSession resolves the caller's session from the cookie, minting a
// fresh anonymous one when the cookie is absent, stale, or unknown.
func (a *api) ensureSession(w http.ResponseWriter, r *http.Request) (Session, error) {
	if c, err := r.Cookie(a.sessionCookieName()); err == nil && c.Value != "" {
		sess, err := a.store.SessionByToken(r.Context(), c.Value)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return Session{}, err
		}
	}
	sess, err := a.store.CreateSession(r.Context())
	if err != nil {
		return Session{}, err
	}
	a.setSessionCookie(w, sess.Token, sess.ExpiresAt)
	return sess, nil
}

// resolveSession resolves the cookie to a live session and its user.
// A dangling user reference counts as anonymous.
func (a *api) resolveSession(r *http.Request) (Session, *User, error) {
	c, err := r.Cookie(a.sessionCookieName())
	if err != nil || c.Value == "" {
		return Session{}, nil, ErrNotFound
	}
	sess, err := a.store.SessionByToken(r.Context(), c.Value)
	if err != nil {
		return Session{}, nil, err
	}
	u, err := a.sessionUser(r.Context(), sess)
	if err != nil {
		return Session{}, nil, err
	}
	return sess, u, nil
}

// currentUser resolves the live user behind the request's session.
func (a *api) currentUser(r *http.Request) (*User, error) {
	_, u, err := a.resolveSession(r)
	return u, err
}

func (a *api) sessionUser(ctx context.Context, sess Session) (*User, error) {
	if !sess.Authenticated() {
		return nil, ErrNotFound
	}
	u, err := a.store.UserByID(ctx, *sess.UserID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// requestIdentity carries the session and user resolved by the auth
// middleware so handlers do not resolve them a second time.
type requestIdentity struct {
	sess Session
	user *User
}

type identityKey struct{}

func withIdentity(r *http.Request, sess Session, u *User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey{}, requestIdentity{sess: sess, user: u}))
}

// identity returns the session and user the middleware resolved for this
// request, bailing out to /login if none was attached.
func (a *api) identity(w http.ResponseWriter, r *http.Request) (Session, *User, bool) {
	id, ok := r.Context().Value(identityKey{}).(requestIdentity)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return Session{}, nil, false
	}
	return id.sess, id.user, true
}

// requireAuth gates a handler behind a valid authenticated session;
// anonymous callers are sent to the login page. The resolved session and
// user travel with the request context.
func (a *api) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, u, err := a.resolveSession(r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, withIdentity(r, sess, u))
	}
}

// requireAdmin additionally enforces the admin-area policy. Non-admins are
// bounced to their dashboard without detail.
func (a *api) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, u, err := a.resolveSession(r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if !canAccessAdminArea(u) {
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
		next(w, withIdentity(r, sess, u))
	}
}

func withLogging(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-Id", reqID)
		sw := &statusWriter{ResponseWriter: w, status: 200}
		start := time.Now()
		next.ServeHTTP(sw, r)
		log.Info("http", "req_id", reqID, "method", r.Method, "path", r.URL.Path,
			"status", sw.status, "dur_ms", time.Since(start).Milliseconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }
