package main

import (
	"errors"
	"net/http"
	"strings"
)

const (
	msgSecurityFailed   = "Security validation failed. Please try again."
	msgBadCredentials   = "Invalid username or password."
	msgInternalError    = "Something went wrong. Please try again."
	msgUsernameTaken    = "Username already exists. Please choose another."
	msgFieldsRequired   = "All fields are required."
	msgUsernameTooShort = "Username must be at least 3 characters long."
	msgPasswordMismatch = "Passwords do not match."
)

type authPage struct {
	CSRFToken string
	Error     string
	Success   string
}

func (a *api) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := a.currentUser(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	sess, err := a.ensureSession(w, r)
	if err != nil {
		a.log.Error("ensure session", "err", err)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}
	a.render(w, http.StatusOK, "login", authPage{CSRFToken: sess.CSRFToken})
}

func (a *api) handleLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := a.currentUser(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	sess, err := a.ensureSession(w, r)
	if err != nil {
		a.log.Error("ensure session", "err", err)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}
	if !validCSRF(sess, r.PostFormValue("csrf_token")) {
		a.render(w, http.StatusForbidden, "login", authPage{CSRFToken: sess.CSRFToken, Error: msgSecurityFailed})
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		a.render(w, http.StatusBadRequest, "login", authPage{CSRFToken: sess.CSRFToken, Error: "Please enter both username and password."})
		return
	}
	// One generic failure message whether the username is unknown or the
	// password is wrong, so accounts cannot be enumerated.
	u, hash, err := a.store.UserByUsername(r.Context(), username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		a.log.Error("login lookup", "err", err)
		a.render(w, http.StatusInternalServerError, "login", authPage{CSRFToken: sess.CSRFToken, Error: msgInternalError})
		return
	}
	if errors.Is(err, ErrNotFound) || !verifyPassword(password, hash) {
		a.render(w, http.StatusUnauthorized, "login", authPage{CSRFToken: sess.CSRFToken, Error: msgBadCredentials})
		return
	}
	// Same session row, rotated token: the pre-login session id never
	// survives privilege elevation.
	token, err := a.store.PromoteSession(r.Context(), sess.ID, u.ID)
	if err != nil {
		a.log.Error("promote session", "err", err)
		a.render(w, http.StatusInternalServerError, "login", authPage{CSRFToken: sess.CSRFToken, Error: msgInternalError})
		return
	}
	a.setSessionCookie(w, token, sess.ExpiresAt)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (a *api) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if _, err := a.currentUser(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	sess, err := a.ensureSession(w, r)
	if err != nil {
		a.log.Error("ensure session", "err", err)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}
	a.render(w, http.StatusOK, "register", authPage{CSRFToken: sess.CSRFToken})
}

func (a *api) handleRegister(w http.ResponseWriter, r *http.Request) {
	if _, err := a.currentUser(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	sess, err := a.ensureSession(w, r)
	if err != nil {
		a.log.Error("ensure session", "err", err)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}
	if !validCSRF(sess, r.PostFormValue("csrf_token")) {
		a.render(w, http.StatusForbidden, "register", authPage{CSRFToken: sess.CSRFToken, Error: msgSecurityFailed})
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm_password")

	fail := func(status int, msg string) {
		a.render(w, status, "register", authPage{CSRFToken: sess.CSRFToken, Error: msg})
	}
	switch {
	case username == "" || password == "" || confirm == "":
		fail(http.StatusBadRequest, msgFieldsRequired)
		return
	case len(username) < 3:
		fail(http.StatusBadRequest, msgUsernameTooShort)
		return
	case password != confirm:
		fail(http.StatusBadRequest, msgPasswordMismatch)
		return
	}
	if err := validatePassword(password); err != nil {
		fail(http.StatusBadRequest, err.Error())
		return
	}
	hash, err := hashPassword(password)
	if err != nil {
		a.log.Error("hash password", "err", err)
		fail(http.StatusInternalServerError, msgInternalError)
		return
	}
	if _, err := a.store.CreateUser(r.Context(), username, hash); err != nil {
		if errors.Is(err, ErrConflict) {
			fail(http.StatusConflict, msgUsernameTaken)
			return
		}
		a.log.Error("create user", "err", err)
		fail(http.StatusInternalServerError, msgInternalError)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (a *api) handleLogout(w http.ResponseWriter, r *http.Request) {
	// The whole session row goes away, not just the user reference; any
	// later request starts over with a fresh anonymous session.
	if c, err := r.Cookie(a.sessionCookieName()); err == nil && c.Value != "" {
		if err := a.store.DeleteSession(r.Context(), c.Value); err != nil {
			a.log.Error("delete session", "err", err)
		}
	}
	a.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
