package main

import (
	"errors"
	"net/http"
)

type adminPage struct {
	CSRFToken string
	Username  string
	Stats     Stats
	Users     []User
	Todos     []TaskWithOwner
	Error     string
	Success   string
}

func (a *api) renderAdmin(w http.ResponseWriter, r *http.Request, status int, sess Session, u *User, errMsg, okMsg string) {
	stats, err := a.store.Stats(r.Context())
	if err != nil {
		a.log.Error("admin stats", "err", err)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}
	users, err := a.store.ListUsers(r.Context())
	if err != nil {
		a.log.Error("admin list users", "err", err)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}
	todos, err := a.store.AllTasks(r.Context())
	if err != nil {
		a.log.Error("admin list todos", "err", err)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}
	a.render(w, status, "admin", adminPage{
		CSRFToken: sess.CSRFToken,
		Username:  u.Username,
		Stats:     stats,
		Users:     users,
		Todos:     todos,
		Error:     errMsg,
		Success:   okMsg,
	})
}

func (a *api) handleAdmin(w http.ResponseWriter, r *http.Request) {
	sess, u, ok := a.identity(w, r)
	if !ok {
		return
	}
	a.renderAdmin(w, r, http.StatusOK, sess, u, "", "")
}

// POST /admin with action=delete_user. The admin-area gate already ran in
// requireAdmin; the per-target policy check runs here before the store call.
func (a *api) handleAdminPost(w http.ResponseWriter, r *http.Request) {
	sess, u, ok := a.identity(w, r)
	if !ok {
		return
	}
	if !validCSRF(sess, r.PostFormValue("csrf_token")) {
		a.renderAdmin(w, r, http.StatusForbidden, sess, u, msgSecurityFailed, "")
		return
	}
	if r.PostFormValue("action") != "delete_user" {
		a.renderAdmin(w, r, http.StatusBadRequest, sess, u, "Unknown action.", "")
		return
	}
	id, err := parseID(r.PostFormValue("user_id"))
	if err != nil {
		a.renderAdmin(w, r, http.StatusBadRequest, sess, u, "Failed to delete user.", "")
		return
	}
	target, err := a.store.UserByID(r.Context(), id)
	if err != nil || !canDeleteUser(u, &target) {
		if err != nil && !errors.Is(err, ErrNotFound) {
			a.log.Error("admin delete user lookup", "err", err)
		}
		a.renderAdmin(w, r, http.StatusForbidden, sess, u, "Failed to delete user. Cannot delete admin accounts.", "")
		return
	}
	// The store re-checks the admin flag inside the same transaction that
	// cascades the todos, so the verdict cannot go stale mid-delete.
	if err := a.store.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound) {
			a.renderAdmin(w, r, http.StatusForbidden, sess, u, "Failed to delete user. Cannot delete admin accounts.", "")
			return
		}
		a.log.Error("admin delete user", "err", err)
		a.renderAdmin(w, r, http.StatusInternalServerError, sess, u, msgInternalError, "")
		return
	}
	a.renderAdmin(w, r, http.StatusOK, sess, u, "", "User and their todos deleted successfully!")
}
