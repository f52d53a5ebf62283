package main

import (
	"errors"
	"net/http"
	"strings"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 500
)

type dashboardPage struct {
	CSRFToken string
	Username  string
	IsAdmin   bool
	Tasks     []Task
	Error     string
	Success   string
}

func (a *api) renderDashboard(w http.ResponseWriter, r *http.Request, status int, sess Session, u *User, errMsg string) {
	tasks, err := a.store.TasksByOwner(r.Context(), u.ID)
	if err != nil {
		a.log.Error("list tasks", "err", err)
		http.Error(w, msgInternalError, http.StatusInternalServerError)
		return
	}
	a.render(w, status, "dashboard", dashboardPage{
		CSRFToken: sess.CSRFToken,
		Username:  u.Username,
		IsAdmin:   u.IsAdmin,
		Tasks:     tasks,
		Error:     errMsg,
	})
}

func (a *api) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, u, ok := a.identity(w, r)
	if !ok {
		return
	}
	a.renderDashboard(w, r, http.StatusOK, sess, u, "")
}

// POST /dashboard with action=add|toggle|delete. Every branch validates the
// CSRF token before any store mutation and redirects on success.
func (a *api) handleDashboardPost(w http.ResponseWriter, r *http.Request) {
	sess, u, ok := a.identity(w, r)
	if !ok {
		return
	}
	if !validCSRF(sess, r.PostFormValue("csrf_token")) {
		a.renderDashboard(w, r, http.StatusForbidden, sess, u, msgSecurityFailed)
		return
	}
	switch r.PostFormValue("action") {
	case "add":
		a.addTask(w, r, sess, u)
	case "toggle":
		a.toggleTask(w, r, sess, u)
	case "delete":
		a.deleteTask(w, r, sess, u)
	default:
		a.renderDashboard(w, r, http.StatusBadRequest, sess, u, "Unknown action.")
	}
}

func (a *api) addTask(w http.ResponseWriter, r *http.Request, sess Session, u *User) {
	title := strings.TrimSpace(r.PostFormValue("title"))
	description := strings.TrimSpace(r.PostFormValue("description"))
	var msg string
	switch {
	case title == "":
		msg = "Todo title is required."
	case len(title) > maxTitleLen:
		msg = "Todo title is too long."
	case len(description) > maxDescriptionLen:
		msg = "Todo description is too long."
	}
	if msg != "" {
		a.renderDashboard(w, r, http.StatusBadRequest, sess, u, msg)
		return
	}
	// New tasks always belong to the session user; the owner is never taken
	// from the client.
	if _, err := a.store.CreateTask(r.Context(), u.ID, title, description); err != nil {
		a.log.Error("create task", "err", err)
		a.renderDashboard(w, r, http.StatusInternalServerError, sess, u, "Failed to add todo.")
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (a *api) toggleTask(w http.ResponseWriter, r *http.Request, sess Session, u *User) {
	id, err := parseID(r.PostFormValue("todo_id"))
	if err == nil {
		var t Task
		t, err = a.store.TaskByID(r.Context(), id)
		if err == nil && !canMutateTask(u, t) {
			err = ErrNotFound
		}
		if err == nil {
			_, err = a.store.ToggleTask(r.Context(), id, u.ID)
		}
	}
	if err != nil {
		// Foreign-owned and missing ids answer identically.
		if !errors.Is(err, ErrNotFound) {
			a.log.Error("toggle task", "err", err)
		}
		a.renderDashboard(w, r, http.StatusNotFound, sess, u, "Failed to update todo.")
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (a *api) deleteTask(w http.ResponseWriter, r *http.Request, sess Session, u *User) {
	id, err := parseID(r.PostFormValue("todo_id"))
	if err == nil {
		var t Task
		t, err = a.store.TaskByID(r.Context(), id)
		if err == nil && !canMutateTask(u, t) {
			err = ErrNotFound
		}
		if err == nil {
			err = a.store.DeleteTask(r.Context(), id, u.ID)
		}
	}
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.log.Error("delete task", "err", err)
		}
		a.renderDashboard(w, r, http.StatusNotFound, sess, u, "Failed to delete todo.")
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}
