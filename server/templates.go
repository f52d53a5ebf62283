package main

import (
	"html/template"
	"net/http"
)

// Page rendering stays deliberately thin: the templates exist so the HTTP
// surface is complete, while all decisions (identity, CSRF token,
// authorization verdicts) come from the handlers.

var templates = template.Must(template.New("pages").Parse(pagesHTML))

func (a *api) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		a.log.Error("render", "template", name, "err", err)
	}
}

const pagesHTML = `
{{define "head"}}<!DOCTYPE html>
<html lang="en"><head><meta charset="UTF-8"><title>Secure To-Do App</title></head><body>{{end}}

{{define "alerts"}}
{{if .Error}}<div class="alert alert-error">{{.Error}}</div>{{end}}
{{if .Success}}<div class="alert alert-success">{{.Success}}</div>{{end}}
{{end}}

{{define "login"}}{{template "head" .}}
<h1>Secure To-Do App</h1><h2>Login</h2>
{{template "alerts" .}}
<form method="POST" action="/login">
<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
<label>Username <input type="text" name="username" required></label>
<label>Password <input type="password" name="password" required></label>
<button type="submit">Login</button>
</form>
<p>Don't have an account? <a href="/register">Register here</a></p>
</body></html>{{end}}

{{define "register"}}{{template "head" .}}
<h1>Secure To-Do App</h1><h2>Register</h2>
{{template "alerts" .}}
<form method="POST" action="/register">
<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
<label>Username <input type="text" name="username" required minlength="3"></label>
<label>Password <input type="password" name="password" required minlength="8"></label>
<label>Confirm Password <input type="password" name="confirm_password" required minlength="8"></label>
<button type="submit">Register</button>
</form>
<p>Already have an account? <a href="/login">Login here</a></p>
</body></html>{{end}}

{{define "dashboard"}}{{template "head" .}}
<h1>My To-Do List</h1>
<p>Welcome, <strong>{{.Username}}</strong>
{{if .IsAdmin}}<a href="/admin">Admin Panel</a>{{end}}
<a href="/logout">Logout</a></p>
{{template "alerts" .}}
<h2>Add New To-Do</h2>
<form method="POST" action="/dashboard">
<input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
<input type="hidden" name="action" value="add">
<label>Title <input type="text" name="title" required maxlength="200"></label>
<label>Description <textarea name="description" maxlength="500"></textarea></label>
<button type="submit">Add To-Do</button>
</form>
<h2>Your To-Dos ({{len .Tasks}})</h2>
<ul>
{{range .Tasks}}
<li class="{{if .Completed}}done{{end}}">
<span>{{.Title}}</span>{{with .Description}} &mdash; <span>{{.}}</span>{{end}}
<form method="POST" action="/dashboard" style="display:inline">
<input type="hidden" name="csrf_token" value="{{$.CSRFToken}}">
<input type="hidden" name="action" value="toggle">
<input type="hidden" name="todo_id" value="{{.ID}}">
<button type="submit">{{if .Completed}}Undo{{else}}Done{{end}}</button>
</form>
<form method="POST" action="/dashboard" style="display:inline">
<input type="hidden" name="csrf_token" value="{{$.CSRFToken}}">
<input type="hidden" name="action" value="delete">
<input type="hidden" name="todo_id" value="{{.ID}}">
<button type="submit">Delete</button>
</form>
</li>
{{end}}
</ul>
</body></html>{{end}}

{{define "admin"}}{{template "head" .}}
<h1>Admin Dashboard</h1>
<p>Admin: <strong>{{.Username}}</strong> <a href="/dashboard">My Todos</a> <a href="/logout">Logout</a></p>
{{template "alerts" .}}
<h2>System Statistics</h2>
<ul>
<li>{{.Stats.TotalUsers}} Total Users</li>
<li>{{.Stats.TotalTodos}} Total Todos</li>
<li>{{.Stats.CompletedTodos}} Completed</li>
<li>{{.Stats.PendingTodos}} Pending</li>
</ul>
<h2>All Users ({{len .Users}})</h2>
<table>
<tr><th>ID</th><th>Username</th><th>Role</th><th>Created At</th><th>Actions</th></tr>
{{range .Users}}
<tr><td>{{.ID}}</td><td>{{.Username}}</td>
<td>{{if .IsAdmin}}Admin{{else}}User{{end}}</td>
<td>{{.CreatedAt}}</td>
<td>{{if .IsAdmin}}Protected{{else}}
<form method="POST" action="/admin" style="display:inline">
<input type="hidden" name="csrf_token" value="{{$.CSRFToken}}">
<input type="hidden" name="action" value="delete_user">
<input type="hidden" name="user_id" value="{{.ID}}">
<button type="submit">Delete</button>
</form>
{{end}}</td></tr>
{{end}}
</table>
<h2>All Todos ({{len .Todos}})</h2>
<table>
<tr><th>ID</th><th>User</th><th>Title</th><th>Description</th><th>Status</th><th>Created At</th></tr>
{{range .Todos}}
<tr><td>{{.ID}}</td><td>{{.Username}}</td><td>{{.Title}}</td><td>{{.Description}}</td>
<td>{{if .Completed}}Complete{{else}}Pending{{end}}</td><td>{{.CreatedAt}}</td></tr>
{{end}}
</table>
</body></html>{{end}}
`
