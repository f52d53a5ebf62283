package main

import "time"

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

type Task struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskWithOwner is the admin view of a task joined with its owner's username.
type TaskWithOwner struct {
	Task
	Username string `json:"username"`
}

// Session is a server-side session row. UserID is nil while the session is
// anonymous and is set in place on login.
type Session struct {
	ID        int64
	Token     string
	UserID    *int64
	CSRFToken string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Authenticated reports whether the session carries a logged-in user.
func (s Session) Authenticated() bool { return s.UserID != nil }

type Stats struct {
	TotalUsers     int64 `json:"total_users"`
	TotalTodos     int64 `json:"total_todos"`
	CompletedTodos int64 `json:"completed_todos"`
	PendingTodos   int64 `json:"pending_todos"`
}
