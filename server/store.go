package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrConflict  = errors.New("conflict")
	ErrForbidden = errors.New("forbidden")
)

type Store struct {
	db         *sql.DB
	sessionTTL time.Duration
}

func NewStore(db *sql.DB, sessionTTL time.Duration) *Store {
	return &Store{db: db, sessionTTL: sessionTTL}
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Users

const userCols = `id, username, is_admin, created_at`

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateUser inserts a new account. Usernames are matched case-sensitively;
// a duplicate yields ErrConflict.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `insert into users(username, password_hash) values($1,$2)
		returning `+userCols, username, passwordHash).
		Scan(&u.ID, &u.Username, &u.IsAdmin, &u.CreatedAt)
	if isUniqueViolation(err) {
		return User{}, ErrConflict
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// UserByUsername returns the user and its password hash (exact match).
func (s *Store) UserByUsername(ctx context.Context, username string) (User, string, error) {
	var u User
	var hash string
	err := s.db.QueryRowContext(ctx, `select `+userCols+`, password_hash from users where username=$1`, username).
		Scan(&u.ID, &u.Username, &u.IsAdmin, &u.CreatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, "", ErrNotFound
	}
	return u, hash, err
}

func (s *Store) UserByID(ctx context.Context, id int64) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, `select `+userCols+` from users where id=$1`, id).
		Scan(&u.ID, &u.Username, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `select `+userCols+` from users order by created_at desc, id desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// DeleteUser removes a non-admin account and all its todos in one
// transaction. ErrForbidden when the target is an admin.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var isAdmin bool
	err = tx.QueryRowContext(ctx, `select is_admin from users where id=$1`, id).Scan(&isAdmin)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if isAdmin {
		return ErrForbidden
	}
	if _, err = tx.ExecContext(ctx, `delete from todos where user_id=$1`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `delete from users where id=$1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// EnsureAdmin seeds the admin account once; safe to run on every boot.
func (s *Store) EnsureAdmin(ctx context.Context, username, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		`insert into users(username, password_hash, is_admin) values($1,$2,true)
		 on conflict (username) do nothing`, username, passwordHash)
	return err
}

// Sessions

// CreateSession mints a fresh anonymous session with its CSRF token.
func (s *Store) CreateSession(ctx context.Context) (Session, error) {
	token, err := randomToken()
	if err != nil {
		return Session{}, err
	}
	csrf, err := newCSRFToken()
	if err != nil {
		return Session{}, err
	}
	var sess Session
	err = s.db.QueryRowContext(ctx, `insert into sessions(token, csrf_token, expires_at)
		values($1,$2, now() + make_interval(secs => $3))
		returning id, token, user_id, csrf_token, created_at, expires_at`,
		token, csrf, s.sessionTTL.Seconds()).
		Scan(&sess.ID, &sess.Token, &sess.UserID, &sess.CSRFToken, &sess.CreatedAt, &sess.ExpiresAt)
	return sess, err
}

// SessionByToken resolves a live session and slides its idle expiry forward.
// Expired rows are invisible (lazy expiry) and reaped opportunistically.
func (s *Store) SessionByToken(ctx context.Context, token string) (Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx, `update sessions
		set expires_at = now() + make_interval(secs => $2)
		where token=$1 and expires_at > now()
		returning id, token, user_id, csrf_token, created_at, expires_at`,
		token, s.sessionTTL.Seconds()).
		Scan(&sess.ID, &sess.Token, &sess.UserID, &sess.CSRFToken, &sess.CreatedAt, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		_, _ = s.db.ExecContext(ctx, `delete from sessions where expires_at <= now()`)
		return Session{}, ErrNotFound
	}
	return sess, err
}

// PromoteSession upgrades the same session row to carry the user and rotates
// the session token (fixation defense). The CSRF token is kept for the
// session's lifetime. Returns the new token for the cookie.
func (s *Store) PromoteSession(ctx context.Context, sessionID, userID int64) (string, error) {
	token, err := randomToken()
	if err != nil {
		return "", err
	}
	res, err := s.db.ExecContext(ctx, `update sessions set token=$2, user_id=$3 where id=$1`,
		sessionID, token, userID)
	if err != nil {
		return "", err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return "", ErrNotFound
	}
	return token, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `delete from sessions where token=$1`, token)
	return err
}

// Tasks

const taskCols = `id, user_id, title, description, completed, created_at`

func (s *Store) CreateTask(ctx context.Context, ownerID int64, title, description string) (Task, error) {
	var t Task
	err := s.db.QueryRowContext(ctx, `insert into todos(user_id, title, description) values($1,$2,$3)
		returning `+taskCols, ownerID, title, description).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt)
	return t, err
}

func (s *Store) TasksByOwner(ctx context.Context, ownerID int64) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+taskCols+` from todos where user_id=$1 order by created_at desc, id desc`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *Store) TaskByID(ctx context.Context, id int64) (Task, error) {
	var t Task
	err := s.db.QueryRowContext(ctx, `select `+taskCols+` from todos where id=$1`, id).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

// ToggleTask flips completion in a single owner-scoped statement, so a
// foreign-owned id reads the same as a missing one.
func (s *Store) ToggleTask(ctx context.Context, id, ownerID int64) (Task, error) {
	var t Task
	err := s.db.QueryRowContext(ctx, `update todos set completed = not completed
		where id=$1 and user_id=$2 returning `+taskCols, id, ownerID).
		Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

func (s *Store) DeleteTask(ctx context.Context, id, ownerID int64) error {
	res, err := s.db.ExecContext(ctx, `delete from todos where id=$1 and user_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) AllTasks(ctx context.Context) ([]TaskWithOwner, error) {
	rows, err := s.db.QueryContext(ctx, `select t.id, t.user_id, t.title, t.description, t.completed, t.created_at, u.username
		from todos t join users u on u.id = t.user_id
		order by t.created_at desc, t.id desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TaskWithOwner
	for rows.Next() {
		var t TaskWithOwner
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.Username); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `select
		(select count(*) from users),
		(select count(*) from todos),
		(select count(*) from todos where completed),
		(select count(*) from todos where not completed)`).
		Scan(&st.TotalUsers, &st.TotalTodos, &st.CompletedTodos, &st.PendingTodos)
	return st, err
}

func scanTasks(rows *sql.Rows) ([]Task, error) {
	var out []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const schema = `
create table if not exists users(
    id bigserial primary key,
    username text unique not null check (length(username) > 0),
    password_hash text not null,
    is_admin boolean not null default false,
    created_at timestamptz not null default now()
);
create table if not exists todos(
    id bigserial primary key,
    user_id bigint not null references users(id) on delete cascade,
    title text not null check (length(title) > 0),
    description text not null default '',
    completed boolean not null default false,
    created_at timestamptz not null default now()
);
create index if not exists todos_user_idx on todos(user_id);
create table if not exists sessions(
    id bigserial primary key,
    token text unique not null,
    user_id bigint references users(id) on delete cascade,
    csrf_token text not null,
    created_at timestamptz not null default now(),
    expires_at timestamptz not null
);
create index if not exists sessions_expires_idx on sessions(expires_at);
`
