package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func sessionTTLFromEnv() time.Duration {
	if v := getenv("SESSION_TTL", ""); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return 24 * time.Hour
}

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	addr := getenv("ADDR", ":8080")
	dsn := getenv("DATABASE_URL", "postgres://postgres:postgres@db:5432/tasklite?sslmode=disable")

	if v := getenv("BCRYPT_COST", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= bcrypt.MinCost && n <= bcrypt.MaxCost {
			bcryptCost = n
		}
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Error("db open", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Error("db ping", "err", err)
		os.Exit(1)
	}

	store := NewStore(db, sessionTTLFromEnv())
	if err := store.Migrate(context.Background()); err != nil {
		log.Error("migrate", "err", err)
		os.Exit(1)
	}

	// Idempotent out-of-band admin bootstrap; never part of request handling.
	if pw := getenv("ADMIN_PASSWORD", ""); pw != "" {
		username := getenv("ADMIN_USERNAME", "admin")
		hash, err := hashPassword(pw)
		if err != nil {
			log.Error("hash admin password", "err", err)
			os.Exit(1)
		}
		if err := store.EnsureAdmin(context.Background(), username, hash); err != nil {
			log.Error("seed admin", "err", err)
			os.Exit(1)
		}
		log.Info("admin account ensured", "username", username)
	} else {
		log.Info("admin seeding skipped, ADMIN_PASSWORD not set")
	}

	mux := http.NewServeMux()
	api := newAPI(store, log)
	api.routes(mux)

	srv := &http.Server{Addr: addr, Handler: withLogging(log, mux),
		ReadTimeout: 15 * time.Second, ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout: 30 * time.Second, IdleTimeout: 120 * time.Second}

	go func() {
		log.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) && err != nil {
			log.Error("listen", "err", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
	log.Info("shutting down")
	ctxSh, cancelSh := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSh()
	if err := srv.Shutdown(ctxSh); err != nil {
		log.Error("shutdown", "err", err)
	}
}
