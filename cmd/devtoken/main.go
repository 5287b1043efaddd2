// Command devtoken mints a bearer token for a user so the AI rate limit
// bypass can be exercised locally.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"rainbowrise/internal/adapter/repo"
	"rainbowrise/internal/domain"
	"rainbowrise/internal/infra"
	"rainbowrise/internal/middleware"
)

func main() {
	_ = godotenv.Load()

	var (
		userIDFlag   int64
		usernameFlag string
		passwordFlag string
		secretFlag   string
		ttlFlag      time.Duration
	)
	flag.Int64Var(&userIDFlag, "user-id", 0, "user id to embed in the token")
	flag.StringVar(&usernameFlag, "username", "", "look the user id up by username (requires DATABASE_URL)")
	flag.StringVar(&passwordFlag, "password", "", "password of -username (fallbacks to DEVTOKEN_PASSWORD)")
	flag.StringVar(&secretFlag, "secret", "", "signing secret (fallbacks to JWT_SECRET)")
	flag.DurationVar(&ttlFlag, "ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := strings.TrimSpace(secretFlag)
	if secret == "" {
		secret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	}
	if secret == "" {
		fmt.Fprintln(os.Stderr, "signing secret is required via -secret or JWT_SECRET")
		os.Exit(1)
	}

	userID := userIDFlag
	if username := strings.TrimSpace(usernameFlag); username != "" {
		password := passwordFlag
		if password == "" {
			password = os.Getenv("DEVTOKEN_PASSWORD")
		}
		id, err := lookupUser(username, password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to resolve user %q: %v\n", username, err)
			os.Exit(1)
		}
		userID = id
	}
	if userID <= 0 {
		fmt.Fprintln(os.Stderr, "a positive -user-id or a -username is required")
		os.Exit(1)
	}

	token, err := middleware.SignToken(secret, userID, ttlFlag, time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

var errBadCredentials = errors.New("invalid username or password")

func lookupUser(username, password string) (int64, error) {
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		return 0, fmt.Errorf("DATABASE_URL is required")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return 0, fmt.Errorf("create pool: %w", err)
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "devtoken").Logger()
	return resolveUser(ctx, repo.NewStore(infra.NewSQLRunner(pool, logger)).Users, username, password)
}

// resolveUser returns the id of username once password matches its hash.
func resolveUser(ctx context.Context, users domain.UserRepository, username, password string) (int64, error) {
	if password == "" {
		return 0, fmt.Errorf("-password is required with -username")
	}
	u, err := users.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, errBadCredentials
	}
	if err != nil {
		return 0, err
	}
	if !u.CheckPassword(password) {
		return 0, errBadCredentials
	}
	return u.ID, nil
}
