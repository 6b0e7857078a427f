// Command seed provisions an administrator account. The admin flag is never
// settable over HTTP, so this is the only way an admin comes into existence.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/gatekeep/gatekeep/internal/platform/db"
	"github.com/gatekeep/gatekeep/internal/shared"
)

type adminSeed struct {
	Name     string
	Email    string
	Mobile   string
	Password string
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}
	seed, err := seedFromEnv()
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		log.Fatal("PG_DSN must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	pool, err := db.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	fmt.Println("→ Seeding admin...")
	if err := upsertAdmin(ctx, pool, seed); err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

func seedFromEnv() (adminSeed, error) {
	seed := adminSeed{
		Name:     getenv("ADMIN_NAME", "Administrator"),
		Email:    strings.ToLower(strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))),
		Mobile:   getenv("ADMIN_MOBILE", "0000000"),
		Password: os.Getenv("ADMIN_PASSWORD"),
	}
	if seed.Email == "" || seed.Password == "" {
		return adminSeed{}, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}
	return seed, nil
}

func upsertAdmin(ctx context.Context, pool *pgxpool.Pool, seed adminSeed) error {
	hash, err := shared.HashPassword(seed.Password)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO users (name, email, mobile, password_hash, is_admin)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (email) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    is_admin = TRUE,
		    revision = users.revision + 1,
		    updated_at = NOW()`, seed.Name, seed.Email, seed.Mobile, hash)
	return err
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
