// Command seed_admin provisions the initial administrator account so a fresh
// deployment has a login to manage everything else with.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/raghad-alharthi/student-management-api/pkg/config"
)

func main() {
	var (
		username  string
		password  string
		firstName string
		lastName  string
	)
	flag.StringVar(&username, "username", "admin", "admin username")
	flag.StringVar(&password, "password", "", "admin password (required)")
	flag.StringVar(&firstName, "first-name", "System", "admin first name")
	flag.StringVar(&lastName, "last-name", "Administrator", "admin last name")
	flag.Parse()

	if password == "" {
		log.Fatal("-password is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var existing string
	err = db.GetContext(ctx, &existing, `SELECT id FROM users WHERE username = $1`, username)
	if err == nil {
		log.Printf("user %q already exists (id %s), nothing to do", username, existing)
		return
	}
	if !errors.Is(err, sql.ErrNoRows) {
		log.Fatalf("failed to check existing user: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	_, err = db.ExecContext(ctx, `INSERT INTO users (id, first_name, last_name, username, password_hash, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, 'ADMIN', $6, $6)`,
		id, firstName, lastName, username, string(hash), now)
	if err != nil {
		log.Fatalf("failed to create admin user: %v", err)
	}

	log.Printf("admin user %q created (id %s)", username, id)
}
