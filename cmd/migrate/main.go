// Command migrate applies the SQL migrations in db/migrations against
// DATABASE_URL. Pass -down to roll back the most recent migration instead.
package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"codewords/internal/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	down := flag.Bool("down", false, "roll back the most recent migration")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	m, err := migrate.New("file://"+config.MigrationsDir, dsn)
	if err != nil {
		log.Fatalf("open migrations: %v", err)
	}

	if *down {
		if err := m.Steps(-1); err != nil {
			log.Fatalf("roll back migration: %v", err)
		}
		log.Println("rolled back one migration")
		return
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Println("schema already up to date")
	case err != nil:
		log.Fatalf("apply migrations: %v", err)
	default:
		log.Println("schema migrations applied")
	}
}
