package main

import (
	"log"
	"net/http"
	"time"

	"codewords/internal/config"
	"codewords/internal/db"
	"codewords/internal/game"
	"codewords/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		log.Fatalf("database handle unavailable: %v", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DBConnMaxIdleTimeSeconds) * time.Second)

	if err := db.Migrate(conn); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	engine := game.New(db.NewStore(conn), game.Options{
		BoardSize:       cfg.BoardSize,
		AssassinCount:   cfg.AssassinCount,
		DefaultDeck:     cfg.DefaultDeck,
		DefaultLanguage: cfg.DefaultLanguage,
	})

	srv := server.New(engine, conn, cfg)
	log.Printf("codewords server listening on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
