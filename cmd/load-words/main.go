package main

import (
	"flag"
	"log"

	"codewords/internal/config"
	"codewords/internal/db"
)

func main() {
	filePath := flag.String("file", "words.csv", "path to words csv")
	deck := flag.String("deck", "", "deck for single-column rows (defaults to DEFAULT_DECK)")
	language := flag.String("language", "", "language code for single-column rows (defaults to DEFAULT_LANGUAGE)")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg := config.Load()

	defaultDeck := cfg.DefaultDeck
	if *deck != "" {
		defaultDeck = *deck
	}
	defaultLanguage := cfg.DefaultLanguage
	if *language != "" {
		defaultLanguage = *language
	}

	conn, err := db.Open()
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	inserted, err := db.LoadDeck(conn, *filePath, defaultDeck, defaultLanguage)
	if err != nil {
		log.Fatalf("failed to load words: %v", err)
	}
	log.Printf("loaded %d words", inserted)
}
