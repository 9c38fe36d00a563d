package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// MigrationsDir is where cmd/migrate and cmd/migrate-create keep the SQL
// migration files, relative to the repository root.
const MigrationsDir = "db/migrations"

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	ListenAddr               string
	JoinBaseURL              string
	BoardSize                int
	AssassinCount            int
	DefaultDeck              string
	DefaultLanguage          string
	SessionTTLHours          int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		ListenAddr:               ":8080",
		JoinBaseURL:              "http://localhost:8080",
		BoardSize:                25,
		AssassinCount:            1,
		DefaultDeck:              "BASE",
		DefaultLanguage:          "en",
		SessionTTLHours:          72,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("LISTEN_ADDR"); raw != "" {
		cfg.ListenAddr = raw
	}
	if raw := os.Getenv("JOIN_BASE_URL"); raw != "" {
		cfg.JoinBaseURL = raw
	}
	if raw := os.Getenv("BOARD_SIZE"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.BoardSize = value
		}
	}
	if raw := os.Getenv("ASSASSIN_COUNT"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.AssassinCount = value
		}
	}
	if raw := os.Getenv("DEFAULT_DECK"); raw != "" {
		cfg.DefaultDeck = raw
	}
	if raw := os.Getenv("DEFAULT_LANGUAGE"); raw != "" {
		cfg.DefaultLanguage = raw
	}
	if raw := os.Getenv("SESSION_TTL_HOURS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.SessionTTLHours = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	return cfg
}
