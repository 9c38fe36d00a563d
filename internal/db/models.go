package db

import (
	"time"

	"gorm.io/datatypes"
)

type Game struct {
	ID        int64     `gorm:"primaryKey"`
	PublicID  string    `gorm:"size:36;uniqueIndex;not null"`
	JoinCode  string    `gorm:"size:12;uniqueIndex;not null"`
	Status    string    `gorm:"size:32;not null"`
	Format    string    `gorm:"size:32;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Teams     []Team
	Players   []Player
	Rounds    []Round
	Events    []Event
}

type Team struct {
	ID     int64  `gorm:"primaryKey"`
	GameID int64  `gorm:"index;not null;uniqueIndex:idx_teams_game_name"`
	Name   string `gorm:"size:64;not null;uniqueIndex:idx_teams_game_name"`
}

type User struct {
	ID        int64     `gorm:"primaryKey"`
	Username  string    `gorm:"size:64;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type Player struct {
	ID              int64     `gorm:"primaryKey"`
	PublicID        string    `gorm:"size:36;uniqueIndex;not null"`
	GameID          int64     `gorm:"index;not null;uniqueIndex:idx_players_game_user"`
	UserID          int64     `gorm:"not null;uniqueIndex:idx_players_game_user"`
	TeamID          int64     `gorm:"index;not null"`
	Name            string    `gorm:"size:64;not null"`
	Status          string    `gorm:"size:16;not null"`
	StatusChangedAt time.Time `gorm:"not null"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

type Round struct {
	ID            int64  `gorm:"primaryKey"`
	GameID        int64  `gorm:"index;not null;uniqueIndex:idx_rounds_game_number"`
	Number        int    `gorm:"not null;uniqueIndex:idx_rounds_game_number"`
	Status        string `gorm:"size:32;not null"`
	WinningTeamID *int64
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
	Cards         []Card
	Turns         []Turn
}

type Card struct {
	ID       int64  `gorm:"primaryKey"`
	RoundID  int64  `gorm:"index;not null;uniqueIndex:idx_cards_round_word"`
	Word     string `gorm:"size:64;not null;uniqueIndex:idx_cards_round_word"`
	Type     string `gorm:"size:16;not null"`
	TeamID   *int64 `gorm:"index"`
	Selected bool   `gorm:"not null;default:false"`
}

type Turn struct {
	ID               int64     `gorm:"primaryKey"`
	PublicID         string    `gorm:"size:36;uniqueIndex;not null"`
	RoundID          int64     `gorm:"index;not null"`
	TeamID           int64     `gorm:"index;not null"`
	Status           string    `gorm:"size:16;not null"`
	GuessesRemaining int       `gorm:"not null;default:0"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
	CompletedAt      *time.Time
}

type Clue struct {
	ID          int64     `gorm:"primaryKey"`
	TurnID      int64     `gorm:"uniqueIndex;not null"`
	Word        string    `gorm:"size:64;not null"`
	TargetCount int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

type Guess struct {
	ID        int64     `gorm:"primaryKey"`
	TurnID    int64     `gorm:"index;not null"`
	PlayerID  int64     `gorm:"index;not null"`
	CardID    int64     `gorm:"uniqueIndex;not null"`
	Outcome   string    `gorm:"size:32;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type RoleAssignment struct {
	ID         int64     `gorm:"primaryKey"`
	RoundID    int64     `gorm:"index;not null;uniqueIndex:idx_roles_round_player"`
	PlayerID   int64     `gorm:"index;not null;uniqueIndex:idx_roles_round_player"`
	Role       string    `gorm:"size:16;not null"`
	AssignedAt time.Time `gorm:"not null"`
}

type DeckWord struct {
	ID           int64     `gorm:"primaryKey"`
	Deck         string    `gorm:"size:32;not null;uniqueIndex:idx_deck_words"`
	LanguageCode string    `gorm:"size:8;not null;uniqueIndex:idx_deck_words"`
	Word         string    `gorm:"size:64;not null;uniqueIndex:idx_deck_words"`
	CreatedAt    time.Time `gorm:"not null"`
}

type Session struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    int64     `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Event struct {
	ID        int64          `gorm:"primaryKey"`
	GameID    int64          `gorm:"index;not null"`
	RoundID   *int64         `gorm:"index"`
	PlayerID  *int64         `gorm:"index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
