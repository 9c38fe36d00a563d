package game

import "time"

type GameStatus string

const (
	GameLobby      GameStatus = "LOBBY"
	GamePaused     GameStatus = "PAUSED"
	GameInProgress GameStatus = "IN_PROGRESS"
	GameCompleted  GameStatus = "COMPLETED"
	GameAbandoned  GameStatus = "ABANDONED"
)

type GameFormat string

const (
	FormatQuick       GameFormat = "QUICK"
	FormatBestOfThree GameFormat = "BEST_OF_THREE"
	FormatRoundRobin  GameFormat = "ROUND_ROBIN"
)

type RoundStatus string

const (
	RoundSetup      RoundStatus = "SETUP"
	RoundInProgress RoundStatus = "IN_PROGRESS"
	RoundCompleted  RoundStatus = "COMPLETED"
)

type TurnStatus string

const (
	TurnActive    TurnStatus = "ACTIVE"
	TurnCompleted TurnStatus = "COMPLETED"
)

type PlayerStatus string

const (
	PlayerActive   PlayerStatus = "ACTIVE"
	PlayerInactive PlayerStatus = "INACTIVE"
)

type Role string

const (
	RoleCodemaster  Role = "CODEMASTER"
	RoleCodebreaker Role = "CODEBREAKER"
	RoleSpectator   Role = "SPECTATOR"
)

// CardType tags card ownership. Team cards additionally carry the owning
// team's ID.
type CardType string

const (
	CardTeam      CardType = "TEAM"
	CardBystander CardType = "BYSTANDER"
	CardAssassin  CardType = "ASSASSIN"
)

type Outcome string

const (
	OutcomeAssassin    Outcome = "ASSASSIN_CARD"
	OutcomeBystander   Outcome = "BYSTANDER_CARD"
	OutcomeCorrectTeam Outcome = "CORRECT_TEAM_CARD"
	OutcomeOtherTeam   Outcome = "OTHER_TEAM_CARD"
)

// Records are the storage-facing shapes exchanged with a Store. Internal
// numeric IDs are only for relational joins; public IDs are what leaves
// this package.

type GameRecord struct {
	ID        int64
	PublicID  string
	JoinCode  string
	Status    GameStatus
	Format    GameFormat
	CreatedAt time.Time
	UpdatedAt time.Time
}

type TeamRecord struct {
	ID     int64
	GameID int64
	Name   string
}

type UserRecord struct {
	ID        int64
	Username  string
	CreatedAt time.Time
}

type PlayerRecord struct {
	ID              int64
	PublicID        string
	GameID          int64
	TeamID          int64
	UserID          int64
	Name            string
	Status          PlayerStatus
	StatusChangedAt time.Time
	CreatedAt       time.Time
}

type RoundRecord struct {
	ID            int64
	GameID        int64
	Number        int
	Status        RoundStatus
	WinningTeamID *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CardRecord struct {
	ID       int64
	RoundID  int64
	Word     string
	Type     CardType
	TeamID   *int64
	Selected bool
}

type TurnRecord struct {
	ID               int64
	PublicID         string
	RoundID          int64
	TeamID           int64
	Status           TurnStatus
	GuessesRemaining int
	CreatedAt        time.Time
	CompletedAt      *time.Time
}

type ClueRecord struct {
	ID          int64
	TurnID      int64
	Word        string
	TargetCount int
	CreatedAt   time.Time
}

type GuessRecord struct {
	ID        int64
	TurnID    int64
	PlayerID  int64
	CardID    int64
	Outcome   Outcome
	CreatedAt time.Time
}

type RoleAssignmentRecord struct {
	ID         int64
	RoundID    int64
	PlayerID   int64
	Role       Role
	AssignedAt time.Time
}

// EventRecord is an audit entry appended alongside gameplay mutations.
type EventRecord struct {
	ID        int64
	GameID    int64
	RoundID   *int64
	PlayerID  *int64
	Type      string
	Payload   map[string]any
	CreatedAt time.Time
}
