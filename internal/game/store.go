package game

import "context"

// Ops is the typed operation set a Store exposes inside a transaction.
// Finders return (nil, nil) when the row does not exist. Guarded updates
// (SelectCard, DecrementTurnGuesses, CompleteTurn, CompleteRound,
// CreateClue) return ErrConflict when the precondition no longer holds, so
// a writer that loses a race fails instead of double-applying an effect.
type Ops interface {
	GameByPublicID(publicID string) (*GameRecord, error)
	GameByJoinCode(code string) (*GameRecord, error)
	CreateGame(game *GameRecord) error
	UpdateGameStatus(gameID int64, status GameStatus) error

	TeamsByGame(gameID int64) ([]TeamRecord, error)
	CreateTeam(team *TeamRecord) error

	UserByUsername(username string) (*UserRecord, error)
	CreateUser(user *UserRecord) error

	PlayersByGame(gameID int64) ([]PlayerRecord, error)
	PlayerByUser(gameID, userID int64) (*PlayerRecord, error)
	CreatePlayer(player *PlayerRecord) error
	UpdatePlayerStatus(playerID int64, status PlayerStatus) error

	// CurrentRound returns the game's highest-numbered round, nil if none.
	CurrentRound(gameID int64) (*RoundRecord, error)
	// RoundsByGame returns all rounds ordered by number.
	RoundsByGame(gameID int64) ([]RoundRecord, error)
	RoundByNumber(gameID int64, number int) (*RoundRecord, error)
	CreateRound(round *RoundRecord) error
	UpdateRoundStatus(roundID int64, status RoundStatus) error
	// CompleteRound marks the round COMPLETED with a winner. Guarded: a
	// round completes exactly once.
	CompleteRound(roundID, winningTeamID int64) error

	CardsByRound(roundID int64) ([]CardRecord, error)
	// ReplaceCards removes any prior deal for the round before inserting,
	// so stale selected flags cannot leak into a fresh deal.
	ReplaceCards(roundID int64, cards []CardRecord) ([]CardRecord, error)
	// SelectCard flips selected false->true. Guarded.
	SelectCard(cardID int64) error

	// TurnsByRound returns turns ordered by creation.
	TurnsByRound(roundID int64) ([]TurnRecord, error)
	// ActiveTurn returns the round's single ACTIVE turn, nil if none. SQL
	// implementations lock the row for the rest of the transaction.
	ActiveTurn(roundID int64) (*TurnRecord, error)
	CreateTurn(turn *TurnRecord) error
	SetTurnGuesses(turnID int64, remaining int) error
	// DecrementTurnGuesses decrements and returns the new remaining count.
	// Guarded: the turn must be ACTIVE with guesses remaining.
	DecrementTurnGuesses(turnID int64) (int, error)
	// CompleteTurn flips ACTIVE->COMPLETED and stamps completion. Guarded.
	CompleteTurn(turnID int64) error

	ClueByTurn(turnID int64) (*ClueRecord, error)
	// CreateClue inserts the turn's single clue. Guarded: one clue per turn.
	CreateClue(clue *ClueRecord) error

	GuessesByTurn(turnID int64) ([]GuessRecord, error)
	CreateGuess(guess *GuessRecord) error

	RolesByRound(roundID int64) ([]RoleAssignmentRecord, error)
	ClearRoles(roundID int64) error
	AssignRole(assignment *RoleAssignmentRecord) error
	// LatestCodemaster returns the player who most recently held the
	// codemaster role for the team, nil if the team never had one.
	LatestCodemaster(gameID, teamID int64) (*PlayerRecord, error)

	// RandomWords draws count distinct words from the deck, or errors when
	// the pool is too small.
	RandomWords(deck, languageCode string, count int) ([]string, error)

	AppendEvent(event *EventRecord) error
}

// Store is the unit-of-work provider. Atomic runs fn inside one
// transaction: every operation commits, or none do. View is a consistent
// read-only snapshot scope; implementations may serve it from the same
// mechanism with writes rejected by convention (the engine never mutates
// inside View).
type Store interface {
	View(ctx context.Context, fn func(Ops) error) error
	Atomic(ctx context.Context, fn func(Ops) error) error
}
