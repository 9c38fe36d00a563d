package game

import (
	"context"
	"time"
)

// Snapshot is one consistent, access-controlled view of a game: the game
// row, both teams with players and their round roles, the current round
// with its cards, and every turn with its clue and ordered guesses. Role
// filtering (hiding unrevealed card ownership from codebreakers) is a
// presentation concern layered outside this package, using Viewer.Role.
type Snapshot struct {
	Game         GameView
	Teams        []TeamView
	CurrentRound *RoundView
	Viewer       PlayerContext
}

type GameView struct {
	ID        int64
	PublicID  string
	JoinCode  string
	Status    GameStatus
	Format    GameFormat
	CreatedAt time.Time
}

type TeamView struct {
	ID      int64
	Name    string
	Players []PlayerView
}

type PlayerView struct {
	ID       int64
	PublicID string
	Name     string
	TeamID   int64
	Active   bool
	Role     Role
}

type RoundView struct {
	ID            int64
	Number        int
	Status        RoundStatus
	WinningTeamID *int64
	Cards         []CardView
	Turns         []TurnView
}

type CardView struct {
	ID       int64
	Word     string
	Type     CardType
	TeamID   *int64
	TeamName string
	Selected bool
}

type TurnView struct {
	ID               int64
	PublicID         string
	TeamID           int64
	TeamName         string
	Status           TurnStatus
	GuessesRemaining int
	CreatedAt        time.Time
	CompletedAt      *time.Time
	Clue             *ClueView
	Guesses          []GuessView
}

type ClueView struct {
	Word        string
	TargetCount int
	CreatedAt   time.Time
}

type GuessView struct {
	PlayerName string
	CardWord   string
	Outcome    Outcome
	CreatedAt  time.Time
}

type PlayerContext struct {
	PlayerID int64
	PublicID string
	Name     string
	TeamID   int64
	TeamName string
	Role     Role
}

// GetSnapshot builds the aggregate for a game as seen by one of its
// players. Fails with KindNotFound when the public ID does not resolve and
// KindUnauthorized when the user is not a player of the game.
func (e *Engine) GetSnapshot(ctx context.Context, gameID string, userID int64) (*Snapshot, error) {
	var snap *Snapshot
	err := e.store.View(ctx, func(ops Ops) error {
		var err error
		snap, err = loadSnapshot(ops, gameID, userID)
		return err
	})
	if err != nil {
		return nil, asDomainFailure(err, "load game snapshot")
	}
	return snap, nil
}

// loadSnapshot assembles the aggregate inside an existing store scope so
// gameplay services can reuse it under the same transaction.
func loadSnapshot(ops Ops, gameID string, userID int64) (*Snapshot, error) {
	gameRec, err := ops.GameByPublicID(gameID)
	if err != nil {
		return nil, err
	}
	if gameRec == nil {
		return nil, notFoundf("game %s not found", gameID)
	}

	viewerRec, err := ops.PlayerByUser(gameRec.ID, userID)
	if err != nil {
		return nil, err
	}
	if viewerRec == nil {
		return nil, unauthorizedf("user %d is not a player of game %s", userID, gameID)
	}

	teams, err := ops.TeamsByGame(gameRec.ID)
	if err != nil {
		return nil, err
	}
	players, err := ops.PlayersByGame(gameRec.ID)
	if err != nil {
		return nil, err
	}
	round, err := ops.CurrentRound(gameRec.ID)
	if err != nil {
		return nil, err
	}

	roles := map[int64]Role{}
	if round != nil {
		assignments, err := ops.RolesByRound(round.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range assignments {
			roles[a.PlayerID] = a.Role
		}
	}

	teamNames := map[int64]string{}
	snap := &Snapshot{
		Game: GameView{
			ID:        gameRec.ID,
			PublicID:  gameRec.PublicID,
			JoinCode:  gameRec.JoinCode,
			Status:    gameRec.Status,
			Format:    gameRec.Format,
			CreatedAt: gameRec.CreatedAt,
		},
	}
	for _, team := range teams {
		teamNames[team.ID] = team.Name
		snap.Teams = append(snap.Teams, TeamView{ID: team.ID, Name: team.Name})
	}

	playerNames := map[int64]string{}
	for _, p := range players {
		playerNames[p.ID] = p.Name
		view := PlayerView{
			ID:       p.ID,
			PublicID: p.PublicID,
			Name:     p.Name,
			TeamID:   p.TeamID,
			Active:   p.Status == PlayerActive,
			Role:     roles[p.ID],
		}
		for i := range snap.Teams {
			if snap.Teams[i].ID == p.TeamID {
				snap.Teams[i].Players = append(snap.Teams[i].Players, view)
			}
		}
		if p.ID == viewerRec.ID {
			snap.Viewer = PlayerContext{
				PlayerID: p.ID,
				PublicID: p.PublicID,
				Name:     p.Name,
				TeamID:   p.TeamID,
				TeamName: teamNames[p.TeamID],
				Role:     roles[p.ID],
			}
		}
	}

	if round == nil {
		return snap, nil
	}

	roundView, err := loadRoundView(ops, round, teamNames, playerNames)
	if err != nil {
		return nil, err
	}
	snap.CurrentRound = roundView
	return snap, nil
}

func loadRoundView(ops Ops, round *RoundRecord, teamNames map[int64]string, playerNames map[int64]string) (*RoundView, error) {
	cards, err := ops.CardsByRound(round.ID)
	if err != nil {
		return nil, err
	}
	turns, err := ops.TurnsByRound(round.ID)
	if err != nil {
		return nil, err
	}

	view := &RoundView{
		ID:            round.ID,
		Number:        round.Number,
		Status:        round.Status,
		WinningTeamID: round.WinningTeamID,
	}
	cardWords := map[int64]string{}
	for _, card := range cards {
		cardWords[card.ID] = card.Word
		cv := CardView{
			ID:       card.ID,
			Word:     card.Word,
			Type:     card.Type,
			TeamID:   card.TeamID,
			Selected: card.Selected,
		}
		if card.TeamID != nil {
			cv.TeamName = teamNames[*card.TeamID]
		}
		view.Cards = append(view.Cards, cv)
	}

	for _, turn := range turns {
		tv := TurnView{
			ID:               turn.ID,
			PublicID:         turn.PublicID,
			TeamID:           turn.TeamID,
			TeamName:         teamNames[turn.TeamID],
			Status:           turn.Status,
			GuessesRemaining: turn.GuessesRemaining,
			CreatedAt:        turn.CreatedAt,
			CompletedAt:      turn.CompletedAt,
		}
		clue, err := ops.ClueByTurn(turn.ID)
		if err != nil {
			return nil, err
		}
		if clue != nil {
			tv.Clue = &ClueView{Word: clue.Word, TargetCount: clue.TargetCount, CreatedAt: clue.CreatedAt}
		}
		guesses, err := ops.GuessesByTurn(turn.ID)
		if err != nil {
			return nil, err
		}
		for _, g := range guesses {
			tv.Guesses = append(tv.Guesses, GuessView{
				PlayerName: playerNames[g.PlayerID],
				CardWord:   cardWords[g.CardID],
				Outcome:    g.Outcome,
				CreatedAt:  g.CreatedAt,
			})
		}
		view.Turns = append(view.Turns, tv)
	}
	return view, nil
}

// ActiveTurn returns the round's ACTIVE turn view, nil if none.
func (r *RoundView) ActiveTurn() *TurnView {
	for i := range r.Turns {
		if r.Turns[i].Status == TurnActive {
			return &r.Turns[i]
		}
	}
	return nil
}

// LastGuess returns the most recent guess across the round's turns.
func (r *RoundView) LastGuess() *GuessView {
	for i := len(r.Turns) - 1; i >= 0; i-- {
		if n := len(r.Turns[i].Guesses); n > 0 {
			return &r.Turns[i].Guesses[n-1]
		}
	}
	return nil
}
