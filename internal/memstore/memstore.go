// Package memstore is an in-memory implementation of the game store. It
// backs the engine's tests and no-database runs. Atomic clones the state,
// applies the batch, and swaps on success, so a failed batch leaves
// nothing behind; the mutex serializes writers the way the SQL store's
// transaction isolation does.
package memstore

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"codewords/internal/game"
)

type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	nextID  int64
	games   []game.GameRecord
	teams   []game.TeamRecord
	users   []game.UserRecord
	players []game.PlayerRecord
	rounds  []game.RoundRecord
	cards   []game.CardRecord
	turns   []game.TurnRecord
	clues   []game.ClueRecord
	guesses []game.GuessRecord
	roles   []game.RoleAssignmentRecord
	events  []game.EventRecord
	words   map[string][]string
}

func New() *Store {
	return &Store{state: &state{nextID: 1, words: make(map[string][]string)}}
}

// AddWords seeds the word pool for a deck and language.
func (s *Store) AddWords(deck, languageCode string, words []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := deckKey(deck, languageCode)
	s.state.words[key] = append(s.state.words[key], words...)
}

func deckKey(deck, languageCode string) string {
	return strings.ToUpper(deck) + "|" + strings.ToLower(languageCode)
}

func (s *Store) View(ctx context.Context, fn func(game.Ops) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	snapshot := s.state.clone()
	s.mu.Unlock()
	return fn(&ops{state: snapshot})
}

func (s *Store) Atomic(ctx context.Context, fn func(game.Ops) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(&ops{state: work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (st *state) clone() *state {
	next := &state{
		nextID:  st.nextID,
		games:   append([]game.GameRecord(nil), st.games...),
		teams:   append([]game.TeamRecord(nil), st.teams...),
		users:   append([]game.UserRecord(nil), st.users...),
		players: append([]game.PlayerRecord(nil), st.players...),
		rounds:  append([]game.RoundRecord(nil), st.rounds...),
		cards:   append([]game.CardRecord(nil), st.cards...),
		turns:   append([]game.TurnRecord(nil), st.turns...),
		clues:   append([]game.ClueRecord(nil), st.clues...),
		guesses: append([]game.GuessRecord(nil), st.guesses...),
		roles:   append([]game.RoleAssignmentRecord(nil), st.roles...),
		events:  append([]game.EventRecord(nil), st.events...),
		words:   st.words,
	}
	for i := range next.rounds {
		next.rounds[i].WinningTeamID = clonePtr(next.rounds[i].WinningTeamID)
	}
	for i := range next.cards {
		next.cards[i].TeamID = clonePtr(next.cards[i].TeamID)
	}
	for i := range next.turns {
		next.turns[i].CompletedAt = clonePtr(next.turns[i].CompletedAt)
	}
	return next
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type ops struct {
	state *state
}

func (o *ops) id() int64 {
	id := o.state.nextID
	o.state.nextID++
	return id
}

func now() time.Time { return time.Now().UTC() }

func (o *ops) GameByPublicID(publicID string) (*game.GameRecord, error) {
	for i := range o.state.games {
		if o.state.games[i].PublicID == publicID {
			rec := o.state.games[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (o *ops) GameByJoinCode(code string) (*game.GameRecord, error) {
	for i := range o.state.games {
		if o.state.games[i].JoinCode == code {
			rec := o.state.games[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (o *ops) CreateGame(rec *game.GameRecord) error {
	rec.ID = o.id()
	rec.CreatedAt = now()
	rec.UpdatedAt = rec.CreatedAt
	o.state.games = append(o.state.games, *rec)
	return nil
}

func (o *ops) UpdateGameStatus(gameID int64, status game.GameStatus) error {
	for i := range o.state.games {
		if o.state.games[i].ID == gameID {
			o.state.games[i].Status = status
			o.state.games[i].UpdatedAt = now()
			return nil
		}
	}
	return fmt.Errorf("game %d not found", gameID)
}

func (o *ops) TeamsByGame(gameID int64) ([]game.TeamRecord, error) {
	var teams []game.TeamRecord
	for _, t := range o.state.teams {
		if t.GameID == gameID {
			teams = append(teams, t)
		}
	}
	return teams, nil
}

func (o *ops) CreateTeam(rec *game.TeamRecord) error {
	rec.ID = o.id()
	o.state.teams = append(o.state.teams, *rec)
	return nil
}

func (o *ops) UserByUsername(username string) (*game.UserRecord, error) {
	for i := range o.state.users {
		if o.state.users[i].Username == username {
			rec := o.state.users[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (o *ops) CreateUser(rec *game.UserRecord) error {
	rec.ID = o.id()
	rec.CreatedAt = now()
	o.state.users = append(o.state.users, *rec)
	return nil
}

func (o *ops) PlayersByGame(gameID int64) ([]game.PlayerRecord, error) {
	var players []game.PlayerRecord
	for _, p := range o.state.players {
		if p.GameID == gameID {
			players = append(players, p)
		}
	}
	return players, nil
}

func (o *ops) PlayerByUser(gameID, userID int64) (*game.PlayerRecord, error) {
	for i := range o.state.players {
		if o.state.players[i].GameID == gameID && o.state.players[i].UserID == userID {
			rec := o.state.players[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (o *ops) CreatePlayer(rec *game.PlayerRecord) error {
	rec.ID = o.id()
	rec.CreatedAt = now()
	rec.StatusChangedAt = rec.CreatedAt
	o.state.players = append(o.state.players, *rec)
	return nil
}

func (o *ops) UpdatePlayerStatus(playerID int64, status game.PlayerStatus) error {
	for i := range o.state.players {
		if o.state.players[i].ID == playerID {
			o.state.players[i].Status = status
			o.state.players[i].StatusChangedAt = now()
			return nil
		}
	}
	return fmt.Errorf("player %d not found", playerID)
}

func (o *ops) CurrentRound(gameID int64) (*game.RoundRecord, error) {
	var current *game.RoundRecord
	for i := range o.state.rounds {
		r := o.state.rounds[i]
		if r.GameID == gameID && (current == nil || r.Number > current.Number) {
			rec := r
			current = &rec
		}
	}
	return current, nil
}

func (o *ops) RoundsByGame(gameID int64) ([]game.RoundRecord, error) {
	var rounds []game.RoundRecord
	for _, r := range o.state.rounds {
		if r.GameID == gameID {
			rounds = append(rounds, r)
		}
	}
	return rounds, nil
}

func (o *ops) RoundByNumber(gameID int64, number int) (*game.RoundRecord, error) {
	for i := range o.state.rounds {
		if o.state.rounds[i].GameID == gameID && o.state.rounds[i].Number == number {
			rec := o.state.rounds[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (o *ops) CreateRound(rec *game.RoundRecord) error {
	rec.ID = o.id()
	rec.CreatedAt = now()
	rec.UpdatedAt = rec.CreatedAt
	o.state.rounds = append(o.state.rounds, *rec)
	return nil
}

func (o *ops) UpdateRoundStatus(roundID int64, status game.RoundStatus) error {
	for i := range o.state.rounds {
		if o.state.rounds[i].ID == roundID {
			o.state.rounds[i].Status = status
			o.state.rounds[i].UpdatedAt = now()
			return nil
		}
	}
	return fmt.Errorf("round %d not found", roundID)
}

func (o *ops) CompleteRound(roundID, winningTeamID int64) error {
	for i := range o.state.rounds {
		if o.state.rounds[i].ID != roundID {
			continue
		}
		if o.state.rounds[i].Status == game.RoundCompleted {
			return game.ErrConflict
		}
		winner := winningTeamID
		o.state.rounds[i].Status = game.RoundCompleted
		o.state.rounds[i].WinningTeamID = &winner
		o.state.rounds[i].UpdatedAt = now()
		return nil
	}
	return fmt.Errorf("round %d not found", roundID)
}

func (o *ops) CardsByRound(roundID int64) ([]game.CardRecord, error) {
	var cards []game.CardRecord
	for _, c := range o.state.cards {
		if c.RoundID == roundID {
			cards = append(cards, c)
		}
	}
	return cards, nil
}

func (o *ops) ReplaceCards(roundID int64, cards []game.CardRecord) ([]game.CardRecord, error) {
	kept := o.state.cards[:0]
	for _, c := range o.state.cards {
		if c.RoundID != roundID {
			kept = append(kept, c)
		}
	}
	o.state.cards = kept
	inserted := make([]game.CardRecord, 0, len(cards))
	for _, c := range cards {
		c.ID = o.id()
		c.RoundID = roundID
		c.Selected = false
		o.state.cards = append(o.state.cards, c)
		inserted = append(inserted, c)
	}
	return inserted, nil
}

func (o *ops) SelectCard(cardID int64) error {
	for i := range o.state.cards {
		if o.state.cards[i].ID != cardID {
			continue
		}
		if o.state.cards[i].Selected {
			return game.ErrConflict
		}
		o.state.cards[i].Selected = true
		return nil
	}
	return fmt.Errorf("card %d not found", cardID)
}

func (o *ops) TurnsByRound(roundID int64) ([]game.TurnRecord, error) {
	var turns []game.TurnRecord
	for _, t := range o.state.turns {
		if t.RoundID == roundID {
			turns = append(turns, t)
		}
	}
	return turns, nil
}

func (o *ops) ActiveTurn(roundID int64) (*game.TurnRecord, error) {
	for i := range o.state.turns {
		if o.state.turns[i].RoundID == roundID && o.state.turns[i].Status == game.TurnActive {
			rec := o.state.turns[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (o *ops) CreateTurn(rec *game.TurnRecord) error {
	for _, t := range o.state.turns {
		if t.RoundID == rec.RoundID && t.Status == game.TurnActive {
			return game.ErrConflict
		}
	}
	rec.ID = o.id()
	rec.CreatedAt = now()
	o.state.turns = append(o.state.turns, *rec)
	return nil
}

func (o *ops) SetTurnGuesses(turnID int64, remaining int) error {
	for i := range o.state.turns {
		if o.state.turns[i].ID != turnID {
			continue
		}
		if o.state.turns[i].Status != game.TurnActive {
			return game.ErrConflict
		}
		o.state.turns[i].GuessesRemaining = remaining
		return nil
	}
	return fmt.Errorf("turn %d not found", turnID)
}

func (o *ops) DecrementTurnGuesses(turnID int64) (int, error) {
	for i := range o.state.turns {
		if o.state.turns[i].ID != turnID {
			continue
		}
		if o.state.turns[i].Status != game.TurnActive || o.state.turns[i].GuessesRemaining <= 0 {
			return 0, game.ErrConflict
		}
		o.state.turns[i].GuessesRemaining--
		return o.state.turns[i].GuessesRemaining, nil
	}
	return 0, fmt.Errorf("turn %d not found", turnID)
}

func (o *ops) CompleteTurn(turnID int64) error {
	for i := range o.state.turns {
		if o.state.turns[i].ID != turnID {
			continue
		}
		if o.state.turns[i].Status != game.TurnActive {
			return game.ErrConflict
		}
		completed := now()
		o.state.turns[i].Status = game.TurnCompleted
		o.state.turns[i].CompletedAt = &completed
		return nil
	}
	return fmt.Errorf("turn %d not found", turnID)
}

func (o *ops) ClueByTurn(turnID int64) (*game.ClueRecord, error) {
	for i := range o.state.clues {
		if o.state.clues[i].TurnID == turnID {
			rec := o.state.clues[i]
			return &rec, nil
		}
	}
	return nil, nil
}

func (o *ops) CreateClue(rec *game.ClueRecord) error {
	for _, c := range o.state.clues {
		if c.TurnID == rec.TurnID {
			return game.ErrConflict
		}
	}
	rec.ID = o.id()
	rec.CreatedAt = now()
	o.state.clues = append(o.state.clues, *rec)
	return nil
}

func (o *ops) GuessesByTurn(turnID int64) ([]game.GuessRecord, error) {
	var guesses []game.GuessRecord
	for _, g := range o.state.guesses {
		if g.TurnID == turnID {
			guesses = append(guesses, g)
		}
	}
	return guesses, nil
}

func (o *ops) CreateGuess(rec *game.GuessRecord) error {
	rec.ID = o.id()
	rec.CreatedAt = now()
	o.state.guesses = append(o.state.guesses, *rec)
	return nil
}

func (o *ops) RolesByRound(roundID int64) ([]game.RoleAssignmentRecord, error) {
	var roles []game.RoleAssignmentRecord
	for _, r := range o.state.roles {
		if r.RoundID == roundID {
			roles = append(roles, r)
		}
	}
	return roles, nil
}

func (o *ops) ClearRoles(roundID int64) error {
	kept := o.state.roles[:0]
	for _, r := range o.state.roles {
		if r.RoundID != roundID {
			kept = append(kept, r)
		}
	}
	o.state.roles = kept
	return nil
}

func (o *ops) AssignRole(rec *game.RoleAssignmentRecord) error {
	rec.ID = o.id()
	if rec.AssignedAt.IsZero() {
		rec.AssignedAt = now()
	}
	o.state.roles = append(o.state.roles, *rec)
	return nil
}

func (o *ops) LatestCodemaster(gameID, teamID int64) (*game.PlayerRecord, error) {
	players := map[int64]game.PlayerRecord{}
	for _, p := range o.state.players {
		if p.GameID == gameID && p.TeamID == teamID {
			players[p.ID] = p
		}
	}
	var (
		latest   *game.PlayerRecord
		latestID int64
	)
	for _, r := range o.state.roles {
		if r.Role != game.RoleCodemaster {
			continue
		}
		p, ok := players[r.PlayerID]
		if !ok {
			continue
		}
		// Role rows are append-only, so a larger ID is a later assignment.
		if latest == nil || r.ID > latestID {
			rec := p
			latest = &rec
			latestID = r.ID
		}
	}
	return latest, nil
}

func (o *ops) RandomWords(deck, languageCode string, count int) ([]string, error) {
	pool := o.state.words[deckKey(deck, languageCode)]
	if len(pool) < count {
		return nil, fmt.Errorf("deck %s/%s has %d words, need %d", deck, languageCode, len(pool), count)
	}
	indexes := rand.Perm(len(pool))[:count]
	words := make([]string, count)
	for i, idx := range indexes {
		words[i] = pool[idx]
	}
	return words, nil
}

func (o *ops) AppendEvent(rec *game.EventRecord) error {
	rec.ID = o.id()
	rec.CreatedAt = now()
	o.state.events = append(o.state.events, *rec)
	return nil
}

// Events returns a copy of the audit log, newest last.
func (s *Store) Events() []game.EventRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]game.EventRecord(nil), s.state.events...)
}
