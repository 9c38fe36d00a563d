package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"codewords/internal/game"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements game.Store over Postgres. Atomic maps to one database
// transaction; guarded updates use conditional WHERE clauses and report a
// lost race as game.ErrConflict, so concurrent writers serialize on the
// row instead of double-applying effects.
type Store struct {
	conn *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

func (s *Store) View(ctx context.Context, fn func(game.Ops) error) error {
	return s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ops{tx: tx})
	}, &sql.TxOptions{ReadOnly: true})
}

func (s *Store) Atomic(ctx context.Context, fn func(game.Ops) error) error {
	return s.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ops{tx: tx})
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

type ops struct {
	tx *gorm.DB
}

func noRows(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func gameRecord(m Game) *game.GameRecord {
	return &game.GameRecord{
		ID:        m.ID,
		PublicID:  m.PublicID,
		JoinCode:  m.JoinCode,
		Status:    game.GameStatus(m.Status),
		Format:    game.GameFormat(m.Format),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (o *ops) GameByPublicID(publicID string) (*game.GameRecord, error) {
	var m Game
	if err := o.tx.Where("public_id = ?", publicID).First(&m).Error; err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return gameRecord(m), nil
}

func (o *ops) GameByJoinCode(code string) (*game.GameRecord, error) {
	var m Game
	if err := o.tx.Where("join_code = ?", code).First(&m).Error; err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return gameRecord(m), nil
}

func (o *ops) CreateGame(rec *game.GameRecord) error {
	m := Game{
		PublicID: rec.PublicID,
		JoinCode: rec.JoinCode,
		Status:   string(rec.Status),
		Format:   string(rec.Format),
	}
	if err := o.tx.Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrConflict
		}
		return err
	}
	rec.ID = m.ID
	rec.CreatedAt = m.CreatedAt
	rec.UpdatedAt = m.UpdatedAt
	return nil
}

func (o *ops) UpdateGameStatus(gameID int64, status game.GameStatus) error {
	return o.tx.Model(&Game{}).Where("id = ?", gameID).
		Update("status", string(status)).Error
}

func (o *ops) TeamsByGame(gameID int64) ([]game.TeamRecord, error) {
	var models []Team
	if err := o.tx.Where("game_id = ?", gameID).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	teams := make([]game.TeamRecord, len(models))
	for i, m := range models {
		teams[i] = game.TeamRecord{ID: m.ID, GameID: m.GameID, Name: m.Name}
	}
	return teams, nil
}

func (o *ops) CreateTeam(rec *game.TeamRecord) error {
	m := Team{GameID: rec.GameID, Name: rec.Name}
	if err := o.tx.Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrConflict
		}
		return err
	}
	rec.ID = m.ID
	return nil
}

func (o *ops) UserByUsername(username string) (*game.UserRecord, error) {
	var m User
	if err := o.tx.Where("username = ?", username).First(&m).Error; err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &game.UserRecord{ID: m.ID, Username: m.Username, CreatedAt: m.CreatedAt}, nil
}

func (o *ops) CreateUser(rec *game.UserRecord) error {
	m := User{Username: rec.Username}
	if err := o.tx.Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrConflict
		}
		return err
	}
	rec.ID = m.ID
	rec.CreatedAt = m.CreatedAt
	return nil
}

func playerRecord(m Player) game.PlayerRecord {
	return game.PlayerRecord{
		ID:              m.ID,
		PublicID:        m.PublicID,
		GameID:          m.GameID,
		TeamID:          m.TeamID,
		UserID:          m.UserID,
		Name:            m.Name,
		Status:          game.PlayerStatus(m.Status),
		StatusChangedAt: m.StatusChangedAt,
		CreatedAt:       m.CreatedAt,
	}
}

func (o *ops) PlayersByGame(gameID int64) ([]game.PlayerRecord, error) {
	var models []Player
	if err := o.tx.Where("game_id = ?", gameID).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	players := make([]game.PlayerRecord, len(models))
	for i, m := range models {
		players[i] = playerRecord(m)
	}
	return players, nil
}

func (o *ops) PlayerByUser(gameID, userID int64) (*game.PlayerRecord, error) {
	var m Player
	if err := o.tx.Where("game_id = ? AND user_id = ?", gameID, userID).First(&m).Error; err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	rec := playerRecord(m)
	return &rec, nil
}

func (o *ops) CreatePlayer(rec *game.PlayerRecord) error {
	m := Player{
		PublicID:        rec.PublicID,
		GameID:          rec.GameID,
		UserID:          rec.UserID,
		TeamID:          rec.TeamID,
		Name:            rec.Name,
		Status:          string(rec.Status),
		StatusChangedAt: time.Now().UTC(),
	}
	if err := o.tx.Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrConflict
		}
		return err
	}
	rec.ID = m.ID
	rec.CreatedAt = m.CreatedAt
	rec.StatusChangedAt = m.StatusChangedAt
	return nil
}

func (o *ops) UpdatePlayerStatus(playerID int64, status game.PlayerStatus) error {
	return o.tx.Model(&Player{}).Where("id = ?", playerID).Updates(map[string]any{
		"status":            string(status),
		"status_changed_at": time.Now().UTC(),
	}).Error
}

func roundRecord(m Round) game.RoundRecord {
	return game.RoundRecord{
		ID:            m.ID,
		GameID:        m.GameID,
		Number:        m.Number,
		Status:        game.RoundStatus(m.Status),
		WinningTeamID: m.WinningTeamID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (o *ops) CurrentRound(gameID int64) (*game.RoundRecord, error) {
	var m Round
	err := o.tx.Where("game_id = ?", gameID).Order("number DESC").First(&m).Error
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	rec := roundRecord(m)
	return &rec, nil
}

func (o *ops) RoundsByGame(gameID int64) ([]game.RoundRecord, error) {
	var models []Round
	if err := o.tx.Where("game_id = ?", gameID).Order("number").Find(&models).Error; err != nil {
		return nil, err
	}
	rounds := make([]game.RoundRecord, len(models))
	for i, m := range models {
		rounds[i] = roundRecord(m)
	}
	return rounds, nil
}

func (o *ops) RoundByNumber(gameID int64, number int) (*game.RoundRecord, error) {
	var m Round
	err := o.tx.Where("game_id = ? AND number = ?", gameID, number).First(&m).Error
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	rec := roundRecord(m)
	return &rec, nil
}

func (o *ops) CreateRound(rec *game.RoundRecord) error {
	m := Round{GameID: rec.GameID, Number: rec.Number, Status: string(rec.Status)}
	if err := o.tx.Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrConflict
		}
		return err
	}
	rec.ID = m.ID
	rec.CreatedAt = m.CreatedAt
	rec.UpdatedAt = m.UpdatedAt
	return nil
}

func (o *ops) UpdateRoundStatus(roundID int64, status game.RoundStatus) error {
	return o.tx.Model(&Round{}).Where("id = ?", roundID).
		Update("status", string(status)).Error
}

func (o *ops) CompleteRound(roundID, winningTeamID int64) error {
	res := o.tx.Model(&Round{}).
		Where("id = ? AND status <> ?", roundID, string(game.RoundCompleted)).
		Updates(map[string]any{
			"status":          string(game.RoundCompleted),
			"winning_team_id": winningTeamID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return game.ErrConflict
	}
	return nil
}

func cardRecord(m Card) game.CardRecord {
	return game.CardRecord{
		ID:       m.ID,
		RoundID:  m.RoundID,
		Word:     m.Word,
		Type:     game.CardType(m.Type),
		TeamID:   m.TeamID,
		Selected: m.Selected,
	}
}

func (o *ops) CardsByRound(roundID int64) ([]game.CardRecord, error) {
	var models []Card
	if err := o.tx.Where("round_id = ?", roundID).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	cards := make([]game.CardRecord, len(models))
	for i, m := range models {
		cards[i] = cardRecord(m)
	}
	return cards, nil
}

func (o *ops) ReplaceCards(roundID int64, cards []game.CardRecord) ([]game.CardRecord, error) {
	if err := o.tx.Where("round_id = ?", roundID).Delete(&Card{}).Error; err != nil {
		return nil, err
	}
	inserted := make([]game.CardRecord, 0, len(cards))
	for _, rec := range cards {
		m := Card{
			RoundID: roundID,
			Word:    rec.Word,
			Type:    string(rec.Type),
			TeamID:  rec.TeamID,
		}
		if err := o.tx.Create(&m).Error; err != nil {
			if isUniqueViolation(err) {
				return nil, game.ErrConflict
			}
			return nil, err
		}
		inserted = append(inserted, cardRecord(m))
	}
	return inserted, nil
}

func (o *ops) SelectCard(cardID int64) error {
	res := o.tx.Model(&Card{}).
		Where("id = ? AND selected = ?", cardID, false).
		Update("selected", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return game.ErrConflict
	}
	return nil
}

func turnRecord(m Turn) game.TurnRecord {
	return game.TurnRecord{
		ID:               m.ID,
		PublicID:         m.PublicID,
		RoundID:          m.RoundID,
		TeamID:           m.TeamID,
		Status:           game.TurnStatus(m.Status),
		GuessesRemaining: m.GuessesRemaining,
		CreatedAt:        m.CreatedAt,
		CompletedAt:      m.CompletedAt,
	}
}

func (o *ops) TurnsByRound(roundID int64) ([]game.TurnRecord, error) {
	var models []Turn
	err := o.tx.Where("round_id = ?", roundID).Order("created_at, id").Find(&models).Error
	if err != nil {
		return nil, err
	}
	turns := make([]game.TurnRecord, len(models))
	for i, m := range models {
		turns[i] = turnRecord(m)
	}
	return turns, nil
}

func (o *ops) ActiveTurn(roundID int64) (*game.TurnRecord, error) {
	var m Turn
	err := o.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("round_id = ? AND status = ?", roundID, string(game.TurnActive)).
		First(&m).Error
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	rec := turnRecord(m)
	return &rec, nil
}

func (o *ops) CreateTurn(rec *game.TurnRecord) error {
	// The active-turn invariant is enforced under the transaction: the
	// engine checks ActiveTurn (row-locked) before creating.
	m := Turn{
		PublicID:         rec.PublicID,
		RoundID:          rec.RoundID,
		TeamID:           rec.TeamID,
		Status:           string(rec.Status),
		GuessesRemaining: rec.GuessesRemaining,
	}
	if err := o.tx.Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrConflict
		}
		return err
	}
	rec.ID = m.ID
	rec.CreatedAt = m.CreatedAt
	return nil
}

func (o *ops) SetTurnGuesses(turnID int64, remaining int) error {
	res := o.tx.Model(&Turn{}).
		Where("id = ? AND status = ?", turnID, string(game.TurnActive)).
		Update("guesses_remaining", remaining)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return game.ErrConflict
	}
	return nil
}

func (o *ops) DecrementTurnGuesses(turnID int64) (int, error) {
	res := o.tx.Model(&Turn{}).
		Where("id = ? AND status = ? AND guesses_remaining > 0", turnID, string(game.TurnActive)).
		Update("guesses_remaining", gorm.Expr("guesses_remaining - 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, game.ErrConflict
	}
	var m Turn
	if err := o.tx.Where("id = ?", turnID).First(&m).Error; err != nil {
		return 0, err
	}
	return m.GuessesRemaining, nil
}

func (o *ops) CompleteTurn(turnID int64) error {
	res := o.tx.Model(&Turn{}).
		Where("id = ? AND status = ?", turnID, string(game.TurnActive)).
		Updates(map[string]any{
			"status":       string(game.TurnCompleted),
			"completed_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return game.ErrConflict
	}
	return nil
}

func (o *ops) ClueByTurn(turnID int64) (*game.ClueRecord, error) {
	var m Clue
	if err := o.tx.Where("turn_id = ?", turnID).First(&m).Error; err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &game.ClueRecord{
		ID:          m.ID,
		TurnID:      m.TurnID,
		Word:        m.Word,
		TargetCount: m.TargetCount,
		CreatedAt:   m.CreatedAt,
	}, nil
}

func (o *ops) CreateClue(rec *game.ClueRecord) error {
	m := Clue{TurnID: rec.TurnID, Word: rec.Word, TargetCount: rec.TargetCount}
	if err := o.tx.Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrConflict
		}
		return err
	}
	rec.ID = m.ID
	rec.CreatedAt = m.CreatedAt
	return nil
}

func (o *ops) GuessesByTurn(turnID int64) ([]game.GuessRecord, error) {
	var models []Guess
	err := o.tx.Where("turn_id = ?", turnID).Order("created_at, id").Find(&models).Error
	if err != nil {
		return nil, err
	}
	guesses := make([]game.GuessRecord, len(models))
	for i, m := range models {
		guesses[i] = game.GuessRecord{
			ID:        m.ID,
			TurnID:    m.TurnID,
			PlayerID:  m.PlayerID,
			CardID:    m.CardID,
			Outcome:   game.Outcome(m.Outcome),
			CreatedAt: m.CreatedAt,
		}
	}
	return guesses, nil
}

func (o *ops) CreateGuess(rec *game.GuessRecord) error {
	m := Guess{
		TurnID:   rec.TurnID,
		PlayerID: rec.PlayerID,
		CardID:   rec.CardID,
		Outcome:  string(rec.Outcome),
	}
	if err := o.tx.Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrConflict
		}
		return err
	}
	rec.ID = m.ID
	rec.CreatedAt = m.CreatedAt
	return nil
}

func (o *ops) RolesByRound(roundID int64) ([]game.RoleAssignmentRecord, error) {
	var models []RoleAssignment
	if err := o.tx.Where("round_id = ?", roundID).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	roles := make([]game.RoleAssignmentRecord, len(models))
	for i, m := range models {
		roles[i] = game.RoleAssignmentRecord{
			ID:         m.ID,
			RoundID:    m.RoundID,
			PlayerID:   m.PlayerID,
			Role:       game.Role(m.Role),
			AssignedAt: m.AssignedAt,
		}
	}
	return roles, nil
}

func (o *ops) ClearRoles(roundID int64) error {
	return o.tx.Where("round_id = ?", roundID).Delete(&RoleAssignment{}).Error
}

func (o *ops) AssignRole(rec *game.RoleAssignmentRecord) error {
	m := RoleAssignment{
		RoundID:    rec.RoundID,
		PlayerID:   rec.PlayerID,
		Role:       string(rec.Role),
		AssignedAt: rec.AssignedAt,
	}
	if m.AssignedAt.IsZero() {
		m.AssignedAt = time.Now().UTC()
	}
	if err := o.tx.Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return game.ErrConflict
		}
		return err
	}
	rec.ID = m.ID
	return nil
}

func (o *ops) LatestCodemaster(gameID, teamID int64) (*game.PlayerRecord, error) {
	var m Player
	err := o.tx.
		Joins("JOIN role_assignments ON role_assignments.player_id = players.id").
		Where("players.game_id = ? AND players.team_id = ? AND role_assignments.role = ?",
			gameID, teamID, string(game.RoleCodemaster)).
		Order("role_assignments.id DESC").
		First(&m).Error
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	rec := playerRecord(m)
	return &rec, nil
}

func (o *ops) RandomWords(deck, languageCode string, count int) ([]string, error) {
	var words []string
	err := o.tx.Model(&DeckWord{}).
		Where("deck = ? AND language_code = ?", deck, languageCode).
		Order("random()").
		Limit(count).
		Pluck("word", &words).Error
	if err != nil {
		return nil, err
	}
	if len(words) < count {
		return nil, errDeckTooSmall(deck, languageCode, len(words), count)
	}
	return words, nil
}

func (o *ops) AppendEvent(rec *game.EventRecord) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return err
	}
	m := Event{
		GameID:   rec.GameID,
		RoundID:  rec.RoundID,
		PlayerID: rec.PlayerID,
		Type:     rec.Type,
		Payload:  datatypes.JSON(payload),
	}
	if err := o.tx.Create(&m).Error; err != nil {
		return err
	}
	rec.ID = m.ID
	rec.CreatedAt = m.CreatedAt
	return nil
}
