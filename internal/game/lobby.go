package game

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	mathrand "math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

const (
	maxUniqueAttempts = 10
	maxPlayersPerTeam = 8
	minPlayersPerTeam = 2
)

// Default team names for a fresh game.
var defaultTeamNames = []string{"Team Red", "Team Blue"}

func newJoinCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "AAAAAA"
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}

var guestAdjectives = []string{
	"brisk", "clever", "daring", "eager", "gentle", "keen",
	"lucky", "nimble", "quiet", "swift", "witty", "bold",
}

var guestNouns = []string{
	"heron", "badger", "falcon", "otter", "lynx", "raven",
	"marten", "osprey", "stoat", "kestrel", "vole", "wren",
}

func generateGuestUsername(rng *mathrand.Rand) string {
	adjective := guestAdjectives[rng.IntN(len(guestAdjectives))]
	noun := guestNouns[rng.IntN(len(guestNouns))]
	return fmt.Sprintf("%s-%s-%d", adjective, noun, rng.IntN(1000))
}

// CreateGameResult identifies a fresh lobby.
type CreateGameResult struct {
	PublicID string
	JoinCode string
	Status   GameStatus
	Format   GameFormat
	Teams    []string
}

// CreateGame opens a lobby with two empty teams. The join code is drawn
// with a bounded collision retry against existing games.
func (e *Engine) CreateGame(ctx context.Context, format GameFormat) (*CreateGameResult, error) {
	switch format {
	case FormatQuick, FormatBestOfThree, FormatRoundRobin:
	case "":
		format = FormatQuick
	default:
		return nil, invalidInputf("unknown game format %q", format)
	}

	var created GameRecord
	err := e.store.Atomic(ctx, func(ops Ops) error {
		code, err := retryUnique(
			func() (string, error) { return newJoinCode(), nil },
			func(candidate string) (bool, error) {
				existing, err := ops.GameByJoinCode(candidate)
				return existing != nil, err
			},
			maxUniqueAttempts,
		)
		if err != nil {
			return unexpected(err, "generate join code")
		}
		created = GameRecord{
			PublicID: uuid.NewString(),
			JoinCode: code,
			Status:   GameLobby,
			Format:   format,
		}
		if err := ops.CreateGame(&created); err != nil {
			return err
		}
		for _, name := range defaultTeamNames {
			if err := ops.CreateTeam(&TeamRecord{GameID: created.ID, Name: name}); err != nil {
				return err
			}
		}
		return ops.AppendEvent(&EventRecord{
			GameID:  created.ID,
			Type:    "game_created",
			Payload: map[string]any{"format": string(format), "join_code": code},
		})
	})
	if err != nil {
		return nil, asDomainFailure(err, "create game")
	}

	log.Printf("game created game_id=%s join_code=%s format=%s", created.PublicID, created.JoinCode, format)
	return &CreateGameResult{
		PublicID: created.PublicID,
		JoinCode: created.JoinCode,
		Status:   created.Status,
		Format:   created.Format,
		Teams:    defaultTeamNames,
	}, nil
}

// CreateGuestUser mints a guest account with a generated username,
// retrying on collision up to a fixed bound.
func (e *Engine) CreateGuestUser(ctx context.Context) (*UserRecord, error) {
	rng := newRNG()
	var created UserRecord
	err := e.store.Atomic(ctx, func(ops Ops) error {
		username, err := retryUnique(
			func() (string, error) { return generateGuestUsername(rng), nil },
			func(candidate string) (bool, error) {
				existing, err := ops.UserByUsername(candidate)
				return existing != nil, err
			},
			maxUniqueAttempts,
		)
		if err != nil {
			return unexpected(err, "generate guest username")
		}
		created = UserRecord{Username: username}
		return ops.CreateUser(&created)
	})
	if err != nil {
		return nil, asDomainFailure(err, "create guest user")
	}
	log.Printf("guest user created user_id=%d username=%s", created.ID, created.Username)
	return &created, nil
}

// AddPlayerInput joins a user to a team. TeamName may be empty, in which
// case the smaller team is chosen.
type AddPlayerInput struct {
	GameID   string
	UserID   int64
	Name     string
	TeamName string
}

// AddPlayerResult identifies the joined player.
type AddPlayerResult struct {
	PublicID string
	Name     string
	TeamName string
}

// AddPlayer joins a user to a game that is still in its lobby (or paused).
// A user can hold at most one player per game.
func (e *Engine) AddPlayer(ctx context.Context, in AddPlayerInput) (*AddPlayerResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalidInputf("player name is required")
	}

	var result AddPlayerResult
	err := e.store.Atomic(ctx, func(ops Ops) error {
		gameRec, err := ops.GameByPublicID(in.GameID)
		if err != nil {
			return err
		}
		if gameRec == nil {
			return notFoundf("game %s not found", in.GameID)
		}
		if gameRec.Status != GameLobby && gameRec.Status != GamePaused {
			return invalidStatef("players can only join a lobby or paused game, game is %s", gameRec.Status)
		}
		existing, err := ops.PlayerByUser(gameRec.ID, in.UserID)
		if err != nil {
			return err
		}
		if existing != nil {
			return invalidStatef("user %d already joined game %s", in.UserID, in.GameID)
		}

		teams, err := ops.TeamsByGame(gameRec.ID)
		if err != nil {
			return err
		}
		players, err := ops.PlayersByGame(gameRec.ID)
		if err != nil {
			return err
		}
		sizes := map[int64]int{}
		for _, p := range players {
			sizes[p.TeamID]++
		}

		var team *TeamRecord
		if in.TeamName != "" {
			for i := range teams {
				if strings.EqualFold(teams[i].Name, in.TeamName) {
					team = &teams[i]
				}
			}
			if team == nil {
				return invalidInputf("game %s has no team named %q", in.GameID, in.TeamName)
			}
		} else {
			for i := range teams {
				if team == nil || sizes[teams[i].ID] < sizes[team.ID] {
					team = &teams[i]
				}
			}
			if team == nil {
				return invalidStatef("game %s has no teams", in.GameID)
			}
		}
		if sizes[team.ID] >= maxPlayersPerTeam {
			return invalidStatef("team %s is full", team.Name)
		}

		player := PlayerRecord{
			PublicID: uuid.NewString(),
			GameID:   gameRec.ID,
			TeamID:   team.ID,
			UserID:   in.UserID,
			Name:     name,
			Status:   PlayerActive,
		}
		if err := ops.CreatePlayer(&player); err != nil {
			return err
		}
		result = AddPlayerResult{PublicID: player.PublicID, Name: player.Name, TeamName: team.Name}
		return ops.AppendEvent(&EventRecord{
			GameID:   gameRec.ID,
			PlayerID: &player.ID,
			Type:     "player_joined",
			Payload:  map[string]any{"name": name, "team": team.Name},
		})
	})
	if err != nil {
		return nil, asDomainFailure(err, "add player")
	}

	log.Printf("player joined game_id=%s player=%s team=%s", in.GameID, result.Name, result.TeamName)
	return &result, nil
}

// SetPlayerStatus marks the caller's player ACTIVE or INACTIVE. Inactive
// players keep their seat but are skipped by role assignment and the
// start-game head count.
func (e *Engine) SetPlayerStatus(ctx context.Context, gameID string, userID int64, active bool) error {
	status := PlayerInactive
	if active {
		status = PlayerActive
	}
	err := e.store.Atomic(ctx, func(ops Ops) error {
		gameRec, err := ops.GameByPublicID(gameID)
		if err != nil {
			return err
		}
		if gameRec == nil {
			return notFoundf("game %s not found", gameID)
		}
		player, err := ops.PlayerByUser(gameRec.ID, userID)
		if err != nil {
			return err
		}
		if player == nil {
			return unauthorizedf("user %d is not a player of game %s", userID, gameID)
		}
		if player.Status == status {
			return nil
		}
		if err := ops.UpdatePlayerStatus(player.ID, status); err != nil {
			return err
		}
		return ops.AppendEvent(&EventRecord{
			GameID:   gameRec.ID,
			PlayerID: &player.ID,
			Type:     "player_status_changed",
			Payload:  map[string]any{"name": player.Name, "status": string(status)},
		})
	})
	if err != nil {
		return asDomainFailure(err, "set player status")
	}
	log.Printf("player status changed game_id=%s user_id=%d status=%s", gameID, userID, status)
	return nil
}

// StartGame moves a lobby to IN_PROGRESS once both teams can field a
// codemaster and at least one codebreaker, and opens round one.
func (e *Engine) StartGame(ctx context.Context, gameID string, userID int64) (*RoundResult, error) {
	snap, err := e.GetSnapshot(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if snap.Game.Status != GameLobby && snap.Game.Status != GamePaused {
		return nil, invalidStatef("game %s cannot start from %s", gameID, snap.Game.Status)
	}
	for _, team := range snap.Teams {
		active := 0
		for _, p := range team.Players {
			if p.Active {
				active++
			}
		}
		if active < minPlayersPerTeam {
			return nil, invalidStatef("team %s needs at least %d active players, has %d", team.Name, minPlayersPerTeam, active)
		}
	}

	var round RoundRecord
	err = e.store.Atomic(ctx, func(ops Ops) error {
		gameRec, err := ops.GameByPublicID(gameID)
		if err != nil {
			return err
		}
		if gameRec == nil {
			return notFoundf("game %s not found", gameID)
		}
		if gameRec.Status != GameLobby && gameRec.Status != GamePaused {
			return conflictf("game %s already %s", gameID, gameRec.Status)
		}
		if err := ops.UpdateGameStatus(gameRec.ID, GameInProgress); err != nil {
			return err
		}
		current, err := ops.CurrentRound(gameRec.ID)
		if err != nil {
			return err
		}
		if current != nil {
			round = *current
			return nil
		}
		round = RoundRecord{GameID: gameRec.ID, Number: 1, Status: RoundSetup}
		if err := ops.CreateRound(&round); err != nil {
			return err
		}
		return ops.AppendEvent(&EventRecord{
			GameID:  gameRec.ID,
			RoundID: &round.ID,
			Type:    "game_started",
			Payload: map[string]any{"round_number": round.Number},
		})
	})
	if err != nil {
		return nil, asDomainFailure(err, "start game")
	}

	log.Printf("game started game_id=%s round=%d", gameID, round.Number)
	return &RoundResult{Number: round.Number, Status: round.Status}, nil
}
