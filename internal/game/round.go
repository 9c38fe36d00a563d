package game

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// RoundResult reports a round's identity after a lifecycle operation.
type RoundResult struct {
	Number int
	Status RoundStatus
}

// CreateRound opens the next round for an in-progress game. Legal only
// when no round exists yet or the current one is completed, preserving the
// single-current-round invariant.
func (e *Engine) CreateRound(ctx context.Context, gameID string, userID int64) (*RoundResult, error) {
	snap, err := e.GetSnapshot(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if snap.Game.Status != GameInProgress {
		return nil, invalidStatef("rounds can only be created while the game is in progress, game is %s", snap.Game.Status)
	}
	if snap.CurrentRound != nil && snap.CurrentRound.Status != RoundCompleted {
		return nil, invalidStatef("round %d is still %s", snap.CurrentRound.Number, snap.CurrentRound.Status)
	}

	var created RoundRecord
	err = e.store.Atomic(ctx, func(ops Ops) error {
		current, err := ops.CurrentRound(snap.Game.ID)
		if err != nil {
			return err
		}
		next := 1
		if current != nil {
			if current.Status != RoundCompleted {
				return conflictf("round %d is still %s", current.Number, current.Status)
			}
			next = current.Number + 1
		}
		created = RoundRecord{GameID: snap.Game.ID, Number: next, Status: RoundSetup}
		if err := ops.CreateRound(&created); err != nil {
			return err
		}
		return ops.AppendEvent(&EventRecord{
			GameID:  snap.Game.ID,
			RoundID: &created.ID,
			Type:    "round_created",
			Payload: map[string]any{"round_number": next},
		})
	})
	if err != nil {
		return nil, asDomainFailure(err, "create round")
	}

	log.Printf("round created game_id=%s round=%d", gameID, created.Number)
	return &RoundResult{Number: created.Number, Status: created.Status}, nil
}

// StartRound moves a SETUP round to IN_PROGRESS once cards are dealt and
// every team has a codemaster, and opens the first turn for the starting
// team.
func (e *Engine) StartRound(ctx context.Context, gameID string, roundNumber int, userID int64) (*RoundResult, error) {
	snap, err := e.GetSnapshot(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	round := snap.CurrentRound
	if round == nil {
		return nil, notFoundf("game %s has no round to start", gameID)
	}
	if round.Number != roundNumber {
		return nil, invalidStatef("round %d is not current, current round is %d", roundNumber, round.Number)
	}
	if round.Status != RoundSetup {
		return nil, invalidStatef("round %d is %s, only setup rounds can start", roundNumber, round.Status)
	}
	if len(round.Cards) == 0 {
		return nil, invalidStatef("round %d has no cards dealt", roundNumber)
	}
	if err := checkCodemasters(snap); err != nil {
		return nil, err
	}

	firstTeam := startingTeamID(round.Cards)
	err = e.store.Atomic(ctx, func(ops Ops) error {
		rec, err := ops.RoundByNumber(snap.Game.ID, roundNumber)
		if err != nil {
			return err
		}
		if rec == nil {
			return notFoundf("round %d not found", roundNumber)
		}
		if rec.Status != RoundSetup {
			return conflictf("round %d already started", roundNumber)
		}
		active, err := ops.ActiveTurn(rec.ID)
		if err != nil {
			return err
		}
		if active != nil {
			return conflictf("round %d already has an active turn", roundNumber)
		}
		if err := ops.UpdateRoundStatus(rec.ID, RoundInProgress); err != nil {
			return err
		}
		turn := TurnRecord{
			PublicID: uuid.NewString(),
			RoundID:  rec.ID,
			TeamID:   firstTeam,
			Status:   TurnActive,
		}
		if err := ops.CreateTurn(&turn); err != nil {
			return err
		}
		return ops.AppendEvent(&EventRecord{
			GameID:  snap.Game.ID,
			RoundID: &rec.ID,
			Type:    "round_started",
			Payload: map[string]any{"round_number": roundNumber, "starting_team_id": firstTeam},
		})
	})
	if err != nil {
		return nil, asDomainFailure(err, "start round")
	}

	log.Printf("round started game_id=%s round=%d starting_team_id=%d", gameID, roundNumber, firstTeam)
	return &RoundResult{Number: roundNumber, Status: RoundInProgress}, nil
}

// checkCodemasters verifies each team has exactly one active codemaster for
// the current round.
func checkCodemasters(snap *Snapshot) error {
	for _, team := range snap.Teams {
		count := 0
		for _, p := range team.Players {
			if p.Role == RoleCodemaster && p.Active {
				count++
			}
		}
		if count != 1 {
			return invalidStatef("team %s needs exactly one codemaster, has %d", team.Name, count)
		}
	}
	return nil
}

// nextTurnTeam decides which team the next turn belongs to: the starting
// team when no turn has been played, otherwise the team that did not act
// last.
func nextTurnTeam(turns []TurnRecord, startingTeam int64, teams []TeamRecord) int64 {
	if len(turns) == 0 {
		return startingTeam
	}
	last := turns[len(turns)-1]
	for _, team := range teams {
		if team.ID != last.TeamID {
			return team.ID
		}
	}
	return startingTeam
}
