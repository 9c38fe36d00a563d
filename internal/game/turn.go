package game

import (
	"context"
	"errors"
	"log"
)

// EndTurn lets the acting team stop guessing early. Always legal while the
// turn is ACTIVE regardless of remaining guesses; the same turn-complete
// transition as an ending guess, without one.
func (e *Engine) EndTurn(ctx context.Context, gameID string, roundNumber int, userID int64) (*TurnView, error) {
	snap, err := e.GetSnapshot(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	round := snap.CurrentRound
	if round == nil {
		return nil, notFoundf("game %s has no current round", gameID)
	}
	if round.Number != roundNumber {
		return nil, invalidStatef("round %d is not current, current round is %d", roundNumber, round.Number)
	}
	if round.Status != RoundInProgress {
		return nil, invalidStatef("turns can only end in an in-progress round, round is %s", round.Status)
	}
	active := round.ActiveTurn()
	if active == nil {
		return nil, invalidStatef("no active turn to end")
	}
	if active.TeamID != snap.Viewer.TeamID {
		return nil, invalidStatef("it is not team %s's turn", snap.Viewer.TeamName)
	}

	err = e.store.Atomic(ctx, func(ops Ops) error {
		turn, err := ops.ActiveTurn(round.ID)
		if err != nil {
			return err
		}
		if turn == nil || turn.ID != active.ID {
			return conflictf("turn already completed")
		}
		if err := ops.CompleteTurn(turn.ID); err != nil {
			if errors.Is(err, ErrConflict) {
				return conflictf("turn already completed")
			}
			return err
		}
		return ops.AppendEvent(&EventRecord{
			GameID:   snap.Game.ID,
			RoundID:  &round.ID,
			PlayerID: &snap.Viewer.PlayerID,
			Type:     "turn_ended",
			Payload:  map[string]any{"round_number": roundNumber, "team": snap.Viewer.TeamName},
		})
	})
	if err != nil {
		return nil, asDomainFailure(err, "end turn")
	}

	log.Printf("turn ended game_id=%s round=%d team=%s", gameID, roundNumber, snap.Viewer.TeamName)

	fresh, err := e.GetSnapshot(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if fresh.CurrentRound == nil {
		return nil, unexpected(nil, "round vanished after end-turn commit")
	}
	for _, turn := range fresh.CurrentRound.Turns {
		if turn.ID == active.ID {
			return &turn, nil
		}
	}
	return nil, unexpected(nil, "completed turn not visible on re-read")
}
