package game

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// GiveClueInput identifies the clue a codemaster wants to give.
type GiveClueInput struct {
	GameID      string
	RoundNumber int
	UserID      int64
	Word        string
	TargetCount int
}

// GiveClueResult returns the created clue and the turn it now belongs to,
// re-read after the transaction committed.
type GiveClueResult struct {
	Clue ClueView
	Turn TurnView
}

// GiveClue records the acting team's clue. When no turn is ACTIVE yet one
// is created for the team whose turn it is; a turn that already has a clue
// rejects a second. The turn's guess budget initializes to the declared
// target count plus one bonus guess.
func (e *Engine) GiveClue(ctx context.Context, in GiveClueInput) (*GiveClueResult, error) {
	if err := validateTargetCount(in.TargetCount); err != nil {
		return nil, invalidInputf("%v", err)
	}

	snap, err := e.GetSnapshot(ctx, in.GameID, in.UserID)
	if err != nil {
		return nil, err
	}
	round := snap.CurrentRound
	if round == nil {
		return nil, notFoundf("game %s has no current round", in.GameID)
	}
	if round.Number != in.RoundNumber {
		return nil, invalidStatef("round %d is not current, current round is %d", in.RoundNumber, round.Number)
	}
	if round.Status != RoundInProgress {
		return nil, invalidStatef("clues require an in-progress round, round is %s", round.Status)
	}
	if snap.Viewer.Role != RoleCodemaster {
		return nil, unauthorizedf("player %s is not a codemaster this round", snap.Viewer.Name)
	}

	boardWords := make([]string, len(round.Cards))
	for i, card := range round.Cards {
		boardWords[i] = card.Word
	}
	if err := validateClueWord(in.Word, boardWords); err != nil {
		return nil, invalidInputf("%v", err)
	}

	firstTeam := startingTeamID(round.Cards)
	var turnID int64
	err = e.store.Atomic(ctx, func(ops Ops) error {
		rec, err := ops.RoundByNumber(snap.Game.ID, in.RoundNumber)
		if err != nil {
			return err
		}
		if rec == nil {
			return notFoundf("round %d not found", in.RoundNumber)
		}
		if rec.Status != RoundInProgress {
			return conflictf("round %d is no longer in progress", in.RoundNumber)
		}

		turn, err := ops.ActiveTurn(rec.ID)
		if err != nil {
			return err
		}
		if turn == nil {
			teams, err := ops.TeamsByGame(snap.Game.ID)
			if err != nil {
				return err
			}
			turns, err := ops.TurnsByRound(rec.ID)
			if err != nil {
				return err
			}
			turn = &TurnRecord{
				PublicID: uuid.NewString(),
				RoundID:  rec.ID,
				TeamID:   nextTurnTeam(turns, firstTeam, teams),
				Status:   TurnActive,
			}
			if err := ops.CreateTurn(turn); err != nil {
				return err
			}
		}
		if turn.TeamID != snap.Viewer.TeamID {
			return invalidStatef("it is not team %s's turn", snap.Viewer.TeamName)
		}
		existing, err := ops.ClueByTurn(turn.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflictf("turn already has a clue")
		}

		if err := ops.CreateClue(&ClueRecord{
			TurnID:      turn.ID,
			Word:        in.Word,
			TargetCount: in.TargetCount,
		}); err != nil {
			return err
		}
		if err := ops.SetTurnGuesses(turn.ID, in.TargetCount+1); err != nil {
			return err
		}
		turnID = turn.ID
		return ops.AppendEvent(&EventRecord{
			GameID:   snap.Game.ID,
			RoundID:  &rec.ID,
			PlayerID: &snap.Viewer.PlayerID,
			Type:     "clue_given",
			Payload: map[string]any{
				"round_number": in.RoundNumber,
				"word":         in.Word,
				"target_count": in.TargetCount,
			},
		})
	})
	if err != nil {
		return nil, asDomainFailure(err, "give clue")
	}

	log.Printf("clue given game_id=%s round=%d team=%s target=%d",
		in.GameID, in.RoundNumber, snap.Viewer.TeamName, in.TargetCount)
	return e.clueResult(ctx, in.GameID, in.UserID, turnID)
}

// clueResult re-reads the committed turn; in-memory state is never trusted
// across the transaction boundary.
func (e *Engine) clueResult(ctx context.Context, gameID string, userID, turnID int64) (*GiveClueResult, error) {
	fresh, err := e.GetSnapshot(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if fresh.CurrentRound == nil {
		return nil, unexpected(nil, "round vanished after clue commit")
	}
	for _, turn := range fresh.CurrentRound.Turns {
		if turn.ID == turnID && turn.Clue != nil {
			return &GiveClueResult{Clue: *turn.Clue, Turn: turn}, nil
		}
	}
	return nil, unexpected(nil, "committed clue not visible on re-read")
}
