package game

import (
	"context"
	"errors"
	"log"
)

// MakeGuessInput identifies the card a codebreaker wants to reveal.
type MakeGuessInput struct {
	GameID      string
	RoundNumber int
	UserID      int64
	CardWord    string
}

// MakeGuessResult reports the resolved guess plus the turn and round state
// after the transaction committed.
type MakeGuessResult struct {
	Guess           GuessView
	Turn            TurnView
	RoundCompleted  bool
	WinningTeamName string
	GameCompleted   bool
}

// MakeGuess reveals a card for the acting team and applies every derived
// effect in one unit of work: the card flips selected, the guess budget
// decrements, and the turn, round, and game complete when the outcome says
// so. Legality is re-verified inside the transaction; a caller racing a
// concurrent guess fails with a conflict instead of double-scoring.
func (e *Engine) MakeGuess(ctx context.Context, in MakeGuessInput) (*MakeGuessResult, error) {
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
		return nil, invalidStatef("guesses require an in-progress round, round is %s", round.Status)
	}

	active := round.ActiveTurn()
	if active == nil {
		return nil, invalidStatef("no active turn to guess in")
	}
	if active.TeamID != snap.Viewer.TeamID {
		return nil, invalidStatef("it is not team %s's turn", snap.Viewer.TeamName)
	}
	if active.Clue == nil {
		return nil, invalidStatef("no clue has been given this turn")
	}
	if active.GuessesRemaining <= 0 {
		return nil, invalidStatef("no guesses remaining this turn")
	}

	card := findBoardCard(round.Cards, in.CardWord)
	if card == nil {
		return nil, invalidInputf("word %q is not on the board", in.CardWord)
	}
	if card.Selected {
		return nil, invalidInputf("card %q is already revealed", card.Word)
	}

	outcome := guessOutcome(card.Type, card.TeamID, snap.Viewer.TeamID)
	var (
		turnID          int64
		roundDone       bool
		gameDone        bool
		winningTeamID   int64
		winningTeamName string
	)
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
		if turn == nil || turn.ID != active.ID {
			return conflictf("turn already completed")
		}
		if turn.TeamID != snap.Viewer.TeamID {
			return conflictf("turn changed hands")
		}
		clue, err := ops.ClueByTurn(turn.ID)
		if err != nil {
			return err
		}
		if clue == nil {
			return conflictf("turn lost its clue state")
		}
		turnID = turn.ID

		// Guarded flip: exactly one writer reveals any given card.
		if err := ops.SelectCard(card.ID); err != nil {
			if errors.Is(err, ErrConflict) {
				return conflictf("card %q was already revealed", card.Word)
			}
			return err
		}
		remaining, err := ops.DecrementTurnGuesses(turn.ID)
		if err != nil {
			if errors.Is(err, ErrConflict) {
				return conflictf("turn has no guesses remaining")
			}
			return err
		}
		if err := ops.CreateGuess(&GuessRecord{
			TurnID:   turn.ID,
			PlayerID: snap.Viewer.PlayerID,
			CardID:   card.ID,
			Outcome:  outcome,
		}); err != nil {
			return err
		}

		turnOver := outcome != OutcomeCorrectTeam || remaining == 0

		teams, err := ops.TeamsByGame(snap.Game.ID)
		if err != nil {
			return err
		}
		if outcome == OutcomeAssassin {
			// The non-guessing team wins outright.
			for _, team := range teams {
				if team.ID != turn.TeamID {
					winningTeamID = team.ID
					winningTeamName = team.Name
				}
			}
			roundDone = true
		} else {
			// Re-read the board under the transaction: a team whose cards
			// are all revealed wins, whichever team revealed the last one.
			cards, err := ops.CardsByRound(rec.ID)
			if err != nil {
				return err
			}
			if winner, done := exhaustedTeam(cards, teams); done {
				winningTeamID = winner.ID
				winningTeamName = winner.Name
				roundDone = true
			}
		}

		if roundDone {
			turnOver = true
			if err := ops.CompleteRound(rec.ID, winningTeamID); err != nil {
				return err
			}
			done, err := e.maybeCompleteGame(ops, snap.Game.ID, snap.Game.Format, winningTeamID)
			if err != nil {
				return err
			}
			gameDone = done
		}
		if turnOver {
			if err := ops.CompleteTurn(turn.ID); err != nil {
				return err
			}
		}

		return ops.AppendEvent(&EventRecord{
			GameID:   snap.Game.ID,
			RoundID:  &rec.ID,
			PlayerID: &snap.Viewer.PlayerID,
			Type:     "guess_made",
			Payload: map[string]any{
				"round_number": in.RoundNumber,
				"card_word":    card.Word,
				"outcome":      string(outcome),
				"remaining":    remaining,
			},
		})
	})
	if err != nil {
		return nil, asDomainFailure(err, "make guess")
	}

	log.Printf("guess resolved game_id=%s round=%d card=%q outcome=%s round_completed=%t",
		in.GameID, in.RoundNumber, card.Word, outcome, roundDone)
	return e.guessResult(ctx, in, turnID, roundDone, gameDone, winningTeamName)
}

// exhaustedTeam reports the first team whose entire card set is revealed.
func exhaustedTeam(cards []CardRecord, teams []TeamRecord) (TeamRecord, bool) {
	for _, team := range teams {
		total, selected := 0, 0
		for _, card := range cards {
			if card.Type == CardTeam && card.TeamID != nil && *card.TeamID == team.ID {
				total++
				if card.Selected {
					selected++
				}
			}
		}
		if total > 0 && selected == total {
			return team, true
		}
	}
	return TeamRecord{}, false
}

// maybeCompleteGame applies the game format once a round has a winner:
// quick games end immediately, best-of-three ends at two round wins, and
// round-robin games stay open for the caller to close out.
func (e *Engine) maybeCompleteGame(ops Ops, gameID int64, format GameFormat, winningTeamID int64) (bool, error) {
	switch format {
	case FormatQuick:
		return true, ops.UpdateGameStatus(gameID, GameCompleted)
	case FormatBestOfThree:
		rounds, err := ops.RoundsByGame(gameID)
		if err != nil {
			return false, err
		}
		// The round completed earlier in this transaction is already
		// visible here.
		wins := 0
		for _, round := range rounds {
			if round.Status == RoundCompleted && round.WinningTeamID != nil && *round.WinningTeamID == winningTeamID {
				wins++
			}
		}
		if wins >= 2 {
			return true, ops.UpdateGameStatus(gameID, GameCompleted)
		}
		return false, nil
	default:
		return false, nil
	}
}

func (e *Engine) guessResult(ctx context.Context, in MakeGuessInput, turnID int64, roundDone, gameDone bool, winner string) (*MakeGuessResult, error) {
	fresh, err := e.GetSnapshot(ctx, in.GameID, in.UserID)
	if err != nil {
		return nil, err
	}
	if fresh.CurrentRound == nil {
		return nil, unexpected(nil, "round vanished after guess commit")
	}
	for _, turn := range fresh.CurrentRound.Turns {
		if turn.ID != turnID {
			continue
		}
		if len(turn.Guesses) == 0 {
			return nil, unexpected(nil, "committed guess not visible on re-read")
		}
		return &MakeGuessResult{
			Guess:           turn.Guesses[len(turn.Guesses)-1],
			Turn:            turn,
			RoundCompleted:  roundDone,
			WinningTeamName: winner,
			GameCompleted:   gameDone,
		}, nil
	}
	return nil, unexpected(nil, "committed turn not visible on re-read")
}
