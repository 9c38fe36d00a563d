package memstore

import (
	"context"
	"errors"
	"testing"

	"codewords/internal/game"
)

func TestAtomicRollsBackOnError(t *testing.T) {
	store := New()
	boom := errors.New("boom")
	err := store.Atomic(context.Background(), func(ops game.Ops) error {
		if err := ops.CreateGame(&game.GameRecord{PublicID: "g1", JoinCode: "ABCDEF", Status: game.GameLobby, Format: game.FormatQuick}); err != nil {
			t.Fatalf("create game inside batch: %v", err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected batch error, got %v", err)
	}
	_ = store.View(context.Background(), func(ops game.Ops) error {
		rec, err := ops.GameByPublicID("g1")
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
		if rec != nil {
			t.Fatal("failed batch must leave no state behind")
		}
		return nil
	})
}

func TestSelectCardGuardConflictsOnSecondFlip(t *testing.T) {
	store := New()
	var cardID int64
	err := store.Atomic(context.Background(), func(ops game.Ops) error {
		g := game.GameRecord{PublicID: "g1", JoinCode: "ABCDEF", Status: game.GameInProgress, Format: game.FormatQuick}
		if err := ops.CreateGame(&g); err != nil {
			return err
		}
		round := game.RoundRecord{GameID: g.ID, Number: 1, Status: game.RoundInProgress}
		if err := ops.CreateRound(&round); err != nil {
			return err
		}
		cards, err := ops.ReplaceCards(round.ID, []game.CardRecord{{Word: "harbor", Type: game.CardBystander}})
		if err != nil {
			return err
		}
		cardID = cards[0].ID
		return nil
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	if err := store.Atomic(context.Background(), func(ops game.Ops) error {
		return ops.SelectCard(cardID)
	}); err != nil {
		t.Fatalf("first flip: %v", err)
	}
	err = store.Atomic(context.Background(), func(ops game.Ops) error {
		return ops.SelectCard(cardID)
	})
	if !errors.Is(err, game.ErrConflict) {
		t.Fatalf("second flip = %v, want ErrConflict", err)
	}
}

func TestCreateTurnRejectsSecondActiveTurn(t *testing.T) {
	store := New()
	err := store.Atomic(context.Background(), func(ops game.Ops) error {
		g := game.GameRecord{PublicID: "g1", JoinCode: "ABCDEF", Status: game.GameInProgress, Format: game.FormatQuick}
		if err := ops.CreateGame(&g); err != nil {
			return err
		}
		team := game.TeamRecord{GameID: g.ID, Name: "Team Red"}
		if err := ops.CreateTeam(&team); err != nil {
			return err
		}
		round := game.RoundRecord{GameID: g.ID, Number: 1, Status: game.RoundInProgress}
		if err := ops.CreateRound(&round); err != nil {
			return err
		}
		if err := ops.CreateTurn(&game.TurnRecord{PublicID: "t1", RoundID: round.ID, TeamID: team.ID, Status: game.TurnActive}); err != nil {
			return err
		}
		err := ops.CreateTurn(&game.TurnRecord{PublicID: "t2", RoundID: round.ID, TeamID: team.ID, Status: game.TurnActive})
		if !errors.Is(err, game.ErrConflict) {
			t.Fatalf("second active turn = %v, want ErrConflict", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
}

func TestCompleteRoundGuardCompletesOnce(t *testing.T) {
	store := New()
	err := store.Atomic(context.Background(), func(ops game.Ops) error {
		g := game.GameRecord{PublicID: "g1", JoinCode: "ABCDEF", Status: game.GameInProgress, Format: game.FormatQuick}
		if err := ops.CreateGame(&g); err != nil {
			return err
		}
		team := game.TeamRecord{GameID: g.ID, Name: "Team Red"}
		if err := ops.CreateTeam(&team); err != nil {
			return err
		}
		round := game.RoundRecord{GameID: g.ID, Number: 1, Status: game.RoundInProgress}
		if err := ops.CreateRound(&round); err != nil {
			return err
		}
		if err := ops.CompleteRound(round.ID, team.ID); err != nil {
			return err
		}
		if err := ops.CompleteRound(round.ID, team.ID); !errors.Is(err, game.ErrConflict) {
			t.Fatalf("second completion = %v, want ErrConflict", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
}

func TestRandomWordsRequiresLargeEnoughPool(t *testing.T) {
	store := New()
	store.AddWords("BASE", "en", []string{"one", "two", "three"})
	err := store.View(context.Background(), func(ops game.Ops) error {
		if _, err := ops.RandomWords("BASE", "en", 5); err == nil {
			t.Fatal("expected pool-too-small error")
		}
		words, err := ops.RandomWords("BASE", "en", 3)
		if err != nil {
			t.Fatalf("draw: %v", err)
		}
		if len(words) != 3 {
			t.Fatalf("drew %d words, want 3", len(words))
		}
		seen := map[string]bool{}
		for _, w := range words {
			if seen[w] {
				t.Fatalf("word %q drawn twice", w)
			}
			seen[w] = true
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestDecrementTurnGuessesGuard(t *testing.T) {
	store := New()
	err := store.Atomic(context.Background(), func(ops game.Ops) error {
		g := game.GameRecord{PublicID: "g1", JoinCode: "ABCDEF", Status: game.GameInProgress, Format: game.FormatQuick}
		if err := ops.CreateGame(&g); err != nil {
			return err
		}
		team := game.TeamRecord{GameID: g.ID, Name: "Team Red"}
		if err := ops.CreateTeam(&team); err != nil {
			return err
		}
		round := game.RoundRecord{GameID: g.ID, Number: 1, Status: game.RoundInProgress}
		if err := ops.CreateRound(&round); err != nil {
			return err
		}
		turn := game.TurnRecord{PublicID: "t1", RoundID: round.ID, TeamID: team.ID, Status: game.TurnActive}
		if err := ops.CreateTurn(&turn); err != nil {
			return err
		}
		if err := ops.SetTurnGuesses(turn.ID, 1); err != nil {
			return err
		}
		remaining, err := ops.DecrementTurnGuesses(turn.ID)
		if err != nil {
			return err
		}
		if remaining != 0 {
			t.Fatalf("remaining = %d, want 0", remaining)
		}
		if _, err := ops.DecrementTurnGuesses(turn.ID); !errors.Is(err, game.ErrConflict) {
			t.Fatalf("decrement past zero = %v, want ErrConflict", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
}
