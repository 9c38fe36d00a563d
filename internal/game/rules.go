package game

import (
	"fmt"
	"strings"
)

const maxClueWordLength = 40

// normalizeWord collapses whitespace and lowercases, so legality checks and
// card lookups are case-insensitive.
func normalizeWord(word string) string {
	return strings.ToLower(strings.Join(strings.Fields(word), " "))
}

// validateClueWord enforces clue legality against the round's board: a
// single token that neither contains nor is contained by any board word,
// case-insensitively. Returns a descriptive reason on failure so callers
// can surface actionable feedback.
func validateClueWord(word string, boardWords []string) error {
	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return fmt.Errorf("clue word is required")
	}
	if len(trimmed) > maxClueWordLength {
		return fmt.Errorf("clue word must be %d characters or fewer", maxClueWordLength)
	}
	if len(strings.Fields(trimmed)) > 1 {
		return fmt.Errorf("clue must be a single word")
	}
	clue := strings.ToLower(trimmed)
	for _, boardWord := range boardWords {
		board := normalizeWord(boardWord)
		if board == "" {
			continue
		}
		if clue == board {
			return fmt.Errorf("clue %q matches the board word %q", trimmed, boardWord)
		}
		if strings.Contains(clue, board) {
			return fmt.Errorf("clue %q contains the board word %q", trimmed, boardWord)
		}
		if strings.Contains(board, clue) {
			return fmt.Errorf("clue %q is contained in the board word %q", trimmed, boardWord)
		}
	}
	return nil
}

// validateTargetCount rejects non-positive clue targets before they reach
// the state machine.
func validateTargetCount(count int) error {
	if count < 1 {
		return fmt.Errorf("target card count must be at least 1, got %d", count)
	}
	return nil
}

// findBoardCard resolves a guessed word against the round's cards.
func findBoardCard(cards []CardView, word string) *CardView {
	want := normalizeWord(word)
	for i := range cards {
		if normalizeWord(cards[i].Word) == want {
			return &cards[i]
		}
	}
	return nil
}

// guessOutcome computes the result of revealing a card for the guessing
// team.
func guessOutcome(cardType CardType, cardTeamID *int64, guessingTeamID int64) Outcome {
	switch cardType {
	case CardAssassin:
		return OutcomeAssassin
	case CardBystander:
		return OutcomeBystander
	default:
		if cardTeamID != nil && *cardTeamID == guessingTeamID {
			return OutcomeCorrectTeam
		}
		return OutcomeOtherTeam
	}
}
