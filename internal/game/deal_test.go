package game

import (
	"fmt"
	"math/rand/v2"
	"testing"
)

func TestComputeCardCountsStandardBoard(t *testing.T) {
	counts, err := computeCardCounts(25, 1)
	if err != nil {
		t.Fatalf("expected standard board to deal, got %v", err)
	}
	if counts.StartingTeam != 9 || counts.OtherTeam != 8 || counts.Bystander != 7 || counts.Assassin != 1 {
		t.Fatalf("unexpected counts %+v", counts)
	}
	if counts.total() != 25 {
		t.Fatalf("counts total %d, want 25", counts.total())
	}
}

func TestComputeCardCountsScalesRatios(t *testing.T) {
	cases := []struct {
		n        int
		starting int
		other    int
		bystand  int
	}{
		{8, 3, 2, 2},
		{16, 6, 5, 4},
		{20, 7, 6, 6},
		{30, 10, 10, 9},
	}
	for _, tc := range cases {
		counts, err := computeCardCounts(tc.n, 1)
		if err != nil {
			t.Fatalf("n=%d: unexpected error %v", tc.n, err)
		}
		if counts.StartingTeam != tc.starting || counts.OtherTeam != tc.other || counts.Bystander != tc.bystand {
			t.Fatalf("n=%d: got %+v, want %d/%d/%d/1", tc.n, counts, tc.starting, tc.other, tc.bystand)
		}
		if counts.StartingTeam < counts.OtherTeam {
			t.Fatalf("n=%d: starting team must get the ceiling half, got %+v", tc.n, counts)
		}
		if counts.total() != tc.n {
			t.Fatalf("n=%d: counts total %d", tc.n, counts.total())
		}
	}
}

func TestComputeCardCountsRejectsTinyBoard(t *testing.T) {
	if _, err := computeCardCounts(2, 1); err == nil {
		t.Fatal("expected a 2-card board to be rejected")
	}
}

func TestAllocateTagsExactMultiset(t *testing.T) {
	words := make([]string, 8)
	for i := range words {
		words[i] = fmt.Sprintf("word%02d", i)
	}
	counts := cardCounts{StartingTeam: 3, OtherTeam: 3, Bystander: 1, Assassin: 1}
	rng := rand.New(rand.NewPCG(1, 2))

	cards, err := allocateTags(words, counts, 10, 20, rng)
	if err != nil {
		t.Fatalf("allocate failed: %v", err)
	}
	if len(cards) != 8 {
		t.Fatalf("expected 8 cards, got %d", len(cards))
	}

	seen := map[string]bool{}
	starting, other, bystanders, assassins := 0, 0, 0, 0
	for _, card := range cards {
		if seen[card.Word] {
			t.Fatalf("word %q dealt twice", card.Word)
		}
		seen[card.Word] = true
		switch card.Type {
		case CardTeam:
			if card.TeamID == nil {
				t.Fatalf("team card %q missing team ID", card.Word)
			}
			if *card.TeamID == 10 {
				starting++
			} else {
				other++
			}
		case CardBystander:
			bystanders++
		case CardAssassin:
			assassins++
		}
	}
	if starting != 3 || other != 3 || bystanders != 1 || assassins != 1 {
		t.Fatalf("multiset mismatch: %d/%d/%d/%d", starting, other, bystanders, assassins)
	}
}

func TestAllocateTagsRejectsWordCountMismatch(t *testing.T) {
	counts := cardCounts{StartingTeam: 3, OtherTeam: 2, Bystander: 2, Assassin: 1}
	rng := rand.New(rand.NewPCG(3, 4))
	if _, err := allocateTags([]string{"one", "two"}, counts, 1, 2, rng); err == nil {
		t.Fatal("expected mismatched word count to fail")
	}
}

func TestStartingTeamIDPrefersLargerShare(t *testing.T) {
	a, b := int64(1), int64(2)
	cards := []CardView{
		{Type: CardTeam, TeamID: &a},
		{Type: CardTeam, TeamID: &a},
		{Type: CardTeam, TeamID: &b},
		{Type: CardAssassin},
	}
	if got := startingTeamID(cards); got != a {
		t.Fatalf("starting team = %d, want %d", got, a)
	}
}

func TestStartingTeamIDTieBreaksOnLowerID(t *testing.T) {
	a, b := int64(7), int64(3)
	cards := []CardView{
		{Type: CardTeam, TeamID: &a},
		{Type: CardTeam, TeamID: &b},
	}
	if got := startingTeamID(cards); got != b {
		t.Fatalf("starting team = %d, want lower ID %d", got, b)
	}
}
