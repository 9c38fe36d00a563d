package game

import "testing"

func TestValidateClueWord(t *testing.T) {
	board := []string{"Apple", "Riverbank", "STONE"}
	cases := []struct {
		name string
		clue string
		ok   bool
	}{
		{"legal word", "orchard", true},
		{"empty", "", false},
		{"multi token", "two words", false},
		{"equals board word", "apple", false},
		{"equals board word different case", "ApPlE", false},
		{"contains board word", "applesauce", false},
		{"contained in board word", "river", false},
		{"contained case-insensitive", "stone", false},
	}
	for _, tc := range cases {
		err := validateClueWord(tc.clue, board)
		if tc.ok && err != nil {
			t.Fatalf("%s: expected legal clue, got %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected clue %q to be rejected", tc.name, tc.clue)
		}
	}
}

func TestValidateClueWordLength(t *testing.T) {
	long := make([]byte, maxClueWordLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if err := validateClueWord(string(long), nil); err == nil {
		t.Fatal("expected over-long clue to be rejected")
	}
}

func TestValidateTargetCount(t *testing.T) {
	if err := validateTargetCount(0); err == nil {
		t.Fatal("expected zero target to be rejected")
	}
	if err := validateTargetCount(-2); err == nil {
		t.Fatal("expected negative target to be rejected")
	}
	if err := validateTargetCount(1); err != nil {
		t.Fatalf("expected target 1 to be legal, got %v", err)
	}
}

func TestFindBoardCardCaseInsensitive(t *testing.T) {
	cards := []CardView{{Word: "Harbor"}, {Word: "lantern"}}
	if card := findBoardCard(cards, "HARBOR"); card == nil || card.Word != "Harbor" {
		t.Fatalf("expected to find Harbor, got %#v", card)
	}
	if card := findBoardCard(cards, "missing"); card != nil {
		t.Fatalf("expected nil for unknown word, got %#v", card)
	}
}

func TestGuessOutcome(t *testing.T) {
	mine, theirs := int64(1), int64(2)
	if got := guessOutcome(CardAssassin, nil, mine); got != OutcomeAssassin {
		t.Fatalf("assassin outcome = %s", got)
	}
	if got := guessOutcome(CardBystander, nil, mine); got != OutcomeBystander {
		t.Fatalf("bystander outcome = %s", got)
	}
	if got := guessOutcome(CardTeam, &mine, mine); got != OutcomeCorrectTeam {
		t.Fatalf("own card outcome = %s", got)
	}
	if got := guessOutcome(CardTeam, &theirs, mine); got != OutcomeOtherTeam {
		t.Fatalf("other card outcome = %s", got)
	}
}
