package game

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
)

// cardCounts is the exact tag multiset for one deal, derived from the
// fixed ratios of the 25-card reference board.
type cardCounts struct {
	StartingTeam int
	OtherTeam    int
	Bystander    int
	Assassin     int
}

func (c cardCounts) total() int {
	return c.StartingTeam + c.OtherTeam + c.Bystander + c.Assassin
}

// computeCardCounts scales the reference ratios to a board of size n: a
// bystander-pool share proportional to 8/25, a fixed assassin count, and
// the remainder split ceiling/floor between the starting and other team.
func computeCardCounts(n, assassins int) (cardCounts, error) {
	if assassins < 1 {
		assassins = 1
	}
	nonTeam := int(math.Round(float64(n) * 8.0 / 25.0))
	starting := int(math.Ceil(float64(n-nonTeam) / 2.0))
	other := int(math.Floor(float64(n-nonTeam) / 2.0))
	bystanders := n - starting - other - assassins
	counts := cardCounts{
		StartingTeam: starting,
		OtherTeam:    other,
		Bystander:    bystanders,
		Assassin:     assassins,
	}
	if starting < 1 || other < 1 || bystanders < 0 {
		return counts, fmt.Errorf("board size %d is too small to deal", n)
	}
	return counts, nil
}

// cardTag is one entry of the allocation multiset before it is paired with
// a word.
type cardTag struct {
	Type   CardType
	TeamID *int64
}

// allocateTags builds the exact multiset of tags and pairs it with words
// by drawing without replacement, a constrained permutation rather than
// per-card sampling, so the final distribution always matches counts.
func allocateTags(words []string, counts cardCounts, startingTeamID, otherTeamID int64, rng *rand.Rand) ([]CardRecord, error) {
	if len(words) != counts.total() {
		return nil, fmt.Errorf("word count %d does not match card counts %d", len(words), counts.total())
	}
	startID := startingTeamID
	otherID := otherTeamID
	tags := make([]cardTag, 0, counts.total())
	for i := 0; i < counts.StartingTeam; i++ {
		tags = append(tags, cardTag{Type: CardTeam, TeamID: &startID})
	}
	for i := 0; i < counts.OtherTeam; i++ {
		tags = append(tags, cardTag{Type: CardTeam, TeamID: &otherID})
	}
	for i := 0; i < counts.Assassin; i++ {
		tags = append(tags, cardTag{Type: CardAssassin})
	}
	for i := 0; i < counts.Bystander; i++ {
		tags = append(tags, cardTag{Type: CardBystander})
	}
	rng.Shuffle(len(tags), func(i, j int) { tags[i], tags[j] = tags[j], tags[i] })

	cards := make([]CardRecord, len(words))
	for i, word := range words {
		cards[i] = CardRecord{
			Word:   word,
			Type:   tags[i].Type,
			TeamID: tags[i].TeamID,
		}
	}
	return cards, nil
}

// DealInput selects the word pool for a deal. Empty fields fall back to
// the configured defaults.
type DealInput struct {
	GameID       string
	RoundNumber  int
	UserID       int64
	Deck         string
	LanguageCode string
}

// DealResult reports the fresh board. Card ownership is included; hiding
// it from non-codemasters is the presentation layer's job.
type DealResult struct {
	RoundNumber    int
	StartingTeamID int64
	Cards          []CardView
}

// DealCards deals a full board for a SETUP round, replacing any previous
// deal. The starting team is chosen at random per deal and receives the
// ceiling half of the team cards.
func (e *Engine) DealCards(ctx context.Context, in DealInput) (*DealResult, error) {
	if in.Deck == "" {
		in.Deck = e.opts.DefaultDeck
	}
	if in.LanguageCode == "" {
		in.LanguageCode = e.opts.DefaultLanguage
	}

	snap, err := e.GetSnapshot(ctx, in.GameID, in.UserID)
	if err != nil {
		return nil, err
	}
	if snap.CurrentRound == nil {
		return nil, notFoundf("game %s has no round to deal", in.GameID)
	}
	if snap.CurrentRound.Number != in.RoundNumber {
		return nil, invalidStatef("round %d is not current, current round is %d", in.RoundNumber, snap.CurrentRound.Number)
	}
	if snap.CurrentRound.Status != RoundSetup {
		return nil, invalidStatef("cards can only be dealt during setup, round is %s", snap.CurrentRound.Status)
	}
	if len(snap.Teams) < 2 {
		return nil, invalidStatef("game %s needs two teams before dealing", in.GameID)
	}

	counts, err := computeCardCounts(e.opts.BoardSize, e.opts.AssassinCount)
	if err != nil {
		return nil, invalidInputf("%v", err)
	}

	rng := newRNG()
	first := rng.IntN(2)
	startingTeam := snap.Teams[first]
	otherTeam := snap.Teams[1-first]

	var dealt []CardRecord
	err = e.store.Atomic(ctx, func(ops Ops) error {
		round, err := ops.RoundByNumber(snap.Game.ID, in.RoundNumber)
		if err != nil {
			return err
		}
		if round == nil {
			return notFoundf("round %d not found", in.RoundNumber)
		}
		if round.Status != RoundSetup {
			return conflictf("round %d already started", in.RoundNumber)
		}
		words, err := ops.RandomWords(in.Deck, in.LanguageCode, counts.total())
		if err != nil {
			return err
		}
		cards, err := allocateTags(words, counts, startingTeam.ID, otherTeam.ID, rng)
		if err != nil {
			return err
		}
		dealt, err = ops.ReplaceCards(round.ID, cards)
		if err != nil {
			return err
		}
		return ops.AppendEvent(&EventRecord{
			GameID:  snap.Game.ID,
			RoundID: &round.ID,
			Type:    "cards_dealt",
			Payload: map[string]any{
				"round_number":  in.RoundNumber,
				"deck":          in.Deck,
				"language_code": in.LanguageCode,
				"starting_team": startingTeam.Name,
				"cards":         len(cards),
			},
		})
	})
	if err != nil {
		return nil, asDomainFailure(err, "deal cards")
	}

	log.Printf("cards dealt game_id=%s round=%d deck=%s count=%d starting_team=%s",
		in.GameID, in.RoundNumber, in.Deck, len(dealt), startingTeam.Name)

	result := &DealResult{RoundNumber: in.RoundNumber, StartingTeamID: startingTeam.ID}
	for _, card := range dealt {
		cv := CardView{ID: card.ID, Word: card.Word, Type: card.Type, TeamID: card.TeamID, Selected: card.Selected}
		if card.TeamID != nil {
			if *card.TeamID == startingTeam.ID {
				cv.TeamName = startingTeam.Name
			} else {
				cv.TeamName = otherTeam.Name
			}
		}
		result.Cards = append(result.Cards, cv)
	}
	return result, nil
}

// startingTeamID infers which team got the ceiling half of a dealt board.
// When the split is even the lower team ID starts, so the answer is stable
// across reads.
func startingTeamID(cards []CardView) int64 {
	counts := map[int64]int{}
	for _, card := range cards {
		if card.Type == CardTeam && card.TeamID != nil {
			counts[*card.TeamID]++
		}
	}
	var best int64
	bestCount := -1
	for teamID, count := range counts {
		if count > bestCount || (count == bestCount && teamID < best) {
			best = teamID
			bestCount = count
		}
	}
	return best
}
