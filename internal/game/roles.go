package game

import (
	"context"
	"log"
	"math/rand/v2"
	"time"
)

// pickCodemaster chooses uniformly among candidates, excluding the most
// recent codemaster when more than one candidate is eligible. Falls back to
// the full set when the exclusion leaves nobody, e.g. a two-player team
// whose other member went inactive. Pure over (history, candidates).
func pickCodemaster(candidates []PlayerRecord, lastCodemasterID int64, rng *rand.Rand) (PlayerRecord, bool) {
	if len(candidates) == 0 {
		return PlayerRecord{}, false
	}
	eligible := make([]PlayerRecord, 0, len(candidates))
	for _, c := range candidates {
		if c.ID != lastCodemasterID {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		eligible = candidates
	}
	return eligible[rng.IntN(len(eligible))], true
}

// RoleAssignment reports one player's role for the round.
type RoleAssignment struct {
	PlayerPublicID string
	PlayerName     string
	TeamName       string
	Role           Role
}

// AssignRoles picks a codemaster per team for a SETUP round, rotating away
// from each team's previous codemaster. Remaining active players become
// codebreakers; inactive players become spectators. Re-running replaces the
// round's assignments.
func (e *Engine) AssignRoles(ctx context.Context, gameID string, roundNumber int, userID int64) ([]RoleAssignment, error) {
	snap, err := e.GetSnapshot(ctx, gameID, userID)
	if err != nil {
		return nil, err
	}
	if snap.CurrentRound == nil {
		return nil, notFoundf("game %s has no round for role assignment", gameID)
	}
	if snap.CurrentRound.Number != roundNumber {
		return nil, invalidStatef("round %d is not current, current round is %d", roundNumber, snap.CurrentRound.Number)
	}
	if snap.CurrentRound.Status != RoundSetup {
		return nil, invalidStatef("roles can only be assigned during setup, round is %s", snap.CurrentRound.Status)
	}

	rng := newRNG()
	var result []RoleAssignment
	err = e.store.Atomic(ctx, func(ops Ops) error {
		round, err := ops.RoundByNumber(snap.Game.ID, roundNumber)
		if err != nil {
			return err
		}
		if round == nil {
			return notFoundf("round %d not found", roundNumber)
		}
		if round.Status != RoundSetup {
			return conflictf("round %d already started", roundNumber)
		}
		teams, err := ops.TeamsByGame(snap.Game.ID)
		if err != nil {
			return err
		}
		players, err := ops.PlayersByGame(snap.Game.ID)
		if err != nil {
			return err
		}
		if err := ops.ClearRoles(round.ID); err != nil {
			return err
		}

		teamNames := map[int64]string{}
		for _, team := range teams {
			teamNames[team.ID] = team.Name
		}

		now := time.Now().UTC()
		result = result[:0]
		for _, team := range teams {
			var active []PlayerRecord
			for _, p := range players {
				if p.TeamID == team.ID && p.Status == PlayerActive {
					active = append(active, p)
				}
			}
			if len(active) == 0 {
				return invalidStatef("team %s has no active players", team.Name)
			}

			var lastID int64
			last, err := ops.LatestCodemaster(snap.Game.ID, team.ID)
			if err != nil {
				return err
			}
			if last != nil {
				lastID = last.ID
			}
			codemaster, ok := pickCodemaster(active, lastID, rng)
			if !ok {
				return invalidStatef("team %s has no codemaster candidates", team.Name)
			}

			for _, p := range players {
				if p.TeamID != team.ID {
					continue
				}
				role := RoleCodebreaker
				switch {
				case p.ID == codemaster.ID:
					role = RoleCodemaster
				case p.Status != PlayerActive:
					role = RoleSpectator
				}
				if err := ops.AssignRole(&RoleAssignmentRecord{
					RoundID:    round.ID,
					PlayerID:   p.ID,
					Role:       role,
					AssignedAt: now,
				}); err != nil {
					return err
				}
				result = append(result, RoleAssignment{
					PlayerPublicID: p.PublicID,
					PlayerName:     p.Name,
					TeamName:       teamNames[p.TeamID],
					Role:           role,
				})
			}
		}
		return ops.AppendEvent(&EventRecord{
			GameID:  snap.Game.ID,
			RoundID: &round.ID,
			Type:    "roles_assigned",
			Payload: map[string]any{"round_number": roundNumber, "assignments": len(result)},
		})
	})
	if err != nil {
		return nil, asDomainFailure(err, "assign roles")
	}

	log.Printf("roles assigned game_id=%s round=%d assignments=%d", gameID, roundNumber, len(result))
	return result, nil
}
