package server

import "codewords/internal/game"

// snapshotPayload shapes a snapshot for the viewer. Card ownership is
// visible to the viewer only for selected cards, unless the viewer is the
// current round's codemaster.
func snapshotPayload(snap *game.Snapshot) map[string]any {
	payload := map[string]any{
		"game": map[string]any{
			"id":        snap.Game.PublicID,
			"join_code": snap.Game.JoinCode,
			"status":    snap.Game.Status,
			"format":    snap.Game.Format,
		},
		"teams": teamsPayload(snap.Teams),
		"viewer": map[string]any{
			"player_id": snap.Viewer.PublicID,
			"name":      snap.Viewer.Name,
			"team":      snap.Viewer.TeamName,
			"role":      snap.Viewer.Role,
		},
	}
	if snap.CurrentRound != nil {
		revealOwnership := snap.Viewer.Role == game.RoleCodemaster
		round := map[string]any{
			"number": snap.CurrentRound.Number,
			"status": snap.CurrentRound.Status,
			"cards":  boardPayload(snap.CurrentRound.Cards, revealOwnership),
			"turns":  turnsPayload(snap.CurrentRound.Turns),
		}
		if last := snap.CurrentRound.LastGuess(); last != nil {
			round["last_guess"] = map[string]any{
				"player":    last.PlayerName,
				"card_word": last.CardWord,
				"outcome":   last.Outcome,
			}
		}
		if snap.CurrentRound.WinningTeamID != nil {
			for _, team := range snap.Teams {
				if team.ID == *snap.CurrentRound.WinningTeamID {
					round["winning_team"] = team.Name
				}
			}
		}
		payload["current_round"] = round
	}
	return payload
}

func teamsPayload(teams []game.TeamView) []map[string]any {
	payload := make([]map[string]any, len(teams))
	for i, team := range teams {
		players := make([]map[string]any, len(team.Players))
		for j, player := range team.Players {
			players[j] = map[string]any{
				"player_id": player.PublicID,
				"name":      player.Name,
				"active":    player.Active,
				"role":      player.Role,
			}
		}
		payload[i] = map[string]any{
			"name":    team.Name,
			"players": players,
		}
	}
	return payload
}

func boardPayload(cards []game.CardView, revealOwnership bool) []map[string]any {
	payload := make([]map[string]any, len(cards))
	for i, card := range cards {
		entry := map[string]any{
			"word":     card.Word,
			"selected": card.Selected,
		}
		if revealOwnership || card.Selected {
			entry["type"] = card.Type
			if card.TeamName != "" {
				entry["team"] = card.TeamName
			}
		}
		payload[i] = entry
	}
	return payload
}

func turnsPayload(turns []game.TurnView) []map[string]any {
	payload := make([]map[string]any, len(turns))
	for i, turn := range turns {
		payload[i] = turnPayload(turn)
	}
	return payload
}

func turnPayload(turn game.TurnView) map[string]any {
	payload := map[string]any{
		"id":                turn.PublicID,
		"team":              turn.TeamName,
		"status":            turn.Status,
		"guesses_remaining": turn.GuessesRemaining,
	}
	if turn.Clue != nil {
		payload["clue"] = map[string]any{
			"word":         turn.Clue.Word,
			"target_count": turn.Clue.TargetCount,
		}
	}
	if len(turn.Guesses) > 0 {
		guesses := make([]map[string]any, len(turn.Guesses))
		for i, guess := range turn.Guesses {
			guesses[i] = map[string]any{
				"player":    guess.PlayerName,
				"card_word": guess.CardWord,
				"outcome":   guess.Outcome,
			}
		}
		payload["guesses"] = guesses
	}
	return payload
}
