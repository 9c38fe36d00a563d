package game_test

import (
	"context"
	"strings"
	"testing"

	"codewords/internal/game"
)

func TestCreateGameOpensLobbyWithTwoTeams(t *testing.T) {
	f := newFixture(t)
	created, err := f.engine.CreateGame(context.Background(), game.FormatQuick)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if created.Status != game.GameLobby {
		t.Fatalf("status = %s, want LOBBY", created.Status)
	}
	if len(created.JoinCode) != 6 {
		t.Fatalf("join code %q, want 6 characters", created.JoinCode)
	}
	for _, r := range created.JoinCode {
		if strings.ContainsRune("01IO", r) {
			t.Fatalf("join code %q contains ambiguous character %q", created.JoinCode, r)
		}
	}
	if len(created.Teams) != 2 {
		t.Fatalf("teams = %v, want two", created.Teams)
	}
}

func TestCreateGameRejectsUnknownFormat(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.CreateGame(context.Background(), game.GameFormat("MARATHON"))
	if kind := failureKind(t, err); kind != game.KindInvalidInput {
		t.Fatalf("kind = %s, want invalid-input", kind)
	}
}

func TestCreateGuestUserGeneratesUsername(t *testing.T) {
	f := newFixture(t)
	user, err := f.engine.CreateGuestUser(context.Background())
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}
	parts := strings.Split(user.Username, "-")
	if len(parts) != 3 {
		t.Fatalf("username %q, want adjective-noun-number", user.Username)
	}
}

func TestAddPlayerRejectsSecondJoin(t *testing.T) {
	f := newFixture(t)
	f.createGame(game.FormatQuick)
	f.join("red1", "Team Red")

	_, err := f.engine.AddPlayer(context.Background(), game.AddPlayerInput{
		GameID: f.gameID,
		UserID: f.users["red1"],
		Name:   "again",
	})
	if kind := failureKind(t, err); kind != game.KindInvalidState {
		t.Fatalf("kind = %s, want invalid-state", kind)
	}
}

func TestAddPlayerRejectsUnknownTeam(t *testing.T) {
	f := newFixture(t)
	f.createGame(game.FormatQuick)
	user, err := f.engine.CreateGuestUser(context.Background())
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}
	_, err = f.engine.AddPlayer(context.Background(), game.AddPlayerInput{
		GameID:   f.gameID,
		UserID:   user.ID,
		Name:     "wanderer",
		TeamName: "Team Chartreuse",
	})
	if kind := failureKind(t, err); kind != game.KindInvalidInput {
		t.Fatalf("kind = %s, want invalid-input", kind)
	}
}

func TestAddPlayerBalancesTeamsWhenUnspecified(t *testing.T) {
	f := newFixture(t)
	f.createGame(game.FormatQuick)
	f.join("red1", "Team Red")
	f.join("red2", "Team Red")

	user, err := f.engine.CreateGuestUser(context.Background())
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}
	joined, err := f.engine.AddPlayer(context.Background(), game.AddPlayerInput{
		GameID: f.gameID,
		UserID: user.ID,
		Name:   "drifter",
	})
	if err != nil {
		t.Fatalf("add player: %v", err)
	}
	if joined.TeamName != "Team Blue" {
		t.Fatalf("auto-assigned to %s, want the smaller Team Blue", joined.TeamName)
	}
}

func TestAddPlayerRejectsFullTeam(t *testing.T) {
	f := newFixture(t)
	f.createGame(game.FormatQuick)
	for i := 0; i < 8; i++ {
		user, err := f.engine.CreateGuestUser(context.Background())
		if err != nil {
			t.Fatalf("create guest %d: %v", i, err)
		}
		if _, err := f.engine.AddPlayer(context.Background(), game.AddPlayerInput{
			GameID:   f.gameID,
			UserID:   user.ID,
			Name:     user.Username,
			TeamName: "Team Red",
		}); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}

	user, err := f.engine.CreateGuestUser(context.Background())
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}
	_, err = f.engine.AddPlayer(context.Background(), game.AddPlayerInput{
		GameID:   f.gameID,
		UserID:   user.ID,
		Name:     "ninth",
		TeamName: "Team Red",
	})
	if kind := failureKind(t, err); kind != game.KindInvalidState {
		t.Fatalf("kind = %s, want invalid-state", kind)
	}
}

func TestAddPlayerRejectsInProgressGame(t *testing.T) {
	f := newFixture(t)
	f.lobby(game.FormatQuick)
	if _, err := f.engine.StartGame(context.Background(), f.gameID, f.users["red1"]); err != nil {
		t.Fatalf("start game: %v", err)
	}

	user, err := f.engine.CreateGuestUser(context.Background())
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}
	_, err = f.engine.AddPlayer(context.Background(), game.AddPlayerInput{
		GameID: f.gameID,
		UserID: user.ID,
		Name:   "latecomer",
	})
	if kind := failureKind(t, err); kind != game.KindInvalidState {
		t.Fatalf("kind = %s, want invalid-state", kind)
	}
}

func TestSetPlayerStatusBlocksStart(t *testing.T) {
	f := newFixture(t)
	f.lobby(game.FormatQuick)
	if err := f.engine.SetPlayerStatus(context.Background(), f.gameID, f.users["blue2"], false); err != nil {
		t.Fatalf("set inactive: %v", err)
	}

	_, err := f.engine.StartGame(context.Background(), f.gameID, f.users["red1"])
	if kind := failureKind(t, err); kind != game.KindInvalidState {
		t.Fatalf("kind = %s, want invalid-state", kind)
	}

	if err := f.engine.SetPlayerStatus(context.Background(), f.gameID, f.users["blue2"], true); err != nil {
		t.Fatalf("set active: %v", err)
	}
	if _, err := f.engine.StartGame(context.Background(), f.gameID, f.users["red1"]); err != nil {
		t.Fatalf("start after reactivation: %v", err)
	}
}

func TestSetPlayerStatusRequiresMembership(t *testing.T) {
	f := newFixture(t)
	f.createGame(game.FormatQuick)
	user, err := f.engine.CreateGuestUser(context.Background())
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}
	err = f.engine.SetPlayerStatus(context.Background(), f.gameID, user.ID, false)
	if kind := failureKind(t, err); kind != game.KindUnauthorized {
		t.Fatalf("kind = %s, want unauthorized", kind)
	}
}

func TestGetSnapshotUnknownGame(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.GetSnapshot(context.Background(), "no-such-game", 1)
	if kind := failureKind(t, err); kind != game.KindNotFound {
		t.Fatalf("kind = %s, want not-found", kind)
	}
}

func TestGetSnapshotRequiresMembership(t *testing.T) {
	f := newFixture(t)
	f.createGame(game.FormatQuick)
	user, err := f.engine.CreateGuestUser(context.Background())
	if err != nil {
		t.Fatalf("create guest: %v", err)
	}
	_, err = f.engine.GetSnapshot(context.Background(), f.gameID, user.ID)
	if kind := failureKind(t, err); kind != game.KindUnauthorized {
		t.Fatalf("kind = %s, want unauthorized", kind)
	}
}

func TestGetSnapshotViewerContext(t *testing.T) {
	f := newFixture(t)
	f.lobby(game.FormatQuick)
	snap := f.snap("blue2")
	if snap.Viewer.Name != "blue2" || snap.Viewer.TeamName != "Team Blue" {
		t.Fatalf("viewer = %+v", snap.Viewer)
	}
}
