package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codewords/internal/config"
	"codewords/internal/game"
	"codewords/internal/memstore"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store := memstore.New()
	words := make([]string, 40)
	for i := range words {
		words[i] = fmt.Sprintf("card%02d", i)
	}
	store.AddWords("BASE", "en", words)
	engine := game.New(store, game.Options{})
	return New(engine, nil, config.Default()).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	payload := map[string]any{}
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("%s %s: decode response: %v", method, path, err)
		}
	}
	return rec, payload
}

func newGuest(t *testing.T, handler http.Handler) string {
	t.Helper()
	rec, payload := doJSON(t, handler, http.MethodPost, "/api/users/guest", "", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("guest creation status = %d: %s", rec.Code, rec.Body.String())
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("guest response missing token")
	}
	return token
}

// startedGame drives a game to an in-progress round over the API and
// returns the game ID plus each player's token keyed by name.
func startedGame(t *testing.T, handler http.Handler) (string, map[string]string) {
	t.Helper()
	rec, payload := doJSON(t, handler, http.MethodPost, "/api/games", newGuest(t, handler), `{"format":"QUICK"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create game status = %d: %s", rec.Code, rec.Body.String())
	}
	gameID, _ := payload["game_id"].(string)
	if gameID == "" {
		t.Fatal("create game response missing game_id")
	}

	tokens := map[string]string{}
	seats := []struct{ name, team string }{
		{"p1", "Team Red"}, {"p2", "Team Red"},
		{"p3", "Team Blue"}, {"p4", "Team Blue"},
	}
	for _, seat := range seats {
		token := newGuest(t, handler)
		tokens[seat.name] = token
		body := fmt.Sprintf(`{"name":%q,"team":%q}`, seat.name, seat.team)
		rec, _ := doJSON(t, handler, http.MethodPost, "/api/games/"+gameID+"/players", token, body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("join %s status = %d: %s", seat.name, rec.Code, rec.Body.String())
		}
	}

	steps := []string{
		"/api/games/" + gameID + "/start",
		"/api/games/" + gameID + "/rounds/1/deal",
		"/api/games/" + gameID + "/rounds/1/roles",
		"/api/games/" + gameID + "/rounds/1/start",
	}
	for _, path := range steps {
		rec, _ := doJSON(t, handler, http.MethodPost, path, tokens["p1"], "")
		if rec.Code != http.StatusOK {
			t.Fatalf("POST %s status = %d: %s", path, rec.Code, rec.Body.String())
		}
	}
	return gameID, tokens
}

func TestHealthz(t *testing.T) {
	handler := newTestServer(t)
	rec, payload := doJSON(t, handler, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK || payload["status"] != "ok" {
		t.Fatalf("healthz = %d %v", rec.Code, payload)
	}
}

func TestJoinRequiresSession(t *testing.T) {
	handler := newTestServer(t)
	rec, _ := doJSON(t, handler, http.MethodPost, "/api/games/some-id/players", "", `{"name":"ada"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestUnknownGameIs404(t *testing.T) {
	handler := newTestServer(t)
	token := newGuest(t, handler)
	rec, _ := doJSON(t, handler, http.MethodGet, "/api/games/definitely-missing", token, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestJoinValidatesName(t *testing.T) {
	handler := newTestServer(t)
	rec, payload := doJSON(t, handler, http.MethodPost, "/api/games", newGuest(t, handler), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create game status = %d", rec.Code)
	}
	gameID := payload["game_id"].(string)

	token := newGuest(t, handler)
	rec, _ = doJSON(t, handler, http.MethodPost, "/api/games/"+gameID+"/players", token, `{"name":"питер"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestSnapshotMasksOwnershipFromCodebreakers(t *testing.T) {
	handler := newTestServer(t)
	gameID, tokens := startedGame(t, handler)

	var codemaster, codebreaker string
	for name, token := range tokens {
		rec, payload := doJSON(t, handler, http.MethodGet, "/api/games/"+gameID, token, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("snapshot for %s status = %d", name, rec.Code)
		}
		viewer := payload["viewer"].(map[string]any)
		switch viewer["role"] {
		case string(game.RoleCodemaster):
			if codemaster == "" {
				codemaster = token
			}
		case string(game.RoleCodebreaker):
			if codebreaker == "" {
				codebreaker = token
			}
		}
	}
	if codemaster == "" || codebreaker == "" {
		t.Fatal("expected both roles among the four players")
	}

	_, payload := doJSON(t, handler, http.MethodGet, "/api/games/"+gameID, codebreaker, "")
	cards := payload["current_round"].(map[string]any)["cards"].([]any)
	if len(cards) != 25 {
		t.Fatalf("board has %d cards, want 25", len(cards))
	}
	for _, raw := range cards {
		card := raw.(map[string]any)
		if card["selected"] == false {
			if _, ok := card["type"]; ok {
				t.Fatalf("codebreaker sees ownership of unselected card %v", card["word"])
			}
		}
	}

	_, payload = doJSON(t, handler, http.MethodGet, "/api/games/"+gameID, codemaster, "")
	cards = payload["current_round"].(map[string]any)["cards"].([]any)
	for _, raw := range cards {
		card := raw.(map[string]any)
		if _, ok := card["type"]; !ok {
			t.Fatalf("codemaster cannot see ownership of card %v", card["word"])
		}
	}
}

func TestClueAndGuessOverAPI(t *testing.T) {
	handler := newTestServer(t)
	gameID, tokens := startedGame(t, handler)

	// Find the acting team's codemaster and codebreaker.
	var actingTeam string
	var codemaster, codebreaker string
	for _, token := range tokens {
		_, payload := doJSON(t, handler, http.MethodGet, "/api/games/"+gameID, token, "")
		round := payload["current_round"].(map[string]any)
		if actingTeam == "" {
			for _, raw := range round["turns"].([]any) {
				turn := raw.(map[string]any)
				if turn["status"] == string(game.TurnActive) {
					actingTeam = turn["team"].(string)
				}
			}
		}
		viewer := payload["viewer"].(map[string]any)
		if viewer["team"] != actingTeam {
			continue
		}
		switch viewer["role"] {
		case string(game.RoleCodemaster):
			codemaster = token
		case string(game.RoleCodebreaker):
			codebreaker = token
		}
	}
	if codemaster == "" || codebreaker == "" {
		t.Fatalf("missing seats for acting team %q", actingTeam)
	}

	rec, payload := doJSON(t, handler, http.MethodPost, "/api/games/"+gameID+"/rounds/1/clues", codemaster, `{"word":"zenith","target_count":2}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("clue status = %d: %s", rec.Code, rec.Body.String())
	}
	if payload["guesses_remaining"].(float64) != 3 {
		t.Fatalf("guesses_remaining = %v, want 3", payload["guesses_remaining"])
	}

	// The codemaster's view names a card of the acting team.
	_, snapPayload := doJSON(t, handler, http.MethodGet, "/api/games/"+gameID, codemaster, "")
	var target string
	for _, raw := range snapPayload["current_round"].(map[string]any)["cards"].([]any) {
		card := raw.(map[string]any)
		if card["type"] == string(game.CardTeam) && card["team"] == actingTeam && card["selected"] == false {
			target = card["word"].(string)
			break
		}
	}
	if target == "" {
		t.Fatal("no unselected team card found")
	}

	rec, payload = doJSON(t, handler, http.MethodPost, "/api/games/"+gameID+"/rounds/1/guesses", codebreaker, fmt.Sprintf(`{"card_word":%q}`, target))
	if rec.Code != http.StatusCreated {
		t.Fatalf("guess status = %d: %s", rec.Code, rec.Body.String())
	}
	if payload["outcome"] != string(game.OutcomeCorrectTeam) {
		t.Fatalf("outcome = %v, want CORRECT_TEAM_CARD", payload["outcome"])
	}

	// The snapshot summarizes the most recent guess for every viewer.
	_, snapPayload = doJSON(t, handler, http.MethodGet, "/api/games/"+gameID, codebreaker, "")
	last, ok := snapPayload["current_round"].(map[string]any)["last_guess"].(map[string]any)
	if !ok {
		t.Fatal("snapshot missing last_guess after a guess")
	}
	if last["card_word"] != target || last["outcome"] != string(game.OutcomeCorrectTeam) {
		t.Fatalf("last_guess = %v, want %s CORRECT_TEAM_CARD", last, target)
	}

	// Guessing without a clue on the next turn is a state error.
	rec, _ = doJSON(t, handler, http.MethodPost, "/api/games/"+gameID+"/rounds/1/end-turn", codebreaker, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("end turn status = %d: %s", rec.Code, rec.Body.String())
	}
	rec, _ = doJSON(t, handler, http.MethodPost, "/api/games/"+gameID+"/rounds/1/guesses", codebreaker, fmt.Sprintf(`{"card_word":%q}`, target))
	if rec.Code != http.StatusConflict && rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("post-end-turn guess status = %d", rec.Code)
	}
}

func TestJoinQRServesPNG(t *testing.T) {
	handler := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/join/ABC234/qr.png", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("content type = %q", got)
	}
}
