package server

import (
	"log"
	"net/http"
	"strconv"

	"codewords/internal/game"
)

type createGameRequest struct {
	Format string `json:"format" validate:"omitempty,oneof=QUICK BEST_OF_THREE ROUND_ROBIN"`
}

type joinGameRequest struct {
	Name string `json:"name" validate:"required,playername"`
	Team string `json:"team" validate:"omitempty,max=64"`
}

type dealRequest struct {
	Deck         string `json:"deck" validate:"omitempty,max=32"`
	LanguageCode string `json:"language_code" validate:"omitempty,max=8"`
}

type clueRequest struct {
	Word        string `json:"word" validate:"required,max=40"`
	TargetCount int    `json:"target_count" validate:"required,gte=1"`
}

type guessRequest struct {
	CardWord string `json:"card_word" validate:"required,max=64"`
}

func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := s.sessions.UserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "sign in required")
		return 0, false
	}
	return userID, true
}

func roundNumberFromPath(r *http.Request) (int, bool) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || number < 1 {
		return 0, false
	}
	return number, true
}

func (s *Server) handleCreateGuest(w http.ResponseWriter, r *http.Request) {
	user, err := s.engine.CreateGuestUser(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	token, err := s.sessions.Create(w, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	log.Printf("guest user created username=%s", user.Username)
	writeJSON(w, http.StatusCreated, map[string]string{
		"username": user.Username,
		"token":    token,
	})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := readJSON(r.Body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if message := validateRequest(&req); message != "" {
		writeError(w, http.StatusUnprocessableEntity, message)
		return
	}
	format := game.GameFormat(req.Format)
	if format == "" {
		format = game.FormatQuick
	}
	created, err := s.engine.CreateGame(r.Context(), format)
	if err != nil {
		writeFailure(w, err)
		return
	}
	log.Printf("game created game_id=%s join_code=%s format=%s", created.PublicID, created.JoinCode, created.Format)
	writeJSON(w, http.StatusCreated, map[string]any{
		"game_id":   created.PublicID,
		"join_code": created.JoinCode,
		"status":    created.Status,
		"format":    created.Format,
		"teams":     created.Teams,
	})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	snap, err := s.engine.GetSnapshot(r.Context(), r.PathValue("game_id"), userID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotPayload(snap))
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req joinGameRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if message := validateRequest(&req); message != "" {
		writeError(w, http.StatusUnprocessableEntity, message)
		return
	}
	joined, err := s.engine.AddPlayer(r.Context(), game.AddPlayerInput{
		GameID:   r.PathValue("game_id"),
		UserID:   userID,
		Name:     normalizeText(req.Name),
		TeamName: req.Team,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	log.Printf("player joined game_id=%s player_id=%s team=%s", r.PathValue("game_id"), joined.PublicID, joined.TeamName)
	writeJSON(w, http.StatusCreated, map[string]string{
		"player_id": joined.PublicID,
		"name":      joined.Name,
		"team":      joined.TeamName,
	})
}

type presenceRequest struct {
	Active bool `json:"active"`
}

func (s *Server) handlePresence(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	var req presenceRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.engine.SetPlayerStatus(r.Context(), r.PathValue("game_id"), userID, req.Active); err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"active": req.Active})
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	round, err := s.engine.StartGame(r.Context(), r.PathValue("game_id"), userID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	log.Printf("game started game_id=%s round=%d", r.PathValue("game_id"), round.Number)
	writeJSON(w, http.StatusOK, map[string]any{
		"round_number": round.Number,
		"round_status": round.Status,
	})
}

func (s *Server) handleCreateRound(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	round, err := s.engine.CreateRound(r.Context(), r.PathValue("game_id"), userID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"round_number": round.Number,
		"round_status": round.Status,
	})
}

func (s *Server) handleDealCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	number, ok := roundNumberFromPath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	var req dealRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := readJSON(r.Body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if message := validateRequest(&req); message != "" {
		writeError(w, http.StatusUnprocessableEntity, message)
		return
	}
	dealt, err := s.engine.DealCards(r.Context(), game.DealInput{
		GameID:       r.PathValue("game_id"),
		RoundNumber:  number,
		UserID:       userID,
		Deck:         req.Deck,
		LanguageCode: req.LanguageCode,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	log.Printf("cards dealt game_id=%s round=%d cards=%d", r.PathValue("game_id"), dealt.RoundNumber, len(dealt.Cards))
	writeJSON(w, http.StatusOK, map[string]any{
		"round_number":     dealt.RoundNumber,
		"starting_team_id": dealt.StartingTeamID,
		"cards":            boardPayload(dealt.Cards, true),
	})
}

func (s *Server) handleAssignRoles(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	number, ok := roundNumberFromPath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	assignments, err := s.engine.AssignRoles(r.Context(), r.PathValue("game_id"), number, userID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	payload := make([]map[string]any, len(assignments))
	for i, assignment := range assignments {
		payload[i] = map[string]any{
			"player_id": assignment.PlayerPublicID,
			"name":      assignment.PlayerName,
			"team":      assignment.TeamName,
			"role":      assignment.Role,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"assignments": payload})
}

func (s *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	number, ok := roundNumberFromPath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	round, err := s.engine.StartRound(r.Context(), r.PathValue("game_id"), number, userID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	log.Printf("round started game_id=%s round=%d", r.PathValue("game_id"), round.Number)
	writeJSON(w, http.StatusOK, map[string]any{
		"round_number": round.Number,
		"round_status": round.Status,
	})
}

func (s *Server) handleGiveClue(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	number, ok := roundNumberFromPath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	var req clueRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if message := validateRequest(&req); message != "" {
		writeError(w, http.StatusUnprocessableEntity, message)
		return
	}
	result, err := s.engine.GiveClue(r.Context(), game.GiveClueInput{
		GameID:      r.PathValue("game_id"),
		RoundNumber: number,
		UserID:      userID,
		Word:        req.Word,
		TargetCount: req.TargetCount,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	log.Printf("clue given game_id=%s round=%d word=%s target=%d", r.PathValue("game_id"), number, result.Clue.Word, result.Clue.TargetCount)
	writeJSON(w, http.StatusCreated, map[string]any{
		"word":              result.Clue.Word,
		"target_count":      result.Clue.TargetCount,
		"turn":              turnPayload(result.Turn),
		"guesses_remaining": result.Turn.GuessesRemaining,
	})
}

func (s *Server) handleMakeGuess(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	number, ok := roundNumberFromPath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	var req guessRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if message := validateRequest(&req); message != "" {
		writeError(w, http.StatusUnprocessableEntity, message)
		return
	}
	result, err := s.engine.MakeGuess(r.Context(), game.MakeGuessInput{
		GameID:      r.PathValue("game_id"),
		RoundNumber: number,
		UserID:      userID,
		CardWord:    req.CardWord,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	log.Printf("guess made game_id=%s round=%d card=%s outcome=%s", r.PathValue("game_id"), number, result.Guess.CardWord, result.Guess.Outcome)
	writeJSON(w, http.StatusCreated, map[string]any{
		"outcome":         result.Guess.Outcome,
		"card_word":       result.Guess.CardWord,
		"turn":            turnPayload(result.Turn),
		"round_completed": result.RoundCompleted,
		"winning_team":    result.WinningTeamName,
		"game_completed":  result.GameCompleted,
	})
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	number, ok := roundNumberFromPath(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	turn, err := s.engine.EndTurn(r.Context(), r.PathValue("game_id"), number, userID)
	if err != nil {
		writeFailure(w, err)
		return
	}
	log.Printf("turn ended game_id=%s round=%d team=%s", r.PathValue("game_id"), number, turn.TeamName)
	writeJSON(w, http.StatusOK, map[string]any{"turn": turnPayload(*turn)})
}
