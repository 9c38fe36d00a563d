package server

import (
	"net/http"
	"time"

	"codewords/internal/config"
	"codewords/internal/game"

	"gorm.io/gorm"
)

type Server struct {
	engine   *game.Engine
	cfg      config.Config
	sessions *sessionStore
}

func New(engine *game.Engine, conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		engine:   engine,
		cfg:      cfg,
		sessions: newSessionStore(conn, time.Duration(cfg.SessionTTLHours)*time.Hour),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /api/users/guest", s.handleCreateGuest)
	mux.HandleFunc("POST /api/games", s.handleCreateGame)
	mux.HandleFunc("GET /api/games/{game_id}", s.handleGetGame)
	mux.HandleFunc("POST /api/games/{game_id}/players", s.handleJoinGame)
	mux.HandleFunc("POST /api/games/{game_id}/presence", s.handlePresence)
	mux.HandleFunc("POST /api/games/{game_id}/start", s.handleStartGame)
	mux.HandleFunc("POST /api/games/{game_id}/rounds", s.handleCreateRound)
	mux.HandleFunc("POST /api/games/{game_id}/rounds/{number}/deal", s.handleDealCards)
	mux.HandleFunc("POST /api/games/{game_id}/rounds/{number}/roles", s.handleAssignRoles)
	mux.HandleFunc("POST /api/games/{game_id}/rounds/{number}/start", s.handleStartRound)
	mux.HandleFunc("POST /api/games/{game_id}/rounds/{number}/clues", s.handleGiveClue)
	mux.HandleFunc("POST /api/games/{game_id}/rounds/{number}/guesses", s.handleMakeGuess)
	mux.HandleFunc("POST /api/games/{game_id}/rounds/{number}/end-turn", s.handleEndTurn)
	mux.HandleFunc("GET /join/{code}/qr.png", s.handleJoinQR)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
