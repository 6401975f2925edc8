// internal/httpserver/routes_games.go
//
// HTTP routes for games:
//   - POST /games               → start a game
//   - GET  /games               → list games, optionally ?finished=true|false
//   - GET  /games/{id}          → one game
//   - POST /games/{id}/restart  → new game with the same range and players
//   - POST /games/{id}/guesses  → submit a guess for the current round

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// mountGames registers all /games routes.
func (s *Server) mountGames(r chi.Router) {
	r.Route("/games", func(r chi.Router) {
		r.Post("/", s.handleCreateGame)
		r.Get("/", s.handleListGames)
		r.Get("/{id}", s.handleGetGame)
		r.Post("/{id}/restart", s.handleRestartGame)
		r.Post("/{id}/guesses", s.handleGuess)
	})
}

type createGameReq struct {
	MinValue  int      `json:"minValue"`
	MaxValue  int      `json:"maxValue"`
	PlayerIDs []string `json:"playerIds"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "bad json")
		return
	}
	g, err := s.games.CreateGame(r.Context(), req.MinValue, req.MaxValue, req.PlayerIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	var finished *bool
	if raw := r.URL.Query().Get("finished"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(w, "finished must be true or false")
			return
		}
		finished = &b
	}
	gs, err := s.games.ListGames(r.Context(), finished)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gs)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.games.GetGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleRestartGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.games.RestartGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// guessReq is the body of POST /games/{id}/guesses. Guess is a pointer so a
// missing value is told apart from zero.
type guessReq struct {
	PlayerID string `json:"playerId"`
	Guess    *int   `json:"guess"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "bad json")
		return
	}
	if req.PlayerID == "" || req.Guess == nil {
		badRequest(w, "playerId and guess are required")
		return
	}
	out, err := s.games.SubmitGuess(r.Context(), chi.URLParam(r, "id"), req.PlayerID, *req.Guess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
