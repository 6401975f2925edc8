// internal/httpserver/routes_players.go
//
// HTTP routes for the player directory:
//   - POST /players             → register a player
//   - GET  /players             → all players by name
//   - GET  /players/leaderboard → top players by wins (default 20)
//   - GET  /players/{id}        → one player

package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const defaultLeaderboardLimit = 20

// mountPlayers registers all /players routes.
func (s *Server) mountPlayers(r chi.Router) {
	r.Route("/players", func(r chi.Router) {
		r.Post("/", s.handleCreatePlayer)
		r.Get("/", s.handleListPlayers)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/{id}", s.handleGetPlayer)
	})
}

type createPlayerReq struct {
	Name string `json:"name"`
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req createPlayerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "bad json")
		return
	}
	p, err := s.players.CreatePlayer(r.Context(), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPlayers(w http.ResponseWriter, r *http.Request) {
	ps, err := s.players.ListPlayers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// handleLeaderboard returns the top ?limit= players.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}
	ps, err := s.players.Leaderboard(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := s.players.GetPlayer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
