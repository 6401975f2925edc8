// internal/httpserver/server.go
//
// HTTP server wiring for the Hi-Lo backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     access log).
//   - Public endpoints: "/", "/health".
//   - Game endpoints: mounted under /games (routes_games.go).
//   - Player + leaderboard endpoints: mounted under /players (routes_players.go).
//   - Mapping of domain errors to status codes and JSON error bodies.
//
// Notes:
//   - Handlers hold no state; everything goes through the services.
//   - Responses never include mystery numbers: handlers only encode views.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hilo/internal/game"
	"github.com/robalobadob/hilo/internal/service"
	"github.com/robalobadob/hilo/internal/store"
)

// Options tunes the router.
type Options struct {
	// ClientOrigin is the single origin allowed by CORS.
	ClientOrigin string
	// RequestTimeout bounds handler time.
	RequestTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.ClientOrigin == "" {
		o.ClientOrigin = "http://localhost:5173"
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 10 * time.Second
	}
	return o
}

// Server bundles the router and the services it dispatches to.
type Server struct {
	r       *chi.Mux
	games   *service.GameService
	players *service.PlayerService
}

// New constructs a Server, installs middleware, and registers routes.
func New(games *service.GameService, players *service.PlayerService, opts Options) *Server {
	opts = opts.withDefaults()
	s := &Server{r: chi.NewRouter(), games: games, players: players}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                          // one line per request
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.RequestTimeout)) // bound handler time
	s.r.Use(jsonContentType)                    // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"hilo","endpoints":["/health","/players","/players/leaderboard","/games"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.mountPlayers(s.r)
	s.mountGames(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "NOT_FOUND", Message: "no route for " + r.URL.Path})
	})
	s.r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "METHOD_NOT_ALLOWED", Message: r.Method + " " + r.URL.Path})
	})

	return s
}

// Handler exposes the router as an http.Handler.
func (s *Server) Handler() http.Handler { return s.r }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one zerolog line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ev := log.Info()
		if status >= http.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Str("requestId", chimw.GetReqID(r.Context())).
			Msg("http request")
	})
}

// ------------------------------ responses ----------------------------------

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// writeError maps err to a status and a stable code. Anything that is not a
// domain or store error is a 500 and its text is not echoed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).
			Str("requestId", chimw.GetReqID(r.Context())).Msg("request failed")
	}
	writeJSON(w, status, body)
}

func classify(err error) (int, errorBody) {
	switch {
	case errors.Is(err, game.ErrGameNotFound), errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound, errorBody{Error: game.Code(err), Message: err.Error()}
	case errors.Is(err, game.ErrGameFinished), errors.Is(err, game.ErrGameNotFinished),
		errors.Is(err, game.ErrAlreadyGuessed):
		return http.StatusConflict, errorBody{Error: game.Code(err), Message: err.Error()}
	case game.IsValidation(err):
		return http.StatusBadRequest, errorBody{Error: game.Code(err), Message: err.Error()}
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict, errorBody{Error: "CONFLICT", Message: "the game changed concurrently, try again"}
	default:
		return http.StatusInternalServerError, errorBody{Error: "INTERNAL", Message: "internal error"}
	}
}

// badRequest reports a malformed request (bad JSON, bad query parameter).
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "BAD_REQUEST", Message: msg})
}
