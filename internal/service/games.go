// internal/service/games.go
//
// GameService owns the game lifecycle: create, restart, guess, read.
// Responsibilities:
//   - Validate input before any write; validation failures never persist.
//   - Drive the engine (internal/game) and persist the resulting snapshot.
//   - Keep player counters in step via StatsRecorder.
//   - Retry SubmitGuess when another writer bumped the game's version first.
//
// Notes:
//   - The service holds no game state between calls.
//   - Counter updates happen after the game write. A counter failure is
//     returned to the caller; the game write stands.

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/robalobadob/hilo/internal/game"
	"github.com/robalobadob/hilo/internal/store"
)

var tracer = otel.Tracer("github.com/robalobadob/hilo/internal/service")

// GameService implements the game operations exposed to transports.
type GameService struct {
	games   store.GameStore
	players store.PlayerDirectory
	stats   *StatsRecorder
	opts    options
}

// NewGameService wires a service over the given stores.
func NewGameService(games store.GameStore, players store.PlayerDirectory, opts ...Option) *GameService {
	return &GameService{
		games:   games,
		players: players,
		stats:   NewStatsRecorder(players),
		opts:    buildOptions(opts),
	}
}

// CreateGame starts a game for the given players.
func (s *GameService) CreateGame(ctx context.Context, minValue, maxValue int, playerIDs []string) (_ GameView, err error) {
	ctx, span := tracer.Start(ctx, "GameService.CreateGame", trace.WithAttributes(
		attribute.Int("game.min_value", minValue),
		attribute.Int("game.max_value", maxValue),
		attribute.Int("game.players", len(playerIDs)),
	))
	defer func() { endSpan(span, err) }()

	if err := game.Validate(minValue, maxValue, playerIDs); err != nil {
		return GameView{}, err
	}
	names := newNameCache(s.players)
	for _, id := range playerIDs {
		p, err := lookupPlayer(ctx, s.players, id)
		if err != nil {
			return GameView{}, err
		}
		names.seed(p)
	}

	g, err := game.New(s.opts.newID(), minValue, maxValue, playerIDs, s.opts.src, s.opts.now())
	if err != nil {
		return GameView{}, err
	}
	if err := s.start(ctx, g); err != nil {
		return GameView{}, err
	}
	log.Info().Str("gameId", g.ID).Int("players", len(g.Players)).
		Int("min", g.MinValue).Int("max", g.MaxValue).Msg("game created")

	return toGameView(g, names.names), nil
}

// RestartGame creates a fresh game with the same range and players as a
// finished one. The finished game is kept as history.
func (s *GameService) RestartGame(ctx context.Context, gameID string) (_ GameView, err error) {
	ctx, span := tracer.Start(ctx, "GameService.RestartGame", trace.WithAttributes(
		attribute.String("game.source_id", gameID),
	))
	defer func() { endSpan(span, err) }()

	old, err := s.getGame(ctx, gameID)
	if err != nil {
		return GameView{}, err
	}
	g, err := old.Restart(s.opts.newID(), s.opts.src, s.opts.now())
	if err != nil {
		return GameView{}, err
	}
	if err := s.start(ctx, g); err != nil {
		return GameView{}, err
	}
	log.Info().Str("gameId", g.ID).Str("from", old.ID).Msg("game restarted")

	names, err := newNameCache(s.players).resolve(ctx, g)
	if err != nil {
		return GameView{}, err
	}
	return toGameView(g, names), nil
}

// start persists a new game and counts it for every participant.
func (s *GameService) start(ctx context.Context, g *game.Game) error {
	if err := s.games.CreateGame(ctx, g); err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	if err := s.stats.RecordGameStarted(ctx, g.PlayerIDs()); err != nil {
		return fmt.Errorf("record games played for game %s: %w", g.ID, err)
	}
	return nil
}

// SubmitGuess applies one player's guess for the current round.
func (s *GameService) SubmitGuess(ctx context.Context, gameID, playerID string, guess int) (_ GuessOutcome, err error) {
	ctx, span := tracer.Start(ctx, "GameService.SubmitGuess", trace.WithAttributes(
		attribute.String("game.id", gameID),
		attribute.String("player.id", playerID),
	))
	defer func() { endSpan(span, err) }()

	tries := 0
	out, err := backoff.Retry(ctx, func() (GuessOutcome, error) {
		tries++
		out, err := s.submitOnce(ctx, gameID, playerID, guess)
		if errors.Is(err, store.ErrConflict) {
			log.Debug().Str("gameId", gameID).Int("try", tries).Msg("guess lost a write race, retrying")
			return out, err
		}
		if err != nil {
			return out, backoff.Permanent(err)
		}
		return out, nil
	}, backoff.WithBackOff(conflictBackOff()), backoff.WithMaxTries(s.opts.maxTries))
	if err != nil {
		return GuessOutcome{}, err
	}
	span.SetAttributes(
		attribute.String("guess.result", string(out.Result)),
		attribute.String("game.status", string(out.Status)),
		attribute.Int("guess.tries", tries),
	)

	if out.Status == game.StatusFinished {
		log.Info().Str("gameId", gameID).Int("round", out.Round).Msg("game finished")
	}
	if out.Result == game.ResultWin {
		if err := s.stats.RecordWin(ctx, playerID); err != nil {
			return GuessOutcome{}, fmt.Errorf("record win for game %s: %w", gameID, err)
		}
	}
	return out, nil
}

// submitOnce runs one load-validate-apply-write pass.
func (s *GameService) submitOnce(ctx context.Context, gameID, playerID string, guess int) (GuessOutcome, error) {
	g, err := s.getGame(ctx, gameID)
	if err != nil {
		return GuessOutcome{}, err
	}
	if g.Finished() {
		return GuessOutcome{}, fmt.Errorf("%w: game %s is finished, restart it to play again", game.ErrGameFinished, g.ID)
	}
	p, err := lookupPlayer(ctx, s.players, playerID)
	if err != nil {
		return GuessOutcome{}, err
	}

	res, err := g.ApplyGuess(playerID, guess, s.opts.now())
	if err != nil {
		return GuessOutcome{}, err
	}
	if err := s.games.UpdateGame(ctx, g); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return GuessOutcome{}, err
		}
		return GuessOutcome{}, fmt.Errorf("update game: %w", err)
	}

	return GuessOutcome{
		GameID:     g.ID,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Result:     res,
		Attempts:   g.Players[g.Entry(playerID)].Attempts,
		Round:      g.Round,
		Status:     g.Status,
	}, nil
}

// GetGame returns one game.
func (s *GameService) GetGame(ctx context.Context, gameID string) (_ GameView, err error) {
	ctx, span := tracer.Start(ctx, "GameService.GetGame", trace.WithAttributes(
		attribute.String("game.id", gameID),
	))
	defer func() { endSpan(span, err) }()

	g, err := s.getGame(ctx, gameID)
	if err != nil {
		return GameView{}, err
	}
	names, err := newNameCache(s.players).resolve(ctx, g)
	if err != nil {
		return GameView{}, err
	}
	return toGameView(g, names), nil
}

// ListGames returns games newest first. A nil finished lists everything.
func (s *GameService) ListGames(ctx context.Context, finished *bool) (_ []GameView, err error) {
	ctx, span := tracer.Start(ctx, "GameService.ListGames")
	defer func() { endSpan(span, err) }()

	gs, err := s.games.ListGames(ctx, store.Filter{Finished: finished})
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	cache := newNameCache(s.players)
	out := make([]GameView, 0, len(gs))
	for _, g := range gs {
		names, err := cache.resolve(ctx, g)
		if err != nil {
			return nil, err
		}
		out = append(out, toGameView(g, names))
	}
	return out, nil
}

func (s *GameService) getGame(ctx context.Context, id string) (*game.Game, error) {
	g, err := s.games.GetGame(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", game.ErrGameNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}
	return g, nil
}

// lookupPlayer maps a missing player to game.ErrPlayerNotFound.
func lookupPlayer(ctx context.Context, players store.PlayerDirectory, id string) (*game.Player, error) {
	p, err := players.GetPlayer(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", game.ErrPlayerNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

func conflictBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 100 * time.Millisecond
	return b
}

// endSpan records err (if any) and ends the span. Validation failures are
// caller errors and leave the span status unset.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		if !game.IsValidation(err) {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}
