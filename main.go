// main.go
//
// Entry point for the Hi-Lo game server.
// Responsibilities:
//   - Load configuration (.env + environment) and configure zerolog.
//   - Start optional tracing and open the configured store.
//   - Serve HTTP until SIGINT/SIGTERM, then shut down gracefully.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/hilo/internal/config"
	"github.com/robalobadob/hilo/internal/game"
	"github.com/robalobadob/hilo/internal/httpserver"
	"github.com/robalobadob/hilo/internal/service"
	"github.com/robalobadob/hilo/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownTracing, err := telemetry.Setup(ctx, "hilo", cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("flush traces")
		}
	}()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}()

	games := service.NewGameService(st, st,
		service.WithSource(game.NewSource(cfg.MysterySeed)),
		service.WithMaxTries(cfg.GuessMaxTries),
	)
	players := service.NewPlayerService(st)
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: httpserver.New(games, players, httpserver.Options{
			ClientOrigin:   cfg.ClientOrigin,
			RequestTimeout: cfg.RequestTimeout,
		}).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.Store).Msg("starting hilo server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
