package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Arena/internal/adapters/auth"
	router "github.com/dkeye/Arena/internal/adapters/http"
	"github.com/dkeye/Arena/internal/adapters/metadata"
	"github.com/dkeye/Arena/internal/app"
	"github.com/dkeye/Arena/internal/app/orch"
	"github.com/dkeye/Arena/internal/config"
	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, keeping info")
	}

	provider, err := newSpaceProvider(cfg.Metadata)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up metadata provider")
	}
	authenticator, err := auth.NewJWTAuthenticator(cfg.Auth.Secret, cfg.Auth.Issuer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up authenticator")
	}

	orch := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomManager(provider),
		Auth:     authenticator,
		Policy:   app.PolicyByName(cfg.WS.Backpressure),
		Spawn:    domain.Position{X: cfg.Room.SpawnX, Y: cfg.Room.SpawnY},
	}

	r := router.SetupRouter(ctx, cfg, orch)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Str("ws_path", cfg.WS.Path).Msg("Arena server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	// hijacked websocket connections are not covered by Shutdown
	n := orch.Shutdown()
	log.Info().Int("connections", n).Msg("Server exited gracefully")
}

func newSpaceProvider(cfg config.MetadataConfig) (core.SpaceProvider, error) {
	switch cfg.Source {
	case "file":
		p, err := metadata.LoadFile(cfg.File)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return metadata.NewHTTPProvider(cfg.BaseURL, cfg.Token, cfg.Timeout), nil
	}
}
