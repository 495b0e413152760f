package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/careline/internal/adapters/http"
	sig "github.com/dkeye/careline/internal/adapters/signal"
	"github.com/dkeye/careline/internal/app"
	"github.com/dkeye/careline/internal/app/orch"
	"github.com/dkeye/careline/internal/config"
	"github.com/dkeye/careline/internal/core"
	"github.com/dkeye/careline/internal/domain"
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
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	policy, err := app.ParsePolicy(cfg.SlowConsumer)
	if err != nil {
		log.Fatal().Err(err).Msg("bad slow consumer policy")
	}
	hangup, err := app.ParseHangupNotify(cfg.Call.HangupNotify)
	if err != nil {
		log.Fatal().Err(err).Msg("bad hangup notify mode")
	}

	hub := core.NewHub()
	o := orch.New(hub, orch.Options{
		PairSeparator: cfg.PairSeparator,
		AdminRoom:     domain.RoomKey(cfg.AdminRoom),
		Calls: app.CallOptions{
			Strict:      cfg.Call.Strict,
			RingTimeout: cfg.Call.RingTimeout,
		},
		Hangup: hangup,
		Policy: policy,
	})
	ctrl := sig.NewSignalWSController(o, sig.NewRoomRateLimiter(cfg.JoinRate.Limit, cfg.JoinRate.Interval), sig.Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		PongWait:   cfg.PongWait,
		WriteWait:  cfg.WriteWait,
		SendBuffer: cfg.SendBuffer,
	})

	r := router.SetupRouter(ctx, cfg, o, ctrl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("careline signaling server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	log.Info().Msg("Server exited gracefully")
}
