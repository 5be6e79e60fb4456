package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"systmix/internal/config"
	"systmix/internal/connectivity"
	"systmix/internal/infra"
	"systmix/internal/notify"
	"systmix/internal/remote"
	"systmix/internal/repository"
	"systmix/internal/router"
	"systmix/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := infra.NewLocalDatabase(cfg.LocalDBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local mirror database")
	}

	remoteClient := remote.NewClient(cfg.RemoteAPIURL, cfg.RemoteTimeout)
	breaker := infra.NewCircuitBreaker(infra.DefaultCBConfig())
	notifier := notify.NewNotifier()
	queue := repository.NewPendingActionRepository(db)

	// Start offline: the first connectivity report or probe pass flips the
	// state, and the offline→online edge triggers the initial drain.
	monitor := connectivity.NewMonitor(cfg.SyncSettleDelay, false)

	engine := worker.NewSyncEngine(
		queue,
		repository.NewComandaRepository(db),
		repository.NewProdutoRepository(db),
		repository.NewClienteRepository(db),
		remoteClient,
		breaker,
		notifier,
		monitor.IsOnline,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	monitor.OnReconnect(func() {
		if _, err := engine.Drain(ctx); err != nil {
			log.Error().Err(err).Msg("sync: drain after reconnect failed")
		}
	})

	r := router.New(cfg, router.Deps{
		DB:       db,
		Remote:   remoteClient,
		Monitor:  monitor,
		Breaker:  breaker,
		Notifier: notifier,
		Engine:   engine,
		Queue:    queue,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Msgf("SystMix bridge listening on 127.0.0.1:%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	if cfg.ProbeInterval > 0 {
		g.Go(func() error {
			err := monitor.StartProbe(gctx, cfg.ProbeInterval, remoteClient.Health)
			if err == context.Canceled {
				return nil
			}
			return err
		})
	}

	// Graceful shutdown on SIGINT / SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("shutting down bridge…")
	case <-gctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("background task error")
	}
	log.Info().Msg("bridge exited")
}
