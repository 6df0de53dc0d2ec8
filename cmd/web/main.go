package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/minaorangina/kings/bot"
	"github.com/minaorangina/kings/config"
	"github.com/minaorangina/kings/engine"
	"github.com/minaorangina/kings/game"
	"github.com/minaorangina/kings/server"
	"github.com/minaorangina/kings/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err.Error())
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	strategy, err := bot.New(cfg.BotStrategy)
	if err != nil {
		return err
	}

	games := store.NewInMemoryGameStore(store.InMemoryGameStoreOpts{
		Engine: engine.GameEngineOpts{
			Strategy:     strategy,
			MoveInterval: cfg.AIMoveInterval,
			TurnTimeout:  cfg.TurnTimeout,
			Backlog:      cfg.BroadcastBacklog,
			Game: game.Options{
				WinThreshold: cfg.WinThreshold,
				BlankFiller:  cfg.BlankFiller,
			},
		},
		Logger:        logger.Named("store"),
		FinishedGrace: cfg.FinishedGrace,
	})
	defer games.Close()

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: server.NewServer(games, server.ServerOpts{
			AllowedOrigins: cfg.AllowedOrigins,
			Logger:         logger.Named("server"),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(pruneInterval(cfg.GameTTL))
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if n := games.Prune(cfg.GameTTL); n > 0 {
					logger.Info("pruned games", zap.Int("count", n), zap.Int("remaining", games.Len()))
				}
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// pruneInterval checks for stale games a few times per TTL
func pruneInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}
