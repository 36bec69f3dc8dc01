// Command hubline runs the core chat server: hub/channel storage, the
// subscription registry, the notification router, and the per-channel
// message index. It exposes no transport of its own — embedding programs
// drive command.Handler directly over whatever wire protocol they choose.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/google/uuid"

	"github.com/hubline-chat/hubline-server/internal/command"
	"github.com/hubline-chat/hubline-server/internal/config"
	"github.com/hubline-chat/hubline-server/internal/fanout"
	"github.com/hubline-chat/hubline-server/internal/index"
	"github.com/hubline-chat/hubline-server/internal/postgres"
	"github.com/hubline-chat/hubline-server/internal/registry"
	"github.com/hubline-chat/hubline-server/internal/store"
	"github.com/hubline-chat/hubline-server/internal/store/cache"
	pgstore "github.com/hubline-chat/hubline-server/internal/store/postgres"
	"github.com/hubline-chat/hubline-server/internal/valkey"
)

// valkeyDialTimeout bounds how long the initial Redis connection attempt
// waits; the cache is optional infrastructure so this stays a constant
// rather than another configuration knob.
const valkeyDialTimeout = 5 * time.Second

func main() {
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("hubline stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log.Info().Str("data_dir", cfg.DataDir).Bool("cache_enabled", cfg.CacheEnabled()).
		Msg("starting hubline")

	ctx := context.Background()

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConn, cfg.DatabaseMinConn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()
	log.Info().Msg("postgres connected")

	if err := pgstore.Migrate(cfg.DatabaseURL, log.Logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info().Msg("database migrations complete")

	var st store.Store = pgstore.New(db, log.Logger)

	subCtx, subCancel := context.WithCancel(ctx)
	defer subCancel()

	if cfg.CacheEnabled() {
		rdb, err := valkey.Connect(ctx, cfg.PermissionCacheURL, valkeyDialTimeout)
		if err != nil {
			return fmt.Errorf("connect permission cache: %w", err)
		}
		defer func() { _ = rdb.Close() }()
		log.Info().Msg("permission cache connected")

		cached := cache.New(st, rdb, cfg.PermissionCacheTTL, log.Logger)
		st = cached

		go runWithBackoff(subCtx, "permission-cache-invalidation", func(ctx context.Context) error {
			return cached.Listen(ctx, func(hubID uuid.UUID) {
				log.Debug().Stringer("hub_id", hubID).Msg("hub cache invalidation received")
			})
		})
	}

	idx := index.New(cfg.DataDir, cfg.CommitThreshold, cfg.IndexBatchSize, st, log.Logger)

	reg := registry.New(log.Logger)
	router := fanout.New(reg, log.Logger)
	handler := command.New(st, reg, router, idx, cfg.MaxMessageBytes, log.Logger)
	_ = handler // wired for embedding programs; this binary only proves the wiring compiles and shuts down cleanly

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down hubline")
	subCancel()
	if err := idx.Shutdown(); err != nil {
		log.Error().Err(err).Msg("index shutdown error")
	}

	return nil
}

// runWithBackoff runs fn in a loop, restarting with exponential backoff when
// it returns a non-nil, non-cancelled error. It exits once fn returns nil or
// the context is cancelled. The delay starts at 1 second and doubles on each
// consecutive failure up to a 2-minute cap.
func runWithBackoff(ctx context.Context, name string, fn func(context.Context) error) {
	const (
		initialDelay = time.Second
		maxDelay     = 2 * time.Minute
	)
	delay := initialDelay
	for {
		if err := fn(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Str("service", name).Dur("retry_in", delay).
				Msg("background service stopped, restarting after delay")
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = min(delay*2, maxDelay)
			continue
		}
		return
	}
}
