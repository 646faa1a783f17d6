package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"settlers/internal/archive"
	"settlers/internal/auth"
	"settlers/internal/config"
	"settlers/internal/server"
)

func main() {
	cfg := config.Load()
	port := flag.Int("port", cfg.Port, "server port")
	dbPath := flag.String("db", cfg.DBPath, "match archive path, empty disables it")
	flag.Parse()
	cfg.Port = *port
	cfg.DBPath = *dbPath

	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, cfg)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

// run serves until ctx is cancelled. Everything it opens is closed before it
// returns.
func run(ctx context.Context, cfg config.Config) error {
	tokens, err := auth.NewIssuer(cfg.TokenSecret, cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}
	if cfg.TokenSecret == "" {
		log.Warn().Msg("TOKEN_SECRET not set, reconnect tokens will not survive a restart")
	}

	var store server.Archive
	if cfg.DBPath != "" {
		db, err := archive.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open archive %s: %w", cfg.DBPath, err)
		}
		defer db.Close()
		store = db
	}

	return server.New(cfg, tokens, store).Run(ctx)
}
