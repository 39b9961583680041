// Package main runs the current account API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/go-petr/current-account/cmd/httpserver"
	"github.com/go-petr/current-account/internal/branchcache"
	"github.com/go-petr/current-account/internal/middleware"
	"github.com/go-petr/current-account/pkg/configpkg"
	"github.com/go-petr/current-account/pkg/dbpkg"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	db, err := dbpkg.SetupWithLogger(config.DBDriver, config.DBSource, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to database")
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("cannot close database")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client

	if config.RedisAddress != "" {
		rdb, err = branchcache.NewClient(ctx, config.RedisAddress)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot connect to redis")
		}

		defer rdb.Close()
	}

	server, err := httpserver.New(db, rdb, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	hs := &http.Server{
		Addr:    config.ServerAddress,
		Handler: server,
	}

	go func() {
		logger.Info().Str("address", config.ServerAddress).Msg("CURRENT ACCOUNT API SERVER HAS STARTED")

		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("cannot start server")
		}
	}()

	<-ctx.Done()

	logger.Info().Dur("timeout", config.ShutdownTimeout).Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := hs.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
