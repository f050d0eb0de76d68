// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/warden/internal/api"
	"github.com/tomtom215/warden/internal/auth"
	"github.com/tomtom215/warden/internal/config"
	"github.com/tomtom215/warden/internal/database"
	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/supervisor"
	"github.com/tomtom215/warden/internal/supervisor/services"
)

const (
	sessionCleanupInterval = time.Minute
	throttlePurgeInterval  = 10 * time.Minute
)

func main() {
	printSchema := flag.Bool("print-schema", false, "print the MySQL DDL for the configured table prefix and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if *printSchema {
		for _, stmt := range database.ReferenceSchema(cfg.Database.TablePrefix) {
			fmt.Println(stmt + ";")
		}
		return
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("session_store", cfg.Security.SessionStore).
		Str("table_prefix", cfg.Database.TablePrefix).
		Msg("Starting Warden")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	storeFactory, err := auth.NewSessionStoreFactory(auth.SessionStoreType(cfg.Security.SessionStore), cfg.Security.SessionStorePath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open session store")
	}
	defer func() {
		if err := storeFactory.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()
	if storeFactory.Type() == auth.SessionStoreMemory {
		logging.Warn().Msg("Sessions are kept in memory and will be lost on restart (SESSION_STORE=badger persists them)")
	}

	store := storeFactory.CreateStore(auth.WithStoreClock(db.Now))
	throttle := auth.NewThrottle(db, auth.ThrottleConfigFromSecurity(&cfg.Security))
	svc := auth.NewService(db, store, throttle, auth.ConfigFromSecurity(&cfg.Security))

	sessionCfg := auth.DefaultSessionMiddlewareConfig()
	if cfg.Security.CookieName != "" {
		sessionCfg.CookieName = cfg.Security.CookieName
	}
	sessionCfg.CookieSecure = cfg.Security.CookieSecure
	sessions := auth.NewSessionMiddleware(svc, sessionCfg)

	router := api.NewRouter(api.NewHandler(svc, sessions, db), api.RouterConfigFromSecurity(&cfg.Security))
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.Timeout + 5*time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddMaintenanceService(services.NewSessionCleanupService(store, sessionCleanupInterval))
	tree.AddMaintenanceService(services.NewThrottlePurgeService(throttle, throttlePurgeInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))

	logging.Info().Str("addr", server.Addr).Msg("Supervisor tree starting")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within the shutdown timeout")
		}
	}
	logging.Info().Msg("Warden stopped")
}
