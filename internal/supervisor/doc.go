// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package supervisor runs Warden's long-lived services under suture v4.

The tree has two layers so a failing maintenance job never restarts the
HTTP server:

	RootSupervisor ("warden")
	├── MaintenanceSupervisor ("maintenance-layer")
	│   ├── session-cleanup   (SessionStore.CleanupExpired)
	│   └── throttle-purge    (Throttle.Purge)
	└── APISupervisor ("api-layer")
	    └── http-server

Supervisor events (start, panic, backoff) are logged through sutureslog on
top of logging.NewSlogLogger, so they land in the same zerolog stream as
the rest of the process.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddMaintenanceService(services.NewSessionCleanupService(store, time.Minute))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped with error")
	}

Services must return from Serve promptly once their context is canceled;
anything still running after ShutdownTimeout is reported by
UnstoppedServiceReport.
*/
package supervisor
