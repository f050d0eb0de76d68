// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package services adapts Warden components to suture.Service.

	HTTPServerService           ListenAndServe/Shutdown as a context-aware Serve
	PeriodicService             runs a task on a ticker until canceled
	NewSessionCleanupService    PeriodicService over SessionStore.CleanupExpired
	NewThrottlePurgeService     PeriodicService over Throttle.Purge

Every service returns ctx.Err() after a graceful stop and implements
fmt.Stringer so suture's event log names it.
*/
package services
