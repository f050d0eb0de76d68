// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

/*
Package auth provides session-backed authentication, role-based permission
checks and failed-login throttling on top of the database package.

# Login

Service.Login walks a fixed sequence:

 1. The Throttle is consulted for the (ip, username) pair. A locked pair is
    refused with ErrLockedOut before the user is read.
 2. The user is looked up by username. An unknown user counts as a failure.
 3. Unless Credentials.Force is set, the password is checked against the
    stored bcrypt hash. A mismatch counts as a failure.
 4. An inactive user (status 'N') is refused with ErrUserDisabled. This is
    not counted as a failure.
 5. The user's last IP and login time are stamped, the throttle record is
    released, and a Session carrying the role's group id is stored.

ResultFromError turns the returned error into a LoginResult.

# Throttle

A pair is Locked while its failure count is at least MaxAttempts and its
last failure is inside Window (5 attempts and 30 minutes by default). Once
the window has elapsed the record is dropped, and the next failure starts
again at 1. Increments are single conditional UPDATE statements.

# Permissions

A user holds one role. A role belongs to at most one group and is linked to
any number of modules. CheckGroup and CheckModule always pass for root
users. Role module sets are memoized in a PermissionCache carried by the
request context; SessionMiddleware.Authenticate installs one per request.

# Sessions

Sessions live in a SessionStore: MemorySessionStore for a single process, or
BadgerSessionStore to survive restarts. SessionStoreFactory chooses between
them from configuration.

# Directory

Users, Roles, Modules and Groups manage the auth tables. Names are unique
(ErrDuplicateKey). Deleting a role, module or group runs several statements
without a transaction; a failure returns a *StepError naming the step, and
the earlier steps stay applied.
*/
package auth
