// Package repository implements the persistence capability over MySQL.
// Each entity gets its own repo struct bound to a *sql.DB.  Sentinel
// errors defined here are shared across repositories so that handlers
// and the booking service can distinguish failure scenarios: for
// example ErrConflict signals that a structural change cannot proceed
// because dependent records exist (deleting a table that still carries
// seated guests), while the per-entity not-found sentinels are declared
// next to their repos.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by somebody else.  Handlers translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be performed
// because of conflicting state, such as shrinking a table that
// currently has a NOTIFIED or IN_PROGRESS reservation.  Handlers
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
