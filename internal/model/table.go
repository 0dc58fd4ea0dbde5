package model

import "time"

// Table represents one seating resource on the floor.  Capacity changes
// and deletions are privileged operations: they can invalidate accepted
// reservations and must run the revalidation pass afterwards.
//
// Fields:
//
//	ID        – primary key identifier.
//	Capacity  – number of seats, always > 0.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Table struct {
	ID        uint64    // tables.id
	Capacity  int       // tables.capacity
	CreatedAt time.Time // tables.created_at
	UpdatedAt time.Time // tables.updated_at
}
