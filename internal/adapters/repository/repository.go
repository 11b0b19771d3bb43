// Package repository defines the storage contracts the engine depends on:
// windowed read access to the workout log and the at-most-once unlock
// ledger. Implementations live alongside the interfaces.
package repository

import (
	"context"

	"github.com/okian/grindstone/internal/domain/model"
)

// EventSource provides read access to a user's workout history. The
// engine never mutates events; Append exists for the logging subsystem
// and for seeding demos and tests.
type EventSource interface {
	// Events returns the user's events inside the window in timestamp
	// order. A zero window start means the whole history.
	Events(ctx context.Context, userID string, w model.Window) ([]model.WorkoutEvent, error)

	// Append stores new events.
	Append(ctx context.Context, events ...model.WorkoutEvent) error
}

// Grant reports the outcome of a ledger grant. Granted is true only when
// this call created the record; a pre-existing record is returned with
// Granted false, which is a success, not an error.
type Grant struct {
	Granted bool
	Record  model.UnlockRecord
}

// Ledger is the permanent unlock store. Grant must be an atomic
// insert-if-absent on (userID, kind, identifier): two racing grants for
// the same tuple yield exactly one stored record and exactly one
// Granted=true.
type Ledger interface {
	Grant(ctx context.Context, userID string, kind model.UnlockKind, identifier, source string) (Grant, error)

	// Unlocks returns every record for the user, oldest first.
	Unlocks(ctx context.Context, userID string) ([]model.UnlockRecord, error)
}
