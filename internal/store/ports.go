package store

import (
	"context"
	"errors"

	"tempo/internal/core"
)

// ErrNotFound is returned by Update and Delete when the target record no
// longer exists. Implementations must return it (possibly wrapped) so the
// ledger can distinguish a vanished record from a store outage.
var ErrNotFound = errors.New("activity not found")

// Ports for record-store adapters. Any keyed store that satisfies Store
// (a relational table, a document collection, the in-memory double) works.
type (
	// Store is the generic record store the ledger runs against.
	Store interface {
		// Query returns all activities for one (owner, date), ordered by
		// creation time ascending. An empty result is not an error.
		Query(ctx context.Context, owner string, date core.Date) ([]core.Activity, error)

		// Insert creates the record, assigning ID and timestamps.
		Insert(ctx context.Context, n core.NewActivity) (core.Activity, error)

		// Update persists only the fields carried by the patch.
		Update(ctx context.Context, id string, p core.Patch) error

		// Delete removes the record by ID.
		Delete(ctx context.Context, id string) error
	}
)
