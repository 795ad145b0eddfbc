// Package repo contains the persistence backends for the trip collection.
// Each backend implements TripStore with the same optimistic-concurrency
// contract: a write names the SHA of the version it replaces and fails with
// domain.ErrConflict if that is no longer current. No business logic lives
// here — only storage access and type mapping.
package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/itinerary-export/internal/domain"
)

// TripStore persists the trip collection as a single JSON document.
type TripStore interface {
	// Load returns the current version. Returns domain.ErrNotFound when
	// nothing has been stored yet.
	Load(ctx context.Context) (domain.Snapshot, error)

	// Save writes data as the new version. parentSHA must be the SHA of the
	// current version, or "" to create the first one. Returns
	// domain.ErrConflict when parentSHA is stale.
	Save(ctx context.Context, data []byte, parentSHA string) (domain.SaveResult, error)
}

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
