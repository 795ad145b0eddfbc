package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/itinerary-export/internal/domain"
)

// pgSnapshotStore keeps every saved version of the collection in the
// append-only trip_snapshots table. The newest row (highest seq) is current.
// Versions are identified by the git blob SHA of their bytes so clients see
// the same kind of SHA as with the GitHub backend.
type pgSnapshotStore struct {
	db db
}

// NewSnapshotStore constructs a TripStore backed by Postgres.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewSnapshotStore(db db) TripStore {
	return &pgSnapshotStore{db: db}
}

// Load returns the newest snapshot.
func (r *pgSnapshotStore) Load(ctx context.Context) (domain.Snapshot, error) {
	const q = `
		SELECT sha, data::text, created_at
		FROM trip_snapshots
		ORDER BY seq DESC
		LIMIT 1`

	var (
		s    domain.Snapshot
		data string
	)
	if err := r.db.QueryRow(ctx, q).Scan(&s.SHA, &data, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Snapshot{}, fmt.Errorf("repo.SnapshotStore.Load: %w", domain.ErrNotFound)
		}
		return domain.Snapshot{}, fmt.Errorf("repo.SnapshotStore.Load: %w", err)
	}
	s.Data = []byte(data)
	return s, nil
}

// Save appends a snapshot if parentSHA still names the newest one.
// The table lock serialises concurrent writers so the check and the insert
// see the same head.
func (r *pgSnapshotStore) Save(ctx context.Context, data []byte, parentSHA string) (domain.SaveResult, error) {
	if !json.Valid(data) {
		return domain.SaveResult{}, fmt.Errorf("repo.SnapshotStore.Save: %w: data is not valid JSON", domain.ErrValidation)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.SaveResult{}, fmt.Errorf("repo.SnapshotStore.Save: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `LOCK TABLE trip_snapshots IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return domain.SaveResult{}, fmt.Errorf("repo.SnapshotStore.Save: lock: %w", err)
	}

	var head string
	err = tx.QueryRow(ctx, `SELECT sha FROM trip_snapshots ORDER BY seq DESC LIMIT 1`).Scan(&head)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return domain.SaveResult{}, fmt.Errorf("repo.SnapshotStore.Save: read head: %w", err)
	}
	if head != parentSHA {
		return domain.SaveResult{}, fmt.Errorf("repo.SnapshotStore.Save: %w: parent %q, current %q",
			domain.ErrConflict, parentSHA, head)
	}

	const q = `
		INSERT INTO trip_snapshots (sha, parent_sha, data)
		VALUES (@sha, @parent_sha, @data::json)
		RETURNING id, sha`

	args := pgx.NamedArgs{
		"sha":        domain.BlobSHA(data),
		"parent_sha": parentSHA,
		"data":       string(data),
	}

	var (
		id  pgtype.UUID
		res domain.SaveResult
	)
	if err := tx.QueryRow(ctx, q, args).Scan(&id, &res.SHA); err != nil {
		return domain.SaveResult{}, fmt.Errorf("repo.SnapshotStore.Save: insert: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.SaveResult{}, fmt.Errorf("repo.SnapshotStore.Save: commit: %w", err)
	}

	res.CommitSHA = uuid.UUID(id.Bytes).String()
	res.Created = parentSHA == ""
	return res, nil
}
