package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"acolhimento/internal/domain"
)

// SyncQueue. Claiming uses SKIP LOCKED so concurrent workers never pick the
// same contact; the claimed row is moved to the transitional syncing state in
// the same statement.

func (db *DB) ClaimNextPending(ctx context.Context) (domain.Contact, bool, error) {
	row := db.Pool.QueryRow(ctx, `
        UPDATE contacts SET sync_status = 'syncing'
        WHERE id = (
            SELECT id FROM contacts
            WHERE sync_status = 'pending'
            ORDER BY created_at
            FOR UPDATE SKIP LOCKED
            LIMIT 1
        )
        RETURNING `+contactColumns+`
    `)
	c, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return c, false, nil
	}
	return c, err == nil, err
}

func (db *DB) MarkSynced(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
        UPDATE contacts SET sync_status = 'synced', synced_at = now(), sync_error = NULL WHERE id = $1
    `, id)
	return err
}

func (db *DB) MarkSyncError(ctx context.Context, id int64, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
        UPDATE contacts SET sync_status = 'error', sync_error = $2 WHERE id = $1
    `, id, reason)
	return err
}
