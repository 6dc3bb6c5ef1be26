package ports

import (
	"context"

	"acolhimento/internal/domain"
)

// SyncQueue supports claiming pending contacts and recording sync outcomes.
type SyncQueue interface {
	ClaimNextPending(ctx context.Context) (c domain.Contact, found bool, err error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64, reason string) error
}
