package ports

import (
	"context"

	"acolhimento/internal/domain"
)

// ContactFilter narrows List results.
type ContactFilter struct {
	Offset     int
	Limit      int
	Reason     string // substring match, empty = any
	SyncStatus string // exact match, empty = any
}

// ContactRepository stores and fetches contact records.
type ContactRepository interface {
	Create(ctx context.Context, c domain.Contact) (domain.Contact, error)
	Get(ctx context.Context, id int64) (domain.Contact, bool, error)
	GetByPhone(ctx context.Context, phone string) (domain.Contact, bool, error)
	List(ctx context.Context, f ContactFilter) ([]domain.Contact, error)
	Update(ctx context.Context, c domain.Contact) (domain.Contact, bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}
