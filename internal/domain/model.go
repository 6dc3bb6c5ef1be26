package domain

import "time"

// Core domain models used internally. HTTP request/response types live in the
// http adapter; keep these decoupled where helpful.

// Sync status values for a contact, driven by the background sync worker.
const (
	SyncPending = "pending"
	SyncSyncing = "syncing" // transitional, held while a worker owns the row
	SyncSynced  = "synced"
	SyncFailed  = "error"
)

// Contact is a persisted intake record.
type Contact struct {
	ID          int64
	Name        string
	Phone       string // canonical dashed format
	Email       *string
	Reason      string
	ContactDate *string // YYYY-MM-DD, when mentioned
	SyncStatus  string  // pending|syncing|synced|error
	SyncedAt    *time.Time
	SyncError   *string
	ExtraData   map[string]any // raw extraction result when created from free text
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// CandidateRecord is the five-field, all-nullable structure produced by
// extraction. It lives for one request and is never persisted as-is.
type CandidateRecord struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Reason      *string `json:"reason"`
	ContactDate *string `json:"contact_date"`
}

// Empty reports whether every field is null.
func (c CandidateRecord) Empty() bool {
	return c.Name == nil && c.Phone == nil && c.Email == nil && c.Reason == nil && c.ContactDate == nil
}

// ValidationResult is the outcome of running the field validator over a
// record-shaped input. Errors holds one message per failed rule, in field
// check order; IsValid is true iff Errors is empty.
type ValidationResult struct {
	IsValid   bool
	Corrected CandidateRecord
	Errors    []string
}
