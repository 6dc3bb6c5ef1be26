package syncrunner

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"acolhimento/internal/domain"
	"acolhimento/internal/ports"
)

// Checker re-validates a claimed contact. Satisfied by the field validator.
type Checker interface {
	Validate(data map[string]any) domain.ValidationResult
}

// Run starts worker goroutines that claim pending contacts and record the
// validation outcome. Returns immediately; workers stop when ctx is done.
func Run(ctx context.Context, queue ports.SyncQueue, checker Checker, concurrency int, pollInterval time.Duration, log *zap.Logger) {
	if concurrency < 1 {
		return
	}
	jobs := make(chan domain.Contact, concurrency)

	// dispatcher loop
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			case <-ticker.C:
				for {
					c, found, err := queue.ClaimNextPending(ctx)
					if err != nil {
						log.Warn("sync_claim_error", zap.Error(err))
						break
					}
					if !found {
						break
					}
					jobs <- c
				}
			}
		}
	}()

	// workers
	for i := 0; i < concurrency; i++ {
		go func(idx int) {
			for c := range jobs {
				if err := Process(ctx, queue, checker, c); err != nil {
					log.Warn("sync_process_error", zap.Int("worker", idx), zap.Int64("contact_id", c.ID), zap.Error(err))
				}
			}
		}(i)
	}
}

// Process validates one claimed contact and marks it synced or errored.
func Process(ctx context.Context, queue ports.SyncQueue, checker Checker, c domain.Contact) error {
	res := checker.Validate(contactData(c))
	if res.IsValid {
		return queue.MarkSynced(ctx, c.ID)
	}
	return queue.MarkSyncError(ctx, c.ID, strings.Join(res.Errors, "; "))
}

func contactData(c domain.Contact) map[string]any {
	data := map[string]any{
		"name":   c.Name,
		"phone":  c.Phone,
		"reason": c.Reason,
	}
	if c.Email != nil {
		data["email"] = *c.Email
	}
	if c.ContactDate != nil {
		data["contact_date"] = *c.ContactDate
	}
	return data
}
