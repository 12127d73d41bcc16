package command

import (
	"context"
	"fmt"
	"time"

	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SWEEP EXPIRED GRANTS COMMAND
// Periodic cleanup of expired titles, VIP and boosts. Reads are lazy
// everywhere, so correctness never depends on this sweep; it exists to
// keep stored rows tidy and to emit expiry notifications.
// ══════════════════════════════════════════════════════════════════════════════

// SweepExpiredGrantsResult summarises one sweep pass.
type SweepExpiredGrantsResult struct {
	// Scanned is how many candidate accounts the pass considered.
	Scanned int

	// Cleared is the total number of grants removed.
	Cleared int

	// Expired lists every cleared grant for notification fan-out.
	Expired []ExpiredGrant

	Duration time.Duration
}

// ExpiredGrant is one cleared grant.
type ExpiredGrant struct {
	TelegramID account.TelegramID
	Kind       account.GrantKind
}

// SweepExpiredGrantsHandler runs the sweep.
type SweepExpiredGrantsHandler struct {
	ledger    account.Ledger
	publisher shared.EventPublisher

	// batchSize bounds one pass so a huge backlog cannot stall the worker.
	batchSize int
}

// NewSweepExpiredGrantsHandler creates a new SweepExpiredGrantsHandler.
func NewSweepExpiredGrantsHandler(ledger account.Ledger, publisher shared.EventPublisher, batchSize int) *SweepExpiredGrantsHandler {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &SweepExpiredGrantsHandler{ledger: ledger, publisher: publisher, batchSize: batchSize}
}

// Handle executes one sweep pass. Each account is cleared through its
// own mutation, so the sweep races cleanly with concurrent activity.
func (h *SweepExpiredGrantsHandler) Handle(ctx context.Context) (*SweepExpiredGrantsResult, error) {
	started := time.Now()
	now := started.UTC()

	ids, err := h.ledger.FindExpiredGrants(ctx, now, h.batchSize)
	if err != nil {
		return nil, fmt.Errorf("sweep_expired_grants: scan: %w", err)
	}

	result := &SweepExpiredGrantsResult{Scanned: len(ids)}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		var cleared []account.GrantKind
		acc, err := h.ledger.Mutate(ctx, id, "", "",
			func(a *account.Account, _ *account.Journal) error {
				cleared = a.ClearExpiredGrants(now)
				return nil
			})
		if err != nil {
			// One stuck account must not abort the whole pass.
			continue
		}

		for _, kind := range cleared {
			result.Cleared++
			result.Expired = append(result.Expired, ExpiredGrant{TelegramID: id, Kind: kind})
			_ = h.publisher.Publish(shared.NewGrantExpiredEvent(acc.ID, id.Int64(), string(kind), now))
		}
	}

	result.Duration = time.Since(started)
	_ = h.publisher.Publish(shared.NewBaseEvent(shared.EventSweepCompleted, "sweep"))
	return result, nil
}
