package repositories

import (
	"context"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
)

// ReconciliationRepository persists reconciliation runs and their matches.
type ReconciliationRepository interface {
	// NextRunSequence returns one more than the highest sequence among run
	// numbers with the given prefix. Inside a transaction concurrent callers
	// for the same prefix are serialized.
	NextRunSequence(ctx context.Context, prefix string) (int, error)

	SaveRun(ctx context.Context, run domain.ReconciliationRun) error
	FindRunByID(ctx context.Context, runID string) (*domain.ReconciliationRun, error)

	// FindRunForUpdate loads a run and locks it for the rest of the transaction.
	FindRunForUpdate(ctx context.Context, runID string) (*domain.ReconciliationRun, error)
	ListRuns(ctx context.Context, bankAccountID string) ([]domain.ReconciliationRun, error)

	// UpdateRun persists counters, status and closing stamps.
	UpdateRun(ctx context.Context, run domain.ReconciliationRun) error

	SaveMatches(ctx context.Context, matches []domain.ReconciliationMatch) error
	FindMatchByID(ctx context.Context, matchID string) (*domain.ReconciliationMatch, error)
	ListMatchesByRun(ctx context.Context, runID string) ([]domain.ReconciliationMatch, error)

	// UpdateMatch persists status and approval stamps.
	UpdateMatch(ctx context.Context, match domain.ReconciliationMatch) error

	// ListApprovedInternalIDs returns "kind:id" keys of movements already
	// consumed by an approved match of any bank account.
	ListApprovedInternalIDs(ctx context.Context) (map[string]bool, error)
}
