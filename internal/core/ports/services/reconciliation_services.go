package services

import (
	"context"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/dto"
)

// ReconciliationReaderSvc reads runs and previews proposals.
type ReconciliationReaderSvc interface {
	// RunMatching computes proposals for unreconciled lines without persisting anything.
	RunMatching(ctx context.Context, bankAccountID string, from, to time.Time) ([]domain.MatchResult, error)
	GetRun(ctx context.Context, runID string) (*domain.ReconciliationRun, error)
	ListRuns(ctx context.Context, bankAccountID string) ([]domain.ReconciliationRun, error)
	RunSummary(ctx context.Context, runID string) (*domain.RunSummary, error)
}

// ReconciliationWriterSvc drives the run lifecycle.
type ReconciliationWriterSvc interface {
	StartRun(ctx context.Context, req dto.StartRunRequest, userID string) (*domain.ReconciliationRun, error)
	ApproveMatch(ctx context.Context, runID, matchID string, userID string) (*domain.ReconciliationMatch, error)
	RejectMatch(ctx context.Context, runID, matchID string, userID string) (*domain.ReconciliationMatch, error)
	CreateManualMatch(ctx context.Context, runID string, req dto.ManualMatchRequest, userID string) (*domain.ReconciliationMatch, error)
	CloseRun(ctx context.Context, runID string, userID string) (*domain.ReconciliationRun, error)
}

// ReconciliationSvcFacade combines reconciliation reads and writes.
type ReconciliationSvcFacade interface {
	ReconciliationReaderSvc
	ReconciliationWriterSvc
}
