package services

import (
	"context"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
)

// PeriodSvcFacade manages monthly accounting periods.
type PeriodSvcFacade interface {
	// GetOrCreatePeriod returns the open period containing date, creating it
	// on first use. A closed period yields ErrPeriodClosed.
	GetOrCreatePeriod(ctx context.Context, date time.Time) (*domain.AccountingPeriod, error)
	GetPeriod(ctx context.Context, periodID string) (*domain.AccountingPeriod, error)
	ListPeriods(ctx context.Context, year int) ([]domain.AccountingPeriod, error)
	ClosePeriod(ctx context.Context, periodID string, userID string) (*domain.AccountingPeriod, error)

	// ReopenPeriod only accepts the most recently closed period.
	ReopenPeriod(ctx context.Context, periodID string, userID string) (*domain.AccountingPeriod, error)
}
