package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/apperrors"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	portsrepo "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/repositories"
	portssvc "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/utils/locale"
)

type periodService struct {
	BaseService
	periodRepo portsrepo.PeriodRepository
	txManager  portsrepo.TransactionManager
	namer      *locale.MonthNamer
}

// PeriodServiceOption is a functional option for configuring the period service
type PeriodServiceOption func(*periodService)

// WithMonthNamer sets the namer used for new periods.
func WithMonthNamer(namer *locale.MonthNamer) PeriodServiceOption {
	return func(s *periodService) {
		if namer != nil {
			s.namer = namer
		}
	}
}

// NewPeriodService creates a period service. Period names default to Spanish.
func NewPeriodService(periodRepo portsrepo.PeriodRepository, txManager portsrepo.TransactionManager, options ...PeriodServiceOption) portssvc.PeriodSvcFacade {
	svc := &periodService{
		periodRepo: periodRepo,
		txManager:  txManager,
		namer:      locale.NewMonthNamer("es"),
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

func (s *periodService) GetOrCreatePeriod(ctx context.Context, date time.Time) (*domain.AccountingPeriod, error) {
	year, month := domain.PeriodKey(date)
	period, err := s.periodRepo.GetOrCreatePeriod(ctx, year, month, s.namer.PeriodName(year, month))
	if err != nil {
		s.LogError(ctx, err, "Failed to get or create period", slog.Int("year", year), slog.Int("month", month))
		return nil, err
	}
	if period.Closed {
		return nil, fmt.Errorf("%w: %s", ErrPeriodClosed, period.Name)
	}
	return period, nil
}

func (s *periodService) GetPeriod(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPeriodNotFound, periodID)
		}
		return nil, err
	}
	return period, nil
}

func (s *periodService) ListPeriods(ctx context.Context, year int) ([]domain.AccountingPeriod, error) {
	return s.periodRepo.ListPeriods(ctx, year)
}

func (s *periodService) lockPeriod(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	period, err := s.periodRepo.FindPeriodForUpdate(ctx, periodID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrPeriodNotFound, periodID)
		}
		return nil, err
	}
	return period, nil
}

func (s *periodService) ClosePeriod(ctx context.Context, periodID string, userID string) (*domain.AccountingPeriod, error) {
	var result *domain.AccountingPeriod
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		period, err := s.lockPeriod(ctx, periodID)
		if err != nil {
			return err
		}
		if period.Closed {
			return fmt.Errorf("%w: %s", ErrPeriodClosed, period.Name)
		}
		now := time.Now().UTC()
		period.Closed = true
		period.ClosedAt = &now
		period.ClosedBy = userID
		period.LastUpdatedAt = now
		period.LastUpdatedBy = userID
		if err := s.periodRepo.UpdatePeriodStatus(ctx, *period); err != nil {
			return err
		}
		result = period
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to close period", slog.String("period_id", periodID))
		return nil, err
	}
	s.LogInfo(ctx, "Period closed", slog.String("period_id", periodID), slog.String("name", result.Name))
	return result, nil
}

func (s *periodService) ReopenPeriod(ctx context.Context, periodID string, userID string) (*domain.AccountingPeriod, error) {
	var result *domain.AccountingPeriod
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		period, err := s.lockPeriod(ctx, periodID)
		if err != nil {
			return err
		}
		if !period.Closed {
			return fmt.Errorf("%w: %s", ErrPeriodNotClosed, period.Name)
		}
		latest, err := s.periodRepo.FindLatestClosedPeriod(ctx)
		if err != nil {
			return err
		}
		if latest.PeriodID != period.PeriodID {
			return fmt.Errorf("%w: %s was closed after %s", ErrPeriodNotLatestClosed, latest.Name, period.Name)
		}
		now := time.Now().UTC()
		period.Closed = false
		period.ClosedAt = nil
		period.ClosedBy = ""
		period.LastUpdatedAt = now
		period.LastUpdatedBy = userID
		if err := s.periodRepo.UpdatePeriodStatus(ctx, *period); err != nil {
			return err
		}
		result = period
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to reopen period", slog.String("period_id", periodID))
		return nil, err
	}
	s.LogInfo(ctx, "Period reopened", slog.String("period_id", periodID), slog.String("name", result.Name))
	return result, nil
}
