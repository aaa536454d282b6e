package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/apperrors"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/matching"
	portsrepo "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/repositories"
	portssvc "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// reconciliationService drives reconciliation runs for one bank account at a time.
type reconciliationService struct {
	BaseService
	reconRepo     portsrepo.ReconciliationRepository
	statementRepo portsrepo.StatementRepository
	movements     portsrepo.MovementSource
	txManager     portsrepo.TransactionManager
	statementSvc  portssvc.StatementSvcFacade
	ledgerSvc     portssvc.LedgerSvcFacade
	engine        *matching.Engine
	now           func() time.Time
}

// ReconciliationServiceOption is a functional option for configuring the reconciliation service
type ReconciliationServiceOption func(*reconciliationService)

// WithMatchingEngine replaces the default matching engine.
func WithMatchingEngine(engine *matching.Engine) ReconciliationServiceOption {
	return func(s *reconciliationService) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithClock sets the time source used for run numbers and stamps.
func WithClock(now func() time.Time) ReconciliationServiceOption {
	return func(s *reconciliationService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewReconciliationService creates a new reconciliation service.
func NewReconciliationService(
	reconRepo portsrepo.ReconciliationRepository,
	statementRepo portsrepo.StatementRepository,
	movements portsrepo.MovementSource,
	txManager portsrepo.TransactionManager,
	statementSvc portssvc.StatementSvcFacade,
	ledgerSvc portssvc.LedgerSvcFacade,
	options ...ReconciliationServiceOption,
) portssvc.ReconciliationSvcFacade {
	svc := &reconciliationService{
		reconRepo:     reconRepo,
		statementRepo: statementRepo,
		movements:     movements,
		txManager:     txManager,
		statementSvc:  statementSvc,
		ledgerSvc:     ledgerSvc,
		engine:        matching.NewEngine(),
		now:           func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

// proposals loads the unreconciled lines of the range and matches them against
// movements not yet consumed by an approved match.
func (s *reconciliationService) proposals(ctx context.Context, bankAccountID string, from, to time.Time) ([]domain.BankStatementLine, []domain.MatchResult, error) {
	if to.Before(from) {
		return nil, nil, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, from.Format(dto.DateLayout), to.Format(dto.DateLayout))
	}
	lines, err := s.statementRepo.ListStatementLines(ctx, portsrepo.StatementLineFilter{
		BankAccountID:    bankAccountID,
		From:             from,
		To:               to,
		UnreconciledOnly: true,
	})
	if err != nil {
		return nil, nil, err
	}
	movements, err := s.movements.ListMovements(ctx, from, to)
	if err != nil {
		return nil, nil, err
	}
	consumed, err := s.reconRepo.ListApprovedInternalIDs(ctx)
	if err != nil {
		return nil, nil, err
	}
	free := make([]domain.InternalMovement, 0, len(movements))
	for _, mv := range movements {
		if !consumed[portsrepo.MovementKey(string(mv.Kind), mv.ID)] {
			free = append(free, mv)
		}
	}
	return lines, s.engine.Match(lines, free), nil
}

func (s *reconciliationService) RunMatching(ctx context.Context, bankAccountID string, from, to time.Time) ([]domain.MatchResult, error) {
	if _, err := s.statementSvc.GetBankAccount(ctx, bankAccountID); err != nil {
		return nil, err
	}
	_, results, err := s.proposals(ctx, bankAccountID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to run matching", slog.String("bank_account_id", bankAccountID))
		return nil, err
	}
	s.LogDebug(ctx, "Matching computed", slog.String("bank_account_id", bankAccountID), slog.Int("proposals", len(results)))
	return results, nil
}

func (s *reconciliationService) GetRun(ctx context.Context, runID string) (*domain.ReconciliationRun, error) {
	run, err := s.reconRepo.FindRunByID(ctx, runID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	matches, err := s.reconRepo.ListMatchesByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	run.Matches = matches
	return run, nil
}

func (s *reconciliationService) ListRuns(ctx context.Context, bankAccountID string) ([]domain.ReconciliationRun, error) {
	return s.reconRepo.ListRuns(ctx, bankAccountID)
}

func (s *reconciliationService) RunSummary(ctx context.Context, runID string) (*domain.RunSummary, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	bank, err := s.statementSvc.GetBankAccount(ctx, run.BankAccountID)
	if err != nil {
		return nil, err
	}

	summary := &domain.RunSummary{
		Run:                 *run,
		LedgerAccountCode:   bank.LedgerAccountCode,
		UnmatchedBankAmount: decimal.Zero,
	}
	for _, m := range run.Matches {
		switch m.Status {
		case domain.MatchProposed:
			summary.Proposed++
		case domain.MatchApproved:
			summary.Approved++
		case domain.MatchRejected:
			summary.Rejected++
		}
	}

	lines, err := s.statementRepo.ListStatementLines(ctx, portsrepo.StatementLineFilter{
		BankAccountID: run.BankAccountID,
		From:          run.PeriodFrom,
		To:            run.PeriodTo,
	})
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		if l.RunningBalance != nil {
			balance := *l.RunningBalance
			summary.BankClosingBalance = &balance
		}
		if !l.Reconciled {
			summary.UnmatchedBankAmount = summary.UnmatchedBankAmount.Add(l.Amount)
		}
	}

	periodTo := run.PeriodTo
	summary.LedgerBalance, err = s.ledgerSvc.AccountBalanceByCode(ctx, bank.LedgerAccountCode, &periodTo)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *reconciliationService) StartRun(ctx context.Context, req dto.StartRunRequest, userID string) (*domain.ReconciliationRun, error) {
	from, err := dto.ParseDate(req.PeriodFrom)
	if err != nil {
		return nil, err
	}
	to, err := dto.ParseDate(req.PeriodTo)
	if err != nil {
		return nil, err
	}
	if _, err := s.statementSvc.GetBankAccount(ctx, req.BankAccountID); err != nil {
		return nil, err
	}

	var run domain.ReconciliationRun
	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		lines, results, err := s.proposals(ctx, req.BankAccountID, from, to)
		if err != nil {
			return err
		}

		now := s.now()
		prefix := domain.RunNumberPrefix(now.Year())
		seq, err := s.reconRepo.NextRunSequence(ctx, prefix)
		if err != nil {
			return err
		}
		run = domain.ReconciliationRun{
			RunID:               uuid.NewString(),
			Number:              domain.FormatRunNumber(now.Year(), seq),
			BankAccountID:       req.BankAccountID,
			PeriodFrom:          from,
			PeriodTo:            to,
			Status:              domain.RunInProgress,
			TotalStatementLines: len(lines),
			TotalMatched:        len(results),
			TotalUnmatched:      len(lines) - len(results),
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if err := s.reconRepo.SaveRun(ctx, run); err != nil {
			return err
		}

		run.Matches = make([]domain.ReconciliationMatch, 0, len(results))
		for _, r := range results {
			run.Matches = append(run.Matches, domain.ReconciliationMatch{
				MatchID:         uuid.NewString(),
				RunID:           run.RunID,
				StatementLineID: r.StatementLineID,
				InternalKind:    r.InternalKind,
				InternalID:      r.InternalID,
				InternalLabel:   r.InternalLabel,
				MatchType:       r.MatchType,
				Status:          domain.MatchProposed,
				Confidence:      r.Confidence,
				BankAmount:      r.BankAmount,
				SystemAmount:    r.SystemAmount,
				Difference:      r.Difference,
				CreatedAt:       now,
			})
		}
		if len(run.Matches) == 0 {
			return nil
		}
		return s.reconRepo.SaveMatches(ctx, run.Matches)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to start reconciliation run", slog.String("bank_account_id", req.BankAccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Reconciliation run started",
		slog.String("run_id", run.RunID),
		slog.String("number", run.Number),
		slog.Int("lines", run.TotalStatementLines),
		slog.Int("proposed", run.TotalMatched))
	return &run, nil
}

// lockOpenRun loads and locks a run that still accepts changes.
func (s *reconciliationService) lockOpenRun(ctx context.Context, runID string) (*domain.ReconciliationRun, error) {
	run, err := s.reconRepo.FindRunForUpdate(ctx, runID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	if run.Status == domain.RunApproved {
		return nil, fmt.Errorf("%w: %s", ErrRunClosed, run.Number)
	}
	return run, nil
}

// proposedMatch loads a match of the run that still awaits a decision.
func (s *reconciliationService) proposedMatch(ctx context.Context, run *domain.ReconciliationRun, matchID string) (*domain.ReconciliationMatch, error) {
	match, err := s.reconRepo.FindMatchByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}
		return nil, err
	}
	if match.RunID != run.RunID {
		return nil, fmt.Errorf("%w: %s in run %s", ErrMatchNotFound, matchID, run.Number)
	}
	if match.Status != domain.MatchProposed {
		return nil, fmt.Errorf("%w: %s is %s", ErrMatchNotProposed, matchID, match.Status)
	}
	return match, nil
}

// ensureMovementFree fails when an approved match of any run already consumes the movement.
func (s *reconciliationService) ensureMovementFree(ctx context.Context, kind domain.MovementKind, id string) error {
	consumed, err := s.reconRepo.ListApprovedInternalIDs(ctx)
	if err != nil {
		return err
	}
	if consumed[portsrepo.MovementKey(string(kind), id)] {
		return fmt.Errorf("%w: %s %s", ErrMovementReconciled, kind, id)
	}
	return nil
}

func (s *reconciliationService) touchRun(ctx context.Context, run *domain.ReconciliationRun, userID string) error {
	run.LastUpdatedAt = s.now()
	run.LastUpdatedBy = userID
	return s.reconRepo.UpdateRun(ctx, *run)
}

func (s *reconciliationService) ApproveMatch(ctx context.Context, runID, matchID string, userID string) (*domain.ReconciliationMatch, error) {
	var result *domain.ReconciliationMatch
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		run, err := s.lockOpenRun(ctx, runID)
		if err != nil {
			return err
		}
		match, err := s.proposedMatch(ctx, run, matchID)
		if err != nil {
			return err
		}
		if err := s.ensureMovementFree(ctx, match.InternalKind, match.InternalID); err != nil {
			return err
		}
		flipped, err := s.statementRepo.MarkLineReconciled(ctx, match.StatementLineID, match.MatchID)
		if err != nil {
			return err
		}
		if !flipped {
			return fmt.Errorf("%w: %s", ErrStatementLineReconciled, match.StatementLineID)
		}
		now := s.now()
		match.Status = domain.MatchApproved
		match.ApprovedBy = userID
		match.ApprovedAt = &now
		if err := s.reconRepo.UpdateMatch(ctx, *match); err != nil {
			return err
		}
		result = match
		return s.touchRun(ctx, run, userID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to approve match", slog.String("run_id", runID), slog.String("match_id", matchID))
		return nil, err
	}
	s.LogInfo(ctx, "Match approved", slog.String("run_id", runID), slog.String("match_id", matchID))
	return result, nil
}

func (s *reconciliationService) RejectMatch(ctx context.Context, runID, matchID string, userID string) (*domain.ReconciliationMatch, error) {
	var result *domain.ReconciliationMatch
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		run, err := s.lockOpenRun(ctx, runID)
		if err != nil {
			return err
		}
		match, err := s.proposedMatch(ctx, run, matchID)
		if err != nil {
			return err
		}
		match.Status = domain.MatchRejected
		if err := s.reconRepo.UpdateMatch(ctx, *match); err != nil {
			return err
		}
		run.TotalMatched--
		run.TotalUnmatched++
		result = match
		return s.touchRun(ctx, run, userID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to reject match", slog.String("run_id", runID), slog.String("match_id", matchID))
		return nil, err
	}
	s.LogInfo(ctx, "Match rejected", slog.String("run_id", runID), slog.String("match_id", matchID))
	return result, nil
}

func (s *reconciliationService) CreateManualMatch(ctx context.Context, runID string, req dto.ManualMatchRequest, userID string) (*domain.ReconciliationMatch, error) {
	var result *domain.ReconciliationMatch
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		run, err := s.lockOpenRun(ctx, runID)
		if err != nil {
			return err
		}
		line, err := s.statementRepo.FindStatementLineByID(ctx, req.StatementLineID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrStatementLineNotFound, req.StatementLineID)
			}
			return err
		}
		if line.BankAccountID != run.BankAccountID {
			return fmt.Errorf("%w: line %s belongs to another bank account", apperrors.ErrValidation, line.LineID)
		}
		if line.Date.Before(run.PeriodFrom) || line.Date.After(run.PeriodTo) {
			return fmt.Errorf("%w: line %s is outside the run range", apperrors.ErrValidation, line.LineID)
		}
		if line.Reconciled {
			return fmt.Errorf("%w: %s", ErrStatementLineReconciled, line.LineID)
		}

		mv, err := s.movements.GetMovement(ctx, req.InternalKind, req.InternalID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: %s %s", ErrMovementNotFound, req.InternalKind, req.InternalID)
			}
			return err
		}
		if err := s.ensureMovementFree(ctx, mv.Kind, mv.ID); err != nil {
			return err
		}

		// Proposals in this run holding the same line or the same movement are superseded.
		existing, err := s.reconRepo.ListMatchesByRun(ctx, run.RunID)
		if err != nil {
			return err
		}
		for _, m := range existing {
			if m.Status != domain.MatchProposed {
				continue
			}
			if m.StatementLineID != line.LineID && (m.InternalKind != mv.Kind || m.InternalID != mv.ID) {
				continue
			}
			m.Status = domain.MatchRejected
			if err := s.reconRepo.UpdateMatch(ctx, m); err != nil {
				return err
			}
			run.TotalMatched--
			run.TotalUnmatched++
		}

		now := s.now()
		match := domain.ReconciliationMatch{
			MatchID:         uuid.NewString(),
			RunID:           run.RunID,
			StatementLineID: line.LineID,
			InternalKind:    mv.Kind,
			InternalID:      mv.ID,
			InternalLabel:   mv.Label,
			MatchType:       domain.MatchManual,
			Status:          domain.MatchApproved,
			Confidence:      matching.ExactWithReferenceConfidence,
			BankAmount:      line.Amount,
			SystemAmount:    mv.Amount,
			Difference:      line.Amount.Sub(mv.Amount).Round(2),
			ApprovedBy:      userID,
			ApprovedAt:      &now,
			CreatedAt:       now,
		}
		if err := s.reconRepo.SaveMatches(ctx, []domain.ReconciliationMatch{match}); err != nil {
			return err
		}
		flipped, err := s.statementRepo.MarkLineReconciled(ctx, line.LineID, match.MatchID)
		if err != nil {
			return err
		}
		if !flipped {
			return fmt.Errorf("%w: %s", ErrStatementLineReconciled, line.LineID)
		}
		run.TotalMatched++
		run.TotalUnmatched--
		result = &match
		return s.touchRun(ctx, run, userID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create manual match",
			slog.String("run_id", runID),
			slog.String("statement_line_id", req.StatementLineID))
		return nil, err
	}
	s.LogInfo(ctx, "Manual match created", slog.String("run_id", runID), slog.String("match_id", result.MatchID))
	return result, nil
}

func (s *reconciliationService) CloseRun(ctx context.Context, runID string, userID string) (*domain.ReconciliationRun, error) {
	var result *domain.ReconciliationRun
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		run, err := s.lockOpenRun(ctx, runID)
		if err != nil {
			return err
		}
		matches, err := s.reconRepo.ListMatchesByRun(ctx, runID)
		if err != nil {
			return err
		}
		pending := 0
		for _, m := range matches {
			if m.Status == domain.MatchProposed {
				pending++
			}
		}
		if pending > 0 {
			return fmt.Errorf("%w: %d pending in %s", ErrRunHasPendingMatches, pending, run.Number)
		}
		now := s.now()
		run.Status = domain.RunApproved
		run.ClosedAt = &now
		run.ClosedBy = userID
		if err := s.touchRun(ctx, run, userID); err != nil {
			return err
		}
		run.Matches = matches
		result = run
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to close reconciliation run", slog.String("run_id", runID))
		return nil, err
	}
	s.LogInfo(ctx, "Reconciliation run closed", slog.String("run_id", runID), slog.String("number", result.Number))
	return result, nil
}
