package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/apperrors"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	portsrepo "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/repositories"
	portssvc "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/dto"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/utils/accounting"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultEntriesPageSize = 20
	maxEntriesPageSize     = 100
)

// ledgerService posts journal entries and answers balance queries.
type ledgerService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	txManager   portsrepo.TransactionManager
	accountSvc  portssvc.AccountReaderSvc
	periodSvc   portssvc.PeriodSvcFacade
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(
	journalRepo portsrepo.JournalRepositoryFacade,
	txManager portsrepo.TransactionManager,
	accountSvc portssvc.AccountReaderSvc,
	periodSvc portssvc.PeriodSvcFacade,
) portssvc.LedgerSvcFacade {
	return &ledgerService{
		journalRepo: journalRepo,
		txManager:   txManager,
		accountSvc:  accountSvc,
		periodSvc:   periodSvc,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// validateLines checks the shape and balance of an entry before any account is resolved.
func validateLines(lines []dto.PostEntryLineRequest) (decimal.Decimal, decimal.Decimal, error) {
	if len(lines) < 2 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: got %d", ErrJournalMinLines, len(lines))
	}
	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for i, l := range lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: line %d has a negative amount", ErrInvalidLine, i+1)
		}
		if l.Debit.IsZero() && l.Credit.IsZero() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: line %d has neither debit nor credit", ErrInvalidLine, i+1)
		}
		if strings.TrimSpace(l.AccountCode) == "" && strings.TrimSpace(l.AccountID) == "" {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: line %d has no account", ErrInvalidLine, i+1)
		}
		totalDebit = totalDebit.Add(l.Debit)
		totalCredit = totalCredit.Add(l.Credit)
	}
	if !accounting.IsBalanced(totalDebit, totalCredit) {
		return decimal.Zero, decimal.Zero, &UnbalancedError{TotalDebit: totalDebit, TotalCredit: totalCredit}
	}
	return totalDebit, totalCredit, nil
}

// resolveAccount finds a line's account and checks that it can take postings.
func (s *ledgerService) resolveAccount(ctx context.Context, l dto.PostEntryLineRequest) (*domain.Account, error) {
	var account *domain.Account
	var err error
	if code := strings.TrimSpace(l.AccountCode); code != "" {
		account, err = s.accountSvc.GetAccountByCode(ctx, code)
	} else {
		account, err = s.accountSvc.GetAccountByID(ctx, l.AccountID)
		if err == nil && !account.AcceptsPostings {
			err = fmt.Errorf("%w: %s", ErrAccountNotPostable, account.Code)
		}
	}
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrAccountInactive, account.Code)
	}
	return account, nil
}

func (s *ledgerService) PostEntry(ctx context.Context, req dto.PostEntryRequest, userID string) (*domain.JournalEntry, error) {
	entryDate, err := dto.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown entry kind %q", apperrors.ErrValidation, req.Kind)
	}
	totalDebit, totalCredit, err := validateLines(req.Lines)
	if err != nil {
		s.LogDebug(ctx, "Rejected journal entry", slog.String("reason", err.Error()))
		return nil, err
	}

	if req.SourceEventID != "" {
		existing, err := s.journalRepo.FindEntryBySourceEventID(ctx, req.SourceEventID)
		if err == nil {
			s.LogInfo(ctx, "Source event already posted, returning existing entry",
				slog.String("source_event_id", req.SourceEventID),
				slog.String("entry_id", existing.EntryID))
			return existing, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}

	now := time.Now().UTC()
	entry := domain.JournalEntry{
		EntryID:       uuid.NewString(),
		EntryDate:     entryDate,
		Kind:          req.Kind,
		Description:   req.Description,
		TotalDebit:    totalDebit,
		TotalCredit:   totalCredit,
		OriginType:    req.OriginType,
		OriginID:      req.OriginID,
		SourceEventID: req.SourceEventID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		entry.Lines = make([]domain.JournalLine, 0, len(req.Lines))
		for i, l := range req.Lines {
			account, err := s.resolveAccount(ctx, l)
			if err != nil {
				return err
			}
			entry.Lines = append(entry.Lines, domain.JournalLine{
				LineID:      uuid.NewString(),
				EntryID:     entry.EntryID,
				LineNo:      i + 1,
				AccountID:   account.AccountID,
				AccountCode: account.Code,
				Debit:       l.Debit,
				Credit:      l.Credit,
				Description: l.Description,
			})
		}

		// Inside the transaction the period row stays share-locked until commit.
		period, err := s.periodSvc.GetOrCreatePeriod(ctx, entryDate)
		if err != nil {
			return err
		}
		entry.PeriodID = period.PeriodID
		return s.journalRepo.SaveEntry(ctx, &entry)
	})
	if err != nil {
		if req.SourceEventID != "" && errors.Is(err, apperrors.ErrDuplicate) {
			// a concurrent poster won the race for the same event
			if existing, findErr := s.journalRepo.FindEntryBySourceEventID(ctx, req.SourceEventID); findErr == nil {
				return existing, nil
			}
		}
		s.LogError(ctx, err, "Failed to post journal entry", slog.String("description", req.Description))
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("entry_id", entry.EntryID),
		slog.Int64("entry_number", entry.EntryNumber),
		slog.String("period_id", entry.PeriodID),
		slog.String("total", totalDebit.StringFixed(2)))
	return &entry, nil
}

func (s *ledgerService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
		}
		return nil, err
	}
	return entry, nil
}

func (s *ledgerService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	from, err := dto.ParseOptionalDate(params.From)
	if err != nil {
		return nil, err
	}
	to, err := dto.ParseOptionalDate(params.To)
	if err != nil {
		return nil, err
	}
	entries, next, err := s.journalRepo.ListEntries(ctx, portsrepo.ListEntriesParams{
		From:      from,
		To:        to,
		Kind:      domain.EntryKind(params.Kind),
		Limit:     pagination.ClampLimit(params.Limit, defaultEntriesPageSize, maxEntriesPageSize),
		NextToken: params.NextToken,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries")
		return nil, err
	}
	resp := &dto.ListEntriesResponse{Entries: make([]dto.JournalEntryResponse, 0, len(entries)), NextToken: next}
	for i := range entries {
		resp.Entries = append(resp.Entries, dto.ToJournalEntryResponse(&entries[i]))
	}
	return resp, nil
}

func (s *ledgerService) balanceOf(ctx context.Context, account *domain.Account, asOf *time.Time) (decimal.Decimal, error) {
	debit, credit, err := s.journalRepo.SumAccountLines(ctx, account.AccountID, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum account lines", slog.String("account_id", account.AccountID))
		return decimal.Zero, err
	}
	return accounting.NaturalBalance(account.AccountType, debit, credit)
}

func (s *ledgerService) AccountBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error) {
	account, err := s.accountSvc.GetAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return s.balanceOf(ctx, account, asOf)
}

// AccountBalanceByCode also answers for accounts that do not accept postings;
// their balance only reflects lines posted to them directly.
func (s *ledgerService) AccountBalanceByCode(ctx context.Context, code string, asOf *time.Time) (decimal.Decimal, error) {
	account, err := s.accountSvc.FindAccountByCode(ctx, code)
	if err != nil {
		return decimal.Zero, err
	}
	return s.balanceOf(ctx, account, asOf)
}

func (s *ledgerService) TrialBalance(ctx context.Context, asOf *time.Time) (*dto.TrialBalanceResponse, error) {
	rows, err := s.journalRepo.TrialBalance(ctx, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute trial balance")
		return nil, err
	}
	resp := &dto.TrialBalanceResponse{AsOf: asOf, Rows: rows, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for i := range resp.Rows {
		balance, err := accounting.NaturalBalance(rows[i].AccountType, rows[i].TotalDebit, rows[i].TotalCredit)
		if err != nil {
			return nil, err
		}
		resp.Rows[i].Balance = balance
		resp.TotalDebit = resp.TotalDebit.Add(rows[i].TotalDebit)
		resp.TotalCredit = resp.TotalCredit.Add(rows[i].TotalCredit)
	}
	return resp, nil
}
