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
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/statement"
	"github.com/google/uuid"
)

// DefaultCashAccountCodes are the chart accounts a bank account may book into.
var DefaultCashAccountCodes = []string{"1.1.01.001", "1.1.01.002"}

type statementService struct {
	BaseService
	bankRepo      portsrepo.BankAccountRepository
	statementRepo portsrepo.StatementRepository
	txManager     portsrepo.TransactionManager
	accountSvc    portssvc.AccountReaderSvc
	cashCodes     map[string]bool
}

// StatementServiceOption is a functional option for configuring the statement service
type StatementServiceOption func(*statementService)

// WithCashAccountCodes replaces the set of ledger codes accepted for bank accounts.
func WithCashAccountCodes(codes []string) StatementServiceOption {
	return func(s *statementService) {
		if len(codes) == 0 {
			return
		}
		s.cashCodes = make(map[string]bool, len(codes))
		for _, c := range codes {
			if c = strings.TrimSpace(c); c != "" {
				s.cashCodes[c] = true
			}
		}
	}
}

// NewStatementService creates a new statement service.
func NewStatementService(
	bankRepo portsrepo.BankAccountRepository,
	statementRepo portsrepo.StatementRepository,
	txManager portsrepo.TransactionManager,
	accountSvc portssvc.AccountReaderSvc,
	options ...StatementServiceOption,
) portssvc.StatementSvcFacade {
	svc := &statementService{
		bankRepo:      bankRepo,
		statementRepo: statementRepo,
		txManager:     txManager,
		accountSvc:    accountSvc,
	}
	WithCashAccountCodes(DefaultCashAccountCodes)(svc)
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.StatementSvcFacade = (*statementService)(nil)

func (s *statementService) CreateBankAccount(ctx context.Context, req dto.CreateBankAccountRequest, userID string) (*domain.BankAccount, error) {
	code := strings.TrimSpace(req.LedgerAccountCode)
	if !s.cashCodes[code] {
		return nil, fmt.Errorf("%w: %s", ErrNotCashAccount, code)
	}
	// the ledger account must exist and take postings
	if _, err := s.accountSvc.GetAccountByCode(ctx, code); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := domain.BankAccount{
		BankAccountID:     uuid.NewString(),
		Name:              strings.TrimSpace(req.Name),
		BankName:          req.BankName,
		AccountNumber:     req.AccountNumber,
		LedgerAccountCode: code,
		IsActive:          true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.bankRepo.SaveBankAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save bank account", slog.String("name", account.Name))
		return nil, err
	}
	s.LogInfo(ctx, "Bank account created",
		slog.String("bank_account_id", account.BankAccountID),
		slog.String("ledger_account_code", code))
	return &account, nil
}

func (s *statementService) GetBankAccount(ctx context.Context, bankAccountID string) (*domain.BankAccount, error) {
	account, err := s.bankRepo.FindBankAccountByID(ctx, bankAccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBankAccountNotFound, bankAccountID)
		}
		return nil, err
	}
	return account, nil
}

func (s *statementService) ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	return s.bankRepo.ListBankAccounts(ctx)
}

func (s *statementService) ImportStatement(ctx context.Context, bankAccountID string, raw string, userID string) (*dto.ImportResult, error) {
	if _, err := s.GetBankAccount(ctx, bankAccountID); err != nil {
		return nil, err
	}
	parsed, err := statement.Parse(raw)
	if err != nil {
		s.LogDebug(ctx, "Statement rejected", slog.String("bank_account_id", bankAccountID), slog.String("reason", err.Error()))
		return nil, err
	}

	result := &dto.ImportResult{
		BatchID:  uuid.NewString(),
		Imported: len(parsed.Lines),
		Skipped:  parsed.Skipped,
	}
	if len(parsed.Lines) == 0 {
		return result, nil
	}

	now := time.Now().UTC()
	var from, to time.Time
	for i := range parsed.Lines {
		l := &parsed.Lines[i]
		l.LineID = uuid.NewString()
		l.BankAccountID = bankAccountID
		l.ImportBatchID = result.BatchID
		l.CreatedAt = now
		if from.IsZero() || l.Date.Before(from) {
			from = l.Date
		}
		if l.Date.After(to) {
			to = l.Date
		}
	}
	result.From, result.To = &from, &to

	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		return s.statementRepo.SaveStatementLines(ctx, parsed.Lines)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to import statement", slog.String("bank_account_id", bankAccountID))
		return nil, err
	}

	s.LogInfo(ctx, "Statement imported",
		slog.String("bank_account_id", bankAccountID),
		slog.String("batch_id", result.BatchID),
		slog.String("user_id", userID),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

func (s *statementService) ListStatementLines(ctx context.Context, bankAccountID string, params dto.StatementLinesParams) ([]domain.BankStatementLine, error) {
	if _, err := s.GetBankAccount(ctx, bankAccountID); err != nil {
		return nil, err
	}
	filter := portsrepo.StatementLineFilter{BankAccountID: bankAccountID, UnreconciledOnly: params.UnreconciledOnly}
	from, err := dto.ParseOptionalDate(params.From)
	if err != nil {
		return nil, err
	}
	to, err := dto.ParseOptionalDate(params.To)
	if err != nil {
		return nil, err
	}
	if from != nil {
		filter.From = *from
	}
	if to != nil {
		filter.To = *to
	}
	return s.statementRepo.ListStatementLines(ctx, filter)
}
