package services

import (
	"context"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/dto"
)

// StatementSvcFacade manages bank accounts and imported statements.
type StatementSvcFacade interface {
	CreateBankAccount(ctx context.Context, req dto.CreateBankAccountRequest, userID string) (*domain.BankAccount, error)
	GetBankAccount(ctx context.Context, bankAccountID string) (*domain.BankAccount, error)
	ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error)

	// ImportStatement parses raw delimited text and stores every line in one transaction.
	ImportStatement(ctx context.Context, bankAccountID string, raw string, userID string) (*dto.ImportResult, error)
	ListStatementLines(ctx context.Context, bankAccountID string, params dto.StatementLinesParams) ([]domain.BankStatementLine, error)
}
