package services

import (
	"context"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByCode resolves a posting account by code. Accounts that do
	// not accept postings are rejected.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountByCode retrieves any account by code, summary accounts included.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// ListAccounts retrieves accounts ordered by code.
	ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error)

	// AccountTree groups all accounts under their parents.
	AccountTree(ctx context.Context) ([]*domain.AccountNode, error)

	// GetAccountHistory lists the recorded changes of an account.
	GetAccountHistory(ctx context.Context, accountID string) ([]domain.AuditLogEntry, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccount applies the provided fields and records a field-level diff.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error

	// SeedDefaultChart inserts the missing accounts of the default chart and
	// returns how many were created.
	SeedDefaultChart(ctx context.Context, userID string) (int, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
