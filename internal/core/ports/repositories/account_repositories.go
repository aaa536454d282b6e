package repositories

import (
	"context"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
)

// AccountFilter narrows account listings.
type AccountFilter struct {
	AccountType domain.AccountType
	ActiveOnly  bool
	PostingOnly bool
}

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its hierarchical code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs. Missing ids are absent from the map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves accounts ordered by code.
	ListAccounts(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account. A duplicate code yields apperrors.ErrDuplicate.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's mutable details.
	UpdateAccount(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}

// AuditLogRepository stores field-level change records.
type AuditLogRepository interface {
	SaveAuditEntry(ctx context.Context, entry domain.AuditLogEntry) error
	ListAuditEntries(ctx context.Context, entityType, entityID string) ([]domain.AuditLogEntry, error)
}
