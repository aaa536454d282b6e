package repositories

import (
	"context"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PeriodRepository persists accounting periods.
type PeriodRepository interface {
	FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error)

	// FindPeriodForUpdate loads a period and locks it for the rest of the transaction.
	FindPeriodForUpdate(ctx context.Context, periodID string) (*domain.AccountingPeriod, error)

	// GetOrCreatePeriod returns the (year, month) period, inserting it with
	// the given name when absent. Inside a transaction the row is share-locked
	// so a concurrent close waits for the caller to finish.
	GetOrCreatePeriod(ctx context.Context, year, month int, name string) (*domain.AccountingPeriod, error)

	// ListPeriods returns periods newest first; year 0 lists all.
	ListPeriods(ctx context.Context, year int) ([]domain.AccountingPeriod, error)

	// FindLatestClosedPeriod returns the closed period with the greatest (year, month).
	FindLatestClosedPeriod(ctx context.Context) (*domain.AccountingPeriod, error)

	// UpdatePeriodStatus persists Closed, ClosedAt and ClosedBy.
	UpdatePeriodStatus(ctx context.Context, period domain.AccountingPeriod) error
}

// ListEntriesParams filters and pages journal entries.
type ListEntriesParams struct {
	From      *time.Time
	To        *time.Time
	Kind      domain.EntryKind
	Limit     int
	NextToken string
}

// JournalReader defines read operations for journal entries
type JournalReader interface {
	// FindEntryByID retrieves an entry with its lines.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntryBySourceEventID retrieves the entry posted for a business event.
	FindEntryBySourceEventID(ctx context.Context, sourceEventID string) (*domain.JournalEntry, error)

	// ListEntries returns headers ordered by (date, created_at) descending and the token of the next page.
	ListEntries(ctx context.Context, params ListEntriesParams) ([]domain.JournalEntry, string, error)

	// SumAccountLines totals the debits and credits of an account, optionally up to asOf inclusive.
	SumAccountLines(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, decimal.Decimal, error)

	// TrialBalance totals debits and credits per account that has lines.
	TrialBalance(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error)
}

// JournalWriter defines write operations for journal entries
type JournalWriter interface {
	// SaveEntry inserts the header and all lines, assigning EntryNumber.
	SaveEntry(ctx context.Context, entry *domain.JournalEntry) error
}

// JournalRepositoryFacade combines journal reads and writes.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
}
