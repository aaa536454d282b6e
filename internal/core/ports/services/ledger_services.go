package services

import (
	"context"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerWriterSvc posts journal entries.
type LedgerWriterSvc interface {
	// PostEntry validates and persists a balanced entry atomically. An entry
	// whose SourceEventID was already posted is returned unchanged.
	PostEntry(ctx context.Context, req dto.PostEntryRequest, userID string) (*domain.JournalEntry, error)
}

// LedgerReaderSvc reads entries and balances.
type LedgerReaderSvc interface {
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)
	ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// AccountBalance returns the natural-sign balance, optionally as of a date inclusive.
	AccountBalance(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, error)
	AccountBalanceByCode(ctx context.Context, code string, asOf *time.Time) (decimal.Decimal, error)
	TrialBalance(ctx context.Context, asOf *time.Time) (*dto.TrialBalanceResponse, error)
}

// LedgerSvcFacade combines ledger reads and writes.
type LedgerSvcFacade interface {
	LedgerWriterSvc
	LedgerReaderSvc
}
