package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryKind classifies the business origin of a journal entry.
type EntryKind string

const (
	EntryManual       EntryKind = "MANUAL"
	EntrySale         EntryKind = "SALE"
	EntryPurchase     EntryKind = "PURCHASE"
	EntryDepreciation EntryKind = "DEPRECIATION"
	EntryExpense      EntryKind = "EXPENSE"
	EntryAdjustment   EntryKind = "ADJUSTMENT"
	EntryClosing      EntryKind = "CLOSING"
)

// Valid reports whether k is a known entry kind.
func (k EntryKind) Valid() bool {
	switch k {
	case EntryManual, EntrySale, EntryPurchase, EntryDepreciation, EntryExpense, EntryAdjustment, EntryClosing:
		return true
	}
	return false
}

// JournalEntry is an immutable, balanced set of lines posted on a date.
type JournalEntry struct {
	EntryID       string          `json:"entryID"`
	EntryNumber   int64           `json:"entryNumber"`
	EntryDate     time.Time       `json:"entryDate"`
	Kind          EntryKind       `json:"kind"`
	Description   string          `json:"description"`
	TotalDebit    decimal.Decimal `json:"totalDebit"`
	TotalCredit   decimal.Decimal `json:"totalCredit"`
	PeriodID      string          `json:"periodID"`
	OriginType    string          `json:"originType,omitempty"`
	OriginID      string          `json:"originID,omitempty"`
	SourceEventID string          `json:"sourceEventID,omitempty"`
	Lines         []JournalLine   `json:"lines"`
	AuditFields
}

// JournalLine is one debit or credit movement of an entry.
type JournalLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	LineNo      int             `json:"lineNo"`
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// TrialBalanceRow aggregates the lines of one account.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Balance     decimal.Decimal `json:"balance"`
}
