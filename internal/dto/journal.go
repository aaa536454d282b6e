package dto

import (
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostEntryLineRequest is one line of an entry to post. Either AccountCode or
// AccountID identifies the account; the code wins when both are set.
type PostEntryLineRequest struct {
	AccountCode string          `json:"accountCode" binding:"required_without=AccountID"`
	AccountID   string          `json:"accountID" binding:"required_without=AccountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description"`
}

// PostEntryRequest defines the data needed to post a journal entry.
type PostEntryRequest struct {
	Date          string                 `json:"date" binding:"required,datetime=2006-01-02"`
	Kind          domain.EntryKind       `json:"kind" binding:"required,oneof=MANUAL SALE PURCHASE DEPRECIATION EXPENSE ADJUSTMENT CLOSING"`
	Description   string                 `json:"description" binding:"required"`
	Lines         []PostEntryLineRequest `json:"lines" binding:"required,dive"`
	OriginType    string                 `json:"originType"`
	OriginID      string                 `json:"originID"`
	SourceEventID string                 `json:"sourceEventID"` // replaying the same id returns the first entry
}

// JournalLineResponse is one line of a returned entry.
type JournalLineResponse struct {
	LineNo      int             `json:"lineNo"`
	AccountID   string          `json:"accountID"`
	AccountCode string          `json:"accountCode"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// JournalEntryResponse defines the data returned for an entry.
type JournalEntryResponse struct {
	EntryID       string                `json:"entryID"`
	EntryNumber   int64                 `json:"entryNumber"`
	Date          string                `json:"date"`
	Kind          domain.EntryKind      `json:"kind"`
	Description   string                `json:"description"`
	TotalDebit    decimal.Decimal       `json:"totalDebit"`
	TotalCredit   decimal.Decimal       `json:"totalCredit"`
	PeriodID      string                `json:"periodID"`
	OriginType    string                `json:"originType,omitempty"`
	OriginID      string                `json:"originID,omitempty"`
	SourceEventID string                `json:"sourceEventID,omitempty"`
	Lines         []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
	CreatedBy     string                `json:"createdBy"`
}

// ToJournalEntryResponse converts a domain entry; lines are included when loaded.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		EntryID:       e.EntryID,
		EntryNumber:   e.EntryNumber,
		Date:          e.EntryDate.Format(DateLayout),
		Kind:          e.Kind,
		Description:   e.Description,
		TotalDebit:    e.TotalDebit,
		TotalCredit:   e.TotalCredit,
		PeriodID:      e.PeriodID,
		OriginType:    e.OriginType,
		OriginID:      e.OriginID,
		SourceEventID: e.SourceEventID,
		CreatedAt:     e.CreatedAt,
		CreatedBy:     e.CreatedBy,
	}
	for _, l := range e.Lines {
		resp.Lines = append(resp.Lines, JournalLineResponse{
			LineNo:      l.LineNo,
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
		})
	}
	return resp
}

// ListEntriesParams defines query parameters for listing entries.
type ListEntriesParams struct {
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Kind      string `form:"kind" binding:"omitempty,oneof=MANUAL SALE PURCHASE DEPRECIATION EXPENSE ADJUSTMENT CLOSING"`
	Limit     int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// ListEntriesResponse wraps a page of entries.
type ListEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken string                 `json:"nextToken,omitempty"`
}

// TrialBalanceParams defines the query of a trial balance request.
type TrialBalanceParams struct {
	AsOf string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// TrialBalanceResponse lists per-account totals and the overall sums.
type TrialBalanceResponse struct {
	AsOf        *time.Time               `json:"asOf,omitempty"`
	Rows        []domain.TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal          `json:"totalDebit"`
	TotalCredit decimal.Decimal          `json:"totalCredit"`
}

// ListPeriodsParams filters the period list.
type ListPeriodsParams struct {
	Year int `form:"year" binding:"omitempty,min=1900,max=9999"`
}
