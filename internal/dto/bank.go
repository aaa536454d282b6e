package dto

import (
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
)

// CreateBankAccountRequest defines the data needed to register a bank account.
type CreateBankAccountRequest struct {
	Name              string `json:"name" binding:"required"`
	BankName          string `json:"bankName"`
	AccountNumber     string `json:"accountNumber"`
	LedgerAccountCode string `json:"ledgerAccountCode" binding:"required"`
}

// ImportResult summarizes one statement import.
type ImportResult struct {
	BatchID  string     `json:"batchID"`
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
}

// StatementLinesParams filters statement lines of one bank account.
type StatementLinesParams struct {
	From             string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To               string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	UnreconciledOnly bool   `form:"unreconciledOnly"`
}

// StatementLinesResponse wraps statement lines.
type StatementLinesResponse struct {
	Lines []domain.BankStatementLine `json:"lines"`
}
