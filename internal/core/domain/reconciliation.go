package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RunStatus is the lifecycle state of a reconciliation run.
type RunStatus string

const (
	RunInProgress RunStatus = "IN_PROGRESS"
	RunApproved   RunStatus = "APPROVED"
)

// MatchType is the tier that produced a match.
type MatchType string

const (
	MatchExact       MatchType = "EXACT"
	MatchApproximate MatchType = "APPROXIMATE"
	MatchReference   MatchType = "REFERENCE"
	MatchManual      MatchType = "MANUAL"
)

// MatchStatus is the operator decision on a match.
type MatchStatus string

const (
	MatchProposed MatchStatus = "PROPOSED"
	MatchApproved MatchStatus = "APPROVED"
	MatchRejected MatchStatus = "REJECTED"
)

// RunNumberPrefix returns the per-year prefix used to number runs.
func RunNumberPrefix(year int) string {
	return fmt.Sprintf("CONC-%04d-", year)
}

// FormatRunNumber formats CONC-YYYY-NNNNN.
func FormatRunNumber(year int, seq int) string {
	return fmt.Sprintf("%s%05d", RunNumberPrefix(year), seq)
}

// ReconciliationRun groups the matches of one bank account over a date range.
type ReconciliationRun struct {
	RunID               string                `json:"runID"`
	Number              string                `json:"number"`
	BankAccountID       string                `json:"bankAccountID"`
	PeriodFrom          time.Time             `json:"periodFrom"`
	PeriodTo            time.Time             `json:"periodTo"`
	Status              RunStatus             `json:"status"`
	TotalStatementLines int                   `json:"totalStatementLines"`
	TotalMatched        int                   `json:"totalMatched"`
	TotalUnmatched      int                   `json:"totalUnmatched"`
	ClosedAt            *time.Time            `json:"closedAt,omitempty"`
	ClosedBy            string                `json:"closedBy,omitempty"`
	Matches             []ReconciliationMatch `json:"matches,omitempty"`
	AuditFields
}

// ReconciliationMatch pairs a statement line with an internal movement.
type ReconciliationMatch struct {
	MatchID         string          `json:"matchID"`
	RunID           string          `json:"runID"`
	StatementLineID string          `json:"statementLineID"`
	InternalKind    MovementKind    `json:"internalKind"`
	InternalID      string          `json:"internalID"`
	InternalLabel   string          `json:"internalLabel"`
	MatchType       MatchType       `json:"matchType"`
	Status          MatchStatus     `json:"status"`
	Confidence      int             `json:"confidence"`
	BankAmount      decimal.Decimal `json:"bankAmount"`
	SystemAmount    decimal.Decimal `json:"systemAmount"`
	Difference      decimal.Decimal `json:"difference"`
	ApprovedBy      string          `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// MatchResult is a proposal produced by the matching engine.
type MatchResult struct {
	StatementLineID string          `json:"statementLineID"`
	InternalKind    MovementKind    `json:"internalKind"`
	InternalID      string          `json:"internalID"`
	InternalLabel   string          `json:"internalLabel"`
	MatchType       MatchType       `json:"matchType"`
	Confidence      int             `json:"confidence"`
	BankAmount      decimal.Decimal `json:"bankAmount"`
	SystemAmount    decimal.Decimal `json:"systemAmount"`
	Difference      decimal.Decimal `json:"difference"`
}

// RunSummary compares the bank side of a run with the ledger.
type RunSummary struct {
	Run                 ReconciliationRun `json:"run"`
	Proposed            int               `json:"proposed"`
	Approved            int               `json:"approved"`
	Rejected            int               `json:"rejected"`
	BankClosingBalance  *decimal.Decimal  `json:"bankClosingBalance,omitempty"`
	LedgerBalance       decimal.Decimal   `json:"ledgerBalance"`
	LedgerAccountCode   string            `json:"ledgerAccountCode"`
	UnmatchedBankAmount decimal.Decimal   `json:"unmatchedBankAmount"`
}
