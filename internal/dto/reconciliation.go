package dto

import "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"

// StartRunRequest defines the range of a reconciliation run.
type StartRunRequest struct {
	BankAccountID string `json:"bankAccountID" binding:"required"`
	PeriodFrom    string `json:"periodFrom" binding:"required,datetime=2006-01-02"`
	PeriodTo      string `json:"periodTo" binding:"required,datetime=2006-01-02"`
}

// ManualMatchRequest pairs a statement line with a movement chosen by the operator.
type ManualMatchRequest struct {
	StatementLineID string              `json:"statementLineID" binding:"required"`
	InternalKind    domain.MovementKind `json:"internalKind" binding:"required,oneof=Payment Expense PurchaseInvoice PayrollReceipt"`
	InternalID      string              `json:"internalID" binding:"required"`
}

// ListRunsParams filters reconciliation runs.
type ListRunsParams struct {
	BankAccountID string `form:"bankAccountID"`
}

// MatchPreviewResponse lists proposals computed without persisting a run.
type MatchPreviewResponse struct {
	Matches []domain.MatchResult `json:"matches"`
}
