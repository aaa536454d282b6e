package services

import (
	"fmt"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/apperrors"
	"github.com/shopspring/decimal"
)

var (
	ErrAccountNotFound    = apperrors.Define(apperrors.ErrNotFound, "account not found")
	ErrAccountNotPostable = apperrors.Define(apperrors.ErrConflict, "account does not accept postings")
	ErrAccountInactive    = apperrors.Define(apperrors.ErrValidation, "account is inactive")

	ErrPeriodNotFound        = apperrors.Define(apperrors.ErrNotFound, "accounting period not found")
	ErrPeriodClosed          = apperrors.Define(apperrors.ErrConflict, "accounting period is closed")
	ErrPeriodNotClosed       = apperrors.Define(apperrors.ErrConflict, "accounting period is not closed")
	ErrPeriodNotLatestClosed = apperrors.Define(apperrors.ErrConflict, "only the most recently closed period can be reopened")

	ErrJournalMinLines   = apperrors.Define(apperrors.ErrValidation, "journal entry requires at least two lines")
	ErrJournalUnbalanced = apperrors.Define(apperrors.ErrValidation, "journal entry is unbalanced")
	ErrInvalidLine       = apperrors.Define(apperrors.ErrValidation, "journal line is invalid")
	ErrEntryNotFound     = apperrors.Define(apperrors.ErrNotFound, "journal entry not found")

	ErrBankAccountNotFound     = apperrors.Define(apperrors.ErrNotFound, "bank account not found")
	ErrNotCashAccount          = apperrors.Define(apperrors.ErrValidation, "ledger account is not a cash account")
	ErrStatementLineNotFound   = apperrors.Define(apperrors.ErrNotFound, "statement line not found")
	ErrStatementLineReconciled = apperrors.Define(apperrors.ErrConflict, "statement line is already reconciled")
	ErrMovementNotFound        = apperrors.Define(apperrors.ErrNotFound, "internal movement not found")

	ErrRunNotFound          = apperrors.Define(apperrors.ErrNotFound, "reconciliation run not found")
	ErrRunClosed            = apperrors.Define(apperrors.ErrConflict, "reconciliation run is closed")
	ErrRunHasPendingMatches = apperrors.Define(apperrors.ErrConflict, "reconciliation run has proposed matches")
	ErrMatchNotFound        = apperrors.Define(apperrors.ErrNotFound, "reconciliation match not found")
	ErrMatchNotProposed     = apperrors.Define(apperrors.ErrConflict, "reconciliation match is not proposed")
	ErrMovementReconciled   = apperrors.Define(apperrors.ErrConflict, "internal movement is already reconciled")
	ErrInvalidRange         = apperrors.Define(apperrors.ErrValidation, "period start is after period end")
)

// UnbalancedError carries the totals of an entry that failed the balance check.
type UnbalancedError struct {
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

func (e *UnbalancedError) Error() string {
	return fmt.Sprintf("%s: debits %s, credits %s", ErrJournalUnbalanced.Error(), e.TotalDebit.StringFixed(2), e.TotalCredit.StringFixed(2))
}

func (e *UnbalancedError) Unwrap() error { return ErrJournalUnbalanced }
