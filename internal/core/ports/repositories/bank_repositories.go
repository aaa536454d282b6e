package repositories

import (
	"context"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
)

// BankAccountRepository persists company bank accounts.
type BankAccountRepository interface {
	SaveBankAccount(ctx context.Context, account domain.BankAccount) error
	FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error)
	ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error)
}

// StatementLineFilter narrows statement line queries. Zero dates are unbounded.
type StatementLineFilter struct {
	BankAccountID    string
	From             time.Time
	To               time.Time
	UnreconciledOnly bool
}

// StatementRepository persists imported bank statement lines.
type StatementRepository interface {
	SaveStatementLines(ctx context.Context, lines []domain.BankStatementLine) error
	FindStatementLineByID(ctx context.Context, lineID string) (*domain.BankStatementLine, error)

	// ListStatementLines returns lines ordered by date then import order.
	ListStatementLines(ctx context.Context, filter StatementLineFilter) ([]domain.BankStatementLine, error)

	// MarkLineReconciled flips an unreconciled line and links the match.
	// It reports false when the line was already reconciled.
	MarkLineReconciled(ctx context.Context, lineID, matchID string) (bool, error)
}

// MovementSource reads cash-affecting records owned by other modules.
type MovementSource interface {
	// ListMovements returns approved payments, approved expenses, paid purchase
	// invoices and paid payroll receipts dated within [from, to].
	ListMovements(ctx context.Context, from, to time.Time) ([]domain.InternalMovement, error)
	GetMovement(ctx context.Context, kind domain.MovementKind, id string) (*domain.InternalMovement, error)
}
