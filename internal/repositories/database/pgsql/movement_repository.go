package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/apperrors"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	portsrepo "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxMovementSource reads the cash-affecting records of the payments,
// expenses, purchasing and payroll modules. Outflows are negated so every
// movement uses the bank statement sign convention. Paid invoices and
// receipts without a payment date are not movements yet.
type PgxMovementSource struct {
	BaseRepository
}

func newPgxMovementSource(pool *pgxpool.Pool) *PgxMovementSource {
	return &PgxMovementSource{BaseRepository{Pool: pool}}
}

var _ portsrepo.MovementSource = (*PgxMovementSource)(nil)

const movementsUnion = `
	SELECT 'Payment' AS kind, payment_id AS id, payer_name AS counterparty, amount AS amount,
	       paid_at AS moved_at, COALESCE(reference, '') AS reference
	FROM payments WHERE status = 'APPROVED'
	UNION ALL
	SELECT 'Expense', expense_id, COALESCE(supplier_name, concept), -amount, expense_date, COALESCE(reference, '')
	FROM expenses WHERE status = 'APPROVED'
	UNION ALL
	SELECT 'PurchaseInvoice', invoice_id, supplier_name, -total, paid_at, COALESCE(invoice_number, '')
	FROM purchase_invoices WHERE status = 'PAID' AND paid_at IS NOT NULL
	UNION ALL
	SELECT 'PayrollReceipt', receipt_id, employee_name, -net_amount, paid_at, COALESCE(reference, '')
	FROM payroll_receipts WHERE status = 'PAID' AND paid_at IS NOT NULL
`

func scanMovement(row pgx.Row) (*domain.InternalMovement, error) {
	var m domain.InternalMovement
	var counterparty string
	if err := row.Scan(&m.Kind, &m.ID, &counterparty, &m.Amount, &m.Date, &m.Reference); err != nil {
		return nil, err
	}
	m.Label = domain.MovementLabel(m.Kind, counterparty)
	return &m, nil
}

func (s *PgxMovementSource) ListMovements(ctx context.Context, from, to time.Time) ([]domain.InternalMovement, error) {
	query := `SELECT kind, id, counterparty, amount, moved_at, reference FROM (` + movementsUnion + `) mv
		WHERE moved_at::date BETWEEN $1::date AND $2::date
		ORDER BY moved_at, kind, id;`
	rows, err := s.conn(ctx).Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list internal movements: %w", err)
	}
	defer rows.Close()

	movements := []domain.InternalMovement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan internal movement: %w", err)
		}
		movements = append(movements, *m)
	}
	return movements, rows.Err()
}

func (s *PgxMovementSource) GetMovement(ctx context.Context, kind domain.MovementKind, id string) (*domain.InternalMovement, error) {
	query := `SELECT kind, id, counterparty, amount, moved_at, reference FROM (` + movementsUnion + `) mv
		WHERE kind = $1 AND id = $2;`
	m, err := scanMovement(s.conn(ctx).QueryRow(ctx, query, string(kind), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get movement %s %s: %w", kind, id, err)
	}
	return m, nil
}
