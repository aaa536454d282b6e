package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/apperrors"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	portsrepo "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxBankRepository struct {
	BaseRepository
}

// newPgxBankRepository creates a repository for bank accounts and their statement lines.
func newPgxBankRepository(pool *pgxpool.Pool) *PgxBankRepository {
	return &PgxBankRepository{BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.BankAccountRepository = (*PgxBankRepository)(nil)
	_ portsrepo.StatementRepository   = (*PgxBankRepository)(nil)
)

const bankAccountColumns = `bank_account_id, name, bank_name, account_number, ledger_account_code, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

func scanBankAccount(row pgx.Row) (*domain.BankAccount, error) {
	var b domain.BankAccount
	if err := row.Scan(
		&b.BankAccountID, &b.Name, &b.BankName, &b.AccountNumber, &b.LedgerAccountCode, &b.IsActive,
		&b.CreatedAt, &b.CreatedBy, &b.LastUpdatedAt, &b.LastUpdatedBy,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan bank account: %w", err)
	}
	return &b, nil
}

func (r *PgxBankRepository) SaveBankAccount(ctx context.Context, account domain.BankAccount) error {
	query := `INSERT INTO bank_accounts (` + bankAccountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`
	_, err := r.conn(ctx).Exec(ctx, query,
		account.BankAccountID, account.Name, account.BankName, account.AccountNumber, account.LedgerAccountCode,
		account.IsActive, account.CreatedAt, account.CreatedBy, account.LastUpdatedAt, account.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "bank account "+account.Name)
	}
	return nil
}

func (r *PgxBankRepository) FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE bank_account_id = $1;`
	return scanBankAccount(r.conn(ctx).QueryRow(ctx, query, bankAccountID))
}

func (r *PgxBankRepository) ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts ORDER BY name;`
	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	defer rows.Close()

	accounts := []domain.BankAccount{}
	for rows.Next() {
		b, err := scanBankAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *b)
	}
	return accounts, rows.Err()
}

const statementLineColumns = `line_id, bank_account_id, line_date, description, reference, amount,
	running_balance, reconciled, matched_by, import_batch_id, created_at`

func scanStatementLine(row pgx.Row) (*domain.BankStatementLine, error) {
	var l domain.BankStatementLine
	var running decimal.NullDecimal
	var reference, matchedBy, batchID *string
	if err := row.Scan(
		&l.LineID, &l.BankAccountID, &l.Date, &l.Description, &reference, &l.Amount,
		&running, &l.Reconciled, &matchedBy, &batchID, &l.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan statement line: %w", err)
	}
	if running.Valid {
		v := running.Decimal
		l.RunningBalance = &v
	}
	if reference != nil {
		l.Reference = *reference
	}
	if matchedBy != nil {
		l.MatchedBy = *matchedBy
	}
	if batchID != nil {
		l.ImportBatchID = *batchID
	}
	return &l, nil
}

// SaveStatementLines inserts lines in slice order; seq keeps that order for ties on date.
func (r *PgxBankRepository) SaveStatementLines(ctx context.Context, lines []domain.BankStatementLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `
		INSERT INTO bank_statement_lines (line_id, bank_account_id, line_date, description, reference, amount,
			running_balance, reconciled, import_batch_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, $9);
	`
	batch := &pgx.Batch{}
	for _, l := range lines {
		var running decimal.NullDecimal
		if l.RunningBalance != nil {
			running = decimal.NewNullDecimal(*l.RunningBalance)
		}
		batch.Queue(query, l.LineID, l.BankAccountID, l.Date, l.Description, nullString(l.Reference), l.Amount,
			running, nullString(l.ImportBatchID), l.CreatedAt)
	}
	if err := r.conn(ctx).SendBatch(ctx, batch).Close(); err != nil {
		return mapWriteError(err, "statement lines")
	}
	return nil
}

func (r *PgxBankRepository) FindStatementLineByID(ctx context.Context, lineID string) (*domain.BankStatementLine, error) {
	query := `SELECT ` + statementLineColumns + ` FROM bank_statement_lines WHERE line_id = $1;`
	return scanStatementLine(r.conn(ctx).QueryRow(ctx, query, lineID))
}

func (r *PgxBankRepository) ListStatementLines(ctx context.Context, filter portsrepo.StatementLineFilter) ([]domain.BankStatementLine, error) {
	args := []any{filter.BankAccountID}
	where := []string{"bank_account_id = $1"}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where = append(where, fmt.Sprintf("line_date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where = append(where, fmt.Sprintf("line_date <= $%d", len(args)))
	}
	if filter.UnreconciledOnly {
		where = append(where, "NOT reconciled")
	}
	query := `SELECT ` + statementLineColumns + ` FROM bank_statement_lines WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY line_date, seq;`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list statement lines: %w", err)
	}
	defer rows.Close()

	lines := []domain.BankStatementLine{}
	for rows.Next() {
		l, err := scanStatementLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *l)
	}
	return lines, rows.Err()
}

// MarkLineReconciled uses a conditional update so two approvals of the same
// line cannot both succeed.
func (r *PgxBankRepository) MarkLineReconciled(ctx context.Context, lineID, matchID string) (bool, error) {
	query := `
		UPDATE bank_statement_lines
		SET reconciled = TRUE, matched_by = $2
		WHERE line_id = $1 AND NOT reconciled;
	`
	tag, err := r.conn(ctx).Exec(ctx, query, lineID, matchID)
	if err != nil {
		return false, fmt.Errorf("failed to reconcile statement line %s: %w", lineID, err)
	}
	return tag.RowsAffected() == 1, nil
}
