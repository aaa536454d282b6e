package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/apperrors"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	portsrepo "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/repositories"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entries and lines.
func newPgxJournalRepository(pool *pgxpool.Pool) *PgxJournalRepository {
	return &PgxJournalRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, entry_number, entry_date, kind, description, total_debit, total_credit,
	period_id, origin_type, origin_id, source_event_id, created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var e domain.JournalEntry
	var originType, originID, sourceEventID sql.NullString
	if err := row.Scan(
		&e.EntryID, &e.EntryNumber, &e.EntryDate, &e.Kind, &e.Description, &e.TotalDebit, &e.TotalCredit,
		&e.PeriodID, &originType, &originID, &sourceEventID,
		&e.CreatedAt, &e.CreatedBy, &e.LastUpdatedAt, &e.LastUpdatedBy,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan journal entry: %w", err)
	}
	e.OriginType = originType.String
	e.OriginID = originID.String
	e.SourceEventID = sourceEventID.String
	return &e, nil
}

// SaveEntry inserts the header and its lines. Callers run it inside
// TransactionManager.WithinTx so header and lines commit together.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry *domain.JournalEntry) error {
	q := r.conn(ctx)

	headerQuery := `
		INSERT INTO journal_entries (entry_id, entry_date, kind, description, total_debit, total_credit,
			period_id, origin_type, origin_id, source_event_id, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING entry_number;
	`
	err := q.QueryRow(ctx, headerQuery,
		entry.EntryID,
		entry.EntryDate,
		entry.Kind,
		entry.Description,
		entry.TotalDebit,
		entry.TotalCredit,
		entry.PeriodID,
		nullString(entry.OriginType),
		nullString(entry.OriginID),
		nullString(entry.SourceEventID),
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	).Scan(&entry.EntryNumber)
	if err != nil {
		return mapWriteError(err, "journal entry "+entry.EntryID)
	}

	// Use pgx batching for the lines
	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (line_id, entry_id, line_no, account_id, debit, credit, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for _, l := range entry.Lines {
		batch.Queue(lineQuery, l.LineID, entry.EntryID, l.LineNo, l.AccountID, l.Debit, l.Credit, l.Description)
	}
	br := q.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapWriteError(err, "journal lines of entry "+entry.EntryID)
	}
	return nil
}

// FindEntryByID retrieves an entry with its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	entry, err := scanEntry(r.conn(ctx).QueryRow(ctx, query, entryID))
	if err != nil {
		return nil, err
	}
	if entry.Lines, err = r.findLines(ctx, entryID); err != nil {
		return nil, err
	}
	return entry, nil
}

// FindEntryBySourceEventID retrieves the entry posted for a business event.
func (r *PgxJournalRepository) FindEntryBySourceEventID(ctx context.Context, sourceEventID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE source_event_id = $1;`
	entry, err := scanEntry(r.conn(ctx).QueryRow(ctx, query, sourceEventID))
	if err != nil {
		return nil, err
	}
	if entry.Lines, err = r.findLines(ctx, entry.EntryID); err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *PgxJournalRepository) findLines(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT l.line_id, l.entry_id, l.line_no, l.account_id, a.code, l.debit, l.credit, l.description
		FROM journal_lines l
		JOIN accounts a ON a.account_id = l.account_id
		WHERE l.entry_id = $1
		ORDER BY l.line_no;
	`
	rows, err := r.conn(ctx).Query(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	defer rows.Close()

	lines := []domain.JournalLine{}
	for rows.Next() {
		var l domain.JournalLine
		if err := rows.Scan(&l.LineID, &l.EntryID, &l.LineNo, &l.AccountID, &l.AccountCode, &l.Debit, &l.Credit, &l.Description); err != nil {
			return nil, fmt.Errorf("failed to scan line row for entry %s: %w", entryID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line rows for entry %s: %w", entryID, err)
	}
	return lines, nil
}

// ListEntries pages headers by (entry_date, created_at, entry_id) descending.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, params portsrepo.ListEntriesParams) ([]domain.JournalEntry, string, error) {
	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if params.From != nil {
		add("entry_date >= $%d", *params.From)
	}
	if params.To != nil {
		add("entry_date <= $%d", *params.To)
	}
	if params.Kind != "" {
		add("kind = $%d", params.Kind)
	}
	if params.NextToken != "" {
		cursor, err := pagination.DecodeEntryCursor(params.NextToken)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		args = append(args, cursor.EntryDate, cursor.CreatedAt, cursor.EntryID)
		n := len(args)
		where = append(where, fmt.Sprintf("(entry_date, created_at, entry_id) < ($%d, $%d, $%d)", n-2, n-1, n))
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, params.Limit+1)
	query += fmt.Sprintf(" ORDER BY entry_date DESC, created_at DESC, entry_id DESC LIMIT $%d;", len(args))

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, "", err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("error iterating journal entries: %w", err)
	}

	var next string
	if len(entries) > params.Limit {
		entries = entries[:params.Limit]
		last := entries[len(entries)-1]
		next = pagination.EncodeEntryCursor(pagination.EntryCursor{EntryDate: last.EntryDate, CreatedAt: last.CreatedAt, EntryID: last.EntryID})
	}
	return entries, next, nil
}

// SumAccountLines aggregates at query time; there is no stored balance.
func (r *PgxJournalRepository) SumAccountLines(ctx context.Context, accountID string, asOf *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_id = $1 AND ($2::date IS NULL OR e.entry_date <= $2::date);
	`
	var debit, credit decimal.Decimal
	if err := r.conn(ctx).QueryRow(ctx, query, accountID, asOf).Scan(&debit, &credit); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum lines for account %s: %w", accountID, err)
	}
	return debit, credit, nil
}

// TrialBalance totals lines per account; Balance is left for the caller.
func (r *PgxJournalRepository) TrialBalance(ctx context.Context, asOf *time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT a.account_id, a.code, a.name, a.account_type,
		       COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.account_id = l.account_id
		WHERE ($1::date IS NULL OR e.entry_date <= $1::date)
		GROUP BY a.account_id, a.code, a.name, a.account_type
		ORDER BY string_to_array(a.code, '.')::int[];
	`
	rows, err := r.conn(ctx).Query(ctx, query, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to compute trial balance: %w", err)
	}
	defer rows.Close()

	result := []domain.TrialBalanceRow{}
	for rows.Next() {
		var row domain.TrialBalanceRow
		if err := rows.Scan(&row.AccountID, &row.Code, &row.Name, &row.AccountType, &row.TotalDebit, &row.TotalCredit); err != nil {
			return nil, fmt.Errorf("failed to scan trial balance row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
