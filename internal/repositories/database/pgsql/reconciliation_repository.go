package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/apperrors"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	portsrepo "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxReconciliationRepository struct {
	BaseRepository
}

func newPgxReconciliationRepository(pool *pgxpool.Pool) *PgxReconciliationRepository {
	return &PgxReconciliationRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ReconciliationRepository = (*PgxReconciliationRepository)(nil)

const runColumns = `run_id, number, bank_account_id, period_from, period_to, status,
	total_statement_lines, total_matched, total_unmatched, closed_at, closed_by,
	created_at, created_by, last_updated_at, last_updated_by`

func scanRun(row pgx.Row) (*domain.ReconciliationRun, error) {
	var run domain.ReconciliationRun
	var closedAt sql.NullTime
	var closedBy sql.NullString
	if err := row.Scan(
		&run.RunID, &run.Number, &run.BankAccountID, &run.PeriodFrom, &run.PeriodTo, &run.Status,
		&run.TotalStatementLines, &run.TotalMatched, &run.TotalUnmatched, &closedAt, &closedBy,
		&run.CreatedAt, &run.CreatedBy, &run.LastUpdatedAt, &run.LastUpdatedBy,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan reconciliation run: %w", err)
	}
	if closedAt.Valid {
		t := closedAt.Time
		run.ClosedAt = &t
	}
	run.ClosedBy = closedBy.String
	return &run, nil
}

// NextRunSequence takes a transaction-scoped advisory lock on the prefix
// before reading the current maximum.
func (r *PgxReconciliationRepository) NextRunSequence(ctx context.Context, prefix string) (int, error) {
	q := r.conn(ctx)
	if inTx(ctx) {
		if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, prefix); err != nil {
			return 0, fmt.Errorf("failed to lock run numbering for %s: %w", prefix, err)
		}
	}
	query := `
		SELECT COALESCE(MAX(substring(number FROM length($1) + 1)::int), 0) + 1
		FROM reconciliation_runs
		WHERE number LIKE $1 || '%';
	`
	var next int
	if err := q.QueryRow(ctx, query, prefix).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next run number for %s: %w", prefix, err)
	}
	return next, nil
}

func (r *PgxReconciliationRepository) SaveRun(ctx context.Context, run domain.ReconciliationRun) error {
	query := `INSERT INTO reconciliation_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);`
	var closedAt sql.NullTime
	if run.ClosedAt != nil {
		closedAt = sql.NullTime{Time: *run.ClosedAt, Valid: true}
	}
	_, err := r.conn(ctx).Exec(ctx, query,
		run.RunID, run.Number, run.BankAccountID, run.PeriodFrom, run.PeriodTo, run.Status,
		run.TotalStatementLines, run.TotalMatched, run.TotalUnmatched, closedAt, nullString(run.ClosedBy),
		run.CreatedAt, run.CreatedBy, run.LastUpdatedAt, run.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "reconciliation run "+run.Number)
	}
	return nil
}

func (r *PgxReconciliationRepository) FindRunByID(ctx context.Context, runID string) (*domain.ReconciliationRun, error) {
	query := `SELECT ` + runColumns + ` FROM reconciliation_runs WHERE run_id = $1;`
	return scanRun(r.conn(ctx).QueryRow(ctx, query, runID))
}

func (r *PgxReconciliationRepository) FindRunForUpdate(ctx context.Context, runID string) (*domain.ReconciliationRun, error) {
	query := `SELECT ` + runColumns + ` FROM reconciliation_runs WHERE run_id = $1 FOR UPDATE;`
	return scanRun(r.conn(ctx).QueryRow(ctx, query, runID))
}

func (r *PgxReconciliationRepository) ListRuns(ctx context.Context, bankAccountID string) ([]domain.ReconciliationRun, error) {
	query := `SELECT ` + runColumns + ` FROM reconciliation_runs`
	args := []any{}
	if bankAccountID != "" {
		query += ` WHERE bank_account_id = $1`
		args = append(args, bankAccountID)
	}
	query += ` ORDER BY created_at DESC, number DESC;`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliation runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.ReconciliationRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func (r *PgxReconciliationRepository) UpdateRun(ctx context.Context, run domain.ReconciliationRun) error {
	query := `
		UPDATE reconciliation_runs
		SET status = $2, total_statement_lines = $3, total_matched = $4, total_unmatched = $5,
		    closed_at = $6, closed_by = $7, last_updated_at = $8, last_updated_by = $9
		WHERE run_id = $1;
	`
	var closedAt sql.NullTime
	if run.ClosedAt != nil {
		closedAt = sql.NullTime{Time: *run.ClosedAt, Valid: true}
	}
	tag, err := r.conn(ctx).Exec(ctx, query,
		run.RunID, run.Status, run.TotalStatementLines, run.TotalMatched, run.TotalUnmatched,
		closedAt, nullString(run.ClosedBy), run.LastUpdatedAt, run.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update reconciliation run %s: %w", run.RunID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

const matchColumns = `match_id, run_id, statement_line_id, internal_kind, internal_id, internal_label,
	match_type, status, confidence, bank_amount, system_amount, difference, approved_by, approved_at, created_at`

func scanMatch(row pgx.Row) (*domain.ReconciliationMatch, error) {
	var m domain.ReconciliationMatch
	var approvedBy sql.NullString
	var approvedAt sql.NullTime
	if err := row.Scan(
		&m.MatchID, &m.RunID, &m.StatementLineID, &m.InternalKind, &m.InternalID, &m.InternalLabel,
		&m.MatchType, &m.Status, &m.Confidence, &m.BankAmount, &m.SystemAmount, &m.Difference,
		&approvedBy, &approvedAt, &m.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan reconciliation match: %w", err)
	}
	m.ApprovedBy = approvedBy.String
	if approvedAt.Valid {
		t := approvedAt.Time
		m.ApprovedAt = &t
	}
	return &m, nil
}

func (r *PgxReconciliationRepository) SaveMatches(ctx context.Context, matches []domain.ReconciliationMatch) error {
	if len(matches) == 0 {
		return nil
	}
	query := `INSERT INTO reconciliation_matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);`
	batch := &pgx.Batch{}
	for _, m := range matches {
		var approvedAt sql.NullTime
		if m.ApprovedAt != nil {
			approvedAt = sql.NullTime{Time: *m.ApprovedAt, Valid: true}
		}
		batch.Queue(query,
			m.MatchID, m.RunID, m.StatementLineID, m.InternalKind, m.InternalID, m.InternalLabel,
			m.MatchType, m.Status, m.Confidence, m.BankAmount, m.SystemAmount, m.Difference,
			nullString(m.ApprovedBy), approvedAt, m.CreatedAt,
		)
	}
	if err := r.conn(ctx).SendBatch(ctx, batch).Close(); err != nil {
		return mapWriteError(err, "reconciliation matches")
	}
	return nil
}

func (r *PgxReconciliationRepository) FindMatchByID(ctx context.Context, matchID string) (*domain.ReconciliationMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM reconciliation_matches WHERE match_id = $1;`
	return scanMatch(r.conn(ctx).QueryRow(ctx, query, matchID))
}

// ListMatchesByRun returns matches by confidence, highest first.
func (r *PgxReconciliationRepository) ListMatchesByRun(ctx context.Context, runID string) ([]domain.ReconciliationMatch, error) {
	query := `SELECT ` + matchColumns + ` FROM reconciliation_matches WHERE run_id = $1
		ORDER BY confidence DESC, created_at, match_id;`
	rows, err := r.conn(ctx).Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for run %s: %w", runID, err)
	}
	defer rows.Close()

	matches := []domain.ReconciliationMatch{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (r *PgxReconciliationRepository) UpdateMatch(ctx context.Context, match domain.ReconciliationMatch) error {
	query := `
		UPDATE reconciliation_matches
		SET status = $2, approved_by = $3, approved_at = $4
		WHERE match_id = $1;
	`
	var approvedAt sql.NullTime
	if match.ApprovedAt != nil {
		approvedAt = sql.NullTime{Time: *match.ApprovedAt, Valid: true}
	}
	tag, err := r.conn(ctx).Exec(ctx, query, match.MatchID, match.Status, nullString(match.ApprovedBy), approvedAt)
	if err != nil {
		// uq_reconciliation_matches_approved_movement rejects a second approval of a movement
		return mapWriteError(err, "match "+match.MatchID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxReconciliationRepository) ListApprovedInternalIDs(ctx context.Context) (map[string]bool, error) {
	query := `
		SELECT internal_kind, internal_id
		FROM reconciliation_matches
		WHERE status = 'APPROVED';
	`
	rows, err := r.conn(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list approved movements: %w", err)
	}
	defer rows.Close()

	used := map[string]bool{}
	for rows.Next() {
		var kind, id string
		if err := rows.Scan(&kind, &id); err != nil {
			return nil, fmt.Errorf("failed to scan approved movement: %w", err)
		}
		used[portsrepo.MovementKey(kind, id)] = true
	}
	return used, rows.Err()
}
