package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/apperrors"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	portsrepo "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPeriodRepository struct {
	BaseRepository
}

func newPgxPeriodRepository(pool *pgxpool.Pool) *PgxPeriodRepository {
	return &PgxPeriodRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.PeriodRepository = (*PgxPeriodRepository)(nil)

const periodColumns = `period_id, year, month, name, closed, closed_at, closed_by,
	created_at, created_by, last_updated_at, last_updated_by`

func scanPeriod(row pgx.Row) (*domain.AccountingPeriod, error) {
	var p domain.AccountingPeriod
	var closedAt sql.NullTime
	var closedBy sql.NullString
	if err := row.Scan(
		&p.PeriodID, &p.Year, &p.Month, &p.Name, &p.Closed, &closedAt, &closedBy,
		&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan period: %w", err)
	}
	if closedAt.Valid {
		t := closedAt.Time
		p.ClosedAt = &t
	}
	p.ClosedBy = closedBy.String
	return &p, nil
}

func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM accounting_periods WHERE period_id = $1;`
	return scanPeriod(r.conn(ctx).QueryRow(ctx, query, periodID))
}

func (r *PgxPeriodRepository) FindPeriodForUpdate(ctx context.Context, periodID string) (*domain.AccountingPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM accounting_periods WHERE period_id = $1 FOR UPDATE;`
	return scanPeriod(r.conn(ctx).QueryRow(ctx, query, periodID))
}

// GetOrCreatePeriod inserts the period if missing and re-reads it with a
// share lock, so ClosePeriod (which takes FOR UPDATE) waits for the posting
// transaction and vice versa.
func (r *PgxPeriodRepository) GetOrCreatePeriod(ctx context.Context, year, month int, name string) (*domain.AccountingPeriod, error) {
	now := time.Now().UTC()
	insert := `
		INSERT INTO accounting_periods (period_id, year, month, name, closed, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, FALSE, $5, 'system', $5, 'system')
		ON CONFLICT (year, month) DO NOTHING;
	`
	if _, err := r.conn(ctx).Exec(ctx, insert, uuid.NewString(), year, month, name, now); err != nil {
		return nil, fmt.Errorf("failed to create period %04d-%02d: %w", year, month, err)
	}

	query := `SELECT ` + periodColumns + ` FROM accounting_periods WHERE year = $1 AND month = $2`
	if inTx(ctx) {
		query += ` FOR SHARE`
	}
	return scanPeriod(r.conn(ctx).QueryRow(ctx, query, year, month))
}

func (r *PgxPeriodRepository) ListPeriods(ctx context.Context, year int) ([]domain.AccountingPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM accounting_periods`
	args := []any{}
	if year != 0 {
		query += ` WHERE year = $1`
		args = append(args, year)
	}
	query += ` ORDER BY year DESC, month DESC;`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	defer rows.Close()

	periods := []domain.AccountingPeriod{}
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, *p)
	}
	return periods, rows.Err()
}

func (r *PgxPeriodRepository) FindLatestClosedPeriod(ctx context.Context) (*domain.AccountingPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM accounting_periods
		WHERE closed ORDER BY year DESC, month DESC LIMIT 1;`
	return scanPeriod(r.conn(ctx).QueryRow(ctx, query))
}

func (r *PgxPeriodRepository) UpdatePeriodStatus(ctx context.Context, period domain.AccountingPeriod) error {
	query := `
		UPDATE accounting_periods
		SET closed = $2, closed_at = $3, closed_by = $4, last_updated_at = $5, last_updated_by = $6
		WHERE period_id = $1;
	`
	var closedAt sql.NullTime
	if period.ClosedAt != nil {
		closedAt = sql.NullTime{Time: *period.ClosedAt, Valid: true}
	}
	tag, err := r.conn(ctx).Exec(ctx, query,
		period.PeriodID, period.Closed, closedAt, nullString(period.ClosedBy), period.LastUpdatedAt, period.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update period %s: %w", period.PeriodID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
