package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

// PeriodRepository implements usecase.PeriodRepository.
type PeriodRepository struct {
	pool *pgxpool.Pool
}

// NewPeriodRepository creates a new PeriodRepository.
func NewPeriodRepository(pool *pgxpool.Pool) *PeriodRepository {
	return &PeriodRepository{pool: pool}
}

// FindForDate returns the period covering the date, or nil when no
// period covers it.
func (r *PeriodRepository) FindForDate(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, start_date, end_date, status
		FROM accounting_periods
		WHERE tenant_id = $1 AND start_date <= $2 AND end_date >= $2`,
		tenantID, date,
	)

	var (
		period domain.AccountingPeriod
		status string
	)
	err := row.Scan(&period.ID, &period.TenantID, &period.Name, &period.StartDate, &period.EndDate, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	period.Status = domain.PeriodStatus(status)
	return &period, nil
}

// GetByID returns the period, or domain.ErrPeriodNotFound.
func (r *PeriodRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.AccountingPeriod, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, start_date, end_date, status
		FROM accounting_periods
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)

	var (
		period domain.AccountingPeriod
		status string
	)
	err := row.Scan(&period.ID, &period.TenantID, &period.Name, &period.StartDate, &period.EndDate, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPeriodNotFound
		}
		return nil, err
	}
	period.Status = domain.PeriodStatus(status)
	return &period, nil
}

// Create creates a new accounting period.
func (r *PeriodRepository) Create(ctx context.Context, period *domain.AccountingPeriod) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounting_periods (id, tenant_id, name, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		period.ID,
		period.TenantID,
		period.Name,
		period.StartDate,
		period.EndDate,
		string(period.Status),
	)
	return err
}

// UpdateStatus transitions a period's posting status inside the close
// transaction.
func (r *PeriodRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, tenantID, id string, status domain.PeriodStatus) error {
	tag, err := tx.(*Tx).PgxTx().Exec(ctx, `
		UPDATE accounting_periods SET status = $3
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, id, string(status),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPeriodNotFound
	}
	return nil
}
