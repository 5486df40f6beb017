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

// TemporalBalanceRepository implements usecase.TemporalBalanceRepository
// over the append-only temporal_balances table.
type TemporalBalanceRepository struct {
	pool *pgxpool.Pool
}

// NewTemporalBalanceRepository creates a new TemporalBalanceRepository.
func NewTemporalBalanceRepository(pool *pgxpool.Pool) *TemporalBalanceRepository {
	return &TemporalBalanceRepository{pool: pool}
}

// GetOpenForUpdate reads the open record under FOR UPDATE so concurrent
// postings to the same account serialize on the row lock.
func (r *TemporalBalanceRepository) GetOpenForUpdate(ctx context.Context, tx usecase.Transaction, tenantID, entityID, accountCode string) (*domain.TemporalBalance, error) {
	pgxTx := tx.(*Tx).PgxTx()

	row := pgxTx.QueryRow(ctx, `
		SELECT id, tenant_id, entity_id, account_code, balance_cents, currency,
		       valid_time_start, valid_time_end,
		       transaction_time_start, transaction_time_end
		FROM temporal_balances
		WHERE tenant_id = $1 AND entity_id = $2 AND account_code = $3
		  AND valid_time_end = $4 AND transaction_time_end = $4
		FOR UPDATE`,
		tenantID, entityID, accountCode, domain.TimeEndOfTime,
	)

	balance, err := scanTemporalBalance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return balance, nil
}

// Close ends a record on the given time dimensions. Records are never
// overwritten in place; the end columns are the only mutable ones.
func (r *TemporalBalanceRepository) Close(ctx context.Context, tx usecase.Transaction, id string, validTimeEnd, transactionTimeEnd time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE temporal_balances
		SET valid_time_end = $2, transaction_time_end = $3
		WHERE id = $1`,
		id, validTimeEnd, transactionTimeEnd,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Insert appends a new balance version.
func (r *TemporalBalanceRepository) Insert(ctx context.Context, tx usecase.Transaction, balance *domain.TemporalBalance) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO temporal_balances (
			id, tenant_id, entity_id, account_code, balance_cents, currency,
			valid_time_start, valid_time_end,
			transaction_time_start, transaction_time_end
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		balance.ID,
		balance.TenantID,
		balance.EntityID,
		balance.AccountCode,
		balance.Balance.Cents(),
		balance.Balance.Currency().String(),
		balance.ValidTimeStart,
		balance.ValidTimeEnd,
		balance.TransactionTimeStart,
		balance.TransactionTimeEnd,
	)
	return err
}

// ListVersions returns every version of the account balance, all
// transaction-time generations included.
func (r *TemporalBalanceRepository) ListVersions(ctx context.Context, tenantID, entityID, accountCode string) ([]*domain.TemporalBalance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, entity_id, account_code, balance_cents, currency,
		       valid_time_start, valid_time_end,
		       transaction_time_start, transaction_time_end
		FROM temporal_balances
		WHERE tenant_id = $1 AND entity_id = $2 AND account_code = $3
		ORDER BY transaction_time_start, valid_time_start`,
		tenantID, entityID, accountCode,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*domain.TemporalBalance
	for rows.Next() {
		balance, err := scanTemporalBalance(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, balance)
	}
	return versions, rows.Err()
}

func scanTemporalBalance(row pgx.Row) (*domain.TemporalBalance, error) {
	var (
		balance      domain.TemporalBalance
		balanceCents int64
		currency     string
	)
	err := row.Scan(
		&balance.ID,
		&balance.TenantID,
		&balance.EntityID,
		&balance.AccountCode,
		&balanceCents,
		&currency,
		&balance.ValidTimeStart,
		&balance.ValidTimeEnd,
		&balance.TransactionTimeStart,
		&balance.TransactionTimeEnd,
	)
	if err != nil {
		return nil, err
	}

	// Stored balances are signed; negative means a credit balance.
	magnitude, err := domain.NewFromCents(abs(balanceCents), domain.Currency(currency))
	if err != nil {
		return nil, err
	}
	if balanceCents < 0 {
		magnitude = magnitude.Negate()
	}
	balance.Balance = magnitude
	return &balance, nil
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
