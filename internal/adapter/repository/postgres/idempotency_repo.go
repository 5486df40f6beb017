package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/coreledger/internal/domain"
)

const pgErrUniqueViolation = "23505"

// IdempotencyRepository is the durable postgres store of command results.
// The UNIQUE(tenant_id, idempotency_key) constraint makes concurrent
// Save calls fail safe.
type IdempotencyRepository struct {
	pool *pgxpool.Pool
}

// NewIdempotencyRepository creates a new IdempotencyRepository.
func NewIdempotencyRepository(pool *pgxpool.Pool) *IdempotencyRepository {
	return &IdempotencyRepository{pool: pool}
}

// FindByKey returns the record for (tenant, key) or
// domain.ErrIdempotencyRecordNotFound.
func (r *IdempotencyRepository) FindByKey(ctx context.Context, tenantID, key string) (*domain.IdempotencyRecord, error) {
	record := &domain.IdempotencyRecord{}
	err := r.pool.QueryRow(ctx, `
		SELECT tenant_id, idempotency_key, command_type, payload_hash, result, executed_at, expires_at
		FROM idempotency_records
		WHERE tenant_id = $1 AND idempotency_key = $2`,
		tenantID, key,
	).Scan(
		&record.TenantID,
		&record.IdempotencyKey,
		&record.CommandType,
		&record.PayloadHash,
		&record.Result,
		&record.ExecutedAt,
		&record.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrIdempotencyRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Save inserts the record, failing with domain.ErrDuplicateIdempotencyKey
// when the key was recorded concurrently.
func (r *IdempotencyRepository) Save(ctx context.Context, record *domain.IdempotencyRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO idempotency_records (tenant_id, idempotency_key, command_type, payload_hash, result, executed_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.TenantID,
		record.IdempotencyKey,
		record.CommandType,
		record.PayloadHash,
		record.Result,
		record.ExecutedAt,
		record.ExpiresAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return domain.ErrDuplicateIdempotencyKey
	}
	return err
}
