package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/coreledger/internal/domain"
)

// EntityRepository implements usecase.EntityRepository.
type EntityRepository struct {
	pool *pgxpool.Pool
}

// NewEntityRepository creates a new EntityRepository.
func NewEntityRepository(pool *pgxpool.Pool) *EntityRepository {
	return &EntityRepository{pool: pool}
}

// Create creates a new entity.
func (r *EntityRepository) Create(ctx context.Context, entity *domain.Entity) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO entities (
			id, tenant_id, name, parent_entity_id, ownership_percentage,
			consolidation_method, currency, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entity.ID,
		entity.TenantID,
		entity.Name,
		nullable(entity.ParentEntityID),
		entity.OwnershipPercentage.String(),
		string(entity.ConsolidationMethod),
		entity.Currency.String(),
		entity.CreatedAt,
	)
	return err
}

// GetByID retrieves an entity, or nil when unknown.
func (r *EntityRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Entity, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, parent_entity_id, ownership_percentage,
		       consolidation_method, currency, created_at
		FROM entities
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)

	entity, err := scanEntity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return entity, nil
}

// ListSubsidiaries retrieves the direct children of an entity.
func (r *EntityRepository) ListSubsidiaries(ctx context.Context, tenantID, parentEntityID string) ([]*domain.Entity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, name, parent_entity_id, ownership_percentage,
		       consolidation_method, currency, created_at
		FROM entities
		WHERE tenant_id = $1 AND parent_entity_id = $2
		ORDER BY id`,
		tenantID, parentEntityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entities []*domain.Entity
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, rows.Err()
}

func scanEntity(row pgx.Row) (*domain.Entity, error) {
	var (
		entity         domain.Entity
		parentEntityID *string
		ownership      string
		method         string
		currency       string
	)
	err := row.Scan(
		&entity.ID,
		&entity.TenantID,
		&entity.Name,
		&parentEntityID,
		&ownership,
		&method,
		&currency,
		&entity.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	pct, err := decimal.NewFromString(ownership)
	if err != nil {
		return nil, err
	}
	entity.ParentEntityID = deref(parentEntityID)
	entity.OwnershipPercentage = pct
	entity.ConsolidationMethod = domain.ConsolidationMethod(method)
	entity.Currency = domain.Currency(currency)
	return &entity, nil
}
