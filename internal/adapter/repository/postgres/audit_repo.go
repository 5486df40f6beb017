package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

// AuditRepository implements audit log persistence
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

const auditInsertQuery = `
	INSERT INTO audit_logs (
		id, tenant_id, user_id, action, resource_type, resource_id,
		request_id, before_state, after_state, status, error_message, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`

// Create inserts a new audit log entry outside any transaction.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	args, err := auditInsertArgs(log)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, auditInsertQuery, args...)
	return err
}

// CreateTx inserts a new audit log entry inside the posting transaction
// so the trail commits or rolls back with the state change it records.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	args, err := auditInsertArgs(log)
	if err != nil {
		return err
	}
	_, err = tx.(*Tx).PgxTx().Exec(ctx, auditInsertQuery, args...)
	return err
}

func auditInsertArgs(log *domain.AuditLog) ([]any, error) {
	if log.ID == "" {
		log.ID = ulid.Make().String()
	}

	var beforeStateJSON, afterStateJSON []byte
	var err error

	if log.BeforeState != nil {
		beforeStateJSON, err = json.Marshal(log.BeforeState)
		if err != nil {
			return nil, err
		}
	}

	if log.AfterState != nil {
		afterStateJSON, err = json.Marshal(log.AfterState)
		if err != nil {
			return nil, err
		}
	}

	return []any{
		log.ID,
		log.TenantID,
		log.UserID,
		log.Action,
		log.ResourceType,
		log.ResourceID,
		log.RequestID,
		beforeStateJSON,
		afterStateJSON,
		log.Status,
		log.ErrorMessage,
		log.CreatedAt,
	}, nil
}

// List retrieves audit logs with filtering
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	query := `
		SELECT id, tenant_id, user_id, action, resource_type, resource_id,
		       request_id, before_state, after_state, status, error_message, created_at
		FROM audit_logs
		WHERE 1=1
	`
	args := []any{}
	argPos := 1

	addFilter := func(clause string, value any) {
		query += fmt.Sprintf(clause, argPos)
		args = append(args, value)
		argPos++
	}

	if filter.TenantID != "" {
		addFilter(` AND tenant_id = $%d`, filter.TenantID)
	}
	if filter.UserID != "" {
		addFilter(` AND user_id = $%d`, filter.UserID)
	}
	if filter.Action != "" {
		addFilter(` AND action = $%d`, filter.Action)
	}
	if filter.ResourceType != "" {
		addFilter(` AND resource_type = $%d`, filter.ResourceType)
	}
	if filter.ResourceID != "" {
		addFilter(` AND resource_id = $%d`, filter.ResourceID)
	}
	if filter.StartDate != nil {
		addFilter(` AND created_at >= $%d`, *filter.StartDate)
	}
	if filter.EndDate != nil {
		addFilter(` AND created_at <= $%d`, *filter.EndDate)
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		addFilter(` LIMIT $%d`, filter.Limit)
	}
	if filter.Offset > 0 {
		addFilter(` OFFSET $%d`, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		var log domain.AuditLog
		var beforeStateJSON, afterStateJSON []byte

		err := rows.Scan(
			&log.ID,
			&log.TenantID,
			&log.UserID,
			&log.Action,
			&log.ResourceType,
			&log.ResourceID,
			&log.RequestID,
			&beforeStateJSON,
			&afterStateJSON,
			&log.Status,
			&log.ErrorMessage,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if beforeStateJSON != nil {
			_ = json.Unmarshal(beforeStateJSON, &log.BeforeState)
		}
		if afterStateJSON != nil {
			_ = json.Unmarshal(afterStateJSON, &log.AfterState)
		}

		logs = append(logs, &log)
	}

	return logs, rows.Err()
}
