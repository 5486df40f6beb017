package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/coreledger/internal/domain"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create creates a new account.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (
			id, tenant_id, code, name, account_type, normal_balance,
			created_at, deleted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		account.ID,
		account.TenantID,
		account.Code,
		account.Name,
		string(account.Type),
		string(account.NormalBalance),
		account.CreatedAt,
		account.DeletedAt,
	)
	return err
}

// GetByCode retrieves an account by tenant and code.
func (r *AccountRepository) GetByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, code, name, account_type, normal_balance,
		       created_at, deleted_at
		FROM accounts
		WHERE tenant_id = $1 AND code = $2`,
		tenantID, code,
	)

	account, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.AccountNotFoundError{TenantID: tenantID, AccountCode: code}
		}
		return nil, err
	}
	return account, nil
}

// GetByCodes retrieves the accounts matching any of the codes. Missing
// codes are simply absent from the result.
func (r *AccountRepository) GetByCodes(ctx context.Context, tenantID string, codes []string) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, code, name, account_type, normal_balance,
		       created_at, deleted_at
		FROM accounts
		WHERE tenant_id = $1 AND code = ANY($2)`,
		tenantID, codes,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var (
		account       domain.Account
		accountType   string
		normalBalance string
		deletedAt     *time.Time
	)
	err := row.Scan(
		&account.ID,
		&account.TenantID,
		&account.Code,
		&account.Name,
		&accountType,
		&normalBalance,
		&account.CreatedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	account.Type = domain.AccountType(accountType)
	account.NormalBalance = domain.NormalBalance(normalBalance)
	account.DeletedAt = deletedAt
	return &account, nil
}
