package usecase

import (
	"context"
	"time"

	"github.com/iho/coreledger/internal/domain"
)

// JournalEntryRepository defines data access for journal entries.
type JournalEntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	GetByID(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error)
	GetByIdempotencyKey(ctx context.Context, tenantID, key string) (*domain.JournalEntry, error)
	ListIntercompany(ctx context.Context, tenantID string, from, to time.Time) ([]*domain.JournalEntry, error)
}

// AccountRepository defines data access for the chart of accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByCode(ctx context.Context, tenantID, code string) (*domain.Account, error)
	GetByCodes(ctx context.Context, tenantID string, codes []string) ([]*domain.Account, error)
}

// PeriodRepository defines data access for accounting periods.
type PeriodRepository interface {
	// FindForDate returns the period covering the date, or nil when no
	// period covers it.
	FindForDate(ctx context.Context, tenantID string, date time.Time) (*domain.AccountingPeriod, error)
	// GetByID fails with domain.ErrPeriodNotFound when the period does
	// not exist for the tenant.
	GetByID(ctx context.Context, tenantID, id string) (*domain.AccountingPeriod, error)
	UpdateStatus(ctx context.Context, tx Transaction, tenantID, id string, status domain.PeriodStatus) error
}

// TemporalBalanceRepository defines data access for the append-only
// bitemporal balance ledger.
type TemporalBalanceRepository interface {
	// GetOpenForUpdate reads the open balance record for the account under
	// a row lock, or nil when the account has no balance history yet.
	GetOpenForUpdate(ctx context.Context, tx Transaction, tenantID, entityID, accountCode string) (*domain.TemporalBalance, error)
	// Close ends the open record on both time dimensions. Records are
	// never overwritten in place.
	Close(ctx context.Context, tx Transaction, id string, validTimeEnd, transactionTimeEnd time.Time) error
	Insert(ctx context.Context, tx Transaction, balance *domain.TemporalBalance) error
	// ListVersions returns every version of the account balance, all
	// transaction-time generations included.
	ListVersions(ctx context.Context, tenantID, entityID, accountCode string) ([]*domain.TemporalBalance, error)
}

// EntityRepository defines data access for consolidation entities.
type EntityRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*domain.Entity, error)
	ListSubsidiaries(ctx context.Context, tenantID, parentEntityID string) ([]*domain.Entity, error)
}

// TrialBalanceRepository aggregates per-account balances for reporting.
type TrialBalanceRepository interface {
	GetTrialBalanceLines(ctx context.Context, tenantID, entityID string, periodStart, periodEnd time.Time) ([]domain.TrialBalanceLine, error)
	GetAccountBalances(ctx context.Context, tenantID, entityID string, asOf time.Time) ([]domain.AccountBalance, error)
}

// CurrencyConverter converts an amount into another currency using the
// rate effective at a date. It fails when no rate is available.
type CurrencyConverter interface {
	Convert(ctx context.Context, amount domain.Money, to domain.Currency, asOf time.Time) (domain.Money, error)
}

// IdempotencyRepository is the durable store of command results, unique
// per (tenant, key).
type IdempotencyRepository interface {
	FindByKey(ctx context.Context, tenantID, key string) (*domain.IdempotencyRecord, error)
	// Save fails with domain.ErrDuplicateIdempotencyKey when the key is
	// already recorded, so check-then-act races fail safe.
	Save(ctx context.Context, record *domain.IdempotencyRecord) error
}

// IdempotencyCache is an optional fast-path cache in front of the
// durable idempotency store.
type IdempotencyCache interface {
	Get(ctx context.Context, tenantID, key string) ([]byte, error)
	Set(ctx context.Context, tenantID, key string, result []byte, ttl time.Duration) error
}

// OutboxRepository stages domain events in the posting transaction.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Clock supplies the current time so the core stays deterministic under test.
type Clock interface {
	Now() time.Time
}

// Retrier re-drives an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
