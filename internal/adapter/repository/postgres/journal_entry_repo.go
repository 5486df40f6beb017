package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

// JournalEntryRepository implements usecase.JournalEntryRepository.
type JournalEntryRepository struct {
	pool *pgxpool.Pool
}

// NewJournalEntryRepository creates a new JournalEntryRepository.
func NewJournalEntryRepository(pool *pgxpool.Pool) *JournalEntryRepository {
	return &JournalEntryRepository{pool: pool}
}

// Create persists the entry and its lines within the transaction. A
// lost race on the per-tenant idempotency key index surfaces as
// domain.ErrDuplicateIdempotencyKey so the caller can resolve the
// collision against the winner instead of reporting a storage failure.
func (r *JournalEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	_, err := pgxTx.Exec(ctx, `
		INSERT INTO journal_entries (
			id, tenant_id, entity_id, posting_date, currency,
			source_module, source_document_id, source_document_type,
			description, is_intercompany, counterparty_entity_id,
			valid_time_start, reversal_of, version, created_by,
			idempotency_key, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		entry.ID,
		entry.TenantID,
		entry.EntityID,
		entry.PostingDate,
		entry.Currency().String(),
		entry.SourceModule,
		nullable(entry.SourceDocumentID),
		nullable(entry.SourceDocumentType),
		entry.Description,
		entry.IsIntercompany,
		nullable(entry.CounterpartyEntityID),
		entry.PostingDate,
		nullable(entry.ReversalOf),
		entry.Version,
		entry.CreatedBy,
		nullable(entry.IdempotencyKey),
		entry.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation &&
			pgErr.ConstraintName == "idx_journal_entries_idempotency_key" {
			return domain.ErrDuplicateIdempotencyKey
		}
		return err
	}

	for _, line := range entry.Lines {
		_, err := pgxTx.Exec(ctx, `
			INSERT INTO journal_entry_lines (
				id, entry_id, account_code, debit_amount_cents,
				credit_amount_cents, cost_center, description
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			line.ID,
			entry.ID,
			line.AccountCode,
			line.Debit.Cents(),
			line.Credit.Cents(),
			nullable(line.CostCenter),
			line.Description,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves an entry and its lines.
func (r *JournalEntryRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.JournalEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, entity_id, posting_date, currency,
		       source_module, source_document_id, source_document_type,
		       description, is_intercompany, counterparty_entity_id,
		       reversal_of, version, created_by, idempotency_key, created_at
		FROM journal_entries
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)

	entry, currency, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}

	if err := r.loadLines(ctx, entry, currency); err != nil {
		return nil, err
	}

	return entry, nil
}

// GetByIdempotencyKey retrieves the entry recorded under the key.
func (r *JournalEntryRepository) GetByIdempotencyKey(ctx context.Context, tenantID, key string) (*domain.JournalEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, tenant_id, entity_id, posting_date, currency,
		       source_module, source_document_id, source_document_type,
		       description, is_intercompany, counterparty_entity_id,
		       reversal_of, version, created_by, idempotency_key, created_at
		FROM journal_entries
		WHERE tenant_id = $1 AND idempotency_key = $2`,
		tenantID, key,
	)

	entry, currency, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}

	if err := r.loadLines(ctx, entry, currency); err != nil {
		return nil, err
	}

	return entry, nil
}

// ListIntercompany retrieves intercompany entries posted in the window,
// inclusive on both ends.
func (r *JournalEntryRepository) ListIntercompany(ctx context.Context, tenantID string, from, to time.Time) ([]*domain.JournalEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, tenant_id, entity_id, posting_date, currency,
		       source_module, source_document_id, source_document_type,
		       description, is_intercompany, counterparty_entity_id,
		       reversal_of, version, created_by, idempotency_key, created_at
		FROM journal_entries
		WHERE tenant_id = $1 AND is_intercompany
		  AND posting_date >= $2 AND posting_date <= $3
		ORDER BY posting_date, id`,
		tenantID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.JournalEntry
	currencies := map[string]domain.Currency{}
	for rows.Next() {
		entry, currency, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		currencies[entry.ID] = currency
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if err := r.loadLines(ctx, entry, currencies[entry.ID]); err != nil {
			return nil, err
		}
	}

	return entries, nil
}

func (r *JournalEntryRepository) loadLines(ctx context.Context, entry *domain.JournalEntry, currency domain.Currency) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, entry_id, account_code, debit_amount_cents,
		       credit_amount_cents, cost_center, description
		FROM journal_entry_lines
		WHERE entry_id = $1
		ORDER BY id`,
		entry.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line        domain.JournalEntryLine
			debitCents  int64
			creditCents int64
			costCenter  *string
		)
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountCode, &debitCents, &creditCents, &costCenter, &line.Description); err != nil {
			return err
		}
		line.Debit, err = domain.NewFromCents(debitCents, currency)
		if err != nil {
			return err
		}
		line.Credit, err = domain.NewFromCents(creditCents, currency)
		if err != nil {
			return err
		}
		line.CostCenter = deref(costCenter)
		entry.Lines = append(entry.Lines, line)
	}

	return rows.Err()
}

func scanEntry(row pgx.Row) (*domain.JournalEntry, domain.Currency, error) {
	var (
		entry                JournalEntryRow
		sourceDocumentID     *string
		sourceDocumentType   *string
		counterpartyEntityID *string
		reversalOf           *string
		idempotencyKey       *string
	)

	err := row.Scan(
		&entry.ID,
		&entry.TenantID,
		&entry.EntityID,
		&entry.PostingDate,
		&entry.Currency,
		&entry.SourceModule,
		&sourceDocumentID,
		&sourceDocumentType,
		&entry.Description,
		&entry.IsIntercompany,
		&counterpartyEntityID,
		&reversalOf,
		&entry.Version,
		&entry.CreatedBy,
		&idempotencyKey,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, "", err
	}

	return &domain.JournalEntry{
		ID:                   entry.ID,
		TenantID:             entry.TenantID,
		EntityID:             entry.EntityID,
		PostingDate:          entry.PostingDate,
		SourceModule:         entry.SourceModule,
		SourceDocumentID:     deref(sourceDocumentID),
		SourceDocumentType:   deref(sourceDocumentType),
		Description:          entry.Description,
		IsIntercompany:       entry.IsIntercompany,
		CounterpartyEntityID: deref(counterpartyEntityID),
		ReversalOf:           deref(reversalOf),
		Version:              entry.Version,
		CreatedBy:            entry.CreatedBy,
		IdempotencyKey:       deref(idempotencyKey),
		CreatedAt:            entry.CreatedAt,
	}, domain.Currency(entry.Currency), nil
}

// JournalEntryRow carries the scanned non-null entry columns.
type JournalEntryRow struct {
	ID             string
	TenantID       string
	EntityID       string
	PostingDate    time.Time
	Currency       string
	SourceModule   string
	Description    string
	IsIntercompany bool
	Version        int
	CreatedBy      string
	CreatedAt      time.Time
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
