package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/coreledger/internal/domain"
)

// TrialBalanceRepository implements usecase.TrialBalanceRepository by
// aggregating journal entry lines per account.
type TrialBalanceRepository struct {
	pool *pgxpool.Pool
}

// NewTrialBalanceRepository creates a new TrialBalanceRepository.
func NewTrialBalanceRepository(pool *pgxpool.Pool) *TrialBalanceRepository {
	return &TrialBalanceRepository{pool: pool}
}

// GetTrialBalanceLines aggregates per-account opening totals (postings
// before the window) and in-window totals.
func (r *TrialBalanceRepository) GetTrialBalanceLines(ctx context.Context, tenantID, entityID string, periodStart, periodEnd time.Time) ([]domain.TrialBalanceLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.code, a.name, a.account_type, e.currency,
		       COALESCE(SUM(l.debit_amount_cents) FILTER (WHERE e.posting_date < $3), 0),
		       COALESCE(SUM(l.credit_amount_cents) FILTER (WHERE e.posting_date < $3), 0),
		       COALESCE(SUM(l.debit_amount_cents) FILTER (WHERE e.posting_date >= $3 AND e.posting_date <= $4), 0),
		       COALESCE(SUM(l.credit_amount_cents) FILTER (WHERE e.posting_date >= $3 AND e.posting_date <= $4), 0)
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		JOIN accounts a ON a.tenant_id = e.tenant_id AND a.code = l.account_code
		WHERE e.tenant_id = $1 AND e.entity_id = $2 AND e.posting_date <= $4
		GROUP BY a.code, a.name, a.account_type, e.currency
		ORDER BY a.code`,
		tenantID, entityID, periodStart, periodEnd,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.TrialBalanceLine
	for rows.Next() {
		var (
			line        domain.TrialBalanceLine
			accountType string
			currency    string
		)
		if err := rows.Scan(
			&line.AccountCode,
			&line.AccountName,
			&accountType,
			&currency,
			&line.OpeningDebitCents,
			&line.OpeningCreditCents,
			&line.PeriodDebitCents,
			&line.PeriodCreditCents,
		); err != nil {
			return nil, err
		}
		line.AccountType = domain.AccountType(accountType)
		line.Currency = domain.Currency(currency)
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// GetAccountBalances aggregates signed per-account balances as of the
// date, debit positive.
func (r *TrialBalanceRepository) GetAccountBalances(ctx context.Context, tenantID, entityID string, asOf time.Time) ([]domain.AccountBalance, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.code, a.name, a.account_type, e.currency,
		       COALESCE(SUM(l.debit_amount_cents - l.credit_amount_cents), 0)
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.id = l.entry_id
		JOIN accounts a ON a.tenant_id = e.tenant_id AND a.code = l.account_code
		WHERE e.tenant_id = $1 AND e.entity_id = $2 AND e.posting_date <= $3
		GROUP BY a.code, a.name, a.account_type, e.currency
		ORDER BY a.code`,
		tenantID, entityID, asOf,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []domain.AccountBalance
	for rows.Next() {
		var (
			balance     domain.AccountBalance
			accountType string
			currency    string
		)
		if err := rows.Scan(&balance.AccountCode, &balance.AccountName, &accountType, &currency, &balance.BalanceCents); err != nil {
			return nil, err
		}
		balance.AccountType = domain.AccountType(accountType)
		balance.Currency = domain.Currency(currency)
		balances = append(balances, balance)
	}
	return balances, rows.Err()
}
