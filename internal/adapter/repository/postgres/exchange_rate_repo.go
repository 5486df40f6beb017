package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/coreledger/internal/domain"
)

// ExchangeRateRepository implements usecase.CurrencyConverter against a
// table of dated rates. The rate effective at a date is the newest one
// on or before it.
type ExchangeRateRepository struct {
	pool *pgxpool.Pool
}

// NewExchangeRateRepository creates a new ExchangeRateRepository.
func NewExchangeRateRepository(pool *pgxpool.Pool) *ExchangeRateRepository {
	return &ExchangeRateRepository{pool: pool}
}

// Convert converts an amount using the rate effective at the date. The
// converted amount is rounded half away from zero to a whole number of
// minor units in the target currency.
func (r *ExchangeRateRepository) Convert(ctx context.Context, amount domain.Money, to domain.Currency, asOf time.Time) (domain.Money, error) {
	if amount.Currency() == to {
		return amount, nil
	}

	var rateStr string
	err := r.pool.QueryRow(ctx, `
		SELECT rate
		FROM exchange_rates
		WHERE from_currency = $1 AND to_currency = $2 AND effective_date <= $3
		ORDER BY effective_date DESC
		LIMIT 1`,
		string(amount.Currency()), string(to), asOf,
	).Scan(&rateStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Money{}, &domain.ConversionRateUnavailableError{
			From: amount.Currency(),
			To:   to,
			AsOf: asOf,
		}
	}
	if err != nil {
		return domain.Money{}, err
	}

	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return domain.Money{}, fmt.Errorf("parse exchange rate %q: %w", rateStr, err)
	}

	// Convert in major units so currencies with different exponents
	// (USD cents vs whole JPY) land on the right scale.
	converted := amount.Decimal().Mul(rate).Shift(to.Exponent()).Round(0)
	negative := converted.IsNegative()
	result, err := domain.NewFromCents(converted.Abs().IntPart(), to)
	if err != nil {
		return domain.Money{}, err
	}
	if negative {
		result = result.Negate()
	}
	return result, nil
}
