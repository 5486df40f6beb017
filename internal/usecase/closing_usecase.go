package usecase

import (
	"context"
	"time"

	"github.com/iho/coreledger/internal/domain"
)

// ClosingService builds the year-end closing entry that zeroes revenue
// and expense balances into retained earnings. It persists nothing; the
// caller posts the returned entry through the normal command path.
type ClosingService struct {
	trialBalanceRepo TrialBalanceRepository
	converter        CurrencyConverter
	idGen            IDGenerator
	clock            Clock
}

// NewClosingService creates a new ClosingService.
func NewClosingService(trialBalanceRepo TrialBalanceRepository, converter CurrencyConverter, idGen IDGenerator, clock Clock) *ClosingService {
	return &ClosingService{
		trialBalanceRepo: trialBalanceRepo,
		converter:        converter,
		idGen:            idGen,
		clock:            clock,
	}
}

// ClosingResult carries the closing entry and the computed totals in the
// reporting currency.
type ClosingResult struct {
	Entry             *domain.JournalEntry
	TotalRevenueCents int64
	TotalExpenseCents int64
	NetIncomeCents    int64
	Currency          domain.Currency
}

// BuildClosingEntry pulls the period's trial-balance lines, converts
// each non-reporting-currency balance (failing the whole close if any
// rate is missing), zeroes revenue and expense balances line by line and
// books the net income to retained earnings: credit when positive, debit
// when negative.
func (s *ClosingService) BuildClosingEntry(ctx context.Context, tenantID, entityID string, periodStart, periodEnd time.Time, retainedEarningsAccountCode string, reportingCurrency domain.Currency) (*ClosingResult, error) {
	lines, err := s.trialBalanceRepo.GetTrialBalanceLines(ctx, tenantID, entityID, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	var (
		entryLines        []domain.JournalEntryLine
		totalRevenueCents int64
		totalExpenseCents int64
	)

	for _, line := range lines {
		if line.AccountType != domain.AccountTypeRevenue && line.AccountType != domain.AccountTypeExpense {
			continue
		}

		closingCents := line.ClosingBalanceCents()
		if closingCents == 0 {
			continue
		}

		converted, err := s.convertCents(ctx, closingCents, line.Currency, reportingCurrency, periodEnd)
		if err != nil {
			return nil, err
		}

		// Zeroing a balance books the same magnitude on the opposite
		// side: a credit-carrying revenue balance gets a debit line, a
		// debit-carrying expense balance a credit line. Contra balances
		// flip naturally with the sign.
		entryLine, err := s.zeroingLine(line.AccountCode, converted, reportingCurrency)
		if err != nil {
			return nil, err
		}
		entryLines = append(entryLines, entryLine)

		if line.AccountType == domain.AccountTypeRevenue {
			totalRevenueCents += -converted
		} else {
			totalExpenseCents += converted
		}
	}

	if len(entryLines) == 0 {
		return nil, domain.ErrNothingToClose
	}

	netIncomeCents := totalRevenueCents - totalExpenseCents

	if netIncomeCents != 0 {
		magnitude, err := domain.NewFromCents(abs64(netIncomeCents), reportingCurrency)
		if err != nil {
			return nil, err
		}
		retained := domain.JournalEntryLine{
			ID:          s.idGen.Generate(),
			AccountCode: retainedEarningsAccountCode,
			Description: "Net income to retained earnings",
		}
		if netIncomeCents > 0 {
			retained.Credit = magnitude
			retained.Debit = domain.Zero(reportingCurrency)
		} else {
			retained.Debit = magnitude
			retained.Credit = domain.Zero(reportingCurrency)
		}
		entryLines = append(entryLines, retained)
	}

	entry, err := domain.NewJournalEntry(domain.NewJournalEntryParams{
		ID:           s.idGen.Generate(),
		TenantID:     tenantID,
		EntityID:     entityID,
		PostingDate:  periodEnd,
		Lines:        entryLines,
		Description:  "Period closing entry",
		SourceModule: SourceModuleClosing,
		Now:          s.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	return &ClosingResult{
		Entry:             entry,
		TotalRevenueCents: totalRevenueCents,
		TotalExpenseCents: totalExpenseCents,
		NetIncomeCents:    netIncomeCents,
		Currency:          reportingCurrency,
	}, nil
}

// convertCents converts a signed cent amount between currencies via the
// injected converter, preserving sign through Negate.
func (s *ClosingService) convertCents(ctx context.Context, cents int64, from, to domain.Currency, asOf time.Time) (int64, error) {
	if from == to {
		return cents, nil
	}

	magnitude, err := domain.NewFromCents(abs64(cents), from)
	if err != nil {
		return 0, err
	}

	converted, err := s.converter.Convert(ctx, magnitude, to, asOf)
	if err != nil {
		return 0, err
	}

	if cents < 0 {
		return converted.Negate().Cents(), nil
	}
	return converted.Cents(), nil
}

// zeroingLine books the opposite side of a signed closing balance.
func (s *ClosingService) zeroingLine(accountCode string, closingCents int64, currency domain.Currency) (domain.JournalEntryLine, error) {
	magnitude, err := domain.NewFromCents(abs64(closingCents), currency)
	if err != nil {
		return domain.JournalEntryLine{}, err
	}

	line := domain.JournalEntryLine{
		ID:          s.idGen.Generate(),
		AccountCode: accountCode,
		Debit:       domain.Zero(currency),
		Credit:      domain.Zero(currency),
		Description: "Closing",
	}
	if closingCents < 0 {
		line.Debit = magnitude
	} else {
		line.Credit = magnitude
	}
	return line, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
