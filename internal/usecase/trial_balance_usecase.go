package usecase

import (
	"sort"
	"time"

	"github.com/iho/coreledger/internal/domain"
)

// TrialBalanceService builds the per-account opening/period/closing
// report for a window and proves the debit and credit columns total
// equally. It is a pure computation over its inputs; it never touches
// the temporal ledger.
type TrialBalanceService struct{}

// NewTrialBalanceService creates a new TrialBalanceService.
func NewTrialBalanceService() *TrialBalanceService {
	return &TrialBalanceService{}
}

// TrialBalanceRow is one account's line in the report, signed balances
// debit positive.
type TrialBalanceRow struct {
	AccountCode         string
	AccountName         string
	AccountType         domain.AccountType
	OpeningBalanceCents int64
	PeriodDebitCents    int64
	PeriodCreditCents   int64
	ClosingBalanceCents int64
}

// TrialBalanceReport is the assembled report with the matching column totals.
type TrialBalanceReport struct {
	PeriodStart      time.Time
	PeriodEnd        time.Time
	Currency         domain.Currency
	Rows             []TrialBalanceRow
	TotalDebitCents  int64
	TotalCreditCents int64
}

// BuildReport computes per-account closing balances and the two column
// totals: positive closing balances feed the debit column, the
// magnitudes of negative ones feed the credit column. A total mismatch
// is an UnbalancedLedgerError carrying both totals.
func (s *TrialBalanceService) BuildReport(lines []domain.TrialBalanceLine, periodStart, periodEnd time.Time) (*TrialBalanceReport, error) {
	report := &TrialBalanceReport{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Rows:        make([]TrialBalanceRow, 0, len(lines)),
	}

	for _, line := range lines {
		if report.Currency == "" {
			report.Currency = line.Currency
		}

		closing := line.ClosingBalanceCents()
		report.Rows = append(report.Rows, TrialBalanceRow{
			AccountCode:         line.AccountCode,
			AccountName:         line.AccountName,
			AccountType:         line.AccountType,
			OpeningBalanceCents: line.OpeningBalanceCents(),
			PeriodDebitCents:    line.PeriodDebitCents,
			PeriodCreditCents:   line.PeriodCreditCents,
			ClosingBalanceCents: closing,
		})

		if closing > 0 {
			report.TotalDebitCents += closing
		} else {
			report.TotalCreditCents += -closing
		}
	}

	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].AccountCode < report.Rows[j].AccountCode
	})

	if report.TotalDebitCents != report.TotalCreditCents {
		return nil, &domain.UnbalancedLedgerError{
			TotalDebitCents:  report.TotalDebitCents,
			TotalCreditCents: report.TotalCreditCents,
		}
	}

	return report, nil
}
