package usecase_test

import (
	"errors"
	"testing"
	"time"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

func TestTrialBalanceService_BuildReport(t *testing.T) {
	svc := usecase.NewTrialBalanceService()
	periodStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	lines := []domain.TrialBalanceLine{
		{
			AccountCode:       "4000",
			AccountName:       "Sales",
			AccountType:       domain.AccountTypeRevenue,
			Currency:          domain.CurrencyUSD,
			PeriodCreditCents: 10000,
		},
		{
			AccountCode:      "1000",
			AccountName:      "Cash",
			AccountType:      domain.AccountTypeAsset,
			Currency:         domain.CurrencyUSD,
			PeriodDebitCents: 10000,
		},
	}

	report, err := svc.BuildReport(lines, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.TotalDebitCents != 10000 || report.TotalCreditCents != 10000 {
		t.Errorf("expected totals 10000/10000, got %d/%d", report.TotalDebitCents, report.TotalCreditCents)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(report.Rows))
	}
	// Rows come back sorted by account code.
	if report.Rows[0].AccountCode != "1000" || report.Rows[1].AccountCode != "4000" {
		t.Errorf("expected rows sorted by code, got %s, %s", report.Rows[0].AccountCode, report.Rows[1].AccountCode)
	}
	if report.Rows[0].ClosingBalanceCents != 10000 {
		t.Errorf("expected cash closing 10000, got %d", report.Rows[0].ClosingBalanceCents)
	}
	if report.Rows[1].ClosingBalanceCents != -10000 {
		t.Errorf("expected sales closing -10000, got %d", report.Rows[1].ClosingBalanceCents)
	}
}

func TestTrialBalanceService_UnbalancedLedger(t *testing.T) {
	svc := usecase.NewTrialBalanceService()
	periodStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	lines := []domain.TrialBalanceLine{
		{
			AccountCode:      "1000",
			AccountName:      "Cash",
			AccountType:      domain.AccountTypeAsset,
			Currency:         domain.CurrencyUSD,
			PeriodDebitCents: 10000,
		},
		{
			AccountCode:       "4000",
			AccountName:       "Sales",
			AccountType:       domain.AccountTypeRevenue,
			Currency:          domain.CurrencyUSD,
			PeriodCreditCents: 5000,
		},
	}

	_, err := svc.BuildReport(lines, periodStart, periodEnd)

	var unbalanced *domain.UnbalancedLedgerError
	if !errors.As(err, &unbalanced) {
		t.Fatalf("expected UnbalancedLedgerError, got %v", err)
	}
	if unbalanced.TotalDebitCents != 10000 || unbalanced.TotalCreditCents != 5000 {
		t.Errorf("expected totals 10000/5000, got %d/%d", unbalanced.TotalDebitCents, unbalanced.TotalCreditCents)
	}
	if domain.ErrorCode(err) != domain.CodeUnbalancedLedger {
		t.Errorf("expected code %s, got %s", domain.CodeUnbalancedLedger, domain.ErrorCode(err))
	}
}

func TestTrialBalanceService_OpeningBalancesCarryThrough(t *testing.T) {
	svc := usecase.NewTrialBalanceService()
	periodStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	lines := []domain.TrialBalanceLine{
		{
			AccountCode:       "1000",
			AccountName:       "Cash",
			AccountType:       domain.AccountTypeAsset,
			Currency:          domain.CurrencyUSD,
			OpeningDebitCents: 50000,
			PeriodDebitCents:  10000,
			PeriodCreditCents: 2000,
		},
		{
			AccountCode:        "3000",
			AccountName:        "Equity",
			AccountType:        domain.AccountTypeEquity,
			Currency:           domain.CurrencyUSD,
			OpeningCreditCents: 50000,
			PeriodCreditCents:  8000,
		},
	}

	report, err := svc.BuildReport(lines, periodStart, periodEnd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Rows[0].OpeningBalanceCents != 50000 {
		t.Errorf("expected opening 50000, got %d", report.Rows[0].OpeningBalanceCents)
	}
	if report.Rows[0].ClosingBalanceCents != 58000 {
		t.Errorf("expected closing 58000, got %d", report.Rows[0].ClosingBalanceCents)
	}
	if report.Rows[1].ClosingBalanceCents != -58000 {
		t.Errorf("expected closing -58000, got %d", report.Rows[1].ClosingBalanceCents)
	}
}
