package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
	"github.com/iho/coreledger/internal/usecase/mocks"
)

func addEntity(t *testing.T, repo *mocks.MockEntityRepository, id, parentID, ownership string, method domain.ConsolidationMethod) {
	t.Helper()
	entity, err := domain.NewEntity(id, "tenant-1", "Entity "+id, parentID, decimal.RequireFromString(ownership), method, domain.CurrencyUSD, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.Add(entity)
}

func TestConsolidatedBalanceSheetService_FullMethod(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	asOf := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	entityRepo := mocks.NewMockEntityRepository()
	addEntity(t, entityRepo, "parent", "", "100", domain.ConsolidationFull)
	addEntity(t, entityRepo, "sub", "parent", "80", domain.ConsolidationFull)

	trialBalanceRepo := mocks.NewMockTrialBalanceRepository(ctrl)
	// Parent holds nothing; the subsidiary has $1000 of net assets.
	trialBalanceRepo.EXPECT().GetAccountBalances(gomock.Any(), "tenant-1", "parent", asOf).Return(nil, nil)
	trialBalanceRepo.EXPECT().GetAccountBalances(gomock.Any(), "tenant-1", "sub", asOf).Return([]domain.AccountBalance{
		{AccountCode: "1000", AccountName: "Cash", AccountType: domain.AccountTypeAsset, Currency: domain.CurrencyUSD, BalanceCents: 100000},
		{AccountCode: "3000", AccountName: "Equity", AccountType: domain.AccountTypeEquity, Currency: domain.CurrencyUSD, BalanceCents: -100000},
	}, nil)

	svc := usecase.NewConsolidatedBalanceSheetService(entityRepo, trialBalanceRepo, usecase.NewConsolidationService())

	sheet, err := svc.Build(context.Background(), "tenant-1", "parent", asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sheet.NCICents != 20000 {
		t.Errorf("expected NCI 20000, got %d", sheet.NCICents)
	}

	byCode := map[string]usecase.BalanceSheetLine{}
	for _, line := range sheet.Lines {
		byCode[line.AccountCode] = line
	}
	if byCode["1000"].BalanceCents != 100000 {
		t.Errorf("expected full rollup of cash 100000, got %d", byCode["1000"].BalanceCents)
	}
	nci, ok := byCode[usecase.NCIAccountCode]
	if !ok {
		t.Fatal("expected synthetic NCI line")
	}
	if nci.BalanceCents != -20000 {
		t.Errorf("expected NCI equity line -20000, got %d", nci.BalanceCents)
	}
	if nci.AccountType != domain.AccountTypeEquity {
		t.Errorf("expected NCI to be equity, got %s", nci.AccountType)
	}
}

func TestConsolidatedBalanceSheetService_ProportionalMethod(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	asOf := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	entityRepo := mocks.NewMockEntityRepository()
	addEntity(t, entityRepo, "parent", "", "100", domain.ConsolidationFull)
	addEntity(t, entityRepo, "jv", "parent", "50", domain.ConsolidationProportional)

	trialBalanceRepo := mocks.NewMockTrialBalanceRepository(ctrl)
	trialBalanceRepo.EXPECT().GetAccountBalances(gomock.Any(), "tenant-1", "parent", asOf).Return([]domain.AccountBalance{
		{AccountCode: "1000", AccountName: "Cash", AccountType: domain.AccountTypeAsset, Currency: domain.CurrencyUSD, BalanceCents: 50000},
	}, nil)
	trialBalanceRepo.EXPECT().GetAccountBalances(gomock.Any(), "tenant-1", "jv", asOf).Return([]domain.AccountBalance{
		{AccountCode: "1000", AccountName: "Cash", AccountType: domain.AccountTypeAsset, Currency: domain.CurrencyUSD, BalanceCents: 30000},
	}, nil)

	svc := usecase.NewConsolidatedBalanceSheetService(entityRepo, trialBalanceRepo, usecase.NewConsolidationService())

	sheet, err := svc.Build(context.Background(), "tenant-1", "parent", asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sheet.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(sheet.Lines))
	}
	// 50000 + 50% of 30000.
	if sheet.Lines[0].BalanceCents != 65000 {
		t.Errorf("expected 65000, got %d", sheet.Lines[0].BalanceCents)
	}
	if sheet.NCICents != 0 {
		t.Errorf("expected no NCI for proportional method, got %d", sheet.NCICents)
	}
}

func TestConsolidatedBalanceSheetService_EquityMethod(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	asOf := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	entityRepo := mocks.NewMockEntityRepository()
	addEntity(t, entityRepo, "parent", "", "100", domain.ConsolidationFull)
	addEntity(t, entityRepo, "assoc", "parent", "30", domain.ConsolidationEquity)

	trialBalanceRepo := mocks.NewMockTrialBalanceRepository(ctrl)
	trialBalanceRepo.EXPECT().GetAccountBalances(gomock.Any(), "tenant-1", "parent", asOf).Return(nil, nil)
	trialBalanceRepo.EXPECT().GetAccountBalances(gomock.Any(), "tenant-1", "assoc", asOf).Return([]domain.AccountBalance{
		{AccountCode: "1000", AccountName: "Cash", AccountType: domain.AccountTypeAsset, Currency: domain.CurrencyUSD, BalanceCents: 100000},
		{AccountCode: "2000", AccountName: "Loans", AccountType: domain.AccountTypeLiability, Currency: domain.CurrencyUSD, BalanceCents: -40000},
	}, nil)

	svc := usecase.NewConsolidatedBalanceSheetService(entityRepo, trialBalanceRepo, usecase.NewConsolidationService())

	sheet, err := svc.Build(context.Background(), "tenant-1", "parent", asOf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sheet.Lines) != 1 {
		t.Fatalf("expected single investment line, got %d", len(sheet.Lines))
	}
	line := sheet.Lines[0]
	if line.AccountCode != usecase.InvestmentAccountCode {
		t.Errorf("expected investment line, got %s", line.AccountCode)
	}
	// 30% of 60000 net assets.
	if line.BalanceCents != 18000 {
		t.Errorf("expected 18000, got %d", line.BalanceCents)
	}
}

func TestConsolidatedBalanceSheetService_UnknownParent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entityRepo := mocks.NewMockEntityRepository()
	svc := usecase.NewConsolidatedBalanceSheetService(entityRepo, mocks.NewMockTrialBalanceRepository(ctrl), usecase.NewConsolidationService())

	_, err := svc.Build(context.Background(), "tenant-1", "nope", time.Now())
	if !errors.Is(err, domain.ErrEntityNotFound) {
		t.Errorf("expected ErrEntityNotFound, got %v", err)
	}
}
