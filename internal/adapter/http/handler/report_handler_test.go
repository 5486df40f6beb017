package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/coreledger/internal/adapter/http/dto"
	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
	"github.com/iho/coreledger/internal/usecase/mocks"
)

type reportHandlerFixture struct {
	router           chi.Router
	trialBalanceRepo *mocks.MockTrialBalanceRepository
	entityRepo       *mocks.MockEntityRepository
	entryRepo        *mocks.MockJournalEntryRepository
}

func newReportHandlerFixture(t *testing.T) *reportHandlerFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	trialBalanceRepo := mocks.NewMockTrialBalanceRepository(ctrl)
	entityRepo := mocks.NewMockEntityRepository()
	clock := mocks.NewMockClock(time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC))

	entryRepo := mocks.NewMockJournalEntryRepository()
	h := NewReportHandler(
		trialBalanceRepo,
		usecase.NewTrialBalanceService(),
		usecase.NewConsolidatedBalanceSheetService(entityRepo, trialBalanceRepo, usecase.NewConsolidationService()),
		usecase.NewClosingService(trialBalanceRepo, nil, mocks.NewMockIDGenerator(), clock),
		usecase.NewEliminationService(entryRepo, mocks.NewMockIDGenerator(), clock),
	)

	r := chi.NewRouter()
	r.Get("/reports/trial-balance", h.TrialBalance)
	r.Get("/reports/balance-sheet/consolidated", h.ConsolidatedBalanceSheet)
	r.Get("/reports/closing-preview", h.ClosingPreview)
	r.Get("/reports/elimination-preview", h.EliminationPreview)

	return &reportHandlerFixture{router: r, trialBalanceRepo: trialBalanceRepo, entityRepo: entityRepo, entryRepo: entryRepo}
}

func (f *reportHandlerFixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("X-Tenant-ID", "tenant-1")
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestReportHandler_TrialBalance(t *testing.T) {
	f := newReportHandlerFixture(t)

	periodStart := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	f.trialBalanceRepo.EXPECT().
		GetTrialBalanceLines(gomock.Any(), "tenant-1", "entity-1", periodStart, periodEnd).
		Return([]domain.TrialBalanceLine{
			{AccountCode: "1000", AccountName: "Cash", AccountType: domain.AccountTypeAsset, Currency: domain.CurrencyUSD, PeriodDebitCents: 10000},
			{AccountCode: "4000", AccountName: "Sales", AccountType: domain.AccountTypeRevenue, Currency: domain.CurrencyUSD, PeriodCreditCents: 10000},
		}, nil)

	rec := f.get(t, "/reports/trial-balance?entity_id=entity-1&period_start=2024-03-01&period_end=2024-03-31")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.TrialBalanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "2024-03-01", resp.PeriodStart)
	assert.Equal(t, int64(10000), resp.TotalDebitCents)
	assert.Equal(t, int64(10000), resp.TotalCreditCents)
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "1000", resp.Rows[0].AccountCode)
	assert.Equal(t, int64(10000), resp.Rows[0].ClosingBalanceCents)
}

func TestReportHandler_TrialBalance_MissingEntity(t *testing.T) {
	f := newReportHandlerFixture(t)

	rec := f.get(t, "/reports/trial-balance?period_start=2024-03-01&period_end=2024-03-31")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandler_TrialBalance_Unbalanced(t *testing.T) {
	f := newReportHandlerFixture(t)

	f.trialBalanceRepo.EXPECT().
		GetTrialBalanceLines(gomock.Any(), "tenant-1", "entity-1", gomock.Any(), gomock.Any()).
		Return([]domain.TrialBalanceLine{
			{AccountCode: "1000", AccountName: "Cash", AccountType: domain.AccountTypeAsset, Currency: domain.CurrencyUSD, PeriodDebitCents: 10000},
		}, nil)

	rec := f.get(t, "/reports/trial-balance?entity_id=entity-1&period_start=2024-03-01&period_end=2024-03-31")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.CodeUnbalancedLedger, resp.Code)
}

func TestReportHandler_ConsolidatedBalanceSheet(t *testing.T) {
	f := newReportHandlerFixture(t)

	asOf := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	parent, err := domain.NewEntity("parent", "tenant-1", "Parent Co", "", decimal.RequireFromString("100"), domain.ConsolidationFull, domain.CurrencyUSD, asOf)
	require.NoError(t, err)
	sub, err := domain.NewEntity("sub", "tenant-1", "Sub Co", "parent", decimal.RequireFromString("80"), domain.ConsolidationFull, domain.CurrencyUSD, asOf)
	require.NoError(t, err)
	f.entityRepo.Add(parent)
	f.entityRepo.Add(sub)

	f.trialBalanceRepo.EXPECT().GetAccountBalances(gomock.Any(), "tenant-1", "parent", asOf).Return(nil, nil)
	f.trialBalanceRepo.EXPECT().GetAccountBalances(gomock.Any(), "tenant-1", "sub", asOf).Return([]domain.AccountBalance{
		{AccountCode: "1000", AccountName: "Cash", AccountType: domain.AccountTypeAsset, Currency: domain.CurrencyUSD, BalanceCents: 100000},
		{AccountCode: "3000", AccountName: "Equity", AccountType: domain.AccountTypeEquity, Currency: domain.CurrencyUSD, BalanceCents: -100000},
	}, nil)

	rec := f.get(t, "/reports/balance-sheet/consolidated?parent_entity_id=parent&as_of=2024-12-31")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.BalanceSheetResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "parent", resp.ParentEntityID)
	assert.Equal(t, int64(20000), resp.NCICents)
	assert.NotEmpty(t, resp.Lines)
}

func TestReportHandler_ConsolidatedBalanceSheet_UnknownParent(t *testing.T) {
	f := newReportHandlerFixture(t)

	rec := f.get(t, "/reports/balance-sheet/consolidated?parent_entity_id=nope&as_of=2024-12-31")
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestReportHandler_ClosingPreview(t *testing.T) {
	f := newReportHandlerFixture(t)

	f.trialBalanceRepo.EXPECT().
		GetTrialBalanceLines(gomock.Any(), "tenant-1", "entity-1", gomock.Any(), gomock.Any()).
		Return([]domain.TrialBalanceLine{
			{AccountCode: "4000", AccountName: "Sales", AccountType: domain.AccountTypeRevenue, Currency: domain.CurrencyUSD, PeriodCreditCents: 50000},
			{AccountCode: "5000", AccountName: "Rent", AccountType: domain.AccountTypeExpense, Currency: domain.CurrencyUSD, PeriodDebitCents: 20000},
		}, nil)

	rec := f.get(t, "/reports/closing-preview?entity_id=entity-1&retained_earnings_account=3100&currency=USD&period_start=2024-03-01&period_end=2024-03-31")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.ClosingPreviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(50000), resp.TotalRevenueCents)
	assert.Equal(t, int64(20000), resp.TotalExpenseCents)
	assert.Equal(t, int64(30000), resp.NetIncomeCents)
	require.NotNil(t, resp.Entry)
	assert.NotEmpty(t, resp.Entry.Lines)
}

func TestReportHandler_EliminationPreview(t *testing.T) {
	f := newReportHandlerFixture(t)

	debit, err := domain.NewFromCents(10000, domain.CurrencyUSD)
	require.NoError(t, err)
	credit, err := domain.NewFromCents(10000, domain.CurrencyUSD)
	require.NoError(t, err)
	entry, err := domain.NewJournalEntry(domain.NewJournalEntryParams{
		ID:                   "ic-1",
		TenantID:             "tenant-1",
		EntityID:             "sub-a",
		PostingDate:          time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Lines: []domain.JournalEntryLine{
			{ID: "l-1", AccountCode: "1200", Debit: debit, Credit: domain.Zero(domain.CurrencyUSD)},
			{ID: "l-2", AccountCode: "2200", Debit: domain.Zero(domain.CurrencyUSD), Credit: credit},
		},
		IsIntercompany:       true,
		CounterpartyEntityID: "sub-b",
		Now:                  time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, f.entryRepo.Create(context.Background(), nil, entry))

	rec := f.get(t, "/reports/elimination-preview?entity_id=group&elimination_account=9999&from=2024-03-01&to=2024-03-31")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.EliminationPreviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Entries, 1)
	assert.Len(t, resp.Entries[0].Lines, 2)
}

func TestReportHandler_EliminationPreview_MissingAccount(t *testing.T) {
	f := newReportHandlerFixture(t)

	rec := f.get(t, "/reports/elimination-preview?entity_id=group&from=2024-03-01&to=2024-03-31")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportHandler_ClosingPreview_MissingRetainedEarnings(t *testing.T) {
	f := newReportHandlerFixture(t)

	rec := f.get(t, "/reports/closing-preview?entity_id=entity-1&currency=USD&period_start=2024-03-01&period_end=2024-03-31")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
