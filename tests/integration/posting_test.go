package integration

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/coreledger/internal/adapter/repository/postgres"
	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
	"github.com/iho/coreledger/tests/testutil"
)

// ledgerStack wires the posting path against the real database.
type ledgerStack struct {
	createSvc  *usecase.CreateJournalEntryService
	reverseSvc *usecase.ReverseJournalEntryService
	balances   *usecase.TemporalBalanceService
	entryRepo  *postgres.JournalEntryRepository
	outboxRepo *postgres.OutboxRepository
	auditRepo  *postgres.AuditRepository
}

func newLedgerStack(testDB *testutil.TestDB) *ledgerStack {
	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	entryRepo := postgres.NewJournalEntryRepository(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	periodRepo := postgres.NewPeriodRepository(pool)
	balanceRepo := postgres.NewTemporalBalanceRepository(pool)
	idemRepo := postgres.NewIdempotencyRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	idGen := postgres.NewULIDGenerator()
	clock := postgres.NewSystemClock()
	retrier := postgres.NewRetrier(zerolog.Nop())

	balances := usecase.NewTemporalBalanceService(balanceRepo, idGen, clock)
	idempotency := usecase.NewIdempotencyService(idemRepo, nil, clock, 24*time.Hour)

	return &ledgerStack{
		createSvc: usecase.NewCreateJournalEntryService(
			txManager, entryRepo, accountRepo, periodRepo,
			balances, idempotency, outboxRepo, auditRepo,
			idGen, clock, retrier, nil,
		),
		reverseSvc: usecase.NewReverseJournalEntryService(
			txManager, entryRepo, periodRepo, balances,
			outboxRepo, auditRepo, idGen, clock, retrier, nil,
		),
		balances:   balances,
		entryRepo:  entryRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
	}
}

// seedTenant creates the chart of accounts and an open period for March
// 2024 under a fresh tenant, returning the tenant ID.
func seedTenant(ctx context.Context, t *testing.T, testDB *testutil.TestDB) string {
	t.Helper()

	tenantID := testutil.GenerateID()
	testDB.CreateTestAccount(ctx, tenantID, "1000", "Cash", domain.AccountTypeAsset, domain.NormalBalanceDebit)
	testDB.CreateTestAccount(ctx, tenantID, "4000", "Sales", domain.AccountTypeRevenue, domain.NormalBalanceCredit)
	testDB.CreateTestAccount(ctx, tenantID, "5000", "Rent", domain.AccountTypeExpense, domain.NormalBalanceDebit)
	testDB.CreateTestPeriod(ctx, tenantID, "2024-03",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		domain.PeriodStatusOpen)
	return tenantID
}

func postingCommand(tenantID, entityID, idempotencyKey string) usecase.CreateJournalEntryCommand {
	return usecase.CreateJournalEntryCommand{
		TenantID:    tenantID,
		EntityID:    entityID,
		PostingDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		Currency:    domain.CurrencyUSD,
		Lines: []usecase.CommandLine{
			{AccountCode: "1000", DebitCents: 10000},
			{AccountCode: "4000", CreditCents: 10000},
		},
		Description:    "March sales",
		SourceModule:   "sales",
		IdempotencyKey: idempotencyKey,
		UserID:         "user-1",
	}
}

func TestPostJournalEntry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	stack := newLedgerStack(testDB)
	tenantID := seedTenant(ctx, t, testDB)

	result, err := stack.createSvc.Handle(ctx, postingCommand(tenantID, "entity-1", testutil.GenerateID()))
	if err != nil {
		t.Fatalf("failed to post entry: %v", err)
	}
	if result.WasIdempotent {
		t.Error("expected fresh posting, got idempotent replay")
	}
	if result.TotalDebitCents != 10000 || result.TotalCreditCents != 10000 {
		t.Errorf("expected totals 10000/10000, got %d/%d", result.TotalDebitCents, result.TotalCreditCents)
	}

	// Entry and lines round-trip with multi-tenant scoping.
	entry, err := stack.entryRepo.GetByID(ctx, tenantID, result.JournalEntryID)
	if err != nil {
		t.Fatalf("failed to load entry: %v", err)
	}
	if len(entry.Lines) != 2 {
		t.Errorf("expected 2 lines, got %d", len(entry.Lines))
	}
	if _, err := stack.entryRepo.GetByID(ctx, testutil.GenerateID(), result.JournalEntryID); err == nil {
		t.Error("expected entry to be invisible to other tenants")
	}

	// Balances reflect the posting.
	balance, err := stack.balances.GetBalanceAt(ctx, tenantID, "entity-1", "1000", time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("failed to get balance: %v", err)
	}
	if balance.Cents() != 10000 {
		t.Errorf("expected balance 10000, got %d", balance.Cents())
	}

	// The posting published an outbox event and an audit trail row.
	events, err := stack.outboxRepo.GetUnpublished(ctx, 100)
	if err != nil {
		t.Fatalf("failed to list outbox events: %v", err)
	}
	var found bool
	for _, e := range events {
		if e.TenantID == tenantID && e.EventType == domain.EventTypeJournalEntryPosted {
			found = true
		}
	}
	if !found {
		t.Error("expected a journal_entry.posted outbox event")
	}

	logs, err := stack.auditRepo.List(ctx, domain.AuditFilter{TenantID: tenantID, Limit: 10})
	if err != nil {
		t.Fatalf("failed to list audit logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 audit log, got %d", len(logs))
	}
	if logs[0].Action != string(domain.AuditActionEntryPost) {
		t.Errorf("expected post action, got %s", logs[0].Action)
	}
}

func TestPostJournalEntry_IdempotentReplay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	stack := newLedgerStack(testDB)
	tenantID := seedTenant(ctx, t, testDB)

	key := testutil.GenerateID()
	first, err := stack.createSvc.Handle(ctx, postingCommand(tenantID, "entity-1", key))
	if err != nil {
		t.Fatalf("failed to post entry: %v", err)
	}

	second, err := stack.createSvc.Handle(ctx, postingCommand(tenantID, "entity-1", key))
	if err != nil {
		t.Fatalf("failed to replay entry: %v", err)
	}
	if !second.WasIdempotent {
		t.Error("expected idempotent replay")
	}
	if second.JournalEntryID != first.JournalEntryID {
		t.Errorf("expected the same entry ID, got %s and %s", first.JournalEntryID, second.JournalEntryID)
	}

	// Only one balance version per account despite two commands.
	balance, err := stack.balances.GetBalanceAt(ctx, tenantID, "entity-1", "1000", time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("failed to get balance: %v", err)
	}
	if balance.Cents() != 10000 {
		t.Errorf("expected balance 10000 after replay, got %d", balance.Cents())
	}
}

func TestPostJournalEntry_ClosedPeriod(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	stack := newLedgerStack(testDB)

	tenantID := testutil.GenerateID()
	testDB.CreateTestAccount(ctx, tenantID, "1000", "Cash", domain.AccountTypeAsset, domain.NormalBalanceDebit)
	testDB.CreateTestAccount(ctx, tenantID, "4000", "Sales", domain.AccountTypeRevenue, domain.NormalBalanceCredit)
	testDB.CreateTestPeriod(ctx, tenantID, "2024-03",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		domain.PeriodStatusSoftClosed)

	_, err := stack.createSvc.Handle(ctx, postingCommand(tenantID, "entity-1", testutil.GenerateID()))
	if domain.ErrorCode(err) != domain.CodePeriodClosed {
		t.Fatalf("expected PERIOD_CLOSED, got %v", err)
	}

	// The override permission lets a period-close correction through.
	cmd := postingCommand(tenantID, "entity-1", testutil.GenerateID())
	cmd.Permissions = []string{domain.PermissionPostToClosedPeriod}
	if _, err := stack.createSvc.Handle(ctx, cmd); err != nil {
		t.Fatalf("expected override to succeed: %v", err)
	}
}
