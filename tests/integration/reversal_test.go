package integration

import (
	"context"
	"testing"
	"time"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
	"github.com/iho/coreledger/tests/testutil"
)

func TestReverseJournalEntry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	stack := newLedgerStack(testDB)
	tenantID := seedTenant(ctx, t, testDB)

	posted, err := stack.createSvc.Handle(ctx, postingCommand(tenantID, "entity-1", testutil.GenerateID()))
	if err != nil {
		t.Fatalf("failed to post entry: %v", err)
	}

	reversed, err := stack.reverseSvc.Handle(ctx, usecase.ReverseJournalEntryCommand{
		TenantID:       tenantID,
		JournalEntryID: posted.JournalEntryID,
		PostingDate:    time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		UserID:         "user-1",
	})
	if err != nil {
		t.Fatalf("failed to reverse entry: %v", err)
	}
	if reversed.OriginalEntryID != posted.JournalEntryID {
		t.Errorf("expected original %s, got %s", posted.JournalEntryID, reversed.OriginalEntryID)
	}
	if reversed.TotalCents != 10000 {
		t.Errorf("expected total 10000, got %d", reversed.TotalCents)
	}

	// The reversal is a first-class entry with swapped sides.
	reversal, err := stack.entryRepo.GetByID(ctx, tenantID, reversed.ReversalEntryID)
	if err != nil {
		t.Fatalf("failed to load reversal: %v", err)
	}
	if reversal.ReversalOf != posted.JournalEntryID {
		t.Errorf("expected ReversalOf %s, got %s", posted.JournalEntryID, reversal.ReversalOf)
	}
	byAccount := map[string]domain.JournalEntryLine{}
	for _, line := range reversal.Lines {
		byAccount[line.AccountCode] = line
	}
	if byAccount["1000"].Credit.Cents() != 10000 {
		t.Errorf("expected cash credit 10000, got %d", byAccount["1000"].Credit.Cents())
	}
	if byAccount["4000"].Debit.Cents() != 10000 {
		t.Errorf("expected revenue debit 10000, got %d", byAccount["4000"].Debit.Cents())
	}

	// Balances net to zero on the reversal date but keep their history.
	after, err := stack.balances.GetBalanceAt(ctx, tenantID, "entity-1", "1000", time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("failed to get balance after reversal: %v", err)
	}
	if after.Cents() != 0 {
		t.Errorf("expected zero balance after reversal, got %d", after.Cents())
	}

	before, err := stack.balances.GetBalanceAt(ctx, tenantID, "entity-1", "1000", time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("failed to get balance before reversal: %v", err)
	}
	if before.Cents() != 10000 {
		t.Errorf("expected 10000 before the reversal date, got %d", before.Cents())
	}
}

func TestReverseJournalEntry_UnknownEntry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	stack := newLedgerStack(testDB)
	tenantID := seedTenant(ctx, t, testDB)

	_, err := stack.reverseSvc.Handle(ctx, usecase.ReverseJournalEntryCommand{
		TenantID:       tenantID,
		JournalEntryID: testutil.GenerateID(),
		PostingDate:    time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		UserID:         "user-1",
	})
	if err == nil {
		t.Fatal("expected error for unknown entry")
	}
}
