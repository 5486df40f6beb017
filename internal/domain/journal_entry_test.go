package domain

import (
	"errors"
	"testing"
	"time"
)

func usd(t *testing.T, cents int64) Money {
	t.Helper()
	m, err := NewFromCents(cents, CurrencyUSD)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func eur(t *testing.T, cents int64) Money {
	t.Helper()
	m, err := NewFromCents(cents, CurrencyEUR)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func debitLine(t *testing.T, accountCode string, cents int64) JournalEntryLine {
	t.Helper()
	return JournalEntryLine{
		ID:          "line-" + accountCode + "-d",
		AccountCode: accountCode,
		Debit:       usd(t, cents),
		Credit:      Zero(CurrencyUSD),
	}
}

func creditLine(t *testing.T, accountCode string, cents int64) JournalEntryLine {
	t.Helper()
	return JournalEntryLine{
		ID:          "line-" + accountCode + "-c",
		AccountCode: accountCode,
		Debit:       Zero(CurrencyUSD),
		Credit:      usd(t, cents),
	}
}

func TestNewJournalEntry(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		params      NewJournalEntryParams
		expectError bool
		check       func(t *testing.T, err error)
	}{
		{
			name: "balanced two line entry",
			params: NewJournalEntryParams{
				ID:          "je-1",
				TenantID:    "tenant-1",
				EntityID:    "entity-1",
				PostingDate: now,
				Lines: []JournalEntryLine{
					debitLine(t, "1000", 10000),
					creditLine(t, "4000", 10000),
				},
				Now: now,
			},
		},
		{
			name: "single line rejected",
			params: NewJournalEntryParams{
				ID:          "je-2",
				TenantID:    "tenant-1",
				EntityID:    "entity-1",
				PostingDate: now,
				Lines:       []JournalEntryLine{debitLine(t, "1000", 10000)},
				Now:         now,
			},
			expectError: true,
		},
		{
			name: "unbalanced entry carries both totals",
			params: NewJournalEntryParams{
				ID:          "je-3",
				TenantID:    "tenant-1",
				EntityID:    "entity-1",
				PostingDate: now,
				Lines: []JournalEntryLine{
					debitLine(t, "1000", 10000),
					creditLine(t, "4000", 9999),
				},
				Now: now,
			},
			expectError: true,
			check: func(t *testing.T, err error) {
				var unbalanced *UnbalancedEntryError
				if !errors.As(err, &unbalanced) {
					t.Fatalf("expected UnbalancedEntryError, got %v", err)
				}
				if unbalanced.DebitCents != 10000 || unbalanced.CreditCents != 9999 {
					t.Errorf("expected totals 10000/9999, got %d/%d", unbalanced.DebitCents, unbalanced.CreditCents)
				}
			},
		},
		{
			name: "mixed currencies rejected",
			params: NewJournalEntryParams{
				ID:          "je-4",
				TenantID:    "tenant-1",
				EntityID:    "entity-1",
				PostingDate: now,
				Lines: []JournalEntryLine{
					debitLine(t, "1000", 10000),
					{
						ID:          "line-eur",
						AccountCode: "4000",
						Debit:       Zero(CurrencyEUR),
						Credit:      eur(t, 10000),
					},
				},
				Now: now,
			},
			expectError: true,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrCurrencyMismatch) {
					t.Errorf("expected ErrCurrencyMismatch, got %v", err)
				}
			},
		},
		{
			name: "line with both sides set rejected",
			params: NewJournalEntryParams{
				ID:          "je-5",
				TenantID:    "tenant-1",
				EntityID:    "entity-1",
				PostingDate: now,
				Lines: []JournalEntryLine{
					{
						ID:          "line-both",
						AccountCode: "1000",
						Debit:       usd(t, 5000),
						Credit:      usd(t, 5000),
					},
					debitLine(t, "2000", 0),
				},
				Now: now,
			},
			expectError: true,
		},
		{
			name: "intercompany without counterparty rejected",
			params: NewJournalEntryParams{
				ID:             "je-6",
				TenantID:       "tenant-1",
				EntityID:       "entity-1",
				PostingDate:    now,
				IsIntercompany: true,
				Lines: []JournalEntryLine{
					debitLine(t, "1000", 10000),
					creditLine(t, "4000", 10000),
				},
				Now: now,
			},
			expectError: true,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrIntercompanyNoCounterparty) {
					t.Errorf("expected ErrIntercompanyNoCounterparty, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry, err := NewJournalEntry(tt.params)

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.check != nil {
					tt.check(t, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !entry.TotalDebits().Equals(entry.TotalCredits()) {
				t.Errorf("expected balanced totals, got %s vs %s", entry.TotalDebits(), entry.TotalCredits())
			}
			for _, line := range entry.Lines {
				if line.EntryID != entry.ID {
					t.Errorf("expected line to reference entry %s, got %s", entry.ID, line.EntryID)
				}
			}
		})
	}
}

func TestJournalEntry_Reverse(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	original, err := NewJournalEntry(NewJournalEntryParams{
		ID:          "je-orig",
		TenantID:    "tenant-1",
		EntityID:    "entity-1",
		PostingDate: now,
		Lines: []JournalEntryLine{
			debitLine(t, "1000", 10000),
			creditLine(t, "4000", 10000),
		},
		Now: now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counter := 0
	idGen := func() string {
		counter++
		return "rev-id"
	}

	reversalDate := now.AddDate(0, 0, 1)
	reversal, err := original.Reverse(idGen, reversalDate, reversalDate, "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reversal.ReversalOf != original.ID {
		t.Errorf("expected ReversalOf %s, got %s", original.ID, reversal.ReversalOf)
	}
	if !reversal.PostingDate.Equal(reversalDate) {
		t.Errorf("expected posting date %v, got %v", reversalDate, reversal.PostingDate)
	}
	for i, line := range reversal.Lines {
		if !line.Debit.Equals(original.Lines[i].Credit) || !line.Credit.Equals(original.Lines[i].Debit) {
			t.Errorf("line %d: expected swapped sides", i)
		}
	}

	// The original must be untouched.
	if original.Lines[0].Debit.Cents() != 10000 {
		t.Error("expected original entry to stay unchanged")
	}
}

func TestJournalEntry_AffectedAccountCodes(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	entry, err := NewJournalEntry(NewJournalEntryParams{
		ID:          "je-codes",
		TenantID:    "tenant-1",
		EntityID:    "entity-1",
		PostingDate: now,
		Lines: []JournalEntryLine{
			debitLine(t, "2000", 5000),
			debitLine(t, "1000", 5000),
			creditLine(t, "2000", 10000),
		},
		Now: now,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	codes := entry.AffectedAccountCodes()
	want := []string{"1000", "2000"}
	if len(codes) != len(want) {
		t.Fatalf("expected %d codes, got %d", len(want), len(codes))
	}
	for i, code := range want {
		if codes[i] != code {
			t.Errorf("expected code %s at %d, got %s", code, i, codes[i])
		}
	}
}
