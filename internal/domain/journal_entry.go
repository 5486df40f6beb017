package domain

import (
	"fmt"
	"sort"
	"time"
)

// JournalEntryLine is a single debit or credit within a journal entry.
// Exactly one of Debit and Credit is non-zero, and both carry the entry's
// currency. Lines are owned exclusively by their entry.
type JournalEntryLine struct {
	ID          string
	EntryID     string
	AccountCode string
	Debit       Money
	Credit      Money
	CostCenter  string
	Description string
}

// JournalEntry is an immutable double-entry unit. It can only be built
// through NewJournalEntry, which enforces the double-entry invariant;
// there is no mutator that can break it afterwards. A correction is a new
// reversal entry, never a change to an existing one.
type JournalEntry struct {
	ID                   string
	TenantID             string
	EntityID             string
	PostingDate          time.Time
	Lines                []JournalEntryLine
	Description          string
	SourceModule         string
	SourceDocumentID     string
	SourceDocumentType   string
	IsIntercompany       bool
	CounterpartyEntityID string
	ReversalOf           string
	Version              int
	CreatedBy            string
	IdempotencyKey       string
	CreatedAt            time.Time
}

// NewJournalEntryParams carries the inputs of the validating factory.
type NewJournalEntryParams struct {
	ID                   string
	TenantID             string
	EntityID             string
	PostingDate          time.Time
	Lines                []JournalEntryLine
	Description          string
	SourceModule         string
	SourceDocumentID     string
	SourceDocumentType   string
	IsIntercompany       bool
	CounterpartyEntityID string
	ReversalOf           string
	CreatedBy            string
	IdempotencyKey       string
	Now                  time.Time
}

// NewJournalEntry validates and builds a journal entry. Validation order:
// line count, single currency per line set, exact debit/credit balance,
// then the intercompany counterparty requirement.
func NewJournalEntry(p NewJournalEntryParams) (*JournalEntry, error) {
	if len(p.Lines) < 2 {
		return nil, fmt.Errorf("journal entry requires at least 2 lines, got %d", len(p.Lines))
	}

	currency := p.Lines[0].currency()
	if !currency.IsValid() {
		return nil, fmt.Errorf("%w: line 0", ErrInvalidCurrency)
	}

	var debits, credits int64
	for i, line := range p.Lines {
		if err := line.validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		if line.currency() != currency {
			return nil, fmt.Errorf("line %d: %w: %s vs %s", i, ErrCurrencyMismatch, line.currency(), currency)
		}
		debits += line.Debit.Cents()
		credits += line.Credit.Cents()
	}

	if debits != credits {
		return nil, &UnbalancedEntryError{DebitCents: debits, CreditCents: credits}
	}

	if p.IsIntercompany && p.CounterpartyEntityID == "" {
		return nil, ErrIntercompanyNoCounterparty
	}

	lines := make([]JournalEntryLine, len(p.Lines))
	copy(lines, p.Lines)
	for i := range lines {
		lines[i].EntryID = p.ID
	}

	return &JournalEntry{
		ID:                   p.ID,
		TenantID:             p.TenantID,
		EntityID:             p.EntityID,
		PostingDate:          p.PostingDate,
		Lines:                lines,
		Description:          p.Description,
		SourceModule:         p.SourceModule,
		SourceDocumentID:     p.SourceDocumentID,
		SourceDocumentType:   p.SourceDocumentType,
		IsIntercompany:       p.IsIntercompany,
		CounterpartyEntityID: p.CounterpartyEntityID,
		ReversalOf:           p.ReversalOf,
		Version:              1,
		CreatedBy:            p.CreatedBy,
		IdempotencyKey:       p.IdempotencyKey,
		CreatedAt:            p.Now,
	}, nil
}

func (l JournalEntryLine) currency() Currency {
	if !l.Debit.IsZero() || l.Credit.Currency() == "" {
		return l.Debit.Currency()
	}
	return l.Credit.Currency()
}

func (l JournalEntryLine) validate() error {
	if l.AccountCode == "" {
		return fmt.Errorf("account code is required")
	}
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return ErrNegativeAmount
	}
	debitSet := !l.Debit.IsZero()
	creditSet := !l.Credit.IsZero()
	if debitSet == creditSet {
		return fmt.Errorf("exactly one of debit and credit must be non-zero")
	}
	if debitSet && l.Credit.Currency() != "" && l.Credit.Currency() != l.Debit.Currency() {
		return ErrCurrencyMismatch
	}
	if creditSet && l.Debit.Currency() != "" && l.Debit.Currency() != l.Credit.Currency() {
		return ErrCurrencyMismatch
	}
	return nil
}

// Currency returns the single currency of the entry.
func (e *JournalEntry) Currency() Currency {
	return e.Lines[0].currency()
}

// TotalDebits sums the debit side of all lines.
func (e *JournalEntry) TotalDebits() Money {
	var cents int64
	for _, line := range e.Lines {
		cents += line.Debit.Cents()
	}
	return Money{cents: cents, currency: e.Currency()}
}

// TotalCredits sums the credit side of all lines.
func (e *JournalEntry) TotalCredits() Money {
	var cents int64
	for _, line := range e.Lines {
		cents += line.Credit.Cents()
	}
	return Money{cents: cents, currency: e.Currency()}
}

// AffectedAccountCodes returns the distinct account codes touched by the
// entry, sorted.
func (e *JournalEntry) AffectedAccountCodes() []string {
	seen := make(map[string]bool, len(e.Lines))
	var codes []string
	for _, line := range e.Lines {
		if !seen[line.AccountCode] {
			seen[line.AccountCode] = true
			codes = append(codes, line.AccountCode)
		}
	}
	sort.Strings(codes)
	return codes
}

// Reverse builds a new entry whose lines have debit and credit swapped.
// The original entry is untouched.
func (e *JournalEntry) Reverse(idGen func() string, postingDate, now time.Time, createdBy string) (*JournalEntry, error) {
	lines := make([]JournalEntryLine, len(e.Lines))
	for i, line := range e.Lines {
		lines[i] = JournalEntryLine{
			ID:          idGen(),
			AccountCode: line.AccountCode,
			Debit:       line.Credit,
			Credit:      line.Debit,
			CostCenter:  line.CostCenter,
			Description: line.Description,
		}
	}

	return NewJournalEntry(NewJournalEntryParams{
		ID:                   idGen(),
		TenantID:             e.TenantID,
		EntityID:             e.EntityID,
		PostingDate:          postingDate,
		Lines:                lines,
		Description:          "Reversal of " + e.ID,
		SourceModule:         e.SourceModule,
		SourceDocumentID:     e.SourceDocumentID,
		SourceDocumentType:   e.SourceDocumentType,
		IsIntercompany:       e.IsIntercompany,
		CounterpartyEntityID: e.CounterpartyEntityID,
		ReversalOf:           e.ID,
		CreatedBy:            createdBy,
		Now:                  now,
	})
}
