package domain

import "time"

// Event types
const (
	EventTypeJournalEntryPosted   = "journal_entry.posted"
	EventTypeJournalEntryReversed = "journal_entry.reversed"
	EventTypePeriodClosed         = "accounting_period.closed"
)

// Aggregate types
const (
	AggregateTypeJournalEntry = "journal_entry"
	AggregateTypePeriod       = "accounting_period"
)

// OutboxEvent is a domain event staged in the same transaction as the
// state change that produced it, published asynchronously.
type OutboxEvent struct {
	ID            string
	TenantID      string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// JournalEntryPostedEvent payload
type JournalEntryPostedEvent struct {
	JournalEntryID   string   `json:"journal_entry_id"`
	TenantID         string   `json:"tenant_id"`
	EntityID         string   `json:"entity_id"`
	PostingDate      string   `json:"posting_date"`
	Currency         string   `json:"currency"`
	TotalDebitCents  int64    `json:"total_debit_cents"`
	TotalCreditCents int64    `json:"total_credit_cents"`
	AccountCodes     []string `json:"account_codes"`
	IsIntercompany   bool     `json:"is_intercompany"`
}

// JournalEntryReversedEvent payload
type JournalEntryReversedEvent struct {
	ReversalEntryID string `json:"reversal_entry_id"`
	OriginalEntryID string `json:"original_entry_id"`
	TenantID        string `json:"tenant_id"`
	EntityID        string `json:"entity_id"`
}
