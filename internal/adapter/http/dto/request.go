package dto

import (
	"fmt"
	"time"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

const dateLayout = "2006-01-02"

// PostJournalEntryRequest represents a request to post a journal entry.
// Amounts are integer minor units; the idempotency key travels in the
// Idempotency-Key header, not the body.
type PostJournalEntryRequest struct {
	EntityID             string             `json:"entity_id"`
	PostingDate          string             `json:"posting_date"`
	Currency             string             `json:"currency"`
	Lines                []JournalEntryLine `json:"lines"`
	Description          string             `json:"description,omitempty"`
	SourceModule         string             `json:"source_module,omitempty"`
	SourceDocumentID     string             `json:"source_document_id,omitempty"`
	SourceDocumentType   string             `json:"source_document_type,omitempty"`
	IsIntercompany       bool               `json:"is_intercompany,omitempty"`
	CounterpartyEntityID string             `json:"counterparty_entity_id,omitempty"`
}

// JournalEntryLine is one requested debit or credit.
type JournalEntryLine struct {
	AccountCode string `json:"account_code"`
	DebitCents  int64  `json:"debit_cents"`
	CreditCents int64  `json:"credit_cents"`
	CostCenter  string `json:"cost_center,omitempty"`
	Description string `json:"description,omitempty"`
}

// ToCommand converts the request into the posting command. Caller
// identity and the idempotency key come from the request envelope.
func (r *PostJournalEntryRequest) ToCommand(tenantID, userID, idempotencyKey string, permissions []string) (usecase.CreateJournalEntryCommand, error) {
	postingDate, err := parseDate(r.PostingDate)
	if err != nil {
		return usecase.CreateJournalEntryCommand{}, err
	}

	lines := make([]usecase.CommandLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = usecase.CommandLine{
			AccountCode: l.AccountCode,
			DebitCents:  l.DebitCents,
			CreditCents: l.CreditCents,
			CostCenter:  l.CostCenter,
			Description: l.Description,
		}
	}

	return usecase.CreateJournalEntryCommand{
		TenantID:             tenantID,
		EntityID:             r.EntityID,
		PostingDate:          postingDate,
		Lines:                lines,
		Currency:             domain.Currency(r.Currency),
		Description:          r.Description,
		SourceModule:         r.SourceModule,
		SourceDocumentID:     r.SourceDocumentID,
		SourceDocumentType:   r.SourceDocumentType,
		IsIntercompany:       r.IsIntercompany,
		CounterpartyEntityID: r.CounterpartyEntityID,
		IdempotencyKey:       idempotencyKey,
		UserID:               userID,
		Permissions:          permissions,
	}, nil
}

// ReverseJournalEntryRequest represents a request to reverse an entry.
type ReverseJournalEntryRequest struct {
	PostingDate string `json:"posting_date"`
}

// ToCommand converts the request into the reversal command.
func (r *ReverseJournalEntryRequest) ToCommand(tenantID, entryID, userID string, permissions []string) (usecase.ReverseJournalEntryCommand, error) {
	postingDate, err := parseDate(r.PostingDate)
	if err != nil {
		return usecase.ReverseJournalEntryCommand{}, err
	}

	return usecase.ReverseJournalEntryCommand{
		TenantID:       tenantID,
		JournalEntryID: entryID,
		PostingDate:    postingDate,
		UserID:         userID,
		Permissions:    permissions,
	}, nil
}

// TransitionPeriodRequest represents a request to change a period's
// posting status.
type TransitionPeriodRequest struct {
	Status string `json:"status"`
}

// ToCommand converts the request into the transition command.
func (r *TransitionPeriodRequest) ToCommand(tenantID, periodID, userID string) usecase.TransitionPeriodCommand {
	return usecase.TransitionPeriodCommand{
		TenantID: tenantID,
		PeriodID: periodID,
		Status:   domain.PeriodStatus(r.Status),
		UserID:   userID,
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}
