package dto

import (
	"time"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

// PostJournalEntryResponse is the posting outcome.
type PostJournalEntryResponse struct {
	JournalEntryID   string `json:"journal_entry_id"`
	TotalDebitCents  int64  `json:"total_debit_cents"`
	TotalCreditCents int64  `json:"total_credit_cents"`
	Currency         string `json:"currency"`
	WasIdempotent    bool   `json:"was_idempotent"`
}

// PostResultFromUseCase converts a posting result to a response.
func PostResultFromUseCase(r *usecase.CreateJournalEntryResult) *PostJournalEntryResponse {
	return &PostJournalEntryResponse{
		JournalEntryID:   r.JournalEntryID,
		TotalDebitCents:  r.TotalDebitCents,
		TotalCreditCents: r.TotalCreditCents,
		Currency:         r.Currency.String(),
		WasIdempotent:    r.WasIdempotent,
	}
}

// ReverseJournalEntryResponse is the reversal outcome.
type ReverseJournalEntryResponse struct {
	ReversalEntryID string `json:"reversal_entry_id"`
	OriginalEntryID string `json:"original_entry_id"`
	TotalCents      int64  `json:"total_cents"`
	Currency        string `json:"currency"`
}

// ReverseResultFromUseCase converts a reversal result to a response.
func ReverseResultFromUseCase(r *usecase.ReverseJournalEntryResult) *ReverseJournalEntryResponse {
	return &ReverseJournalEntryResponse{
		ReversalEntryID: r.ReversalEntryID,
		OriginalEntryID: r.OriginalEntryID,
		TotalCents:      r.TotalCents,
		Currency:        r.Currency.String(),
	}
}

// JournalEntryResponse represents a journal entry in API responses.
type JournalEntryResponse struct {
	ID                   string                     `json:"id"`
	TenantID             string                     `json:"tenant_id"`
	EntityID             string                     `json:"entity_id"`
	PostingDate          string                     `json:"posting_date"`
	Currency             string                     `json:"currency"`
	Lines                []JournalEntryLineResponse `json:"lines"`
	Description          string                     `json:"description,omitempty"`
	SourceModule         string                     `json:"source_module,omitempty"`
	SourceDocumentID     string                     `json:"source_document_id,omitempty"`
	SourceDocumentType   string                     `json:"source_document_type,omitempty"`
	IsIntercompany       bool                       `json:"is_intercompany"`
	CounterpartyEntityID string                     `json:"counterparty_entity_id,omitempty"`
	ReversalOf           string                     `json:"reversal_of,omitempty"`
	Version              int                        `json:"version"`
	CreatedBy            string                     `json:"created_by,omitempty"`
	CreatedAt            time.Time                  `json:"created_at"`
}

// JournalEntryLineResponse represents one line of an entry.
type JournalEntryLineResponse struct {
	ID          string `json:"id"`
	AccountCode string `json:"account_code"`
	DebitCents  int64  `json:"debit_cents"`
	CreditCents int64  `json:"credit_cents"`
	CostCenter  string `json:"cost_center,omitempty"`
	Description string `json:"description,omitempty"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.JournalEntry) *JournalEntryResponse {
	lines := make([]JournalEntryLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalEntryLineResponse{
			ID:          l.ID,
			AccountCode: l.AccountCode,
			DebitCents:  l.Debit.Cents(),
			CreditCents: l.Credit.Cents(),
			CostCenter:  l.CostCenter,
			Description: l.Description,
		}
	}

	return &JournalEntryResponse{
		ID:                   e.ID,
		TenantID:             e.TenantID,
		EntityID:             e.EntityID,
		PostingDate:          e.PostingDate.Format(dateLayout),
		Currency:             e.Currency().String(),
		Lines:                lines,
		Description:          e.Description,
		SourceModule:         e.SourceModule,
		SourceDocumentID:     e.SourceDocumentID,
		SourceDocumentType:   e.SourceDocumentType,
		IsIntercompany:       e.IsIntercompany,
		CounterpartyEntityID: e.CounterpartyEntityID,
		ReversalOf:           e.ReversalOf,
		Version:              e.Version,
		CreatedBy:            e.CreatedBy,
		CreatedAt:            e.CreatedAt,
	}
}

// TrialBalanceResponse is the trial balance report.
type TrialBalanceResponse struct {
	PeriodStart      string                    `json:"period_start"`
	PeriodEnd        string                    `json:"period_end"`
	Currency         string                    `json:"currency"`
	Rows             []TrialBalanceRowResponse `json:"rows"`
	TotalDebitCents  int64                     `json:"total_debit_cents"`
	TotalCreditCents int64                     `json:"total_credit_cents"`
}

// TrialBalanceRowResponse is one account row in the report.
type TrialBalanceRowResponse struct {
	AccountCode         string `json:"account_code"`
	AccountName         string `json:"account_name"`
	AccountType         string `json:"account_type"`
	OpeningBalanceCents int64  `json:"opening_balance_cents"`
	PeriodDebitCents    int64  `json:"period_debit_cents"`
	PeriodCreditCents   int64  `json:"period_credit_cents"`
	ClosingBalanceCents int64  `json:"closing_balance_cents"`
}

// TrialBalanceFromUseCase converts a report to a response.
func TrialBalanceFromUseCase(r *usecase.TrialBalanceReport) *TrialBalanceResponse {
	rows := make([]TrialBalanceRowResponse, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = TrialBalanceRowResponse{
			AccountCode:         row.AccountCode,
			AccountName:         row.AccountName,
			AccountType:         string(row.AccountType),
			OpeningBalanceCents: row.OpeningBalanceCents,
			PeriodDebitCents:    row.PeriodDebitCents,
			PeriodCreditCents:   row.PeriodCreditCents,
			ClosingBalanceCents: row.ClosingBalanceCents,
		}
	}

	return &TrialBalanceResponse{
		PeriodStart:      r.PeriodStart.Format(dateLayout),
		PeriodEnd:        r.PeriodEnd.Format(dateLayout),
		Currency:         r.Currency.String(),
		Rows:             rows,
		TotalDebitCents:  r.TotalDebitCents,
		TotalCreditCents: r.TotalCreditCents,
	}
}

// BalanceSheetResponse is the consolidated balance sheet.
type BalanceSheetResponse struct {
	TenantID       string                     `json:"tenant_id"`
	ParentEntityID string                     `json:"parent_entity_id"`
	AsOf           string                     `json:"as_of"`
	Currency       string                     `json:"currency"`
	Lines          []BalanceSheetLineResponse `json:"lines"`
	NCICents       int64                      `json:"non_controlling_interest_cents"`
}

// BalanceSheetLineResponse is one consolidated line.
type BalanceSheetLineResponse struct {
	AccountCode  string `json:"account_code"`
	AccountName  string `json:"account_name"`
	AccountType  string `json:"account_type"`
	BalanceCents int64  `json:"balance_cents"`
}

// BalanceSheetFromUseCase converts a consolidated sheet to a response.
func BalanceSheetFromUseCase(s *usecase.ConsolidatedBalanceSheet) *BalanceSheetResponse {
	lines := make([]BalanceSheetLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = BalanceSheetLineResponse{
			AccountCode:  l.AccountCode,
			AccountName:  l.AccountName,
			AccountType:  string(l.AccountType),
			BalanceCents: l.BalanceCents,
		}
	}

	return &BalanceSheetResponse{
		TenantID:       s.TenantID,
		ParentEntityID: s.ParentEntityID,
		AsOf:           s.AsOf.Format(dateLayout),
		Currency:       s.Currency.String(),
		Lines:          lines,
		NCICents:       s.NCICents,
	}
}

// ClosingPreviewResponse shows what a period close would book without
// posting anything.
type ClosingPreviewResponse struct {
	Entry             *JournalEntryResponse `json:"entry"`
	TotalRevenueCents int64                 `json:"total_revenue_cents"`
	TotalExpenseCents int64                 `json:"total_expense_cents"`
	NetIncomeCents    int64                 `json:"net_income_cents"`
	Currency          string                `json:"currency"`
}

// ClosingPreviewFromUseCase converts a closing result to a response.
func ClosingPreviewFromUseCase(r *usecase.ClosingResult) *ClosingPreviewResponse {
	return &ClosingPreviewResponse{
		Entry:             EntryFromDomain(r.Entry),
		TotalRevenueCents: r.TotalRevenueCents,
		TotalExpenseCents: r.TotalExpenseCents,
		NetIncomeCents:    r.NetIncomeCents,
		Currency:          r.Currency.String(),
	}
}

// EliminationPreviewResponse lists the elimination entries a
// consolidation run would book, one per currency with activity.
type EliminationPreviewResponse struct {
	Entries []*JournalEntryResponse `json:"entries"`
}

// EliminationPreviewFromUseCase converts elimination entries to a response.
func EliminationPreviewFromUseCase(entries []*domain.JournalEntry) *EliminationPreviewResponse {
	resp := &EliminationPreviewResponse{Entries: make([]*JournalEntryResponse, len(entries))}
	for i, entry := range entries {
		resp.Entries[i] = EntryFromDomain(entry)
	}
	return resp
}

// TransitionPeriodResponse reports a completed period status change.
type TransitionPeriodResponse struct {
	PeriodID       string `json:"period_id"`
	Name           string `json:"name"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
}

// TransitionPeriodFromResult converts a transition result to a response.
func TransitionPeriodFromResult(result *usecase.TransitionPeriodResult) *TransitionPeriodResponse {
	return &TransitionPeriodResponse{
		PeriodID:       result.PeriodID,
		Name:           result.Name,
		PreviousStatus: string(result.PreviousStatus),
		Status:         string(result.Status),
	}
}

// AccountBalanceResponse is a point-in-time account balance.
type AccountBalanceResponse struct {
	AccountCode     string `json:"account_code"`
	EntityID        string `json:"entity_id"`
	ValidTime       string `json:"valid_time"`
	TransactionTime string `json:"transaction_time,omitempty"`
	BalanceCents    int64  `json:"balance_cents"`
	Currency        string `json:"currency"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
