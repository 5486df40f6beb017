package usecase

import (
	"context"
	"time"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/infrastructure/metrics"
)

// ReverseJournalEntryCommand requests a correcting entry for a posted
// one. The reversal posts on its own date, usually the current period.
type ReverseJournalEntryCommand struct {
	TenantID       string    `json:"tenant_id"`
	JournalEntryID string    `json:"journal_entry_id"`
	PostingDate    time.Time `json:"posting_date"`
	UserID         string    `json:"user_id"`
	Permissions    []string  `json:"permissions"`
}

// ReverseJournalEntryResult is the outcome of a reversal.
type ReverseJournalEntryResult struct {
	ReversalEntryID string          `json:"reversal_entry_id"`
	OriginalEntryID string          `json:"original_entry_id"`
	TotalCents      int64           `json:"total_cents"`
	Currency        domain.Currency `json:"currency"`
}

// ReverseJournalEntryService posts the swapped-line correction for an
// existing entry. The original is never modified, the reversal is a
// regular entry flowing through the same transactional fold.
type ReverseJournalEntryService struct {
	txManager  TransactionManager
	entryRepo  JournalEntryRepository
	periodRepo PeriodRepository
	balances   *TemporalBalanceService
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
	clock      Clock
	retrier    Retrier
	metrics    *metrics.Metrics
}

// NewReverseJournalEntryService creates a new ReverseJournalEntryService.
// retrier and metrics may be nil.
func NewReverseJournalEntryService(
	txManager TransactionManager,
	entryRepo JournalEntryRepository,
	periodRepo PeriodRepository,
	balances *TemporalBalanceService,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
	m *metrics.Metrics,
) *ReverseJournalEntryService {
	return &ReverseJournalEntryService{
		txManager:  txManager,
		entryRepo:  entryRepo,
		periodRepo: periodRepo,
		balances:   balances,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
		clock:      clock,
		retrier:    retrier,
		metrics:    m,
	}
}

// Handle builds and posts the reversal entry.
func (s *ReverseJournalEntryService) Handle(ctx context.Context, cmd ReverseJournalEntryCommand) (*ReverseJournalEntryResult, error) {
	result, err := s.handle(ctx, cmd)
	if err != nil {
		return nil, wrapUnexpected(err)
	}
	return result, nil
}

func (s *ReverseJournalEntryService) handle(ctx context.Context, cmd ReverseJournalEntryCommand) (*ReverseJournalEntryResult, error) {
	var errs []string
	if cmd.TenantID == "" {
		errs = append(errs, "tenant_id is required")
	}
	if cmd.JournalEntryID == "" {
		errs = append(errs, "journal_entry_id is required")
	}
	if cmd.PostingDate.IsZero() {
		errs = append(errs, "posting_date is required")
	}
	if len(errs) > 0 {
		return nil, &domain.CommandValidationError{Errors: errs}
	}

	original, err := s.entryRepo.GetByID(ctx, cmd.TenantID, cmd.JournalEntryID)
	if err != nil {
		return nil, err
	}

	period, err := s.periodRepo.FindForDate(ctx, cmd.TenantID, cmd.PostingDate)
	if err != nil {
		return nil, err
	}
	if period == nil {
		return nil, &domain.JournalEntryError{
			ErrCode: domain.CodeNoPeriodFound,
			Message: "no accounting period covers " + cmd.PostingDate.Format("2006-01-02"),
		}
	}
	if period.IsClosed() && !hasPermission(cmd.Permissions, domain.PermissionPostToClosedPeriod) {
		return nil, &domain.PeriodClosedError{
			PeriodName:  period.Name,
			Status:      period.Status,
			PostingDate: cmd.PostingDate,
		}
	}

	reversal, err := original.Reverse(s.idGen.Generate, cmd.PostingDate, s.clock.Now(), cmd.UserID)
	if err != nil {
		return nil, err
	}

	op := func() error { return s.executeOnce(ctx, reversal, original.ID) }
	if s.retrier != nil {
		err = s.retrier.Retry(ctx, op)
	} else {
		err = op()
	}
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.EntriesPosted.Inc()
	}

	return &ReverseJournalEntryResult{
		ReversalEntryID: reversal.ID,
		OriginalEntryID: original.ID,
		TotalCents:      reversal.TotalDebits().Cents(),
		Currency:        reversal.Currency(),
	}, nil
}

func (s *ReverseJournalEntryService) executeOnce(ctx context.Context, reversal *domain.JournalEntry, originalID string) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := s.entryRepo.Create(txCtx, tx, reversal); err != nil {
		return err
	}

	written, err := s.balances.ApplyJournalEntry(txCtx, tx, reversal)
	if err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            s.idGen.Generate(),
		TenantID:      reversal.TenantID,
		AggregateID:   reversal.ID,
		AggregateType: domain.AggregateTypeJournalEntry,
		EventType:     domain.EventTypeJournalEntryReversed,
		Payload: map[string]any{
			"reversal_entry_id": reversal.ID,
			"original_entry_id": originalID,
			"tenant_id":         reversal.TenantID,
			"entity_id":         reversal.EntityID,
		},
		CreatedAt: s.clock.Now(),
		Published: false,
	}
	if err := s.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	auditLog := &domain.AuditLog{
		ID:           s.idGen.Generate(),
		TenantID:     reversal.TenantID,
		UserID:       reversal.CreatedBy,
		Action:       string(domain.AuditActionEntryReverse),
		ResourceType: domain.AggregateTypeJournalEntry,
		ResourceID:   originalID,
		AfterState:   domain.MarshalState(reversal),
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.BalanceVersionsWritten.Add(float64(len(written)))
	}
	return nil
}
