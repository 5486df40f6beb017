package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/infrastructure/metrics"
)

// CreateJournalEntryCommand is a posting request. Permissions are plain
// capability strings resolved by the caller's auth layer.
type CreateJournalEntryCommand struct {
	TenantID             string            `json:"tenant_id"`
	EntityID             string            `json:"entity_id"`
	PostingDate          time.Time         `json:"posting_date"`
	Lines                []CommandLine     `json:"lines"`
	Currency             domain.Currency   `json:"currency"`
	Description          string            `json:"description"`
	SourceModule         string            `json:"source_module"`
	SourceDocumentID     string            `json:"source_document_id"`
	SourceDocumentType   string            `json:"source_document_type"`
	IsIntercompany       bool              `json:"is_intercompany"`
	CounterpartyEntityID string            `json:"counterparty_entity_id"`
	IdempotencyKey       string            `json:"idempotency_key"`
	UserID               string            `json:"user_id"`
	Permissions          []string          `json:"permissions"`
}

// CommandLine is one requested debit or credit in minor units.
type CommandLine struct {
	AccountCode string `json:"account_code"`
	DebitCents  int64  `json:"debit_cents"`
	CreditCents int64  `json:"credit_cents"`
	CostCenter  string `json:"cost_center"`
	Description string `json:"description"`
}

// CreateJournalEntryResult is the posting outcome fed back to the caller
// and cached under the idempotency key.
type CreateJournalEntryResult struct {
	JournalEntryID   string          `json:"journal_entry_id"`
	TotalDebitCents  int64           `json:"total_debit_cents"`
	TotalCreditCents int64           `json:"total_credit_cents"`
	Currency         domain.Currency `json:"currency"`
	WasIdempotent    bool            `json:"was_idempotent"`
}

const commandTypeCreateJournalEntry = "CreateJournalEntry"

// CreateJournalEntryService orchestrates a single posting: structural
// validation, idempotency replay, business rules, entry construction,
// then persistence, balance fold, event staging and audit inside one
// transaction, exactly once per idempotency key. No partial state is
// ever reported as success.
type CreateJournalEntryService struct {
	txManager   TransactionManager
	entryRepo   JournalEntryRepository
	accountRepo AccountRepository
	periodRepo  PeriodRepository
	balances    *TemporalBalanceService
	idempotency *IdempotencyService
	outboxRepo  OutboxRepository
	auditRepo   AuditRepository
	idGen       IDGenerator
	clock       Clock
	retrier     Retrier
	metrics     *metrics.Metrics
}

// NewCreateJournalEntryService creates a new CreateJournalEntryService.
// retrier and metrics may be nil.
func NewCreateJournalEntryService(
	txManager TransactionManager,
	entryRepo JournalEntryRepository,
	accountRepo AccountRepository,
	periodRepo PeriodRepository,
	balances *TemporalBalanceService,
	idempotency *IdempotencyService,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	clock Clock,
	retrier Retrier,
	m *metrics.Metrics,
) *CreateJournalEntryService {
	return &CreateJournalEntryService{
		txManager:   txManager,
		entryRepo:   entryRepo,
		accountRepo: accountRepo,
		periodRepo:  periodRepo,
		balances:    balances,
		idempotency: idempotency,
		outboxRepo:  outboxRepo,
		auditRepo:   auditRepo,
		idGen:       idGen,
		clock:       clock,
		retrier:     retrier,
		metrics:     m,
	}
}

// Handle runs the posting state machine. Any failure short-circuits with
// a typed error; failures outside the domain taxonomy are wrapped as
// UNEXPECTED_ERROR so the boundary never leaks untyped failures.
func (s *CreateJournalEntryService) Handle(ctx context.Context, cmd CreateJournalEntryCommand) (*CreateJournalEntryResult, error) {
	result, err := s.handle(ctx, cmd)
	if err != nil {
		return nil, wrapUnexpected(err)
	}
	return result, nil
}

func (s *CreateJournalEntryService) handle(ctx context.Context, cmd CreateJournalEntryCommand) (*CreateJournalEntryResult, error) {
	// 1. Structural validation
	if errs := validateCommand(cmd); len(errs) > 0 {
		return nil, &domain.CommandValidationError{Errors: errs}
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, err
	}

	// 2. Idempotent replay
	if cmd.IdempotencyKey != "" {
		replay, err := s.checkReplay(ctx, cmd, payload)
		if err != nil {
			return nil, err
		}
		if replay != nil {
			if s.metrics != nil {
				s.metrics.IdempotentReplays.Inc()
			}
			return replay, nil
		}
	}

	// 3. Business rules
	if err := s.checkBusinessRules(ctx, cmd); err != nil {
		return nil, err
	}

	// 4. Construct the immutable entry. Double-entry validation here is
	// defense in depth behind the structural check.
	entry, err := s.buildEntry(cmd)
	if err != nil {
		return nil, err
	}

	// 5. Persist, fold balances, stage the event and audit in one unit
	// of work.
	start := s.clock.Now()
	if err := s.execute(ctx, entry); err != nil {
		if cmd.IdempotencyKey != "" && errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
			return s.resolveLostRace(ctx, cmd, payload)
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.EntriesPosted.Inc()
		s.metrics.PostingDuration.Observe(s.clock.Now().Sub(start).Seconds())
	}

	result := &CreateJournalEntryResult{
		JournalEntryID:   entry.ID,
		TotalDebitCents:  entry.TotalDebits().Cents(),
		TotalCreditCents: entry.TotalCredits().Cents(),
		Currency:         entry.Currency(),
	}

	// 6. Record the result for future replays.
	if cmd.IdempotencyKey != "" {
		resultJSON, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}
		existing, err := s.idempotency.Record(ctx, cmd.TenantID, cmd.IdempotencyKey, commandTypeCreateJournalEntry, payload, resultJSON)
		if err != nil {
			if s.metrics != nil && domain.ErrorCode(err) == domain.CodeDuplicateEntry {
				s.metrics.DuplicateKeyConflicts.Inc()
			}
			return nil, err
		}
		if existing != nil {
			// A concurrent request with the same key and payload won the
			// insert; its result is canonical.
			var winner CreateJournalEntryResult
			if err := json.Unmarshal(existing, &winner); err != nil {
				return nil, err
			}
			winner.WasIdempotent = true
			return &winner, nil
		}
	}

	return result, nil
}

func validateCommand(cmd CreateJournalEntryCommand) []string {
	var errs []string

	if cmd.TenantID == "" {
		errs = append(errs, "tenant_id is required")
	}
	if cmd.EntityID == "" {
		errs = append(errs, "entity_id is required")
	}
	if cmd.PostingDate.IsZero() {
		errs = append(errs, "posting_date is required")
	}
	if !cmd.Currency.IsValid() {
		errs = append(errs, "currency is invalid")
	}
	if len(cmd.Lines) < 2 {
		errs = append(errs, "at least 2 lines are required")
	}

	var debits, credits int64
	for i, line := range cmd.Lines {
		if line.AccountCode == "" {
			errs = append(errs, indexed(i, "account_code is required"))
		}
		if line.DebitCents < 0 || line.CreditCents < 0 {
			errs = append(errs, indexed(i, "amounts must not be negative"))
		}
		if (line.DebitCents == 0) == (line.CreditCents == 0) {
			errs = append(errs, indexed(i, "exactly one of debit and credit must be non-zero"))
		}
		debits += line.DebitCents
		credits += line.CreditCents
	}

	if len(cmd.Lines) >= 2 && debits != credits {
		errs = append(errs, "debits do not equal credits")
	}

	if cmd.IsIntercompany && cmd.CounterpartyEntityID == "" {
		errs = append(errs, "intercompany entry requires counterparty_entity_id")
	}

	return errs
}

func indexed(i int, msg string) string {
	return fmt.Sprintf("line %d: %s", i, msg)
}

func (s *CreateJournalEntryService) checkReplay(ctx context.Context, cmd CreateJournalEntryCommand, payload []byte) (*CreateJournalEntryResult, error) {
	cached, err := s.idempotency.Check(ctx, cmd.TenantID, cmd.IdempotencyKey)
	if err != nil {
		if errors.Is(err, domain.ErrIdempotencyRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	matches, err := s.idempotency.MatchesPayload(ctx, cmd.TenantID, cmd.IdempotencyKey, payload)
	if err != nil {
		return nil, err
	}
	if !matches {
		if s.metrics != nil {
			s.metrics.DuplicateKeyConflicts.Inc()
		}
		return nil, &domain.DuplicateEntryError{TenantID: cmd.TenantID, IdempotencyKey: cmd.IdempotencyKey}
	}

	var result CreateJournalEntryResult
	if err := json.Unmarshal(cached, &result); err != nil {
		return nil, err
	}
	result.WasIdempotent = true
	return &result, nil
}

// resolveLostRace handles a posting whose insert lost the race on its
// idempotency key to a concurrent request. The winner's cached result
// is canonical; when the winner has not recorded its result yet, the
// persisted entry is the source of truth. A payload mismatch is a
// duplicate-key conflict, same as on the replay path.
func (s *CreateJournalEntryService) resolveLostRace(ctx context.Context, cmd CreateJournalEntryCommand, payload []byte) (*CreateJournalEntryResult, error) {
	replay, err := s.checkReplay(ctx, cmd, payload)
	if err != nil {
		return nil, err
	}
	if replay == nil {
		winner, err := s.entryRepo.GetByIdempotencyKey(ctx, cmd.TenantID, cmd.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		replay = &CreateJournalEntryResult{
			JournalEntryID:   winner.ID,
			TotalDebitCents:  winner.TotalDebits().Cents(),
			TotalCreditCents: winner.TotalCredits().Cents(),
			Currency:         winner.Currency(),
			WasIdempotent:    true,
		}
	}
	if s.metrics != nil {
		s.metrics.IdempotentReplays.Inc()
	}
	return replay, nil
}

func (s *CreateJournalEntryService) checkBusinessRules(ctx context.Context, cmd CreateJournalEntryCommand) error {
	// Every referenced account must exist for the tenant; report the
	// first missing code in request order.
	requested := make([]string, 0, len(cmd.Lines))
	seen := make(map[string]bool, len(cmd.Lines))
	for _, line := range cmd.Lines {
		if !seen[line.AccountCode] {
			seen[line.AccountCode] = true
			requested = append(requested, line.AccountCode)
		}
	}

	accounts, err := s.accountRepo.GetByCodes(ctx, cmd.TenantID, requested)
	if err != nil {
		return err
	}

	found := make(map[string]bool, len(accounts))
	for _, account := range accounts {
		if !account.IsDeleted() {
			found[account.Code] = true
		}
	}
	for _, code := range requested {
		if !found[code] {
			return &domain.AccountNotFoundError{TenantID: cmd.TenantID, AccountCode: code}
		}
	}

	// The posting date must fall inside a known period. The override
	// permission bypasses only the closed-period check, never the
	// period-existence check.
	period, err := s.periodRepo.FindForDate(ctx, cmd.TenantID, cmd.PostingDate)
	if err != nil {
		return err
	}
	if period == nil {
		return &domain.JournalEntryError{
			ErrCode: domain.CodeNoPeriodFound,
			Message: "no accounting period covers " + cmd.PostingDate.Format("2006-01-02"),
		}
	}
	if period.IsClosed() && !hasPermission(cmd.Permissions, domain.PermissionPostToClosedPeriod) {
		return &domain.PeriodClosedError{
			PeriodName:  period.Name,
			Status:      period.Status,
			PostingDate: cmd.PostingDate,
		}
	}

	return nil
}

func hasPermission(permissions []string, permission string) bool {
	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (s *CreateJournalEntryService) buildEntry(cmd CreateJournalEntryCommand) (*domain.JournalEntry, error) {
	lines := make([]domain.JournalEntryLine, 0, len(cmd.Lines))
	for _, cl := range cmd.Lines {
		debit, err := domain.NewFromCents(cl.DebitCents, cmd.Currency)
		if err != nil {
			return nil, err
		}
		credit, err := domain.NewFromCents(cl.CreditCents, cmd.Currency)
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.JournalEntryLine{
			ID:          s.idGen.Generate(),
			AccountCode: cl.AccountCode,
			Debit:       debit,
			Credit:      credit,
			CostCenter:  cl.CostCenter,
			Description: cl.Description,
		})
	}

	return domain.NewJournalEntry(domain.NewJournalEntryParams{
		ID:                   s.idGen.Generate(),
		TenantID:             cmd.TenantID,
		EntityID:             cmd.EntityID,
		PostingDate:          cmd.PostingDate,
		Lines:                lines,
		Description:          cmd.Description,
		SourceModule:         cmd.SourceModule,
		SourceDocumentID:     cmd.SourceDocumentID,
		SourceDocumentType:   cmd.SourceDocumentType,
		IsIntercompany:       cmd.IsIntercompany,
		CounterpartyEntityID: cmd.CounterpartyEntityID,
		CreatedBy:            cmd.UserID,
		IdempotencyKey:       cmd.IdempotencyKey,
		Now:                  s.clock.Now(),
	})
}

// execute runs persist + balance fold + outbox + audit in one
// transaction, re-driven by the retrier on transient storage failures.
func (s *CreateJournalEntryService) execute(ctx context.Context, entry *domain.JournalEntry) error {
	op := func() error { return s.executeOnce(ctx, entry) }
	if s.retrier != nil {
		return s.retrier.Retry(ctx, op)
	}
	return op()
}

func (s *CreateJournalEntryService) executeOnce(ctx context.Context, entry *domain.JournalEntry) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := s.entryRepo.Create(txCtx, tx, entry); err != nil {
		return err
	}

	written, err := s.balances.ApplyJournalEntry(txCtx, tx, entry)
	if err != nil {
		return err
	}

	event := &domain.OutboxEvent{
		ID:            s.idGen.Generate(),
		TenantID:      entry.TenantID,
		AggregateID:   entry.ID,
		AggregateType: domain.AggregateTypeJournalEntry,
		EventType:     domain.EventTypeJournalEntryPosted,
		Payload: map[string]any{
			"journal_entry_id":   entry.ID,
			"tenant_id":          entry.TenantID,
			"entity_id":          entry.EntityID,
			"posting_date":       entry.PostingDate.Format("2006-01-02"),
			"currency":           entry.Currency().String(),
			"total_debit_cents":  entry.TotalDebits().Cents(),
			"total_credit_cents": entry.TotalCredits().Cents(),
			"account_codes":      entry.AffectedAccountCodes(),
			"is_intercompany":    entry.IsIntercompany,
		},
		CreatedAt: s.clock.Now(),
		Published: false,
	}
	if err := s.outboxRepo.Create(txCtx, tx, event); err != nil {
		return err
	}

	auditLog := &domain.AuditLog{
		ID:           s.idGen.Generate(),
		TenantID:     entry.TenantID,
		UserID:       entry.CreatedBy,
		Action:       string(domain.AuditActionEntryPost),
		ResourceType: domain.AggregateTypeJournalEntry,
		ResourceID:   entry.ID,
		AfterState:   domain.MarshalState(entry),
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

// wrapUnexpected leaves typed domain errors untouched and wraps
// everything else.
func wrapUnexpected(err error) error {
	var c domain.Coder
	if errors.As(err, &c) {
		return err
	}
	if isDomainSentinel(err) {
		return err
	}
	return &domain.UnexpectedError{Err: err}
}

func isDomainSentinel(err error) bool {
	sentinels := []error{
		domain.ErrCurrencyMismatch,
		domain.ErrNegativeAmount,
		domain.ErrNegativeResult,
		domain.ErrInvalidCurrency,
		domain.ErrIntercompanyNoCounterparty,
		domain.ErrNothingToClose,
		domain.ErrNoBalanceHistory,
		domain.ErrEntityNotFound,
		domain.ErrEntryNotFound,
		domain.ErrPeriodNotFound,
		domain.ErrInvalidPeriodTransition,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}
