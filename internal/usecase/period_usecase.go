package usecase

import (
	"context"
	"fmt"

	"github.com/iho/coreledger/internal/domain"
)

// TransitionPeriodCommand requests a posting-status change for an
// accounting period.
type TransitionPeriodCommand struct {
	TenantID string              `json:"tenant_id"`
	PeriodID string              `json:"period_id"`
	Status   domain.PeriodStatus `json:"status"`
	UserID   string              `json:"user_id"`
}

// TransitionPeriodResult is the outcome of a period status change.
type TransitionPeriodResult struct {
	PeriodID       string              `json:"period_id"`
	Name           string              `json:"name"`
	PreviousStatus domain.PeriodStatus `json:"previous_status"`
	Status         domain.PeriodStatus `json:"status"`
}

// PeriodService manages the accounting period close lifecycle. Closing
// only gates future postings, it never touches recorded balances, so
// the whole operation is a guarded status write plus the outbox event
// and audit row in one transaction.
type PeriodService struct {
	txManager  TransactionManager
	periodRepo PeriodRepository
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
	clock      Clock
}

// NewPeriodService creates a new PeriodService.
func NewPeriodService(
	txManager TransactionManager,
	periodRepo PeriodRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	clock Clock,
) *PeriodService {
	return &PeriodService{
		txManager:  txManager,
		periodRepo: periodRepo,
		outboxRepo: outboxRepo,
		auditRepo:  auditRepo,
		idGen:      idGen,
		clock:      clock,
	}
}

// Transition moves a period between statuses, enforcing the staged
// close rules: open periods soft-close, soft-closed periods reopen or
// hard-close, hard-closed periods stay closed forever.
func (s *PeriodService) Transition(ctx context.Context, cmd TransitionPeriodCommand) (*TransitionPeriodResult, error) {
	result, err := s.transition(ctx, cmd)
	if err != nil {
		return nil, wrapUnexpected(err)
	}
	return result, nil
}

func (s *PeriodService) transition(ctx context.Context, cmd TransitionPeriodCommand) (*TransitionPeriodResult, error) {
	var errs []string
	if cmd.TenantID == "" {
		errs = append(errs, "tenant_id is required")
	}
	if cmd.PeriodID == "" {
		errs = append(errs, "period_id is required")
	}
	switch cmd.Status {
	case domain.PeriodStatusOpen, domain.PeriodStatusSoftClosed, domain.PeriodStatusHardClosed:
	default:
		errs = append(errs, fmt.Sprintf("status %q is not a valid period status", cmd.Status))
	}
	if len(errs) > 0 {
		return nil, &domain.CommandValidationError{Errors: errs}
	}

	period, err := s.periodRepo.GetByID(ctx, cmd.TenantID, cmd.PeriodID)
	if err != nil {
		return nil, err
	}
	if !period.CanTransitionTo(cmd.Status) {
		return nil, fmt.Errorf("%w: %s from %s to %s", domain.ErrInvalidPeriodTransition, period.Name, period.Status, cmd.Status)
	}

	// The repository may hand back shared state that UpdateStatus mutates,
	// so capture the outgoing status before the write.
	prevStatus := period.Status

	if err := s.execute(ctx, cmd, period, prevStatus); err != nil {
		return nil, err
	}

	return &TransitionPeriodResult{
		PeriodID:       period.ID,
		Name:           period.Name,
		PreviousStatus: prevStatus,
		Status:         cmd.Status,
	}, nil
}

func (s *PeriodService) execute(ctx context.Context, cmd TransitionPeriodCommand, period *domain.AccountingPeriod, prevStatus domain.PeriodStatus) error {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := s.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := s.periodRepo.UpdateStatus(txCtx, tx, cmd.TenantID, cmd.PeriodID, cmd.Status); err != nil {
		return err
	}

	// Reopening is an internal correction, only closing is announced.
	if cmd.Status != domain.PeriodStatusOpen {
		event := &domain.OutboxEvent{
			ID:            s.idGen.Generate(),
			TenantID:      cmd.TenantID,
			AggregateID:   period.ID,
			AggregateType: domain.AggregateTypePeriod,
			EventType:     domain.EventTypePeriodClosed,
			Payload: map[string]any{
				"period_id":       period.ID,
				"period_name":     period.Name,
				"tenant_id":       cmd.TenantID,
				"previous_status": string(prevStatus),
				"status":          string(cmd.Status),
			},
			CreatedAt: s.clock.Now(),
			Published: false,
		}
		if err := s.outboxRepo.Create(txCtx, tx, event); err != nil {
			return err
		}
	}

	auditLog := &domain.AuditLog{
		ID:           s.idGen.Generate(),
		TenantID:     cmd.TenantID,
		UserID:       cmd.UserID,
		Action:       string(domain.AuditActionPeriodClose),
		ResourceType: domain.AggregateTypePeriod,
		ResourceID:   period.ID,
		BeforeState:  domain.JSON{"status": string(prevStatus)},
		AfterState:   domain.JSON{"status": string(cmd.Status)},
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.auditRepo.CreateTx(txCtx, tx, auditLog); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}
