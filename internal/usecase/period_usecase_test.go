package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
	"github.com/iho/coreledger/internal/usecase/mocks"
)

type periodFixture struct {
	svc        *usecase.PeriodService
	periodRepo *mocks.MockPeriodRepository
	outboxRepo *mocks.MockOutboxRepository
	auditRepo  *mocks.MockAuditRepository
}

func newPeriodFixture(t *testing.T, status domain.PeriodStatus) *periodFixture {
	t.Helper()

	f := &periodFixture{
		periodRepo: mocks.NewMockPeriodRepository(),
		outboxRepo: mocks.NewMockOutboxRepository(),
		auditRepo:  mocks.NewMockAuditRepository(),
	}

	f.svc = usecase.NewPeriodService(
		mocks.NewMockTransactionManager(),
		f.periodRepo,
		f.outboxRepo,
		f.auditRepo,
		mocks.NewMockIDGenerator(),
		mocks.NewMockClock(time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)),
	)

	f.periodRepo.Add(&domain.AccountingPeriod{
		ID:        "p-2024-03",
		TenantID:  "tenant-1",
		Name:      "2024-03",
		StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:    status,
	})

	return f
}

func TestPeriodService_SoftClose(t *testing.T) {
	f := newPeriodFixture(t, domain.PeriodStatusOpen)

	result, err := f.svc.Transition(context.Background(), usecase.TransitionPeriodCommand{
		TenantID: "tenant-1",
		PeriodID: "p-2024-03",
		Status:   domain.PeriodStatusSoftClosed,
		UserID:   "user-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.PreviousStatus != domain.PeriodStatusOpen {
		t.Errorf("previous status = %s, want OPEN", result.PreviousStatus)
	}
	if result.Status != domain.PeriodStatusSoftClosed {
		t.Errorf("status = %s, want SOFT_CLOSED", result.Status)
	}

	period, err := f.periodRepo.GetByID(context.Background(), "tenant-1", "p-2024-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if period.Status != domain.PeriodStatusSoftClosed {
		t.Errorf("stored status = %s, want SOFT_CLOSED", period.Status)
	}

	events := f.outboxRepo.Events()
	if len(events) != 1 {
		t.Fatalf("staged %d events, want 1", len(events))
	}
	if events[0].EventType != domain.EventTypePeriodClosed {
		t.Errorf("event type = %s, want %s", events[0].EventType, domain.EventTypePeriodClosed)
	}
	if events[0].Payload["previous_status"] != "OPEN" || events[0].Payload["status"] != "SOFT_CLOSED" {
		t.Errorf("event payload statuses = %v -> %v, want OPEN -> SOFT_CLOSED",
			events[0].Payload["previous_status"], events[0].Payload["status"])
	}

	logs, err := f.auditRepo.List(context.Background(), domain.AuditFilter{
		TenantID: "tenant-1",
		Action:   string(domain.AuditActionPeriodClose),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("wrote %d audit logs, want 1", len(logs))
	}
	if logs[0].BeforeState["status"] != "OPEN" || logs[0].AfterState["status"] != "SOFT_CLOSED" {
		t.Errorf("audit states = %v -> %v, want OPEN -> SOFT_CLOSED", logs[0].BeforeState, logs[0].AfterState)
	}
}

func TestPeriodService_ReopenStagesNoEvent(t *testing.T) {
	f := newPeriodFixture(t, domain.PeriodStatusSoftClosed)

	result, err := f.svc.Transition(context.Background(), usecase.TransitionPeriodCommand{
		TenantID: "tenant-1",
		PeriodID: "p-2024-03",
		Status:   domain.PeriodStatusOpen,
		UserID:   "user-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.PeriodStatusOpen {
		t.Errorf("status = %s, want OPEN", result.Status)
	}

	if events := f.outboxRepo.Events(); len(events) != 0 {
		t.Errorf("staged %d events, want 0 for a reopen", len(events))
	}
}

func TestPeriodService_HardCloseIsTerminal(t *testing.T) {
	f := newPeriodFixture(t, domain.PeriodStatusHardClosed)

	for _, target := range []domain.PeriodStatus{domain.PeriodStatusOpen, domain.PeriodStatusSoftClosed} {
		_, err := f.svc.Transition(context.Background(), usecase.TransitionPeriodCommand{
			TenantID: "tenant-1",
			PeriodID: "p-2024-03",
			Status:   target,
			UserID:   "user-1",
		})
		if !errors.Is(err, domain.ErrInvalidPeriodTransition) {
			t.Errorf("transition to %s: error = %v, want ErrInvalidPeriodTransition", target, err)
		}
	}
}

func TestPeriodService_OpenCannotSkipToHardClose(t *testing.T) {
	f := newPeriodFixture(t, domain.PeriodStatusOpen)

	_, err := f.svc.Transition(context.Background(), usecase.TransitionPeriodCommand{
		TenantID: "tenant-1",
		PeriodID: "p-2024-03",
		Status:   domain.PeriodStatusHardClosed,
		UserID:   "user-1",
	})
	if !errors.Is(err, domain.ErrInvalidPeriodTransition) {
		t.Errorf("error = %v, want ErrInvalidPeriodTransition", err)
	}
}

func TestPeriodService_UnknownPeriod(t *testing.T) {
	f := newPeriodFixture(t, domain.PeriodStatusOpen)

	_, err := f.svc.Transition(context.Background(), usecase.TransitionPeriodCommand{
		TenantID: "tenant-1",
		PeriodID: "missing",
		Status:   domain.PeriodStatusSoftClosed,
		UserID:   "user-1",
	})
	if !errors.Is(err, domain.ErrPeriodNotFound) {
		t.Errorf("error = %v, want ErrPeriodNotFound", err)
	}
}

func TestPeriodService_ValidatesCommand(t *testing.T) {
	f := newPeriodFixture(t, domain.PeriodStatusOpen)

	_, err := f.svc.Transition(context.Background(), usecase.TransitionPeriodCommand{
		TenantID: "tenant-1",
		PeriodID: "p-2024-03",
		Status:   domain.PeriodStatus("CLOSED_FOREVER"),
		UserID:   "user-1",
	})
	if domain.ErrorCode(err) != domain.CodeCommandValidationFailed {
		t.Errorf("error code = %s, want %s", domain.ErrorCode(err), domain.CodeCommandValidationFailed)
	}
}
