package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/infrastructure/eventpublisher"
	"github.com/iho/coreledger/tests/testutil"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []*domain.OutboxEvent
}

func (p *capturePublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) forTenant(tenantID string) []*domain.OutboxEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range p.events {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out
}

func TestOutboxPublishing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	stack := newLedgerStack(testDB)
	tenantID := seedTenant(ctx, t, testDB)

	if _, err := stack.createSvc.Handle(ctx, postingCommand(tenantID, "entity-1", testutil.GenerateID())); err != nil {
		t.Fatalf("failed to post entry: %v", err)
	}

	sink := &capturePublisher{}
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: stack.outboxRepo,
		Publisher:  sink,
		Logger:     zerolog.Nop(),
		BatchSize:  10,
		Interval:   50 * time.Millisecond,
	})

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = publisher.Start(runCtx)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(sink.forTenant(tenantID)) > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	cancel()
	<-done

	published := sink.forTenant(tenantID)
	if len(published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(published))
	}
	if published[0].EventType != domain.EventTypeJournalEntryPosted {
		t.Errorf("expected journal_entry.posted, got %s", published[0].EventType)
	}

	// The event is gone from the unpublished backlog.
	remaining, err := stack.outboxRepo.GetUnpublished(ctx, 100)
	if err != nil {
		t.Fatalf("failed to list unpublished: %v", err)
	}
	for _, e := range remaining {
		if e.TenantID == tenantID {
			t.Errorf("expected event %s to be marked published", e.ID)
		}
	}
}
