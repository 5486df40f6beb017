package eventpublisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/coreledger/internal/domain"
	"github.com/iho/coreledger/internal/usecase"
)

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{{ID: "evt-1", EventType: domain.EventTypeJournalEntryPosted}},
	}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub, 0)

	if err := ep.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch failed: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.published))
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-1" {
		t.Fatalf("marked = %#v, want [evt-1]", repo.marked)
	}
}

func TestProcessBatchContinuesOnPublishError(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{
			{ID: "evt-1", EventType: domain.EventTypeJournalEntryPosted},
			{ID: "evt-2", EventType: domain.EventTypeJournalEntryReversed},
		},
	}
	pub := &stubPublisher{
		errorsByID: map[string]error{"evt-1": errors.New("broker down")},
	}
	ep := newTestPublisher(repo, pub, 0)

	if err := ep.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch returned error: %v", err)
	}

	if len(pub.published) != 1 || pub.published[0].ID != "evt-2" {
		t.Fatalf("published = %#v, want only evt-2", pub.published)
	}
	if len(repo.marked) != 1 || repo.marked[0] != "evt-2" {
		t.Fatalf("marked = %#v, want only evt-2", repo.marked)
	}
}

func TestProcessBatchPrunesOldPublishedEvents(t *testing.T) {
	repo := &stubOutboxRepo{
		events: []*domain.OutboxEvent{{ID: "evt-1", EventType: domain.EventTypeJournalEntryPosted}},
	}
	ep := newTestPublisher(repo, &stubPublisher{}, time.Hour)

	if err := ep.processBatch(context.Background()); err != nil {
		t.Fatalf("processBatch failed: %v", err)
	}

	if repo.prunedBefore == nil {
		t.Fatal("expected published events to be pruned")
	}
	if age := time.Since(*repo.prunedBefore); age < 59*time.Minute || age > 61*time.Minute {
		t.Errorf("pruned before %v, want roughly one hour ago", repo.prunedBefore)
	}
}

func TestStartStopsOnContextCancellation(t *testing.T) {
	ep := newTestPublisher(&stubOutboxRepo{}, &stubPublisher{}, 0)
	ep.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ep.Start(ctx)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func newTestPublisher(repo *stubOutboxRepo, pub *stubPublisher, retention time.Duration) *EventPublisher {
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Logger:     zerolog.Nop(),
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
		Retention:  retention,
	})
}

type stubOutboxRepo struct {
	events       []*domain.OutboxEvent
	marked       []string
	prunedBefore *time.Time
}

func (s *stubOutboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return nil
}

func (s *stubOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if len(s.events) <= limit {
		return append([]*domain.OutboxEvent(nil), s.events...), nil
	}
	return append([]*domain.OutboxEvent(nil), s.events[:limit]...), nil
}

func (s *stubOutboxRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s.marked = append(s.marked, id)
	return nil
}

func (s *stubOutboxRepo) DeletePublished(ctx context.Context, before time.Time) error {
	s.prunedBefore = &before
	return nil
}

type stubPublisher struct {
	published  []*domain.OutboxEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}
