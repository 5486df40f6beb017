package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/coreledger/internal/domain"
)

// IdempotencyService guarantees a command executes its side effects at
// most once per (tenant, key). The durable repository is the source of
// truth; an optional cache serves replays without a storage round trip.
type IdempotencyService struct {
	repo  IdempotencyRepository
	cache IdempotencyCache
	clock Clock
	ttl   time.Duration
}

// NewIdempotencyService creates a new IdempotencyService. cache may be nil.
func NewIdempotencyService(repo IdempotencyRepository, cache IdempotencyCache, clock Clock, ttl time.Duration) *IdempotencyService {
	if ttl == 0 {
		ttl = domain.DefaultIdempotencyTTL
	}
	return &IdempotencyService{
		repo:  repo,
		cache: cache,
		clock: clock,
		ttl:   ttl,
	}
}

// Check returns the recorded result for the key, or
// domain.ErrIdempotencyRecordNotFound on a miss. Expired records count
// as misses.
func (s *IdempotencyService) Check(ctx context.Context, tenantID, key string) ([]byte, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, tenantID, key); err == nil && cached != nil {
			return cached, nil
		}
		// Cache failures fall through to the durable store.
	}

	record, err := s.repo.FindByKey(ctx, tenantID, key)
	if err != nil {
		return nil, err
	}
	if record.IsExpired(s.clock.Now()) {
		return nil, domain.ErrIdempotencyRecordNotFound
	}

	return record.Result, nil
}

// Record stores the command result under the key. On a concurrent
// insert of the same key it returns the winner's result when the payload
// matches (a lost race is a legitimate replay), or a DuplicateEntryError
// when the key was reused for a different payload. A nil existing result
// means this record won.
func (s *IdempotencyService) Record(ctx context.Context, tenantID, key, commandType string, payload, result []byte) ([]byte, error) {
	now := s.clock.Now()
	record := &domain.IdempotencyRecord{
		TenantID:       tenantID,
		IdempotencyKey: key,
		CommandType:    commandType,
		PayloadHash:    domain.HashPayload(payload),
		Result:         result,
		ExecutedAt:     now,
		ExpiresAt:      now.Add(s.ttl),
	}

	err := s.repo.Save(ctx, record)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateIdempotencyKey) {
			return s.resolveCollision(ctx, record)
		}
		return nil, err
	}

	if s.cache != nil {
		// Best effort; the repository already holds the record.
		_ = s.cache.Set(ctx, tenantID, key, result, s.ttl)
	}

	return nil, nil
}

// MatchesPayload verifies a cached replay was produced by the same
// payload; a mismatch means the caller is reusing the key for a
// different command.
func (s *IdempotencyService) MatchesPayload(ctx context.Context, tenantID, key string, payload []byte) (bool, error) {
	record, err := s.repo.FindByKey(ctx, tenantID, key)
	if err != nil {
		if errors.Is(err, domain.ErrIdempotencyRecordNotFound) {
			// Cache hit without a durable record; treat as matching.
			return true, nil
		}
		return false, err
	}
	return record.PayloadHash == domain.HashPayload(payload), nil
}

func (s *IdempotencyService) resolveCollision(ctx context.Context, record *domain.IdempotencyRecord) ([]byte, error) {
	existing, err := s.repo.FindByKey(ctx, record.TenantID, record.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	if existing.PayloadHash != record.PayloadHash {
		return nil, &domain.DuplicateEntryError{
			TenantID:       record.TenantID,
			IdempotencyKey: record.IdempotencyKey,
		}
	}

	// Same payload: the concurrent request already recorded it; its
	// result is the canonical one.
	return existing.Result, nil
}
