package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/iho/coreledger/internal/domain"
)

// TemporalBalanceService folds posted journal entries into the
// append-only bitemporal balance ledger and answers balance queries on
// both time dimensions.
type TemporalBalanceService struct {
	balanceRepo TemporalBalanceRepository
	idGen       IDGenerator
	clock       Clock
}

// NewTemporalBalanceService creates a new TemporalBalanceService.
func NewTemporalBalanceService(balanceRepo TemporalBalanceRepository, idGen IDGenerator, clock Clock) *TemporalBalanceService {
	return &TemporalBalanceService{
		balanceRepo: balanceRepo,
		idGen:       idGen,
		clock:       clock,
	}
}

// ApplyJournalEntry nets each account's effect of the entry and writes a
// new balance version per touched account. A forward posting ends the
// open record's valid time and inserts a successor; a same-dated or
// backdated posting ends its transaction time and inserts a replacement.
// The read-modify-write per account runs under the caller's
// transaction with the open row locked, so concurrent postings to the
// same account serialize instead of losing updates.
func (s *TemporalBalanceService) ApplyJournalEntry(ctx context.Context, tx Transaction, entry *domain.JournalEntry) ([]*domain.TemporalBalance, error) {
	deltas := entryDeltas(entry)

	// Lock accounts in sorted order (DEADLOCK PREVENTION)
	codes := make([]string, 0, len(deltas))
	for code := range deltas {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	now := s.clock.Now()

	var written []*domain.TemporalBalance
	for _, code := range codes {
		delta := deltas[code]
		if delta.IsZero() {
			continue
		}

		current, err := s.balanceRepo.GetOpenForUpdate(ctx, tx, entry.TenantID, entry.EntityID, code)
		if err != nil {
			return nil, err
		}

		newBalance := delta
		validTimeStart := entry.PostingDate
		if current != nil {
			newBalance, err = current.Balance.Add(delta)
			if err != nil {
				return nil, err
			}
			if entry.PostingDate.After(current.ValidTimeStart) {
				// Forward posting: the old balance stays true for its
				// valid interval and stays currently believed, so only
				// its valid time ends.
				err = s.balanceRepo.Close(ctx, tx, current.ID, entry.PostingDate, domain.TimeEndOfTime)
			} else {
				// Same-dated or backdated posting: the open record's
				// belief is superseded outright and the replacement
				// covers its valid interval.
				validTimeStart = current.ValidTimeStart
				err = s.balanceRepo.Close(ctx, tx, current.ID, current.ValidTimeEnd, now)
			}
			if err != nil {
				return nil, err
			}
		}

		record := &domain.TemporalBalance{
			ID:                   s.idGen.Generate(),
			TenantID:             entry.TenantID,
			EntityID:             entry.EntityID,
			AccountCode:          code,
			Balance:              newBalance,
			ValidTimeStart:       validTimeStart,
			ValidTimeEnd:         domain.TimeEndOfTime,
			TransactionTimeStart: now,
			TransactionTimeEnd:   domain.TimeEndOfTime,
		}

		if err := s.balanceRepo.Insert(ctx, tx, record); err != nil {
			return nil, err
		}

		written = append(written, record)
	}

	return written, nil
}

// entryDeltas nets the entry per account as debits minus credits, a
// signed Money delta. The deltas of one entry always sum to zero.
func entryDeltas(entry *domain.JournalEntry) map[string]domain.Money {
	deltas := make(map[string]domain.Money)
	for _, line := range entry.Lines {
		delta, ok := deltas[line.AccountCode]
		if !ok {
			delta = domain.Zero(entry.Currency())
		}
		delta, _ = delta.Add(line.Debit)
		delta, _ = delta.Add(line.Credit.Negate())
		deltas[line.AccountCode] = delta
	}
	return deltas
}

// GetBalanceAt returns the balance that was true in business reality at
// validTime, under the system's current beliefs.
func (s *TemporalBalanceService) GetBalanceAt(ctx context.Context, tenantID, entityID, accountCode string, validTime time.Time) (domain.Money, error) {
	return s.balanceAt(ctx, tenantID, entityID, accountCode, validTime, nil)
}

// GetAuditBalanceAt returns the balance the system believed at
// transactionTime to have been true at validTime: the "as-known-then"
// audit view, stable even after later corrections.
func (s *TemporalBalanceService) GetAuditBalanceAt(ctx context.Context, tenantID, entityID, accountCode string, validTime, transactionTime time.Time) (domain.Money, error) {
	return s.balanceAt(ctx, tenantID, entityID, accountCode, validTime, &transactionTime)
}

func (s *TemporalBalanceService) balanceAt(ctx context.Context, tenantID, entityID, accountCode string, validTime time.Time, transactionTime *time.Time) (domain.Money, error) {
	versions, err := s.balanceRepo.ListVersions(ctx, tenantID, entityID, accountCode)
	if err != nil {
		return domain.Money{}, err
	}

	// Among the records the relevant transaction-time generation knew,
	// the balance at validTime is the one with the latest valid start at
	// or before validTime. Ties on valid start go to the later recording.
	var best *domain.TemporalBalance
	for _, v := range versions {
		if transactionTime != nil {
			if !v.CoversTransactionTime(*transactionTime) {
				continue
			}
		} else if !v.TransactionTimeEnd.Equal(domain.TimeEndOfTime) {
			continue
		}
		if v.ValidTimeStart.After(validTime) {
			continue
		}
		if best == nil ||
			v.ValidTimeStart.After(best.ValidTimeStart) ||
			(v.ValidTimeStart.Equal(best.ValidTimeStart) && v.TransactionTimeStart.After(best.TransactionTimeStart)) {
			best = v
		}
	}

	if best == nil {
		return domain.Money{}, domain.ErrNoBalanceHistory
	}

	return best.Balance, nil
}
