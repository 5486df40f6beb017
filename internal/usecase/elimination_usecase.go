package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/iho/coreledger/internal/domain"
)

// EliminationService nets intercompany activity to zero for consolidated
// reporting: it scans intercompany entries in a window, nets each
// (account, currency) pair and builds one balanced elimination entry per
// currency against a designated elimination account.
type EliminationService struct {
	entryRepo JournalEntryRepository
	idGen     IDGenerator
	clock     Clock
}

// NewEliminationService creates a new EliminationService.
func NewEliminationService(entryRepo JournalEntryRepository, idGen IDGenerator, clock Clock) *EliminationService {
	return &EliminationService{
		entryRepo: entryRepo,
		idGen:     idGen,
		clock:     clock,
	}
}

// BuildEliminationEntries returns the elimination entries for the
// window, one per currency with intercompany activity. Accounts whose
// intercompany debits and credits already net to zero are skipped; a
// currency with no non-zero nets produces no entry.
func (s *EliminationService) BuildEliminationEntries(ctx context.Context, tenantID, entityID string, from, to time.Time, eliminationAccountCode string) ([]*domain.JournalEntry, error) {
	entries, err := s.entryRepo.ListIntercompany(ctx, tenantID, from, to)
	if err != nil {
		return nil, err
	}

	// net debits-minus-credits per currency per account
	nets := make(map[domain.Currency]map[string]int64)
	for _, entry := range entries {
		currency := entry.Currency()
		if nets[currency] == nil {
			nets[currency] = make(map[string]int64)
		}
		for _, line := range entry.Lines {
			nets[currency][line.AccountCode] += line.Debit.Cents() - line.Credit.Cents()
		}
	}

	currencies := make([]domain.Currency, 0, len(nets))
	for currency := range nets {
		currencies = append(currencies, currency)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })

	var result []*domain.JournalEntry
	for _, currency := range currencies {
		entry, err := s.buildForCurrency(tenantID, entityID, to, eliminationAccountCode, currency, nets[currency])
		if err != nil {
			return nil, err
		}
		if entry != nil {
			result = append(result, entry)
		}
	}

	return result, nil
}

func (s *EliminationService) buildForCurrency(tenantID, entityID string, postingDate time.Time, eliminationAccountCode string, currency domain.Currency, accountNets map[string]int64) (*domain.JournalEntry, error) {
	codes := make([]string, 0, len(accountNets))
	for code := range accountNets {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var (
		lines     []domain.JournalEntryLine
		totalNets int64
	)

	for _, code := range codes {
		net := accountNets[code]
		if net == 0 {
			continue
		}

		// Reverse the net: a debit-heavy account gets a credit line.
		line, err := s.reversingLine(code, net, currency)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
		totalNets += net
	}

	if len(lines) == 0 {
		return nil, nil
	}

	if totalNets != 0 {
		// The elimination account absorbs whatever the reversals leave over.
		line, err := s.reversingLine(eliminationAccountCode, -totalNets, currency)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return domain.NewJournalEntry(domain.NewJournalEntryParams{
		ID:           s.idGen.Generate(),
		TenantID:     tenantID,
		EntityID:     entityID,
		PostingDate:  postingDate,
		Lines:        lines,
		Description:  "Intercompany elimination (" + currency.String() + ")",
		SourceModule: SourceModuleConsolidation,
		Now:          s.clock.Now(),
	})
}

// reversingLine books the opposite side of a signed net.
func (s *EliminationService) reversingLine(accountCode string, netCents int64, currency domain.Currency) (domain.JournalEntryLine, error) {
	magnitude, err := domain.NewFromCents(abs64(netCents), currency)
	if err != nil {
		return domain.JournalEntryLine{}, err
	}

	line := domain.JournalEntryLine{
		ID:          s.idGen.Generate(),
		AccountCode: accountCode,
		Debit:       domain.Zero(currency),
		Credit:      domain.Zero(currency),
		Description: "Elimination",
	}
	if netCents > 0 {
		line.Credit = magnitude
	} else {
		line.Debit = magnitude
	}
	return line, nil
}
